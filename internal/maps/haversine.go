package maps

import (
	"math"

	"cabfare/internal/types"
)

const earthRadiusYards = 6371000.0 * yardsPerMeter

// StraightLineYards returns the great-circle distance between two points.
func StraightLineYards(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusYards * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
