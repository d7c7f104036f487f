package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"googlemaps.github.io/maps"

	"cabfare/internal/types"
)

var ErrNoRoute = errors.New("no route found")

const yardsPerMeter = 1.0936132983

// RouteService resolves driving distances with the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
	region string
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey, region string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, region: region}, nil
}

// DistanceYards returns the driving distance of the first suggested route.
// origin and destination are addresses or "lat,lng" strings.
func (s *RouteService) DistanceYards(ctx context.Context, origin, destination string) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return MetersToYards(meters), nil
}

func MetersToYards(m int) float64 {
	return float64(m) * yardsPerMeter
}

// LatLng formats p the way the Directions API accepts waypoints.
func LatLng(p types.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
