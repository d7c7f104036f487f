// README: Fare quote handlers; resolves trip distance then prices the booking.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabfare/internal/maps"
	"cabfare/internal/modules/pricing"
	"cabfare/internal/types"
)

// DistanceResolver looks up a driving distance in yards between two
// addresses or "lat,lng" strings.
type DistanceResolver interface {
	DistanceYards(ctx context.Context, origin, destination string) (float64, error)
}

type FareHandler struct {
	pricing *pricing.Service
	routes  DistanceResolver
}

// NewFareHandler builds the handler. routes may be nil, in which case address
// lookups are rejected and coordinates are priced by straight-line distance.
func NewFareHandler(svc *pricing.Service, routes DistanceResolver) *FareHandler {
	return &FareHandler{pricing: svc, routes: routes}
}

type quoteReq struct {
	pricing.BookingDetails

	// Exactly one way of describing the trip length is used, in this order.
	Distance    *float64     `json:"distance"`
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	Pickup      *types.Point `json:"pickup"`
	Dropoff     *types.Point `json:"dropoff"`
}

func (h *FareHandler) Quote(c *gin.Context) {
	b, ok := h.bindBooking(c)
	if !ok {
		return
	}
	q, err := h.pricing.Quote(c.Request.Context(), b)
	if err != nil {
		writeFareError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *FareHandler) QuoteVehicles(c *gin.Context) {
	b, ok := h.bindBooking(c)
	if !ok {
		return
	}
	quotes, err := h.pricing.QuoteVehicles(c.Request.Context(), b)
	if err != nil {
		writeFareError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"quotes": quotes})
}

func (h *FareHandler) Rules(c *gin.Context) {
	r, err := h.pricing.Rules(c.Request.Context())
	if err != nil {
		writeFareError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *FareHandler) bindBooking(c *gin.Context) (pricing.BookingDetails, bool) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return pricing.BookingDetails{}, false
	}
	if req.TripType == "" {
		writeError(c, http.StatusBadRequest, "missing trip_type")
		return pricing.BookingDetails{}, false
	}
	yards, err := h.distance(c.Request.Context(), req)
	if err != nil {
		writeFareError(c, err)
		return pricing.BookingDetails{}, false
	}
	b := req.BookingDetails
	b.Distance = yards
	return b, true
}

func (h *FareHandler) distance(ctx context.Context, req quoteReq) (float64, error) {
	switch {
	case req.Distance != nil:
		return *req.Distance, nil
	case req.Origin != "" && req.Destination != "":
		if h.routes == nil {
			return 0, fmt.Errorf("%w: address lookup is not configured", pricing.ErrBadRequest)
		}
		return h.routes.DistanceYards(ctx, req.Origin, req.Destination)
	case req.Pickup != nil && req.Dropoff != nil:
		if h.routes == nil {
			return maps.StraightLineYards(*req.Pickup, *req.Dropoff), nil
		}
		return h.routes.DistanceYards(ctx, maps.LatLng(*req.Pickup), maps.LatLng(*req.Dropoff))
	default:
		return 0, fmt.Errorf("%w: distance, origin/destination or pickup/dropoff is required", pricing.ErrBadRequest)
	}
}
