// README: Pricing service quotes bookings against the active rules document.
package pricing

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cabfare/internal/metrics"
	"cabfare/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type Quote struct {
	ID          string        `json:"quote_id"`
	VehicleType string        `json:"vehicle_type"`
	Breakdown   FareBreakdown `json:"breakdown"`
	Total       types.Money   `json:"total"`
	QuotedAt    time.Time     `json:"quoted_at"`
}

type Service struct {
	source   RulesSource
	logger   *zap.Logger
	currency string
	now      func() time.Time
}

func NewService(source RulesSource, logger *zap.Logger, currency string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger, currency: currency, now: time.Now}
}

func (s *Service) Rules(ctx context.Context) (*PricingRules, error) {
	return s.source.Rules(ctx)
}

// Quote prices one booking. A booking without a pickup time is priced for now.
func (s *Service) Quote(ctx context.Context, b BookingDetails) (Quote, error) {
	if b.TripType == "" {
		return Quote{}, ErrBadRequest
	}
	r, err := s.source.Rules(ctx)
	if err != nil {
		return Quote{}, err
	}
	return s.quote(b, r, s.now())
}

// QuoteVehicles prices the booking once per vehicle class able to seat the
// party, cheapest first. The rules document is shared by every calculation.
func (s *Service) QuoteVehicles(ctx context.Context, b BookingDetails) ([]Quote, error) {
	if b.TripType == "" {
		return nil, ErrBadRequest
	}
	r, err := s.source.Rules(ctx)
	if err != nil {
		return nil, err
	}

	// one clock reading so every class is priced under the same time rules
	now := s.now()
	if b.PickupTime.IsZero() {
		b.PickupTime = now
	}

	vehicles := make([]string, 0, len(r.VehicleModifiers))
	for _, id := range sortedKeys(r.VehicleModifiers) {
		capacity := r.VehicleModifiers[id].MaxPassengers
		if capacity == 0 || b.PassengerCount <= capacity {
			vehicles = append(vehicles, id)
		}
	}

	quotes := make([]Quote, len(vehicles))
	g, _ := errgroup.WithContext(ctx)
	for i, vehicle := range vehicles {
		g.Go(func() error {
			booking := b
			booking.VehicleType = vehicle
			q, err := s.quote(booking, r, now)
			if err != nil {
				return err
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Total.Amount < quotes[j].Total.Amount
	})
	return quotes, nil
}

func (s *Service) quote(b BookingDetails, r *PricingRules, now time.Time) (Quote, error) {
	if b.PickupTime.IsZero() {
		b.PickupTime = now
	}

	label := tripLabel(b.TripType, r)
	fb, err := CalculateFare(b, r)
	if err != nil {
		metrics.QuotesTotal.WithLabelValues(label, "rejected").Inc()
		s.logger.Warn("fare calculation rejected",
			zap.String("trip_type", b.TripType),
			zap.String("rules_version", r.Version),
			zap.Error(err),
		)
		return Quote{}, err
	}

	metrics.QuotesTotal.WithLabelValues(label, "ok").Inc()
	metrics.QuoteAmount.WithLabelValues(label).Observe(float64(fb.Total))
	if fb.MinimumApplied {
		metrics.MinimumFareApplied.WithLabelValues(label).Inc()
	}
	s.logger.Debug("fare calculated",
		zap.String("trip_type", b.TripType),
		zap.String("vehicle_type", b.VehicleType),
		zap.Float64("distance_yards", b.Distance),
		zap.Stringer("subtotal", fb.Subtotal),
		zap.Int64("total", fb.Total),
		zap.Bool("minimum_applied", fb.MinimumApplied),
		zap.Strings("modifiers", fb.AppliedModifiers),
	)

	return Quote{
		ID:          uuid.NewString(),
		VehicleType: b.VehicleType,
		Breakdown:   fb,
		Total:       types.Money{Amount: fb.Total, Currency: s.currency},
		QuotedAt:    now,
	}, nil
}

// tripLabel keeps metric cardinality bounded by the configured trip types.
func tripLabel(tripType string, r *PricingRules) string {
	if r != nil {
		if _, ok := r.TripTypes[tripType]; ok {
			return tripType
		}
	}
	return "unknown"
}
