// README: Fare engine; turns a booking and a rules document into an itemized fare.
package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"cabfare/internal/rules"
)

// ErrTripTypeUnavailable matches every *ConfigurationError.
var ErrTripTypeUnavailable = errors.New("trip type unavailable")

// ConfigurationError means the booking asked for a trip type the rules do not
// offer. Retrying with the same inputs always fails the same way.
type ConfigurationError struct {
	TripType string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("trip type %q %s", e.TripType, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrTripTypeUnavailable
}

var (
	hundred = decimal.NewFromInt(100)
	sixty   = decimal.NewFromInt(60)
)

// CalculateFare prices a booking. It is pure: rules and booking are only read,
// and the returned breakdown is freshly allocated. The only failure is a
// missing or disabled trip type; other odd inputs propagate arithmetically.
func CalculateFare(b BookingDetails, r *PricingRules) (FareBreakdown, error) {
	if r == nil {
		return FareBreakdown{}, &ConfigurationError{TripType: b.TripType, Reason: "has no pricing rules"}
	}
	trip, ok := r.TripTypes[b.TripType]
	if !ok {
		return FareBreakdown{}, &ConfigurationError{TripType: b.TripType, Reason: "is not configured"}
	}
	if !trip.Enabled {
		return FareBreakdown{}, &ConfigurationError{TripType: b.TripType, Reason: "is disabled"}
	}

	c := &calculation{items: make([]LineItem, 0, 8)}
	c.baseFee(trip)
	c.distance(b, trip)
	c.vehicle(b, r.VehicleModifiers)
	c.passengers(b, r.PassengerFees)
	c.carSeats(b, r.ExtraFees.CarSeats)
	c.luggage(b, r.ExtraFees.Luggage)
	c.specialRequests(b, r.SpecialRequests)
	c.surcharges(b, trip.Surcharges)
	c.waitTime(b, trip.WaitTimeRate)
	c.conditional(b, r.ConditionalModifiers)
	return c.finalize(trip, r.Version), nil
}

type calculation struct {
	items     []LineItem
	subtotals Subtotals
	applied   []string
	running   decimal.Decimal
}

func (c *calculation) add(label string, amount decimal.Decimal, cat Category) {
	c.items = append(c.items, LineItem{Label: label, Amount: amount, Category: cat})
	c.running = c.running.Add(amount)
}

func (c *calculation) baseFee(trip TripTypeConfig) {
	if trip.BaseFee.IsZero() {
		return
	}
	c.subtotals.BaseFare = trip.BaseFee
	c.add("Base fare", trip.BaseFee, CategoryBase)
}

// distance walks tiers in list order; each tier bills whole units, rounded up.
func (c *calculation) distance(b BookingDetails, trip TripTypeConfig) {
	total := decimal.NewFromFloat(b.Distance)
	perUnit := unitSize(trip.DistancePerUnit)
	for _, tier := range trip.DistanceTiers {
		from := decimal.NewFromFloat(tier.From)
		upper := total
		if tier.To != nil {
			if to := decimal.NewFromFloat(*tier.To); to.LessThan(upper) {
				upper = to
			}
		}
		yards := upper.Sub(from)
		if !yards.IsPositive() {
			continue
		}
		units := yards.Div(perUnit).Ceil()
		fare := units.Mul(tier.RatePerUnit)
		c.subtotals.DistanceFare = c.subtotals.DistanceFare.Add(fare)
		c.add(distanceLabel(units, trip.DistanceUnit, tier.RatePerUnit), fare, CategoryBase)
	}
}

// unitSize treats a non-positive unit as one yard instead of dividing by zero.
func unitSize(yards float64) decimal.Decimal {
	if yards <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(yards)
}

func distanceLabel(units decimal.Decimal, unit string, rate decimal.Decimal) string {
	if unit == "" {
		unit = "unit"
	}
	return fmt.Sprintf("Distance (%s x %s @ %s)", units.String(), unit, rate.String())
}

func (c *calculation) vehicle(b BookingDetails, vehicles map[string]VehicleModifier) {
	v, ok := vehicles[b.VehicleType]
	if !ok {
		return
	}
	amount := v.Amount
	if v.Type == AmountPercentage {
		amount = c.fareBeforeExtras().Mul(v.Amount).Div(hundred)
	}
	if amount.IsZero() {
		return
	}
	label := v.Name
	if label == "" {
		label = b.VehicleType
	}
	c.subtotals.VehicleUpgrade = amount
	c.add(label, amount, CategoryModifier)
}

func (c *calculation) passengers(b BookingDetails, fees PassengerFees) {
	extra := b.PassengerCount - fees.BasePassengers
	if extra <= 0 {
		return
	}
	fee := decimal.NewFromInt(int64(extra)).Mul(fees.AdditionalPassengerFee)
	if !fee.IsPositive() {
		return
	}
	c.subtotals.PassengerFees = fee
	c.add(fmt.Sprintf("Additional passengers (%d)", extra), fee, CategoryFee)
}

// carSeats bills seat types in sorted order so line items are reproducible.
func (c *calculation) carSeats(b BookingDetails, seats map[string]CarSeatFee) {
	kinds := make([]string, 0, len(b.CarSeats))
	for kind, count := range b.CarSeats {
		if count > 0 {
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		seat, ok := seats[kind]
		if !ok || !seat.Enabled {
			continue
		}
		count := b.CarSeats[kind]
		fee := decimal.NewFromInt(int64(count)).Mul(seat.Fee)
		label := seat.Name
		if label == "" {
			label = kind
		}
		c.subtotals.CarSeatFees = c.subtotals.CarSeatFees.Add(fee)
		c.add(fmt.Sprintf("%s (%d)", label, count), fee, CategoryFee)
	}
}

func (c *calculation) luggage(b BookingDetails, l LuggageFee) {
	if !l.Enabled || l.AdditionalLuggageFee.IsZero() {
		return
	}
	extra := b.LuggageCount - l.BaseLuggage
	if extra <= 0 {
		return
	}
	fee := decimal.NewFromInt(int64(extra)).Mul(l.AdditionalLuggageFee)
	if !fee.IsPositive() {
		return
	}
	c.subtotals.LuggageFees = fee
	c.add(fmt.Sprintf("Additional luggage (%d)", extra), fee, CategoryFee)
}

func (c *calculation) specialRequests(b BookingDetails, requests map[string]SpecialRequest) {
	for _, id := range b.SpecialRequests {
		req, ok := requests[id]
		if !ok || !req.Enabled || req.Fee.IsZero() {
			continue
		}
		label := req.Name
		if label == "" {
			label = id
		}
		c.subtotals.SpecialRequestFees = c.subtotals.SpecialRequestFees.Add(req.Fee)
		c.add(label, req.Fee, CategoryFee)
	}
}

func (c *calculation) surcharges(b BookingDetails, surcharges []Surcharge) {
	for _, s := range surcharges {
		if !surchargeApplies(s.Conditions, b) {
			continue
		}
		amount := s.Amount
		if s.Type == AmountPercentage {
			amount = c.fareBeforeExtras().Mul(s.Amount).Div(hundred)
		}
		label := s.Name
		if label == "" {
			label = s.ID
		}
		c.subtotals.Surcharges = c.subtotals.Surcharges.Add(amount)
		c.add(label, amount, CategorySurcharge)
	}
}

// surchargeApplies requires every condition key to name a booking airport
// flag holding exactly the wanted value. Unknown keys never match.
func surchargeApplies(conds map[string]bool, b BookingDetails) bool {
	for key, want := range conds {
		got, known := b.airportFlag(key)
		if !known || got != want {
			return false
		}
	}
	return true
}

func (c *calculation) waitTime(b BookingDetails, rate WaitTimeRate) {
	if b.WaitTimeMinutes == nil || !rate.Enabled {
		return
	}
	chargeable := decimal.NewFromFloat(*b.WaitTimeMinutes).Sub(decimal.NewFromFloat(rate.FreeMinutes))
	if !chargeable.IsPositive() {
		return
	}
	fee := chargeable.Mul(rate.RatePerHour).Div(sixty)
	if !fee.IsPositive() {
		return
	}
	c.subtotals.WaitTimeFees = fee
	c.add(fmt.Sprintf("Wait time (%s min)", chargeable.String()), fee, CategoryFee)
}

// conditional applies matching modifiers in ascending priority against the
// running total. Ties keep their order in the rules document.
func (c *calculation) conditional(b BookingDetails, mods []ConditionalModifier) {
	if len(mods) == 0 {
		return
	}
	ctx := BookingContext(b)
	matched := make([]ConditionalModifier, 0, len(mods))
	for _, m := range mods {
		if m.Enabled && rules.Evaluate(m.Conditions, m.Logic, ctx) {
			matched = append(matched, m)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority < matched[j].Priority
	})

	for _, m := range matched {
		var amount decimal.Decimal
		switch m.Action.Type {
		case ActionAdd:
			amount = m.Action.Amount
		case ActionMultiply:
			amount = c.running.Mul(m.Action.Percentage).Div(hundred)
		case ActionSet:
			amount = m.Action.FixedAmount.Sub(c.running)
		default:
			continue
		}
		cat := CategorySurcharge
		if m.Action.Type == ActionMultiply && m.Action.Percentage.IsNegative() {
			cat = CategoryDiscount
		}
		label := m.Name
		if label == "" {
			label = m.ID
		}
		c.subtotals.Adjustments = c.subtotals.Adjustments.Add(amount)
		c.applied = append(c.applied, m.ID)
		c.add(label, amount, cat)
	}
}

func (c *calculation) fareBeforeExtras() decimal.Decimal {
	return c.subtotals.BaseFare.Add(c.subtotals.DistanceFare)
}

// finalize applies the minimum-fare floor, then always rounds up.
func (c *calculation) finalize(trip TripTypeConfig, version string) FareBreakdown {
	subtotal := c.running
	total := subtotal
	minimumApplied := false
	if subtotal.LessThan(trip.MinimumFare) {
		minimumApplied = true
		total = trip.MinimumFare
		c.items = append(c.items, LineItem{
			Label:    "Minimum fare adjustment",
			Amount:   trip.MinimumFare.Sub(subtotal),
			Category: CategoryModifier,
		})
	}
	return FareBreakdown{
		RulesVersion:     version,
		LineItems:        c.items,
		Subtotals:        c.subtotals,
		AppliedModifiers: c.applied,
		Subtotal:         subtotal,
		MinimumApplied:   minimumApplied,
		Total:            total.Ceil().IntPart(),
	}
}
