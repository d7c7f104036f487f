// README: Structural checks a rules provider runs before publishing a document.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidRules = errors.New("invalid pricing rules")

// Validate reports every structural problem in the document. The engine never
// calls it; providers do, so a bad document is rejected before it is shared.
func (r *PricingRules) Validate() error {
	var problems []string
	if len(r.TripTypes) == 0 {
		problems = append(problems, "tripTypes is empty")
	}

	for _, id := range sortedKeys(r.TripTypes) {
		problems = append(problems, validateTrip(id, r.TripTypes[id])...)
	}
	for _, id := range sortedKeys(r.VehicleModifiers) {
		if !validAmountType(r.VehicleModifiers[id].Type) {
			problems = append(problems, fmt.Sprintf("vehicleModifiers.%s: unknown type %q", id, r.VehicleModifiers[id].Type))
		}
	}
	for i, m := range r.ConditionalModifiers {
		problems = append(problems, validateModifier(i, m)...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidRules, strings.Join(problems, "\n  - "))
	}
	return nil
}

func validateTrip(id string, t TripTypeConfig) []string {
	var problems []string
	if t.DistancePerUnit <= 0 {
		problems = append(problems, fmt.Sprintf("tripTypes.%s: distancePerUnit must be positive", id))
	}
	prevTo := 0.0
	for i, tier := range t.DistanceTiers {
		where := fmt.Sprintf("tripTypes.%s.distanceTiers[%d]", id, i)
		if tier.From < prevTo {
			problems = append(problems, where+": overlaps previous tier or is out of order")
		}
		if tier.To == nil {
			if i != len(t.DistanceTiers)-1 {
				problems = append(problems, where+": only the last tier may be unbounded")
			}
			continue
		}
		if *tier.To <= tier.From {
			problems = append(problems, where+": to must be greater than from")
		}
		prevTo = *tier.To
	}
	for i, s := range t.Surcharges {
		if !validAmountType(s.Type) {
			problems = append(problems, fmt.Sprintf("tripTypes.%s.surcharges[%d]: unknown type %q", id, i, s.Type))
		}
	}
	return problems
}

func validateModifier(i int, m ConditionalModifier) []string {
	var problems []string
	where := fmt.Sprintf("conditionalModifiers[%d]", i)
	if m.ID != "" {
		where = fmt.Sprintf("conditionalModifiers[%s]", m.ID)
	}
	switch m.Action.Type {
	case ActionAdd, ActionMultiply, ActionSet:
	default:
		problems = append(problems, fmt.Sprintf("%s: unknown action %q", where, m.Action.Type))
	}
	if !m.Logic.Valid() {
		problems = append(problems, fmt.Sprintf("%s: unknown logic %q", where, m.Logic))
	}
	for _, c := range m.Conditions {
		if !c.Operator.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown operator %q", where, c.Operator))
		}
		if !KnownField(c.Field) {
			problems = append(problems, fmt.Sprintf("%s: unknown field %q", where, c.Field))
		}
	}
	return problems
}

func validAmountType(t AmountType) bool {
	return t == AmountFixed || t == AmountPercentage
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseRules decodes and validates a JSON rules document.
func ParseRules(data []byte) (*PricingRules, error) {
	var r PricingRules
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode pricing rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
