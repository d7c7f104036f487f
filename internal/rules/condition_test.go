package rules

import (
	"encoding/json"
	"testing"
)

func TestCondition_Match(t *testing.T) {
	ctx := Context{
		"hour":    Int(8),
		"weather": String("heavy_rain"),
		"date":    String("2026-12-25"),
		"holiday": Bool(true),
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"eq number", Condition{"hour", OpEq, 8}, true},
		{"eq number as float", Condition{"hour", OpEq, 8.0}, true},
		{"eq strict kinds", Condition{"hour", OpEq, "8"}, false},
		{"eq bool", Condition{"holiday", OpEq, true}, true},
		{"neq", Condition{"weather", OpNeq, "normal"}, true},
		{"neq missing field", Condition{"zone", OpNeq, "downtown"}, true},
		{"gt", Condition{"hour", OpGt, 7}, true},
		{"gt equal", Condition{"hour", OpGt, 8}, false},
		{"gte", Condition{"hour", OpGte, 8}, true},
		{"lt", Condition{"hour", OpLt, 10}, true},
		{"lte", Condition{"hour", OpLte, 7}, false},
		{"gt strings lexical", Condition{"date", OpGt, "2026-12-24"}, true},
		{"gt mixed kinds", Condition{"hour", OpGt, "7"}, false},
		{"gt missing field", Condition{"zone", OpGt, 1}, false},
		{"in", Condition{"hour", OpIn, []any{7.0, 8.0, 9.0}}, true},
		{"in typed slice", Condition{"weather", OpIn, []string{"rain", "heavy_rain"}}, true},
		{"in miss", Condition{"hour", OpIn, []int{17, 18}}, false},
		{"in not a list", Condition{"hour", OpIn, 8}, false},
		{"not_in", Condition{"weather", OpNotIn, []any{"snow"}}, true},
		{"not_in hit", Condition{"weather", OpNotIn, []any{"heavy_rain"}}, false},
		{"not_in missing field", Condition{"zone", OpNotIn, []any{"a"}}, true},
		{"contains", Condition{"weather", OpContains, "rain"}, true},
		{"contains coerces number", Condition{"hour", OpContains, 8}, true},
		{"contains coerces bool", Condition{"holiday", OpContains, "tru"}, true},
		{"contains miss", Condition{"weather", OpContains, "snow"}, false},
		{"unknown operator", Condition{"hour", Operator("~="), 8}, false},
		{"eq missing field", Condition{"zone", OpEq, "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Match(ctx); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	ctx := Context{"hour": Int(8), "dayOfWeek": Int(1)}
	peak := Condition{"hour", OpGte, 7}
	weekend := Condition{"dayOfWeek", OpIn, []any{0.0, 6.0}}

	tests := []struct {
		name  string
		conds []Condition
		logic Logic
		want  bool
	}{
		{"and all true", []Condition{peak, {"hour", OpLt, 10}}, LogicAnd, true},
		{"and one false", []Condition{peak, weekend}, LogicAnd, false},
		{"or one true", []Condition{peak, weekend}, LogicOr, true},
		{"or none true", []Condition{weekend, {"hour", OpGt, 20}}, LogicOr, false},
		{"empty matches", nil, LogicOr, true},
		{"blank logic is and", []Condition{peak, weekend}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.conds, tt.logic, ctx); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCondition_DecodedFromJSON(t *testing.T) {
	var conds []Condition
	raw := `[{"field":"hour","operator":"in","value":[7,8,9]},{"field":"weather","operator":"==","value":"rain"}]`
	if err := json.Unmarshal([]byte(raw), &conds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ctx := Context{"hour": Int(9), "weather": String("rain")}
	if !Evaluate(conds, LogicAnd, ctx) {
		t.Errorf("expected decoded conditions to match")
	}
}
