// README: Boolean condition sets evaluated against a flat key-value context.
package rules

import "strings"

// Field names a context entry. The set of fields is owned by the caller that
// builds the Context; the evaluator itself has no fixed vocabulary.
type Field string

// Context is the flat lookup table conditions are evaluated against.
type Context map[Field]Value

type Operator string

const (
	OpEq       Operator = "=="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpLt       Operator = "<"
	OpGte      Operator = ">="
	OpLte      Operator = "<="
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpContains Operator = "contains"
)

func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpLt, OpGte, OpLte, OpIn, OpNotIn, OpContains:
		return true
	default:
		return false
	}
}

type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

func (l Logic) Valid() bool {
	return l == "" || l == LogicAnd || l == LogicOr
}

// Condition compares context[Field] against Value. Value is a scalar literal,
// or a list of scalars for in / not_in.
type Condition struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Evaluate combines conditions with AND (all true) or OR (any true). An empty
// condition set always matches; an empty or unknown logic is treated as AND.
func Evaluate(conds []Condition, logic Logic, ctx Context) bool {
	if len(conds) == 0 {
		return true
	}
	if logic == LogicOr {
		for _, c := range conds {
			if c.Match(ctx) {
				return true
			}
		}
		return false
	}
	for _, c := range conds {
		if !c.Match(ctx) {
			return false
		}
	}
	return true
}

// Match evaluates a single condition. A field missing from ctx only satisfies
// the negative operators (!= and not_in). Unknown operators never match.
func (c Condition) Match(ctx Context) bool {
	actual, ok := ctx[c.Field]
	switch c.Operator {
	case OpEq:
		return ok && equalsLiteral(actual, c.Value)
	case OpNeq:
		return !ok || !equalsLiteral(actual, c.Value)
	case OpGt, OpLt, OpGte, OpLte:
		if !ok {
			return false
		}
		want, valid := FromAny(c.Value)
		if !valid {
			return false
		}
		cmp, comparable := compare(actual, want)
		if !comparable {
			return false
		}
		return orderHolds(c.Operator, cmp)
	case OpIn:
		return ok && inList(actual, c.Value)
	case OpNotIn:
		return !ok || !inList(actual, c.Value)
	case OpContains:
		want, valid := FromAny(c.Value)
		return ok && valid && strings.Contains(actual.String(), want.String())
	default:
		return false
	}
}

func orderHolds(op Operator, cmp int) bool {
	switch op {
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGte:
		return cmp >= 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

func equalsLiteral(actual Value, literal any) bool {
	want, ok := FromAny(literal)
	return ok && equal(actual, want)
}

func inList(actual Value, literal any) bool {
	for _, item := range listOf(literal) {
		if equalsLiteral(actual, item) {
			return true
		}
	}
	return false
}

func listOf(literal any) []any {
	switch t := literal.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	default:
		return nil
	}
}
