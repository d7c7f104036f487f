// README: Scalar values held in an evaluation context and condition literals.
package rules

import (
	"encoding/json"
	"strconv"
)

type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a scalar context entry. The zero Value is invalid and never
// compares equal to anything.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func Int(n int) Value { return Number(float64(n)) }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

// String coerces the value to text: numbers use the shortest decimal form.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// FromAny converts a decoded literal (JSON number, string or bool, or a Go
// numeric) into a Value. Lists and objects are not scalars.
func FromAny(x any) (Value, bool) {
	switch t := x.(type) {
	case Value:
		return t, t.kind != KindInvalid
	case string:
		return String(t), true
	case bool:
		return Bool(t), true
	case float64:
		return Number(t), true
	case float32:
		return Number(float64(t)), true
	case int:
		return Number(float64(t)), true
	case int32:
		return Number(float64(t)), true
	case int64:
		return Number(float64(t)), true
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return String(t.String()), true
		}
		return Number(n), true
	default:
		return Value{}, false
	}
}

// equal is strict: values of different kinds are never equal.
func equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.b == b.b
	default:
		return false
	}
}

// compare orders two numbers numerically or two strings lexically.
func compare(a, b Value) (int, bool) {
	if a.kind != b.kind {
		return 0, false
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1, true
		case a.num > b.num:
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		switch {
		case a.str < b.str:
			return -1, true
		case a.str > b.str:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}
