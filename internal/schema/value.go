package schema

import (
	"strconv"
)

// Value is one coerced scalar. Type selects which of the payload fields is
// meaningful; the others stay zero.
type Value struct {
	Type FieldType
	F    float64
	I    int64
	B    bool
}

func FloatValue(f float64) Value { return Value{Type: Float, F: f} }
func IntValue(i int64) Value     { return Value{Type: Integer, I: i} }
func BoolValue(b bool) Value     { return Value{Type: Boolean, B: b} }

// Any returns the payload as float64, int64 or bool, or nil for an invalid
// Value. Storage backends bind this directly.
func (v Value) Any() any {
	switch v.Type {
	case Float:
		return v.F
	case Integer:
		return v.I
	case Boolean:
		return v.B
	}
	return nil
}

func (v Value) String() string {
	switch v.Type {
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case Integer:
		return strconv.FormatInt(v.I, 10)
	case Boolean:
		return strconv.FormatBool(v.B)
	}
	return "<invalid>"
}
