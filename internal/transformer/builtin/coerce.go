// Package builtin holds the per-value building blocks of the decode stage.
// Coerce converts one untyped source value into one declared field type; it
// is the only place conversion rules and conversion failures live.
package builtin

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"tabimport/internal/schema"
)

// decimalRe accepts plain decimal numerals with an optional exponent. It
// rejects the extra spellings strconv.ParseFloat allows (inf, nan, hex,
// underscores) so that only what a user would call a number gets through.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CoercionError reports a raw value that cannot be read as the declared type.
// Coerce leaves Field unset; the decoder attaches it with At.
type CoercionError struct {
	Field string
	Value any
	Type  schema.FieldType
	Err   error

	named bool
}

// At returns a copy of e attributed to the named field.
func (e *CoercionError) At(field string) *CoercionError {
	c := *e
	c.Field, c.named = field, true
	return &c
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("cannot coerce %s to %s", describe(e.Value), e.Type)
	if e.named {
		msg = fmt.Sprintf("field %q: %s", e.Field, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() error { return e.Err }

// Coerce converts raw into t.
//
// Float accepts numbers and decimal numeral strings. Integer accepts
// integral numbers and base-10 integer strings; "3.0" as a string fails
// while the JSON number 3.0 passes, because it is already a number with no
// fractional part. Boolean uses a fixed truth table:
//
//	true:  true, "true", "1", 1
//	false: false, "false", "0", 0, "", nil
//
// String comparisons ignore case and surrounding whitespace. Anything else
// fails with *CoercionError.
func Coerce(raw any, t schema.FieldType) (schema.Value, error) {
	switch t {
	case schema.Float:
		f, err := toFloat(raw)
		if err != nil {
			return schema.Value{}, &CoercionError{Value: raw, Type: t, Err: err}
		}
		return schema.FloatValue(f), nil
	case schema.Integer:
		i, err := toInt(raw)
		if err != nil {
			return schema.Value{}, &CoercionError{Value: raw, Type: t, Err: err}
		}
		return schema.IntValue(i), nil
	case schema.Boolean:
		b, err := toBool(raw)
		if err != nil {
			return schema.Value{}, &CoercionError{Value: raw, Type: t, Err: err}
		}
		return schema.BoolValue(b), nil
	default:
		return schema.Value{}, &CoercionError{Value: raw, Type: t, Err: fmt.Errorf("unsupported field type")}
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(strings.TrimSpace(v))
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errIncompatible
	}
}

func parseDecimal(s string) (float64, error) {
	if !decimalRe.MatchString(s) {
		return 0, errNotNumeral
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return f, nil
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return i, nil
		}
		f, err := parseDecimal(v.String())
		if err != nil {
			return 0, err
		}
		return integral(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, errNotInteger
		}
		return i, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return integral(v)
	default:
		return 0, errIncompatible
	}
}

// integral accepts a float only when it already holds a whole number that
// fits in int64.
func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(f), nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0", "":
			return false, nil
		}
		return false, errNotBoolean
	case json.Number:
		return numBool(v.Float64())
	case float64:
		return numBool(v, nil)
	case int:
		return numBool(float64(v), nil)
	case int64:
		return numBool(float64(v), nil)
	default:
		return false, errIncompatible
	}
}

func numBool(f float64, err error) (bool, error) {
	if err != nil {
		return false, errNotBoolean
	}
	switch f {
	case 1:
		return true, nil
	case 0:
		return false, nil
	}
	return false, errNotBoolean
}

var (
	errIncompatible = fmt.Errorf("incompatible value type")
	errNotNumeral   = fmt.Errorf("not a decimal numeral")
	errNotInteger   = fmt.Errorf("not a base-10 integer")
	errOutOfRange   = fmt.Errorf("out of int64 range")
	errNotBoolean   = fmt.Errorf("not one of true/false/1/0")
)

func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprintf("%v (%T)", x, x)
	}
}
