// Package schema defines the user-declared field schema for an import: an
// ordered list of named, typed fields. A Schema handed to an import call is a
// snapshot; callers editing a draft should pass a copy via Clone.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType is the closed set of attribute types an import can produce.
type FieldType int

const (
	Float FieldType = iota + 1
	Integer
	Boolean
)

// EmptyNameFallback is the attribute name exposed for a field whose declared
// name is the empty string. Source lookups still use "".
const EmptyNameFallback = "empty_key_string"

var typeNames = map[FieldType]string{
	Float:   "float",
	Integer: "int",
	Boolean: "bool",
}

func (t FieldType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Valid reports whether t is one of the declared variants.
func (t FieldType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseFieldType maps a loosely-spelled type name to a FieldType. Accepted
// spellings are case-insensitive: float/double/real, int/integer,
// bool/boolean.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "double", "real":
		return Float, nil
	case "int", "integer":
		return Integer, nil
	case "bool", "boolean":
		return Boolean, nil
	default:
		return 0, fmt.Errorf("schema: unknown field type %q (want float, int or bool)", s)
	}
}

func (t FieldType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("schema: cannot marshal invalid field type %d", int(t))
	}
	return json.Marshal(t.String())
}

func (t *FieldType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("schema: field type must be a string: %w", err)
	}
	ft, err := ParseFieldType(s)
	if err != nil {
		return err
	}
	*t = ft
	return nil
}

// Field is one declared column: the source key to read and the type to
// coerce its value into.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// AttributeName is the name under which the field's values are exposed in
// the output table.
func (f Field) AttributeName() string {
	if f.Name == "" {
		return EmptyNameFallback
	}
	return f.Name
}

// Validate checks a single descriptor. Empty names are allowed.
func (f Field) Validate() error {
	if !f.Type.Valid() {
		return fmt.Errorf("schema: field %q has invalid type %v", f.Name, f.Type)
	}
	return nil
}
