// Package transformer turns raw records into typed rows. Decode is the
// record-level step: it reads every schema field from one raw record,
// coerces it through builtin.Coerce, and either returns a complete row or
// nothing at all.
package transformer

import (
	"errors"
	"fmt"

	"tabimport/internal/schema"
	"tabimport/internal/transformer/builtin"
	"tabimport/pkg/records"
)

// Row is one decoded record. V is aligned with the schema: V[i] holds the
// value of schema[i]. Duplicate field names therefore keep separate slots.
type Row struct {
	V []schema.Value
}

// Get returns the value of the first field exposed under attribute name.
func (r Row) Get(s schema.Schema, name string) (schema.Value, bool) {
	for i, f := range s {
		if f.AttributeName() == name && i < len(r.V) {
			return r.V[i], true
		}
	}
	return schema.Value{}, false
}

// MissingFieldError reports a schema field whose name is absent from a raw
// record.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q missing from record", e.Field)
}

// Decode reads s from rec in schema order. The first absent field yields
// *MissingFieldError and the first uncoercible value yields
// *builtin.CoercionError naming the field; in both cases no row is returned.
// Fields are looked up by their declared name, so an empty name reads the
// "" key.
func Decode(rec records.Record, s schema.Schema) (Row, error) {
	row := Row{V: make([]schema.Value, len(s))}
	for i, f := range s {
		raw, ok := rec.Lookup(f.Name)
		if !ok {
			return Row{}, &MissingFieldError{Field: f.Name}
		}
		v, err := builtin.Coerce(raw, f.Type)
		if err != nil {
			var ce *builtin.CoercionError
			if errors.As(err, &ce) {
				return Row{}, ce.At(f.Name)
			}
			return Row{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		row.V[i] = v
	}
	return row, nil
}
