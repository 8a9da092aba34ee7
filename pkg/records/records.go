// Package records defines the raw, untyped record shape shared by every
// parser. A Record is produced by a format-specific reader and consumed
// immediately by the decoder; nothing retains it afterwards.
package records

// Record maps a source field name to its untyped value. Values are one of:
// string (CSV cells, JSON strings), json.Number (JSON numbers), bool, or nil
// (JSON null).
type Record map[string]any

// Lookup returns the value stored under key and whether the key is present.
// A present key with a nil value is distinct from an absent key.
func (r Record) Lookup(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}
