package config

import (
	"encoding/json"
	"math"
	"unicode/utf8"
)

// Options holds the free-form "parser.options" object. Getters fall back to
// their default when a key is absent or holds another JSON type.
type Options map[string]any

// Raw returns the decoded JSON value under key, or nil.
func (o Options) Raw(key string) any { return o[key] }

// String returns a JSON string value.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Int returns a whole JSON number. Fractions count as the wrong type.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case int:
		return n
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n)
		}
	}
	return def
}

// Rune returns the first rune of a non-empty JSON string.
func (o Options) Rune(key string, def rune) rune {
	s, ok := o[key].(string)
	if !ok || s == "" {
		return def
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// UnmarshalJSON decodes null as an empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	m := map[string]any{}
	if string(b) != "null" {
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
	}
	*o = m
	return nil
}
