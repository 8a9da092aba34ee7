package probe

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tabimport/internal/schema"
	"tabimport/internal/transformer/builtin"
)

// column accumulates the values seen for one source key.
type column struct {
	name    string
	values  []any
	present int
}

// inferType picks the narrowest attribute type every non-empty value
// coerces to: bool (only for true/false literals), then int, then float. It
// returns false when the column holds text the importer cannot read.
func inferType(values []any) (schema.FieldType, bool) {
	var nonEmpty []any
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		nonEmpty = append(nonEmpty, v)
	}
	if len(nonEmpty) == 0 {
		return 0, false
	}

	if allMatch(nonEmpty, isBoolLiteral) {
		return schema.Boolean, true
	}
	for _, t := range []schema.FieldType{schema.Integer, schema.Float} {
		if allMatch(nonEmpty, func(v any) bool {
			_, err := builtin.Coerce(v, t)
			return err == nil
		}) {
			return t, true
		}
	}
	return 0, false
}

func isBoolLiteral(v any) bool {
	switch x := v.(type) {
	case bool:
		return true
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "false"
	}
	return false
}

func allMatch(vals []any, fn func(any) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// jsonValue normalizes a decoded JSON value for inference. Objects and
// arrays cannot become attributes and are kept as a marker string.
func jsonValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return "<nested>"
	}
	return v
}

var ligatures = strings.NewReplacer("ß", "ss", "æ", "ae", "ø", "o", "œ", "oe")

// NormalizeName converts arbitrary text into a lowercase ASCII identifier
// suitable for SQL tables and PLY properties:
//  1. lowercase
//  2. spell out letters without a decomposition (ß, æ, ø, œ)
//  3. strip accents (NFD, remove Mn, NFC)
//  4. keep [a-z0-9_]; space, dash and dot become one underscore
//  5. fall back to "col" when nothing is left
func NormalizeName(s string) string {
	s = ligatures.Replace(strings.ToLower(strings.TrimSpace(s)))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
