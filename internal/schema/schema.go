package schema

import (
	"fmt"
	"strings"
)

// Schema is an ordered list of fields. Order fixes attribute order in the
// output and which failing field is reported first; it does not affect
// point identity. Duplicate names are kept as separate fields.
type Schema []Field

// Validate checks every descriptor and returns the first problem found.
func (s Schema) Validate() error {
	for i, f := range s {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("field[%d]: %w", i, err)
		}
	}
	return nil
}

// Clone returns an independent copy so a caller may keep editing its draft
// while an import reads the snapshot.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// AttributeNames returns the exposed attribute name of each field, in order.
func (s Schema) AttributeNames() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.AttributeName()
	}
	return out
}

// Duplicates returns the attribute names that occur more than once, in order
// of their second occurrence.
func (s Schema) Duplicates() []string {
	seen := make(map[string]int, len(s))
	var dups []string
	for _, name := range s.AttributeNames() {
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

// Parse reads a compact schema spec of the form "name:type,name:type".
// An entry with nothing before the colon declares the empty field name.
func Parse(spec string) (Schema, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Schema{}, nil
	}
	parts := strings.Split(spec, ",")
	out := make(Schema, 0, len(parts))
	for _, p := range parts {
		i := strings.LastIndex(p, ":")
		if i < 0 {
			return nil, fmt.Errorf("schema: entry %q must be name:type", p)
		}
		ft, err := ParseFieldType(p[i+1:])
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Name: strings.TrimSpace(p[:i]), Type: ft})
	}
	return out, nil
}

// String renders s in the form accepted by Parse.
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.Name + ":" + f.Type.String()
	}
	return strings.Join(parts, ",")
}
