// Package ply writes an import table as an ASCII PLY point cloud: one vertex
// per row at its table coordinate, with one vertex property per attribute.
package ply

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"tabimport/internal/schema"
	"tabimport/internal/table"
	"tabimport/internal/transformer"
)

// propertyType returns the PLY scalar type for an attribute type. Booleans
// become 0/1 uchar values.
func propertyType(t schema.FieldType) (string, error) {
	switch t {
	case schema.Float:
		return "double", nil
	case schema.Integer:
		return "int", nil
	case schema.Boolean:
		return "uchar", nil
	}
	return "", fmt.Errorf("ply: unsupported attribute type %v", t)
}

// CheckNames reports attribute names that cannot become vertex properties:
// duplicates, names that shadow x/y/z, and names a PLY header cannot carry.
func CheckNames(s schema.Schema) error {
	if dups := s.Duplicates(); len(dups) > 0 {
		return fmt.Errorf("ply: duplicate attribute names %q", dups)
	}
	for _, name := range s.AttributeNames() {
		switch {
		case name == "x" || name == "y" || name == "z":
			return fmt.Errorf("ply: attribute %q collides with a vertex coordinate", name)
		case strings.IndexFunc(name, func(r rune) bool { return r <= ' ' || r > '~' }) >= 0:
			return fmt.Errorf("ply: attribute %q is not a printable ASCII word", name)
		}
	}
	return nil
}

// Write renders t to w. comment, when non-empty, is stored as a header
// comment line. It returns the number of vertices written.
func Write(w io.Writer, t *table.Table, comment string) (int, error) {
	s := t.Schema()
	if err := CheckNames(s); err != nil {
		return 0, err
	}
	types := make([]string, len(s))
	for i, f := range s {
		pt, err := propertyType(f.Type)
		if err != nil {
			return 0, err
		}
		types[i] = pt
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("ply\nformat ascii 1.0\n")
	if c := strings.TrimSpace(comment); c != "" {
		fmt.Fprintf(bw, "comment %s\n", strings.ReplaceAll(c, "\n", " "))
	}
	fmt.Fprintf(bw, "element vertex %d\n", t.Len())
	bw.WriteString("property double x\nproperty double y\nproperty double z\n")
	for i, name := range s.AttributeNames() {
		fmt.Fprintf(bw, "property %s %s\n", types[i], name)
	}
	bw.WriteString("end_header\n")

	var (
		line []byte
		err  error
	)
	t.Each(func(i int, p table.Point, row transformer.Row) bool {
		line = line[:0]
		line = appendFloat(line, p.X)
		line = append(line, ' ')
		line = appendFloat(line, p.Y)
		line = append(line, ' ')
		line = appendFloat(line, p.Z)
		for col, v := range row.V {
			line = append(line, ' ')
			switch v.Type {
			case schema.Float:
				line = appendFloat(line, v.F)
			case schema.Integer:
				if v.I < math.MinInt32 || v.I > math.MaxInt32 {
					err = fmt.Errorf("ply: vertex %d attribute %q: %d does not fit a PLY int", i, s[col].AttributeName(), v.I)
					return false
				}
				line = strconv.AppendInt(line, v.I, 10)
			case schema.Boolean:
				if v.B {
					line = append(line, '1')
				} else {
					line = append(line, '0')
				}
			}
		}
		line = append(line, '\n')
		_, err = bw.Write(line)
		return err == nil
	})
	if err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("ply: write: %w", err)
	}
	return t.Len(), nil
}

func appendFloat(b []byte, f float64) []byte {
	return strconv.AppendFloat(b, f, 'g', -1, 64)
}
