// Package table holds the product of an import: an append-only sequence of
// decoded rows, each placed at a synthetic position along the X axis so the
// host can show row order spatially.
package table

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"

	"tabimport/internal/schema"
	"tabimport/internal/transformer"
)

// Step is the X distance between consecutive points. It is fixed; row i sits
// at (Step*i, 0, 0).
const Step = 0.01

// Point is a position in host space.
type Point struct{ X, Y, Z float64 }

// PointAt returns the coordinate of the row with zero-based index i.
func PointAt(i int) Point { return Point{X: Step * float64(i)} }

// Table is the output table of one import. It grows while the import runs
// and is read-only once Finalize has been called.
type Table struct {
	schema schema.Schema
	rows   []transformer.Row
	final  bool
}

// New returns an empty table for s. The schema is copied.
func New(s schema.Schema) *Table {
	return &Table{schema: s.Clone()}
}

// Append adds row at the next index. It panics on a finalized table or on a
// row that does not match the schema width; both are programming errors.
func (t *Table) Append(row transformer.Row) int {
	if t.final {
		panic("table: append to finalized table")
	}
	if len(row.V) != len(t.schema) {
		panic(fmt.Sprintf("table: row width %d != schema width %d", len(row.V), len(t.schema)))
	}
	t.rows = append(t.rows, row)
	return len(t.rows) - 1
}

// Finalize freezes the table.
func (t *Table) Finalize() { t.final = true }

// Finalized reports whether Finalize has been called.
func (t *Table) Finalized() bool { return t.final }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Schema returns a copy of the table's schema.
func (t *Table) Schema() schema.Schema { return t.schema.Clone() }

// Attributes returns the exposed attribute names, one per schema field.
func (t *Table) Attributes() []string { return t.schema.AttributeNames() }

// Row returns row i and its coordinate.
func (t *Table) Row(i int) (transformer.Row, Point) {
	return t.rows[i], PointAt(i)
}

// Value returns column col of row i.
func (t *Table) Value(i, col int) schema.Value {
	return t.rows[i].V[col]
}

// Column returns every value of attribute col in row order.
func (t *Table) Column(col int) []schema.Value {
	out := make([]schema.Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.V[col]
	}
	return out
}

// Each calls fn for every row in order; it stops early when fn returns false.
func (t *Table) Each(fn func(i int, p Point, row transformer.Row) bool) {
	for i, r := range t.rows {
		if !fn(i, PointAt(i), r) {
			return
		}
	}
}

// Fingerprint hashes the attribute names, types and every value in order.
// Two imports of the same input produce the same fingerprint.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, f := range t.schema {
		name := f.AttributeName()
		binary.LittleEndian.PutUint64(buf[:], uint64(len(name)))
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(name)
		buf[0] = byte(f.Type)
		_, _ = h.Write(buf[:1])
	}
	for _, r := range t.rows {
		for _, v := range r.V {
			var bits uint64
			switch v.Type {
			case schema.Float:
				bits = math.Float64bits(v.F)
			case schema.Integer:
				bits = uint64(v.I)
			case schema.Boolean:
				if v.B {
					bits = 1
				}
			}
			binary.LittleEndian.PutUint64(buf[:], bits)
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}
