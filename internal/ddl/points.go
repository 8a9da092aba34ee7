package ddl

import (
	"fmt"

	"tabimport/internal/schema"
)

// Fixed leading columns of every point table. run_id ties a row to the run
// that produced it so repeated imports can share one table.
const (
	ColRunID = "run_id"
	ColIndex = "point_index"
	ColX     = "x"
	ColY     = "y"
	ColZ     = "z"
)

// PointColumns lists the fixed columns in insert order.
var PointColumns = []string{ColRunID, ColIndex, ColX, ColY, ColZ}

// ColumnTypes are the SQL types of the columns of a point table. Coordinates
// share the Float type.
type ColumnTypes struct {
	RunID string
	Index string
	Float string
	Int   string
	Bool  string
}

// Attr returns the column type for an attribute of type t.
func (c ColumnTypes) Attr(t schema.FieldType) string {
	switch t {
	case schema.Integer:
		return c.Int
	case schema.Boolean:
		return c.Bool
	default:
		return c.Float
	}
}

// Columns returns the insert column list for s: the fixed point columns
// followed by one column per attribute. Attribute names must be unique and
// must not shadow a fixed column.
func Columns(s schema.Schema) ([]string, error) {
	if dups := s.Duplicates(); len(dups) > 0 {
		return nil, fmt.Errorf("ddl: duplicate attribute names %q", dups)
	}
	cols := make([]string, 0, len(PointColumns)+len(s))
	cols = append(cols, PointColumns...)
	for _, name := range s.AttributeNames() {
		for _, fixed := range PointColumns {
			if name == fixed {
				return nil, fmt.Errorf("ddl: attribute %q collides with a point column", name)
			}
		}
		cols = append(cols, name)
	}
	return cols, nil
}

// FromSchema builds the table definition for a point table named table.
// (run_id, point_index) is the primary key; attribute columns are nullable
// so a schema can grow without rewriting older runs.
func FromSchema(table string, s schema.Schema, types ColumnTypes) (TableDef, error) {
	if table == "" {
		return TableDef{}, fmt.Errorf("ddl: missing table")
	}
	cols, err := Columns(s)
	if err != nil {
		return TableDef{}, err
	}

	defs := []ColumnDef{
		{Name: ColRunID, SQLType: types.RunID, PrimaryKey: true},
		{Name: ColIndex, SQLType: types.Index, PrimaryKey: true},
		{Name: ColX, SQLType: types.Float},
		{Name: ColY, SQLType: types.Float},
		{Name: ColZ, SQLType: types.Float},
	}
	for i, f := range s {
		defs = append(defs, ColumnDef{
			Name:     cols[len(PointColumns)+i],
			SQLType:  types.Attr(f.Type),
			Nullable: true,
		})
	}
	return TableDef{FQN: table, Columns: defs}, nil
}
