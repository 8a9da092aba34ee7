package ddl

import (
	"strings"
	"testing"

	"tabimport/internal/schema"
)

var testTypes = ColumnTypes{RunID: "UUID", Index: "INT", Float: "FLOAT", Int: "INT", Bool: "BOOL"}

/*
TestFromSchema verifies the fixed point columns, the primary key and one
nullable column per attribute in schema order.
*/
func TestFromSchema(t *testing.T) {
	t.Parallel()

	s := schema.Schema{{Name: "age", Type: schema.Integer}, {Name: "", Type: schema.Boolean}}
	td, err := FromSchema("people", s, testTypes)
	if err != nil {
		t.Fatalf("FromSchema: %v", err)
	}
	if td.FQN != "people" || len(td.Columns) != 7 {
		t.Fatalf("got %+v", td)
	}

	want := []ColumnDef{
		{Name: "run_id", SQLType: "UUID", PrimaryKey: true},
		{Name: "point_index", SQLType: "INT", PrimaryKey: true},
		{Name: "x", SQLType: "FLOAT"},
		{Name: "y", SQLType: "FLOAT"},
		{Name: "z", SQLType: "FLOAT"},
		{Name: "age", SQLType: "INT", Nullable: true},
		{Name: schema.EmptyNameFallback, SQLType: "BOOL", Nullable: true},
	}
	for i, w := range want {
		if td.Columns[i] != w {
			t.Fatalf("col[%d]=%+v; want %+v", i, td.Columns[i], w)
		}
	}
}

/*
TestColumns_Rejects verifies that duplicate attribute names and names that
shadow a point column cannot be laid out as SQL columns.
*/
func TestColumns_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    schema.Schema
		want string
	}{
		{"duplicate", schema.Schema{{Name: "a", Type: schema.Float}, {Name: "a", Type: schema.Integer}}, "duplicate"},
		{"shadows x", schema.Schema{{Name: "x", Type: schema.Float}}, "collides"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Columns(tt.s); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err=%v; want %q", err, tt.want)
			}
			if _, err := FromSchema("t", tt.s, testTypes); err == nil {
				t.Fatalf("FromSchema: want error")
			}
		})
	}

	if _, err := FromSchema("", schema.Schema{}, testTypes); err == nil {
		t.Fatalf("empty table: want error")
	}
}
