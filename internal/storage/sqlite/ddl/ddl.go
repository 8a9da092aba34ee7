// Package ddl is the SQLite dialect of the point table. SQLite column types
// are affinities: booleans are stored as 0/1 and run ids as text.
package ddl

import (
	gddl "tabimport/internal/ddl"
	"tabimport/internal/schema"
)

// Dialect quotes with double quotes; a dotted name such as main.points is
// quoted per segment.
var Dialect = gddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: gddl.DoubleQuote,
	Types: gddl.ColumnTypes{
		RunID: "TEXT",
		Index: "INTEGER",
		Float: "REAL",
		Int:   "INTEGER",
		Bool:  "INTEGER",
	},
}

// CreateTableSQL renders the point table statement for s.
func CreateTableSQL(table string, s schema.Schema) (string, error) {
	return Dialect.PointTable(table, s)
}
