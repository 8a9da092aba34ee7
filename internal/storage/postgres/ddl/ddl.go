// Package ddl is the Postgres dialect of the point table.
package ddl

import (
	gddl "tabimport/internal/ddl"
	"tabimport/internal/schema"
)

// Dialect sorts the primary key columns so the statement is deterministic.
// Run ids stay TEXT because COPY binds them as Go strings.
var Dialect = gddl.Dialect{
	Name:           "postgres ddl",
	QuoteIdent:     gddl.DoubleQuote,
	SortPrimaryKey: true,
	Types: gddl.ColumnTypes{
		RunID: "TEXT",
		Index: "BIGINT",
		Float: "DOUBLE PRECISION",
		Int:   "BIGINT",
		Bool:  "BOOLEAN",
	},
}

// CreateTableSQL renders the point table statement for s.
func CreateTableSQL(table string, s schema.Schema) (string, error) {
	return Dialect.PointTable(table, s)
}
