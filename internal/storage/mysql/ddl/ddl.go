// Package ddl is the MySQL dialect of the point table.
package ddl

import (
	"strings"

	gddl "tabimport/internal/ddl"
	"tabimport/internal/schema"
)

// Dialect quotes with backticks and keeps the primary key in column order.
var Dialect = gddl.Dialect{
	Name:       "mysql ddl",
	QuoteIdent: QuoteIdent,
	Types: gddl.ColumnTypes{
		RunID: "CHAR(36)",
		Index: "BIGINT",
		Float: "DOUBLE",
		Int:   "BIGINT",
		Bool:  "BOOLEAN",
	},
}

// QuoteIdent quotes a MySQL identifier: a`b becomes `a``b`.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// CreateTableSQL renders the point table statement for s.
func CreateTableSQL(table string, s schema.Schema) (string, error) {
	return Dialect.PointTable(table, s)
}
