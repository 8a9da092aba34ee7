// Package ddl is the SQL Server dialect of the point table.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the statement is wrapped in an
// IF OBJECT_ID(...) IS NULL guard:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL],
//	    PRIMARY KEY ([pk1], [pk2])
//	  );
//	END;
package ddl

import (
	"fmt"
	"strings"

	gddl "tabimport/internal/ddl"
	"tabimport/internal/schema"
)

// Dialect quotes with brackets and renders the guarded script.
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: quoteIdent,
	Wrap: func(fqn string, lines []string) string {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
			fqn, fqn, strings.Join(lines, ",\n    "),
		)
	},
	Types: gddl.ColumnTypes{
		RunID: "CHAR(36)",
		Index: "BIGINT",
		Float: "FLOAT",
		Int:   "BIGINT",
		Bool:  "BIT",
	},
}

// quoteIdent quotes one identifier segment with brackets, escaping closing
// brackets: weird]id becomes [weird]]id].
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// CreateTableSQL renders the guarded point table script for s.
func CreateTableSQL(table string, s schema.Schema) (string, error) {
	return Dialect.PointTable(table, s)
}
