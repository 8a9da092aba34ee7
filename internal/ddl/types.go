package ddl

// ColumnDef is one column of a point table. Name is unquoted; the dialect
// quotes it when the statement is rendered. A PrimaryKey column is always
// rendered NOT NULL whatever Nullable says.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef is a point table ready to be rendered. FQN may carry a schema
// prefix ("analytics.points"); empty dotted segments are dropped.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
