// Package ddl lays out point tables as SQL and renders the statements the
// SQL outputs need: CREATE TABLE for the layout and INSERT for batches.
//
// What differs between SQL backends is captured by a Dialect: identifier
// quoting, the statement wrapper (IF NOT EXISTS or a guard script), the
// order of primary key columns and the column types. Backend packages such
// as internal/storage/postgres/ddl declare one Dialect each.
package ddl

import (
	"fmt"
	"sort"
	"strings"

	"tabimport/internal/schema"
)

// Dialect renders TableDefs for one SQL backend.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// QuoteIdent quotes one identifier segment. Nil selects DoubleQuote.
	QuoteIdent func(id string) string

	// SortPrimaryKey renders the PRIMARY KEY columns sorted by quoted name
	// instead of in column order.
	SortPrimaryKey bool

	// Wrap turns the quoted table name and the rendered column and
	// constraint lines into the final statement. Nil selects
	// CreateIfNotExists.
	Wrap func(fqn string, lines []string) string

	// Types are the column types of a point table in this dialect.
	Types ColumnTypes
}

// DoubleQuote quotes an identifier the ANSI way: weird"name becomes
// "weird""name".
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// CreateIfNotExists renders
//
//	CREATE TABLE IF NOT EXISTS <fqn> (
//	  <line>,
//	  ...
//	);
func CreateIfNotExists(fqn string, lines []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, strings.Join(lines, ",\n  "))
}

func (d Dialect) quote(id string) string {
	if d.QuoteIdent == nil {
		return DoubleQuote(id)
	}
	return d.QuoteIdent(id)
}

// QuoteFQN quotes each segment of a possibly schema-qualified name, so
// public.points becomes "public"."points". Empty segments are dropped.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, d.quote(p))
		}
	}
	return strings.Join(out, ".")
}

// CreateTable renders the CREATE TABLE statement for t.
//
// Each column is rendered as
//
//	<quoted name> <SQLType> [NOT NULL]
//
// NOT NULL is added for non-nullable and primary key columns. Primary key
// columns are collected into a trailing PRIMARY KEY constraint.
func (d Dialect) CreateTable(t TableDef) (string, error) {
	name := d.Name
	if name == "" {
		name = "ddl"
	}

	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", name)
	}

	lines := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", name, col)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(col))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		lines = append(lines, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(col))
		}
	}

	if len(pks) > 0 {
		if d.SortPrimaryKey {
			sort.Strings(pks)
		}
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	wrap := d.Wrap
	if wrap == nil {
		wrap = CreateIfNotExists
	}
	return wrap(d.QuoteFQN(fqn), lines), nil
}

// PointTable renders the CREATE TABLE statement of the point table for s.
func (d Dialect) PointTable(table string, s schema.Schema) (string, error) {
	def, err := FromSchema(table, s, d.Types)
	if err != nil {
		return "", err
	}
	return d.CreateTable(def)
}

// Insert renders a multi-row INSERT with rows tuples of ? placeholders.
func (d Dialect) Insert(table string, columns []string, rows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quote(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", d.QuoteFQN(table), strings.Join(quoted, ", "))
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
	}
	return sb.String()
}
