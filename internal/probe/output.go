package probe

import (
	"encoding/json"
	"fmt"
	"io"

	"tabimport/internal/storage"
)

// Output selects how WriteOutput renders a Result.
type Output struct {
	// Name overrides the suggested job name.
	Name string
	// Compact prints only the "name:type,..." schema.
	Compact bool
	// DDLKind prints the point table statement for a registered SQL kind.
	DDLKind string
	// Table names the table for DDLKind; empty uses the job name.
	Table string
}

// WriteOutput writes res to w: the suggested job as indented JSON by
// default, or the compact schema, or the CREATE TABLE statement. DDL kinds
// must be registered with the storage package by the caller's imports.
func WriteOutput(w io.Writer, res Result, opt Options, out Output) error {
	job := res.Job(opt, out.Name)

	switch {
	case out.DDLKind != "":
		table := out.Table
		if table == "" {
			table = job.Name
		}
		sql, err := storage.CreateTableSQL(out.DDLKind, table, res.Schema())
		if err != nil {
			return fmt.Errorf("%w (known kinds: %v)", err, storage.DDLKinds())
		}
		_, err = fmt.Fprintln(w, sql)
		return err

	case out.Compact:
		_, err := fmt.Fprintln(w, res.Schema().String())
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(job)
}

// Warnings describes the columns a job will not cover and the names that
// are not plain identifiers.
func (r Result) Warnings() []string {
	var out []string
	for _, c := range r.Columns {
		switch {
		case !c.Usable:
			out = append(out, fmt.Sprintf("skipped column %q: no numeric or boolean values", c.Name))
		case c.Normalized != c.Name:
			out = append(out, fmt.Sprintf("column %q is not a plain identifier (suggest %q); SQL and PLY outputs may reject it", c.Name, c.Normalized))
		}
	}
	return out
}
