package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"tabimport/internal/schema"
	"tabimport/internal/textenc"
)

// IssueSeverity grades a finding of ValidateJob.
type IssueSeverity string

const (
	// SeverityError blocks the job.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported and the job still runs.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding. Path points into the job document, e.g.
// "parser.options.comma" or "fields[2].type".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue blocks the job.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// lint accumulates issues in document order.
type lint []Issue

func (l *lint) errorf(at, format string, a ...any) {
	*l = append(*l, Issue{Severity: SeverityError, Path: at, Message: fmt.Sprintf(format, a...)})
}

func (l *lint) warnf(at, format string, a ...any) {
	*l = append(*l, Issue{Severity: SeverityWarning, Path: at, Message: fmt.Sprintf(format, a...)})
}

// ValidateJob checks a decoded job without touching the source or the
// output. Nil means the job is clean.
func ValidateJob(j Job) []Issue {
	var l lint
	l.source(j.Source)
	l.parser(j.Parser, formatHint(j.Source))
	l.fields(j.Fields)
	l.output(j.Output)
	return l
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (l *lint) source(s Source) {
	switch strings.TrimSpace(s.Kind) {
	case "", "file":
		if blank(s.File.Path) {
			l.errorf("source.file.path", "file source requires a non-empty path")
		}
	case "http":
		if u, err := url.Parse(strings.TrimSpace(s.HTTP.URL)); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			l.errorf("source.http.url", "http source requires an absolute http(s) URL, got %q", s.HTTP.URL)
		}
		if s.HTTP.MaxRetries < 0 {
			l.errorf("source.http.max_retries", "max_retries must be >= 0")
		}
	default:
		l.errorf("source.kind", "unknown source kind %q; want file or http", s.Kind)
	}

	if !blank(s.Encoding) {
		if _, err := textenc.Lookup(strings.TrimSpace(s.Encoding)); err != nil {
			l.errorf("source.encoding", "%v", err)
		}
	}
}

// formatHint is the name whose extension picks the format when parser.kind
// is empty. The query of a URL is ignored.
func formatHint(s Source) string {
	if s.Kind != "http" {
		return s.File.Path
	}
	if u, err := url.Parse(s.HTTP.URL); err == nil {
		return path.Base(u.Path)
	}
	return ""
}

func (l *lint) parser(p Parser, hint string) {
	kind := strings.ToLower(strings.TrimSpace(p.Kind))
	if kind == "" && hint != "" {
		kind = strings.ToLower(strings.TrimPrefix(filepath.Ext(hint), "."))
		if kind != "json" && kind != "csv" {
			l.errorf("source.file.path", "cannot infer format from %q; use a .json or .csv file or set parser.kind", filepath.Base(hint))
			return
		}
	}

	switch kind {
	case "":
	case "json":
		// An empty key is valid: the document root is then the array.
		if _, ok := p.Options.Raw("array_key").(string); !ok {
			l.errorf("parser.options.array_key", "json parser requires array_key naming the top-level record array")
		}
	case "csv":
		if raw, set := p.Options["comma"]; set {
			if s, _ := raw.(string); utf8.RuneCountInString(s) != 1 {
				l.errorf("parser.options.comma", "delimiter must be exactly one character, got %q", s)
			}
		}
		if n := p.Options.Int("skip_lines", 0); n < 0 {
			l.errorf("parser.options.skip_lines", "skip_lines must be >= 0, got %d", n)
		}
	default:
		l.errorf("parser.kind", "unknown parser kind %q; want json or csv", p.Kind)
	}
}

func (l *lint) fields(fs []FieldSpec) {
	if len(fs) == 0 {
		l.warnf("fields", "no fields configured; the import will succeed with an empty table")
		return
	}

	firstAt := make(map[string]int, len(fs))
	for i, f := range fs {
		if _, err := schema.ParseFieldType(f.Type); err != nil {
			l.errorf(fmt.Sprintf("fields[%d].type", i), "%v", err)
		}
		attr := schema.Field{Name: f.Name}.AttributeName()
		if prev, dup := firstAt[attr]; dup {
			l.warnf(fmt.Sprintf("fields[%d].name", i), "attribute %q already declared by fields[%d]; rendering will reject the duplicate", attr, prev)
			continue
		}
		firstAt[attr] = i
	}
}

func (l *lint) output(o Output) {
	kind := strings.TrimSpace(o.Kind)
	switch kind {
	case "", "none":
	case "ply":
		if blank(o.Path) {
			l.errorf("output.path", "ply output requires a path")
		}
	case "sqlite", "postgres", "mssql", "mysql":
		if blank(o.DB.DSN) {
			l.errorf("output.db.dsn", "%s output requires a DSN", kind)
		}
		if blank(o.DB.Table) {
			l.errorf("output.db.table", "%s output requires a table name", kind)
		}
	default:
		l.errorf("output.kind", "unknown output kind %q", o.Kind)
	}
}
