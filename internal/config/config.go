// Package config defines the JSON-serializable job model for an import. A job
// file names the source, how to parse it, the field schema, and where the
// resulting point table is rendered. Decoding uses the standard library; the
// Options helper gives typed access to format-specific knobs.
//
// Example:
//
//	{
//	  "name":   "population",
//	  "source": { "kind": "file", "file": { "path": "data/people.json" }, "encoding": "utf-8-sig" },
//	  "parser": { "kind": "json", "options": { "array_key": "people" } },
//	  "fields": [ { "name": "kanton_nummer", "type": "int" }, { "name": "weiblich", "type": "bool" } ],
//	  "output": { "kind": "ply", "path": "out/people.ply" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"tabimport/internal/schema"
)

// Job describes one import from a file into a rendered point table.
type Job struct {
	// Name labels the run in logs and metrics. Defaults to the file base name.
	Name string `json:"name"`

	Source Source      `json:"source"`
	Parser Parser      `json:"parser"`
	Fields []FieldSpec `json:"fields"`
	Output Output      `json:"output"`
}

// Source identifies the input.
type Source struct {
	// Kind selects the source implementation: "file" (default) or "http".
	Kind string `json:"kind"`

	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`

	// Encoding is the text encoding label applied before parsing. Empty
	// selects the format default (utf-8-sig for JSON, windows-1252 for CSV).
	Encoding string `json:"encoding"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL string `json:"url"`

	// MaxRetries is the number of retries on 5xx/429 and transport errors.
	MaxRetries int `json:"max_retries"`

	// InsecureSkipVerify disables TLS certificate checks.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// Location returns the file path or URL the job reads.
func (s Source) Location() string {
	if s.Kind == "http" {
		return s.HTTP.URL
	}
	return s.File.Path
}

// Parser selects the source format.
type Parser struct {
	// Kind is "json" or "csv". Empty infers it from the file extension.
	Kind string `json:"kind"`

	// Options is interpreted by the selected parser:
	//   json: array_key (string)
	//   csv:  comma (one-character string), skip_lines (int)
	Options Options `json:"options"`
}

// FieldSpec is the on-disk form of a schema field. Type is kept as a string
// so ValidateJob can report unknown spellings instead of failing the decode.
type FieldSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Output selects where the finished table is rendered.
type Output struct {
	// Kind is one of "ply", "sqlite", "postgres", "mssql", "mysql" or "none".
	Kind string `json:"kind"`

	// Path is the target file for "ply".
	Path string `json:"path"`

	DB DBConfig `json:"db"`
}

// DBConfig configures the SQL outputs.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn"`

	// Table receives one row per point: run_id, point_index, x, y, z, then
	// one column per field.
	Table string `json:"table"`

	// AutoCreateTable creates Table from the field schema when set.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Schema converts the field specs into a schema snapshot.
func (j Job) Schema() (schema.Schema, error) {
	out := make(schema.Schema, 0, len(j.Fields))
	for i, f := range j.Fields {
		ft, err := schema.ParseFieldType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", i, err)
		}
		out = append(out, schema.Field{Name: f.Name, Type: ft})
	}
	return out, nil
}

// Load decodes a job file.
func Load(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, fmt.Errorf("open job: %w", err)
	}
	defer f.Close()

	var j Job
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&j); err != nil {
		return Job{}, fmt.Errorf("decode job %s: %w", path, err)
	}
	return j, nil
}
