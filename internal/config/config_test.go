package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tabimport/internal/schema"
)

/*
TestJob_Decode decodes a complete job and converts its fields into a schema.
*/
func TestJob_Decode(t *testing.T) {
	t.Parallel()

	const js = `{
	  "name": "people",
	  "source": { "kind": "file", "file": { "path": "testdata/people.csv" }, "encoding": "latin-1" },
	  "parser": { "kind": "csv", "options": { "comma": ";", "skip_lines": 2 } },
	  "fields": [
	    { "name": "age", "type": "int" },
	    { "name": "height", "type": "float" },
	    { "name": "", "type": "bool" }
	  ],
	  "output": {
	    "kind": "sqlite",
	    "db": { "dsn": "file:out.db", "table": "points", "auto_create_table": true }
	  }
	}`

	var j Job
	if err := json.Unmarshal([]byte(js), &j); err != nil {
		t.Fatalf("json.Unmarshal(Job): %v", err)
	}

	if j.Name != "people" {
		t.Fatalf("name = %q, want people", j.Name)
	}
	if j.Source.Kind != "file" || j.Source.File.Path != "testdata/people.csv" || j.Source.Encoding != "latin-1" {
		t.Fatalf("source decoded = %#v", j.Source)
	}
	if got := j.Parser.Options.Rune("comma", ','); got != ';' {
		t.Fatalf("parser.options.comma = %q, want ';'", got)
	}
	if got := j.Parser.Options.Int("skip_lines", 0); got != 2 {
		t.Fatalf("parser.options.skip_lines = %d, want 2", got)
	}
	if j.Output.Kind != "sqlite" || j.Output.DB.Table != "points" || !j.Output.DB.AutoCreateTable {
		t.Fatalf("output decoded = %#v", j.Output)
	}

	s, err := j.Schema()
	if err != nil {
		t.Fatalf("Schema(): %v", err)
	}
	want := schema.Schema{
		{Name: "age", Type: schema.Integer},
		{Name: "height", Type: schema.Float},
		{Name: "", Type: schema.Boolean},
	}
	if len(s) != len(want) {
		t.Fatalf("len(schema) = %d, want %d", len(s), len(want))
	}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("schema[%d] = %+v, want %+v", i, s[i], want[i])
		}
	}
}

/*
TestJob_SchemaUnknownType verifies that an unknown type spelling is reported
with the offending field index.
*/
func TestJob_SchemaUnknownType(t *testing.T) {
	t.Parallel()

	j := Job{Fields: []FieldSpec{{Name: "a", Type: "int"}, {Name: "b", Type: "date"}}}
	_, err := j.Schema()
	if err == nil {
		t.Fatalf("Schema(): want error for type date")
	}
	if !strings.Contains(err.Error(), "fields[1]") {
		t.Fatalf("error = %q, want it to name fields[1]", err)
	}
}

/*
TestLoad_RejectsUnknownKeys verifies that Load reads a job file and refuses
misspelled keys instead of silently ignoring them.
*/
func TestLoad_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte(`{"source":{"file":{"path":"a.json"}},"parser":{"options":{"array_key":"rows"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`{"sorce":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	j, err := Load(good)
	if err != nil {
		t.Fatalf("Load(good): %v", err)
	}
	if j.Source.File.Path != "a.json" || j.Parser.Options.String("array_key", "") != "rows" {
		t.Fatalf("Load(good) = %#v", j)
	}

	if _, err := Load(bad); err == nil {
		t.Fatalf("Load(bad): want error for unknown key")
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("Load(missing): want error")
	}
}
