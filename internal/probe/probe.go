// Package probe suggests a field schema for a source by sampling its first
// bytes: the CSV header row or the objects of a JSON record array, with each
// column's type inferred from the sampled values.
package probe

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"tabimport/internal/config"
	"tabimport/internal/parser"
	"tabimport/internal/schema"
	"tabimport/internal/textenc"
)

// Defaults for Options.
const (
	DefaultMaxBytes   = 1 << 20
	DefaultMaxRecords = 1000
)

// Options control sampling.
type Options struct {
	// Location is a local path, a file:// path or an http(s) URL.
	Location string
	// Format forces "json" or "csv"; empty infers it from the extension.
	Format string
	// ArrayKey names the JSON member holding the records. Empty picks the
	// first member whose value is an array.
	ArrayKey string
	// Comma is the CSV delimiter; zero means ','.
	Comma rune
	// SkipLines discards leading CSV lines before the header.
	SkipLines int
	// Encoding overrides the per-format text default.
	Encoding string
	// MaxBytes caps the sample size.
	MaxBytes int
	// MaxRecords caps the records inspected.
	MaxRecords int
	// Insecure skips TLS verification for http(s) sources.
	Insecure bool
}

// Column is one discovered source key.
type Column struct {
	// Name is the key exactly as it appears in the source.
	Name string
	// Type is the inferred attribute type; valid only when Usable.
	Type schema.FieldType
	// Usable is false for keys holding text, nested values or only blanks.
	Usable bool
	// Present counts the sampled records that carried the key.
	Present int
	// Normalized is NormalizeName(Name), for comparing against SQL-safe
	// naming.
	Normalized string
}

// Result is the outcome of a probe.
type Result struct {
	Format   parser.Format
	ArrayKey string
	Records  int
	Columns  []Column
}

// Schema returns the usable columns as a schema, in source order.
func (r Result) Schema() schema.Schema {
	var s schema.Schema
	for _, c := range r.Columns {
		if c.Usable {
			s = append(s, schema.Field{Name: c.Name, Type: c.Type})
		}
	}
	return s
}

// Job builds a starter job for the probed source. name defaults to the
// normalized source file name; the output is a PLY file next to the input
// for local sources and none for URLs.
func (r Result) Job(opt Options, name string) config.Job {
	base := baseName(opt.Location)
	if name == "" {
		name = NormalizeName(strings.TrimSuffix(base, path.Ext(base)))
	}

	j := config.Job{Name: name}
	if IsURL(opt.Location) {
		j.Source = config.Source{Kind: "http", HTTP: config.SourceHTTP{URL: opt.Location}}
	} else {
		p := strings.TrimPrefix(opt.Location, "file://")
		j.Source = config.Source{Kind: "file", File: config.SourceFile{Path: p}}
		j.Output = config.Output{Kind: "ply", Path: filepath.Join(filepath.Dir(p), name+".ply")}
	}
	j.Source.Encoding = opt.Encoding

	opts := config.Options{}
	switch r.Format {
	case parser.JSON:
		j.Parser.Kind = "json"
		opts["array_key"] = r.ArrayKey
	case parser.CSV:
		j.Parser.Kind = "csv"
		if opt.Comma != 0 && opt.Comma != ',' {
			opts["comma"] = string(opt.Comma)
		}
		if opt.SkipLines > 0 {
			opts["skip_lines"] = opt.SkipLines
		}
	}
	j.Parser.Options = opts

	for _, f := range r.Schema() {
		j.Fields = append(j.Fields, config.FieldSpec{Name: f.Name, Type: f.Type.String()})
	}
	return j
}

// Probe samples opt.Location and infers its columns.
func Probe(ctx context.Context, opt Options) (Result, error) {
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	if opt.MaxRecords <= 0 {
		opt.MaxRecords = DefaultMaxRecords
	}

	f, err := formatOf(opt)
	if err != nil {
		return Result{}, err
	}

	sample, err := peekFn(ctx, opt.Location, opt.MaxBytes, opt.Insecure)
	if err != nil {
		return Result{}, fmt.Errorf("probe: sample %s: %w", opt.Location, err)
	}
	truncated := len(sample) >= opt.MaxBytes
	log.Printf("probe: sampled %d bytes from %s (truncated=%t)", len(sample), opt.Location, truncated)

	def := textenc.DefaultJSON
	if f == parser.CSV {
		def = textenc.DefaultCSV
		if truncated {
			sample = cutToLastNewline(sample)
		}
	}
	r, err := textenc.NewReader(bytes.NewReader(sample), opt.Encoding, def)
	if err != nil {
		return Result{}, fmt.Errorf("probe: %w", err)
	}

	res := Result{Format: f}
	var cols []*column
	switch f {
	case parser.CSV:
		cols, res.Records, err = sampleCSV(r, opt)
	case parser.JSON:
		cols, res.ArrayKey, res.Records, err = sampleJSON(r, opt)
	}
	if err != nil {
		return Result{}, err
	}

	for _, c := range cols {
		t, ok := inferType(c.values)
		res.Columns = append(res.Columns, Column{
			Name:       c.name,
			Type:       t,
			Usable:     ok,
			Present:    c.present,
			Normalized: NormalizeName(c.name),
		})
	}
	return res, nil
}

func formatOf(opt Options) (parser.Format, error) {
	if strings.TrimSpace(opt.Format) != "" {
		return parser.ParseFormat(opt.Format)
	}
	return parser.FormatFromPath(baseName(opt.Location))
}

// baseName returns the last path element of a path or of a URL's path.
func baseName(location string) string {
	if IsURL(location) {
		if u, err := url.Parse(location); err == nil {
			return path.Base(u.Path)
		}
	}
	return filepath.Base(strings.TrimPrefix(location, "file://"))
}

// sampleCSV reads the header and up to MaxRecords rows. Malformed or
// misaligned rows are skipped; the sample only guides inference.
func sampleCSV(r io.Reader, opt Options) ([]*column, int, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	skip := opt.SkipLines
	var header []string
	for header == nil {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("probe: no header row in sample")
		}
		if err != nil {
			return nil, 0, fmt.Errorf("probe: csv: %w", err)
		}
		if skip > 0 {
			skip--
			continue
		}
		header = rec
	}

	cols := make([]*column, len(header))
	for i, h := range header {
		cols[i] = &column{name: h}
	}

	n := 0
	for n < opt.MaxRecords {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(rec) != len(header) {
			continue
		}
		for i, v := range rec {
			cols[i].values = append(cols[i].values, v)
			cols[i].present++
		}
		n++
	}
	return cols, n, nil
}

// sampleJSON walks the top-level object token by token so a truncated
// sample still yields the records that were complete.
func sampleJSON(r io.Reader, opt Options) ([]*column, string, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, "", 0, fmt.Errorf("probe: json: top level: %w", err)
	}

	key := ""
	for {
		if !dec.More() {
			return nil, "", 0, fmt.Errorf("probe: json: no record array found")
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, "", 0, fmt.Errorf("probe: json: %w", err)
		}
		k, _ := tok.(string)
		if opt.ArrayKey != "" && k != opt.ArrayKey {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, "", 0, fmt.Errorf("probe: json: member %q not in sample: %w", opt.ArrayKey, err)
			}
			continue
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, "", 0, fmt.Errorf("probe: json: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '[' {
			key = k
			break
		}
		if opt.ArrayKey != "" {
			return nil, "", 0, fmt.Errorf("probe: json: member %q is not an array", k)
		}
		if d, ok := tok.(json.Delim); ok && d == '{' {
			if err := skipRest(dec); err != nil {
				return nil, "", 0, fmt.Errorf("probe: json: %w", err)
			}
		}
	}

	var (
		cols  []*column
		index = map[string]*column{}
		n     int
	)
	for n < opt.MaxRecords && dec.More() {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			if n == 0 {
				return nil, key, 0, fmt.Errorf("probe: json: record 0: %w", err)
			}
			// A truncated sample ends mid-record.
			break
		}
		for _, k := range orderedKeys(obj, cols) {
			c, ok := index[k]
			if !ok {
				c = &column{name: k}
				index[k] = c
				cols = append(cols, c)
			}
			c.values = append(c.values, jsonValue(obj[k]))
			c.present++
		}
		n++
	}
	return cols, key, n, nil
}

// orderedKeys returns obj's keys with already known columns first (in
// column order) and new keys sorted, since Go maps do not keep member order.
func orderedKeys(obj map[string]any, known []*column) []string {
	out := make([]string, 0, len(obj))
	seen := make(map[string]bool, len(known))
	for _, c := range known {
		seen[c.name] = true
		if _, ok := obj[c.name]; ok {
			out = append(out, c.name)
		}
	}
	var fresh []string
	for k := range obj {
		if !seen[k] {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	return append(out, fresh...)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("want %q, got %v", want, tok)
	}
	return nil
}

// skipRest consumes tokens until the container just opened is closed.
func skipRest(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
