// Package csv reads the records of an import from delimiter-separated text.
//
// Layout of a source:
//
//	<SkipLines raw lines, discarded unread>
//	header line: column names matched against field names
//	data rows...
//
// Leading lines are discarded as raw text before the CSV tokenizer sees the
// stream, so they may contain anything, including unbalanced quotes.
package csv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"tabimport/internal/config"
	"tabimport/internal/parser"
	"tabimport/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures the CSV reader. Zero values select the defaults.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// SkipLines is the number of raw lines discarded before the header.
	SkipLines int
}

// FromConfigOptions reads "comma" and "skip_lines" from a generic options bag.
func FromConfigOptions(o config.Options) Options {
	return Options{
		Comma:     o.Rune("comma", ','),
		SkipLines: o.Int("skip_lines", 0),
	}
}

// ValidComma reports whether r can be used as a delimiter.
func ValidComma(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// Reader maps each data row onto the header names.
type Reader struct {
	cr      *csv.Reader
	header  []string
	skipped int
	line    int
}

// NewReader discards opt.SkipLines lines and reads the header. Running out
// of input while skipping, or before a header, is not an error: the
// returned Reader simply yields io.EOF. Read failures and broken quoting
// yield *parser.SourceParseError.
func NewReader(r io.Reader, opt Options) (*Reader, error) {
	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}
	if !ValidComma(comma) {
		return nil, &parser.SourceParseError{Format: parser.CSV, Err: fmt.Errorf("invalid delimiter %q", comma)}
	}
	if opt.SkipLines < 0 {
		return nil, &parser.SourceParseError{Format: parser.CSV, Err: fmt.Errorf("negative skip count %d", opt.SkipLines)}
	}

	br := bufio.NewReader(r)
	out := &Reader{}
	for out.skipped < opt.SkipLines {
		_, err := br.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, &parser.SourceParseError{Format: parser.CSV, Line: out.skipped + 1, Err: err}
		}
		out.skipped++
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	out.cr = cr

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		out.cr = nil
		return out, nil
	}
	if err != nil {
		return nil, out.parseErr(err)
	}
	hdr = append([]string(nil), hdr...)
	if len(hdr) > 0 {
		hdr[0] = strings.TrimPrefix(hdr[0], utf8BOM)
	}
	out.header = hdr
	out.line = out.lineOf()
	return out, nil
}

// Header returns the column names, or nil when the source ended before a
// header line.
func (r *Reader) Header() []string { return r.header }

// Line returns the 1-based source line of the row last returned, counting
// skipped lines.
func (r *Reader) Line() int { return r.line }

// Next returns the next data row keyed by header name. Cells beyond the
// header are ignored; header columns missing from a short row are absent
// from the record. When a header name repeats, the rightmost column wins.
func (r *Reader) Next() (records.Record, error) {
	if r.cr == nil {
		return nil, io.EOF
	}
	row, err := r.cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, r.parseErr(err)
	}
	r.line = r.lineOf()

	rec := make(records.Record, len(r.header))
	for i, name := range r.header {
		if i >= len(row) {
			break
		}
		rec[name] = row[i]
	}
	return rec, nil
}

func (r *Reader) lineOf() int {
	line, _ := r.cr.FieldPos(0)
	return r.skipped + line
}

func (r *Reader) parseErr(err error) error {
	line := 0
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		line = r.skipped + pe.Line
	}
	return &parser.SourceParseError{Format: parser.CSV, Line: line, Err: err}
}
