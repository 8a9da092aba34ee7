// Package parser defines what every format-specific reader shares: the
// Format enum, the record-at-a-time Reader contract, and the parse-level
// error type that makes an import fail before any record is produced.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"tabimport/pkg/records"
)

// Format identifies a source file format.
type Format int

const (
	JSON Format = iota + 1
	CSV
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case CSV:
		return "csv"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps "json"/"csv" (any case, optional leading dot) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	}
	return 0, fmt.Errorf("parser: unsupported format %q (want json or csv)", s)
}

// FormatFromPath infers the format from the file extension, ignoring case.
// Any extension other than .json or .csv is rejected.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("parser: %s has no file extension; want .json or .csv", path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return 0, fmt.Errorf("parser: %s: unsupported extension %q; want .json or .csv", path, ext)
	}
	return f, nil
}

// Reader yields raw records one at a time. Next returns io.EOF after the
// last record.
type Reader interface {
	Next() (records.Record, error)
}

// SourceParseError reports a source that cannot be read or parsed at all:
// malformed JSON, broken CSV quoting, or an I/O failure on the stream.
type SourceParseError struct {
	Format Format
	Line   int // 1-based source line when known, else 0
	Err    error
}

func (e *SourceParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s source: line %d: %v", e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("%s source: %v", e.Format, e.Err)
}

func (e *SourceParseError) Unwrap() error { return e.Err }
