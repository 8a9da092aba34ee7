// Package importer turns a text stream of JSON or CSV records into a point
// table according to a field schema.
//
// Import is one synchronous call. It never returns a bare error: every exit
// path produces a Report saying what happened and how many records were
// imported. The two formats keep different failure policies:
//
//   - JSON is all or nothing. The first record that fails to decode aborts
//     the import and the rows decoded so far are discarded.
//   - CSV is best effort. The first row that fails to decode stops the
//     import, but the rows before it are kept.
//
// Parse-level problems (malformed JSON, broken CSV quoting, a missing or
// misshapen record array) abort either format with an empty table. An
// import that ends with zero records is a Failure.
//
// An in-flight import cannot be canceled.
package importer

import (
	"errors"
	"fmt"
	"io"

	"tabimport/internal/parser"
	csvparser "tabimport/internal/parser/csv"
	jsonparser "tabimport/internal/parser/json"
	"tabimport/internal/schema"
	"tabimport/internal/table"
	"tabimport/internal/transformer"
)

// Options carries the format-specific settings. Only the part matching the
// format of the call is read.
type Options struct {
	JSON jsonparser.Options
	CSV  csvparser.Options
}

// policy says what happens to already decoded rows when a record fails.
type policy int

const (
	abortDiscard policy = iota // JSON
	abortKeep                  // CSV
)

func policyFor(f parser.Format) policy {
	if f == parser.CSV {
		return abortKeep
	}
	return abortDiscard
}

// Import reads r as format f and decodes every record against s. The
// returned table is finalized. r is read but not closed; see ImportSource
// for the variant that owns its stream.
func Import(r io.Reader, f parser.Format, s schema.Schema, opt Options) (*table.Table, Report) {
	s = s.Clone()
	t := table.New(s)
	defer t.Finalize()

	if len(s) == 0 {
		rep := success(0)
		rep.Message = "no fields configured; nothing to import"
		return t, rep
	}

	rd, err := newReader(r, f, opt)
	if err != nil {
		return t, fatal("cannot read source", err)
	}

	pol := policyFor(f)
	for i := 0; ; i++ {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Parse and shape problems are fatal for both formats.
			return empty(s), fatal("cannot read source", err)
		}

		row, err := transformer.Decode(rec, s)
		if err != nil {
			rerr := &RecordError{Format: f, Index: i, Err: err}
			if lr, ok := rd.(interface{ Line() int }); ok {
				rerr.Line = lr.Line()
			}
			return stop(t, s, pol, rerr)
		}
		t.Append(row)
	}

	if t.Len() == 0 {
		return t, failed(noDataMessage, nil)
	}
	return t, success(t.Len())
}

// stop applies the format policy after a record failed to decode.
func stop(t *table.Table, s schema.Schema, pol policy, err *RecordError) (*table.Table, Report) {
	if pol == abortDiscard || t.Len() == 0 {
		msg := fmt.Sprintf("import aborted, no records imported: %v", err)
		if pol == abortKeep {
			msg = fmt.Sprintf("%s: %v", noDataMessage, err)
		}
		return empty(s), failed(msg, err)
	}

	rep := failed("", err)
	rep.Outcome = PartialFailure
	rep.RecordsImported = t.Len()
	rep.Message = fmt.Sprintf("imported %s; stopped at %v", records(t.Len()), err)
	return t, rep
}

func empty(s schema.Schema) *table.Table {
	t := table.New(s)
	t.Finalize()
	return t
}

func newReader(r io.Reader, f parser.Format, opt Options) (parser.Reader, error) {
	switch f {
	case parser.JSON:
		return jsonparser.NewReader(r, opt.JSON)
	case parser.CSV:
		return csvparser.NewReader(r, opt.CSV)
	}
	return nil, &parser.SourceParseError{Format: f, Err: fmt.Errorf("unsupported format")}
}
