package importer

import (
	"errors"
	"fmt"

	"tabimport/internal/parser"
	jsonparser "tabimport/internal/parser/json"
	"tabimport/internal/transformer"
	"tabimport/internal/transformer/builtin"
)

// Outcome is the overall result of one import.
type Outcome int

const (
	// Success means every record was imported.
	Success Outcome = iota
	// PartialFailure means a CSV import stopped at a bad row but kept the
	// rows before it.
	PartialFailure
	// Failure means nothing was imported.
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case PartialFailure:
		return "partial_failure"
	case Failure:
		return "failure"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Severity is how loudly an outcome should be surfaced to the user.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	}
	return "error"
}

// Severity maps Success to info, PartialFailure to warning and Failure to
// error.
func (o Outcome) Severity() Severity {
	switch o {
	case Success:
		return SeverityInfo
	case PartialFailure:
		return SeverityWarning
	}
	return SeverityError
}

// ErrorKind names an error class of the import error taxonomy.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindSourceParse        ErrorKind = "SourceParseError"
	KindArrayKeyNotFound   ErrorKind = "ArrayKeyNotFoundError"
	KindInvalidRecordShape ErrorKind = "InvalidRecordShapeError"
	KindFieldMissing       ErrorKind = "FieldMissingError"
	KindTypeCoercion       ErrorKind = "TypeCoercionError"
)

// Kind classifies err into the taxonomy. Errors outside it, such as I/O
// failures on the stream, count as source errors.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		keyErr   *jsonparser.ArrayKeyNotFoundError
		shapeErr *jsonparser.InvalidRecordShapeError
		missErr  *transformer.MissingFieldError
		coerErr  *builtin.CoercionError
		srcErr   *parser.SourceParseError
	)
	switch {
	case errors.As(err, &keyErr):
		return KindArrayKeyNotFound
	case errors.As(err, &shapeErr):
		return KindInvalidRecordShape
	case errors.As(err, &missErr):
		return KindFieldMissing
	case errors.As(err, &coerErr):
		return KindTypeCoercion
	case errors.As(err, &srcErr):
		return KindSourceParse
	}
	return KindSourceParse
}

// Report describes what an import did. It is always returned, also when the
// import failed outright.
type Report struct {
	Outcome         Outcome   `json:"outcome"`
	RecordsImported int       `json:"records_imported"`
	Message         string    `json:"message"`
	ErrorDetail     string    `json:"error_detail,omitempty"`
	ErrorKind       ErrorKind `json:"error_kind,omitempty"`

	// RunID identifies the run in logs, metrics and sink rows. It is set by
	// the run layer, not by Import.
	RunID string `json:"run_id,omitempty"`

	// Err is the underlying error for programmatic inspection.
	Err error `json:"-"`
}

// String renders the report as a single user-facing line.
func (r Report) String() string {
	return fmt.Sprintf("%s: %s", r.Outcome.Severity(), r.Message)
}

// RecordError locates the record whose decoding stopped an import.
type RecordError struct {
	Format parser.Format
	// Index is the zero-based position of the record in the source.
	Index int
	// Line is the 1-based source line for CSV, 0 for JSON.
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

const noDataMessage = "import produced no data (check options such as the delimiter)"

func success(n int) Report {
	return Report{
		Outcome:         Success,
		RecordsImported: n,
		Message:         "imported " + records(n),
	}
}

func records(n int) string {
	if n == 1 {
		return "1 record"
	}
	return fmt.Sprintf("%d records", n)
}

// fatal is a Failure whose message carries the cause after what was being
// attempted.
func fatal(what string, err error) Report {
	return failed(fmt.Sprintf("%s: %v", what, err), err)
}

func failed(msg string, err error) Report {
	r := Report{Outcome: Failure, Message: msg, Err: err, ErrorKind: Kind(err)}
	if err != nil {
		r.ErrorDetail = err.Error()
	}
	return r
}
