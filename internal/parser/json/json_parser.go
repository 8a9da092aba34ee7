// Package json reads the records of an import from a JSON document.
//
// The whole stream is parsed as one document. Its top level must be an
// object; the member named by Options.ArrayKey must be an array whose
// elements are objects:
//
//	{ "people": [ {"age": 31, "f": true}, {"age": 40, "f": false} ], "meta": {...} }
//
// Numbers are kept as json.Number so the coercion step decides how to read
// them.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tabimport/internal/config"
	"tabimport/internal/parser"
	"tabimport/pkg/records"
)

// Options configures the JSON reader.
type Options struct {
	// ArrayKey names the top-level member holding the record array. The empty
	// string is a valid key.
	ArrayKey string
}

// FromConfigOptions reads "array_key" from a generic options bag.
func FromConfigOptions(o config.Options) Options {
	return Options{ArrayKey: o.String("array_key", "")}
}

// ArrayKeyNotFoundError reports that the top-level object has no member
// with the configured name.
type ArrayKeyNotFoundError struct {
	Key       string
	Available []string
}

func (e *ArrayKeyNotFoundError) Error() string {
	return fmt.Sprintf("json: top-level member %q not found", e.Key)
}

// InvalidRecordShapeError reports a value that is not shaped like a record
// container or a record. Index is the array position of the offending
// element, or -1 when the member itself is not an array.
type InvalidRecordShapeError struct {
	Key   string
	Index int
	Got   string
}

func (e *InvalidRecordShapeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("json: member %q is %s, want array of objects", e.Key, e.Got)
	}
	return fmt.Sprintf("json: %q[%d] is %s, want object", e.Key, e.Index, e.Got)
}

// Reader iterates the elements of the configured array.
type Reader struct {
	key   string
	items []any
	next  int
}

// NewReader parses all of r. Malformed or trailing content yields
// *parser.SourceParseError, a missing member *ArrayKeyNotFoundError and a
// non-array member *InvalidRecordShapeError.
func NewReader(r io.Reader, opt Options) (*Reader, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &parser.SourceParseError{Format: parser.JSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, &parser.SourceParseError{Format: parser.JSON, Err: err}
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, &parser.SourceParseError{
			Format: parser.JSON,
			Err:    fmt.Errorf("top-level value is %s, want object", kindOf(root)),
		}
	}
	member, ok := obj[opt.ArrayKey]
	if !ok {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		return nil, &ArrayKeyNotFoundError{Key: opt.ArrayKey, Available: keys}
	}
	items, ok := member.([]any)
	if !ok {
		return nil, &InvalidRecordShapeError{Key: opt.ArrayKey, Index: -1, Got: kindOf(member)}
	}
	return &Reader{key: opt.ArrayKey, items: items}, nil
}

// Len returns the number of array elements.
func (r *Reader) Len() int { return len(r.items) }

// Next returns the next element as a record, *InvalidRecordShapeError for a
// non-object element, or io.EOF after the last one.
func (r *Reader) Next() (records.Record, error) {
	if r.next >= len(r.items) {
		return nil, io.EOF
	}
	i := r.next
	r.next++
	m, ok := r.items[i].(map[string]any)
	if !ok {
		return nil, &InvalidRecordShapeError{Key: r.key, Index: i, Got: kindOf(r.items[i])}
	}
	return records.Record(m), nil
}

// Position returns the zero-based index of the element last returned.
func (r *Reader) Position() int { return r.next - 1 }

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}
