// Package textenc turns a byte stream into UTF-8 text before it reaches a
// parser. JSON sources default to UTF-8 with a leading byte-order mark
// removed; CSV sources default to a legacy single-byte code page so files
// written by older spreadsheet exports keep importing unchanged.
package textenc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// DefaultJSON is the encoding applied to JSON sources when none is set.
	DefaultJSON = "utf-8-sig"
	// DefaultCSV is the encoding applied to CSV sources when none is set.
	DefaultCSV = "windows-1252"
)

// Lookup resolves an encoding label. Besides the WHATWG labels understood by
// htmlindex it accepts "utf-8-sig" (UTF-8, BOM stripped) and "latin-1".
func Lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8-sig", "utf8-sig", "utf-8-bom":
		return unicode.UTF8BOM, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin-1", "latin1", "iso-8859-1":
		// htmlindex maps these to windows-1252; keep true ISO-8859-1 here.
		return charmap.ISO8859_1, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("textenc: unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// NewReader wraps r so that reads yield UTF-8 decoded from the named
// encoding. An empty name selects def.
func NewReader(r io.Reader, name, def string) (io.Reader, error) {
	if strings.TrimSpace(name) == "" {
		name = def
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
