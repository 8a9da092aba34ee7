package textenc

import (
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

/*
TestNewReader_Defaults verifies the per-format defaults: the JSON default
drops a UTF-8 BOM and the CSV default decodes windows-1252 bytes.
*/
func TestNewReader_Defaults(t *testing.T) {
	t.Parallel()

	r, err := NewReader(strings.NewReader("\uFEFF{\"a\":1}"), "", DefaultJSON)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if got := readAll(t, r); got != `{"a":1}` {
		t.Fatalf("json default=%q; want BOM stripped", got)
	}

	// 0xE9 is "é" and 0x80 is "€" in windows-1252.
	r, err = NewReader(strings.NewReader("caf\xe9;\x80"), "", DefaultCSV)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if got := readAll(t, r); got != "café;€" {
		t.Fatalf("csv default=%q; want café;€", got)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"utf-8", "UTF-8-SIG", "latin-1", "windows-1252", "iso-8859-2", "shift_jis"} {
		if _, err := Lookup(name); err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := Lookup("no-such-charset"); err == nil {
		t.Fatalf("Lookup(no-such-charset) succeeded; want error")
	}
}
