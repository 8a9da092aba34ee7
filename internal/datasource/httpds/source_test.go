package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

/*
TestSource_Open verifies that a 200 response body is handed to the caller
and that a 404 surfaces as a *StatusError.
*/
func TestSource_Open(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "a\n1\n")
	}))
	defer srv.Close()

	c := NewClient(Config{Timeout: 2 * time.Second})

	src := NewSource(c, srv.URL+"/data/people.csv?rev=3")
	if got := src.Path(); got != "/data/people.csv" {
		t.Fatalf("Path() = %q, want /data/people.csv", got)
	}
	if got := src.Name(); got != "people" {
		t.Fatalf("Name() = %q, want people", got)
	}

	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "a\n1\n" {
		t.Fatalf("body = %q, want %q", body, "a\n1\n")
	}

	_, err = NewSource(c, srv.URL+"/missing.csv").Open(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound || se.Temporary() {
		t.Fatalf("Open(missing) error = %v, want permanent 404", err)
	}
	if !strings.Contains(err.Error(), "Not Found") {
		t.Fatalf("error %q does not name the status", err)
	}
}
