package httpds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

/*
TestSample covers servers that honour Range, servers that ignore it and
documents shorter than the sample.
*/
func TestSample(t *testing.T) {
	t.Parallel()

	const doc = "id,score\n1,0.5\n2,0.7\n"
	var (
		mu     sync.Mutex
		ranges []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ranges = append(ranges, r.Header.Get("Range"))
		mu.Unlock()
		if r.URL.Path == "/ranged.csv" {
			http.ServeContent(w, r, "ranged.csv", time.Time{}, strings.NewReader(doc))
			return
		}
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	c := NewClient(Config{})
	tests := []struct {
		path string
		n    int
		want string
	}{
		{"/ranged.csv", 8, "id,score"},
		{"/plain.csv", 8, "id,score"},
		{"/plain.csv", 1 << 10, doc},
	}
	for _, tt := range tests {
		got, err := c.Sample(context.Background(), srv.URL+tt.path, tt.n)
		if err != nil {
			t.Fatalf("Sample(%s, %d): %v", tt.path, tt.n, err)
		}
		if string(got) != tt.want {
			t.Fatalf("Sample(%s, %d) = %q; want %q", tt.path, tt.n, got, tt.want)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if ranges[0] != "bytes=0-7" || ranges[2] != "bytes=0-1023" {
		t.Fatalf("ranges = %q", ranges)
	}
}

/*
TestSample_Errors covers a bad size and a missing document.
*/
func TestSample_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(Config{})
	if _, err := c.Sample(context.Background(), srv.URL, 0); err == nil {
		t.Fatalf("want error for n=0")
	}
	var se *StatusError
	if _, err := c.Sample(context.Background(), srv.URL+"/x.json", 16); !errors.As(err, &se) || se.Code != 404 {
		t.Fatalf("err = %v; want 404", err)
	}
}
