package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"tabimport/internal/datasource/file"
	"tabimport/internal/datasource/httpds"
)

// PeekFn fetches up to n bytes from the start of a location.
type PeekFn func(ctx context.Context, location string, n int, insecure bool) ([]byte, error)

// peekFn is the overridable seam used to sample a source. http(s) URLs go
// through httpds (Range request plus a client-side cap); everything else is
// a local path, optionally written as file://path.
var peekFn PeekFn = func(ctx context.Context, location string, n int, insecure bool) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("peek: n must be > 0")
	}

	if IsURL(location) {
		client := httpds.NewClient(httpds.Config{InsecureSkipVerify: insecure})
		return client.Sample(ctx, location, n)
	}

	src := file.NewLocal(strings.TrimPrefix(location, "file://"))
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(rc, int64(n))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsURL reports whether location is an http(s) URL.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// cutToLastNewline drops a trailing partial line from a truncated sample.
func cutToLastNewline(b []byte) []byte {
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		return b[:i+1]
	}
	return b
}
