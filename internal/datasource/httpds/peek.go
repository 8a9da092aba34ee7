package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Sample returns at most n bytes from the start of url. It asks for the
// range 0..n-1 but also caps the read, so a server that ignores Range and
// sends the whole document costs no more than n bytes.
func (c *Client) Sample(ctx context.Context, url string, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("httpds: sample size must be > 0, got %d", n)
	}
	h := http.Header{"Range": {fmt.Sprintf("bytes=0-%d", n-1)}}
	resp, err := c.Get(ctx, url, h)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, int64(n)))
	if err != nil {
		return nil, fmt.Errorf("httpds: sample %s: %w", url, err)
	}
	return b, nil
}
