// Package httpds is the HTTP side of an import: a JSON or CSV document
// fetched with GET, retried with exponential backoff while the server
// answers 429 or 5xx or the connection fails.
package httpds

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Config tunes a Client. Zero durations fall back to 30s for headers and
// a 200ms first backoff capped at 5s.
type Config struct {
	// Timeout bounds each attempt until the response headers arrive. The
	// body has no deadline of its own, so large sources are bounded only by
	// the caller's context.
	Timeout time.Duration
	// MaxRetries counts attempts after the first one.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify only applies to the default transport.
	InsecureSkipVerify bool
	UserAgent          string
	Transport          http.RoundTripper
}

const defaultUserAgent = "tabimport"

// StatusError is the response status that ended a request.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpds: GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Temporary reports whether the server asked to be retried.
func (e *StatusError) Temporary() bool { return retryable(e.Code) }

// errHeaderTimeout is the cancel cause of an attempt whose headers came
// too late.
var errHeaderTimeout = errors.New("no response headers in time")

// Client issues GET requests with retries.
type Client struct {
	hc        *http.Client
	timeout   time.Duration
	retries   int
	backoff   backoff
	userAgent string

	// wait blocks for d or until ctx is done. Tests replace it.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	rt := cfg.Transport
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec // opt-in per job
		rt = t
	}
	return &Client{
		hc:        &http.Client{Transport: rt},
		timeout:   cfg.Timeout,
		retries:   max(cfg.MaxRetries, 0),
		backoff:   backoff{first: cfg.InitialBackoff, max: cfg.MaxBackoff},
		userAgent: cfg.UserAgent,
		wait:      waitContext,
	}
}

// Get fetches url and returns a response with a 2xx status; the caller
// closes its body. Any other final status is a *StatusError.
func (c *Client) Get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: empty url")
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := c.once(ctx, url, header)
		var delay time.Duration
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("httpds: GET %s: %w", url, err)
			delay = c.backoff.delay(attempt)
		case resp.StatusCode >= 200 && resp.StatusCode <= 299:
			return resp, nil
		default:
			resp.Body.Close()
			lastErr = &StatusError{URL: url, Code: resp.StatusCode}
			if !retryable(resp.StatusCode) {
				return nil, lastErr
			}
			delay = c.backoff.after(resp.Header.Get("Retry-After"), attempt)
		}

		if attempt >= c.retries {
			return nil, lastErr
		}
		if err := c.wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// once runs one attempt. Its context is canceled when the headers miss the
// timeout, or else when the caller closes the body.
func (c *Client) once(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(c.timeout, func() { cancel(errHeaderTimeout) })

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		timer.Stop()
		cancel(nil)
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, vs := range header {
		req.Header[k] = append([]string(nil), vs...)
	}

	resp, err := c.hc.Do(req)
	if !timer.Stop() {
		if err == nil {
			resp.Body.Close()
		}
		cancel(nil)
		return nil, fmt.Errorf("%w (%s)", errHeaderTimeout, c.timeout)
	}
	if err != nil {
		cancel(nil)
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: func() { cancel(nil) }}
	return resp, nil
}

// cancelOnClose releases the attempt's context with the body.
type cancelOnClose struct {
	io.ReadCloser
	cancel func()
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoff doubles from first on every retry and never exceeds max.
type backoff struct {
	first, max time.Duration
}

func (b backoff) delay(retry int) time.Duration {
	d := b.first
	for i := 0; i < retry && d < b.max; i++ {
		d *= 2
	}
	return min(d, b.max)
}

// after honours a Retry-After header given in seconds, still capped at max.
// HTTP-date values fall back to the regular schedule.
func (b backoff) after(retryAfter string, retry int) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, b.max)
	}
	return b.delay(retry)
}

func waitContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
