package httpds

import (
	"context"
	"io"
)

// Source downloads one URL as the input of an import. It satisfies
// datasource.Source.
type Source struct {
	client *Client
	url    string
}

// NewSource binds url to c. A nil client uses NewClient(Config{}).
func NewSource(c *Client, url string) *Source {
	if c == nil {
		c = NewClient(Config{})
	}
	return &Source{client: c, url: url}
}

// Path returns the URL path, whose extension selects the format.
func (s *Source) Path() string { return PathFromURL(s.url) }

// Name returns a job name derived from the URL.
func (s *Source) Name() string { return NameFromURL(s.url) }

// Open downloads the document and returns the response body. A status
// outside 2xx surfaces as *StatusError.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
