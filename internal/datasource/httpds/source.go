package httpds

import (
	"context"
	"io"
)

// Source downloads a remote file with GET. Non-2xx responses are reported as
// *StatusError.
type Source struct {
	Client *Client
	URL    string
}

// Open issues the request and returns the response body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	c := s.Client
	if c == nil {
		c = NewClient(Config{MaxRetries: 3})
	}
	resp, err := c.Get(ctx, s.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err = CheckStatus(resp)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
