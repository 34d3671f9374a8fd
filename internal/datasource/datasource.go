// Package datasource resolves where raw input bytes come from.
package datasource

import (
	"context"
	"io"
	"strings"

	"churnetl/internal/datasource/file"
	"churnetl/internal/datasource/httpds"
)

// Source opens a stream of raw bytes.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// For returns an HTTP source for http(s) URLs and a local file source for
// anything else. client may be nil.
func For(location string, client *httpds.Client) Source {
	if IsRemote(location) {
		return &httpds.Source{Client: client, URL: location}
	}
	return file.NewLocal(location)
}
