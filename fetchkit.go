// Package fetchkit exposes the client builder and package-level helpers
// for size-bounded downloads.
package fetchkit

import (
	"context"
	"sync"

	"github.com/adamwoolhether/fetchkit/client"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, the default http.Client and http.Transport are used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

var defaultClient = sync.OnceValues(func() (*client.Client, error) {
	return client.Build()
})

// DownloadFile fetches rawURL with the default client. See
// [client.Client.DownloadFile].
func DownloadFile(ctx context.Context, rawURL string, opts ...client.DownloadOption) ([]byte, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}

	return c.DownloadFile(ctx, rawURL, opts...)
}

// DownloadImage fetches imageURL with the default client, requiring an
// image Content-Type when one is declared. See [client.Client.DownloadImage].
func DownloadImage(ctx context.Context, imageURL string, opts ...client.DownloadOption) ([]byte, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}

	return c.DownloadImage(ctx, imageURL, opts...)
}
