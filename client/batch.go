package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidConcurrency is returned when a batch is given a limit below one.
var ErrInvalidConcurrency = errors.New("concurrency must be greater than zero")

// Result is the outcome of one download in a batch.
type Result struct {
	URL  string
	Data []byte
	// Digest is the xxhash64 of Data, useful for spotting duplicates.
	Digest uint64
	Err    error
}

// BatchOption defines optional settings for a batch download.
type BatchOption func(*batchOpts) error

type batchOpts struct {
	images   bool
	download []DownloadOption
}

// WithImagesOnly downloads every URL as [Client.DownloadImage] does.
func WithImagesOnly() BatchOption {
	return func(opts *batchOpts) error {
		opts.images = true
		return nil
	}
}

// WithDownloadOptions applies opts to every download in the batch.
func WithDownloadOptions(opts ...DownloadOption) BatchOption {
	return func(b *batchOpts) error {
		b.download = append(b.download, opts...)
		return nil
	}
}

// DownloadAll fetches urls with at most concurrency downloads in flight.
// Results are returned in the order of urls. A failed download is
// recorded in its Result and does not stop the others; a cancelled ctx
// fails every download not yet finished.
func (c *Client) DownloadAll(ctx context.Context, urls []string, concurrency int, optFns ...BatchOption) ([]Result, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConcurrency, concurrency)
	}

	var opts batchOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying batch option: %w", err)
		}
	}

	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, u := range urls {
		g.Go(func() error {
			results[i].URL = u

			data, err := c.download(ctx, u, opts.images, opts.download...)
			if err != nil {
				results[i].Err = err
				return nil
			}

			results[i].Data = data
			results[i].Digest = xxhash.Sum64(data)

			return nil
		})
	}

	_ = g.Wait()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	c.logger.Info("batch complete", "total", len(urls), "failed", failed)

	return results, ctx.Err()
}
