package fetch

import (
	"errors"
	"fmt"
)

// DefaultChunkSize is the number of bytes requested from the body per read.
const DefaultChunkSize = 10 << 10 // 10KB

// Option defines optional settings for a bounded fetch.
type Option func(*options) error

type options struct {
	bounds       SizeBounds
	chunkSize    int
	requireImage bool
	progress     bool
}

func buildOptions(optFns []Option) (options, error) {
	opts := options{
		bounds:    DefaultBounds(),
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return options{}, fmt.Errorf("applying option: %w", err)
		}
	}

	if err := opts.bounds.Validate(); err != nil {
		return options{}, err
	}

	return opts, nil
}

// ValidateOptions applies optFns and reports the first error, so that a
// bad configuration can be rejected before any request is made.
func ValidateOptions(optFns ...Option) error {
	_, err := buildOptions(optFns)
	return err
}

// WithBounds sets both ends of the size envelope.
func WithBounds(minBytes, maxBytes int64) Option {
	return func(opts *options) error {
		opts.bounds = SizeBounds{MinBytes: minBytes, MaxBytes: maxBytes}
		return nil
	}
}

// WithMinSize sets the smallest acceptable body size. Callers needing a
// non-empty body should pass at least 1.
func WithMinSize(minBytes int64) Option {
	return func(opts *options) error {
		opts.bounds.MinBytes = minBytes
		return nil
	}
}

// WithMaxSize sets the largest acceptable body size.
func WithMaxSize(maxBytes int64) Option {
	return func(opts *options) error {
		opts.bounds.MaxBytes = maxBytes
		return nil
	}
}

// WithImageContentType rejects responses whose declared Content-Type is
// neither image/* nor application/octet-stream.
func WithImageContentType() Option {
	return func(opts *options) error {
		opts.requireImage = true
		return nil
	}
}

// WithChunkSize overrides [DefaultChunkSize].
func WithChunkSize(n int) Option {
	return func(opts *options) error {
		if n <= 0 {
			return errors.New("chunk size must be greater than zero")
		}
		opts.chunkSize = n
		return nil
	}
}

// WithProgress enables periodic progress logging.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}
