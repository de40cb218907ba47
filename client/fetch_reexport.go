package client

import (
	"github.com/adamwoolhether/fetchkit/client/fetch"
)

// ————————————————————————————————————————————————————————————————————
// Type aliases – re-export user-facing types from [fetch].
// ————————————————————————————————————————————————————————————————————

type (
	// FetchOption configures a bounded fetch.
	FetchOption = fetch.Option

	// FetchError classifies a failed fetch and carries a stable code.
	FetchError = fetch.Error

	// SizeBounds is the inclusive size envelope a fetched body must fit in.
	SizeBounds = fetch.SizeBounds
)

// DefaultMaxBytes is the upper bound used when none is supplied.
const DefaultMaxBytes = fetch.DefaultMaxBytes

// ————————————————————————————————————————————————————————————————————
// Sentinel errors
// ————————————————————————————————————————————————————————————————————

var (
	// ErrFileSizeTooLarge indicates the declared or observed size exceeded the upper bound.
	ErrFileSizeTooLarge = fetch.ErrFileSizeTooLarge

	// ErrFileSizeTooSmall indicates the declared or observed size fell below the lower bound.
	ErrFileSizeTooSmall = fetch.ErrFileSizeTooSmall

	// ErrURLIsNotImage indicates the declared Content-Type is not an image.
	ErrURLIsNotImage = fetch.ErrURLIsNotImage

	// ErrTransport indicates a connection failure or unexpected status code.
	ErrTransport = fetch.ErrTransport

	// ErrDownloadCancelled indicates the fetch was cancelled via context.
	ErrDownloadCancelled = fetch.ErrDownloadCancelled
)

// ————————————————————————————————————————————————————————————————————
// Fetch option forwarding functions
// ————————————————————————————————————————————————————————————————————

// WithBounds sets the inclusive [minBytes, maxBytes] size envelope.
func WithBounds(minBytes, maxBytes int64) FetchOption { return fetch.WithBounds(minBytes, maxBytes) }

// WithMinSize sets the smallest acceptable body size.
func WithMinSize(minBytes int64) FetchOption { return fetch.WithMinSize(minBytes) }

// WithMaxSize sets the largest acceptable body size.
func WithMaxSize(maxBytes int64) FetchOption { return fetch.WithMaxSize(maxBytes) }

// WithImageContentType rejects responses not declaring an image Content-Type.
func WithImageContentType() FetchOption { return fetch.WithImageContentType() }

// WithChunkSize sets how many bytes are requested from the body per read.
func WithChunkSize(n int) FetchOption { return fetch.WithChunkSize(n) }

// WithProgress enables periodic fetch progress logging.
func WithProgress() FetchOption { return fetch.WithProgress() }
