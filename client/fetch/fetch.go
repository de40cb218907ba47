package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var imageTypePrefixes = []string{"image/", "application/octet-stream"}

// Handle inspects header and contentLength, then reads body chunk by
// chunk until it is exhausted or the running total leaves the bounds.
// contentLength is the declared size, -1 when unknown. Nothing is returned
// on failure, and body is never read past the first chunk that overflows.
func Handle(ctx context.Context, body io.Reader, header http.Header, contentLength int64, logger *slog.Logger, optFns ...Option) ([]byte, error) {
	opts, err := buildOptions(optFns)
	if err != nil {
		return nil, err
	}

	if err := checkContentType(header, opts.requireImage, logger); err != nil {
		return nil, err
	}

	if err := checkDeclaredLength(contentLength, opts.bounds, logger); err != nil {
		return nil, err
	}

	var pr *progressReporter
	if opts.progress {
		pr = &progressReporter{
			logger:    logger,
			total:     contentLength,
			startTime: time.Now(),
		}
	}

	return readBounded(&contextReader{ctx: ctx, r: body}, opts.bounds, opts.chunkSize, pr)
}

func checkContentType(header http.Header, requireImage bool, logger *slog.Logger) error {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		logger.Warn("no content type declared")
		return nil
	}

	if !requireImage {
		return nil
	}

	for _, prefix := range imageTypePrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return nil
		}
	}

	return &Error{
		Err:    ErrURLIsNotImage,
		Detail: fmt.Sprintf("content type %q", contentType),
	}
}

func checkDeclaredLength(contentLength int64, bounds SizeBounds, logger *slog.Logger) error {
	if contentLength < 0 {
		logger.Warn("no content length declared")
		return nil
	}

	if contentLength > bounds.MaxBytes {
		return &Error{
			Err:    ErrFileSizeTooLarge,
			Detail: fmt.Sprintf("declared %d bytes, max %d", contentLength, bounds.MaxBytes),
		}
	}

	if contentLength < bounds.MinBytes {
		return &Error{
			Err:    ErrFileSizeTooSmall,
			Detail: fmt.Sprintf("declared %d bytes, min %d", contentLength, bounds.MinBytes),
		}
	}

	return nil
}

// readBounded accumulates chunks from r in arrival order. The observed
// total is checked after every chunk, so at most one chunk past
// bounds.MaxBytes is ever held.
func readBounded(r io.Reader, bounds SizeBounds, chunkSize int, pr *progressReporter) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)

	var total int64
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			total += int64(n)

			if total > bounds.MaxBytes {
				return nil, &Error{
					Err:    ErrFileSizeTooLarge,
					Detail: fmt.Sprintf("received more than %d bytes", bounds.MaxBytes),
				}
			}

			pr.add(n)
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, NewTransportError("reading body", fmt.Errorf("%w: %w", ErrDownloadCancelled, err))
			}

			return nil, NewTransportError("reading body", err)
		}
	}

	if total < bounds.MinBytes {
		return nil, &Error{
			Err:    ErrFileSizeTooSmall,
			Detail: fmt.Sprintf("received %d bytes, min %d", total, bounds.MinBytes),
		}
	}

	pr.done()

	return buf.Bytes(), nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}
