// Package fetch reads HTTP response bodies into memory under a strict
// size envelope.
//
// # Bounded Reads
//
// [Handle] checks the declared Content-Type and Content-Length, then reads
// the body in fixed-size chunks, aborting as soon as the running total
// exceeds the upper bound:
//
//	data, err := fetch.Handle(ctx, resp.Body, resp.Header, resp.ContentLength, logger,
//		fetch.WithBounds(1, 5<<20),
//		fetch.WithImageContentType(),
//	)
//
// Missing Content-Type or Content-Length headers only produce a warning.
// The observed byte count is always the final arbiter.
//
// # Errors
//
// Failures are reported as [*Error], which matches one of
// [ErrFileSizeTooLarge], [ErrFileSizeTooSmall], [ErrURLIsNotImage] or
// [ErrTransport] via [errors.Is] and carries a stable numeric code:
//
//	if code, ok := fetch.CodeOf(err); ok {
//		log.Printf("download failed with code %d", code)
//	}
//
// Most callers should use the higher-level
// [github.com/adamwoolhether/fetchkit/client] package, which invokes
// Handle internally and re-exports the options as client.With* functions.
package fetch
