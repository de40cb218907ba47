package fetch

import (
	"errors"
	"fmt"
)

var (
	ErrFileSizeTooLarge = errors.New("the size of file from url is too large")
	ErrFileSizeTooSmall = errors.New("the size of file from url is too small")
	ErrURLIsNotImage    = errors.New("URL is not an image")
	ErrTransport        = errors.New("transport failure")

	// ErrDownloadCancelled is wrapped by a transport failure when the
	// context ends mid-stream.
	ErrDownloadCancelled = errors.New("download cancelled")
)

// Stable numeric codes reported by [Error.Code].
const (
	CodeFileSizeTooLarge = -100
	CodeFileSizeTooSmall = -101
	CodeURLIsNotImage    = -103
	CodeTransport        = -104
)

var codes = map[error]int{
	ErrFileSizeTooLarge: CodeFileSizeTooLarge,
	ErrFileSizeTooSmall: CodeFileSizeTooSmall,
	ErrURLIsNotImage:    CodeURLIsNotImage,
	ErrTransport:        CodeTransport,
}

// Error classifies a failed fetch. Err is one of the package sentinels,
// Detail names the check that triggered it and Cause, when set, is the
// underlying failure reported by the transport.
type Error struct {
	Err    error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[DownloadError %d] %v", e.Code(), e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}

	return []error{e.Err, e.Cause}
}

// Code returns the stable numeric code of the sentinel, or 0 when the
// sentinel is not one of this package's.
func (e *Error) Code() int {
	return codes[e.Err]
}

// CodeOf walks err's chain for an [*Error] and returns its code.
func CodeOf(err error) (int, bool) {
	var fe *Error
	if !errors.As(err, &fe) {
		return 0, false
	}

	return fe.Code(), true
}

// NewTransportError classifies cause as a transport failure.
func NewTransportError(detail string, cause error) *Error {
	return &Error{
		Err:    ErrTransport,
		Detail: detail,
		Cause:  cause,
	}
}
