// Package misc holds small predicate and file helpers used around
// download jobs: checking batches of values, broadcasting settings and
// counting lines in URL list files.
package misc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// lineCountBufSize is the read buffer used by FileLineCount.
const lineCountBufSize = 8 << 20

// ErrInvalidLength is returned when a requested tuple length is not positive.
var ErrInvalidLength = errors.New("length must be greater than zero")

// AllOf reports whether pred holds for every value in seq. An empty
// sequence yields true.
func AllOf[T any](seq iter.Seq[T], pred func(T) bool) bool {
	for v := range seq {
		if !pred(v) {
			return false
		}
	}
	return true
}

// AnyOf reports whether pred holds for at least one value in seq.
func AnyOf[T any](seq iter.Seq[T], pred func(T) bool) bool {
	for v := range seq {
		if pred(v) {
			return true
		}
	}
	return false
}

// NoneOf reports whether pred holds for no value in seq.
func NoneOf[T any](seq iter.Seq[T], pred func(T) bool) bool {
	return !AnyOf(seq, pred)
}

// ToNTuple returns a slice holding n copies of v.
func ToNTuple[T any](v T, n int) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	out := make([]T, n)
	for i := range out {
		out[i] = v
	}

	return out, nil
}

// FileLineCount counts newline characters in the file at path. A final
// line without a trailing newline is not counted.
func FileLineCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return countLines(f, make([]byte, lineCountBufSize))
}

func countLines(r io.Reader, buf []byte) (int, error) {
	var count int
	for {
		n, err := r.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})

		switch {
		case errors.Is(err, io.EOF):
			return count, nil
		case err != nil:
			return 0, fmt.Errorf("reading file: %w", err)
		}
	}
}

// Numbered prefixes each item with its one-based position, as in
// "[3/10] item".
func Numbered[T any](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fmt.Sprintf("[%d/%d] %v", i+1, len(items), item)
	}

	return out
}
