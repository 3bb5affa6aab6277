// Package derrors defines internal error values to categorize the different
// failure modes of the codec and the tools built on it.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
)

//lint:file-ignore ST1012 prefixing error values with Err would stutter

var (
	// InvalidArgument indicates that the input into the request is invalid in
	// some way (HTTP 400).
	InvalidArgument = errors.New("invalid argument")

	// IO indicates that an underlying source or sink became unusable.
	IO = errors.New("i/o failure")

	// Corrupt indicates that an encoded stream referenced a code that the
	// decoder could not have defined yet.
	Corrupt = errors.New("invalid compressed code")

	// Truncated indicates that an encoded stream ended without the
	// end-of-stream metacode.
	Truncated = errors.New("corrupted compressed file: missing end-of-stream")

	// TooLarge indicates that an upload exceeds the configured limit.
	TooLarge = errors.New("too large")

	// Unknown indicates that the error has unknown semantics.
	Unknown = errors.New("unknown")
)

var httpCodes = []struct {
	err  error
	code int
}{
	{InvalidArgument, http.StatusBadRequest},
	{TooLarge, http.StatusRequestEntityTooLarge},
	{Corrupt, http.StatusUnprocessableEntity},
	{Truncated, http.StatusUnprocessableEntity},
}

// ToHTTPStatus returns an HTTP status code corresponding to err.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, e := range httpCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return http.StatusInternalServerError
}

// IOError wraps err, which came from a reader or writer, so that it matches
// IO.  It returns nil for a nil err.
func IOError(err error) error {
	if err == nil || errors.Is(err, IO) {
		return err
	}
	return fmt.Errorf("%w: %w", IO, err)
}

// Add adds context to the error.
// The result cannot be unwrapped to recover the original error.
// It does nothing when *errp == nil.
//
// Example:
//
//	defer derrors.Add(&err, "copy(%s, %s)", src, dst)
//
// See Wrap for an equivalent function that allows
// the result to be unwrapped.
func Add(errp *error, format string, args ...interface{}) {
	if *errp != nil {
		*errp = fmt.Errorf("%s: %v", fmt.Sprintf(format, args...), *errp)
	}
}

// Wrap adds context to the error and allows
// unwrapping the result to recover the original error.
//
// Example:
//
//	defer derrors.Wrap(&err, "copy(%s, %s)", src, dst)
//
// See Add for an equivalent function that does not allow
// the result to be unwrapped.
func Wrap(errp *error, format string, args ...interface{}) {
	if *errp != nil {
		*errp = fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), *errp)
	}
}
