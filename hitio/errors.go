package hitio

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is wrapped by every ParseError.
	ErrMalformed = errors.New("hitio: malformed input")
	// ErrNotContiguous is returned by a Grouper when a query's hits are split
	// across the input.
	ErrNotContiguous = errors.New("hitio: query hits are not contiguous")
	// ErrUnknownFormat is returned for unrecognised format names.
	ErrUnknownFormat = errors.New("hitio: unknown format")
)

// ParseError describes one malformed input line.
type ParseError struct {
	Line   int
	Reason string
	cause  error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("hitio: line %d: %s: %v", e.Line, e.Reason, e.cause)
	}
	return fmt.Sprintf("hitio: line %d: %s", e.Line, e.Reason)
}

// Unwrap returns ErrMalformed and the underlying cause, if any.
func (e *ParseError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrMalformed, e.cause}
	}
	return []error{ErrMalformed}
}
