package domarch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/resolve"
	"github.com/hupe1980/domarch/score"
	"github.com/hupe1980/domarch/trim"
)

var (
	// ErrInvalidConfig is returned when an option is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotGrouped is returned by ResolveStream when a query's hits are not contiguous.
	ErrNotGrouped = errors.New("input is not grouped by query")

	// ErrClosed is returned when using a closed Engine.
	ErrClosed = errors.New("engine closed")
)

// ConfigError reports an invalid configuration field.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Field  string
	Reason string
	cause  error
}

// NewConfigError creates a ConfigError for field. cause may be nil.
func NewConfigError(field, reason string, cause error) *ConfigError {
	return &ConfigError{Field: field, Reason: reason, cause: cause}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrInvalidConfig}
	}
	return []error{ErrInvalidConfig, e.cause}
}

func translateError(field string, err error) error {
	if err == nil {
		return nil
	}

	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(err, trim.ErrInvalidSpec),
		errors.Is(err, filter.ErrInvalidSpec),
		errors.Is(err, score.ErrInvalidSpec),
		errors.Is(err, resolve.ErrUnknownMode):
		return &ConfigError{Field: field, Reason: err.Error(), cause: err}
	}

	return err
}
