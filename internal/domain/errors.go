package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned for rolling window sizes below 1.
	ErrInvalidWindow = errors.New("window size must be at least 1")

	// ErrInvalidTolerance is returned for negative or non-finite band tolerances.
	ErrInvalidTolerance = errors.New("tolerance must be a finite, non-negative number")
)

// FormatError reports a sensor log row that could not be parsed. A single
// FormatError invalidates the whole log; callers must not use partial output.
type FormatError struct {
	Line  int
	Field string // "timestamp" or "value"
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
