package boiler

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates a configuration or call argument outside its
// physical domain. It is never retried; the caller has a bug.
var ErrInvalidArgument = errors.New("boiler: invalid argument")

// StepError wraps a failure of an engine or controller operation with the
// simulated time at which it happened. State is the untouched pre-call state.
type StepError struct {
	Op      string
	Elapsed float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (t=%.1fs): %v", e.Op, e.Elapsed, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func positive(name string, v float64) error {
	if !(v > 0) || isInf(v) {
		return invalid("%s must be positive, got %g", name, v)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if !(v >= 0) || isInf(v) {
		return invalid("%s must be non-negative, got %g", name, v)
	}
	return nil
}
