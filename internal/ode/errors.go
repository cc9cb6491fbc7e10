package ode

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrInvalidConfig indicates malformed solver configuration.
	ErrInvalidConfig = errors.New("ode: invalid configuration")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrNonConvergence indicates an implicit stage solve exceeded its
	// iteration cap. Recoverable: the adaptive loop treats it as a
	// rejected step.
	ErrNonConvergence = errors.New("ode: implicit stages failed to converge")

	// ErrStalled indicates repeated consecutive non-convergences.
	ErrStalled = errors.New("ode: solver stalled (repeated non-convergence)")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("ode: adaptive step below minimum")

	// ErrDimensionMismatch indicates mismatched state/field dimensions.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch between state and field")
)

// FieldError reports a failed field evaluation. It is fatal: solvers
// never retry the field with different arguments on the caller's behalf.
type FieldError struct {
	T       float64
	Wrapped error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("ode: field evaluation failed at t=%.6g: %v", e.T, e.Wrapped)
}

func (e *FieldError) Unwrap() error {
	return e.Wrapped
}

// StepError wraps an error with the step at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
