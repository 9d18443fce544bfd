package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrTooManySteps indicates the step budget ran out before the last output time.
	ErrTooManySteps = errors.New("dynamo: step budget exhausted")

	// ErrStepRejected is returned by adaptive integrators when the local error
	// estimate exceeds the tolerance. The suggested retry step accompanies it.
	ErrStepRejected = errors.New("dynamo: step rejected")

	// ErrInvalidGrid indicates output times that are empty, non-finite or not
	// strictly increasing.
	ErrInvalidGrid = errors.New("dynamo: invalid time grid")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
