package world

import (
	"errors"
	"fmt"
)

// Domain errors for world operations.
var (
	// ErrDuplicateID indicates a body or assembly id already in the world.
	ErrDuplicateID = errors.New("world: duplicate id")

	// ErrUnknownBody indicates a reference to a body not in the world.
	ErrUnknownBody = errors.New("world: unknown body")

	// ErrInvalidBody indicates a body that cannot be simulated.
	ErrInvalidBody = errors.New("world: invalid body")

	// ErrBusy indicates a mutation attempted while a step is in progress.
	ErrBusy = errors.New("world: step in progress")

	// ErrInvalidStep indicates a non-positive or non-finite timestep.
	ErrInvalidStep = errors.New("world: invalid timestep")
)

// Stage names a part of the step pipeline.
type Stage string

const (
	StageForces    Stage = "forces"
	StageIntegrate Stage = "integrate"
	StageDetect    Stage = "detect"
	StageResolve   Stage = "resolve"
)

// StepError wraps an error raised inside Step with where it happened.
type StepError struct {
	Step    int
	Time    float64
	Stage   Stage
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("world: step %d (t=%.3f) %s: %v", e.Step, e.Time, e.Stage, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
