package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNoParticles indicates a particle system of size zero.
	ErrNoParticles = errors.New("dynamo: particle count must be positive")

	// ErrInvalidMass indicates a zero, negative or non-finite particle mass.
	ErrInvalidMass = errors.New("dynamo: particle mass must be positive and finite")

	// ErrInvalidRadius indicates a non-positive smoothing radius.
	ErrInvalidRadius = errors.New("dynamo: smoothing radius must be positive")

	// ErrInvalidTimestep indicates a non-positive time increment.
	ErrInvalidTimestep = errors.New("dynamo: timestep must be positive")

	// ErrDimensionMismatch indicates per-particle arrays of different lengths.
	ErrDimensionMismatch = errors.New("dynamo: per-particle arrays differ in length")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnstable indicates the simulation produced NaN or Inf.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrConsumerGone is returned by a send once the receiving side has closed.
	// It is terminal: the producer should stop simulating.
	ErrConsumerGone = errors.New("dynamo: snapshot consumer is gone")

	// ErrProducerGone is returned by a receive once the producer has closed
	// and every buffered snapshot has been delivered.
	ErrProducerGone = errors.New("dynamo: snapshot producer is gone")
)

// ConfigError wraps a sentinel with the offending field.
type ConfigError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s = %v: %v", e.Field, e.Value, e.Wrapped)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

// SimulationError wraps an error with the tick at which it happened.
type SimulationError struct {
	Tick    uint64
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
