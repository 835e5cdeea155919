// Package particles holds the mutable per-particle state of a simulation.
package particles

import (
	"fmt"
	"math"

	"github.com/san-kum/sphsim/internal/dynamo"
)

// System is the flat per-particle state. All slices have the same length for
// the lifetime of the system and Mass is never written after New.
//
// A System is owned by exactly one goroutine, the one running the simulation.
type System struct {
	Mass     []float64
	Position []dynamo.Vec3
	Velocity []dynamo.Vec3
	Force    []dynamo.Vec3
}

// New validates and copies the initial state. Nothing is returned on error.
func New(mass []float64, pos, vel, force []dynamo.Vec3) (*System, error) {
	n := len(mass)
	if n == 0 {
		return nil, dynamo.ErrNoParticles
	}
	if len(pos) != n || len(vel) != n || len(force) != n {
		return nil, fmt.Errorf("mass=%d position=%d velocity=%d force=%d: %w",
			n, len(pos), len(vel), len(force), dynamo.ErrDimensionMismatch)
	}
	for i, m := range mass {
		if !(m > 0) || math.IsInf(m, 0) {
			return nil, &dynamo.ConfigError{Field: fmt.Sprintf("mass[%d]", i), Value: m, Wrapped: dynamo.ErrInvalidMass}
		}
	}

	s := &System{
		Mass:     make([]float64, n),
		Position: make([]dynamo.Vec3, n),
		Velocity: make([]dynamo.Vec3, n),
		Force:    make([]dynamo.Vec3, n),
	}
	copy(s.Mass, mass)
	copy(s.Position, pos)
	copy(s.Velocity, vel)
	copy(s.Force, force)
	return s, nil
}

func (s *System) Len() int { return len(s.Mass) }

func (s *System) TotalMass() float64 {
	sum := 0.0
	for _, m := range s.Mass {
		sum += m
	}
	return sum
}

func (s *System) KineticEnergy() float64 {
	e := 0.0
	for i, m := range s.Mass {
		e += 0.5 * m * s.Velocity[i].Norm2()
	}
	return e
}

// IsFinite reports whether every position and velocity is finite.
func (s *System) IsFinite() bool {
	for i := range s.Position {
		if !s.Position[i].IsFinite() || !s.Velocity[i].IsFinite() {
			return false
		}
	}
	return true
}

func (s *System) Clone() *System {
	c := &System{
		Mass:     make([]float64, len(s.Mass)),
		Position: make([]dynamo.Vec3, len(s.Position)),
		Velocity: make([]dynamo.Vec3, len(s.Velocity)),
		Force:    make([]dynamo.Vec3, len(s.Force)),
	}
	copy(c.Mass, s.Mass)
	copy(c.Position, s.Position)
	copy(c.Velocity, s.Velocity)
	copy(c.Force, s.Force)
	return c
}
