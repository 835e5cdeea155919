// Package integrators advances particle velocities and positions in time.
package integrators

import "github.com/san-kum/sphsim/internal/particles"

// Integrator moves every particle of sys forward by dt using the forces
// currently stored in sys.
type Integrator interface {
	Step(sys *particles.System, dt float64)
}

// SemiImplicitEuler updates velocity from the current force, then position
// from the updated velocity, particle by particle in index order.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(sys *particles.System, dt float64) {
	for i := range sys.Mass {
		sys.Velocity[i] = sys.Velocity[i].Add(sys.Force[i].Scale(dt / sys.Mass[i]))
		sys.Position[i] = sys.Position[i].Add(sys.Velocity[i].Scale(dt))
	}
}
