package physics

import (
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/integrators"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/particles"
)

// Options tunes a Stepper. Zero values select the defaults.
type Options struct {
	// Density defaults to AllPairs over the stepper's kernel.
	Density DensityEstimator
	// Forces is nil for a static force field.
	Forces ForceField
	// Color defaults to Linear(DefaultColorScale).
	Color ColorMap
	// Integrator defaults to semi-implicit Euler.
	Integrator integrators.Integrator
}

// Stepper advances a particle system one tick at a time.
//
// A Stepper is not safe for concurrent use; it belongs to the simulation
// goroutine together with the System it steps.
type Stepper[K kernel.Kernel] struct {
	h, dt   float64
	t       float64
	tick    uint64
	density []float64

	est    DensityEstimator
	forces ForceField
	color  ColorMap
	integ  integrators.Integrator
}

// New builds a stepper with smoothing radius h and timestep dt.
func New[K kernel.Kernel](h, dt float64, opts Options) (*Stepper[K], error) {
	if !(h > 0) {
		return nil, &dynamo.ConfigError{Field: "h", Value: h, Wrapped: dynamo.ErrInvalidRadius}
	}
	if !(dt > 0) {
		return nil, &dynamo.ConfigError{Field: "dt", Value: dt, Wrapped: dynamo.ErrInvalidTimestep}
	}

	s := &Stepper[K]{
		h:      h,
		dt:     dt,
		est:    opts.Density,
		forces: opts.Forces,
		color:  opts.Color,
		integ:  opts.Integrator,
	}
	if s.est == nil {
		s.est = AllPairs[K]{}
	}
	if s.color == nil {
		s.color = Linear(DefaultColorScale)
	}
	if s.integ == nil {
		s.integ = integrators.NewSemiImplicitEuler()
	}
	return s, nil
}

func (s *Stepper[K]) H() float64    { return s.h }
func (s *Stepper[K]) Dt() float64   { return s.dt }
func (s *Stepper[K]) Time() float64 { return s.t }
func (s *Stepper[K]) Tick() uint64  { return s.tick }

func (s *Stepper[K]) KernelName() string {
	var k K
	return k.Name()
}

// Density returns a copy of the densities computed by the last Step.
func (s *Stepper[K]) Density() []float64 {
	out := make([]float64, len(s.density))
	copy(out, s.density)
	return out
}

// Step advances sys by one timestep and returns the tick's snapshot. The
// snapshot shares no memory with sys.
//
// Every particle is integrated before any density is estimated, so density
// always reflects this tick's positions.
func (s *Stepper[K]) Step(sys *particles.System) dynamo.Snapshot {
	n := sys.Len()

	s.integ.Step(sys, s.dt)

	if len(s.density) != n {
		s.density = make([]float64, n)
	}
	s.est.Estimate(sys.Position, sys.Mass, s.h, s.density)

	if s.forces != nil {
		s.forces.Apply(sys, s.density)
	}

	s.tick++
	s.t += s.dt

	records := make([]dynamo.Record, n)
	for i := range records {
		records[i] = dynamo.Record{
			Position: sys.Position[i],
			Color:    s.color(s.density[i]),
			Density:  s.density[i],
		}
	}
	return dynamo.Snapshot{Tick: s.tick, Time: s.t, Records: records}
}
