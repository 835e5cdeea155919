// Package experiment assembles a runnable simulation from a config.
package experiment

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/metrics"
	"github.com/san-kum/sphsim/internal/sim"
	"github.com/san-kum/sphsim/internal/stream"
)

// Experiment is a validated config turned into a simulator and the handoff
// its consumer reads from.
type Experiment struct {
	Config    *config.Config
	Simulator *sim.Simulator
	Handoff   *stream.Handoff
}

// Build validates cfg and wires particles, stepper, default metrics and the
// handoff. Nothing is returned on error.
func Build(cfg *config.Config, logger *log.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	sys, err := cfg.Layout().Build()
	if err != nil {
		return nil, err
	}

	st, err := NewStepper(cfg)
	if err != nil {
		return nil, err
	}

	policy, err := stream.ParsePolicy(cfg.Stream.Policy)
	if err != nil {
		return nil, err
	}

	s := sim.New(st, sys, logger)
	for _, m := range metrics.Defaults(StabilityBound(cfg)) {
		s.AddMetric(m)
	}

	return &Experiment{
		Config:    cfg,
		Simulator: s,
		Handoff:   stream.New(cfg.Stream.Capacity, policy),
	}, nil
}

// RunConfig is the sim.RunConfig matching the experiment's config.
func (e *Experiment) RunConfig() sim.RunConfig {
	return sim.RunConfig{MaxTicks: e.Config.Ticks, ValidateState: true}
}

// StabilityBound is the radius particles are expected to stay inside.
func StabilityBound(cfg *config.Config) float64 {
	return 10 * (cfg.Spread + cfg.SmoothingRadius)
}

// Builder returns a sim.Builder that varies only the seed of cfg.
func Builder(cfg *config.Config, logger *log.Logger) sim.Builder {
	return func(seed uint64) (*sim.Simulator, error) {
		c := *cfg
		c.Seed = seed
		e, err := Build(&c, logger)
		if err != nil {
			return nil, err
		}
		return e.Simulator, nil
	}
}
