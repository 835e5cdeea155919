package experiment

import (
	"fmt"

	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/physics"
	"github.com/san-kum/sphsim/internal/sim"
)

// NewStepper instantiates the stepper for cfg. The kernel name picks the type
// parameter here, once; nothing downstream switches on it again.
func NewStepper(cfg *config.Config) (sim.Stepper, error) {
	switch cfg.Kernel {
	case "poly6":
		return newStepper[kernel.Poly6](cfg)
	case "spiky":
		return newStepper[kernel.Spiky](cfg)
	}
	return nil, &dynamo.ConfigError{Field: "kernel", Value: cfg.Kernel, Wrapped: dynamo.ErrInvalidConfig}
}

func newStepper[K kernel.Kernel](cfg *config.Config) (sim.Stepper, error) {
	opts := physics.Options{
		Color: physics.Linear(cfg.ColorScale),
	}

	switch cfg.Accelerator {
	case config.AccelNone, "":
	case config.AccelGrid:
		opts.Density = physics.NewGrid[K]()
	default:
		return nil, &dynamo.ConfigError{Field: "accelerator", Value: cfg.Accelerator, Wrapped: dynamo.ErrInvalidConfig}
	}

	switch cfg.Forces {
	case config.ForcesStatic, "":
	case config.ForcesPressure:
		opts.Forces = physics.NewPressureForce[kernel.Spiky](cfg.SmoothingRadius, cfg.Pressure.Stiffness, cfg.Pressure.RestDensity)
	default:
		return nil, &dynamo.ConfigError{Field: "forces", Value: cfg.Forces, Wrapped: dynamo.ErrInvalidConfig}
	}

	st, err := physics.New[K](cfg.SmoothingRadius, cfg.Dt, opts)
	if err != nil {
		return nil, fmt.Errorf("stepper: %w", err)
	}
	return st, nil
}

func Kernels() []string { return kernel.Names() }

func Accelerators() []string { return []string{config.AccelNone, config.AccelGrid} }

func ForceModels() []string { return []string{config.ForcesStatic, config.ForcesPressure} }
