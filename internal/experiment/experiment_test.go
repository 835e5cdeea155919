package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/sim"
	"github.com/san-kum/sphsim/internal/stream"
)

func TestBuild_Defaults(t *testing.T) {
	cfg := config.GetPreset("small")
	cfg.Ticks = 3

	e, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if e.Simulator.Particles() != 200 {
		t.Errorf("expected 200 particles, got %d", e.Simulator.Particles())
	}
	if e.Handoff.Policy() != stream.Block {
		t.Errorf("expected block policy, got %s", e.Handoff.Policy())
	}

	res, err := e.Simulator.Run(context.Background(), sim.Discard, e.RunConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", res.Ticks)
	}
	for _, name := range []string{"density_max", "density_mean", "kinetic_energy", "mass_drift", "stability"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if res.Metrics["mass_drift"] != 0 {
		t.Errorf("mass drifted: %f", res.Metrics["mass_drift"])
	}
}

func TestBuild_EveryCombination(t *testing.T) {
	for _, k := range Kernels() {
		for _, a := range Accelerators() {
			for _, f := range ForceModels() {
				cfg := config.GetPreset("small")
				cfg.Particles = 30
				cfg.Kernel, cfg.Accelerator, cfg.Forces = k, a, f
				cfg.Ticks = 2

				e, err := Build(cfg, nil)
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", k, a, f, err)
				}
				if _, err := e.Simulator.Run(context.Background(), sim.Discard, e.RunConfig()); err != nil {
					t.Errorf("%s/%s/%s run: %v", k, a, f, err)
				}
			}
		}
	}
}

func TestBuild_Invalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SmoothingRadius = 0

	e, err := Build(cfg, nil)
	if !errors.Is(err, dynamo.ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
	if e != nil {
		t.Error("expected nothing built on error")
	}
}

func TestNewStepper_KernelName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Kernel = "spiky"
	st, err := NewStepper(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if st.KernelName() != "spiky" {
		t.Errorf("expected spiky, got %s", st.KernelName())
	}

	cfg.Kernel = "cubic"
	if _, err := NewStepper(cfg); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuilder_VariesSeed(t *testing.T) {
	cfg := config.GetPreset("small")
	cfg.Particles = 20
	results, err := sim.NewEnsemble(Builder(cfg, nil), 2, 5).Run(context.Background(), sim.RunConfig{MaxTicks: 3})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if cfg.Seed != 1 {
		t.Error("builder must not mutate the shared config")
	}
}
