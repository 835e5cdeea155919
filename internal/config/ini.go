package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// iniFile mirrors Config in the sectioned INI layout:
//
//	[simulation]
//	particles = 500
//	smoothing-radius = 0.5
//
//	[stream]
//	policy = drop-oldest
type iniFile struct {
	Simulation struct {
		Particles       int     `gcfg:"particles"`
		Mass            float64 `gcfg:"mass"`
		Distribution    string  `gcfg:"distribution"`
		Spread          float64 `gcfg:"spread"`
		Restoring       float64 `gcfg:"restoring"`
		Seed            int64   `gcfg:"seed"`
		Dt              float64 `gcfg:"dt"`
		SmoothingRadius float64 `gcfg:"smoothing-radius"`
		Kernel          string  `gcfg:"kernel"`
		Accelerator     string  `gcfg:"accelerator"`
		Forces          string  `gcfg:"forces"`
		ColorScale      float64 `gcfg:"color-scale"`
		Ticks           int64   `gcfg:"ticks"`
	}
	Pressure struct {
		Stiffness   float64 `gcfg:"stiffness"`
		RestDensity float64 `gcfg:"rest-density"`
	}
	Stream struct {
		Capacity    int    `gcfg:"capacity"`
		Policy      string `gcfg:"policy"`
		RecordEvery int    `gcfg:"record-every"`
	}
}

func loadINI(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Seed the file struct with defaults so absent keys keep them.
	var f iniFile
	f.Simulation.Particles = cfg.Particles
	f.Simulation.Mass = cfg.Mass
	f.Simulation.Distribution = cfg.Distribution
	f.Simulation.Spread = cfg.Spread
	f.Simulation.Restoring = cfg.Restoring
	f.Simulation.Seed = int64(cfg.Seed)
	f.Simulation.Dt = cfg.Dt
	f.Simulation.SmoothingRadius = cfg.SmoothingRadius
	f.Simulation.Kernel = cfg.Kernel
	f.Simulation.Accelerator = cfg.Accelerator
	f.Simulation.Forces = cfg.Forces
	f.Simulation.ColorScale = cfg.ColorScale
	f.Simulation.Ticks = int64(cfg.Ticks)
	f.Pressure.Stiffness = cfg.Pressure.Stiffness
	f.Pressure.RestDensity = cfg.Pressure.RestDensity
	f.Stream.Capacity = cfg.Stream.Capacity
	f.Stream.Policy = cfg.Stream.Policy
	f.Stream.RecordEvery = cfg.Stream.RecordEvery

	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Simulation.Seed < 0 || f.Simulation.Ticks < 0 {
		return nil, invalid("seed/ticks", fmt.Sprintf("%d/%d", f.Simulation.Seed, f.Simulation.Ticks))
	}

	cfg.Particles = f.Simulation.Particles
	cfg.Mass = f.Simulation.Mass
	cfg.Distribution = f.Simulation.Distribution
	cfg.Spread = f.Simulation.Spread
	cfg.Restoring = f.Simulation.Restoring
	cfg.Seed = uint64(f.Simulation.Seed)
	cfg.Dt = f.Simulation.Dt
	cfg.SmoothingRadius = f.Simulation.SmoothingRadius
	cfg.Kernel = f.Simulation.Kernel
	cfg.Accelerator = f.Simulation.Accelerator
	cfg.Forces = f.Simulation.Forces
	cfg.ColorScale = f.Simulation.ColorScale
	cfg.Ticks = uint64(f.Simulation.Ticks)
	cfg.Pressure.Stiffness = f.Pressure.Stiffness
	cfg.Pressure.RestDensity = f.Pressure.RestDensity
	cfg.Stream.Capacity = f.Stream.Capacity
	cfg.Stream.Policy = f.Stream.Policy
	cfg.Stream.RecordEvery = f.Stream.RecordEvery
	return cfg, nil
}
