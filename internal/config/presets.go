package config

import "sort"

// Presets are named starting points. GetPreset returns a copy, so callers may
// modify the result.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"small": with(func(c *Config) {
		c.Particles = 200
		c.SmoothingRadius = 0.5
		c.ColorScale = 20
	}),
	"lattice": with(func(c *Config) {
		c.Particles = 512
		c.Distribution = "lattice"
		c.SmoothingRadius = 0.4
		c.ColorScale = 40
	}),
	"dense": with(func(c *Config) {
		c.Particles = 4000
		c.SmoothingRadius = 0.25
		c.Accelerator = AccelGrid
		c.ColorScale = 30
	}),
	"pressure": with(func(c *Config) {
		c.Particles = 400
		c.SmoothingRadius = 0.4
		c.Forces = ForcesPressure
		c.Accelerator = AccelGrid
		c.Pressure = PressureConfig{Stiffness: 0.5, RestDensity: 20}
		c.ColorScale = 40
	}),
	"realtime": with(func(c *Config) {
		c.Particles = 1000
		c.Stream.Capacity = 4
		c.Stream.Policy = "drop-oldest"
	}),
}

func with(mod func(*Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
