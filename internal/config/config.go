package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/kernel"
	"github.com/san-kum/sphsim/internal/particles"
	"github.com/san-kum/sphsim/internal/stream"
	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles  = 1000
	DefaultMass       = 1.0
	DefaultSpread     = 1.0
	DefaultRestoring  = 0.1
	DefaultDt         = 0.01
	DefaultH          = 1.0
	DefaultColorScale = 150.0
	DefaultStiffness  = 2.0
	DefaultRestRho    = 100.0
)

const (
	AccelNone = "none"
	AccelGrid = "grid"

	ForcesStatic   = "static"
	ForcesPressure = "pressure"
)

type Config struct {
	Particles       int            `yaml:"particles"`
	Mass            float64        `yaml:"mass"`
	Distribution    string         `yaml:"distribution"`
	Spread          float64        `yaml:"spread"`
	Restoring       float64        `yaml:"restoring"`
	Seed            uint64         `yaml:"seed"`
	Dt              float64        `yaml:"dt"`
	SmoothingRadius float64        `yaml:"smoothing_radius"`
	Kernel          string         `yaml:"kernel"`
	Accelerator     string         `yaml:"accelerator"`
	Forces          string         `yaml:"forces"`
	ColorScale      float64        `yaml:"color_scale"`
	Ticks           uint64         `yaml:"ticks"`
	Pressure        PressureConfig `yaml:"pressure"`
	Stream          StreamConfig   `yaml:"stream"`
}

type PressureConfig struct {
	Stiffness   float64 `yaml:"stiffness"`
	RestDensity float64 `yaml:"rest_density"`
}

type StreamConfig struct {
	Capacity int    `yaml:"capacity"`
	Policy   string `yaml:"policy"`
	// RecordEvery keeps one snapshot in N when recording to disk.
	RecordEvery int `yaml:"record_every"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles:       DefaultParticles,
		Mass:            DefaultMass,
		Distribution:    particles.DistCube,
		Spread:          DefaultSpread,
		Restoring:       DefaultRestoring,
		Seed:            1,
		Dt:              DefaultDt,
		SmoothingRadius: DefaultH,
		Kernel:          "poly6",
		Accelerator:     AccelNone,
		Forces:          ForcesStatic,
		ColorScale:      DefaultColorScale,
		Pressure: PressureConfig{
			Stiffness:   DefaultStiffness,
			RestDensity: DefaultRestRho,
		},
		Stream: StreamConfig{
			Capacity:    stream.DefaultCapacity,
			Policy:      stream.Block.String(),
			RecordEvery: 1,
		},
	}
}

// Load reads a YAML file, or an INI file when the extension is .ini or .gcfg.
// Unset values keep their defaults.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg":
		return loadINI(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Layout is the particle layout the config describes.
func (c *Config) Layout() particles.Layout {
	return particles.Layout{
		N:            c.Particles,
		Mass:         c.Mass,
		Spread:       c.Spread,
		Restoring:    c.Restoring,
		Distribution: c.Distribution,
		Seed:         c.Seed,
	}
}

// Validate reports the first out-of-range value.
func (c *Config) Validate() error {
	switch {
	case c.Particles <= 0:
		return &dynamo.ConfigError{Field: "particles", Value: c.Particles, Wrapped: dynamo.ErrNoParticles}
	case !(c.Mass > 0):
		return &dynamo.ConfigError{Field: "mass", Value: c.Mass, Wrapped: dynamo.ErrInvalidMass}
	case !(c.SmoothingRadius > 0):
		return &dynamo.ConfigError{Field: "smoothing_radius", Value: c.SmoothingRadius, Wrapped: dynamo.ErrInvalidRadius}
	case !(c.Dt > 0):
		return &dynamo.ConfigError{Field: "dt", Value: c.Dt, Wrapped: dynamo.ErrInvalidTimestep}
	case !(c.ColorScale > 0):
		return invalid("color_scale", c.ColorScale)
	case c.Spread < 0:
		return invalid("spread", c.Spread)
	case kernel.ByName(c.Kernel) == nil:
		return invalid("kernel", c.Kernel)
	case c.Distribution != particles.DistCube && c.Distribution != particles.DistLattice:
		return invalid("distribution", c.Distribution)
	case c.Accelerator != AccelNone && c.Accelerator != AccelGrid:
		return invalid("accelerator", c.Accelerator)
	case c.Forces != ForcesStatic && c.Forces != ForcesPressure:
		return invalid("forces", c.Forces)
	case c.Stream.Capacity < 0:
		return invalid("stream.capacity", c.Stream.Capacity)
	case c.Stream.RecordEvery < 0:
		return invalid("stream.record_every", c.Stream.RecordEvery)
	}
	if _, err := stream.ParsePolicy(c.Stream.Policy); err != nil {
		return err
	}
	return nil
}

func invalid(field string, value any) error {
	return &dynamo.ConfigError{Field: field, Value: value, Wrapped: dynamo.ErrInvalidConfig}
}
