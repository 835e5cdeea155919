// Package automation runs batches of headless simulations: scripted
// scenarios loaded from YAML and one-parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/experiment"
	"github.com/san-kum/sphsim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset and applies Config on top. Config uses
// the same keys as a config file; keys it leaves out keep the preset value.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Ticks  uint64    `yaml:"ticks"`
	Config yaml.Node `yaml:"config"`
}

// StepResult is the outcome of one scenario step or sweep point.
type StepResult struct {
	Name   string
	Value  float64
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// StepConfig resolves the config a step runs with.
func (s *ScenarioStep) StepConfig() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if s.Ticks > 0 {
		cfg.Ticks = s.Ticks
	}
	return cfg, nil
}

// RunScenario executes all steps in a scenario, stopping at the first
// failure. Results of completed steps are returned either way.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg, err := step.StepConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := runHeadless(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: step.Name, Config: cfg, Result: result})
	}

	return results, nil
}

// sweepParams are the config values a ParameterSweep can vary.
var sweepParams = map[string]func(*config.Config, float64){
	"h":            func(c *config.Config, v float64) { c.SmoothingRadius = v },
	"dt":           func(c *config.Config, v float64) { c.Dt = v },
	"spread":       func(c *config.Config, v float64) { c.Spread = v },
	"restoring":    func(c *config.Config, v float64) { c.Restoring = v },
	"mass":         func(c *config.Config, v float64) { c.Mass = v },
	"particles":    func(c *config.Config, v float64) { c.Particles = int(v + 0.5) },
	"stiffness":    func(c *config.Config, v float64) { c.Pressure.Stiffness = v },
	"rest_density": func(c *config.Config, v float64) { c.Pressure.RestDensity = v },
}

// SweepParams lists the parameter names ParameterSweep accepts.
func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for name := range sweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// RunSweep executes a parameter sweep, one run per value from ParamMin to
// ParamMax inclusive.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	set, ok := sweepParams[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q (available: %v)", sweep.ParamName, SweepParams())
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]StepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := *sweep.Base
		set(&cfg, paramVal)

		result, err := runHeadless(ctx, &cfg)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, StepResult{
			Name:   fmt.Sprintf("%s=%g", sweep.ParamName, paramVal),
			Value:  paramVal,
			Config: &cfg,
			Result: result,
		})
		logger.Info("sweep", "step", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal, "reason", result.Reason)
	}

	return results, nil
}

// EnsembleStats counts runs that finished cleanly against runs that went
// unstable.
func EnsembleStats(results []*sim.Result) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Reason == sim.StopUnstable {
			unstableCount++
		} else {
			stableCount++
		}
	}
	return
}

// runHeadless runs cfg to cfg.Ticks without a consumer. An unstable run is
// a result, not an error.
func runHeadless(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	if cfg.Ticks == 0 {
		return nil, fmt.Errorf("ticks must be set for a headless run")
	}
	exp, err := experiment.Build(cfg, nil)
	if err != nil {
		return nil, err
	}
	result, err := exp.Simulator.Run(ctx, sim.Discard, exp.RunConfig())
	if err != nil && result.Reason != sim.StopUnstable {
		return nil, err
	}
	return result, nil
}
