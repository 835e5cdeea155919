package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/sim"
)

const scenarioYAML = `
name: kernels
description: same layout, both kernels
steps:
  - name: poly6
    preset: small
    ticks: 3
  - name: spiky
    preset: small
    ticks: 2
    config:
      kernel: spiky
      particles: 20
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "kernels" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}

	cfg, err := sc.Steps[1].StepConfig()
	if err != nil {
		t.Fatal(err)
	}
	small := config.GetPreset("small")
	if cfg.Kernel != "spiky" || cfg.Particles != 20 {
		t.Errorf("overrides not applied: kernel=%s particles=%d", cfg.Kernel, cfg.Particles)
	}
	if cfg.SmoothingRadius != small.SmoothingRadius {
		t.Errorf("preset value lost: h=%v", cfg.SmoothingRadius)
	}
	if cfg.Ticks != 2 {
		t.Errorf("expected 2 ticks, got %d", cfg.Ticks)
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Result.Ticks != 3 || results[1].Result.Ticks != 2 {
		t.Errorf("unexpected ticks: %d, %d", results[0].Result.Ticks, results[1].Result.Ticks)
	}
}

func TestRunScenarioUnknownPreset(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Name: "bad", Preset: "nope", Ticks: 1}}}
	if _, err := RunScenario(context.Background(), sc, nil); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunSweep(t *testing.T) {
	base := config.GetPreset("small")
	base.Particles = 30
	base.Ticks = 2

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base:      base,
		ParamName: "h",
		ParamMin:  0.25,
		ParamMax:  0.75,
		NumSteps:  3,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.25, 0.5, 0.75}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, r := range results {
		if r.Value != want[i] || r.Config.SmoothingRadius != want[i] {
			t.Errorf("step %d: value %v, h %v", i, r.Value, r.Config.SmoothingRadius)
		}
	}
	if base.SmoothingRadius != config.GetPreset("small").SmoothingRadius {
		t.Error("sweep must not modify the base config")
	}
}

func TestRunSweepUnknownParam(t *testing.T) {
	base := config.DefaultConfig()
	base.Ticks = 1
	_, err := RunSweep(context.Background(), &ParameterSweep{Base: base, ParamName: "colour", NumSteps: 2}, nil)
	if err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestEnsembleStats(t *testing.T) {
	results := []*sim.Result{
		{Reason: sim.StopMaxTicks},
		{Reason: sim.StopUnstable},
		{Reason: sim.StopMaxTicks},
	}
	stable, unstable := EnsembleStats(results)
	if stable != 2 || unstable != 1 {
		t.Errorf("got %d stable, %d unstable", stable, unstable)
	}
}
