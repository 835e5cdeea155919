package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/sphsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	particlesN  int
	kernelName  string
	smoothing   float64
	dt          float64
	seed        uint64
	ticks       uint64
	accelerator string
	forces      string
	policy      string
	capacity    int
	recordEvery int

	addr       string
	frameIdx   int
	axesName   string
	plotOut    string
	exportOut  string
	renderOut  string
	svgWidth   int
	svgHeight  int
	braille    bool
	runs       int
	benchSizes []int
	benchTicks uint64
	paramName  string
	paramMin   float64
	paramMax   float64
	paramSteps int
)

// main executes the root command. It exits with status 1 if the command
// returns an error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers commands and flags. Each command binds its own
// variables for flags whose defaults differ between commands.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sphsim",
		Short:        "smoothed particle density simulation",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sphsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and record to the data directory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream snapshots to websocket clients",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot density over time for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&plotOut, "output", "o", "", "also write max density as svg")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render one recorded frame as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  renderFrame,
	}
	renderCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index, negative counts from the end")
	renderCmd.Flags().StringVar(&axesName, "axes", "xy", "projection axes (xy, xz, yz)")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "frame.svg", "output file")
	renderCmd.Flags().IntVar(&svgWidth, "width", 800, "svg width")
	renderCmd.Flags().IntVar(&svgHeight, "height", 800, "svg height")
	renderCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal braille view instead")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file with the resolved settings",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	addSimFlags(initCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark kernels and density estimators",
		Args:  cobra.NoArgs,
		RunE:  benchmark,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{100, 500, 1000}, "particle counts")
	benchCmd.Flags().Uint64Var(&benchTicks, "ticks", 20, "ticks per measurement")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the same config over several seeds in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&runs, "runs", 4, "number of seeds")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	paramSweepCmd := &cobra.Command{
		Use:   "param-sweep",
		Short: "vary one parameter over a range",
		Args:  cobra.NoArgs,
		RunE:  runParamSweep,
	}
	addSimFlags(paramSweepCmd)
	paramSweepCmd.Flags().StringVar(&paramName, "param", "h", "parameter to vary")
	paramSweepCmd.Flags().Float64Var(&paramMin, "min", 0.25, "first value")
	paramSweepCmd.Flags().Float64Var(&paramMax, "max", 1.0, "last value")
	paramSweepCmd.Flags().IntVar(&paramSteps, "steps", 4, "number of values")

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, plotCmd, exportJSONCmd, renderCmd, presetsCmd, initCmd, benchCmd, sweepCmd, scenarioCmd, paramSweepCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVarP(&particlesN, "particles", "n", config.DefaultParticles, "particle count")
	cmd.Flags().StringVar(&kernelName, "kernel", "poly6", "smoothing kernel (poly6, spiky)")
	cmd.Flags().Float64Var(&smoothing, "h", config.DefaultH, "smoothing radius")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "stop after this many ticks (0 = config value)")
	cmd.Flags().StringVar(&accelerator, "accel", config.AccelNone, "density accelerator (none, grid)")
	cmd.Flags().StringVar(&forces, "forces", config.ForcesStatic, "force model (static, pressure)")
	cmd.Flags().StringVar(&policy, "policy", "block", "handoff policy (block, drop-oldest, unbounded)")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "handoff capacity (0 = config value)")
	cmd.Flags().IntVar(&recordEvery, "every", 1, "record one snapshot in N")
}

// resolveConfig applies the preset, then the config file, then any flag the
// user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particlesN
	}
	if flags.Changed("kernel") {
		cfg.Kernel = kernelName
	}
	if flags.Changed("h") {
		cfg.SmoothingRadius = smoothing
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("accel") {
		cfg.Accelerator = accelerator
	}
	if flags.Changed("forces") {
		cfg.Forces = forces
	}
	if flags.Changed("policy") {
		cfg.Stream.Policy = policy
	}
	if flags.Changed("capacity") {
		cfg.Stream.Capacity = capacity
	}
	if flags.Changed("every") {
		cfg.Stream.RecordEvery = recordEvery
	}

	return cfg, cfg.Validate()
}

func newLogger(w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "sphsim",
	}), nil
}

// fileLogger logs to a file in the data directory, for commands that own
// the terminal.
func fileLogger(name string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(filepath.Join(dataDir, name))
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, func() { f.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
