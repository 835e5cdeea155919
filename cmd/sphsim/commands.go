package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sphsim/internal/analysis"
	"github.com/san-kum/sphsim/internal/automation"
	"github.com/san-kum/sphsim/internal/config"
	"github.com/san-kum/sphsim/internal/experiment"
	"github.com/san-kum/sphsim/internal/export"
	"github.com/san-kum/sphsim/internal/metrics"
	"github.com/san-kum/sphsim/internal/server"
	"github.com/san-kum/sphsim/internal/sim"
	"github.com/san-kum/sphsim/internal/storage"
	"github.com/san-kum/sphsim/internal/viz"
	"github.com/spf13/cobra"
)

const defaultRunTicks = 500

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Ticks == 0 {
		cfg.Ticks = defaultRunTicks
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.Build(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	rec := storage.NewRecorder(cfg.Stream.RecordEvery)
	recDone := make(chan error, 1)
	go func() { recDone <- rec.Consume(ctx, exp.Handoff) }()

	start := time.Now()
	result, runErr := exp.Simulator.Run(ctx, exp.Handoff, exp.RunConfig())
	if err := <-recDone; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("recorder: %w", err)
	}
	elapsed := time.Since(start)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("run failed", "err", runErr)
	}

	runID, err := st.Save(storage.RunMetadata{
		Particles:   cfg.Particles,
		Kernel:      cfg.Kernel,
		Accelerator: cfg.Accelerator,
		Forces:      cfg.Forces,
		H:           cfg.SmoothingRadius,
		Dt:          cfg.Dt,
		Seed:        cfg.Seed,
		Ticks:       result.Ticks,
		Reason:      string(result.Reason),
		Metrics:     result.Metrics,
	}, rec.Frames())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d (%s)\n", result.Ticks, result.Reason)
	fmt.Printf("frames: %d\n", len(rec.Frames()))
	printMetrics(os.Stdout, result.Metrics)

	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		name, err := viz.PickPreset()
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		preset = name
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := fileLogger("live.log")
	if err != nil {
		return err
	}
	defer closeLog()

	exp, err := experiment.Build(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	type outcome struct {
		result *sim.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := exp.Simulator.Run(ctx, exp.Handoff, exp.RunConfig())
		done <- outcome{r, err}
	}()

	title := fmt.Sprintf("%s  n=%d  h=%g", cfg.Kernel, cfg.Particles, cfg.SmoothingRadius)
	if err := viz.Run(ctx, exp.Handoff, title); err != nil {
		return err
	}

	out := <-done
	if out.err != nil && !errors.Is(out.err, context.Canceled) {
		return out.err
	}
	fmt.Printf("ticks: %d (%s)\n", out.result.Ticks, out.result.Reason)
	printMetrics(os.Stdout, out.result.Metrics)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	go func() {
		_, err := exp.Simulator.Run(ctx, exp.Handoff, exp.RunConfig())
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("simulation failed", "err", err)
		}
	}()

	srv := server.New(exp.Handoff, logger)
	return srv.ListenAndServe(ctx, addr)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKERNEL\tN\tTIME\tTICKS\tFRAMES\tH\tDT\tSTOP")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%g\t%g\t%s\n",
			run.ID,
			run.Kernel,
			run.Particles,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Frames,
			run.H,
			run.Dt,
			run.Reason,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) < 2 {
		return fmt.Errorf("not enough frames to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kernel: %s  particles: %d\n", meta.Kernel, meta.Particles)
	fmt.Printf("frames: %d\n\n", len(frames))

	maxSeries := make([]float64, len(frames))
	meanSeries := make([]float64, len(frames))
	for i, f := range frames {
		_, maxSeries[i] = f.DensityRange()
		meanSeries[i] = metrics.TickMeanDensity(f)
	}

	for _, s := range []struct {
		caption string
		data    []float64
	}{
		{"max density", maxSeries},
		{"mean density", meanSeries},
	} {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if spacing := frames[1].Time - frames[0].Time; spacing > 0 {
		fmt.Printf("dominant mean density frequency: %.4f (1/time)\n", analysis.DominantFrequency(meanSeries, spacing))
	}

	if plotOut != "" {
		if err := os.WriteFile(plotOut, []byte(export.SeriesToSVG(maxSeries, 800, 300, "#00ccff")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotOut)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	w := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := st.ExportJSON(args[0], w); err != nil {
		return fmt.Errorf("export %s: %w", args[0], err)
	}
	return nil
}

func renderFrame(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	idx := frameIdx
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (0..%d)", frameIdx, len(frames)-1)
	}
	snap := frames[idx]

	var svg string
	if braille {
		theme := viz.ThemeThermal
		canvas := viz.NewCanvas(svgWidth/16, svgHeight/32)
		viz.DrawSnapshot(canvas, viz.NewCamera(), snap, viz.Extent(snap.Records), len(theme.Bands))
		palette := make([]string, len(theme.Bands))
		for i, c := range theme.Bands {
			palette[i] = string(c)
		}
		svg = export.CanvasToSVG(canvas, 8, palette)
	} else {
		axes, err := export.ParseAxes(axesName)
		if err != nil {
			return err
		}
		svg = export.SnapshotToSVG(snap, svgWidth, svgHeight, axes)
	}

	if err := os.WriteFile(renderOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote tick %d to %s\n", snap.Tick, renderOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKERNEL\tN\tH\tACCEL\tFORCES\tPOLICY")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\t%s\t%s\n",
			name, p.Kernel, p.Particles, p.SmoothingRadius, p.Accelerator, p.Forces, p.Stream.Policy)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func benchmark(cmd *cobra.Command, args []string) error {
	if benchTicks == 0 {
		return fmt.Errorf("--ticks must be at least 1")
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KERNEL\tACCEL\tN\tTICKS\tTIME\tTICKS/SEC")

	for _, k := range experiment.Kernels() {
		for _, accel := range experiment.Accelerators() {
			for _, n := range benchSizes {
				cfg := config.DefaultConfig()
				cfg.Kernel = k
				cfg.Accelerator = accel
				cfg.Particles = n
				cfg.Ticks = benchTicks

				exp, err := experiment.Build(cfg, nil)
				if err != nil {
					return err
				}

				start := time.Now()
				result, err := exp.Simulator.Run(context.Background(), sim.Discard, exp.RunConfig())
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%.1f\n",
					k, accel, n, result.Ticks, elapsed.Round(time.Microsecond), float64(result.Ticks)/elapsed.Seconds())
			}
		}
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	if runs < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", runs)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Ticks == 0 {
		cfg.Ticks = defaultRunTicks
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	rc := sim.RunConfig{MaxTicks: cfg.Ticks, ValidateState: true}
	results, err := sim.NewEnsemble(experiment.Builder(cfg, logger), runs, cfg.Seed).Run(ctx, rc)
	if err != nil {
		return err
	}

	names := make([]string, 0)
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tTICKS")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d", cfg.Seed+uint64(i), r.Ticks)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.6g", r.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.EnsembleStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	results, err := automation.RunScenario(ctx, sc, logger)
	printStepResults(results)
	return err
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Ticks == 0 {
		cfg.Ticks = defaultRunTicks
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  paramSteps,
	}, logger)
	printStepResults(results)
	return err
}

func printStepResults(results []automation.StepResult) {
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tKERNEL\tN\tH\tTICKS\tSTOP\tMAX DENSITY\tMEAN DENSITY")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%d\t%s\t%.4g\t%.4g\n",
			r.Name, r.Config.Kernel, r.Config.Particles, r.Config.SmoothingRadius,
			r.Result.Ticks, r.Result.Reason,
			r.Result.Metrics["density_max"], r.Result.Metrics["density_mean"])
	}
	w.Flush()
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
}
