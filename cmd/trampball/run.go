package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/trampball/internal/gui"
	"github.com/san-kum/trampball/internal/metrics"
	"github.com/san-kum/trampball/internal/sim"
	"github.com/san-kum/trampball/internal/storage"
	"github.com/san-kum/trampball/internal/viz"
)

// Anchors further than this from rest count against mesh_stability.
const stabilityThreshold = 250.0

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	scene, err := cfg.Scene()
	if err != nil {
		return err
	}
	world, err := scene.Build()
	if err != nil {
		return err
	}

	runner := sim.NewRunner(world, logger)
	rec := storage.NewRecorder(every)
	runner.AddObserver(rec)

	energy := metrics.NewEnergy()
	runner.AddMetric(energy)
	runner.AddMetric(metrics.NewEnergyDrift())
	runner.AddMetric(metrics.NewStability(stabilityThreshold))
	runner.AddMetric(metrics.NewAttached())

	balls := world.Balls()
	var apex *metrics.Apex
	if len(balls) > 0 {
		apex = metrics.NewApex(balls[0].Snapshot().ID)
		runner.AddMetric(apex)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := runner.Run(ctx, cfg.SimConfig())
	if result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted", "error", err)
	}
	elapsed := time.Since(start)

	// Keep stdout clean when the JSON export goes there.
	out := io.Writer(os.Stdout)
	if exportPath == "-" {
		out = os.Stderr
	}

	printSummary(out, cfg.Source(), result, elapsed, energy, apex)
	trace := rec.Rows()
	if len(balls) > 0 {
		id := int(balls[0].Snapshot().ID)
		_, heights := storage.Series(trace, id)
		plotHeights(out, heights, fmt.Sprintf("ball %d height", id))
	}

	meta := storage.RunMetadata{
		Source:      cfg.Source(),
		IntervalMs:  cfg.IntervalMs,
		Duration:    result.Time,
		Ticks:       result.Ticks,
		SubSteps:    result.SubSteps,
		Balls:       len(balls),
		Trampolines: len(world.Trampolines()),
		Metrics:     result.Metrics,
	}

	if save {
		st := storage.New(cfg.Output)
		if err := st.Init(); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := scene.Encode(&buf); err != nil {
			return err
		}
		id, err := st.Save(meta, trace, buf.Bytes())
		if err != nil {
			return err
		}
		meta.ID = id
		fmt.Fprintf(out, "run id: %s\n", id)
	}

	if exportPath != "" {
		if err := storage.ExportJSON(exportPath, meta, trace); err != nil {
			return err
		}
		logger.Info("exported run", "path", exportPath, "rows", len(trace))
	}
	return nil
}

func printSummary(w io.Writer, source string, result *sim.Result, elapsed time.Duration, energy *metrics.Energy, apex *metrics.Apex) {
	var b bytes.Buffer
	row := func(label, format string, args ...any) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...)) + "\n")
	}

	b.WriteString(titleStyle.Render(source) + "\n\n")
	row("ticks", "%d", result.Ticks)
	row("simulated", "%.3fs", result.Time)
	row("wall time", "%v", elapsed.Round(time.Microsecond))
	row("sub-steps", "%d (max %d/tick)", result.SubSteps, result.MaxSubSteps)

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, "%.6g", result.Metrics[name])
	}

	if s := metrics.Summary(energy.Samples()); s.N > 0 {
		row("energy range", "%.4g .. %.4g (sd %.3g)", s.Min, s.Max, s.StdDev)
	}
	if apex != nil {
		if s := metrics.Summary(apex.Apexes()); s.N > 0 {
			row("apexes", "%d, mean %.1f, last %.1f", s.N, s.Mean, apex.Value())
		}
		row("start height", "%.1f", apex.Start())
	}
	for _, err := range result.Errors {
		row("error", "%v", err)
	}

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

func plotHeights(w io.Writer, heights []float64, caption string) {
	if len(heights) < 2 {
		return
	}
	graph := asciigraph.Plot(heights,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(w, graph)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	scene, err := cfg.Scene()
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal; only errors get through.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		quiet = logger
	}
	return viz.Run(scene, cfg.IntervalMs, cfg.Slomo, quiet)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	scene, err := cfg.Scene()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.View.Width = width
	}
	if flags.Changed("height") {
		cfg.View.Height = height
	}
	if flags.Changed("scaling") {
		cfg.View.Scaling = scaling
	}
	if flags.Changed("fullscreen") {
		cfg.View.Fullscreen = fullscreen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := gui.NewApp(scene, gui.Options{
		View:       cfg.View,
		IntervalMs: cfg.IntervalMs,
		Slomo:      cfg.Slomo,
		Mouse:      mouse,
	}, logger)
	return app.Run(ctx)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	scene, err := cfg.Scene()
	if err != nil {
		return err
	}
	if len(factors) == 0 {
		return fmt.Errorf("no spring constant factors given")
	}

	worlds := make([]*sim.World, len(factors))
	for i, f := range factors {
		w, err := scene.WithSpringFactor(f).Build()
		if err != nil {
			return fmt.Errorf("k x%g: %w", f, err)
		}
		worlds[i] = w
	}

	ens := sim.NewEnsemble(worlds, func() []sim.Metric {
		return []sim.Metric{
			metrics.NewEnergyDrift(),
			metrics.NewStability(stabilityThreshold),
			metrics.NewAttached(),
		}
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d spring constants over %s...\n", len(factors), cfg.Source())
	start := time.Now()
	results, err := ens.Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "K FACTOR\tTICKS\tSUB-STEPS\tMAX/TICK\tENERGY DRIFT\tSTABILITY\tATTACHED\tSTATUS")
	for i, r := range results {
		status := "ok"
		if len(r.Errors) > 0 {
			status = r.Errors[0].Error()
		}
		fmt.Fprintf(w, "x%g\t%d\t%d\t%d\t%.4g\t%.3f\t%.2f\t%s\n",
			factors[i],
			r.Ticks,
			r.SubSteps,
			r.MaxSubSteps,
			r.Metrics["energy_drift"],
			r.Metrics["mesh_stability"],
			r.Metrics["attached_mean"],
			status,
		)
	}
	return w.Flush()
}
