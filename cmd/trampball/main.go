package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/trampball/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string
	intervalMs float64
	duration   float64
	slomo      int
	verbose    bool

	save       bool
	exportPath string
	outputPath string
	every      int

	width      int
	height     int
	scaling    float64
	mouse      bool
	fullscreen bool

	factors []float64
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	rootCmd := &cobra.Command{
		Use:   "trampball",
		Short: "balls, trampolines and walls in a 2D box",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run store directory (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [worldfile]",
		Short: "run a world headless and summarise it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the store")
	runCmd.Flags().StringVar(&exportPath, "export", "", "write the run as JSON to a file (- for stdout)")
	runCmd.Flags().IntVar(&every, "every", 1, "record every nth tick")

	liveCmd := &cobra.Command{
		Use:   "live [worldfile]",
		Short: "watch a world in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	simFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [worldfile]",
		Short: "open a world in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	simFlags(guiCmd)
	guiCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "window width")
	guiCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "window height")
	guiCmd.Flags().Float64Var(&scaling, "scaling", config.DefaultScaling, "pixels per world unit")
	guiCmd.Flags().BoolVar(&mouse, "mouse", false, "control gravity with the mouse")
	guiCmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "start fullscreen")

	sweepCmd := &cobra.Command{
		Use:   "sweep [worldfile]",
		Short: "run a world with scaled spring constants in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	simFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&factors, "k", []float64{0.5, 1, 2, 10, 100}, "spring constant factors")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the height of each ball in a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output file (- for stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("  %-12s %5.1fs  %s\n", name, p.Duration, p.Description)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, sweepCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in world (see presets)")
	cmd.Flags().Float64Var(&intervalMs, "interval", config.DefaultIntervalMs, "tick interval in ms")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds")
	cmd.Flags().IntVar(&slomo, "slomo", config.DefaultSlomo, "tick only every nth timer event")
}

// resolveConfig layers the config file, the preset, the world file
// argument and explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Preset, cfg.World = p.Preset, ""
		cfg.Duration = p.Duration
	}
	if len(args) > 0 {
		cfg.World = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.IntervalMs = intervalMs
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("slomo") {
		cfg.Slomo = slomo
	}
	if dataDir != "" {
		cfg.Output = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
