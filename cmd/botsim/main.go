package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/gui"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/viz"
)

var (
	dataDir     string
	logLevel    string
	configFile  string
	dt          float64
	duration    float64
	seed        int64
	sampleEvery int
	metricNames []string
	// body selection; each command keeps its own component defaults
	bodyRef           string
	plotComponents    []string
	analyzeComponents []string
	sweepComponents   []string
	// output
	outFile        string
	exportFormat   string
	snapshotFormat string
	// snapshot
	at float64
	// ensemble
	runs     int
	parallel int
	// lyapunov
	perturbation float64
	// bifurcation
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	// tune
	tuneParams []string
	tuneMetric string
	tuneSteps  int
	maximize   bool
	// run
	cruiseSpeed float64
	// montecarlo
	trials     int
	jitter     float64
	speedLimit float64
)

var log = logging.Nop()

// main registers every command and runs the root one. With no subcommand the
// interactive preset picker opens.
func main() {
	rootCmd := &cobra.Command{
		Use:          "botsim",
		Short:        "rigid body sandbox for wheeled bots",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log = logging.New(level)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(log)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".botsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene headless and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	sceneFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to record (default all)")
	runCmd.Flags().StringVar(&outFile, "svg", "", "also write the final world as SVG")
	runCmd.Flags().Float64Var(&cruiseSpeed, "cruise", 0, "hold every bot at this chassis speed (+x is forward)")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [preset]",
		Short: "open a scene in a desktop window (menu when no preset is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && configFile == "" {
				return gui.Run(nil, log)
			}
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return gui.Run(cfg, log)
		},
	}
	sceneFlags(guiCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body components of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodyRef, "body", "", "body id or label (default: sparkline of every body)")
	plotCmd.Flags().StringSliceVar(&plotComponents, "component", []string{"x", "y", "theta"}, "components to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as meta, json, csv or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "meta", "meta, json, csv or svg")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&bodyRef, "body", "", "body id or label for svg paths")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and phase portrait of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&bodyRef, "body", "", "body id or label (default: first recorded)")
	analyzeCmd.Flags().StringSliceVar(&analyzeComponents, "component", []string{"y", "vy"}, "spectrum component, then optional phase y-axis")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "time a scene across step sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list scenes and their presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [preset]",
		Short: "step a scene to a time and draw it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScene,
	}
	sceneFlags(snapshotCmd)
	snapshotCmd.Flags().Float64Var(&at, "at", 0, "seconds to step before drawing")
	snapshotCmd.Flags().StringVar(&snapshotFormat, "format", "ascii", "ascii, svg or braille-svg")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run seeded copies of a scene in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	sceneFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "runs in flight (0 = unlimited)")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [preset]",
		Short: "estimate the largest Lyapunov exponent of a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLyapunov,
	}
	sceneFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-6, "initial x offset of the first dynamic body")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [preset]",
		Short: "sweep a parameter and plot the settled values of one component",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBifurcation,
	}
	sceneFlags(bifurcationCmd)
	bifurcationCmd.Flags().StringVar(&sweepParam, "param", "restitution", "parameter to sweep")
	bifurcationCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "sweep start")
	bifurcationCmd.Flags().Float64Var(&sweepMax, "max", 0.9, "sweep end")
	bifurcationCmd.Flags().IntVar(&sweepSteps, "steps", 20, "parameter values")
	bifurcationCmd.Flags().StringVar(&bodyRef, "body", "", "body id or label (default: first recorded)")
	bifurcationCmd.Flags().StringSliceVar(&sweepComponents, "component", []string{"y"}, "recorded component")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search parameters for the best value of a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	sceneFlags(tuneCmd)
	tuneCmd.Flags().StringSliceVar(&tuneParams, "param", nil, "parameters to search")
	tuneCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "range start for every parameter")
	tuneCmd.Flags().Float64Var(&sweepMax, "max", 0.9, "range end for every parameter")
	tuneCmd.Flags().IntVar(&tuneSteps, "steps", 5, "values per parameter")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "energy_drift", "metric to optimise")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "look for the largest value instead")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run the steps of a yaml script",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "run jittered copies of a scene and count the stable ones",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	sceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "runs", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&jitter, "jitter", 0.5, "half-width of the start position and angle jitter")
	monteCarloCmd.Flags().Float64Var(&speedLimit, "speed-limit", 500, "final speed above which a trial counts as unstable")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, listCmd, plotCmd, exportCmd, analyzeCmd, benchCmd, presetsCmd,
		snapshotCmd, ensembleCmd, lyapunovCmd, bifurcationCmd, tuneCmd, scriptCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sceneFlags registers the flags shared by every command that builds a scene.
func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "record every nth step")
}

// loadConfig resolves the scene config: a named preset, else the config
// file, else the defaults. Flags override either only when set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		p, err := config.FindPreset(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w (scenes: %v)", err, config.ListScenes())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("sample-every") {
		cfg.Run.SampleEvery = sampleEvery
	}
	return cfg, cfg.Validate()
}
