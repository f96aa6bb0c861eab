package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/botsim/internal/analysis"
	"github.com/san-kum/botsim/internal/automation"
	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/control"
	"github.com/san-kum/botsim/internal/experiment"
	"github.com/san-kum/botsim/internal/export"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/optim"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/sim"
	"github.com/san-kum/botsim/internal/storage"
	"github.com/san-kum/botsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, log)
	if err := exp.Setup(metricNames...); err != nil {
		return err
	}
	if cmd.Flags().Changed("cruise") {
		bots := exp.Scene().Bots
		if len(bots) == 0 {
			return fmt.Errorf("--cruise needs a scene with bots")
		}
		for _, b := range bots {
			exp.GetRunner().AddObserver(control.NewCruise(b, cruiseSpeed, control.DefaultGains()))
		}
		log.Info("cruise control attached", logging.Int("bots", len(bots)), logging.Float64("speed", cruiseSpeed))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s...\n", cfg.Scene)
	start := time.Now()
	result, err := exp.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		if result == nil || len(result.Frames) == 0 {
			return err
		}
		log.Warn("run stopped early, saving partial trajectory", logging.Err(err))
	}

	runID, saveErr := st.Save(cfg, result)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%d frames)\n", result.StepsTaken, len(result.Frames))
	fmt.Printf("fingerprint: %016x\n", result.Fingerprint)
	printMetrics(result.Metrics)

	if outFile != "" {
		if werr := os.WriteFile(outFile, []byte(export.WorldToSVG(exp.Scene().World, 4)), 0644); werr != nil {
			return werr
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	return err
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %-18s %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(cfg, log)
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tSTEPS\tBODIES\tFINGERPRINT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.Bodies,
			run.Fingerprint,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Frames) == 0 || len(result.Frames[0].Bodies) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, result, nil
}

// resolveBody finds ref in the result, defaulting to the first recorded body.
func resolveBody(result *sim.Result, ref string) (body.ID, string, error) {
	if ref == "" {
		s := result.Frames[0].Bodies[0]
		return s.ID, name(s), nil
	}
	id, ok := result.Find(ref)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", sim.ErrUnknownBody, ref)
	}
	return id, ref, nil
}

func name(s sim.Sample) string {
	if s.Label != "" {
		return s.Label
	}
	return string(s.ID)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", len(result.Frames))

	if bodyRef == "" {
		comp := "y"
		if len(plotComponents) > 0 {
			comp = plotComponents[0]
		}
		fmt.Println(viz.Rule(comp, 62))
		for _, s := range result.Frames[0].Bodies {
			series, err := result.Series(s.ID, comp)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s %s\n", name(s), viz.Sparkline(series, 40))
		}
		fmt.Println(viz.Rule("", 62))
		return nil
	}

	id, label, err := resolveBody(result, bodyRef)
	if err != nil {
		return err
	}
	for _, comp := range plotComponents {
		data, err := result.Series(id, comp)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %s", label, comp)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// output opens path for writing, or stdout when path is empty.
func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportRun(cmd *cobra.Command, args []string) error {
	out, err := output(outFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if exportFormat == "meta" {
		st := storage.New(dataDir)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	switch exportFormat {
	case "json":
		cfg := meta.Config
		if cfg == nil {
			cfg = config.DefaultConfig()
			cfg.Scene = meta.Scene
		}
		return storage.ExportJSONTo(out, cfg, result)
	case "csv":
		return storage.WriteCSV(out, result)
	case "svg":
		_, label, err := resolveBody(result, bodyRef)
		if err != nil {
			return err
		}
		points, err := export.Path(result, label)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, export.TrajectoryToSVG(points, 800, 600, "#00ff88"))
		return err
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	id, label, err := resolveBody(result, bodyRef)
	if err != nil {
		return err
	}
	if len(analyzeComponents) == 0 {
		analyzeComponents = []string{"y"}
	}

	data, err := result.Series(id, analyzeComponents[0])
	if err != nil {
		return err
	}
	sampleDt := meta.Dt
	if meta.Config != nil && meta.Config.Run.SampleEvery > 1 {
		sampleDt *= float64(meta.Config.Run.SampleEvery)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("body: %s  component: %s\n\n", label, analyzeComponents[0])

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 1 {
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", analyzeComponents[0])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	fmt.Printf("rms: %.4f\n", analysis.RMS(data))

	if len(analyzeComponents) > 1 {
		portrait, err := analysis.PhasePortrait(result, id, analyzeComponents[0], analyzeComponents[1])
		if err != nil {
			return err
		}
		fmt.Printf("\nphase portrait: %s vs %s\n", analyzeComponents[1], analyzeComponents[0])
		fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
	}
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	base := config.DefaultConfig()
	if len(args) > 0 {
		p, err := config.FindPreset(args[0])
		if err != nil {
			return err
		}
		base = p
	}

	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{0.004, 0.008, 0.016}

	fmt.Printf("benchmarking %s\n\n", base.Scene)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg := base.Clone()
			cfg.Run.Duration, cfg.Run.Dt = dur, step
			cfg.Run.SampleEvery = sim.Steps(experiment.SimConfig(cfg)) + 1

			exp := experiment.New(cfg, log)
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, result.StepsTaken, elapsed, stepsPerSec)
		}
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenes := config.ListScenes()
	if len(args) > 0 {
		if config.ListPresets(args[0]) == nil {
			fmt.Printf("no presets for scene: %s\n", args[0])
			return nil
		}
		scenes = args[:1]
	}
	fmt.Println(viz.GradientText("botsim presets", viz.CurrentTheme.Title, viz.CurrentTheme.Accent))
	for _, scene := range scenes {
		fmt.Printf("%s:\n", scene)
		for _, p := range config.ListPresets(scene) {
			fmt.Printf("  %s\n", p)
		}
	}
	fmt.Printf("\nmetrics: %s\n", strings.Join(experiment.NewRegistry().ListMetrics(), ", "))
	fmt.Printf("sweep params: %s\n", strings.Join(analysis.ListParams(), ", "))
	return nil
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	scene, err := scenario.Build(cfg, log)
	if err != nil {
		return err
	}
	for t := 0.0; t+cfg.Run.Dt/2 < at; t += cfg.Run.Dt {
		if err := scene.World.Step(cfg.Run.Dt); err != nil {
			return err
		}
	}

	out, err := output(outFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch snapshotFormat {
	case "ascii":
		canvas := viz.NewCanvas(80, 30)
		viz.RenderWorld(canvas, scene.World)
		if _, err := io.WriteString(out, canvas.String()); err != nil {
			return err
		}
		for _, line := range scene.World.Stats() {
			fmt.Fprintln(out, line)
		}
		return nil
	case "svg":
		_, err := io.WriteString(out, export.WorldToSVG(scene.World, 4))
		return err
	case "braille-svg":
		canvas := viz.NewCanvas(80, 30)
		viz.RenderWorld(canvas, scene.World)
		_, err := io.WriteString(out, export.CanvasToSVG(canvas, 4))
		return err
	default:
		return fmt.Errorf("unknown format: %s", snapshotFormat)
	}
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d copies of %s...\n", runs, cfg.Scene)
	start := time.Now()
	results, err := experiment.RunEnsemble(ctx, cfg, runs, parallel, log)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	names := experiment.NewRegistry().ListMetrics()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEED\tFINGERPRINT\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	for i, r := range results {
		row := make([]string, len(names))
		for j, n := range names {
			row[j] = fmt.Sprintf("%.4f", r.Metrics[n])
		}
		fmt.Fprintf(w, "%d\t%016x\t%s\n", cfg.Run.Seed+int64(i), r.Fingerprint, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	lambda, err := analysis.LyapunovExponent(cfg, perturbation, cfg.Run.Duration)
	if err != nil {
		return err
	}
	fmt.Printf("scene: %s\n", cfg.Scene)
	fmt.Printf("largest lyapunov exponent: %.4f /s\n", lambda)
	if lambda > 0 {
		fmt.Println("nearby starts diverge")
	} else {
		fmt.Println("nearby starts stay together")
	}
	return nil
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ref := bodyRef
	if ref == "" {
		scene, err := scenario.Build(cfg, nil)
		if err != nil {
			return err
		}
		for _, b := range scene.World.Bodies() {
			if !b.Static() && b.Label != "" {
				ref = b.Label
				break
			}
		}
		if ref == "" {
			return analysis.ErrNothingToPerturb
		}
	}
	comp := "y"
	if len(sweepComponents) > 0 {
		comp = sweepComponents[0]
	}

	data, err := analysis.BifurcationDiagram(cfg, analysis.Sweep{
		Param:     sweepParam,
		Min:       sweepMin,
		Max:       sweepMax,
		Steps:     sweepSteps,
		Body:      ref,
		Component: comp,
		Transient: cfg.Run.Duration / 2,
		Record:    cfg.Run.Duration / 2,
	})
	if err != nil {
		return err
	}
	fmt.Printf("bifurcation: %s of %s over %s in [%g, %g]\n\n", comp, ref, sweepParam, sweepMin, sweepMax)
	fmt.Print(analysis.BifurcationToASCII(data, 70, 20))
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("--param is required")
	}
	ranges := make([][]float64, len(tuneParams))
	for i := range tuneParams {
		ranges[i] = optim.Linspace(sweepMin, sweepMax, tuneSteps)
	}
	gs, err := optim.NewGridSearch(tuneParams, ranges, log)
	if err != nil {
		return err
	}
	gs.Maximize = maximize

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, value, err := gs.Search(ctx, cfg, tuneMetric)
	if err != nil {
		return err
	}
	goal := "min"
	if maximize {
		goal = "max"
	}
	fmt.Printf("scene: %s\n", cfg.Scene)
	fmt.Printf("%s %s: %.6f\n", goal, tuneMetric, value)
	for _, p := range tuneParams {
		fmt.Printf("  %-16s %g\n", p, best[p])
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("%s: %d steps\n", viz.GradientText(script.Name, viz.CurrentTheme.Title, viz.CurrentTheme.Accent), len(script.Steps))
	if script.Description != "" {
		fmt.Println(script.Description)
	}
	results, err := automation.RunScript(ctx, script, st, log)
	for i, r := range results {
		saved := "-"
		if r.RunID != "" {
			saved = r.RunID
		}
		fmt.Printf("%2d  %-8s %6d steps  %016x  %s\n", i+1, r.Scene, r.Result.StepsTaken, r.Result.Fingerprint, saved)
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: jitter,
		NumTrials:    trials,
		Seed:         cfg.Run.Seed,
		SpeedLimit:   speedLimit,
	}, log)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("scene: %s, %d trials, jitter %g\n", cfg.Scene, len(results), jitter)
	fmt.Printf("stable: %d  unstable: %d\n", stable, unstable)
	fmt.Println(viz.Meter(float64(stable)/float64(max(len(results), 1)), 40))
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  trial %d: %v\n", r.TrialID, r.Err)
		}
	}
	return nil
}
