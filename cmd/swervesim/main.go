package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/curve"
	"github.com/san-kum/swervesim/internal/experiment"
	"github.com/san-kum/swervesim/internal/export"
	"github.com/san-kum/swervesim/internal/optim"
	"github.com/san-kum/swervesim/internal/scenario"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/storage"
	"github.com/san-kum/swervesim/internal/swerve"
	"github.com/san-kum/swervesim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	// Run overrides
	period       float64
	duration     float64
	strategy     string
	integrator   string
	controller   string
	scenarioFile string
	runAll       bool
	// Export
	outPath   string
	svgWidth  int
	svgHeight int
	// Live
	palette string
	// Sweep
	sweepAxes   []string
	sweepMetric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "swervesim",
		Short:        "swerve drivetrain simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".swervesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "robot preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error or off")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario or controller and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&period, "period", config.DefaultPeriod, "control period in seconds")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration without a scenario")
	runCmd.Flags().StringVar(&strategy, "strategy", string(swerve.StrategyMotor), "motor or kinematic")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	runCmd.Flags().StringVar(&controller, "controller", experiment.ControllerDriveForward, "controller without a scenario")
	runCmd.Flags().StringVar(&scenarioFile, "file", "", "scenario file (yaml)")
	runCmd.Flags().BoolVar(&runAll, "all", false, "run every built-in scenario")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run telemetry in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the odometry path as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 600, "width in pixels")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "height in pixels")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render run charts as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output directory (default the run directory)")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "print and plot the operator curves",
		RunE:  showCurves,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the robot from the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&palette, "palette", "field", "colour palette")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list robot presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE:  listScenarios,
	}

	scenarioSaveCmd := &cobra.Command{
		Use:   "scenario-save [name] [path]",
		Short: "write a built-in scenario as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Builtin(args[0])
			if err != nil {
				return err
			}
			return scenario.Save(args[1], sc)
		},
	}

	configSaveCmd := &cobra.Command{
		Use:   "config-save [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the engine per strategy and integrator",
		RunE:  benchEngine,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid search configuration parameters against a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringArrayVar(&sweepAxes, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "current_draw", "metric to minimise")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd,
		curveCmd, liveCmd, presetsCmd, scenariosCmd, scenarioSaveCmd, configSaveCmd, benchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, then config file, then flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.Overlay(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("period") {
		cfg.Sim.Period = period
	}
	if flags.Changed("time") {
		cfg.Sim.Duration = duration
	}
	if flags.Changed("strategy") {
		cfg.Sim.Strategy = swerve.Strategy(strategy)
	}
	if flags.Changed("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInfo(cfg *config.Config, name string) storage.RunInfo {
	return storage.RunInfo{
		Scenario:   name,
		Preset:     preset,
		Strategy:   string(cfg.Sim.Strategy),
		Integrator: cfg.Sim.Integrator,
		Period:     cfg.Sim.Period,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cfg.Logging.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	if runAll {
		return runBatch(cfg, registry, st, logger)
	}

	spec := experiment.Spec{Config: cfg, Controller: controller, Name: controller}
	switch {
	case scenarioFile != "":
		sc, err := scenario.Load(scenarioFile)
		if err != nil {
			return err
		}
		spec.Scenario, spec.Name = sc, sc.Name
	case len(args) == 1:
		sc, err := scenario.Builtin(args[0])
		if err != nil {
			return err
		}
		spec.Scenario, spec.Name = sc, sc.Name
	}

	exp, err := experiment.New(spec, registry, logger)
	if err != nil {
		return err
	}

	fmt.Printf("running %s (%s, %s)...\n", spec.Name, cfg.Sim.Strategy, cfg.Sim.Integrator)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	info := runInfo(cfg, spec.Name)
	info.Duration = exp.Loop().Duration
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printMetrics(result.Metrics)
	return nil
}

func runBatch(cfg *config.Config, registry *experiment.Registry, st *storage.Store, logger *zap.Logger) error {
	names := scenario.Names()
	jobs := make([]sim.Job, len(names))
	durations := make([]float64, len(names))
	for i, name := range names {
		sc, err := scenario.Builtin(name)
		if err != nil {
			return err
		}
		durations[i] = sc.Duration()
		jobs[i] = experiment.Job(experiment.Spec{Name: name, Config: cfg, Scenario: sc}, registry, logger)
	}

	fmt.Printf("running %d scenarios...\n", len(jobs))
	start := time.Now()
	results, err := sim.RunBatch(context.Background(), jobs)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tRUN ID\tSTEPS\tPATH\tPEAK\tCURRENT")
	for i, res := range results {
		info := runInfo(cfg, names[i])
		info.Duration = durations[i]
		runID, err := st.Save(info, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2fm\t%.2fm/s\t%.1fA\n",
			names[i], runID, res.StepsTaken,
			res.Metrics["path_length"], res.Metrics["peak_speed"], res.Metrics["current_draw"])
	}
	return w.Flush()
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(m)) {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tPERIOD\tSTRATEGY\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Period,
			run.Strategy,
			run.Integrator,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(s sim.Sample) float64
	}{
		{"odometry x (m)", func(s sim.Sample) float64 { return s.Snapshot.OdometryX }},
		{"odometry y (m)", func(s sim.Sample) float64 { return s.Snapshot.OdometryY }},
		{"yaw (deg)", func(s sim.Sample) float64 { return s.Snapshot.Gyro.YawDeg }},
		{"speed multiplier", func(s sim.Sample) float64 { return s.Safety.SpeedMultiplier }},
		{"total current (A)", func(s sim.Sample) float64 { return s.Snapshot.TotalCurrentAmps() }},
	}

	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportRun(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	final := samples[len(samples)-1].Snapshot.Pose()
	svg := export.PathToSVG(export.PathFromSamples(samples), final.Heading.Radians(), svgWidth, svgHeight, "#00ffff")
	if svg == "" {
		return fmt.Errorf("run too short to draw")
	}
	if outPath == "" {
		_, err = fmt.Println(svg)
		return err
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	dir := outPath
	if dir == "" {
		dir = storage.New(dataDir).Path(args[0])
	}
	files, err := export.SavePlots(dir, samples)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("wrote %s\n", f)
	}
	return nil
}

func showCurves(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	translation, rotation, err := cfg.Curves(nil, nil)
	if err != nil {
		return err
	}

	fmt.Printf("curve: %s\n", cfg.Operator.Curve)
	fmt.Printf("deadband: %.2f  min output: %.2f\n", cfg.Operator.Deadband, cfg.Operator.MinOutput)
	fmt.Printf("trigger threshold: %.2f  two controllers: %v\n\n", cfg.Operator.TriggerThreshold, cfg.Operator.TwoControllers)

	const points = 41
	xs := make([]float64, points)
	tr := make([]float64, points)
	rot := make([]float64, points)
	for i := range xs {
		xs[i] = -1 + 2*float64(i)/float64(points-1)
		tr[i] = translation.Transfer(xs[i])
		rot[i] = rotation.Transfer(xs[i])
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INPUT\tTRANSLATION\tROTATION")
	for i := points / 2; i < points; i += 2 {
		fmt.Fprintf(w, "%.2f\t%.4f\t%.4f\n", xs[i], tr[i], rot[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	graph := asciigraph.PlotMany([][]float64{tr, rot},
		asciigraph.Height(12),
		asciigraph.Width(points*2),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
		asciigraph.Caption("translation (cyan), rotation (magenta) over [-1, 1]"),
	)
	fmt.Println(graph)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	axes := control.NewManualAxes()
	table := curve.NewTable()
	console := viz.NewConsole(scenario.NominalVoltage)

	// Log output would tear the terminal UI.
	exp, err := experiment.New(experiment.Spec{
		Name:       "live",
		Config:     cfg,
		Controller: experiment.ControllerTeleop,
		Axes:       axes,
		Table:      table,
		Env:        console,
	}, nil, zap.NewNop())
	if err != nil {
		return err
	}

	m, err := viz.NewStation(exp.Simulator(), axes, table, console, viz.StationConfig{
		Title:    "swervesim " + string(cfg.Sim.Strategy),
		Period:   cfg.Sim.Period,
		Geometry: cfg.Robot.Geometry,
		Palette:  palette,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDURATION\tSEGMENTS\tDESCRIPTION")
	for _, name := range scenario.Names() {
		sc, err := scenario.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.1fs\t%d\t%s\n", sc.Name, sc.Duration(), len(sc.Segments), sc.Description)
	}
	return w.Flush()
}

func benchEngine(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	periods := []float64{0.005, 0.02}

	fmt.Println("benchmarking square scenario")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tINTEG\tPERIOD\tSTEPS\tTIME\tSTEPS/SEC")

	for _, strat := range registry.ListStrategies() {
		for _, integ := range registry.ListIntegrators() {
			for _, p := range periods {
				cfg := *base
				cfg.Sim.Strategy = swerve.Strategy(strat)
				cfg.Sim.Integrator = integ
				cfg.Sim.Period = p

				sc, err := scenario.Builtin("square")
				if err != nil {
					return err
				}
				exp, err := experiment.New(experiment.Spec{Config: &cfg, Scenario: sc}, registry, nil)
				if err != nil {
					return err
				}

				start := time.Now()
				result, err := exp.Run(context.Background())
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				steps := result.StepsTaken
				fmt.Fprintf(w, "%s\t%s\t%.3fs\t%d\t%v\t%.0f\n",
					strat, integ, p, steps, elapsed, float64(steps)/elapsed.Seconds())
			}
		}
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := scenario.Builtin(args[0])
	if err != nil {
		return err
	}
	if len(sweepAxes) == 0 {
		return fmt.Errorf("no --param given (available: %v)", optim.ParamNames())
	}

	axes := make([]optim.Axis, len(sweepAxes))
	for i, a := range sweepAxes {
		if axes[i], err = optim.ParseAxis(a); err != nil {
			return err
		}
	}
	g, err := optim.NewGridSearch(axes)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %d combinations on %s...\n", len(g.Combinations()), sc.Name)
	best, points, err := g.Search(context.Background(), experiment.Spec{Config: cfg, Scenario: sc}, sweepMetric, nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := ""
	for _, ax := range axes {
		header += strings.ToUpper(ax.Name) + "\t"
	}
	fmt.Fprintln(w, header+strings.ToUpper(sweepMetric))
	for _, p := range points {
		for _, ax := range axes {
			fmt.Fprintf(w, "%g\t", p.Params[ax.Name])
		}
		fmt.Fprintf(w, "%.6f\n", p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6f at %v\n", sweepMetric, best.Value, best.Params)
	return nil
}
