package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/san-kum/chaser/internal/automation"
	"github.com/san-kum/chaser/internal/config"
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/experiment"
	"github.com/san-kum/chaser/internal/export"
	"github.com/san-kum/chaser/internal/metrics"
	"github.com/san-kum/chaser/internal/optim"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
	"github.com/san-kum/chaser/internal/storage"
	"github.com/san-kum/chaser/internal/transport"
	"github.com/san-kum/chaser/internal/viz"
)

var (
	dataDir    string
	configFile string
	verbose    bool
	themeName  string

	rate        float64
	speedGain   float64
	angularGain float64
	tolerance   float64
	wrapHeading bool

	poseAddr   string
	cmdAddr    string
	stopOnExit bool
	maxTicks   uint64
	tickDB     string

	duration   float64
	integrator string
	motion     string
	seed       int64

	// tune
	speedRange   string
	angularRange string
	gridSteps    int
	metricName   string
	workers      int

	// sweep / montecarlo
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	numTrials    int
	perturbation float64

	outPath  string
	plotKind string
)

// main registers the chaser commands; with no subcommand it opens the
// preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "chaser",
		Short:         "pursuit controller for a unicycle agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyTheme(themeName)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every tick")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", viz.CurrentTheme.Name, "terminal colour theme")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run the controller against live UDP poses",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runController,
	}
	gainFlags(runCmd)
	runCmd.Flags().StringVar(&poseAddr, "pose-addr", config.DefaultPoseAddr, "UDP address to receive poses on")
	runCmd.Flags().StringVar(&cmdAddr, "cmd-addr", "", "UDP address to send commands to (empty discards)")
	runCmd.Flags().BoolVar(&stopOnExit, "stop-on-exit", false, "send a stop command on shutdown")
	runCmd.Flags().Uint64Var(&maxTicks, "max-ticks", 0, "stop after this many ticks (0 runs until interrupted)")
	runCmd.Flags().StringVar(&tickDB, "tick-db", "", "append ticks to this SQLite file")

	simCmd := &cobra.Command{
		Use:   "sim [preset]",
		Short: "run an offline simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	gainFlags(simCmd)
	simFlags(simCmd)
	simCmd.Flags().StringVar(&tickDB, "tick-db", "", "also append ticks to this SQLite file")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	gainFlags(liveCmd)
	simFlags(liveCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario and check its expectations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search over speed and angular gain",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	gainFlags(tuneCmd)
	simFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&speedRange, "speed", "0.5,3", "speed gain range lo,hi")
	tuneCmd.Flags().StringVar(&angularRange, "angular", "2,8", "angular gain range lo,hi")
	tuneCmd.Flags().IntVar(&gridSteps, "steps", 5, "values per gain")
	tuneCmd.Flags().StringVar(&metricName, "metric", "capture_time", "metric to minimise")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel simulations (0 uses every CPU)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "vary one controller parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	gainFlags(sweepCmd)
	simFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", control.ParamSpeedGain, "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 3, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 6, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "perturb the agent's start pose over many trials",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	gainFlags(monteCarloCmd)
	simFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&numTrials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 1, "max start offset per axis")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot distance and commands in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON or a plot image",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (.json, .png, .svg, .pdf); stdout JSON when empty")
	exportCmd.Flags().StringVar(&plotKind, "kind", "trajectory", "plot kind: trajectory, distance, commands")

	ticksCmd := &cobra.Command{
		Use:   "ticks [db] [run_id]",
		Short: "read a SQLite tick log",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  readTickLog,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets, integrators and target motions",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, simCmd, liveCmd, scenarioCmd, tuneCmd, sweepCmd, monteCarloCmd, listCmd, plotCmd, exportCmd, ticksCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func gainFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&rate, "rate", config.DefaultRate, "control rate in Hz")
	cmd.Flags().Float64Var(&speedGain, "speed-gain", 1, "linear speed gain")
	cmd.Flags().Float64Var(&angularGain, "angular-gain", config.DefaultAngularGain, "angular gain")
	cmd.Flags().Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "holding radius")
	cmd.Flags().BoolVar(&wrapHeading, "wrap-heading", false, "wrap heading error into (-pi, pi]")
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().StringVar(&motion, "motion", "", "target motion (overrides preset)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for wandering targets")
}

// loadConfig resolves preset, then config file, then changed flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		name = args[0]
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		cfg.Rate = rate
	}
	if flags.Changed("speed-gain") {
		cfg.Controller.SpeedGain = config.Float(speedGain)
	}
	if flags.Changed("angular-gain") {
		cfg.Controller.AngularGain = angularGain
	}
	if flags.Changed("tolerance") {
		cfg.Controller.DistanceTolerance = tolerance
	}
	if flags.Changed("wrap-heading") {
		cfg.Controller.WrapHeading = wrapHeading
	}
	if flags.Changed("pose-addr") {
		cfg.Transport.PoseAddr = poseAddr
	}
	if flags.Changed("cmd-addr") {
		cfg.Transport.CommandAddr = cmdAddr
	}
	if flags.Changed("stop-on-exit") {
		cfg.StopOnExit = stopOnExit
	}
	if flags.Changed("tick-db") {
		cfg.Storage.TickDB = tickDB
	}
	if flags.Changed("time") {
		cfg.Sim.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if flags.Changed("motion") {
		cfg.Sim.Target.Motion = motion
	}
	if flags.Changed("seed") {
		cfg.Sim.Seed = seed
	}
	if !cmd.Flags().Changed("data") && cfg.Storage.DataDir != "" && configFile != "" {
		dataDir = cfg.Storage.DataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "chaser: ", log.LstdFlags|log.Lmicroseconds)
}

func runController(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger()

	store := pose.NewStore(cfg.Initial.Agent, cfg.Initial.Target)

	listener, err := transport.Listen(cfg.Transport.PoseAddr, cfg.Transport.ReadBuffer, store, logger)
	if err != nil {
		return fmt.Errorf("pose source: %w", err)
	}
	defer listener.Close()

	sender, err := transport.NewCommandSender(cfg.Transport.CommandAddr)
	if err != nil {
		return fmt.Errorf("command sink: %w", err)
	}
	defer sender.Close()

	loop, err := sim.NewLoop(store, control.NewPursuit(cfg.Gains()), sender, sim.LoopConfig{
		Rate:       cfg.Rate,
		StopOnExit: cfg.StopOnExit,
		MaxTicks:   maxTicks,
	})
	if err != nil {
		return err
	}
	loop.SetLogger(logger)
	if verbose {
		loop.AddObserver(sim.LogObserver(logger, 1))
	}

	if cfg.Storage.TickDB != "" {
		tl, err := storage.OpenTickLog(cfg.Storage.TickDB, uuid.NewString())
		if err != nil {
			return fmt.Errorf("tick log: %w", err)
		}
		defer func() {
			if err := tl.Err(); err != nil {
				logger.Printf("tick log: %v", err)
			}
			tl.Close()
		}()
		loop.AddObserver(tl)
		logger.Printf("logging ticks to %s as run %s", cfg.Storage.TickDB, tl.RunID())
	}

	g := cfg.Gains()
	logger.Printf("rate=%.1fHz speed_gain=%.4f angular_gain=%.4f distance_tolerance=%.4f wrap_heading=%v",
		cfg.Rate, g.Speed, g.Angular, g.Tolerance, g.WrapHeading)
	logger.Printf("poses on %s, commands to %q", listener.Addr(), cfg.Transport.CommandAddr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Serve(ctx); err != nil {
			logger.Printf("pose source: %v", err)
		}
	}()

	err = loop.Run(ctx)
	stop()
	wg.Wait()

	received, dropped := listener.Stats()
	logger.Printf("stopped after %d ticks; %d poses received, %d dropped", loop.Ticks(), received, dropped)
	return err
}

func buildExperiment(cfg *config.Config, reg *experiment.Registry) (*experiment.Experiment, error) {
	exp := experiment.New(cfg, reg)
	if err := exp.Setup(metrics.Standard()); err != nil {
		return nil, err
	}
	return exp, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	exp, err := buildExperiment(cfg, nil)
	if err != nil {
		return err
	}
	if verbose {
		exp.Simulator().AddObserver(sim.LogObserver(newLogger(), uint64(cfg.Rate)))
	}

	var tl *storage.TickLog
	if cfg.Storage.TickDB != "" {
		tl, err = storage.OpenTickLog(cfg.Storage.TickDB, uuid.NewString())
		if err != nil {
			return fmt.Errorf("tick log: %w", err)
		}
		defer tl.Close()
		exp.Simulator().AddObserver(tl)
	}

	fmt.Printf("simulating %s (%s target, %.0fs)...\n", name, cfg.Sim.Target.Motion, cfg.Sim.Duration)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if tl != nil {
		if err := tl.Err(); err != nil {
			return err
		}
	}

	runID, err := st.Save(exp.Metadata("sim", name, result), result.Ticks)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.StepsTaken)
	printMetrics(result.Metrics)
	for _, e := range result.Errors {
		fmt.Printf("  warning: %v\n", e)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %-16s %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(cfg, name)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = newLogger()
	}

	out, err := automation.NewRunner(nil, logger).RunScenario(cmd.Context(), sc)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	meta := experiment.New(out.Config, nil).Metadata("scenario", sc.Name, out.Result)
	runID, err := st.Save(meta, out.Result.Ticks)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}
	fmt.Printf("run id: %s\n", runID)
	printMetrics(out.Result.Metrics)

	fmt.Println("\nchecks:")
	for _, c := range out.Checks {
		status := "PASS"
		if !c.Pass {
			status = "FAIL"
		}
		fmt.Printf("  %s  %-18s %s\n", status, c.Name, c.Detail)
	}
	if !out.Passed() {
		return fmt.Errorf("scenario %s failed", sc.Name)
	}
	return nil
}

func parseRange(s string) (lo, hi float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("range %q: want lo,hi", s)
	}
	if lo, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if hi, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	return lo, hi, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	base, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	sLo, sHi, err := parseRange(speedRange)
	if err != nil {
		return err
	}
	aLo, aHi, err := parseRange(angularRange)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	gs := optim.NewGridSearch(
		[]string{control.ParamSpeedGain, control.ParamAngularGain},
		[][]float64{optim.Linspace(sLo, sHi, gridSteps), optim.Linspace(aLo, aHi, gridSteps)},
	)
	gs.SetWorkers(workers)

	fmt.Printf("tuning %s: %d combinations, minimising %s\n", name, gridSteps*gridSteps, metricName)
	start := time.Now()
	out, err := gs.Search(cmd.Context(), func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		cfg.Controller.SpeedGain = config.Float(params[control.ParamSpeedGain])
		cfg.Controller.AngularGain = params[control.ParamAngularGain]
		return buildExperiment(cfg, reg)
	}, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSPEED\tANGULAR\tVALUE")
	for i, t := range out.Trials {
		if i == 10 {
			break
		}
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.4f\n", i+1, t.Params[control.ParamSpeedGain], t.Params[control.ParamAngularGain], t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if out.BestValue == metrics.NotCaptured {
		fmt.Println("\nno combination captured the target")
		return nil
	}
	fmt.Printf("\nbest: speed_gain=%.3f angular_gain=%.3f %s=%.4f\n",
		out.Best[control.ParamSpeedGain], out.Best[control.ParamAngularGain], metricName, out.BestValue)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.NewRunner(nil, nil).RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      base,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCAPTURED\tCAPTURE_TIME\tHOLD_RATIO\tEFFORT\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%v\t%.3f\t%.3f\t%.3f\n",
			r.ParamValue, r.Captured, r.Metrics["capture_time"], r.Metrics["hold_ratio"], r.Metrics["control_effort"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.NewRunner(nil, nil).RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: perturbation,
		NumTrials:    numTrials,
		Seed:         base.Sim.Seed,
	})
	if err != nil {
		return err
	}

	captured, escaped := automation.MonteCarloStats(results)
	times := make([]float64, 0, captured)
	for _, r := range results {
		if r.Captured {
			times = append(times, r.CaptureTime)
		}
	}

	fmt.Printf("%s: %d trials, %d captured, %d escaped\n", name, len(results), captured, escaped)
	if len(times) > 1 {
		sort.Float64s(times)
		fmt.Println(asciigraph.Plot(times, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("capture time (sorted)")))
	}
	return nil
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
	fmt.Fprintln(w, "ID\tKIND\tNAME\tTIME\tTICKS\tMOTION\tCAPTURED\tCAPTURE_TIME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%v\t%.2fs\n",
			shortID(run.ID),
			run.Kind,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Motion,
			run.Captured,
			run.Metrics["capture_time"],
		)
	}

	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func loadRun(prefix string) (*storage.RunMetadata, []sim.Tick, error) {
	st := storage.New(dataDir)
	runID, err := st.Resolve(prefix)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, ticks, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s (%s)\n", meta.Name, meta.Kind)
	fmt.Printf("ticks: %d\n\n", len(ticks))

	series := []struct {
		caption string
		value   func(sim.Tick) float64
	}{
		{"distance to target", func(t sim.Tick) float64 { return t.Distance }},
		{"linear command", func(t sim.Tick) float64 { return t.Command.Linear }},
		{"angular command", func(t sim.Tick) float64 { return t.Command.Angular }},
	}
	for _, s := range series {
		data := make([]float64, len(ticks))
		for i, t := range ticks {
			data[i] = s.value(t)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(outPath))
	switch ext {
	case "":
		if outPath != "" {
			return fmt.Errorf("export: %s has no extension", outPath)
		}
		return storage.ExportJSON(os.Stdout, *meta, ticks)
	case ".json":
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := storage.ExportJSON(f, *meta, ticks); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	title := fmt.Sprintf("%s %s", meta.Name, shortID(meta.ID))
	var p *plot.Plot
	switch plotKind {
	case "trajectory":
		p, err = export.Trajectory(ticks, title)
	case "distance":
		p, err = export.Distance(ticks, meta.Gains.DistanceTolerance, title)
	case "commands":
		p, err = export.Commands(ticks, title)
	default:
		return fmt.Errorf("unknown plot kind: %s", plotKind)
	}
	if err != nil {
		return err
	}
	if err := export.Save(p, outPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func readTickLog(cmd *cobra.Command, args []string) error {
	tl, err := storage.OpenTickLog(args[0], "")
	if err != nil {
		return err
	}
	defer tl.Close()

	if len(args) == 1 {
		runs, err := tl.Runs()
		if err != nil {
			return err
		}
		for _, id := range runs {
			fmt.Println(id)
		}
		return nil
	}

	ticks, err := tl.Ticks(args[1])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	for _, t := range ticks {
		if err := enc.Encode(storage.Record(t)); err != nil {
			return err
		}
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMOTION\tSPEED\tANGULAR\tTOLERANCE\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		g := cfg.Gains()
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.0fs\n", name, cfg.Sim.Target.Motion, g.Speed, g.Angular, g.Tolerance, cfg.Sim.Duration)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	fmt.Printf("\nintegrators: %s\n", strings.Join(reg.ListIntegrators(), ", "))
	fmt.Printf("motions:     %s\n", strings.Join(reg.ListMotions(), ", "))
	fmt.Printf("themes:      %s\n", strings.Join(viz.ThemeNames(), ", "))
	return nil
}

func applyTheme(name string) error {
	if !slices.Contains(viz.ThemeNames(), name) {
		return fmt.Errorf("unknown theme: %s (available: %v)", name, viz.ThemeNames())
	}
	viz.SetTheme(name)
	return nil
}
