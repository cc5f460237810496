package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/boilersim/internal/automation"
	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/export"
	"github.com/san-kum/boilersim/internal/logging"
	"github.com/san-kum/boilersim/internal/metrics"
	"github.com/san-kum/boilersim/internal/params"
	"github.com/san-kum/boilersim/internal/sim"
	"github.com/san-kum/boilersim/internal/viz"
	"github.com/san-kum/boilersim/internal/water"
)

var (
	configFile string
	preset     string
	logLevel   string
	overrides  []string
	duration   float64
	initLevel  float64
	initTemp   float64
	volumeRef  string
	// run output
	plot       bool
	exportFmt  string
	outputFile string
	// sweep
	sweepParam  string
	sweepValues []float64
	sweepMetric string
	// live
	theme string
	// montecarlo
	trials      int
	seed        int64
	levelSpread float64
	tempSpread  float64
	levelTol    float64
	tempTol     float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "boilersim",
		Short:         "boiler water level and temperature simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "override a panel value, key=value in display units (repeatable)")
	rootCmd.PersistentFlags().Float64Var(&initLevel, "level", 0, "initial water level (m)")
	rootCmd.PersistentFlags().Float64Var(&initTemp, "temperature", 0, "initial water temperature (°C)")
	rootCmd.PersistentFlags().StringVar(&volumeRef, "volume-ref", "", "density used for the level update (new, current)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration (s)")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot level and temperature")
	runCmd.Flags().StringVar(&exportFmt, "export", "", "write the trajectory as csv or json")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "export destination (default stdout)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the boiler with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per value of a parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration (s)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "heater_power_max", "parameter key to vary")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "values to try, in display units")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "temperature_rms_error", "metric to minimise")
	_ = sweepCmd.MarkFlagRequired("values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLEVEL\tTEMP\tTARGET LEVEL\tTARGET TEMP\tOUTFLOW\tDURATION")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.2f m\t%.1f °C\t%.2f m\t%.1f °C\t%.2f l/s\t%.0f s\n",
					name, c.Initial.Level, c.Initial.Temperature,
					c.Setpoints.RequiredLevel, c.Setpoints.RequiredTemperature,
					c.Setpoints.RequiredOutflow*1000, c.Duration)
			}
			return w.Flush()
		},
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "list operator parameters and their ranges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tGROUP\tUNIT\tMIN\tMAX\tSTEP\tDEFAULT")
			for _, d := range params.Catalogue() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%g\t%g\n",
					d.Key, d.Name, d.Group, d.Unit, d.Min, d.Max, d.Step, d.Default)
			}
			return w.Flush()
		},
	}

	densityCmd := newDensityCmd()

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "replay a scripted sequence of operator actions",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration (s)")
	scenarioCmd.Flags().BoolVar(&plot, "plot", false, "plot level and temperature")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run trials from perturbed initial states",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration (s)")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	monteCarloCmd.Flags().Float64Var(&levelSpread, "level-spread", 0.1, "initial level perturbation (m)")
	monteCarloCmd.Flags().Float64Var(&tempSpread, "temp-spread", 5, "initial temperature perturbation (°C)")
	monteCarloCmd.Flags().Float64Var(&levelTol, "level-tol", 0.05, "settled level tolerance (m)")
	monteCarloCmd.Flags().Float64Var(&tempTol, "temp-tol", 1, "settled temperature tolerance (°C)")

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, scenarioCmd, monteCarloCmd, presetsCmd, paramsCmd, densityCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, preset, config file, environment and flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("level") {
		cfg.Initial.Level = initLevel
	}
	if flags.Changed("temperature") {
		cfg.Initial.Temperature = initTemp
	}
	if flags.Changed("volume-ref") {
		cfg.VolumeReference = volumeRef
	}

	if len(overrides) > 0 {
		panel, err := applyOverrides(params.Panel{Parameters: cfg.Parameters, Setpoints: cfg.Setpoints}, overrides)
		if err != nil {
			return nil, err
		}
		cfg.Parameters, cfg.Setpoints = panel.Parameters, panel.Setpoints
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyOverrides sets key=value pairs on the panel. Values outside a
// parameter's range are rejected.
func applyOverrides(panel params.Panel, kvs []string) (params.Panel, error) {
	for _, kv := range kvs {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return panel, fmt.Errorf("--set %q: expected key=value", kv)
		}
		d, err := params.Lookup(strings.TrimSpace(key))
		if err != nil {
			return panel, fmt.Errorf("--set: %w (see 'boilersim params')", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return panel, fmt.Errorf("--set %s: %w", d.Key, err)
		}
		if !d.Contains(v) {
			return panel, fmt.Errorf("--set %s: %g outside [%g, %g] %s", d.Key, v, d.Min, d.Max, d.Unit)
		}
		panel, err = panel.Set(d.Key, v)
		if err != nil {
			return panel, err
		}
	}
	return panel, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel, os.Stderr)
}

func newSession(cfg *config.Config, logger *slog.Logger) (*sim.Session, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	for _, v := range (params.Panel{Parameters: cfg.Parameters, Setpoints: cfg.Setpoints}).Check() {
		logger.Warn("value outside operator range",
			"param", v.Descriptor.Key, "value", v.Value,
			"min", v.Descriptor.Min, "max", v.Descriptor.Max)
	}
	return sim.NewSession(cfg.Parameters, cfg.Setpoints,
		sim.WithLogger(logger), sim.WithEngineOptions(opts...))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	var format export.Format
	if exportFmt != "" {
		if format, err = export.ParseFormat(exportFmt); err != nil {
			return err
		}
	}

	session, err := newSession(cfg, logger)
	if err != nil {
		return err
	}

	runner := sim.NewRunner(session)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCfg := cfg.RunConfig()
	logger.Info("starting run", "preset", preset, "dt", runCfg.Dt, "duration", runCfg.Duration, "steps", runCfg.Steps())

	result, err := runner.Run(ctx, runCfg)
	if err != nil {
		if result == nil {
			return err
		}
		logger.Error("run stopped early", "steps", result.StepsTaken, "err", err)
	}

	if format != "" {
		report := export.NewReport(preset, runCfg, cfg.Parameters, cfg.Setpoints, result)
		if err := writeReport(cmd.OutOrStdout(), format, report); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		logger.Info("exported run", "id", report.ID, "format", format, "output", outputOrStdout())
		if outputFile == "" {
			return err
		}
	}

	printSummary(cmd.OutOrStdout(), result)

	if plot {
		plotResult(cmd.OutOrStdout(), result)
	}

	return err
}

func plotResult(out io.Writer, result *sim.Result) {
	if len(result.Samples) < 2 {
		return
	}
	for _, series := range []struct {
		caption string
		f       func(sim.Sample) float64
	}{
		{"level (m)", func(s sim.Sample) float64 { return s.State.Level }},
		{"temperature (°C)", func(s sim.Sample) float64 { return s.State.Temperature }},
		{"heater (kW)", func(s sim.Sample) float64 { return s.State.Power / 1000 }},
	} {
		graph := asciigraph.Plot(result.Series(series.f),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
}

func outputOrStdout() string {
	if outputFile == "" {
		return "stdout"
	}
	return outputFile
}

func writeReport(stdout io.Writer, format export.Format, report *export.Report) error {
	if outputFile == "" {
		return export.Write(stdout, format, report)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	if err := export.Write(f, format, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(out io.Writer, result *sim.Result) {
	final := result.Final()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	fmt.Fprintf(w, "elapsed\t%.0f s\n", final.State.Elapsed)
	fmt.Fprintf(w, "level\t%.2f m\n", params.Round2(final.State.Level))
	fmt.Fprintf(w, "temperature\t%.2f °C\n", params.Round2(final.State.Temperature))
	fmt.Fprintf(w, "inflow\t%.2f l/s\n", params.Round2(final.State.Inflow*1000))
	fmt.Fprintf(w, "outflow\t%.2f l/s\n", params.Round2(final.State.Outflow*1000))
	fmt.Fprintf(w, "heater\t%.2f kW\n", params.Round2(final.State.Power/1000))

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.4f\n", name, result.Metrics[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(liveLogLevel(cfg.LogLevel), os.Stderr)

	session, err := newSession(cfg, logger)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(session, cfg.Pacing, viz.WithLogger(logger), viz.WithTheme(theme))
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// liveLogLevel keeps the terminal for the view: only errors reach stderr
// unless debug logging was asked for.
func liveLogLevel(level string) string {
	if logging.ParseLevel(level) <= slog.LevelDebug {
		return "debug"
	}
	return "error"
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	base := params.Panel{Parameters: cfg.Parameters, Setpoints: cfg.Setpoints}
	variants, err := sim.VaryPanel(base, sweepParam, sweepValues)
	if err != nil {
		return err
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCfg := cfg.RunConfig()
	logger.Info("starting sweep", "param", sweepParam, "variants", len(variants), "steps", runCfg.Steps())

	results, err := sim.Sweep(ctx, variants, runCfg, metrics.Defaults,
		sim.WithLogger(logger), sim.WithEngineOptions(opts...))
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	names := make([]string, 0)
	for _, m := range metrics.Defaults() {
		names = append(names, m.Name())
	}

	best, ok := sim.Best(results, sweepMetric)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "VARIANT\tLEVEL\tTEMP\t%s\t\n", strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		final := r.Result.Final()
		fmt.Fprintf(w, "%s\t%.2f\t%.2f", r.Variant.Label,
			params.Round2(final.State.Level), params.Round2(final.State.Temperature))
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", r.Result.Metrics[name])
		}
		mark := ""
		if ok && r.Variant.Label == best.Variant.Label {
			mark = "*"
		}
		fmt.Fprintf(w, "\t%s\n", mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "\nbest by %s: %s\n", sweepMetric, best.Variant.Label)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\nno results carry metric %q\n", sweepMetric)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	session, err := newSession(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting scenario", "name", scenario.Name, "steps", len(scenario.Steps))
	result, err := automation.RunScenario(ctx, session, scenario, cfg.RunConfig(), metrics.Defaults(), logger)
	if result == nil {
		return err
	}
	if err != nil {
		logger.Error("scenario stopped early", "steps", result.StepsTaken, "err", err)
	}

	printSummary(cmd.OutOrStdout(), result)
	if plot {
		plotResult(cmd.OutOrStdout(), result)
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mc := &automation.MonteCarloConfig{
		Parameters:     cfg.Parameters,
		Setpoints:      cfg.Setpoints,
		BaseLevel:      cfg.Initial.Level,
		BaseTemp:       cfg.Initial.Temperature,
		LevelSpread:    levelSpread,
		TempSpread:     tempSpread,
		NumTrials:      trials,
		Run:            cfg.RunConfig(),
		Seed:           seed,
		LevelTolerance: levelTol,
		TempTolerance:  tempTol,
		EngineOptions:  opts,
		Logger:         logger,
	}
	logger.Info("starting monte carlo", "trials", trials, "seed", seed)

	results, err := automation.RunMonteCarlo(ctx, mc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tINIT LEVEL\tINIT TEMP\tLEVEL\tTEMP\tSETTLED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%v\n", r.TrialID,
			params.Round2(r.InitLevel), params.Round2(r.InitTemp),
			params.Round2(r.Final.Level), params.Round2(r.Final.Temperature), r.Settled)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nsettled: %.0f%%\n", automation.SettledFraction(results)*100)
	return nil
}

// newDensityCmd takes raw arguments so negative temperatures reach the
// density lookup instead of the flag parser.
func newDensityCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "density [celsius...]",
		Short:              "show the water density table or look up temperatures",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				if a == "-h" || a == "--help" {
					return cmd.Help()
				}
			}
			return runDensity(cmd, args)
		},
	}
}

func runDensity(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if len(args) == 0 {
		fmt.Fprintln(w, "BELOW (°C)\tDENSITY (kg/m3)")
		for _, bp := range water.Breakpoints() {
			fmt.Fprintf(w, "%g\t%g\n", bp.UpTo, bp.Density)
		}
		fmt.Fprintf(w, "above\t%g\n", water.AboveLast)
		return w.Flush()
	}

	fmt.Fprintln(w, "TEMP (°C)\tDENSITY (kg/m3)")
	for _, a := range args {
		c, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q: %w", a, err)
		}
		rho, err := water.Density(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%g\t%g\n", c, rho)
	}
	return w.Flush()
}
