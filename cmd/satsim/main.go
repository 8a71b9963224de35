package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/satsim/internal/config"
	"github.com/san-kum/satsim/internal/console"
	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/export"
	"github.com/san-kum/satsim/internal/forecast"
	"github.com/san-kum/satsim/internal/integrators"
	"github.com/san-kum/satsim/internal/logging"
	"github.com/san-kum/satsim/internal/metrics"
	"github.com/san-kum/satsim/internal/sim"
	"github.com/san-kum/satsim/internal/storage"
	"github.com/san-kum/satsim/internal/telemetry"
	"github.com/san-kum/satsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	preset   string
	// Scenario overrides
	horizon   int
	mode      string
	stepScale float64
	interval  time.Duration
	// Headless run
	ticks       int
	metricsAddr string
	// Frame rate for live view
	frameRate int
	save      bool
	pair      string
	svgPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "satsim",
		Short: "satellite kinematics and collision forecasting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".satsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	consoleCmd := &cobra.Command{
		Use:   "console",
		Short: "interactive prediction session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := console.Run(os.Stdin, os.Stdout)
			return err
		},
	}

	predictCmd := &cobra.Command{
		Use:   "predict [scenario.yaml]",
		Short: "forecast collisions over a horizon",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPredict,
	}
	predictCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	predictCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "future time steps")
	predictCmd.Flags().StringVar(&mode, "mode", config.DefaultMode, "scan-all or first")
	predictCmd.Flags().Float64Var(&stepScale, "step-scale", config.DefaultStepScale, "fraction of velocity applied per step")
	predictCmd.Flags().BoolVar(&save, "save", false, "store the report")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run the live loop headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "stop after n ticks (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&interval, "interval", config.DefaultTickMs*time.Millisecond, "tick interval")
	runCmd.Flags().Float64Var(&stepScale, "step-scale", config.DefaultStepScale, "fraction of velocity applied per step")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	liveCmd := &cobra.Command{
		Use:   "live [scenario.yaml]",
		Short: "run the live loop with visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().DurationVar(&interval, "interval", config.DefaultTickMs*time.Millisecond, "tick interval")
	liveCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "forecast horizon for 'p'")
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tHORIZON\tSTEP")
			for _, name := range config.ListPresets() {
				sc := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%g\n", name, len(sc.Bodies), sc.Horizon, sc.StepScale)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored forecasts",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot pair separation of a stored forecast",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pair, "pair", "", "body ids as a,b (default: closest pair)")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the body tracks to an SVG file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored forecast as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	rootCmd.AddCommand(consoleCmd, predictCmd, runCmd, liveCmd, presetsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPredict(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	bodies, err := sc.Build()
	if err != nil {
		return err
	}
	m, err := forecast.ParseMode(sc.Mode)
	if err != nil {
		return err
	}

	f := forecast.New(integrators.NewEuler(sc.StepScale))
	report := f.Predict(bodies, sc.Horizon, m)

	fmt.Printf("scenario: %s (%d bodies, %d steps, %s)\n", sc.Name, len(bodies), sc.Horizon, m)
	for _, ev := range report.Events {
		fmt.Printf("  step %4d  %s <-> %s  distance %.3f\n", ev.Step, ev.A, ev.B, ev.Distance)
	}
	fmt.Println(report.Summary())

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(sc, report)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	bodies, err := sc.Build()
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, logLevel)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector, err := telemetry.NewCollector(reg)
	if err != nil {
		return err
	}

	events := 0
	s := sim.New(integrators.NewEuler(sc.StepScale),
		sim.WithLogger(logger),
		sim.WithSink(logging.NewEventSink(logger)),
		sim.WithSink(collector),
		sim.WithSink(sim.SinkFunc(func(ev dynamo.Event) { events++ })),
		sim.WithMetric(metrics.NewMinSeparation()),
		sim.WithMetric(metrics.NewContactRatio()),
		sim.WithMetric(collector.Metric()),
	)
	for _, b := range bodies {
		if err := s.Add(b); err != nil {
			return err
		}
	}

	if metricsAddr != "" {
		defer serveMetrics(metricsAddr, collector, logger)()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := s.Run(ctx, sim.Config{Interval: sc.TickInterval(), MaxTicks: ticks}); err != nil {
		return err
	}

	snap := s.Snapshot()
	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("ticks: %d\n", snap.Tick)
	fmt.Printf("collision events: %d\n", events)

	fmt.Println("\nmetrics:")
	values := s.Metrics()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	bodies, err := sc.Build()
	if err != nil {
		return err
	}
	// The terminal belongs to the view; log nowhere.
	logger, err := logging.New(io.Discard, logLevel)
	if err != nil {
		return err
	}
	collector, err := telemetry.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	sink := sim.NewChanSink(256)
	s := sim.New(integrators.NewEuler(sc.StepScale),
		sim.WithLogger(logger),
		sim.WithSink(sink),
		sim.WithSink(collector),
		sim.WithMetric(collector.Metric()),
	)
	for _, b := range bodies {
		if err := s.Add(b); err != nil {
			return err
		}
	}

	if metricsAddr != "" {
		defer serveMetrics(metricsAddr, collector, logger)()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, sim.Config{Interval: sc.TickInterval()})
	}()

	p := tea.NewProgram(newLiveModel(s, sc, sink, collector), tea.WithAltScreen())
	_, uiErr := p.Run()

	s.Stop()
	return errors.Join(uiErr, <-done)
}

// newLiveModel counts every forecast asked for from the view.
func newLiveModel(s *sim.Simulator, sc *config.Scenario, sink *sim.ChanSink, collector *telemetry.Collector) viz.Model {
	return viz.NewModel(s, forecast.New(integrators.NewEuler(sc.StepScale)), viz.Options{
		Name:       sc.Name,
		Horizon:    sc.Horizon,
		FPS:        frameRate,
		Events:     sink.C,
		Stop:       s.Stop,
		OnForecast: collector.ObserveForecast,
	})
}

// serveMetrics exposes the collector at /metrics and returns a closer.
func serveMetrics(addr string, collector *telemetry.Collector, logger *log.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return func() { srv.Close() }
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tMODE\tHORIZON\tBODIES\tEVENTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Horizon,
			run.Bodies,
			run.Events,
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
	sc, err := st.LoadScenario(runID)
	if err != nil {
		return err
	}
	bodies, err := sc.Build()
	if err != nil {
		return err
	}

	f := forecast.New(integrators.NewEuler(sc.StepScale))
	i, j, err := selectPair(f, bodies, sc.Horizon, pair)
	if err != nil {
		return err
	}
	data, err := f.Separations(bodies, i, j, sc.Horizon)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("events: %d\n\n", meta.Events)

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("separation %s-%s (below 0: collision)", bodies[i].ID, bodies[j].ID)),
	)
	fmt.Println(graph)

	if svgPath == "" {
		return nil
	}
	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	out, err := os.Create(svgPath)
	if err != nil {
		return err
	}
	defer out.Close()
	tracks := export.Tracks(integrators.NewEuler(sc.StepScale), bodies, sc.Horizon)
	if err := export.TracksSVG(out, tracks, events, 800, 600); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	fmt.Printf("\ntracks written to %s\n", svgPath)
	return nil
}

// loadScenario picks the scenario file, else the preset, else "leaving",
// then applies the flags the user actually set.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var sc *config.Scenario
	switch {
	case len(args) == 1:
		loaded, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		sc = loaded
	case preset != "":
		sc = config.GetPreset(preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		sc = config.GetPreset("leaving")
	}

	flags := cmd.Flags()
	if flags.Changed("horizon") {
		sc.Horizon = horizon
	}
	if flags.Changed("mode") {
		sc.Mode = mode
	}
	if flags.Changed("step-scale") {
		sc.StepScale = stepScale
	}
	if flags.Changed("interval") {
		if interval < time.Millisecond {
			return nil, fmt.Errorf("interval must be at least 1ms, got %v", interval)
		}
		sc.TickMs = int(interval / time.Millisecond)
	}
	return sc, nil
}

func selectPair(f *forecast.Forecaster, bodies []dynamo.Body, horizon int, ids string) (int, int, error) {
	if ids == "" {
		i, j, ok := f.ClosestPair(bodies, horizon)
		if !ok {
			return 0, 0, fmt.Errorf("need at least two bodies to plot")
		}
		return i, j, nil
	}

	parts := strings.Split(ids, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid pair %q: want a,b", ids)
	}
	index := func(id string) int {
		for k, b := range bodies {
			if b.ID == strings.TrimSpace(id) {
				return k
			}
		}
		return -1
	}
	i, j := index(parts[0]), index(parts[1])
	if i < 0 || j < 0 || i == j {
		return 0, 0, fmt.Errorf("invalid pair %q", ids)
	}
	return i, j, nil
}
