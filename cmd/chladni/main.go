package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chladni/internal/analysis"
	"github.com/san-kum/chladni/internal/automation"
	"github.com/san-kum/chladni/internal/config"
	"github.com/san-kum/chladni/internal/export"
	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/gui"
	"github.com/san-kum/chladni/internal/host"
	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/optim"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/render"
	"github.com/san-kum/chladni/internal/sched"
	"github.com/san-kum/chladni/internal/sim"
	"github.com/san-kum/chladni/internal/storage"
	"github.com/san-kum/chladni/internal/telemetry"
	"github.com/san-kum/chladni/internal/viz"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	logFile    string

	width   int
	height  int
	preset  string
	pattern int
	seed    int64
	fps     int
	frames  int

	outPath      string
	format       string
	realtime     bool
	gifEvery     int
	runs         int
	save         bool
	telemetryDir string
	sampleEvery  int
	benchFrames  int
	topPattern   string
	topLimit     int
	scenario     string
	sweepParams  []string
	sweepMetric  string
	minimize     bool
)

// main registers the commands and runs the terminal view when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "chladni",
		Short: "chladni-pattern particle background",
		RunE:  runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".chladni", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.IntVar(&width, "width", config.DefaultWidth, "viewport width in pixels")
	pf.IntVar(&height, "height", config.DefaultHeight, "viewport height in pixels")
	pf.StringVar(&preset, "preset", "", "viewport preset (see presets)")
	pf.IntVarP(&pattern, "pattern", "p", 0, "pattern index (wrapped mod 5)")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "show the background in the terminal",
		RunE:  runTUI,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "show the background in a window",
		RunE:  runGUI,
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render frames to png, gif or svg",
		RunE:  runRender,
	}
	renderCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default chladni.<format>)")
	renderCmd.Flags().StringVarP(&format, "format", "f", "png", "output format: png, gif or svg")
	renderCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames with a wall-clock ticker")
	renderCmd.Flags().IntVar(&gifEvery, "every", 2, "record every nth frame (gif)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "run headless and report convergence metrics",
		RunE:  runStats,
	}
	statsCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	statsCmd.Flags().IntVar(&runs, "runs", 1, "ensemble size (consecutive seeds)")
	statsCmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")
	statsCmd.Flags().StringVar(&telemetryDir, "telemetry", "", "write telemetry.csv and config.yaml to this directory")
	statsCmd.Flags().IntVar(&sampleEvery, "every", 10, "telemetry sample interval in frames")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure frames per second for every pattern",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 300, "frames per pattern")

	tourCmd := &cobra.Command{
		Use:   "tour",
		Short: "play a scripted visit through the sections into a gif",
		RunE:  runTour,
	}
	tourCmd.Flags().StringVar(&scenario, "scenario", "", "scenario file (yaml); default swipes through every section")
	tourCmd.Flags().StringVarP(&outPath, "out", "o", "", "output gif (default tour.gif)")
	tourCmd.Flags().IntVar(&gifEvery, "every", 2, "record every nth frame")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-search physics constants against a metric",
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per trial")
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", metrics.NameSettled, "metric to optimize")
	sweepCmd.Flags().BoolVar(&minimize, "minimize", false, "minimize instead of maximize")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "inspect saved runs",
	}
	runsCmd.AddCommand(
		&cobra.Command{Use: "list", Short: "list saved runs", RunE: listRuns},
		&cobra.Command{Use: "plot [run_id]", Short: "plot a saved run", Args: cobra.ExactArgs(1), RunE: plotRun},
	)
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "convergence and spectrum of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	topCmd := &cobra.Command{
		Use:   "top",
		Short: "best-settling saved runs",
		RunE:  topRuns,
	}
	topCmd.Flags().StringVar(&topPattern, "pattern-name", "", "only runs of this pattern (e.g. cross)")
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 10, "number of runs")
	runsCmd.AddCommand(analyzeCmd, exportCmd, topCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list viewport presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(tuiCmd, guiCmd, renderCmd, tourCmd, statsCmd, benchCmd, sweepCmd, runsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, a preset and explicitly set
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		vp := config.GetPreset(preset)
		if vp == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Viewport = *vp
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Viewport.Width = width
	}
	if flags.Changed("height") {
		cfg.Viewport.Height = height
	}
	if flags.Changed("pattern") {
		cfg.Pattern = pattern
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Lookup("frames") != nil && flags.Changed("frames") {
		cfg.Frames = frames
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs the default slog logger. The returned closer
// releases the log file, if any.
func setupLogging(fallback io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	w, closer := fallback, func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func newSystem(cfg *config.Config, s sched.Scheduler, log *slog.Logger, opts ...particle.Option) *particle.System {
	base := []particle.Option{
		particle.WithSeed(cfg.Seed),
		particle.WithParams(cfg.Params()),
		particle.WithStyle(cfg.ParticleStyle()),
		particle.WithLogger(log),
	}
	return particle.NewSystem(s, append(base, opts...)...)
}

func layerFor(cfg *config.Config) render.Layer {
	l := render.DefaultLayer()
	l.Contrast = cfg.Style.Contrast
	l.Opacity = cfg.Style.Opacity
	return l
}

func fadeIn(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Style.FadeIn * float64(time.Second))
}

// outputDir is where screenshots and telemetry land: --data when given,
// then output.dir from the config file.
func outputDir(cmd *cobra.Command, cfg *config.Config) string {
	if cfg.Output.Dir != "" && !cmd.Flags().Changed("data") {
		return cfg.Output.Dir
	}
	return dataDir
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// the terminal belongs to bubbletea; logs go to a file or nowhere
	log, closeLog, err := setupLogging(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	out := outputDir(cmd, cfg)
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}

	clock := sched.NewManual()
	sys := newSystem(cfg, clock, log)
	m := viz.NewModel(sys, clock, viz.Options{
		FPS:     cfg.FPS,
		Section: int(cfg.PatternIndex().Normalize()),
		FadeIn:  fadeIn(cfg),
		Layer:   layerFor(cfg),
		OutDir:  out,
		Logger:  log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	out := outputDir(cmd, cfg)
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}

	clock := sched.NewManual()
	sys := newSystem(cfg, clock, log)
	return gui.Run(sys, clock, gui.Options{
		Width:   cfg.Viewport.Width,
		Height:  cfg.Viewport.Height,
		FPS:     cfg.FPS,
		Section: int(cfg.PatternIndex().Normalize()),
		FadeIn:  fadeIn(cfg),
		Layer:   layerFor(cfg),
		OutDir:  out,
		Logger:  log,
	})
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dims:    cfg.Dimensions(),
		Pattern: cfg.PatternIndex(),
		Frames:  cfg.Frames,
		Seed:    cfg.Seed,
		Params:  cfg.Params(),
		Style:   cfg.ParticleStyle(),
	}
}

// capture follows a headless render: it composites frames into a GIF and
// signals once the last frame has been drawn.
type capture struct {
	layer  render.Layer
	fade   *render.Fade
	gif    *export.GIFRecorder
	every  int
	frames int

	frame *image.RGBA
	done  chan struct{}
	once  sync.Once
}

func newCapture(layer render.Layer, fade *render.Fade, gif *export.GIFRecorder, every, frames int) *capture {
	if every < 1 {
		every = 1
	}
	return &capture{
		layer:  layer,
		fade:   fade,
		gif:    gif,
		every:  every,
		frames: frames,
		done:   make(chan struct{}),
	}
}

// OnFrame runs under the system's frame lock.
func (c *capture) OnFrame(r *particle.Run) {
	c.fade.Step()
	if c.gif != nil && (r.T()-1)%c.every == 0 {
		if img := c.composite(r); img != nil {
			c.gif.Add(img)
		}
	}
	if r.T() >= c.frames {
		c.once.Do(func() { close(c.done) })
	}
}

func (c *capture) composite(r *particle.Run) *image.RGBA {
	surf, ok := r.Canvas().(*render.Surface)
	if !ok {
		return nil
	}
	src := surf.Image()
	if c.frame == nil || c.frame.Bounds() != src.Bounds() {
		c.frame = image.NewRGBA(src.Bounds())
	}
	c.layer.Composite(c.frame, src, c.fade.Value())
	return c.frame
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	format = strings.ToLower(format)
	switch format {
	case "png", "gif", "svg":
	default:
		return fmt.Errorf("unknown format: %s (available: png, gif, svg)", format)
	}
	if cfg.Frames < 1 {
		return fmt.Errorf("render needs at least one frame")
	}
	out := outPath
	if out == "" {
		out = "chladni." + format
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var rec *export.GIFRecorder
	if format == "gif" {
		n := max(1, gifEvery)
		rec = export.NewGIFRecorder(cfg.FPS/n, 480, cfg.Frames/n+1)
	}
	cp := newCapture(layerFor(cfg), render.NewFade(cfg.FPS, fadeIn(cfg)), rec, gifEvery, cfg.Frames)

	manual := sched.NewManual()
	var clock sched.Scheduler = manual
	if realtime {
		clock = sched.NewTicker(cfg.FPS)
	}

	sys := newSystem(cfg, clock, log, particle.WithFrameHook(cp.OnFrame))
	run, err := sys.Start(cfg.Dimensions(), cfg.PatternIndex())
	if err != nil {
		return err
	}
	defer sys.Stop()

	fmt.Printf("rendering %s: %s, %d particles, %d frames\n",
		run.Pattern(), run.Dims(), run.Len(), cfg.Frames)
	start := time.Now()

	if realtime {
		select {
		case <-cp.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		for i := 0; i < cfg.Frames; i++ {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			manual.Tick()
		}
	}

	if snap, ok := sys.Snapshot(); ok {
		settled := 0
		for _, p := range snap.Particles {
			if p.Settled {
				settled++
			}
		}
		fmt.Printf("frame %d: %s of %s particles settled\n",
			snap.T, humanize.Comma(int64(settled)), humanize.Comma(int64(len(snap.Particles))))
	}

	var saveErr error
	sys.View(func(r *particle.Run) {
		switch format {
		case "png":
			img := cp.composite(r)
			if img == nil {
				saveErr = render.ErrNoSurface
				return
			}
			saveErr = export.SavePNG(out, img)
		case "svg":
			saveErr = os.WriteFile(out, []byte(export.RunToSVG(r, sys.Style(), sys.Params().FadeFrames)), 0644)
		case "gif":
			saveErr = rec.Save(out)
		}
	})
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("saved: %s\n", out)
	return nil
}

func runTour(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	sc := automation.DefaultTour(cfg.Viewport.Width, cfg.Viewport.Height, 2*cfg.FPS)
	if scenario != "" {
		if sc, err = automation.LoadScenario(scenario); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := max(1, gifEvery)
	rec := export.NewGIFRecorder(cfg.FPS/n, 480, sc.Frames()/n+1)
	fade := render.NewFade(cfg.FPS, fadeIn(cfg))
	cp := newCapture(layerFor(cfg), fade, rec, n, sc.Frames())

	clock := sched.NewManual()
	sys := newSystem(cfg, clock, log, particle.WithFrameHook(cp.OnFrame))
	h := host.New(sys, log)
	defer h.Close()

	fmt.Printf("touring %s: %d steps, %d frames\n", sc.Name, len(sc.Steps), sc.Frames())
	var lastRun string
	ran, err := automation.RunScenario(ctx, sc, h, clock, func(i int, s automation.Step, h *host.Host) {
		if r := h.Run(); r != nil && r.ID() != lastRun {
			lastRun = r.ID()
			fade.Reset()
		}
		fmt.Printf("  %2d  %-16s %s  %s\n", i+1, s, h.Label(), host.Dots(h.Section()))
	})
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = "tour.gif"
	}
	if err := rec.Save(out); err != nil {
		return err
	}
	fmt.Printf("saved: %s (%d frames, %d recorded)\n", out, ran, rec.Len())
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scfg := simConfig(cfg)

	if runs > 1 {
		return runEnsemble(ctx, scfg, log)
	}

	runner := sim.New()
	runner.SetLogger(log)
	runner.SetSurface(particle.DiscardSurface)
	for _, m := range sim.DefaultMetrics() {
		runner.AddMetric(m)
	}

	dir := telemetryDir
	if dir == "" && cfg.Output.Telemetry {
		dir = outputDir(cmd, cfg)
	}
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		return err
	}
	defer om.Close()
	var recorder *telemetry.Recorder
	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			return err
		}
		recorder = telemetry.NewRecorder(om, sampleEvery)
		runner.AddObserver(recorder)
	}

	fmt.Printf("running %s at %s...\n", scfg.Pattern.Normalize(), scfg.Dims)
	start := time.Now()
	result, err := runner.Run(ctx, scfg)
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", result.RunID)
	fmt.Printf("particles: %s\n", humanize.Comma(int64(result.Particles)))
	fmt.Printf("frames: %d\n\n", result.Frames)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tFINAL")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(w, "%s\t%.4f\n", name, result.Metrics[name])
	}
	w.Flush()
	fmt.Println()

	if series := result.Series[metrics.NameSettled]; len(series) > 1 {
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("settled fraction vs frame"),
		))
		fmt.Println()
		printSettle(series, cfg.FPS)
	}

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		fmt.Printf("telemetry: %d rows in %s\n", recorder.Written(), om.Dir())
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(scfg, result)
		if err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}
		if err := indexRun(st, id); err != nil {
			log.Warn("index update failed", "run", id, "err", err)
		}
		fmt.Printf("saved: %s\n", id)
	}

	// an interrupted run still reports what it measured
	return err
}

func runEnsemble(ctx context.Context, scfg sim.Config, log *slog.Logger) error {
	newRunner := func() *sim.Runner {
		r := sim.New()
		r.SetLogger(log)
		r.SetSurface(particle.DiscardSurface)
		for _, m := range sim.DefaultMetrics() {
			r.AddMetric(m)
		}
		return r
	}

	fmt.Printf("running %d seeds of %s at %s...\n", runs, scfg.Pattern.Normalize(), scfg.Dims)
	start := time.Now()
	results, err := sim.NewEnsemble(newRunner, runs, scfg.Seed).Run(ctx, scfg)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, s := range sim.Summarize(results) {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scfg := simConfig(cfg)
	scfg.Frames = benchFrames
	fmt.Printf("benchmarking %s, %d frames per pattern\n\n", scfg.Dims, scfg.Frames)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tMODE\tPARTICLES\tTIME\tFPS")

	for p := field.Pattern(0); p < field.Count; p++ {
		for _, raster := range []bool{false, true} {
			runner := sim.New()
			runner.SetLogger(log)
			mode := "raster"
			if !raster {
				runner.SetSurface(particle.DiscardSurface)
				mode = "physics"
			}

			c := scfg
			c.Pattern = p
			start := time.Now()
			result, err := runner.Run(ctx, c)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fps := float64(result.Frames) / elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n",
				p.Name(), mode,
				humanize.Comma(int64(result.Particles)),
				elapsed.Round(time.Millisecond),
				humanize.Commaf(float64(int64(fps))),
			)
		}
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	if len(sweepParams) == 0 {
		return fmt.Errorf("no parameters to sweep (use --param name=v1,v2; names: %s)",
			strings.Join(optim.ParamNames, ", "))
	}
	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, arg := range sweepParams {
		name, values, err := optim.ParseRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	base := simConfig(cfg)
	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		c := base
		for name, v := range params {
			if err := optim.Apply(&c.Params, name, v); err != nil {
				return 0, err
			}
		}
		runner := sim.New()
		runner.SetLogger(log)
		runner.SetSurface(particle.DiscardSurface)
		for _, m := range sim.DefaultMetrics() {
			runner.AddMetric(m)
		}
		result, err := runner.Run(ctx, c)
		if err != nil {
			return 0, err
		}
		v, ok := result.Metrics[sweepMetric]
		if !ok {
			return 0, fmt.Errorf("unknown metric: %s", sweepMetric)
		}
		return v, nil
	}

	gs := optim.NewGridSearch(names, ranges, !minimize)
	fmt.Printf("sweeping %d combinations of %s on %s at %s...\n",
		gs.Size(), strings.Join(names, ", "), base.Pattern.Normalize(), base.Dims)
	start := time.Now()
	trials, err := gs.Search(ctx, objective)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for _, tr := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", tr.Params[name])
		}
		fmt.Fprintf(w, "%.4f\n", tr.Score)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tPATTERN\tSIZE\tPARTICLES\tFRAMES\tSETTLED\tSAVED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%d\t%.3f\t%s\n",
			run.ID[:min(8, len(run.ID))],
			run.Pattern,
			run.Width, run.Height,
			humanize.Comma(int64(run.Particles)),
			run.Frames,
			run.Metrics[metrics.NameSettled],
			humanize.Time(run.Timestamp),
		)
	}

	return w.Flush()
}

func indexPath() string { return filepath.Join(dataDir, "runs.db") }

func indexRun(st *storage.Store, id string) error {
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	idx, err := storage.OpenIndex(indexPath())
	if err != nil {
		return err
	}
	defer idx.Close()
	return idx.Put(*meta)
}

func topRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	idx, err := storage.OpenIndex(indexPath())
	if err != nil {
		return err
	}
	defer idx.Close()

	if _, err := idx.Sync(st); err != nil {
		return err
	}
	entries, err := idx.Top(topPattern, topLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATTERN\tSIZE\tSEED\tFRAMES\tSETTLED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%d\t%.3f\n",
			e.ID[:min(8, len(e.ID))], e.Pattern, e.Width, e.Height, e.Seed, e.Frames, e.Settled)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("pattern: %s\n", meta.Pattern)
	fmt.Printf("frames: %d\n\n", meta.Frames)

	for _, name := range sortedKeys(series) {
		data := series[name]
		if len(data) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(name, "_", " ")),
		))
		fmt.Println()
	}

	return nil
}

// printSettle reports when a settled-fraction series first reached 90% of
// its final level for good.
func printSettle(series []float64, rate int) {
	final := stat.Mean(analysis.Tail(series, 0.1), nil)
	if final <= 0 {
		fmt.Println("settled: never")
		return
	}
	if at := analysis.SettleFrame(series, 0.9*final); at >= 0 {
		fmt.Printf("settled: frame %d (%.1fs at %d fps)\n", at, float64(at)/float64(rate), rate)
	} else {
		fmt.Println("settled: never")
	}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}

	settled := series[metrics.NameSettled]
	if len(settled) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("convergence analysis: %s\n", meta.ID)
	fmt.Printf("pattern: %s\n\n", meta.Pattern)
	printSettle(settled, fps)

	// oscillation left once the plate has settled
	tail := analysis.Tail(settled, 0.5)
	ps := analysis.PowerSpectrum(tail)
	if len(ps) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (settled fraction, second half)"),
		))
		fmt.Println()
	}

	freq := analysis.DominantFrequency(tail, float64(fps))
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.ExportJSON(os.Stdout, meta, series)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := storage.ExportJSON(f, meta, series); err != nil {
		return err
	}
	fmt.Printf("exported: %s\n", outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	params := config.DefaultConfig().Params()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSIZE\tPROFILE\tPARTICLES")
	for _, name := range config.ListPresets() {
		vp := config.Presets[name]
		dims := particle.Dimensions{Width: vp.Width, Height: vp.Height}
		profile := params.ProfileFor(dims.Width)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, dims, profile.Name, humanize.Comma(int64(profile.Count(dims))))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for i := 0; i < host.Sections; i++ {
		p := field.Pattern(i)
		fmt.Printf("  %s  %-8s %-12s %s\n", host.FreqLabel(i), host.SectionName(i), p.Name(), p.Mode())
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
