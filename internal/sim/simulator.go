package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sched"
)

// Runner drives a particle system headlessly, one frame per manual tick.
type Runner struct {
	metrics   []Metric
	observers []Observer
	surface   particle.SurfaceFunc
	log       *slog.Logger
}

func New() *Runner {
	return &Runner{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       slog.Default(),
	}
}

func (s *Runner) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Runner) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetSurface replaces the raster surface, e.g. with a no-op canvas for
// benchmarks.
func (s *Runner) SetSurface(fn particle.SurfaceFunc) { s.surface = fn }

func (s *Runner) SetLogger(l *slog.Logger) { s.log = l }

// DefaultMetrics returns a fresh instance of every built-in metric.
func DefaultMetrics() []Metric {
	return []Metric{
		metrics.NewSettledFraction(),
		metrics.NewMeanIntensity(),
		metrics.NewMeanSpeed(),
		metrics.NewBoundaryContacts(),
	}
}

func (s *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Pattern: cfg.Pattern.Normalize(),
		Seed:    cfg.Seed,
		Metrics: make(map[string]float64),
		Series:  make(map[string][]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, cfg.Frames)
	}

	opts := []particle.Option{
		particle.WithSeed(cfg.Seed),
		particle.WithParams(cfg.Params),
		particle.WithStyle(cfg.Style),
		particle.WithLogger(s.log),
		particle.WithFrameHook(func(r *particle.Run) {
			for _, m := range s.metrics {
				m.Observe(r)
				result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
			}
			for _, obs := range s.observers {
				obs.OnFrame(r)
			}
		}),
	}
	if s.surface != nil {
		opts = append(opts, particle.WithSurface(s.surface))
	}

	clock := sched.NewManual()
	sys := particle.NewSystem(clock, opts...)
	run, err := sys.Start(cfg.Dims, cfg.Pattern)
	if err != nil {
		return nil, err
	}
	defer sys.Stop()

	result.RunID = run.ID()
	result.Particles = run.Len()

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}
		clock.Tick()
		result.Frames++
	}

	s.collect(result)
	return result, nil
}

func (s *Runner) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if !cfg.Dims.Valid() {
		return fmt.Errorf("%w: viewport %s", particle.ErrNoSurface, cfg.Dims)
	}
	if cfg.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	return nil
}
