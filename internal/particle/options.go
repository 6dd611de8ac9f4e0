package particle

import (
	"image/color"
	"log/slog"
	"math/rand"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/render"
)

// Canvas is the drawing surface a run renders into. *render.Surface
// satisfies it.
type Canvas interface {
	Clear()
	Fill(c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeCircle(cx, cy, r, width float64, c color.Color)
}

// SurfaceFunc acquires a canvas for a viewport.
type SurfaceFunc func(Dimensions) (Canvas, error)

// FrameHook observes a run after each completed frame.
type FrameHook func(r *Run)

// Option configures a System.
type Option func(*System)

// WithSeed makes particle placement and jitter reproducible.
func WithSeed(seed int64) Option {
	return func(s *System) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies the random source used for placement and jitter.
func WithRand(rng *rand.Rand) Option {
	return func(s *System) { s.rng = rng }
}

// WithParams replaces the physics constants and density profiles.
func WithParams(p Params) Option {
	return func(s *System) { s.params = p }
}

// WithStyle replaces the particle and overlay appearance.
func WithStyle(st Style) Option {
	return func(s *System) { s.style = st }
}

// WithLogger routes lifecycle logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *System) { s.log = l }
}

// WithSurface overrides how a run acquires its drawing canvas.
func WithSurface(fn SurfaceFunc) Option {
	return func(s *System) { s.surface = fn }
}

// WithField overrides how a pattern index maps to a field function.
func WithField(fn func(field.Pattern) field.Fn) Option {
	return func(s *System) { s.resolve = fn }
}

// WithFrameHook registers h to run after every completed frame.
func WithFrameHook(h FrameHook) Option {
	return func(s *System) { s.hooks = append(s.hooks, h) }
}

func defaultSurface(d Dimensions) (Canvas, error) {
	surf, err := render.NewSurface(d.Width, d.Height)
	if err != nil {
		return nil, err
	}
	return surf, nil
}

type discard struct{}

func (discard) Clear()                                         {}
func (discard) Fill(color.Color)                               {}
func (discard) FillCircle(_, _, _ float64, _ color.Color)       {}
func (discard) StrokeCircle(_, _, _, _ float64, _ color.Color) {}

// DiscardSurface hands out a canvas that draws nothing, for runs that only
// need particle state.
func DiscardSurface(Dimensions) (Canvas, error) { return discard{}, nil }
