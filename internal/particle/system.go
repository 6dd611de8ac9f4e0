package particle

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/sched"
	"gonum.org/v1/gonum/spatial/r2"
)

// State is the lifecycle state of a System.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// System owns the particle collection and its frame loop.
type System struct {
	mu      sync.Mutex
	sched   sched.Scheduler
	rng     *rand.Rand
	params  Params
	style   Style
	log     *slog.Logger
	surface SurfaceFunc
	resolve func(field.Pattern) field.Fn
	hooks   []FrameHook
	run     *Run
}

// NewSystem returns an idle system that schedules frames on s.
func NewSystem(s sched.Scheduler, opts ...Option) *System {
	sys := &System{
		sched:   s,
		params:  DefaultParams(),
		style:   DefaultStyle(),
		log:     slog.Default(),
		surface: defaultSurface,
		resolve: field.Func,
	}
	for _, opt := range opts {
		opt(sys)
	}
	if sys.rng == nil {
		sys.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return sys
}

func (s *System) Params() Params { return s.params }
func (s *System) Style() Style   { return s.style }

// Start discards any active run, seeds a fresh particle collection for dims
// and schedules its frames. It returns ErrNoSurface without scheduling
// anything when dims is unknown or no canvas can be acquired.
func (s *System) Start(dims Dimensions, pattern field.Pattern) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if !dims.Valid() {
		return nil, fmt.Errorf("%w: viewport %s", ErrNoSurface, dims)
	}
	canvas, err := s.surface(dims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSurface, err)
	}

	profile := s.params.ProfileFor(dims.Width)
	pattern = pattern.Normalize()
	r := &Run{
		id:        uuid.NewString(),
		sys:       s,
		pattern:   pattern,
		fn:        s.resolve(pattern),
		dims:      dims,
		profile:   profile,
		canvas:    canvas,
		particles: s.seed(profile.Count(dims)),
	}
	s.run = r
	r.handle = s.sched.Schedule(func() { s.frame(r) })

	s.log.Info("simulation started",
		"run", r.id,
		"pattern", pattern.Name(),
		"viewport", dims.String(),
		"profile", profile.Name,
		"particles", len(r.particles),
	)
	return r, nil
}

// Stop cancels the active run, if any.
func (s *System) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *System) stopLocked() {
	r := s.run
	if r == nil {
		return
	}
	s.run = nil
	r.handle.Cancel()
	s.log.Debug("simulation stopped", "run", r.id, "frames", r.t)
}

func (s *System) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return Stopped
	}
	return Running
}

// Step advances the active run by one frame on the caller's goroutine.
func (s *System) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return ErrStopped
	}
	s.advance(s.run)
	return nil
}

// View calls fn with the active run while holding the frame lock. It
// reports false when the system is stopped.
func (s *System) View(fn func(r *Run)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return false
	}
	fn(s.run)
	return true
}

// Snapshot is a copy of a run's state between frames.
type Snapshot struct {
	RunID     string
	Pattern   field.Pattern
	T         int
	Particles []Particle
}

// Snapshot copies the active run under the frame lock, so it is safe from
// any goroutine. It reports false when the system is stopped.
func (s *System) Snapshot() (Snapshot, bool) {
	var snap Snapshot
	ok := s.View(func(r *Run) {
		snap = Snapshot{RunID: r.id, Pattern: r.pattern, T: r.t, Particles: r.Particles()}
	})
	return snap, ok
}

// OnFrame registers a hook run after every frame, under the frame lock.
func (s *System) OnFrame(h FrameHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

func (s *System) frame(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != r {
		// stale callback for a discarded run
		return
	}
	s.advance(r)
}

func (s *System) advance(r *Run) {
	r.step()
	for _, h := range s.hooks {
		h(r)
	}
}

func (s *System) seed(n int) []Particle {
	ps := make([]Particle, n)
	for i := range ps {
		ps[i].Pos = r2.Vec{X: s.rng.Float64(), Y: s.rng.Float64()}
	}
	return ps
}

// Run is one seeded simulation. Its accessors do not lock; use them from
// frame hooks, System.View, or the goroutine that drives a sched.Manual.
type Run struct {
	id        string
	sys       *System
	pattern   field.Pattern
	fn        field.Fn
	dims      Dimensions
	profile   Profile
	canvas    Canvas
	particles []Particle
	t         int
	handle    sched.Handle
}

// Cancel stops the run if it is still the system's active run.
func (r *Run) Cancel() {
	r.sys.mu.Lock()
	defer r.sys.mu.Unlock()
	if r.sys.run == r {
		r.sys.stopLocked()
	}
}

func (r *Run) ID() string             { return r.id }
func (r *Run) Pattern() field.Pattern { return r.pattern }
func (r *Run) Dims() Dimensions       { return r.dims }
func (r *Run) Profile() Profile       { return r.profile }
func (r *Run) Canvas() Canvas         { return r.canvas }
func (r *Run) Len() int               { return len(r.particles) }

// T is the frame counter: the number of frames completed so far.
func (r *Run) T() int { return r.t }

// Particles returns a copy of the collection.
func (r *Run) Particles() []Particle {
	return append([]Particle(nil), r.particles...)
}

// Intensity is |f| at pos for the most recently rendered frame.
func (r *Run) Intensity(pos r2.Vec) float64 {
	t := max(r.t-1, 0)
	return math.Abs(r.fn(pos.X, pos.Y, float64(t)))
}
