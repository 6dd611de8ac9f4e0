package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chladni/internal/host"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sched"
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario scripts a visit to the page: navigation and resize events
// interleaved with frames.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Viewport    Size   `yaml:"viewport"`
	Steps       []Step `yaml:"steps"`
}

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Gesture struct {
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
}

// Step applies at most one event and then runs Frames frames.
type Step struct {
	Section *int     `yaml:"section,omitempty"`
	Scroll  *float64 `yaml:"scroll,omitempty"`
	Swipe   *Gesture `yaml:"swipe,omitempty"`
	Resize  *Size    `yaml:"resize,omitempty"`
	Frames  int      `yaml:"frames"`
}

func (s Step) events() int {
	n := 0
	if s.Section != nil {
		n++
	}
	if s.Scroll != nil {
		n++
	}
	if s.Swipe != nil {
		n++
	}
	if s.Resize != nil {
		n++
	}
	return n
}

func (s Step) String() string {
	switch {
	case s.Section != nil:
		return fmt.Sprintf("section %d", *s.Section)
	case s.Scroll != nil:
		return fmt.Sprintf("scroll %.0f", *s.Scroll)
	case s.Swipe != nil:
		return fmt.Sprintf("swipe %.0f,%.0f", s.Swipe.DX, s.Swipe.DY)
	case s.Resize != nil:
		return fmt.Sprintf("resize %dx%d", s.Resize.Width, s.Resize.Height)
	}
	return "wait"
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if sc.Viewport.Width <= 0 || sc.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidScenario, sc.Viewport.Width, sc.Viewport.Height)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, s := range sc.Steps {
		if s.events() > 1 {
			return fmt.Errorf("%w: step %d has more than one event", ErrInvalidScenario, i+1)
		}
		if s.Frames < 0 {
			return fmt.Errorf("%w: step %d frames %d", ErrInvalidScenario, i+1, s.Frames)
		}
	}
	return nil
}

// Frames is the total number of frames the scenario runs.
func (sc *Scenario) Frames() int {
	n := 0
	for _, s := range sc.Steps {
		n += s.Frames
	}
	return n
}

// StepFunc is called before each step's frames run.
type StepFunc func(i int, s Step, h *host.Host)

// RunScenario drives h through every step, ticking clock once per frame.
// The host's system must be scheduled on clock. It returns the number of
// frames run, which is less than Frames() when ctx is canceled.
func RunScenario(ctx context.Context, sc *Scenario, h *host.Host, clock *sched.Manual, onStep StepFunc) (int, error) {
	if err := h.SetViewport(particle.Dimensions{Width: sc.Viewport.Width, Height: sc.Viewport.Height}); err != nil {
		return 0, err
	}

	frames := 0
	for i, s := range sc.Steps {
		if err := apply(h, s); err != nil {
			return frames, fmt.Errorf("step %d (%s): %w", i+1, s, err)
		}
		if onStep != nil {
			onStep(i, s, h)
		}
		for f := 0; f < s.Frames; f++ {
			if err := ctx.Err(); err != nil {
				return frames, err
			}
			clock.Tick()
			frames++
		}
	}
	return frames, nil
}

func apply(h *host.Host, s Step) error {
	switch {
	case s.Section != nil:
		return h.SetSection(*s.Section)
	case s.Scroll != nil:
		return h.Scroll(*s.Scroll)
	case s.Swipe != nil:
		return h.Swipe(s.Swipe.DX, s.Swipe.DY)
	case s.Resize != nil:
		return h.SetViewport(particle.Dimensions{Width: s.Resize.Width, Height: s.Resize.Height})
	}
	return nil
}

// DefaultTour visits every section by swiping, with one resize on the way.
func DefaultTour(width, height, framesPerSection int) *Scenario {
	sc := &Scenario{
		Name:     "tour",
		Viewport: Size{Width: width, Height: height},
	}
	sc.Steps = append(sc.Steps, Step{Frames: framesPerSection})
	for i := 1; i < host.Sections; i++ {
		sc.Steps = append(sc.Steps, Step{Swipe: &Gesture{DX: 2 * host.SwipeThreshold}, Frames: framesPerSection})
	}
	return sc
}
