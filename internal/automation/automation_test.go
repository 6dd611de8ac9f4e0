package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/chladni/internal/host"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sched"
)

const tourYAML = `
name: tour
description: swipe through the page
viewport:
  width: 200
  height: 150
steps:
  - frames: 3
  - swipe: {dx: 120, dy: 0}
    frames: 2
  - scroll: 800
    frames: 2
  - resize: {width: 120, height: 90}
    frames: 1
  - section: 4
    frames: 2
`

func newTestHost() (*host.Host, *sched.Manual, *particle.System) {
	clock := sched.NewManual()
	sys := particle.NewSystem(clock, particle.WithSeed(3), particle.WithSurface(particle.DiscardSurface))
	return host.New(sys, nil), clock, sys
}

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(tourYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc.Name != "tour" || len(sc.Steps) != 5 {
		t.Fatalf("scenario = %+v", sc)
	}
	if sc.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", sc.Frames())
	}
	if got := sc.Steps[1].String(); got != "swipe 120,0" {
		t.Errorf("step 2 = %q", got)
	}
	if got := sc.Steps[0].String(); got != "wait" {
		t.Errorf("step 1 = %q", got)
	}
}

func TestParseScenarioInvalid(t *testing.T) {
	tests := map[string]string{
		"no viewport": "steps: [{frames: 1}]",
		"no steps":    "viewport: {width: 10, height: 10}",
		"two events":  "viewport: {width: 10, height: 10}\nsteps: [{section: 1, scroll: 20, frames: 1}]",
		"neg frames":  "viewport: {width: 10, height: 10}\nsteps: [{frames: -1}]",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(data)); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("err = %v, want ErrInvalidScenario", err)
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(tourYAML))
	if err != nil {
		t.Fatal(err)
	}
	h, clock, _ := newTestHost()
	defer h.Close()

	var sections []int
	frames, err := RunScenario(context.Background(), sc, h, clock, func(i int, s Step, h *host.Host) {
		sections = append(sections, h.Section())
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if frames != 10 {
		t.Errorf("frames = %d, want 10", frames)
	}

	// scroll 800 at width 200 rounds to section 4
	want := []int{0, 1, 4, 4, 4}
	for i := range want {
		if sections[i] != want[i] {
			t.Errorf("section after step %d = %d, want %d", i+1, sections[i], want[i])
		}
	}

	if got := h.Viewport(); got != (particle.Dimensions{Width: 120, Height: 90}) {
		t.Errorf("viewport = %v", got)
	}
	// the last restart was the resize; section 4 was already active
	if r := h.Run(); r == nil || r.T() != 3 {
		t.Errorf("final run = %v", r)
	}
}

func TestRunScenarioCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sc := DefaultTour(200, 150, 5)
	h, clock, _ := newTestHost()
	defer h.Close()

	frames, err := RunScenario(ctx, sc, h, clock, func(i int, _ Step, _ *host.Host) {
		if i == 1 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if frames != 5 {
		t.Errorf("frames = %d, want 5", frames)
	}
}

func TestDefaultTour(t *testing.T) {
	sc := DefaultTour(320, 240, 10)
	if err := sc.Validate(); err != nil {
		t.Fatal(err)
	}
	if sc.Frames() != host.Sections*10 {
		t.Errorf("Frames() = %d", sc.Frames())
	}

	h, clock, _ := newTestHost()
	defer h.Close()
	if _, err := RunScenario(context.Background(), sc, h, clock, nil); err != nil {
		t.Fatal(err)
	}
	if h.Section() != host.Sections-1 {
		t.Errorf("ended on section %d", h.Section())
	}
}
