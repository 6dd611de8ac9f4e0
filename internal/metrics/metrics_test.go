package metrics

import (
	"testing"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sched"
)

type metric interface {
	Name() string
	Observe(r *particle.Run)
	Value() float64
	Reset()
}

func newRun(t *testing.T, frames int) *particle.Run {
	t.Helper()
	clock := sched.NewManual()
	sys := particle.NewSystem(clock,
		particle.WithSeed(1),
		particle.WithSurface(particle.DiscardSurface),
	)
	run, err := sys.Start(particle.Dimensions{Width: 200, Height: 200}, field.Fundamental)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < frames; i++ {
		clock.Tick()
	}
	return run
}

func TestMetricsBeforeFirstFrame(t *testing.T) {
	run := newRun(t, 0)

	settled := NewSettledFraction()
	settled.Observe(run)
	if settled.Value() != 0 {
		t.Errorf("expected no settled particles before the first frame, got %f", settled.Value())
	}

	speed := NewMeanSpeed()
	speed.Observe(run)
	if speed.Value() != 0 {
		t.Errorf("expected zero speed before the first frame, got %f", speed.Value())
	}
}

func TestMetricsAfterFrames(t *testing.T) {
	run := newRun(t, 30)

	tests := []struct {
		m        metric
		name     string
		min, max float64
	}{
		{NewSettledFraction(), NameSettled, 0.01, 0.99},
		{NewMeanIntensity(), NameIntensity, 0, 1},
		{NewMeanSpeed(), NameSpeed, 1e-9, 0.1},
		{NewBoundaryContacts(), NameBoundary, 0, float64(run.Len())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.m.Name() != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, tt.m.Name())
			}
			tt.m.Observe(run)
			if v := tt.m.Value(); v < tt.min || v > tt.max {
				t.Errorf("value %f outside [%f, %f]", v, tt.min, tt.max)
			}
			tt.m.Reset()
			if tt.m.Value() != 0 {
				t.Errorf("expected zero after reset, got %f", tt.m.Value())
			}
		})
	}
}

func TestMean(t *testing.T) {
	if mean(nil) != 0 {
		t.Error("expected zero mean for empty input")
	}
	if got := mean([]float64{1, 2, 3}); got != 2 {
		t.Errorf("expected 2, got %f", got)
	}
}

func TestOnEdge(t *testing.T) {
	for _, v := range []float64{0, 1} {
		if !onEdge(v) {
			t.Errorf("expected %v on edge", v)
		}
	}
	if onEdge(0.5) {
		t.Error("0.5 is not on an edge")
	}
}
