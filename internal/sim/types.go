package sim

import (
	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
)

// Metric reduces a run to one number per frame.
type Metric interface {
	Name() string
	Observe(r *particle.Run)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(r *particle.Run)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r *particle.Run)

func (f ObserverFunc) OnFrame(r *particle.Run) { f(r) }

type Config struct {
	Dims    particle.Dimensions
	Pattern field.Pattern
	Frames  int
	Seed    int64
	Params  particle.Params
	Style   particle.Style
}

// DefaultConfig is a laptop-sized run of ten seconds at 60 fps.
func DefaultConfig() Config {
	return Config{
		Dims:   particle.Dimensions{Width: 1024, Height: 768},
		Frames: 600,
		Params: particle.DefaultParams(),
		Style:  particle.DefaultStyle(),
	}
}

type Result struct {
	RunID     string
	Pattern   field.Pattern
	Seed      int64
	Particles int
	Frames    int
	Metrics   map[string]float64
	Series    map[string][]float64
}
