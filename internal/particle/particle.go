package particle

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a point in the unit square.
type Particle struct {
	Pos     r2.Vec
	Vel     r2.Vec
	Settled bool
	// Age counts frames since the particle was seeded.
	Age int
}

// Dimensions is a viewport size in logical pixels.
type Dimensions struct {
	Width, Height int
}

func (d Dimensions) Valid() bool { return d.Width > 0 && d.Height > 0 }

func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Width, d.Height) }

// Profile caps particle density for a class of viewport.
type Profile struct {
	Name         string
	BaseDensity  int
	MaxParticles int
}

// Count is min(MaxParticles, floor(w·h / BaseDensity)).
func (p Profile) Count(d Dimensions) int {
	if !d.Valid() || p.BaseDensity <= 0 {
		return 0
	}
	n := d.Width * d.Height / p.BaseDensity
	return min(n, p.MaxParticles)
}

// Params are the physical constants of the simulation.
type Params struct {
	Compact    Profile
	Standard   Profile
	Breakpoint int // widths below use Compact

	Repulsion       float64
	Jitter          float64
	SettleThreshold float64
	SettledDamping  float64
	FreeDamping     float64
	Bounce          float64
	FadeFrames      int
}

func DefaultParams() Params {
	return Params{
		Compact:         Profile{Name: "compact", BaseDensity: 500, MaxParticles: 1500},
		Standard:        Profile{Name: "standard", BaseDensity: 300, MaxParticles: 3000},
		Breakpoint:      768,
		Repulsion:       0.001,
		Jitter:          0.0002,
		SettleThreshold: 0.3,
		SettledDamping:  0.8,
		FreeDamping:     0.95,
		Bounce:          0.5,
		FadeFrames:      60,
	}
}

// Validate rejects constants that would let a particle leave the unit
// square or turn non-finite.
func (p Params) Validate() error {
	for _, c := range []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"repulsion", p.Repulsion, 0, math.MaxFloat64},
		{"jitter", p.Jitter, 0, math.MaxFloat64},
		{"settle_threshold", p.SettleThreshold, 0, 1},
		{"settled_damping", p.SettledDamping, 0, 1},
		{"free_damping", p.FreeDamping, 0, 1},
		{"bounce", p.Bounce, 0, 1},
	} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || c.v < c.min || c.v > c.max {
			return fmt.Errorf("%w: %s %v", ErrInvalidParams, c.name, c.v)
		}
	}
	if p.Compact.BaseDensity <= 0 || p.Standard.BaseDensity <= 0 {
		return fmt.Errorf("%w: base density must be positive", ErrInvalidParams)
	}
	if p.Compact.MaxParticles < 0 || p.Standard.MaxParticles < 0 {
		return fmt.Errorf("%w: max particles must not be negative", ErrInvalidParams)
	}
	return nil
}

// ProfileFor picks the density profile for a viewport width.
func (p Params) ProfileFor(width int) Profile {
	if width < p.Breakpoint {
		return p.Compact
	}
	return p.Standard
}

// Style controls how particles and the node overlay are drawn.
type Style struct {
	Background color.Color
	Particle   [3]uint8

	SettledAlpha, FreeAlpha float64
	SettledSize, FreeSize   float64
	MinIntensityAlpha       float64

	Overlay          color.Color
	OverlayThreshold float64
	OverlayRadius    float64
	OverlayWidth     float64
}

func DefaultStyle() Style {
	return Style{
		Background:        color.NRGBA{248, 248, 248, 128},
		Particle:          [3]uint8{60, 60, 60},
		SettledAlpha:      0.8,
		FreeAlpha:         0.3,
		SettledSize:       1.5,
		FreeSize:          0.8,
		MinIntensityAlpha: 0.1,
		Overlay:           color.NRGBA{100, 100, 100, 26},
		OverlayThreshold:  0.2,
		OverlayRadius:     1,
		OverlayWidth:      0.5,
	}
}
