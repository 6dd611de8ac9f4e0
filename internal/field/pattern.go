package field

import (
	"fmt"
	"math"
)

// Count is the number of distinct patterns.
const Count = 5

// Pattern selects one of the vibration modes. Any integer is accepted and
// wrapped into [0, Count).
type Pattern int

const (
	Fundamental Pattern = iota
	Cross
	Star
	Radial
	Lattice
)

// Fn is a field function over the unit square. t is a frame counter.
type Fn func(x, y, t float64) float64

var names = [Count]string{"fundamental", "cross", "star", "radial", "lattice"}

// Normalize wraps p into [0, Count), negative indices included.
func (p Pattern) Normalize() Pattern {
	n := p % Count
	if n < 0 {
		n += Count
	}
	return n
}

func (p Pattern) Name() string { return names[p.Normalize()] }

// Mode describes the pattern as used by status indicators, e.g. "(2,1)".
func (p Pattern) Mode() string {
	switch p.Normalize() {
	case Fundamental:
		return "(1,0)"
	case Cross:
		return "(1,1)"
	case Star:
		return "(2,1)"
	case Radial:
		return "6θ·4πr"
	default:
		return "(2,2)"
	}
}

func (p Pattern) String() string {
	return fmt.Sprintf("%s %s", p.Name(), p.Mode())
}

// Evaluate returns the intensity of pattern p at (x, y) and frame t.
// The result lies in [-1, 1].
func Evaluate(p Pattern, x, y, t float64) float64 {
	switch p.Normalize() {
	case Fundamental:
		return rect(1, 0, x, y) * math.Cos(t*0.005)
	case Cross:
		return rect(1, 1, x, y) * math.Cos(t*0.007)
	case Star:
		return rect(2, 1, x, y) * math.Cos(t*0.006)
	case Radial:
		dx, dy := x-0.5, y-0.5
		r := math.Sqrt(dx*dx + dy*dy)
		theta := math.Atan2(dy, dx)
		return math.Cos(6*theta) * math.Sin(4*math.Pi*r) * math.Cos(t*0.008)
	default:
		return rect(2, 2, x, y) * math.Cos(t*0.009)
	}
}

// Func binds p into a field function.
func Func(p Pattern) Fn {
	p = p.Normalize()
	return func(x, y, t float64) float64 { return Evaluate(p, x, y, t) }
}

func rect(nx, ny, x, y float64) float64 {
	return math.Cos(nx*math.Pi*x) * math.Cos(ny*math.Pi*y)
}
