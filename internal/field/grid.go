package field

import "math"

const (
	// GridSize is the number of lattice intervals per axis; nodes run 0..GridSize.
	GridSize = 20
	// Step is the forward-difference step used for the gradient.
	Step = 0.01
)

// Sample is the field value and its forward-difference gradient at a node.
type Sample struct {
	DX, DY    float64
	Intensity float64
}

// Node is a lattice point in normalized coordinates.
type Node struct {
	I, J      int
	X, Y      float64
	Intensity float64
}

// Grid is the per-frame gradient sample of a field. It is rebuilt every
// frame and never reused across frames.
type Grid struct {
	T       float64
	samples [GridSize + 1][GridSize + 1]Sample
}

// NewGrid samples fn at frame t on the (GridSize+1)² lattice.
func NewGrid(fn Fn, t float64) *Grid {
	g := &Grid{T: t}
	for i := 0; i <= GridSize; i++ {
		for j := 0; j <= GridSize; j++ {
			x := float64(i) / GridSize
			y := float64(j) / GridSize
			v := fn(x, y, t)
			g.samples[i][j] = Sample{
				DX:        (fn(x+Step, y, t) - v) / Step,
				DY:        (fn(x, y+Step, t) - v) / Step,
				Intensity: v,
			}
		}
	}
	return g
}

// At returns the sample at lattice node (i, j). Indices must be in [0, GridSize].
func (g *Grid) At(i, j int) Sample {
	return g.samples[i][j]
}

// Cell returns the sample of the cell enclosing (x, y). ok is false when the
// floored cell index falls outside [0, GridSize) on either axis.
func (g *Grid) Cell(x, y float64) (Sample, bool) {
	fx := math.Floor(x * GridSize)
	fy := math.Floor(y * GridSize)
	if fx < 0 || fx >= GridSize || fy < 0 || fy >= GridSize || math.IsNaN(fx) || math.IsNaN(fy) {
		return Sample{}, false
	}
	return g.samples[int(fx)][int(fy)], true
}

// Nodes lists interior lattice points (0..GridSize-1 per axis) whose
// intensity magnitude is below threshold.
func (g *Grid) Nodes(threshold float64) []Node {
	var out []Node
	for i := 0; i < GridSize; i++ {
		for j := 0; j < GridSize; j++ {
			v := g.samples[i][j].Intensity
			if math.Abs(v) < threshold {
				out = append(out, Node{
					I: i, J: j,
					X:         float64(i) / GridSize,
					Y:         float64(j) / GridSize,
					Intensity: v,
				})
			}
		}
	}
	return out
}
