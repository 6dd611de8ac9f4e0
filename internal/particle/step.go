package particle

import (
	"math"
	"math/rand"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/render"
	"gonum.org/v1/gonum/spatial/r2"
)

// step advances every particle by one frame and redraws the canvas.
func (r *Run) step() {
	p, st := r.sys.params, r.sys.style
	t := float64(r.t)
	grid := field.NewGrid(r.fn, t)

	r.canvas.Clear()
	r.canvas.Fill(st.Background)

	w, h := float64(r.dims.Width), float64(r.dims.Height)
	for i := range r.particles {
		pt := &r.particles[i]

		// Only the force block depends on the lattice; particles outside it
		// still move, age, bounce and draw.
		if s, ok := grid.Cell(pt.Pos.X, pt.Pos.Y); ok {
			applyForce(pt, s, p, r.sys.rng)
		}

		pt.Pos = r2.Add(pt.Pos, pt.Vel)
		pt.Age++
		pt.Pos.X, pt.Vel.X = reflect(pt.Pos.X, pt.Vel.X, p.Bounce)
		pt.Pos.Y, pt.Vel.Y = reflect(pt.Pos.Y, pt.Vel.Y, p.Bounce)

		alpha, size := st.Appearance(*pt, math.Abs(r.fn(pt.Pos.X, pt.Pos.Y, t)), p.FadeFrames)
		c := render.RGBA(st.Particle[0], st.Particle[1], st.Particle[2], alpha)
		r.canvas.FillCircle(pt.Pos.X*w, pt.Pos.Y*h, size, c)
	}

	for _, n := range grid.Nodes(st.OverlayThreshold) {
		r.canvas.StrokeCircle(n.X*w, n.Y*h, st.OverlayRadius, st.OverlayWidth, st.Overlay)
	}

	r.t++
}

// applyForce pushes the particle down the gradient, adds jitter and damps
// it according to whether it sits near a node.
func applyForce(pt *Particle, s field.Sample, p Params, rng *rand.Rand) {
	intensity := math.Abs(s.Intensity)

	grad := r2.Vec{X: s.DX, Y: s.DY}
	pt.Vel = r2.Sub(pt.Vel, r2.Scale(intensity*p.Repulsion, grad))

	pt.Vel.X += (rng.Float64() - 0.5) * p.Jitter
	pt.Vel.Y += (rng.Float64() - 0.5) * p.Jitter

	if intensity < p.SettleThreshold {
		pt.Settled = true
		pt.Vel = r2.Scale(p.SettledDamping, pt.Vel)
	} else {
		pt.Settled = false
		pt.Vel = r2.Scale(p.FreeDamping, pt.Vel)
	}
}

// reflect clamps x into [0, 1] and turns v inward, scaled by bounce.
func reflect(x, v, bounce float64) (float64, float64) {
	switch {
	case x < 0:
		return 0, math.Abs(v) * bounce
	case x > 1:
		return 1, -math.Abs(v) * bounce
	}
	return x, v
}

// Appearance returns the fill alpha and radius of a particle whose current
// field magnitude is intensity.
func (st Style) Appearance(p Particle, intensity float64, fadeFrames int) (alpha, size float64) {
	alpha, size = st.FreeAlpha, st.FreeSize
	if p.Settled {
		alpha, size = st.SettledAlpha, st.SettledSize
	}
	alpha *= math.Max(st.MinIntensityAlpha, 1-intensity)
	alpha *= AgeFactor(p.Age, fadeFrames)
	return alpha, size
}

// AgeFactor fades a particle in linearly over its first fadeFrames frames.
func AgeFactor(age, fadeFrames int) float64 {
	if fadeFrames <= 0 || age >= fadeFrames {
		return 1
	}
	if age <= 0 {
		return 0
	}
	return float64(age) / float64(fadeFrames)
}
