package render

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

// Fade eases a layer in from 0 to 1 with a critically damped spring, so it
// never overshoots full opacity.
type Fade struct {
	spring   harmonica.Spring
	pos, vel float64
}

// NewFade returns a fade advanced fps times per second that is within 1%
// of fully opaque after d.
func NewFade(fps int, d time.Duration) *Fade {
	fps = max(fps, 1)
	secs := max(d.Seconds(), 1/float64(fps))
	return &Fade{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.64/secs, 1)}
}

// Step advances the fade by one frame and returns the new value.
func (f *Fade) Step() float64 {
	f.pos, f.vel = f.spring.Update(f.pos, f.vel, 1)
	return f.Value()
}

func (f *Fade) Value() float64 { return clamp01(f.pos) }

func (f *Fade) Reset() { f.pos, f.vel = 0, 0 }
