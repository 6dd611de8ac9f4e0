package render

import (
	"image"
	"image/color"
	"math"
)

// Layer holds the presentation applied when the particle surface is placed
// beneath page content.
type Layer struct {
	Contrast float64
	Opacity  float64
	// Page background, a diagonal gradient from top-left to bottom-right.
	From, To color.RGBA
}

// DefaultLayer matches the site: contrast(1.2), opacity 0.6 over a
// gray-50 → gray-100 gradient.
func DefaultLayer() Layer {
	return Layer{
		Contrast: 1.2,
		Opacity:  0.6,
		From:     color.RGBA{0xf9, 0xfa, 0xfb, 0xff},
		To:       color.RGBA{0xf3, 0xf4, 0xf6, 0xff},
	}
}

// Composite paints the page background into dst and blends src over it with
// the layer's contrast and opacity, scaled by fade in [0, 1]. dst and src
// must share bounds.
func (l Layer) Composite(dst, src *image.RGBA, fade float64) {
	b := dst.Bounds()
	fade = math.Max(0, math.Min(1, fade))
	span := float64(b.Dx() + b.Dy() - 2)
	if span <= 0 {
		span = 1
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := float64(x-b.Min.X+y-b.Min.Y) / span
			bg := [3]float64{
				lerp(float64(l.From.R), float64(l.To.R), g),
				lerp(float64(l.From.G), float64(l.To.G), g),
				lerp(float64(l.From.B), float64(l.To.B), g),
			}

			i := src.PixOffset(x, y)
			sa := float64(src.Pix[i+3]) / 255
			out := bg
			if sa > 0 {
				alpha := clamp01(sa * l.Opacity * fade)
				for c := 0; c < 3; c++ {
					// unpremultiply, then contrast around mid-grey
					v := float64(src.Pix[i+c]) / 255 / sa
					v = clamp01((v-0.5)*l.Contrast + 0.5)
					out[c] = v*255*alpha + bg[c]*(1-alpha)
				}
			}

			j := dst.PixOffset(x, y)
			dst.Pix[j] = channel(out[0])
			dst.Pix[j+1] = channel(out[1])
			dst.Pix[j+2] = channel(out[2])
			dst.Pix[j+3] = 0xff
		}
	}
}

// channel rounds v into a colour channel; NaN maps to 0.
func channel(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
