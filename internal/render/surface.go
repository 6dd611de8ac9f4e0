// Package render provides the raster surface the particle background is
// drawn on, plus the compositing used to place it beneath page content.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// ErrNoSurface is returned when a drawing surface cannot be allocated.
var ErrNoSurface = errors.New("render: drawing surface unavailable")

// kappa places cubic control points so four segments approximate a circle.
const kappa = 0.5522847498

// Surface is an RGBA raster with anti-aliased circle primitives.
type Surface struct {
	img  *image.RGBA
	ras  *vector.Rasterizer
	mask *image.Alpha
}

func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNoSurface
	}
	return &Surface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		ras: vector.NewRasterizer(1, 1),
	}, nil
}

func (s *Surface) Image() *image.RGBA       { return s.img }
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Clear resets every pixel to transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Fill paints c over the whole surface.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
}

// FillCircle paints a filled circle centred at (cx, cy).
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	s.shape(cx, cy, r, c, func(ox, oy float32) {
		s.circle(ox, oy, float32(r), false)
	})
}

// StrokeCircle outlines a circle of radius r with a line of the given width.
func (s *Surface) StrokeCircle(cx, cy, r, width float64, c color.Color) {
	outer := r + width/2
	inner := math.Max(0, r-width/2)
	if outer <= 0 {
		return
	}
	s.shape(cx, cy, outer, c, func(ox, oy float32) {
		s.circle(ox, oy, float32(outer), false)
		if inner > 0 {
			s.circle(ox, oy, float32(inner), true)
		}
	})
}

// shape rasterizes path into a scratch mask covering the circle's bounding
// box, then composites c through it. draw.DrawMask handles clipping.
func (s *Surface) shape(cx, cy, r float64, c color.Color, path func(ox, oy float32)) {
	box := image.Rect(
		int(math.Floor(cx-r))-1, int(math.Floor(cy-r))-1,
		int(math.Ceil(cx+r))+1, int(math.Ceil(cy+r))+1,
	)
	if !box.Overlaps(s.img.Bounds()) {
		return
	}
	w, h := box.Dx(), box.Dy()
	s.ras.Reset(w, h)
	s.ras.DrawOp = draw.Src
	path(float32(cx-float64(box.Min.X)), float32(cy-float64(box.Min.Y)))

	if s.mask == nil || s.mask.Rect.Dx() != w || s.mask.Rect.Dy() != h {
		s.mask = image.NewAlpha(image.Rect(0, 0, w, h))
	}
	s.ras.Draw(s.mask, s.mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(s.img, box, image.NewUniform(c), image.Point{}, s.mask, image.Point{}, draw.Over)
}

func (s *Surface) circle(cx, cy, r float32, reverse bool) {
	k := r * kappa
	s.ras.MoveTo(cx+r, cy)
	if !reverse {
		s.ras.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		s.ras.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		s.ras.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		s.ras.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	} else {
		s.ras.CubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		s.ras.CubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		s.ras.CubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		s.ras.CubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	}
	s.ras.ClosePath()
}

// RGBA builds a non-premultiplied colour with a fractional alpha, clamped to [0, 1].
func RGBA(r, g, b uint8, alpha float64) color.NRGBA {
	a := math.Max(0, math.Min(1, alpha))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}
