package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestNewSurface_InvalidSize(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSurface(tt.w, tt.h); !errors.Is(err, ErrNoSurface) {
				t.Errorf("expected ErrNoSurface, got %v", err)
			}
		})
	}
}

func TestSurface_FillCircle(t *testing.T) {
	s, err := NewSurface(20, 20)
	if err != nil {
		t.Fatalf("new surface: %v", err)
	}

	s.FillCircle(10, 10, 3, color.NRGBA{60, 60, 60, 255})

	centre := s.Image().RGBAAt(10, 10)
	if centre.A != 255 || centre.R != 60 {
		t.Errorf("expected opaque grey at centre, got %+v", centre)
	}
	if far := s.Image().RGBAAt(0, 0); far.A != 0 {
		t.Errorf("expected untouched corner, got %+v", far)
	}
}

func TestSurface_FillCircleClipped(t *testing.T) {
	s, _ := NewSurface(8, 8)

	s.FillCircle(0, 0, 2, color.Black)
	s.FillCircle(8, 8, 2, color.Black)
	s.FillCircle(-50, -50, 2, color.Black)

	if s.Image().RGBAAt(0, 0).A == 0 {
		t.Error("expected corner circle to cover pixel (0,0)")
	}
	if s.Image().RGBAAt(7, 7).A == 0 {
		t.Error("expected corner circle to cover pixel (7,7)")
	}
}

func TestSurface_StrokeCircle(t *testing.T) {
	s, _ := NewSurface(40, 40)
	s.StrokeCircle(20, 20, 10, 2, color.Black)

	if a := s.Image().RGBAAt(20, 20).A; a != 0 {
		t.Errorf("expected hollow centre, got alpha %d", a)
	}
	if a := s.Image().RGBAAt(30, 20).A; a == 0 {
		t.Error("expected ring to cover (30,20)")
	}
}

func TestSurface_ClearAndFill(t *testing.T) {
	s, _ := NewSurface(4, 4)
	s.Fill(RGBA(248, 248, 248, 0.5))

	px := s.Image().RGBAAt(1, 1)
	if px.A < 126 || px.A > 128 {
		t.Errorf("expected half alpha after fill, got %d", px.A)
	}

	s.Clear()
	if s.Image().RGBAAt(1, 1) != (color.RGBA{}) {
		t.Error("expected transparent pixel after clear")
	}
}

func TestRGBA_Clamps(t *testing.T) {
	if c := RGBA(1, 2, 3, 1.5); c.A != 255 {
		t.Errorf("expected clamp to 255, got %d", c.A)
	}
	if c := RGBA(1, 2, 3, -1); c.A != 0 {
		t.Errorf("expected clamp to 0, got %d", c.A)
	}
}

func TestLayer_Composite(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	dst := image.NewRGBA(src.Bounds())
	src.SetRGBA(2, 2, color.RGBA{0, 0, 0, 255})

	l := DefaultLayer()

	l.Composite(dst, src, 0)
	if got := dst.RGBAAt(0, 0); got != l.From {
		t.Errorf("expected gradient start %+v, got %+v", l.From, got)
	}
	if got := dst.RGBAAt(3, 3); got != l.To {
		t.Errorf("expected gradient end %+v, got %+v", l.To, got)
	}
	if got := dst.RGBAAt(2, 2); got.R < 0xf3 {
		t.Errorf("fade 0 should hide the layer, got %+v", got)
	}

	l.Composite(dst, src, 1)
	got := dst.RGBAAt(2, 2)
	if got.A != 0xff {
		t.Errorf("composite must be opaque, got alpha %d", got.A)
	}
	// black at 60% over ~0xf5 background
	if got.R < 0x5c || got.R > 0x64 {
		t.Errorf("expected blended dark pixel, got %+v", got)
	}
}

func TestLayer_CompositeClampsOpacity(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	dst := image.NewRGBA(src.Bounds())
	src.SetRGBA(1, 1, color.RGBA{0, 0, 0, 255})
	src.SetRGBA(2, 2, color.RGBA{255, 255, 255, 255})

	l := DefaultLayer()
	l.Opacity = 3

	l.Composite(dst, src, 1)
	if got := dst.RGBAAt(1, 1); got != (color.RGBA{0, 0, 0, 0xff}) {
		t.Errorf("opacity above one must saturate to the particle colour, got %+v", got)
	}
	if got := dst.RGBAAt(2, 2); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("expected white, got %+v", got)
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-40, 0},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
		{127.4, 127},
		{127.6, 128},
		{300, 255},
		{math.Inf(1), 255},
	}
	for _, tt := range tests {
		if got := channel(tt.in); got != tt.want {
			t.Errorf("channel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
