package export

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sched"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / w), 128, uint8(y * 255 / h), 255})
		}
	}
	return img
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, testImage(8, 4)); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}

	if err := PNG(&buf, nil); err == nil {
		t.Error("expected error for nil image")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := SavePNG(path, testImage(4, 4)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), testImage(4, 4)); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestGIFRecorder(t *testing.T) {
	rec := NewGIFRecorder(50, 16, 3)

	for i := 0; i < 5; i++ {
		added := rec.Add(testImage(32, 20))
		if want := i < 3; added != want {
			t.Errorf("frame %d: added=%v, want %v", i, added, want)
		}
	}
	if rec.Len() != 3 {
		t.Fatalf("expected 3 frames, got %d", rec.Len())
	}

	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("expected 3 frames, got %d", len(anim.Image))
	}
	if anim.Delay[0] != 2 {
		t.Errorf("expected delay 2 at 50 fps, got %d", anim.Delay[0])
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 16 || b.Dy() != 10 {
		t.Errorf("expected frames scaled to 16x10, got %v", b)
	}

	rec.Reset()
	if err := rec.Encode(&buf); err == nil {
		t.Error("expected error with no frames")
	}
}

func TestGIFRecorderKeepsSmallFrames(t *testing.T) {
	rec := NewGIFRecorder(0, 64, 0)
	rec.Add(testImage(10, 6))

	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 10 || b.Dy() != 6 {
		t.Errorf("expected unscaled frame, got %v", b)
	}
}

func TestGIFRecorderMixedSizes(t *testing.T) {
	rec := NewGIFRecorder(30, 0, 0)
	rec.Add(testImage(12, 8))
	rec.Add(testImage(20, 14))

	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if anim.Config.Width != 20 || anim.Config.Height != 14 {
		t.Errorf("screen = %dx%d, want 20x14", anim.Config.Width, anim.Config.Height)
	}
}

func TestRunToSVG(t *testing.T) {
	if RunToSVG(nil, particle.DefaultStyle(), 60) != "" {
		t.Error("expected empty output for nil run")
	}

	clock := sched.NewManual()
	sys := particle.NewSystem(clock, particle.WithSeed(5))
	run, err := sys.Start(particle.Dimensions{Width: 100, Height: 100}, field.Fundamental)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 80; i++ {
		clock.Tick()
	}

	svg := RunToSVG(run, sys.Style(), sys.Params().FadeFrames)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete SVG document")
	}
	if !strings.Contains(svg, `fill="#3c3c3c"`) {
		t.Error("expected particle fill colour")
	}
	// 20 particles plus 60 overlay nodes for the fundamental pattern
	if n := strings.Count(svg, "<circle"); n != 80 {
		t.Errorf("expected 80 circles, got %d", n)
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#000") != "" {
		t.Error("expected empty output for a single sample")
	}

	svg := SeriesToSVG([]float64{0, 0.5, 1, 0.5}, 300, 100, "#374151")
	if !strings.Contains(svg, `stroke="#374151"`) {
		t.Error("expected stroke colour")
	}
	if n := strings.Count(svg, " L"); n != 3 {
		t.Errorf("expected 3 line segments, got %d", n)
	}
	if !strings.Contains(svg, `d="M0.0,`) {
		t.Error("expected the path to start at x=0")
	}
}
