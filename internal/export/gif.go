package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// GIFRecorder collects frames for an animated GIF. Frames are scaled to
// Width pixels wide (when set) and dithered onto the Plan9 palette.
type GIFRecorder struct {
	Width     int
	MaxFrames int

	delay  int
	frames []*image.Paletted
}

// NewGIFRecorder records at fps, which sets the per-frame delay in
// hundredths of a second.
func NewGIFRecorder(fps, width, maxFrames int) *GIFRecorder {
	delay := 2
	if fps > 0 {
		delay = max(1, 100/fps)
	}
	return &GIFRecorder{Width: width, MaxFrames: maxFrames, delay: delay}
}

// Add quantizes img and appends it. It reports false once MaxFrames is
// reached.
func (g *GIFRecorder) Add(img image.Image) bool {
	if g.MaxFrames > 0 && len(g.frames) >= g.MaxFrames {
		return false
	}

	src := img
	b := img.Bounds()
	if g.Width > 0 && b.Dx() > g.Width {
		h := max(1, b.Dy()*g.Width/b.Dx())
		scaled := image.NewRGBA(image.Rect(0, 0, g.Width, h))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
		src = scaled
	}

	pimg := image.NewPaletted(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), src, src.Bounds().Min)
	g.frames = append(g.frames, pimg)
	return true
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

func (g *GIFRecorder) Reset() { g.frames = g.frames[:0] }

func (g *GIFRecorder) Encode(w io.Writer) error {
	if len(g.frames) == 0 {
		return fmt.Errorf("export: no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	// frames can differ in size after a resize; the screen fits the largest
	for _, frame := range g.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, g.delay)
		anim.Config.Width = max(anim.Config.Width, frame.Bounds().Dx())
		anim.Config.Height = max(anim.Config.Height, frame.Bounds().Dy())
	}
	return gif.EncodeAll(w, &anim)
}

func (g *GIFRecorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
