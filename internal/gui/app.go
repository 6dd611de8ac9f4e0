package gui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/chladni/internal/export"
	"github.com/san-kum/chladni/internal/host"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/render"
	"github.com/san-kum/chladni/internal/sched"
)

// Page colours
var (
	ColText    = rl.NewColor(156, 163, 175, 153) // gray-400 at 0.6
	ColDot     = rl.NewColor(156, 163, 175, 255)
	ColDotOn   = rl.NewColor(17, 24, 39, 255)
	ColTextDim = rl.NewColor(107, 114, 128, 255)
)

type Options struct {
	Width, Height int
	FPS           int
	Section       int
	FadeIn        time.Duration
	Layer         render.Layer
	OutDir        string
	Logger        *slog.Logger
}

// App shows the particle background in a resizable raylib window.
type App struct {
	sys   *particle.System
	clock *sched.Manual
	host  *host.Host
	layer render.Layer
	fade  *render.Fade
	log   *slog.Logger

	outDir  string
	running bool
	status  string
	section int
	panel   bool

	frame  *image.RGBA
	pixels []color.RGBA
	tex    rl.Texture2D
	texW   int
	texH   int

	dragging  bool
	dragStart rl.Vector2
}

func initWindow(opts Options) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), "chladni")
	rl.SetTargetFPS(int32(opts.FPS))
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed. sys must have been
// created with clock as its scheduler.
func Run(sys *particle.System, clock *sched.Manual, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.FPS <= 0 {
		opts.FPS = sched.DefaultFPS
	}
	if opts.FadeIn <= 0 {
		opts.FadeIn = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Layer == (render.Layer{}) {
		opts.Layer = render.DefaultLayer()
	}

	initWindow(opts)
	defer rl.CloseWindow()

	a := &App{
		sys:     sys,
		clock:   clock,
		host:    host.New(sys, opts.Logger),
		layer:   opts.Layer,
		fade:    render.NewFade(opts.FPS, opts.FadeIn),
		log:     opts.Logger,
		outDir:  opts.OutDir,
		running: true,
	}
	defer a.host.Close()

	if err := a.host.SetSection(opts.Section); err != nil {
		return err
	}
	a.section = a.host.Section()
	if err := a.resize(rl.GetScreenWidth(), rl.GetScreenHeight()); err != nil {
		return err
	}
	defer a.unloadTexture()

	a.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and advances the simulation. It reports true when
// the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return true
	}

	if rl.IsWindowResized() {
		if err := a.resize(rl.GetScreenWidth(), rl.GetScreenHeight()); err != nil {
			a.fail("resize", err)
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeyRight) || rl.IsKeyPressed(rl.KeyL):
		a.check(a.host.Next())
	case rl.IsKeyPressed(rl.KeyLeft) || rl.IsKeyPressed(rl.KeyH):
		a.check(a.host.Prev())
	}
	for i := 0; i < host.Sections; i++ {
		if rl.IsKeyPressed(rl.KeyOne + int32(i)) {
			a.check(a.host.SetSection(i))
		}
	}
	a.handleDrag()
	// buttons drawn last frame may have moved the section too
	if s := a.host.Section(); s != a.section {
		a.section = s
		a.fade.Reset()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.running = !a.running
	}
	if rl.IsKeyPressed(rl.KeyS) {
		a.screenshot()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		a.panel = !a.panel
	}

	if a.running {
		a.clock.Tick()
		a.fade.Step()
	}
	a.upload()
	return false
}

// handleDrag treats a mouse drag like a touch swipe.
func (a *App) handleDrag() {
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		pos := rl.GetMousePosition()
		if a.panel && rl.CheckCollisionPointRec(pos, panelRect) {
			return
		}
		a.dragging = true
		a.dragStart = pos
	}
	if a.dragging && rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		a.dragging = false
		end := rl.GetMousePosition()
		a.check(a.host.Swipe(float64(a.dragStart.X-end.X), float64(a.dragStart.Y-end.Y)))
	}
}

func (a *App) check(err error) {
	if err != nil {
		a.fail("host", err)
	}
}

func (a *App) fail(what string, err error) {
	a.status = fmt.Sprintf("%s: %v", what, err)
	a.log.Warn("gui update failed", "op", what, "error", err)
}

func (a *App) resize(w, h int) error {
	if err := a.host.SetViewport(particle.Dimensions{Width: w, Height: h}); err != nil {
		return err
	}
	a.fade.Reset()
	if w == a.texW && h == a.texH {
		return nil
	}

	a.unloadTexture()
	img := rl.GenImageColor(w, h, rl.White)
	a.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	a.texW, a.texH = w, h
	a.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	a.pixels = make([]color.RGBA, w*h)
	return nil
}

func (a *App) unloadTexture() {
	if a.texW > 0 {
		rl.UnloadTexture(a.tex)
		a.texW, a.texH = 0, 0
	}
}

// upload composites the current surface and copies it into the texture.
func (a *App) upload() {
	if a.frame == nil {
		return
	}
	a.sys.View(func(r *particle.Run) {
		src, ok := r.Canvas().(interface{ Image() *image.RGBA })
		if !ok || src.Image().Bounds() != a.frame.Bounds() {
			return
		}
		a.layer.Composite(a.frame, src.Image(), a.fade.Value())
	})
	a.pixels = toPixels(a.frame, a.pixels)
	rl.UpdateTexture(a.tex, a.pixels)
}

func (a *App) screenshot() {
	if a.frame == nil {
		return
	}
	name := fmt.Sprintf("chladni-%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(a.outDir, name)
	if err := export.SavePNG(path, a.frame); err != nil {
		a.fail("screenshot", err)
		return
	}
	a.status = "saved " + path
	a.log.Info("screenshot saved", "path", path)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.White)

	if a.texW > 0 {
		rl.DrawTexture(a.tex, 0, 0, rl.White)
	}
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	rl.DrawText(a.host.Label(), 32, 32, 12, ColText)

	// navigation dots
	const r, gap = 6, 20
	x0 := w/2 - int32(host.Sections-1)*gap/2
	for i := 0; i < host.Sections; i++ {
		col, radius := ColDot, float32(r)
		if i == a.host.Section() {
			col, radius = ColDotOn, r*1.25
		}
		rl.DrawCircle(x0+int32(i)*gap, h-32, radius, col)
	}

	status := fmt.Sprintf("%d FPS", rl.GetFPS())
	if !a.running {
		status = "PAUSED  " + status
	}
	rl.DrawText(status, w-120, 32, 12, ColTextDim)
	if a.status != "" {
		rl.DrawText(a.status, 32, h-64, 12, ColTextDim)
	}
	if gui.Button(rl.Rectangle{X: float32(x0 - 48), Y: float32(h - 44), Width: 24, Height: 24}, "<") {
		a.check(a.host.Prev())
	}
	if gui.Button(rl.Rectangle{X: float32(x0 + int32(host.Sections-1)*gap + 24), Y: float32(h - 44), Width: 24, Height: 24}, ">") {
		a.check(a.host.Next())
	}
	if a.panel {
		a.drawPanel()
	}

	rl.DrawText("[←/→] SECTION  [SPACE] PAUSE  [S] PNG  [P] PICKER  [Q] QUIT", 32, h-20, 10, ColTextDim)
}

var panelRect = rl.Rectangle{X: 32, Y: 64, Width: 5 * 72, Height: 24}

// drawPanel draws a toggle group of section names.
func (a *App) drawPanel() {
	names := make([]string, host.Sections)
	for i := range names {
		names[i] = strings.ToUpper(host.SectionName(i))
	}
	item := rl.Rectangle{X: panelRect.X, Y: panelRect.Y, Width: panelRect.Width/host.Sections - 2, Height: panelRect.Height}
	active := gui.ToggleGroup(item, strings.Join(names, ";"), int32(a.host.Section()))
	if int(active) != a.host.Section() {
		a.check(a.host.SetSection(int(active)))
	}
}

// toPixels copies an RGBA image into a raylib pixel buffer, reusing dst
// when it is large enough.
func toPixels(img *image.RGBA, dst []color.RGBA) []color.RGBA {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if cap(dst) < n {
		dst = make([]color.RGBA, n)
	}
	dst = dst[:n]
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			p := img.Pix[off+x*4 : off+x*4+4]
			dst[i] = color.RGBA{p[0], p[1], p[2], p[3]}
			i++
		}
	}
	return dst
}
