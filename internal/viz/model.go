package viz

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chladni/internal/export"
	"github.com/san-kum/chladni/internal/host"
	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/render"
	"github.com/san-kum/chladni/internal/sched"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	panelWidth      = 44
	historyCapacity = 600

	// PixelScale is the number of surface pixels per braille dot.
	PixelScale = 4
	// DarkThreshold is the luminance below which a pixel becomes a dot.
	DarkThreshold = 236

	gifWidth     = 320
	gifMaxFrames = 600
)

type TickMsg time.Time

type Options struct {
	FPS     int
	Section int
	FadeIn  time.Duration
	Layer   render.Layer
	OutDir  string
	Logger  *slog.Logger
}

// Model drives a particle system from bubbletea ticks and renders it as
// braille next to a status panel.
type Model struct {
	sys   *particle.System
	clock *sched.Manual
	host  *host.Host
	layer render.Layer
	fade  *render.Fade
	log   *slog.Logger

	fps    int
	outDir string

	cols, rows int
	canvas     *Canvas
	frame      *image.RGBA

	running  bool
	showHelp bool
	status   string

	runID     string
	pattern   string
	particles int
	profile   string
	t         int

	settled     *metrics.SettledFraction
	speed       *metrics.MeanSpeed
	settledHist []float64
	speedHist   []float64

	recording bool
	gif       *export.GIFRecorder
}

// NewModel wires the model to a system driven by clock. The system must
// have been created with clock as its scheduler.
func NewModel(sys *particle.System, clock *sched.Manual, opts Options) Model {
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

	m := Model{
		sys:         sys,
		clock:       clock,
		host:        host.New(sys, opts.Logger),
		layer:       opts.Layer,
		fade:        render.NewFade(opts.FPS, opts.FadeIn),
		log:         opts.Logger,
		fps:         opts.FPS,
		outDir:      opts.OutDir,
		canvas:      NewCanvas(1, 1),
		running:     true,
		settled:     metrics.NewSettledFraction(),
		speed:       metrics.NewMeanSpeed(),
		settledHist: make([]float64, 0, historyCapacity),
		speedHist:   make([]float64, 0, historyCapacity),
	}
	if err := m.host.SetSection(opts.Section); err != nil {
		m.status = err.Error()
	}
	m.resize(defaultCols, defaultRows)
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			m.host.Close()
			return m, tea.Quit
		case "left", "h":
			m.setErr(m.host.Prev())
		case "right", "l":
			m.setErr(m.host.Next())
		case "1", "2", "3", "4", "5":
			m.setErr(m.host.SetSection(int(msg.String()[0] - '1')))
		case " ":
			m.running = !m.running
		case "g":
			if m.recording {
				m.saveGIF()
			} else {
				m.recording = true
				m.gif = export.NewGIFRecorder(m.fps, gifWidth, gifMaxFrames)
				m.status = "recording"
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.sync()
	case TickMsg:
		if m.running {
			m.clock.Tick()
			m.fade.Step()
		}
		m.sync()
		if m.recording && m.frame != nil {
			if !m.gif.Add(m.frame) {
				m.saveGIF()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.status = err.Error()
		m.log.Warn("host update failed", "error", err)
	}
}

// resize maps a terminal size to a braille canvas and a surface viewport.
func (m *Model) resize(width, height int) {
	m.cols = max(width-panelWidth-6, 10)
	m.rows = max(height-3, 4)
	m.canvas.Resize(m.cols, m.rows)

	dims := particle.Dimensions{Width: m.cols * 2 * PixelScale, Height: m.rows * 4 * PixelScale}
	m.setErr(m.host.SetViewport(dims))
	m.sync()
}

// sync pulls the latest frame out of the system: composite, braille and
// metrics. A new run resets the fade and histories.
func (m *Model) sync() {
	m.sys.View(func(r *particle.Run) {
		if r.ID() != m.runID {
			m.runID = r.ID()
			m.fade.Reset()
			m.settled.Reset()
			m.speed.Reset()
			m.settledHist = m.settledHist[:0]
			m.speedHist = m.speedHist[:0]
			m.pattern = r.Pattern().String()
			m.particles = r.Len()
			m.profile = r.Profile().Name
			m.t = -1
		}

		if src, ok := r.Canvas().(interface{ Image() *image.RGBA }); ok {
			img := src.Image()
			if m.frame == nil || m.frame.Bounds() != img.Bounds() {
				m.frame = image.NewRGBA(img.Bounds())
			}
			m.layer.Composite(m.frame, img, m.fade.Value())
			m.canvas.Rasterize(m.frame, DarkThreshold)
		}

		if r.T() == m.t {
			return
		}
		m.t = r.T()
		m.settled.Observe(r)
		m.speed.Observe(r)
		m.settledHist = appendCapped(m.settledHist, m.settled.Value())
		m.speedHist = appendCapped(m.speedHist, m.speed.Value())
	})
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) saveGIF() {
	m.recording = false
	if m.gif == nil || m.gif.Len() == 0 {
		m.status = "nothing recorded"
		return
	}
	name := fmt.Sprintf("chladni-%s.gif", shortID(m.runID))
	path := filepath.Join(m.outDir, name)
	if err := m.gif.Save(path); err != nil {
		m.status = "gif: " + err.Error()
		m.log.Error("gif save failed", "path", path, "error", err)
	} else {
		m.status = "saved " + path
		m.log.Info("gif saved", "path", path, "frames", m.gif.Len())
	}
	m.gif = nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// View renders the TUI interface.
func (m Model) View() string {
	st := newStyles(CurrentTheme)
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(GradientText("CHLADNI", CurrentTheme.Primary, CurrentTheme.Accent)) + "\n")
	s.WriteString(st.freq.Render(m.host.Label()+"  "+host.Dots(m.host.Section())) + "\n\n")

	switch {
	case m.recording:
		s.WriteString(st.recording.Render(fmt.Sprintf("● REC %d", m.gif.Len())))
	case m.running:
		s.WriteString(st.running.Render("RUNNING"))
	default:
		s.WriteString(st.paused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Section", host.SectionName(m.host.Section()))
	row("Pattern", m.pattern)
	row("Particles", fmt.Sprintf("%s (%s)", humanize.Comma(int64(m.particles)), m.profile))
	row("Viewport", m.host.Viewport().String())
	row("Frame", humanize.Comma(int64(max(m.t, 0))))

	settled := 0.0
	if n := len(m.settledHist); n > 0 {
		settled = m.settledHist[n-1]
	}
	row("Settled", fmt.Sprintf("%s %3.0f%%", ProgressBar(settled, 12), settled*100))
	row("Speed", SparklineChart(m.speedHist, 18))

	if len(m.settledHist) > 1 {
		chart := asciigraph.Plot(m.settledHist,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Caption("settled fraction"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + st.value.Render(m.status) + "\n")
	}
	s.WriteString(st.help.Render("─────────────────────\n←→:Section SP:Pause Q:Quit\nG:Record T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  ←/H      - Previous section         ║
║  →/L      - Next section             ║
║  1-5      - Jump to section          ║
║  Space    - Pause/Resume             ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
