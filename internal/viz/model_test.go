package viz

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sched"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	clock := sched.NewManual()
	sys := particle.NewSystem(clock, particle.WithSeed(7))
	m := NewModel(sys, clock, Options{OutDir: t.TempDir()})
	return update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ticks(m Model, n int) Model {
	for i := 0; i < n; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	return m
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t)

	// 100-44-6 columns by 30-3 rows
	if m.cols != 50 || m.rows != 27 {
		t.Fatalf("unexpected canvas %dx%d", m.cols, m.rows)
	}
	want := particle.Dimensions{Width: 50 * 2 * PixelScale, Height: 27 * 4 * PixelScale}
	if got := m.host.Viewport(); got != want {
		t.Errorf("expected viewport %v, got %v", want, got)
	}
	if m.host.Run() == nil {
		t.Fatal("expected a run after resize")
	}
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected a tick command")
	}

	m = ticks(m, 120)
	if m.t != 120 {
		t.Errorf("expected frame 120, got %d", m.t)
	}
	if len(m.settledHist) != 121 {
		t.Errorf("expected 121 samples including frame 0, got %d", len(m.settledHist))
	}
	if m.canvas.Count() == 0 {
		t.Error("expected particles on the braille canvas once faded in")
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	m = ticks(m, 3)

	m = update(m, key(" "))
	if m.running {
		t.Fatal("expected pause")
	}
	m = ticks(m, 5)
	if m.t != 3 {
		t.Errorf("paused model advanced to %d", m.t)
	}

	m = update(m, key(" "))
	m = ticks(m, 1)
	if m.t != 4 {
		t.Errorf("expected resume to frame 4, got %d", m.t)
	}
}

func TestModelSections(t *testing.T) {
	m := newTestModel(t)
	m = ticks(m, 10)
	first := m.runID

	m = update(m, key("right"))
	if m.host.Section() != 1 {
		t.Fatalf("expected section 1, got %d", m.host.Section())
	}
	if m.runID == first {
		t.Error("expected a new run for a new section")
	}
	if m.t != 0 || len(m.settledHist) != 1 {
		t.Errorf("expected histories reset, t=%d samples=%d", m.t, len(m.settledHist))
	}
	if m.fade.Value() != 0 {
		t.Error("expected the fade to restart")
	}

	m = update(m, key("5"))
	if m.host.Run().Pattern() != field.Lattice {
		t.Errorf("expected lattice, got %v", m.host.Run().Pattern())
	}

	m = update(m, key("left"))
	if m.host.Section() != 3 {
		t.Errorf("expected section 3, got %d", m.host.Section())
	}

	view := m.View()
	if !strings.Contains(view, "FREQ: 04/05") {
		t.Error("expected the frequency label in the view")
	}
}

func TestModelRecordGIF(t *testing.T) {
	m := newTestModel(t)

	m = update(m, key("g"))
	if !m.recording {
		t.Fatal("expected recording")
	}
	m = ticks(m, 4)
	if m.gif.Len() != 4 {
		t.Errorf("expected 4 frames, got %d", m.gif.Len())
	}

	m = update(m, key("g"))
	if m.recording {
		t.Error("expected recording to stop")
	}
	if !strings.HasPrefix(m.status, "saved ") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if _, err := os.Stat(strings.TrimPrefix(m.status, "saved ")); err != nil {
		t.Errorf("gif not written: %v", err)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.sys.State() != particle.Stopped {
		t.Error("expected quit to stop the system")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme("paper")

	NextTheme()
	if CurrentTheme.Name != "ink" {
		t.Errorf("expected ink, got %s", CurrentTheme.Name)
	}
	SetTheme("missing")
	if CurrentTheme.Name != "paper" {
		t.Error("unknown theme should fall back to paper")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 4); got != "────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	if got := SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if got := SparklineChart([]float64{9, 0, 1}, 2); len([]rune(got)) != 2 {
		t.Errorf("expected the last 2 values, got %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 4); got != "██░░" {
		t.Errorf("unexpected bar %q", got)
	}
	if got := ProgressBar(2, 3); got != "███" {
		t.Errorf("expected a clamped bar, got %q", got)
	}
}
