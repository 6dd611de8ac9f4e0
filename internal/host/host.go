package host

import (
	"log/slog"
	"sync"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
)

// Host owns the section index and viewport and keeps one particle run in
// step with them. A run is restarted only when either actually changes.
type Host struct {
	mu      sync.Mutex
	sys     *particle.System
	log     *slog.Logger
	dims    particle.Dimensions
	section int
	run     *particle.Run
}

func New(sys *particle.System, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	return &Host{sys: sys, log: log}
}

// SetViewport records the drawable size. An invalid size stops the run and
// returns the start error.
func (h *Host) SetViewport(d particle.Dimensions) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d == h.dims && h.run != nil {
		return nil
	}
	h.dims = d
	return h.restartLocked()
}

func (h *Host) SetSection(i int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	i = Clamp(i)
	if i == h.section && h.run != nil {
		return nil
	}
	h.section = i
	if !h.dims.Valid() {
		// nothing to draw on yet; SetViewport starts the run
		return nil
	}
	return h.restartLocked()
}

func (h *Host) Next() error { return h.SetSection(h.Section() + 1) }
func (h *Host) Prev() error { return h.SetSection(h.Section() - 1) }

// Scroll applies a scroll offset of the section container.
func (h *Host) Scroll(scrollLeft float64) error {
	h.mu.Lock()
	w := float64(h.dims.Width)
	h.mu.Unlock()
	return h.SetSection(SectionFromScroll(scrollLeft, w))
}

// Swipe applies a touch gesture; dx and dy are start minus end.
func (h *Host) Swipe(dx, dy float64) error {
	return h.SetSection(Swipe(h.Section(), dx, dy))
}

func (h *Host) restartLocked() error {
	run, err := h.sys.Start(h.dims, field.Pattern(h.section))
	if err != nil {
		h.run = nil
		return err
	}
	h.run = run
	h.log.Debug("host restarted", "section", SectionName(h.section), "viewport", h.dims.String())
	return nil
}

func (h *Host) Section() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.section
}

func (h *Host) Viewport() particle.Dimensions {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dims
}

// Run is the active run, or nil before a valid viewport is known.
func (h *Host) Run() *particle.Run {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.run
}

func (h *Host) Label() string { return FreqLabel(h.Section()) }

// Close stops the active run.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.run != nil {
		h.run.Cancel()
		h.run = nil
	}
}
