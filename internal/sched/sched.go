// Package sched abstracts the host's per-frame callback so the simulation
// can run against a real clock or be ticked synchronously.
package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFPS approximates a display refresh.
const DefaultFPS = 60

// Scheduler calls fn roughly once per display refresh until the returned
// handle is canceled.
type Scheduler interface {
	Schedule(fn func()) Handle
}

// Handle cancels a scheduled callback. Cancel is idempotent and never
// blocks: a call already in flight when Cancel returns may still complete,
// but no further call starts. Callers that need a hard stop check their own
// state inside fn.
type Handle interface {
	Cancel()
}

// Ticker drives callbacks from a time.Ticker on a dedicated goroutine.
// Invocations of one callback never overlap.
type Ticker struct {
	interval time.Duration
}

func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Ticker{interval: time.Second / time.Duration(fps)}
}

func (t *Ticker) Interval() time.Duration { return t.interval }

type tickerHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

// Done is closed once the handle is canceled.
func (h *tickerHandle) Done() <-chan struct{} { return h.done }

func (t *Ticker) Schedule(fn func()) Handle {
	h := &tickerHandle{done: make(chan struct{})}
	go func() {
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-tk.C:
			}
			// a tick and a cancel can be ready together; a Cancel landing
			// after this check lets the current call through
			select {
			case <-h.done:
				return
			default:
			}
			fn()
		}
	}()
	return h
}

// Manual runs callbacks only when Tick is called, on the caller's goroutine.
// Hosts with their own frame loop (bubbletea, raylib) and tests use it.
type Manual struct {
	mu      sync.Mutex
	entries []*manualEntry
}

type manualEntry struct {
	fn       func()
	canceled atomic.Bool
}

func (e *manualEntry) Cancel() { e.canceled.Store(true) }

func NewManual() *Manual { return &Manual{} }

func (m *Manual) Schedule(fn func()) Handle {
	e := &manualEntry{fn: fn}
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return e
}

// Tick invokes every live callback once and returns how many ran. A
// callback canceled earlier in the same tick is skipped.
func (m *Manual) Tick() int {
	m.mu.Lock()
	live := make([]*manualEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.canceled.Load() {
			live = append(live, e)
		}
	}
	m.entries = live
	snapshot := append([]*manualEntry(nil), live...)
	m.mu.Unlock()

	ran := 0
	for _, e := range snapshot {
		if e.canceled.Load() {
			continue
		}
		e.fn()
		ran++
	}
	return ran
}

// Pending reports callbacks that have not been canceled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if !e.canceled.Load() {
			n++
		}
	}
	return n
}
