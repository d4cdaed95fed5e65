// Package anim drives time-based overlays, a blinking caret and a
// marching-ants outline, on a single frame-paced loop.
//
// Each running effect is owned through a Handle. Starting an effect of a
// kind that is already running stops the previous handle first, so at most
// one effect per kind is active. Effects repaint only their own region
// through a Painter, which the scheduler forwards to a Compositor tagged
// with the effect's kind.
package anim

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/frame"
)

// Kind names an effect slot.
type Kind int

const (
	KindCaret Kind = iota
	KindOutline
)

// String returns the slot name.
func (k Kind) String() string {
	switch k {
	case KindCaret:
		return "caret"
	case KindOutline:
		return "outline"
	default:
		return "unknown"
	}
}

// Painter restores the content under a region and then draws an overlay
// on top of it, clipped to the region. A nil overlay only restores.
type Painter interface {
	Repaint(region core.Rect, overlay func(s backend.Surface))
}

// Compositor receives repaints from the scheduler. The kind identifies the
// effect whose overlay is passed, so the compositor can redraw the other
// live effects in the region without drawing this one twice.
type Compositor interface {
	Compose(kind Kind, region core.Rect, overlay func(s backend.Surface))
}

// Effect is advanced once per frame while its handle is live.
type Effect interface {
	Tick(now time.Time, p Painter)

	// Paint draws the effect as of its last tick.
	Paint(s backend.Surface)

	// Region returns the world rectangle the last tick painted, or an empty
	// rectangle before the first tick.
	Region() core.Rect
}

// Handle is the caller's token for a running effect.
type Handle struct {
	id      uuid.UUID
	kind    Kind
	effect  Effect
	stopped atomic.Bool
	sched   *Scheduler
}

// ID returns the handle's unique ID.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Kind returns the effect slot.
func (h *Handle) Kind() Kind {
	return h.kind
}

// Effect returns the effect the handle drives.
func (h *Handle) Effect() Effect {
	return h.effect
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	return h == nil || h.stopped.Load()
}

// Stop ends the effect. After Stop returns the effect is never ticked
// again. Stopping twice, or stopping a nil or superseded handle, is a no-op.
func (h *Handle) Stop() {
	if h == nil || !h.stopped.CompareAndSwap(false, true) {
		return
	}
	h.sched.remove(h)
}

// Scheduler multiplexes effects onto one pacer subscription. The
// subscription is taken when the first effect starts and released when
// the last one stops.
type Scheduler struct {
	mu       sync.Mutex
	pacer    frame.Pacer
	interval time.Duration
	out      Compositor
	active   map[Kind]*Handle
	cancel   frame.Cancel
}

// NewScheduler creates a scheduler that paints through c.
func NewScheduler(pacer frame.Pacer, c Compositor, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = frame.DefaultInterval
	}
	return &Scheduler{
		pacer:    pacer,
		interval: interval,
		out:      c,
		active:   make(map[Kind]*Handle),
	}
}

// Start runs e in the given slot, stopping whatever ran there before.
func (s *Scheduler) Start(kind Kind, e Effect) *Handle {
	s.mu.Lock()
	prev := s.active[kind]
	s.mu.Unlock()
	prev.Stop()

	h := &Handle{id: uuid.New(), kind: kind, effect: e, sched: s}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[kind] = h
	if s.cancel == nil {
		s.cancel = s.pacer.Every(s.interval, s.tick)
	}
	return h
}

// Active returns the live handle for a slot, or nil.
func (s *Scheduler) Active(kind Kind) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[kind]
}

// Running returns the number of live effects.
func (s *Scheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Live returns the live handles ordered by kind.
func (s *Scheduler) Live() []*Handle {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.active))
	for _, h := range s.active {
		handles = append(handles, h)
	}
	s.mu.Unlock()
	sort.Slice(handles, func(i, j int) bool { return handles[i].kind < handles[j].kind })
	return handles
}

// Paint draws every live effect in kind order.
func (s *Scheduler) Paint(surface backend.Surface) {
	for _, h := range s.Live() {
		if !h.Stopped() {
			h.effect.Paint(surface)
		}
	}
}

// StopAll stops every live effect.
func (s *Scheduler) StopAll() {
	for _, h := range s.Live() {
		h.Stop()
	}
}

func (s *Scheduler) remove(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[h.kind] == h {
		delete(s.active, h.kind)
	}
	if len(s.active) == 0 && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) tick(now time.Time) {
	for _, h := range s.Live() {
		if h.Stopped() {
			continue
		}
		h.effect.Tick(now, guard{h: h, out: s.out})
	}
}

// guard tags repaints with the handle's kind and drops the overlay of a
// handle stopped while its tick was running.
type guard struct {
	h   *Handle
	out Compositor
}

func (g guard) Repaint(region core.Rect, overlay func(s backend.Surface)) {
	if overlay == nil {
		g.out.Compose(g.h.kind, region, nil)
		return
	}
	g.out.Compose(g.h.kind, region, func(s backend.Surface) {
		if g.h.Stopped() {
			return
		}
		overlay(s)
	})
}
