// Package frame provides the frame-pacing primitive that animations run on:
// a cancelable callback repeated at a fixed interval.
package frame

import (
	"sort"
	"sync"
	"time"
)

// DefaultInterval is roughly one display frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Cancel stops a subscription. It is safe to call more than once.
type Cancel func()

// Pacer runs callbacks roughly every interval until canceled.
type Pacer interface {
	Every(interval time.Duration, fn func(now time.Time)) Cancel
}

// Ticker is a Pacer backed by a time.Ticker per subscription. Each
// subscription's callbacks run on its own goroutine, one at a time.
type Ticker struct{}

// NewTicker returns a wall-clock pacer.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Every starts a goroutine that calls fn on every tick until canceled.
// A callback already running when Cancel is called completes; no further
// callbacks start.
func (Ticker) Every(interval time.Duration, fn func(now time.Time)) Cancel {
	if interval <= 0 {
		interval = DefaultInterval
	}
	done := make(chan struct{})
	tick := time.NewTicker(interval)

	go func() {
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-tick.C:
				select {
				case <-done:
					return
				default:
				}
				fn(now)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// Manual is a Pacer driven by Advance, for tests.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	subs   map[int]*manualSub
}

type manualSub struct {
	id       int
	interval time.Duration
	next     time.Time
	fn       func(time.Time)
}

// NewManual creates a manual pacer whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:  start,
		subs: make(map[int]*manualSub),
	}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every registers fn. The first call happens one interval after now.
func (m *Manual) Every(interval time.Duration, fn func(now time.Time)) Cancel {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.subs[id] = &manualSub{id: id, interval: interval, next: m.now.Add(interval), fn: fn}

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Active returns the number of live subscriptions.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Advance moves the clock forward by d, firing every tick that falls due in
// time order. Callbacks run on the caller's goroutine without the lock held,
// so they may subscribe or cancel.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sub := m.nextDue(target)
		if sub == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = sub.next
		sub.next = sub.next.Add(sub.interval)
		now, fn := m.now, sub.fn
		m.mu.Unlock()

		fn(now)
	}
}

// nextDue returns the subscription with the earliest tick at or before
// target, or nil.
func (m *Manual) nextDue(target time.Time) *manualSub {
	var due []*manualSub
	for _, s := range m.subs {
		if !s.next.After(target) {
			due = append(due, s)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].next.Equal(due[j].next) {
			return due[i].id < due[j].id
		}
		return due[i].next.Before(due[j].next)
	})
	return due[0]
}
