package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks input and frame timing for one session.
type Metrics struct {
	// Full frames drawn by Render
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMaxNs   atomic.Int64

	// Input events handled
	eventCount   atomic.Uint64
	eventTotalNs atomic.Int64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Frames       uint64
	AvgFrameTime time.Duration
	MaxFrameTime time.Duration
	Events       uint64
	AvgEventTime time.Duration
	Uptime       time.Duration
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordFrame records the time taken to draw one frame.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)

	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordEvent records the time taken to handle one input event.
func (m *Metrics) RecordEvent(duration time.Duration) {
	m.eventCount.Add(1)
	m.eventTotalNs.Add(duration.Nanoseconds())
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Frames:       m.frameCount.Load(),
		MaxFrameTime: time.Duration(m.frameMaxNs.Load()),
		Events:       m.eventCount.Load(),
		Uptime:       time.Since(m.startTime),
	}
	if s.Frames > 0 {
		s.AvgFrameTime = time.Duration(m.frameTotalNs.Load() / int64(s.Frames))
	}
	if s.Events > 0 {
		s.AvgEventTime = time.Duration(m.eventTotalNs.Load() / int64(s.Events))
	}
	return s
}
