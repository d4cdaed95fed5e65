package anim

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// AntsConfig holds marching-ants outline configuration.
type AntsConfig struct {
	// Colors are the two alternating dash colors.
	Colors [2]core.Color

	// Dash is the length of one dash, in world units.
	Dash float64

	// Width is the stroke width, in world units.
	Width float64

	// Speed is how far the dashes march per second, in world units.
	Speed float64
}

// DefaultAntsConfig returns black and white ants.
func DefaultAntsConfig() AntsConfig {
	return AntsConfig{
		Colors: [2]core.Color{core.ColorBlack, core.ColorWhite},
		Dash:   4,
		Width:  1,
		Speed:  20,
	}
}

// Ants marches a two-tone dashed outline around a polygon.
type Ants struct {
	mu     sync.Mutex
	config AntsConfig

	polygon []core.Point
	shown   []core.Point // polygon the last repaint targeted
	painted bool

	phaseStart time.Time
	offset     float64
}

// NewAnts creates an outline around polygon.
func NewAnts(polygon []core.Point, config AntsConfig) *Ants {
	if !(config.Dash > 0) {
		config.Dash = DefaultAntsConfig().Dash
	}
	if !(config.Width > 0) {
		config.Width = DefaultAntsConfig().Width
	}
	return &Ants{config: config, polygon: slices.Clone(polygon)}
}

// SetPolygon replaces the outline. A different polygon restarts the phase.
func (a *Ants) SetPolygon(pts []core.Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.polygon = slices.Clone(pts)
}

// Polygon returns the outline.
func (a *Ants) Polygon() []core.Point {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.polygon)
}

// Offset returns the dash offset drawn by the last tick.
func (a *Ants) Offset() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset
}

// Region returns the world rectangle the last painted outline can touch.
func (a *Ants) Region() core.Rect {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.painted {
		return core.Rect{}
	}
	return a.region(a.shown)
}

func (a *Ants) region(pts []core.Point) core.Rect {
	if len(pts) == 0 {
		return core.Rect{}
	}
	return core.Bounds(pts).Expand(a.config.Width)
}

// Tick advances the dash offset with wall-clock time and redraws the
// outline's bounds.
func (a *Ants) Tick(now time.Time, p Painter) {
	a.mu.Lock()
	moved := !a.painted || !slices.Equal(a.shown, a.polygon)
	if moved {
		a.phaseStart = now
	}
	period := 2 * a.config.Dash
	a.offset = math.Mod(now.Sub(a.phaseStart).Seconds()*a.config.Speed, period)

	var old core.Rect
	if moved && a.painted {
		old = a.region(a.shown)
	}
	a.shown = slices.Clone(a.polygon)
	a.painted = true
	pts := a.shown
	region := a.region(pts)
	cfg, offset := a.config, a.offset
	a.mu.Unlock()

	if !old.IsEmpty() {
		p.Repaint(old, nil)
	}
	if len(pts) < 2 {
		return
	}

	p.Repaint(region, func(s backend.Surface) { stroke(s, pts, cfg, offset) })
}

// Paint draws the outline as it was left by the last tick.
func (a *Ants) Paint(s backend.Surface) {
	a.mu.Lock()
	pts, offset, painted := a.shown, a.offset, a.painted
	a.mu.Unlock()
	if painted && len(pts) >= 2 {
		stroke(s, pts, a.config, offset)
	}
}

// stroke draws both dash colors with complementary phase.
func stroke(s backend.Surface, pts []core.Point, cfg AntsConfig, offset float64) {
	dash := []float64{cfg.Dash, cfg.Dash}
	s.StrokePolygon(pts, backend.Stroke{Color: cfg.Colors[0], Width: cfg.Width, Dash: dash, Offset: -offset})
	s.StrokePolygon(pts, backend.Stroke{Color: cfg.Colors[1], Width: cfg.Width, Dash: dash, Offset: cfg.Dash - offset})
}
