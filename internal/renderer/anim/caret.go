package anim

import (
	"sync"
	"time"

	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/camera"
	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// CaretStyle represents the visual appearance of the caret.
type CaretStyle uint8

const (
	// CaretBeam is a thin vertical bar at the cell's left edge.
	CaretBeam CaretStyle = iota
	// CaretBlock is a translucent block over the whole cell.
	CaretBlock
	// CaretUnderline is a bar along the bottom of the cell.
	CaretUnderline
)

// ParseCaretStyle converts a name to a caret style. Unknown names are a beam.
func ParseCaretStyle(s string) CaretStyle {
	switch s {
	case "block":
		return CaretBlock
	case "underline", "underscore":
		return CaretUnderline
	default:
		return CaretBeam
	}
}

// String returns the style name.
func (s CaretStyle) String() string {
	switch s {
	case CaretBlock:
		return "block"
	case CaretUnderline:
		return "underline"
	default:
		return "beam"
	}
}

// DefaultCaretCycle is one full on/off blink period.
const DefaultCaretCycle = 800 * time.Millisecond

// CaretConfig holds caret configuration.
type CaretConfig struct {
	Style CaretStyle
	Color core.Color
	Cell  camera.CellMetrics

	// Cycle is the full blink period; the caret shows for the first half.
	Cycle time.Duration
}

// DefaultCaretConfig returns sensible default caret configuration.
func DefaultCaretConfig(cell camera.CellMetrics) CaretConfig {
	return CaretConfig{
		Style: CaretBeam,
		Color: core.ColorWhite,
		Cell:  cell,
		Cycle: DefaultCaretCycle,
	}
}

type caretDrawFunc func(s backend.Surface, cell core.Rect, c core.Color)

// caretDrawers holds one draw function per style.
var caretDrawers = map[CaretStyle]caretDrawFunc{
	CaretBeam: func(s backend.Surface, cell core.Rect, c core.Color) {
		w := max(cell.Width()*0.12, 1)
		s.FillRect(core.RectXYWH(cell.Min.X, cell.Min.Y, w, cell.Height()), c)
	},
	CaretBlock: func(s backend.Surface, cell core.Rect, c core.Color) {
		s.FillRect(cell, c.WithAlpha(0.5))
	},
	CaretUnderline: func(s backend.Surface, cell core.Rect, c core.Color) {
		h := max(cell.Height()*0.12, 1)
		s.FillRect(core.RectXYWH(cell.Min.X, cell.Max.Y-h, cell.Width(), h), c)
	},
}

// Caret blinks a caret over one grid cell.
type Caret struct {
	mu     sync.Mutex
	config CaretConfig
	draw   caretDrawFunc

	target  core.CellPos
	shown   core.CellPos // cell the last repaint targeted
	painted bool

	phaseStart time.Time
	visible    bool
}

// NewCaret creates a caret at target. The style's draw function is chosen
// here and not looked up again.
func NewCaret(target core.CellPos, config CaretConfig) *Caret {
	if config.Cycle <= 0 {
		config.Cycle = DefaultCaretCycle
	}
	draw, ok := caretDrawers[config.Style]
	if !ok {
		draw = caretDrawers[CaretBeam]
	}
	return &Caret{config: config, draw: draw, target: target}
}

// SetTarget moves the caret. The next tick shows it immediately.
func (c *Caret) SetTarget(pos core.CellPos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = pos
}

// Target returns the caret cell.
func (c *Caret) Target() core.CellPos {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Visible reports whether the caret was drawn by the last tick.
func (c *Caret) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Style returns the caret style.
func (c *Caret) Style() CaretStyle {
	return c.config.Style
}

// Region returns the world rectangle of the cell the caret was last
// painted in.
func (c *Caret) Region() core.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.painted {
		return core.Rect{}
	}
	return c.config.Cell.CellRect(c.shown)
}

// Paint draws the caret as it was left by the last tick. Nothing is drawn
// before the first tick or while the caret is in its off phase.
func (c *Caret) Paint(s backend.Surface) {
	c.mu.Lock()
	show := c.painted && c.visible
	region := c.config.Cell.CellRect(c.shown)
	c.mu.Unlock()
	if show {
		c.draw(s, region, c.config.Color)
	}
}

// Tick advances the blink. A new target restarts the phase so the caret is
// on. Only the caret cell is repainted, and only when something changed.
func (c *Caret) Tick(now time.Time, p Painter) {
	c.mu.Lock()
	moved := !c.painted || c.shown != c.target
	if moved {
		c.phaseStart = now
	}
	elapsed := now.Sub(c.phaseStart) % c.config.Cycle
	visible := elapsed < c.config.Cycle/2
	changed := moved || visible != c.visible

	old, hadOld := c.shown, c.painted && moved
	c.shown = c.target
	c.painted = true
	c.visible = visible
	region := c.config.Cell.CellRect(c.target)
	draw, color := c.draw, c.config.Color
	c.mu.Unlock()

	if !changed {
		return
	}
	if hadOld {
		p.Repaint(c.config.Cell.CellRect(old), nil)
	}
	var overlay func(backend.Surface)
	if visible {
		overlay = func(s backend.Surface) { draw(s, region, color) }
	}
	p.Repaint(region, overlay)
}
