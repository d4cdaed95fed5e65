package renderer

import (
	"sync"
	"time"

	"github.com/dshills/gridcanvas/internal/renderer/anim"
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/background"
	"github.com/dshills/gridcanvas/internal/renderer/camera"
	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/frame"
	"github.com/dshills/gridcanvas/internal/renderer/glyph"
)

// LayoutProvider reports the grid geometry.
type LayoutProvider interface {
	// GridSize returns the number of rows and columns.
	GridSize() (rows, cols int)

	// CellSize returns the world size of one cell.
	CellSize() (width, height float64)
}

// ContentProvider supplies the glyphs to draw. The returned grid is read
// but never modified.
type ContentProvider interface {
	Grid() glyph.Grid
	Palette() core.Palette
}

// Logger is the logging the engine needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Options configures the engine.
type Options struct {
	// Camera
	Limits      camera.Limits
	Wheel       camera.WheelOptions
	DefaultZoom float64 // level for ZoomToDefault(0)

	// Background
	Background  core.Color
	Transparent bool
	Checker     background.Checker

	// Glyphs
	TextColor       core.Color // for color indices outside the palette
	ShowWhitespace  bool
	WhitespaceColor core.Color
	Opacity         float64
	Mask            func(row, col int) bool

	// Animation
	FrameInterval time.Duration
	Caret         anim.CaretConfig // Cell is filled in from the layout
	Ants          anim.AntsConfig
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Limits:          camera.DefaultLimits(),
		Wheel:           camera.DefaultWheelOptions(),
		DefaultZoom:     1,
		Background:      core.ColorBlack,
		Checker:         background.DefaultChecker(),
		TextColor:       core.ColorWhite,
		WhitespaceColor: core.ColorGray,
		FrameInterval:   frame.DefaultInterval,
		Caret:           anim.DefaultCaretConfig(camera.CellMetrics{}),
		Ants:            anim.DefaultAntsConfig(),
	}
}

// Engine is the rendering facade. It owns the camera, paints the
// background and glyph layers onto a surface, and runs the caret and
// outline animations over them.
type Engine struct {
	mu sync.Mutex

	opts    Options
	surface backend.Surface
	layout  LayoutProvider
	content ContentProvider
	log     Logger

	viewport *camera.Viewport
	sched    *anim.Scheduler

	caret   *anim.Handle
	outline *anim.Handle

	needsRedraw bool
	frameCount  uint64
}

// New creates an engine drawing onto surface. The engine has no usable
// camera until the first Resize. A nil logger discards messages.
func New(surface backend.Surface, layout LayoutProvider, content ContentProvider,
	pacer frame.Pacer, opts Options, log Logger) *Engine {
	if log == nil {
		log = nopLogger{}
	}
	if pacer == nil {
		pacer = frame.NewTicker()
	}
	e := &Engine{
		opts:        opts,
		surface:     surface,
		layout:      layout,
		content:     content,
		log:         log,
		viewport:    camera.NewViewport(opts.Limits),
		needsRedraw: true,
	}
	e.sched = anim.NewScheduler(pacer, e, opts.FrameInterval)
	return e
}

// Options returns the current options.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetOptions replaces the options. Zoom limits take effect at the next
// Resize; running animations keep the configuration they started with.
func (e *Engine) SetOptions(opts Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = opts
	e.viewport.SetLimits(opts.Limits)
	e.needsRedraw = true
}

// SetContent replaces the content provider.
func (e *Engine) SetContent(content ContentProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = content
	e.needsRedraw = true
}

// Viewport returns the camera controller.
func (e *Engine) Viewport() *camera.Viewport {
	return e.viewport
}

// Surface returns the surface the engine draws on.
func (e *Engine) Surface() backend.Surface {
	return e.surface
}

// Resize applies a new surface size and pixel ratio and re-reads the grid
// geometry. It completes before any later draw starts. Returns false when
// the geometry is degenerate.
func (e *Engine) Resize(width, height, dpr float64, reset bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	area := e.area()
	ok := e.viewport.Resize(width, height, dpr, area, reset)
	if !ok {
		e.log.Warn("degenerate geometry", "width", width, "height", height, "area", area)
	} else {
		e.log.Debug("resized", "width", width, "height", height, "dpr", dpr, "camera", e.viewport.Camera())
	}
	e.needsRedraw = true
	return ok
}

// cells returns the cell metrics from the layout.
func (e *Engine) cells() camera.CellMetrics {
	if e.layout == nil {
		return camera.CellMetrics{}
	}
	w, h := e.layout.CellSize()
	return camera.CellMetrics{Width: w, Height: h}
}

// area returns the drawable world rectangle.
func (e *Engine) area() core.Rect {
	if e.layout == nil {
		return core.Rect{}
	}
	rows, cols := e.layout.GridSize()
	return e.cells().Area(rows, cols)
}

// Camera returns the current camera.
func (e *Engine) Camera() camera.Camera {
	return e.viewport.Camera()
}

// Thresholds returns the legal zoom range.
func (e *Engine) Thresholds() (camera.Thresholds, bool) {
	return e.viewport.Thresholds()
}

// PanBoundaries returns the world rectangle the view is kept inside.
func (e *Engine) PanBoundaries() (core.Rect, bool) {
	return e.viewport.PanBoundaries()
}

// ScreenToWorld converts a screen point to world coordinates.
func (e *Engine) ScreenToWorld(p core.Point) core.Point {
	return e.viewport.ScreenToWorld(p)
}

// WorldToScreen converts a world point to screen coordinates.
func (e *Engine) WorldToScreen(p core.Point) core.Point {
	return e.viewport.WorldToScreen(p)
}

// CellAt returns the cell under a screen point.
func (e *Engine) CellAt(p core.Point) core.CellPos {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cells().CellAt(e.viewport.ScreenToWorld(p))
}

// CaretCellAt returns the caret position nearest a screen point.
func (e *Engine) CaretCellAt(p core.Point) core.CellPos {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cells().CaretCellAt(e.viewport.ScreenToWorld(p))
}

// ZoomDelta multiplies the zoom about a world point (nil for the view
// center). Returns the multiplier applied.
func (e *Engine) ZoomDelta(delta float64, target *core.Point) float64 {
	applied := e.viewport.ZoomDelta(delta, target)
	if applied != 1 {
		e.markDirty()
	}
	return applied
}

// ZoomWheel zooms for a wheel delta, keeping the world point under the
// screen point p fixed.
func (e *Engine) ZoomWheel(delta float64, p core.Point) float64 {
	e.mu.Lock()
	wheel := e.opts.Wheel
	e.mu.Unlock()

	target := e.viewport.ScreenToWorld(p)
	return e.ZoomDelta(camera.ZoomFactor(delta, wheel), &target)
}

// PanBy pans by a screen-pixel offset. Returns whether the camera moved.
func (e *Engine) PanBy(dx, dy float64) bool {
	return e.changed(e.viewport.PanBy(dx, dy))
}

// ZoomToFit zooms so the whole area is visible.
func (e *Engine) ZoomToFit() bool {
	return e.changed(e.viewport.ZoomToFit())
}

// ZoomToDefault centers the area at level, or at the configured default
// zoom when level is not positive.
func (e *Engine) ZoomToDefault(level float64) bool {
	if !(level > 0) {
		e.mu.Lock()
		level = e.opts.DefaultZoom
		e.mu.Unlock()
	}
	if !(level > 0) {
		level = 1
	}
	return e.changed(e.viewport.ZoomTo(level))
}

// ZoomOutMax zooms fully out.
func (e *Engine) ZoomOutMax() bool {
	return e.changed(e.viewport.ZoomOutMax())
}

func (e *Engine) changed(moved bool) bool {
	if moved {
		e.markDirty()
	}
	return moved
}

func (e *Engine) markDirty() {
	e.mu.Lock()
	e.needsRedraw = true
	e.mu.Unlock()
}

// NeedsRedraw reports whether the camera or content changed since the last
// Draw.
func (e *Engine) NeedsRedraw() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.needsRedraw
}

// FrameCount returns the number of full frames drawn.
func (e *Engine) FrameCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}
