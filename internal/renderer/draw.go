package renderer

import (
	"slices"

	"github.com/dshills/gridcanvas/internal/renderer/anim"
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/background"
	"github.com/dshills/gridcanvas/internal/renderer/camera"
	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/glyph"
)

// Render draws a full frame if anything changed since the last one.
// Returns whether a frame was drawn.
func (e *Engine) Render() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.needsRedraw {
		return false
	}
	e.draw()
	return true
}

// Draw repaints the whole surface: clear, background, glyphs, then the
// live animation overlays.
func (e *Engine) Draw() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draw()
}

// DrawBackground switches between the flat background (false) and the
// transparency checkerboard (true) and redraws.
func (e *Engine) DrawBackground(transparent bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Transparent = transparent
	e.draw()
}

// draw renders a full frame (must hold lock).
func (e *Engine) draw() {
	s := e.surface
	clearSurface(s)
	e.needsRedraw = false

	if !e.ready() {
		s.Flush()
		return
	}

	view := e.viewport.ViewRect()
	runs := e.paintContent(s, e.cells().CellsIn(view))
	backend.WithTransform(s, e.worldTransform(), func() {
		e.sched.Paint(s)
	})
	s.Flush()

	e.frameCount++
	e.log.Debug("frame", "count", e.frameCount, "runs", runs, "camera", e.viewport.Camera())
}

// Compose repaints one region for an animation: the content under it, the
// caller's overlay, and any other live overlay crossing it. Everything is
// clipped to the region.
func (e *Engine) Compose(kind anim.Kind, region core.Rect, overlay func(s backend.Surface)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compose(kind, region, overlay)
}

func (e *Engine) compose(kind anim.Kind, region core.Rect, overlay func(s backend.Surface)) {
	if region.IsEmpty() || !e.ready() {
		return
	}
	s := e.surface
	world := e.worldTransform()

	backend.Scoped(s, func() {
		s.SetTransform(world)
		s.Clip(region)
		s.ClearRect(region)

		window := e.cells().CellsIn(region)
		// A wide glyph starting one column to the left can reach into the region.
		window.Left--
		e.paintContent(s, window)

		for _, h := range e.sched.Live() {
			if h.Kind() == kind {
				if overlay != nil {
					overlay(s)
				}
				continue
			}
			if !h.Stopped() {
				h.Effect().Paint(s)
			}
		}
	})
	s.Flush()
}

// paintContent draws the background and the glyphs inside window. Returns
// the number of text calls.
func (e *Engine) paintContent(s backend.Surface, window core.CellRect) int {
	background.Draw(s, background.Params{
		Camera:      e.viewport.Camera(),
		DPR:         e.viewport.PixelRatio(),
		Area:        e.area(),
		Transparent: e.opts.Transparent,
		Color:       e.opts.Background,
		Checker:     e.opts.Checker,
	})

	if e.content == nil || window.IsEmpty() {
		return 0
	}
	runs := glyph.Batch(e.content.Grid(), glyph.BatchOptions{
		Mask:           e.opts.Mask,
		ShowWhitespace: e.opts.ShowWhitespace,
		Window:         window,
	})
	if len(runs) == 0 {
		return 0
	}

	var calls int
	backend.WithTransform(s, e.worldTransform(), func() {
		calls = glyph.Draw(s, runs, glyph.DrawOptions{
			Cell:            e.cells(),
			Palette:         e.content.Palette(),
			Fallback:        e.opts.TextColor,
			WhitespaceColor: e.opts.WhitespaceColor,
			Opacity:         e.opts.Opacity,
		})
	})
	return calls
}

// ready reports whether a camera and cell geometry exist to draw with.
func (e *Engine) ready() bool {
	_, ok := e.viewport.Thresholds()
	return ok && e.cells().IsValid()
}

func (e *Engine) worldTransform() core.Affine {
	return e.viewport.Camera().Transform(e.viewport.PixelRatio())
}

func clearSurface(s backend.Surface) {
	backend.WithTransform(s, core.Identity, func() {
		s.ClearRect(backend.DeviceBounds(s))
	})
}

// StartCaret starts a blinking caret at target, replacing any running
// caret.
func (e *Engine) StartCaret(target core.CellPos, style anim.CaretStyle) *anim.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopEffect(e.caret)
	cfg := e.opts.Caret
	cfg.Style = style
	cfg.Cell = e.cells()
	e.caret = e.sched.Start(anim.KindCaret, anim.NewCaret(target, cfg))
	e.log.Debug("caret started", "id", e.caret.ID(), "target", target, "style", style)
	return e.caret
}

// MoveCaret moves the running caret. The move shows on the next frame.
// Returns false if no caret is running.
func (e *Engine) MoveCaret(target core.CellPos) bool {
	e.mu.Lock()
	h := e.caret
	e.mu.Unlock()
	if h.Stopped() {
		return false
	}
	h.Effect().(*anim.Caret).SetTarget(target)
	return true
}

// Caret returns the running caret's handle, or nil.
func (e *Engine) Caret() *anim.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.caret.Stopped() {
		return nil
	}
	return e.caret
}

// StopCaret stops the caret and restores the cell under it.
func (e *Engine) StopCaret() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopEffect(e.caret)
	e.caret = nil
}

// StartOutline starts a marching-ants outline around polygon (world
// coordinates), replacing any running outline.
func (e *Engine) StartOutline(polygon []core.Point) *anim.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopEffect(e.outline)
	e.outline = e.sched.Start(anim.KindOutline, anim.NewAnts(slices.Clone(polygon), e.opts.Ants))
	e.log.Debug("outline started", "id", e.outline.ID(), "points", len(polygon))
	return e.outline
}

// SetOutline replaces the running outline's polygon. Returns false if no
// outline is running.
func (e *Engine) SetOutline(polygon []core.Point) bool {
	e.mu.Lock()
	h := e.outline
	e.mu.Unlock()
	if h.Stopped() {
		return false
	}
	h.Effect().(*anim.Ants).SetPolygon(polygon)
	return true
}

// Outline returns the running outline's handle, or nil.
func (e *Engine) Outline() *anim.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outline.Stopped() {
		return nil
	}
	return e.outline
}

// StopOutline stops the outline and restores the content under it.
func (e *Engine) StopOutline() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopEffect(e.outline)
	e.outline = nil
}

// stopEffect stops h and repaints what it covered (must hold lock).
func (e *Engine) stopEffect(h *anim.Handle) {
	if h.Stopped() {
		return
	}
	region := h.Effect().Region()
	h.Stop()
	e.compose(h.Kind(), region, nil)
	e.log.Debug("effect stopped", "id", h.ID(), "kind", h.Kind())
}

// StopAnimations stops every animation and leaves the surface as drawn.
func (e *Engine) StopAnimations() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAnimations()
}

func (e *Engine) stopAnimations() {
	e.sched.StopAll()
	e.caret = nil
	e.outline = nil
}

// Clear stops every animation and clears the surface.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAnimations()
	clearSurface(e.surface)
	e.surface.Flush()
	e.needsRedraw = true
}

// CellMetrics returns the current cell geometry.
func (e *Engine) CellMetrics() camera.CellMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cells()
}

// Area returns the drawable world rectangle.
func (e *Engine) Area() core.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.area()
}
