// Package backend provides drawing surface abstraction for the renderer.
//
// A Surface is a 2D pixel canvas with a save/restore state stack. Drawing
// calls take world coordinates that the current transform maps to device
// pixels. Three implementations are provided: Recorder logs calls for
// tests, Raster draws into an RGBA image, and Terminal maps virtual pixels
// onto terminal cells.
package backend

import "github.com/dshills/gridcanvas/internal/renderer/core"

// Font selects the monospace face used by FillText. Both sizes are in the
// coordinate space of the current transform.
type Font struct {
	// Advance is the horizontal distance between consecutive glyphs.
	Advance float64

	// LineHeight is the height of one text row.
	LineHeight float64
}

// Stroke describes how a polygon outline is drawn.
type Stroke struct {
	Color core.Color
	Width float64

	// Dash alternates on/off lengths. Empty means a solid line.
	Dash []float64

	// Offset shifts the dash pattern along the path.
	Offset float64
}

// Surface is the host drawing surface.
type Surface interface {
	// Size returns the surface size in screen pixels.
	Size() (width, height float64)

	// PixelRatio returns device pixels per screen pixel.
	PixelRatio() float64

	// Save pushes the transform, clip, alpha and font.
	Save()

	// Restore pops the state pushed by the matching Save.
	// Restore without a matching Save is ignored.
	Restore()

	// SetTransform replaces the world-to-device transform.
	SetTransform(m core.Affine)

	// Transform returns the current world-to-device transform.
	Transform() core.Affine

	// Clip intersects the clip region with r under the current transform.
	Clip(r core.Rect)

	// ClipBounds returns the current clip rectangle in device pixels.
	ClipBounds() core.Rect

	// SetAlpha sets the global alpha applied to fills, text and strokes.
	SetAlpha(a float64)

	// SetFont selects the text metrics for FillText.
	SetFont(f Font)

	// FillRect paints r with c.
	FillRect(r core.Rect, c core.Color)

	// ClearRect makes r fully transparent.
	ClearRect(r core.Rect)

	// FillText draws text with its left edge at x and its vertical middle at y.
	FillText(text string, x, y float64, c core.Color)

	// StrokePolygon outlines a closed polygon.
	StrokePolygon(pts []core.Point, s Stroke)

	// Flush makes pending drawing visible.
	Flush()
}

// Scoped runs fn between Save and Restore. The state is restored even if fn
// panics.
func Scoped(s Surface, fn func()) {
	s.Save()
	defer s.Restore()
	fn()
}

// WithTransform runs fn with m as the current transform and then restores
// the prior state.
func WithTransform(s Surface, m core.Affine, fn func()) {
	Scoped(s, func() {
		s.SetTransform(m)
		fn()
	})
}

// Bounds returns the full surface rectangle in screen pixels.
func Bounds(s Surface) core.Rect {
	w, h := s.Size()
	return core.RectXYWH(0, 0, w, h)
}

// DeviceBounds returns the full surface rectangle in device pixels.
func DeviceBounds(s Surface) core.Rect {
	w, h := s.Size()
	dpr := s.PixelRatio()
	return core.RectXYWH(0, 0, w*dpr, h*dpr)
}

// state is the save/restore unit shared by the concrete surfaces.
type state struct {
	transform core.Affine
	clip      core.Rect // device pixels
	alpha     float64
	font      Font
}

func defaultState(deviceW, deviceH float64) state {
	return state{
		transform: core.Identity,
		clip:      core.RectXYWH(0, 0, deviceW, deviceH),
		alpha:     1,
		font:      Font{Advance: 8, LineHeight: 16},
	}
}

// stack is a state stack with the current state on top.
type stack struct {
	cur   state
	saved []state
}

func (s *stack) save() {
	s.saved = append(s.saved, s.cur)
}

func (s *stack) restore() {
	if len(s.saved) == 0 {
		return
	}
	s.cur = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

func (s *stack) clip(r core.Rect) {
	s.cur.clip = s.cur.clip.Intersection(s.cur.transform.ApplyRect(r))
}

func (s *stack) setAlpha(a float64) {
	if !core.IsFinite(a) {
		return
	}
	s.cur.alpha = min(1, max(0, a))
}

// depth returns the number of unmatched Save calls.
func (s *stack) depth() int {
	return len(s.saved)
}
