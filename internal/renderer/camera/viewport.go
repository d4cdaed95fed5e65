package camera

import (
	"math"
	"sync"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// Default boundary limits.
const (
	DefaultZoomInMax = 8.0
	DefaultOutRatio  = 1.4
	DefaultTolerance = 1e-4
)

// Limits configures the zoom range.
type Limits struct {
	// ZoomInMax is the fixed zoom ceiling, independent of content size.
	ZoomInMax float64

	// OutRatio (> 1) divides the fit zoom to get the zoom floor, leaving a
	// margin around the content when fully zoomed out.
	OutRatio float64

	// Tolerance is the rounding step used to decide that a zoom request
	// would not change anything.
	Tolerance float64
}

// DefaultLimits returns the default zoom limits.
func DefaultLimits() Limits {
	return Limits{
		ZoomInMax: DefaultZoomInMax,
		OutRatio:  DefaultOutRatio,
		Tolerance: DefaultTolerance,
	}
}

func (l Limits) normalized() Limits {
	if !(l.ZoomInMax > 0) || !core.IsFinite(l.ZoomInMax) {
		l.ZoomInMax = DefaultZoomInMax
	}
	if !(l.OutRatio > 1) || !core.IsFinite(l.OutRatio) {
		l.OutRatio = DefaultOutRatio
	}
	if !(l.Tolerance > 0) {
		l.Tolerance = DefaultTolerance
	}
	return l
}

// Thresholds is the legal zoom range for the current surface and content.
type Thresholds struct {
	Fit        float64 // zoom at which the area exactly fits on its tightest axis
	ZoomOutMin float64
	ZoomInMax  float64
}

// Clamp limits z to [ZoomOutMin, ZoomInMax].
func (t Thresholds) Clamp(z float64) float64 {
	return math.Min(t.ZoomInMax, math.Max(t.ZoomOutMin, z))
}

// FitZoom returns the zoom at which area exactly fits a surface of the given size.
// Returns 0 for degenerate input.
func FitZoom(width, height float64, area core.Rect) float64 {
	if !(width > 0) || !(height > 0) || area.IsEmpty() {
		return 0
	}
	fit := math.Min(width/area.Width(), height/area.Height())
	if !core.IsFinite(fit) {
		return 0
	}
	return fit
}

// ComputeThresholds derives the zoom range. ok is false when the geometry is
// degenerate and no range exists yet.
func ComputeThresholds(width, height float64, area core.Rect, limits Limits) (t Thresholds, ok bool) {
	limits = limits.normalized()
	fit := FitZoom(width, height, area)
	if fit <= 0 {
		return Thresholds{}, false
	}
	out := fit / limits.OutRatio
	if out >= limits.ZoomInMax {
		out = limits.ZoomInMax / limits.OutRatio
	}
	return Thresholds{Fit: fit, ZoomOutMin: out, ZoomInMax: limits.ZoomInMax}, true
}

// Viewport owns the camera for one drawing surface and keeps it inside the
// zoom range and pan boundaries.
type Viewport struct {
	mu sync.RWMutex

	limits Limits
	cam    Camera

	// Surface size in screen pixels
	width  float64
	height float64
	dpr    float64

	// Drawable area in world space
	area core.Rect

	thresholds    Thresholds
	hasThresholds bool

	// Snapshot of the view rect at maximum zoom-out
	bounds    core.Rect
	hasBounds bool
}

// NewViewport creates a viewport with an identity camera and no boundaries.
func NewViewport(limits Limits) *Viewport {
	return &Viewport{
		limits: limits.normalized(),
		cam:    Reset(),
		dpr:    1,
	}
}

// Camera returns a snapshot of the current camera.
func (v *Viewport) Camera() Camera {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cam
}

// Limits returns the zoom limits.
func (v *Viewport) Limits() Limits {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.limits
}

// SetLimits replaces the zoom limits. Call Resize afterwards to rebuild
// thresholds and boundaries.
func (v *Viewport) SetLimits(limits Limits) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.limits = limits.normalized()
}

// Size returns the surface size in screen pixels.
func (v *Viewport) Size() (width, height float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// PixelRatio returns the device pixel ratio.
func (v *Viewport) PixelRatio() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dpr
}

// Area returns the drawable area.
func (v *Viewport) Area() core.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.area
}

// Thresholds returns the zoom range; ok is false before a valid Resize.
func (v *Viewport) Thresholds() (t Thresholds, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.thresholds, v.hasThresholds
}

// PanBoundaries returns the pan clamp rectangle; ok is false before a valid Resize.
func (v *Viewport) PanBoundaries() (r core.Rect, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bounds, v.hasBounds
}

// ViewRect returns the world rectangle currently visible.
func (v *Viewport) ViewRect() core.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cam.ViewRect(v.width, v.height)
}

// Transform returns the current world-to-device transform.
func (v *Viewport) Transform() core.Affine {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cam.Transform(v.dpr)
}

// ScreenToWorld converts a screen point with the current camera.
func (v *Viewport) ScreenToWorld(p core.Point) core.Point {
	return v.Camera().ScreenToWorld(p)
}

// WorldToScreen converts a world point with the current camera.
func (v *Viewport) WorldToScreen(p core.Point) core.Point {
	return v.Camera().WorldToScreen(p)
}

// Resize records new surface and content geometry, recomputes the zoom
// range and rebuilds the pan boundaries. With reset the camera is left
// fully zoomed out and centered; otherwise the prior camera is restored and
// clamped. Returns false if the geometry is degenerate, in which case
// boundaries are cleared and clamping is skipped until the next Resize.
func (v *Viewport) Resize(width, height, dpr float64, area core.Rect, reset bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !(dpr > 0) || !core.IsFinite(dpr) {
		dpr = 1
	}
	v.width = width
	v.height = height
	v.dpr = dpr
	v.area = area

	t, ok := ComputeThresholds(width, height, area, v.limits)
	v.thresholds = t
	v.hasThresholds = ok
	if !ok {
		v.hasBounds = false
		if reset || !v.cam.IsValid() {
			v.cam = Reset()
		}
		return false
	}

	prev := v.cam
	v.zoomTo(t.ZoomOutMin)
	v.bounds = v.cam.ViewRect(width, height)
	v.hasBounds = true

	if !reset && prev.IsValid() {
		v.cam = prev
		if z := t.Clamp(v.cam.Zoom); z != v.cam.Zoom {
			v.zoomAbout(z, v.cam.ViewRect(width, height).Center())
		}
	}
	v.clampPan()
	return true
}

// ZoomDelta multiplies the zoom by delta, keeping target (a world point)
// fixed on screen. A nil target means the center of the current view.
// Returns the multiplier actually applied, which is 1 when the request is
// absorbed as a no-op.
func (v *Viewport) ZoomDelta(delta float64, target *core.Point) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.hasThresholds || !(delta > 0) || !core.IsFinite(delta) {
		return 1
	}

	old := v.cam.Zoom
	next := v.thresholds.Clamp(old * delta)
	if math.Round(next/v.limits.Tolerance) == math.Round(old/v.limits.Tolerance) {
		return 1
	}
	delta = next / old

	var focus core.Point
	if target != nil && target.IsFinite() {
		focus = *target
	} else {
		focus = v.cam.ViewRect(v.width, v.height).Center()
	}

	v.zoomAbout(next, focus)
	v.clampPan()
	return delta
}

// ZoomTo resets the camera and centers the drawable area at the given zoom,
// clamped to the zoom range. Returns false before a valid Resize.
func (v *Viewport) ZoomTo(level float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.hasThresholds || !core.IsFinite(level) {
		return false
	}
	v.zoomTo(level)
	v.clampPan()
	return true
}

// ZoomToFit zooms so the whole drawable area fits the surface.
func (v *Viewport) ZoomToFit() bool {
	t, ok := v.Thresholds()
	if !ok {
		return false
	}
	return v.ZoomTo(t.Fit)
}

// ZoomOutMax zooms all the way out.
func (v *Viewport) ZoomOutMax() bool {
	t, ok := v.Thresholds()
	if !ok {
		return false
	}
	return v.ZoomTo(t.ZoomOutMin)
}

// PanBy moves the camera by a screen-pixel offset, then clamps.
// Returns true if the camera moved.
func (v *Viewport) PanBy(dx, dy float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !core.IsFinite(dx) || !core.IsFinite(dy) {
		return false
	}
	prev := v.cam
	v.cam.PanX += dx
	v.cam.PanY += dy
	v.clampPan()
	return moved(prev, v.cam)
}

// SetCamera replaces the camera, then applies the zoom range and pan clamp.
// Invalid cameras are ignored.
func (v *Viewport) SetCamera(c Camera) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !c.IsValid() {
		return false
	}
	v.cam = c
	if v.hasThresholds {
		if z := v.thresholds.Clamp(c.Zoom); z != c.Zoom {
			v.zoomAbout(z, v.cam.ViewRect(v.width, v.height).Center())
		}
	}
	v.clampPan()
	return true
}

// ClampPan shifts the camera back inside the pan boundaries.
// Returns true if the camera moved.
func (v *Viewport) ClampPan() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clampPan()
}

// zoomTo resets the camera and centers the area at level (must hold lock).
func (v *Viewport) zoomTo(level float64) {
	if v.hasThresholds {
		level = v.thresholds.Clamp(level)
	}
	center := v.area.Center()
	v.cam = Camera{
		Zoom: level,
		PanX: center.X*level - v.width/2,
		PanY: center.Y*level - v.height/2,
	}
}

// zoomAbout sets the zoom keeping focus at the same screen position (must hold lock).
func (v *Viewport) zoomAbout(zoom float64, focus core.Point) {
	screen := v.cam.WorldToScreen(focus)
	v.cam.Zoom = zoom
	v.cam.PanX = focus.X*zoom - screen.X
	v.cam.PanY = focus.Y*zoom - screen.Y
}

// clampPan shifts the view by exactly the amount each edge overshoots the
// boundaries (must hold lock).
func (v *Viewport) clampPan() bool {
	if !v.hasBounds || !v.cam.IsValid() {
		return false
	}
	view := v.cam.ViewRect(v.width, v.height)
	dx := axisShift(view.Min.X, view.Max.X, v.bounds.Min.X, v.bounds.Max.X)
	dy := axisShift(view.Min.Y, view.Max.Y, v.bounds.Min.Y, v.bounds.Max.Y)
	if dx == 0 && dy == 0 {
		return false
	}
	v.cam.PanX += dx * v.cam.Zoom
	v.cam.PanY += dy * v.cam.Zoom
	return true
}

// moved reports whether two cameras differ by more than float noise.
func moved(a, b Camera) bool {
	const noise = 1e-9
	return math.Abs(a.Zoom-b.Zoom) > noise ||
		math.Abs(a.PanX-b.PanX) > noise ||
		math.Abs(a.PanY-b.PanY) > noise
}

// axisShift returns the world offset that brings [lo, hi] inside [bLo, bHi].
// A span wider than the boundary is centered on it.
func axisShift(lo, hi, bLo, bHi float64) float64 {
	if hi-lo > bHi-bLo {
		return (bLo+bHi)/2 - (lo+hi)/2
	}
	if lo < bLo {
		return bLo - lo
	}
	if hi > bHi {
		return bHi - hi
	}
	return 0
}
