// Package camera provides the zoom/pan camera, coordinate conversion between
// screen, world and cell space, and the zoom/pan boundary engine.
//
// Screen coordinates are logical surface pixels before the camera is applied.
// World coordinates are the zoom-independent space the glyph grid lives in.
// Device pixels are screen pixels multiplied by the surface pixel ratio.
package camera

import (
	"math"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// Camera is a zoom factor plus a pan offset in screen pixels.
type Camera struct {
	Zoom float64
	PanX float64
	PanY float64
}

// Reset returns the identity camera.
func Reset() Camera {
	return Camera{Zoom: 1}
}

// IsValid reports whether the camera can be used for coordinate math.
func (c Camera) IsValid() bool {
	return c.Zoom > 0 && core.IsFinite(c.Zoom) && core.IsFinite(c.PanX) && core.IsFinite(c.PanY)
}

// ScreenToWorld converts a screen point to world coordinates.
func (c Camera) ScreenToWorld(p core.Point) core.Point {
	return core.Point{
		X: (p.X + c.PanX) / c.Zoom,
		Y: (p.Y + c.PanY) / c.Zoom,
	}
}

// WorldToScreen converts a world point to screen coordinates.
func (c Camera) WorldToScreen(p core.Point) core.Point {
	return core.Point{
		X: p.X*c.Zoom - c.PanX,
		Y: p.Y*c.Zoom - c.PanY,
	}
}

// ViewRect returns the world rectangle visible on a surface of the given size.
func (c Camera) ViewRect(width, height float64) core.Rect {
	return core.Rect{
		Min: c.ScreenToWorld(core.Point{}),
		Max: c.ScreenToWorld(core.Point{X: width, Y: height}),
	}
}

// Transform returns the world-to-device transform for a surface with the
// given device pixel ratio.
func (c Camera) Transform(dpr float64) core.Affine {
	return core.Affine{
		ScaleX:     c.Zoom * dpr,
		ScaleY:     c.Zoom * dpr,
		TranslateX: -c.PanX * dpr,
		TranslateY: -c.PanY * dpr,
	}
}

// CellMetrics is the world-space size of one grid cell.
type CellMetrics struct {
	Width  float64
	Height float64
}

// IsValid reports whether both dimensions are positive.
func (m CellMetrics) IsValid() bool {
	return m.Width > 0 && m.Height > 0
}

// CellAt returns the cell containing a world point. Both axes are floored.
func (m CellMetrics) CellAt(p core.Point) core.CellPos {
	if !m.IsValid() {
		return core.CellPos{}
	}
	return core.CellPos{
		Row: int(math.Floor(p.Y / m.Height)),
		Col: int(math.Floor(p.X / m.Width)),
	}
}

// CaretCellAt is CellAt with the column rounded instead of floored, so a text
// caret snaps to whichever side of a glyph is nearer.
func (m CellMetrics) CaretCellAt(p core.Point) core.CellPos {
	if !m.IsValid() {
		return core.CellPos{}
	}
	return core.CellPos{
		Row: int(math.Floor(p.Y / m.Height)),
		Col: int(math.Round(p.X / m.Width)),
	}
}

// CellRect returns the world rectangle covered by a cell.
func (m CellMetrics) CellRect(pos core.CellPos) core.Rect {
	return core.RectXYWH(float64(pos.Col)*m.Width, float64(pos.Row)*m.Height, m.Width, m.Height)
}

// CellsIn returns the block of cells touched by a world rectangle.
func (m CellMetrics) CellsIn(r core.Rect) core.CellRect {
	if !m.IsValid() || r.IsEmpty() {
		return core.CellRect{}
	}
	return core.CellRect{
		Top:    int(math.Floor(r.Min.Y / m.Height)),
		Left:   int(math.Floor(r.Min.X / m.Width)),
		Bottom: int(math.Ceil(r.Max.Y / m.Height)),
		Right:  int(math.Ceil(r.Max.X / m.Width)),
	}
}

// Area returns the drawable area for a grid of rows x cols cells.
func (m CellMetrics) Area(rows, cols int) core.Rect {
	if rows <= 0 || cols <= 0 || !m.IsValid() {
		return core.Rect{}
	}
	return core.RectXYWH(0, 0, float64(cols)*m.Width, float64(rows)*m.Height)
}
