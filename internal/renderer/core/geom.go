// Package core provides shared geometry and color types for the renderer subsystem.
// This package breaks import cycles between renderer, camera and backend.
package core

import "math"

// Point is a position in either screen or world space. Which space is
// implied by the API that produced it.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p offset by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p minus q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by s on both axes.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return IsFinite(p.X) && IsFinite(p.Y)
}

// Rect is an axis-aligned rectangle. Min is inclusive, Max exclusive.
type Rect struct {
	Min, Max Point
}

// RectXYWH creates a rectangle from origin and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + w, Y: y + h}}
}

// Width returns the width of the rectangle, or 0 if inverted.
func (r Rect) Width() float64 {
	if r.Max.X <= r.Min.X {
		return 0
	}
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle, or 0 if inverted.
func (r Rect) Height() float64 {
	if r.Max.Y <= r.Min.Y {
		return 0
	}
	return r.Max.Y - r.Min.Y
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Contains returns true if p lies within the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// ContainsRect returns true if other lies within r, allowing eps of slack on every edge.
func (r Rect) ContainsRect(other Rect, eps float64) bool {
	return other.Min.X >= r.Min.X-eps && other.Min.Y >= r.Min.Y-eps &&
		other.Max.X <= r.Max.X+eps && other.Max.Y <= r.Max.Y+eps
}

// Intersects returns true if two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.Min.X < other.Max.X && r.Max.X > other.Min.X &&
		r.Min.Y < other.Max.Y && r.Max.Y > other.Min.Y
}

// Intersection returns the overlapping region of two rectangles.
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}
	return Rect{
		Min: Point{X: math.Max(r.Min.X, other.Min.X), Y: math.Max(r.Min.Y, other.Min.Y)},
		Max: Point{X: math.Min(r.Max.X, other.Max.X), Y: math.Min(r.Max.Y, other.Max.Y)},
	}
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		Min: Point{X: math.Min(r.Min.X, other.Min.X), Y: math.Min(r.Min.Y, other.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, other.Max.X), Y: math.Max(r.Max.Y, other.Max.Y)},
	}
}

// Expand returns the rectangle grown by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Bounds returns the bounding rectangle of a set of points.
func Bounds(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// CellPos is a grid cell address (0-indexed).
type CellPos struct {
	Row int
	Col int
}

// CellRect is a rectangular block of grid cells.
type CellRect struct {
	Top    int // First row (inclusive)
	Left   int // First column (inclusive)
	Bottom int // Last row (exclusive)
	Right  int // Last column (exclusive)
}

// IsEmpty returns true if the block has no cells.
func (r CellRect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Contains returns true if pos is within the block.
func (r CellRect) Contains(pos CellPos) bool {
	return pos.Row >= r.Top && pos.Row < r.Bottom &&
		pos.Col >= r.Left && pos.Col < r.Right
}

// Intersection returns the overlapping block of two cell rectangles.
func (r CellRect) Intersection(other CellRect) CellRect {
	out := CellRect{
		Top:    max(r.Top, other.Top),
		Left:   max(r.Left, other.Left),
		Bottom: min(r.Bottom, other.Bottom),
		Right:  min(r.Right, other.Right),
	}
	if out.IsEmpty() {
		return CellRect{}
	}
	return out
}

// Affine is an axis-aligned scale followed by a translation:
// dst = src*Scale + Translate. Rotation and shear never occur in this renderer.
type Affine struct {
	ScaleX, ScaleY         float64
	TranslateX, TranslateY float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Affine{ScaleX: 1, ScaleY: 1}

// Apply transforms a point.
func (a Affine) Apply(p Point) Point {
	return Point{X: p.X*a.ScaleX + a.TranslateX, Y: p.Y*a.ScaleY + a.TranslateY}
}

// ApplyRect transforms both corners of a rectangle.
func (a Affine) ApplyRect(r Rect) Rect {
	p, q := a.Apply(r.Min), a.Apply(r.Max)
	return Rect{
		Min: Point{X: math.Min(p.X, q.X), Y: math.Min(p.Y, q.Y)},
		Max: Point{X: math.Max(p.X, q.X), Y: math.Max(p.Y, q.Y)},
	}
}

// Invert returns the inverse transform. A degenerate scale yields Identity.
func (a Affine) Invert() Affine {
	if a.ScaleX == 0 || a.ScaleY == 0 {
		return Identity
	}
	return Affine{
		ScaleX:     1 / a.ScaleX,
		ScaleY:     1 / a.ScaleY,
		TranslateX: -a.TranslateX / a.ScaleX,
		TranslateY: -a.TranslateY / a.ScaleY,
	}
}

// IsIdentity reports whether a leaves points unchanged.
func (a Affine) IsIdentity() bool {
	return a == Identity
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
