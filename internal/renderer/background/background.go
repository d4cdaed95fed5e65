// Package background paints the layer behind the glyphs: either a flat
// color over the drawable area or a transparency checkerboard.
//
// The checkerboard is laid out in device pixels so its squares keep the
// same on-screen size at every zoom level. It is then cut back to the
// drawable area by clearing the margins between the visible world
// rectangle and the area.
package background

import (
	"math"

	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/camera"
	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// DefaultCheckerSize is the checker square edge in device pixels.
const DefaultCheckerSize = 8

// Checker configures the transparency pattern.
type Checker struct {
	// Size is the square edge in device pixels.
	Size float64

	// Colors are the two alternating square colors.
	Colors [2]core.Color
}

// DefaultChecker returns light gray and white squares.
func DefaultChecker() Checker {
	return Checker{
		Size:   DefaultCheckerSize,
		Colors: [2]core.Color{core.ColorLightGray, core.ColorWhite},
	}
}

// Params describes one background pass.
type Params struct {
	Camera camera.Camera
	DPR    float64

	// Area is the drawable world rectangle.
	Area core.Rect

	// Transparent selects the checkerboard over the flat Color.
	Transparent bool
	Color       core.Color
	Checker     Checker
}

// Draw paints the background. The surface state is unchanged afterwards.
func Draw(s backend.Surface, p Params) {
	if p.Area.IsEmpty() || !p.Camera.IsValid() {
		return
	}
	if !(p.DPR > 0) {
		p.DPR = 1
	}
	world := p.Camera.Transform(p.DPR)

	if !p.Transparent {
		backend.WithTransform(s, world, func() {
			s.FillRect(p.Area, p.Color)
		})
		return
	}

	backend.Scoped(s, func() {
		backend.WithTransform(s, core.Identity, func() {
			tile(s, s.ClipBounds().Intersection(backend.DeviceBounds(s)), p.Checker)
		})

		w, h := s.Size()
		view := p.Camera.ViewRect(w, h)
		backend.WithTransform(s, world, func() {
			for _, m := range Margins(view, p.Area) {
				s.ClearRect(m)
			}
		})
	})
}

// tile covers region (device pixels) with the checker pattern: one fill of
// the first color, then a square of the second color on every other grid
// position. Squares are aligned to the device origin, so a partial repaint
// matches the full one.
func tile(s backend.Surface, region core.Rect, c Checker) {
	if region.IsEmpty() {
		return
	}
	size := c.Size
	if !(size > 0) {
		size = DefaultCheckerSize
	}
	col0, col1 := int(math.Floor(region.Min.X/size)), int(math.Ceil(region.Max.X/size))
	row0, row1 := int(math.Floor(region.Min.Y/size)), int(math.Ceil(region.Max.Y/size))
	snapped := core.Rect{
		Min: core.Pt(float64(col0)*size, float64(row0)*size),
		Max: core.Pt(float64(col1)*size, float64(row1)*size),
	}

	s.FillRect(snapped, c.Colors[0])
	if c.Colors[1] == c.Colors[0] {
		return
	}
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			if (row+col)%2 == 0 {
				continue
			}
			s.FillRect(core.RectXYWH(float64(col)*size, float64(row)*size, size, size), c.Colors[1])
		}
	}
}

// Margins returns the parts of view outside area: a full-width band above
// and below, and the left and right strips between them. Empty parts are
// omitted.
func Margins(view, area core.Rect) []core.Rect {
	candidates := [4]core.Rect{
		{Min: view.Min, Max: core.Pt(view.Max.X, area.Min.Y)},
		{Min: core.Pt(view.Min.X, area.Max.Y), Max: view.Max},
		{Min: core.Pt(view.Min.X, area.Min.Y), Max: core.Pt(area.Min.X, area.Max.Y)},
		{Min: core.Pt(area.Max.X, area.Min.Y), Max: core.Pt(view.Max.X, area.Max.Y)},
	}
	var out []core.Rect
	for _, r := range candidates {
		r = r.Intersection(view)
		if !r.IsEmpty() {
			out = append(out, r)
		}
	}
	return out
}
