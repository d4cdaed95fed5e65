package glyph

import (
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/camera"
	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// DrawOptions configures how runs are painted.
type DrawOptions struct {
	Cell    camera.CellMetrics
	Palette core.Palette

	// Fallback is used for color indices outside the palette.
	Fallback core.Color

	// WhitespaceColor paints runs carrying the WhitespaceColor sentinel.
	WhitespaceColor core.Color

	// Opacity in (0, 1) draws the runs translucently. Zero means opaque.
	Opacity float64
}

// Draw paints runs onto the surface under its current transform, one text
// call per run. Each run starts at its cell's left edge and is vertically
// centered in its row. Returns the number of text calls issued.
func Draw(s backend.Surface, runs []Run, opts DrawOptions) int {
	if len(runs) == 0 || !opts.Cell.IsValid() {
		return 0
	}

	calls := 0
	backend.Scoped(s, func() {
		if opts.Opacity > 0 && opts.Opacity < 1 {
			s.SetAlpha(opts.Opacity)
		}
		s.SetFont(backend.Font{Advance: opts.Cell.Width, LineHeight: opts.Cell.Height})

		for _, r := range runs {
			c := opts.colorFor(r.Color)
			if c.IsTransparent() {
				continue
			}
			x := float64(r.Col) * opts.Cell.Width
			y := float64(r.Row)*opts.Cell.Height + opts.Cell.Height/2
			s.FillText(r.Text, x, y, c)
			calls++
		}
	})
	return calls
}

func (o DrawOptions) colorFor(idx int) core.Color {
	if idx == WhitespaceColor {
		return o.WhitespaceColor
	}
	return o.Palette.Lookup(idx, o.Fallback)
}
