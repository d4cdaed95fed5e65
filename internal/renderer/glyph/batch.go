package glyph

import (
	"strings"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// WhitespaceColor is the sentinel color index carried by whitespace
// placeholder runs. Draw maps it to DrawOptions.WhitespaceColor.
const WhitespaceColor = -1

// WhitespaceGlyph is drawn in place of blank cells in whitespace mode.
const WhitespaceGlyph = "·"

// Run is a horizontal span of cells drawn with one text call.
type Run struct {
	Row   int
	Col   int
	Color int

	// Text is the concatenation of the run's cells.
	Text string

	// Cells is the number of grid columns the run covers.
	Cells int
}

// BatchOptions controls cell substitution during batching.
type BatchOptions struct {
	// Mask reports whether a cell is visible. Hidden cells become Blank but
	// keep their column. Nil shows every cell.
	Mask func(row, col int) bool

	// ShowWhitespace replaces blank cells with WhitespaceGlyph runs colored
	// WhitespaceColor.
	ShowWhitespace bool

	// Window restricts batching to a block of cells. An empty window means
	// the whole grid.
	Window core.CellRect
}

// Batch merges the grid into runs. Within a row a run is closed when a
// non-blank cell changes color, and immediately after a layout-unsafe cell.
// Blank cells extend the open run and never start a new one, so a row of
// k same-color spans separated only by blanks yields k runs. Runs are
// trimmed of leading and trailing blanks, and spans of only blanks are not
// emitted.
func Batch(g Grid, opts BatchOptions) []Run {
	bounds := core.CellRect{Top: 0, Left: 0, Bottom: g.Rows(), Right: g.Cols()}
	if !opts.Window.IsEmpty() {
		bounds = bounds.Intersection(opts.Window)
	}
	if bounds.IsEmpty() {
		return nil
	}

	var runs []Run
	for row := bounds.Top; row < bounds.Bottom; row++ {
		right := bounds.Right
		if n := g.RowLen(row); n < right {
			right = n
		}
		runs = batchRow(runs, g, row, bounds.Left, right, opts)
	}
	return runs
}

// span accumulates the cells of one run.
type span struct {
	col      int
	color    int
	cells    []string
	trailing int // blank cells at the end of cells
	open     bool
}

func (s *span) reset() {
	s.cells = s.cells[:0]
	s.trailing = 0
	s.open = false
}

func (s *span) emit(runs []Run, row int) []Run {
	if !s.open {
		return runs
	}
	cells := s.cells[:len(s.cells)-s.trailing]
	runs = append(runs, Run{
		Row:   row,
		Col:   s.col,
		Color: s.color,
		Text:  strings.Join(cells, ""),
		Cells: len(cells),
	})
	s.reset()
	return runs
}

func batchRow(runs []Run, g Grid, row, left, right int, opts BatchOptions) []Run {
	var s span
	afterUnsafe := false

	for col := left; col < right; col++ {
		ch, color := g.Cell(row, col)
		if opts.Mask != nil && !opts.Mask(row, col) {
			ch = Blank
		}
		blank := IsBlank(ch)
		if blank && opts.ShowWhitespace {
			ch, color, blank = WhitespaceGlyph, WhitespaceColor, false
		}

		if afterUnsafe {
			runs = s.emit(runs, row)
			afterUnsafe = false
		}

		if blank {
			if s.open {
				s.cells = append(s.cells, ch)
				s.trailing++
			}
			continue
		}

		if s.open && color != s.color {
			runs = s.emit(runs, row)
		}
		if !s.open {
			s.open = true
			s.col = col
			s.color = color
		}
		s.cells = append(s.cells, ch)
		s.trailing = 0
		afterUnsafe = IsLayoutUnsafe(ch)
	}
	return s.emit(runs, row)
}
