// Package glyph turns a character/color grid into the smallest set of text
// draw calls that reproduces it exactly.
//
// A grid cell is a string rather than a rune so that a grapheme cluster
// (an emoji with modifiers, a base letter with combining marks) occupies a
// single cell. Cells that are empty or a single space are blank.
package glyph

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Blank is the placeholder substituted for undefined and masked-out cells.
const Blank = " "

// Grid is a pair of parallel row-major grids: the characters and their
// palette indices. Rows may be ragged; missing cells read as blank with
// color 0.
type Grid struct {
	Chars  [][]string
	Colors [][]int
}

// NewGrid creates a blank grid of the given size.
func NewGrid(rows, cols int) Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	g := Grid{
		Chars:  make([][]string, rows),
		Colors: make([][]int, rows),
	}
	for r := 0; r < rows; r++ {
		g.Chars[r] = make([]string, cols)
		g.Colors[r] = make([]int, cols)
		for c := range g.Chars[r] {
			g.Chars[r][c] = Blank
		}
	}
	return g
}

// FromLines builds a grid from lines of text, splitting each line into
// grapheme clusters. Every cell gets the same color.
func FromLines(lines []string, color int) Grid {
	g := Grid{
		Chars:  make([][]string, len(lines)),
		Colors: make([][]int, len(lines)),
	}
	for r, line := range lines {
		line = strings.TrimRight(line, "\r")
		var cells []string
		gr := uniseg.NewGraphemes(line)
		for gr.Next() {
			cell := gr.Str()
			if cell == "\t" {
				cell = Blank
			}
			cells = append(cells, cell)
		}
		g.Chars[r] = cells
		g.Colors[r] = make([]int, len(cells))
		for c := range cells {
			g.Colors[r][c] = color
		}
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g.Chars)
}

// Cols returns the length of the longest row.
func (g Grid) Cols() int {
	cols := 0
	for _, row := range g.Chars {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// RowLen returns the number of cells in a row, 0 if the row does not exist.
func (g Grid) RowLen(row int) int {
	if row < 0 || row >= len(g.Chars) {
		return 0
	}
	return len(g.Chars[row])
}

// Cell returns the character and color at a position. Positions outside the
// grid, empty strings and missing colors read as Blank and 0.
func (g Grid) Cell(row, col int) (string, int) {
	if row < 0 || row >= len(g.Chars) || col < 0 || col >= len(g.Chars[row]) {
		return Blank, 0
	}
	ch := g.Chars[row][col]
	if ch == "" {
		ch = Blank
	}
	color := 0
	if row < len(g.Colors) && col < len(g.Colors[row]) {
		color = g.Colors[row][col]
	}
	return ch, color
}

// Set writes a cell, growing the row if needed. Negative positions are ignored.
func (g *Grid) Set(row, col int, ch string, color int) {
	if row < 0 || col < 0 {
		return
	}
	for len(g.Chars) <= row {
		g.Chars = append(g.Chars, nil)
	}
	for len(g.Colors) <= row {
		g.Colors = append(g.Colors, nil)
	}
	for len(g.Chars[row]) <= col {
		g.Chars[row] = append(g.Chars[row], Blank)
	}
	for len(g.Colors[row]) <= col {
		g.Colors[row] = append(g.Colors[row], 0)
	}
	g.Chars[row][col] = ch
	g.Colors[row][col] = color
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := Grid{
		Chars:  make([][]string, len(g.Chars)),
		Colors: make([][]int, len(g.Colors)),
	}
	for r := range g.Chars {
		out.Chars[r] = append([]string(nil), g.Chars[r]...)
	}
	for r := range g.Colors {
		out.Colors[r] = append([]int(nil), g.Colors[r]...)
	}
	return out
}

// IsBlank reports whether a cell draws nothing.
func IsBlank(cell string) bool {
	return cell == "" || cell == Blank
}
