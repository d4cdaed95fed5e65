package backend

import "github.com/dshills/gridcanvas/internal/renderer/core"

// TermCell is one terminal cell as painted by the Terminal surface.
type TermCell struct {
	// Text is the grapheme shown in the cell; empty shows a space.
	Text string
	Fg   core.Color
	Bg   core.Color
}

// IsEmpty returns true if the cell shows nothing.
func (c TermCell) IsEmpty() bool {
	return (c.Text == "" || c.Text == " ") && c.Bg.IsTransparent()
}

// CellBuffer is a double-buffered grid of terminal cells with change
// tracking. Drawing goes to the back buffer; Diff reports the cells that
// differ from the front buffer and Sync makes them equal.
type CellBuffer struct {
	width, height int
	front         [][]TermCell
	back          [][]TermCell
	fullRedraw    bool
}

// NewCellBuffer creates a cell buffer with the given dimensions.
func NewCellBuffer(width, height int) *CellBuffer {
	b := &CellBuffer{fullRedraw: true}
	b.Resize(width, height)
	return b
}

// Resize resizes the buffer, preserving content where possible.
func (b *CellBuffer) Resize(width, height int) {
	width, height = max(0, width), max(0, height)
	oldBack := b.back

	b.width, b.height = width, height
	b.front = makeCells(width, height)
	b.back = makeCells(width, height)
	for y := 0; y < min(len(oldBack), height); y++ {
		copy(b.back[y], oldBack[y])
	}
	b.fullRedraw = true
}

func makeCells(width, height int) [][]TermCell {
	cells := make([][]TermCell, height)
	for y := range cells {
		cells[y] = make([]TermCell, width)
	}
	return cells
}

// Size returns the buffer dimensions.
func (b *CellBuffer) Size() (width, height int) {
	return b.width, b.height
}

// Get returns a cell from the back buffer. Out-of-range reads are empty.
func (b *CellBuffer) Get(x, y int) TermCell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return TermCell{}
	}
	return b.back[y][x]
}

// Set writes a cell to the back buffer. Out-of-range writes are ignored.
func (b *CellBuffer) Set(x, y int, c TermCell) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.back[y][x] = c
}

// Clear empties the back buffer.
func (b *CellBuffer) Clear() {
	for y := range b.back {
		clear(b.back[y])
	}
}

// CellChange is a cell that needs to be sent to the terminal.
type CellChange struct {
	X, Y int
	Cell TermCell
}

// Diff returns the cells that differ from what is displayed.
func (b *CellBuffer) Diff() []CellChange {
	var changes []CellChange
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.fullRedraw || b.back[y][x] != b.front[y][x] {
				changes = append(changes, CellChange{X: x, Y: y, Cell: b.back[y][x]})
			}
		}
	}
	return changes
}

// Sync copies the back buffer to the front buffer.
func (b *CellBuffer) Sync() {
	for y := range b.back {
		copy(b.front[y], b.back[y])
	}
	b.fullRedraw = false
}

// MarkFullRedraw forces every cell into the next Diff.
func (b *CellBuffer) MarkFullRedraw() {
	b.fullRedraw = true
}
