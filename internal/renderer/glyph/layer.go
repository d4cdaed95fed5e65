package glyph

// Layer is one named grid in a stack. Layers are composited bottom to top.
type Layer struct {
	Name    string
	Visible bool
	Grid    Grid
}

// Flatten composites layers into a single grid. For each cell the top-most
// visible layer with a non-blank character wins, and its color comes along.
// The result is as large as the largest visible layer.
func Flatten(layers ...Layer) Grid {
	rows, cols := 0, 0
	for _, l := range layers {
		if !l.Visible {
			continue
		}
		if n := l.Grid.Rows(); n > rows {
			rows = n
		}
		if n := l.Grid.Cols(); n > cols {
			cols = n
		}
	}

	out := NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for i := len(layers) - 1; i >= 0; i-- {
				if !layers[i].Visible {
					continue
				}
				ch, color := layers[i].Grid.Cell(r, c)
				if IsBlank(ch) {
					continue
				}
				out.Chars[r][c] = ch
				out.Colors[r][c] = color
				break
			}
		}
	}
	return out
}
