// Package document holds the glyph content shown by the viewer: a stack of
// named layers, their palette and the cell geometry they are laid out on.
//
// A Document is both the layout provider and the content provider of the
// rendering engine. Layers are flattened once per change, so the engine
// reads a cached grid on every frame.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/glyph"
)

// Errors returned by document operations.
var (
	// ErrEmptyDocument indicates the source contained no cells.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrLayerNotFound indicates no layer has the requested name.
	ErrLayerNotFound = errors.New("layer not found")

	// ErrInvalidCellSize indicates a non-positive cell dimension.
	ErrInvalidCellSize = errors.New("invalid cell size")
)

// Default cell size in world units.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

// Document is a layered glyph grid.
type Document struct {
	mu sync.RWMutex

	path string
	name string

	layers  []glyph.Layer
	grid    glyph.Grid // flattened visible layers
	palette core.Palette
	// fallback is used when the source carries no palette of its own.
	fallback core.Palette

	cellW, cellH float64
	version      int64
}

// New creates a document from layers, bottom first.
func New(name string, layers []glyph.Layer, palette core.Palette) *Document {
	d := &Document{
		name:    name,
		layers:  append([]glyph.Layer(nil), layers...),
		palette: palette,
		cellW:   DefaultCellWidth,
		cellH:   DefaultCellHeight,
	}
	d.flatten()
	return d
}

// FromLines creates a single-layer document from lines of text.
func FromLines(name string, lines []string) *Document {
	return New(name, []glyph.Layer{{Name: "text", Visible: true, Grid: glyph.FromLines(lines, 0)}}, nil)
}

// flatten rebuilds the cached grid (must hold lock).
func (d *Document) flatten() {
	d.grid = glyph.Flatten(d.layers...)
	d.version++
}

// Path returns the file the document was loaded from, empty if none.
func (d *Document) Path() string {
	return d.path
}

// Name returns the display name.
func (d *Document) Name() string {
	return d.name
}

// GridSize returns the size of the flattened grid.
func (d *Document) GridSize() (rows, cols int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.grid.Rows(), d.grid.Cols()
}

// CellSize returns the world size of one cell.
func (d *Document) CellSize() (width, height float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cellW, d.cellH
}

// SetCellSize changes the cell geometry.
func (d *Document) SetCellSize(width, height float64) error {
	if !(width > 0) || !(height > 0) || !core.IsFinite(width) || !core.IsFinite(height) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidCellSize, width, height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cellW, d.cellH = width, height
	d.version++
	return nil
}

// Grid returns the flattened grid. The caller must not modify it.
func (d *Document) Grid() glyph.Grid {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.grid
}

// Palette returns the document palette, or the fallback if it has none.
func (d *Document) Palette() core.Palette {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.palette) > 0 {
		return d.palette
	}
	return d.fallback
}

// HasPalette reports whether the source defined its own palette.
func (d *Document) HasPalette() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.palette) > 0
}

// SetFallbackPalette sets the palette used when the document has none.
func (d *Document) SetFallbackPalette(p core.Palette) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = p
	d.version++
}

// Layers returns a copy of the layer list, bottom first.
func (d *Document) Layers() []glyph.Layer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]glyph.Layer(nil), d.layers...)
}

// SetLayerVisible shows or hides a layer by name.
func (d *Document) SetLayerVisible(name string, visible bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.layers {
		if d.layers[i].Name == name {
			if d.layers[i].Visible != visible {
				d.layers[i].Visible = visible
				d.flatten()
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrLayerNotFound, name)
}

// Version increases on every change to content or geometry.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func displayName(path string) string {
	if path == "" {
		return "Untitled"
	}
	return filepath.Base(path)
}
