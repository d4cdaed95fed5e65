package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/glyph"
)

// ErrInvalidJSON indicates a layered document that is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON document")

// Load reads a document, choosing the reader by extension: ".json" is a
// layered document, anything else is plain text.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}

	var d *Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		d, err = ParseJSON(displayName(path), data)
	} else {
		d, err = ParseText(displayName(path), string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.path = path
	return d, nil
}

// ParseText builds a single-layer document from text. Every cell uses
// palette index 0.
func ParseText(name, text string) (*Document, error) {
	text = strings.TrimSuffix(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	return FromLines(name, strings.Split(text, "\n")), nil
}

// ParseJSON builds a document from the layered JSON form:
//
//	{
//	  "palette": ["#000000", "#ff0000"],
//	  "layers": [
//	    {"name": "base", "lines": ["ab", "cd"], "color": 1},
//	    {"name": "marks", "visible": false, "lines": [" x"], "colors": [[0, 2]]}
//	  ]
//	}
//
// "visible" defaults to true. "colors" gives per-cell indices and overrides
// the layer-wide "color".
func ParseJSON(name string, data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)

	var palette core.Palette
	if p := root.Get("palette"); p.Exists() {
		var entries []string
		for _, v := range p.Array() {
			entries = append(entries, v.String())
		}
		var err error
		if palette, err = core.ParsePalette(entries); err != nil {
			return nil, err
		}
	}

	var layers []glyph.Layer
	for i, l := range root.Get("layers").Array() {
		layer, err := parseLayer(i, l)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}

	if len(layers) == 0 {
		return nil, ErrEmptyDocument
	}
	return New(name, layers, palette), nil
}

func parseLayer(i int, l gjson.Result) (glyph.Layer, error) {
	name := l.Get("name").String()
	if name == "" {
		name = fmt.Sprintf("layer%d", i)
	}
	visible := true
	if v := l.Get("visible"); v.Exists() {
		visible = v.Bool()
	}

	var lines []string
	for _, line := range l.Get("lines").Array() {
		lines = append(lines, line.String())
	}
	if lines == nil && l.Get("text").Exists() {
		lines = strings.Split(strings.TrimSuffix(l.Get("text").String(), "\n"), "\n")
	}

	grid := glyph.FromLines(lines, int(l.Get("color").Int()))
	if colors := l.Get("colors"); colors.Exists() {
		if !colors.IsArray() {
			return glyph.Layer{}, fmt.Errorf("layer %q: colors must be an array of rows", name)
		}
		for r, row := range colors.Array() {
			for c, idx := range row.Array() {
				if r < len(grid.Colors) && c < len(grid.Colors[r]) {
					grid.Colors[r][c] = int(idx.Int())
				}
			}
		}
	}
	return glyph.Layer{Name: name, Visible: visible, Grid: grid}, nil
}
