package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/glyph"
)

func TestParseText(t *testing.T) {
	d, err := ParseText("note", "hello\n  world\n")
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	rows, cols := d.GridSize()
	if rows != 2 || cols != 7 {
		t.Errorf("GridSize() = %d, %d, want 2, 7", rows, cols)
	}
	if ch, color := d.Grid().Cell(1, 2); ch != "w" || color != 0 {
		t.Errorf("Cell(1, 2) = %q, %d, want \"w\", 0", ch, color)
	}
	if d.Name() != "note" {
		t.Errorf("Name() = %q, want note", d.Name())
	}
}

func TestParseTextEmpty(t *testing.T) {
	for _, text := range []string{"", "\n", "   \n  "} {
		if _, err := ParseText("x", text); !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("ParseText(%q) error = %v, want ErrEmptyDocument", text, err)
		}
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"palette": ["#000000", "#ff0000", "#00ff00"],
		"layers": [
			{"name": "base", "lines": ["abc", "def"], "color": 1},
			{"name": "marks", "lines": [" X"], "colors": [[0, 2]]},
			{"name": "hidden", "visible": false, "lines": ["ZZZ"]}
		]
	}`)
	d, err := ParseJSON("art", data)
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(d.Layers()) != 3 {
		t.Fatalf("Layers() = %d, want 3", len(d.Layers()))
	}
	if !d.HasPalette() || len(d.Palette()) != 3 {
		t.Errorf("Palette() = %v", d.Palette())
	}

	tests := []struct {
		row, col  int
		wantCh    string
		wantColor int
	}{
		{0, 0, "a", 1},
		{0, 1, "X", 2},
		{0, 2, "c", 1},
		{1, 1, "e", 1},
	}
	grid := d.Grid()
	for _, tt := range tests {
		ch, color := grid.Cell(tt.row, tt.col)
		if ch != tt.wantCh || color != tt.wantColor {
			t.Errorf("Cell(%d, %d) = %q, %d, want %q, %d", tt.row, tt.col, ch, color, tt.wantCh, tt.wantColor)
		}
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"invalid", `{"layers": [`, ErrInvalidJSON},
		{"no layers", `{"palette": ["#fff"]}`, ErrEmptyDocument},
	}
	for _, tt := range tests {
		if _, err := ParseJSON("x", []byte(tt.data)); !errors.Is(err, tt.want) {
			t.Errorf("%s: ParseJSON() error = %v, want %v", tt.name, err, tt.want)
		}
	}

	if _, err := ParseJSON("x", []byte(`{"palette": ["#zz"], "layers": [{"lines": ["a"]}]}`)); err == nil {
		t.Error("ParseJSON() with a bad palette entry should fail")
	}
	if _, err := ParseJSON("x", []byte(`{"layers": [{"lines": ["a"], "colors": 3}]}`)); err == nil {
		t.Error("ParseJSON() with scalar colors should fail")
	}
}

func TestSetLayerVisible(t *testing.T) {
	d := New("d", []glyph.Layer{
		{Name: "bottom", Visible: true, Grid: glyph.FromLines([]string{"ab"}, 0)},
		{Name: "top", Visible: true, Grid: glyph.FromLines([]string{"X"}, 1)},
	}, nil)
	v0 := d.Version()

	if ch, _ := d.Grid().Cell(0, 0); ch != "X" {
		t.Fatalf("Cell(0, 0) = %q, want X", ch)
	}
	if err := d.SetLayerVisible("top", false); err != nil {
		t.Fatalf("SetLayerVisible() error = %v", err)
	}
	if ch, _ := d.Grid().Cell(0, 0); ch != "a" {
		t.Errorf("Cell(0, 0) after hiding top = %q, want a", ch)
	}
	if d.Version() <= v0 {
		t.Error("Version() should increase after a visibility change")
	}
	if err := d.SetLayerVisible("missing", true); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("SetLayerVisible(missing) error = %v, want ErrLayerNotFound", err)
	}
}

func TestCellSize(t *testing.T) {
	d := FromLines("d", []string{"a"})
	if w, h := d.CellSize(); w != DefaultCellWidth || h != DefaultCellHeight {
		t.Errorf("CellSize() = %v, %v, want defaults", w, h)
	}
	if err := d.SetCellSize(10, 20); err != nil {
		t.Fatalf("SetCellSize() error = %v", err)
	}
	if w, h := d.CellSize(); w != 10 || h != 20 {
		t.Errorf("CellSize() = %v, %v, want 10, 20", w, h)
	}
	for _, size := range [][2]float64{{0, 10}, {10, -1}} {
		if err := d.SetCellSize(size[0], size[1]); !errors.Is(err, ErrInvalidCellSize) {
			t.Errorf("SetCellSize(%v) error = %v, want ErrInvalidCellSize", size, err)
		}
	}
}

func TestFallbackPalette(t *testing.T) {
	d := FromLines("d", []string{"a"})
	if d.HasPalette() || len(d.Palette()) != 0 {
		t.Fatal("text document should have no palette")
	}
	d.SetFallbackPalette(core.Palette{core.ColorWhite})
	if got := d.Palette(); len(got) != 1 || got[0] != core.ColorWhite {
		t.Errorf("Palette() = %v, want the fallback", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "banner.txt")
	if err := os.WriteFile(txt, []byte("hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	js := filepath.Join(dir, "art.JSON")
	if err := os.WriteFile(js, []byte(`{"layers": [{"lines": ["yo"]}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(txt)
	if err != nil {
		t.Fatalf("Load(txt) error = %v", err)
	}
	if d.Path() != txt || d.Name() != "banner.txt" {
		t.Errorf("Path() = %q, Name() = %q", d.Path(), d.Name())
	}

	d, err = Load(js)
	if err != nil {
		t.Fatalf("Load(json) error = %v", err)
	}
	if got := d.Layers()[0].Name; got != "layer0" {
		t.Errorf("layer name = %q, want layer0", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
}
