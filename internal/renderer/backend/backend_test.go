package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

var (
	red  = core.ColorFromRGB(255, 0, 0)
	blue = core.ColorFromRGB(0, 0, 255)
)

func TestWithTransformRestores(t *testing.T) {
	r := NewRecorder(100, 50, 2)
	outer := core.Affine{ScaleX: 3, ScaleY: 3, TranslateX: 5}
	r.SetTransform(outer)

	inner := core.Affine{ScaleX: 2, ScaleY: 2}
	WithTransform(r, inner, func() {
		if got := r.Transform(); got != inner {
			t.Errorf("Transform() inside = %+v, want %+v", got, inner)
		}
		r.FillRect(core.RectXYWH(0, 0, 1, 1), red)
	})

	if got := r.Transform(); got != outer {
		t.Errorf("Transform() after = %+v, want %+v", got, outer)
	}
	if r.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", r.Depth())
	}
	fills := r.OpsOf(OpFillRect)
	if len(fills) != 1 || fills[0].Transform != inner {
		t.Errorf("fill ran under %+v, want %+v", fills, inner)
	}
}

func TestScopedRestoresOnPanic(t *testing.T) {
	r := NewRecorder(100, 50, 1)
	func() {
		defer func() { _ = recover() }()
		Scoped(r, func() {
			r.SetTransform(core.Affine{ScaleX: 9, ScaleY: 9})
			r.SetAlpha(0.2)
			panic("draw failed")
		})
	}()

	if got := r.Transform(); got != core.Identity {
		t.Errorf("Transform() = %+v, want identity", got)
	}
	if r.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", r.Depth())
	}
}

func TestRecorderClipAndState(t *testing.T) {
	r := NewRecorder(100, 50, 2)
	r.Save()
	r.SetTransform(core.Affine{ScaleX: 2, ScaleY: 2})
	r.Clip(core.RectXYWH(10, 10, 5, 5))
	r.SetAlpha(5)
	r.ClearRect(core.RectXYWH(0, 0, 100, 100))
	r.Restore()
	r.Restore() // unmatched, ignored

	clears := r.OpsOf(OpClearRect)
	if len(clears) != 1 {
		t.Fatalf("got %d clears, want 1", len(clears))
	}
	op := clears[0]
	if want := core.RectXYWH(20, 20, 10, 10); op.Clip != want {
		t.Errorf("Clip = %v, want %v", op.Clip, want)
	}
	if op.Alpha != 1 {
		t.Errorf("Alpha = %v, want clamped 1", op.Alpha)
	}
	if want := core.RectXYWH(0, 0, 200, 200); op.Device() != want {
		t.Errorf("Device() = %v, want %v", op.Device(), want)
	}
	if r.Count(OpRestore) != 2 {
		t.Errorf("Count(restore) = %d, want 2", r.Count(OpRestore))
	}

	r.Reset()
	if len(r.Ops()) != 0 {
		t.Error("Reset should discard ops")
	}
	if OpFillText.String() != "fillText" || OpKind(99).String() != "unknown" {
		t.Error("OpKind.String mismatch")
	}
}

func TestDashOn(t *testing.T) {
	tests := []struct {
		pos  float64
		dash []float64
		want bool
	}{
		{3, nil, true},
		{0, []float64{4, 2}, true},
		{3.9, []float64{4, 2}, true},
		{4, []float64{4, 2}, false},
		{5.9, []float64{4, 2}, false},
		{6, []float64{4, 2}, true},
		{-1, []float64{4, 2}, false},
		{5, []float64{4}, false},
		{9, []float64{4}, true},
		{1, []float64{0, 0}, true},
	}
	for _, tt := range tests {
		if got := DashOn(tt.pos, tt.dash); got != tt.want {
			t.Errorf("DashOn(%v, %v) = %v, want %v", tt.pos, tt.dash, got, tt.want)
		}
	}
}

func TestCellBufferDiff(t *testing.T) {
	b := NewCellBuffer(4, 2)
	if got := len(b.Diff()); got != 8 {
		t.Errorf("initial Diff() = %d cells, want 8", got)
	}
	b.Sync()
	if got := len(b.Diff()); got != 0 {
		t.Errorf("Diff() after Sync = %d, want 0", got)
	}

	b.Set(1, 1, TermCell{Text: "x", Fg: red})
	b.Set(9, 9, TermCell{Text: "y"})
	d := b.Diff()
	if len(d) != 1 || d[0].X != 1 || d[0].Y != 1 {
		t.Errorf("Diff() = %+v, want single change at (1,1)", d)
	}

	b.Resize(6, 3)
	if got := b.Get(1, 1); got.Text != "x" {
		t.Errorf("Resize lost content: %+v", got)
	}
	b.Clear()
	if !b.Get(1, 1).IsEmpty() {
		t.Error("Clear should empty cells")
	}
}

func newTestRaster(t *testing.T, w, h, dpr float64) *Raster {
	t.Helper()
	r, err := NewRaster(w, h, dpr)
	if err != nil {
		t.Fatalf("NewRaster() error = %v", err)
	}
	return r
}

func TestRasterFillAndClear(t *testing.T) {
	r := newTestRaster(t, 20, 10, 2)
	if b := r.Image().Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("image bounds = %v, want 40x20", b)
	}

	r.SetTransform(core.Affine{ScaleX: 2, ScaleY: 2})
	r.FillRect(core.RectXYWH(0, 0, 10, 10), red)
	if got := r.Image().RGBAAt(5, 5); got.R != 255 || got.A != 255 {
		t.Errorf("pixel inside fill = %v, want red", got)
	}
	if got := r.Image().RGBAAt(25, 5); got.A != 0 {
		t.Errorf("pixel outside fill = %v, want transparent", got)
	}

	r.ClearRect(core.RectXYWH(0, 0, 2, 2))
	if got := r.Image().RGBAAt(1, 1); got.A != 0 {
		t.Errorf("cleared pixel = %v, want transparent", got)
	}
	if got := r.Image().RGBAAt(6, 6); got.A != 255 {
		t.Errorf("pixel next to clear = %v, want untouched", got)
	}
}

func TestRasterClipAndAlpha(t *testing.T) {
	r := newTestRaster(t, 20, 20, 1)

	Scoped(r, func() {
		r.Clip(core.RectXYWH(0, 0, 5, 5))
		r.FillRect(core.RectXYWH(0, 0, 20, 20), blue)
	})
	if got := r.Image().RGBAAt(2, 2); got.B != 255 {
		t.Errorf("pixel inside clip = %v, want blue", got)
	}
	if got := r.Image().RGBAAt(10, 10); got.A != 0 {
		t.Errorf("pixel outside clip = %v, want transparent", got)
	}

	Scoped(r, func() {
		r.SetAlpha(0.5)
		r.FillRect(core.RectXYWH(10, 10, 5, 5), red)
	})
	if got := r.Image().RGBAAt(12, 12); got.A < 127 || got.A > 129 {
		t.Errorf("translucent pixel alpha = %d, want ~128", got.A)
	}
}

func TestRasterTextAndStroke(t *testing.T) {
	r := newTestRaster(t, 40, 40, 1)
	r.SetFont(Font{Advance: 12, LineHeight: 20})
	r.FillText("X", 2, 10, red)
	if !anyOpaque(r, 0, 0, 20, 20) {
		t.Error("FillText drew nothing")
	}

	r.StrokePolygon([]core.Point{{X: 25, Y: 25}, {X: 35, Y: 25}, {X: 35, Y: 35}, {X: 25, Y: 35}}, Stroke{Color: blue, Width: 2})
	if got := r.Image().RGBAAt(25, 30); got.A == 0 {
		t.Error("StrokePolygon left the edge empty")
	}
	if got := r.Image().RGBAAt(30, 30); got.A != 0 {
		t.Errorf("StrokePolygon filled the interior: %v", got)
	}
}

func anyOpaque(r *Raster, x0, y0, x1, y1 int) bool {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if r.Image().RGBAAt(x, y).A > 0 {
				return true
			}
		}
	}
	return false
}

func TestNewRasterInvalidSize(t *testing.T) {
	if _, err := NewRaster(0, 10, 1); err == nil {
		t.Error("NewRaster(0, 10) should fail")
	}
}

func newTestTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(term.Shutdown)
	return term, screen
}

func TestTerminalFillRect(t *testing.T) {
	term, _ := newTestTerminal(t)
	cols, rows := term.Cells()
	w, h := term.Size()
	if w != float64(cols)*DefaultCellPixelWidth || h != float64(rows)*DefaultCellPixelHeight {
		t.Errorf("Size() = %vx%v for %dx%d cells", w, h, cols, rows)
	}

	term.FillRect(core.RectXYWH(0, 0, 16, 16), red)
	for x, want := range []bool{true, true, false} {
		got := term.Cell(x, 0).Bg == red
		if got != want {
			t.Errorf("cell (%d,0) filled = %v, want %v", x, got, want)
		}
	}
	if term.Cell(0, 1).Bg == red {
		t.Error("cell (0,1) should not be filled")
	}

	term.ClearRect(core.RectXYWH(0, 0, 8, 16))
	if !term.Cell(0, 0).IsEmpty() {
		t.Error("ClearRect should empty the cell")
	}
}

func TestTerminalFillTextAndFlush(t *testing.T) {
	term, screen := newTestTerminal(t)
	term.SetFont(Font{Advance: 8, LineHeight: 16})
	term.FillText("hi there", 0, 8, red)

	if got := term.Cell(0, 0).Text; got != "h" {
		t.Errorf("cell (0,0) = %q, want h", got)
	}
	if got := term.Cell(1, 0).Text; got != "i" {
		t.Errorf("cell (1,0) = %q, want i", got)
	}
	if got := term.Cell(2, 0).Text; got != "" {
		t.Errorf("space should leave cell empty, got %q", got)
	}

	term.Flush()
	mainc, _, style, _ := screen.GetContent(0, 0) //nolint:staticcheck // GetContent is the correct API
	if mainc != 'h' {
		t.Errorf("screen rune = %q, want h", mainc)
	}
	fg, _, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("screen fg = %v, want red", fg)
	}
}

func TestTerminalStrokeDashes(t *testing.T) {
	term, _ := newTestTerminal(t)
	// The top edge runs along row 0 for 10 cells, dashed one cell on, one off.
	pts := []core.Point{{X: 0, Y: 8}, {X: 80, Y: 8}, {X: 80, Y: 200}, {X: 0, Y: 200}}
	term.StrokePolygon(pts, Stroke{Color: blue, Width: 1, Dash: []float64{8, 8}})

	for x := 0; x < 10; x++ {
		want := x%2 == 0
		if got := term.Cell(x, 0).Bg == blue; got != want {
			t.Errorf("cell (%d,0) stroked = %v, want %v", x, got, want)
		}
	}
}
