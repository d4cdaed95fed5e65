package app

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/gridcanvas/internal/config"
	"github.com/dshills/gridcanvas/internal/renderer/anim"
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/frame"
)

// fakeScreen is a Recorder that delivers events from a channel.
type fakeScreen struct {
	*backend.Recorder
	events chan backend.Event
}

func newFakeScreen(w, h float64) *fakeScreen {
	return &fakeScreen{Recorder: backend.NewRecorder(w, h, 1), events: make(chan backend.Event, 16)}
}

func (f *fakeScreen) Init() error                { return nil }
func (f *fakeScreen) Shutdown()                  {}
func (f *fakeScreen) PollEvent() backend.Event   { return <-f.events }
func (f *fakeScreen) PostEvent(ev backend.Event) { f.events <- ev }

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestApp shows a 3x6 grid of 8x16 cells on a 480x240 recorder.
// Fit zoom is 5, the zoom floor 5/1.4.
func newTestApp(t *testing.T) (*Application, *backend.Recorder) {
	t.Helper()
	app, err := New(Options{DocumentPath: writeTemp(t, "doc.txt", "abcdef\nghijkl\nmnopqr\n")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rec := backend.NewRecorder(480, 240, 1)
	if err := app.attach(rec, frame.NewManual(time.Unix(0, 0))); err != nil {
		t.Fatalf("attach() error = %v", err)
	}
	t.Cleanup(func() { app.Engine().Clear() })
	return app, rec
}

func key(k backend.Key) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k}
}

func char(r rune) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r}
}

func mouse(b backend.MouseButton, p core.Point) backend.Event {
	return backend.Event{Type: backend.EventMouse, MouseButton: b, Pos: p}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewDefaults(t *testing.T) {
	app, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if rows, cols := app.Document().GridSize(); rows == 0 || cols == 0 {
		t.Error("New() without a document should show the sample")
	}
	if w, h := app.Document().CellSize(); w != 8 || h != 16 {
		t.Errorf("CellSize() = %v, %v, want 8, 16", w, h)
	}
	if app.Engine() != nil {
		t.Error("Engine() should be nil before Run")
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(Options{DocumentPath: filepath.Join(t.TempDir(), "missing.txt")})
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "document" || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New(missing document) error = %v", err)
	}

	bad := writeTemp(t, "bad.toml", "[grid]\ncellWidth = 0.0\n")
	_, err = New(Options{ConfigPath: bad})
	if !errors.As(err, &ierr) || ierr.Component != "config" || !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("New(invalid config) error = %v", err)
	}
}

func TestAttachFitsAndStartsCaret(t *testing.T) {
	app, rec := newTestApp(t)
	e := app.Engine()

	th, ok := e.Thresholds()
	if !ok || !approx(th.Fit, 5) {
		t.Fatalf("Thresholds() = %+v, %v, want fit 5", th, ok)
	}
	if !approx(e.Camera().Zoom, 5/1.4) {
		t.Errorf("Zoom = %v, want %v", e.Camera().Zoom, 5/1.4)
	}
	if e.Caret() == nil {
		t.Error("attach should start the caret")
	}
	if rec.Count(backend.OpFillText) != 3 {
		t.Errorf("text ops = %d, want 3", rec.Count(backend.OpFillText))
	}
}

func TestHandleQuit(t *testing.T) {
	app, _ := newTestApp(t)
	for _, ev := range []backend.Event{char('q'), key(backend.KeyEscape), key(backend.KeyCtrlC)} {
		if err := app.HandleEvent(ev); !errors.Is(err, ErrQuit) {
			t.Errorf("HandleEvent(%+v) = %v, want ErrQuit", ev, err)
		}
	}
}

func TestHandleZoomKeys(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()
	floor := 5 / 1.4

	tests := []struct {
		ev   backend.Event
		want float64
	}{
		{char('+'), floor * KeyZoomStep},
		{char('-'), floor},
		{char('0'), 5},
		{char('z'), floor},
		{char('='), floor * KeyZoomStep},
	}
	for _, tt := range tests {
		if err := app.HandleEvent(tt.ev); err != nil {
			t.Fatalf("HandleEvent(%q) error = %v", tt.ev.Rune, err)
		}
		if got := e.Camera().Zoom; !approx(got, tt.want) {
			t.Errorf("after %q Zoom = %v, want %v", tt.ev.Rune, got, tt.want)
		}
	}
	if !e.NeedsRedraw() {
		t.Error("zooming should mark the engine dirty")
	}
}

func TestHandleWheelZoomsAtPointer(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()
	p := core.Pt(300, 100)
	before := e.ScreenToWorld(p)
	zoom := e.Camera().Zoom

	app.HandleEvent(mouse(backend.MouseWheelUp, p))
	if got := e.Camera().Zoom; !approx(got, zoom*1.2) {
		t.Errorf("Zoom = %v, want %v", got, zoom*1.2)
	}
	after := e.ScreenToWorld(p)
	if !approx(before.X, after.X) || !approx(before.Y, after.Y) {
		t.Errorf("point under pointer moved from %v to %v", before, after)
	}

	app.HandleEvent(mouse(backend.MouseWheelDown, p))
	if got := e.Camera().Zoom; !approx(got, zoom) {
		t.Errorf("Zoom after wheel down = %v, want %v", got, zoom)
	}
}

func TestHandleDragPans(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()
	for i := 0; i < 3; i++ {
		app.HandleEvent(char('+'))
	}
	before := e.Camera()

	app.HandleEvent(mouse(backend.MouseLeft, core.Pt(200, 100)))
	app.HandleEvent(mouse(backend.MouseLeft, core.Pt(200, 80)))
	app.HandleEvent(mouse(backend.MouseNone, core.Pt(200, 80)))

	after := e.Camera()
	if !approx(after.PanY, before.PanY+20) {
		t.Errorf("PanY = %v, want %v", after.PanY, before.PanY+20)
	}
	if got := app.caretPos(); got != (core.CellPos{}) {
		t.Errorf("drag moved the caret to %v", got)
	}
}

func TestHandleClickMovesCaret(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()
	p := e.WorldToScreen(core.Pt(3*8+1, 2*16+8))

	app.HandleEvent(mouse(backend.MouseLeft, p))
	app.HandleEvent(mouse(backend.MouseNone, p))

	want := core.CellPos{Row: 2, Col: 3}
	if got := app.caretPos(); got != want {
		t.Errorf("caret = %v, want %v", got, want)
	}
	if got := e.Caret().Effect().(*anim.Caret).Target(); got != want {
		t.Errorf("engine caret = %v, want %v", got, want)
	}
}

func TestHandleCaretKeys(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		ev   backend.Event
		want core.CellPos
	}{
		{key(backend.KeyUp), core.CellPos{}},
		{key(backend.KeyRight), core.CellPos{Col: 1}},
		{key(backend.KeyDown), core.CellPos{Row: 1, Col: 1}},
		{key(backend.KeyDown), core.CellPos{Row: 2, Col: 1}},
		{key(backend.KeyDown), core.CellPos{Row: 2, Col: 1}},
		{key(backend.KeyLeft), core.CellPos{Row: 2}},
		{key(backend.KeyLeft), core.CellPos{Row: 2}},
	}
	for i, tt := range tests {
		app.HandleEvent(tt.ev)
		if got := app.caretPos(); got != tt.want {
			t.Errorf("step %d: caret = %v, want %v", i, got, tt.want)
		}
	}

	// The caret may sit after the last column.
	for i := 0; i < 10; i++ {
		app.HandleEvent(key(backend.KeyRight))
	}
	if got := app.caretPos(); got.Col != 6 {
		t.Errorf("caret col = %d, want 6", got.Col)
	}
	app.HandleEvent(key(backend.KeyHome))
	if got := app.caretPos(); got != (core.CellPos{Row: 2}) {
		t.Errorf("caret after Home = %v", got)
	}
}

func TestCycleCaretStyle(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()

	for _, want := range []anim.CaretStyle{anim.CaretBlock, anim.CaretUnderline, anim.CaretBeam} {
		app.HandleEvent(char('c'))
		if got := e.Caret().Effect().(*anim.Caret).Style(); got != want {
			t.Errorf("caret style = %v, want %v", got, want)
		}
	}
}

func TestOutlineFollowsCaretRow(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()

	app.HandleEvent(char('s'))
	h := e.Outline()
	if h == nil {
		t.Fatal("s should start the outline")
	}
	poly := h.Effect().(*anim.Ants).Polygon()
	if len(poly) != 4 || poly[0] != core.Pt(0, 0) || poly[2] != core.Pt(48, 16) {
		t.Errorf("outline = %v, want row 0", poly)
	}

	app.HandleEvent(key(backend.KeyDown))
	if e.Outline() != h {
		t.Error("moving the caret should reuse the outline")
	}
	if poly := h.Effect().(*anim.Ants).Polygon(); poly[0].Y != 16 {
		t.Errorf("outline top = %v, want 16", poly[0].Y)
	}

	app.HandleEvent(char('s'))
	if e.Outline() != nil || !h.Stopped() {
		t.Error("second s should stop the outline")
	}
}

func TestToggles(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()

	app.HandleEvent(char('w'))
	if !e.Options().ShowWhitespace {
		t.Error("w should show whitespace")
	}
	app.HandleEvent(char('t'))
	if !e.Options().Transparent {
		t.Error("t should select the checkerboard")
	}
	app.HandleEvent(char('t'))
	if e.Options().Transparent {
		t.Error("second t should restore the flat background")
	}
}

func TestHandleFocus(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()

	app.HandleEvent(backend.Event{Type: backend.EventFocus, Focused: false})
	if e.Caret() != nil {
		t.Error("losing focus should stop the caret")
	}
	app.HandleEvent(backend.Event{Type: backend.EventFocus, Focused: true})
	if e.Caret() == nil {
		t.Error("gaining focus should restart the caret")
	}
}

func TestHandleResize(t *testing.T) {
	app, rec := newTestApp(t)
	rec.Resize(240, 240, 1)

	app.HandleEvent(backend.Event{Type: backend.EventResize})
	th, _ := app.Engine().Thresholds()
	if !approx(th.Fit, 5) {
		t.Errorf("Fit = %v, want 5", th.Fit)
	}
	rec.Resize(96, 240, 1)
	app.HandleEvent(backend.Event{Type: backend.EventResize})
	th, _ = app.Engine().Thresholds()
	if !approx(th.Fit, 2) {
		t.Errorf("Fit = %v, want 2", th.Fit)
	}
}

func TestApplyConfig(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()

	cfg := config.Default()
	cfg.Grid.CellWidth = 10
	cfg.Animation.CaretStyle = "underline"
	cfg.Glyphs.ShowWhitespace = true
	app.ApplyConfig(cfg)

	if w, _ := app.Document().CellSize(); w != 10 {
		t.Errorf("document cell width = %v, want 10", w)
	}
	if got := e.CellMetrics().Width; got != 10 {
		t.Errorf("engine cell width = %v, want 10", got)
	}
	if !e.Options().ShowWhitespace {
		t.Error("options were not applied")
	}
	if got := e.Caret().Effect().(*anim.Caret).Style(); got != anim.CaretUnderline {
		t.Errorf("caret style = %v, want underline", got)
	}
	if got := app.Config().Grid.CellWidth; got != 10 {
		t.Errorf("Config().Grid.CellWidth = %v, want 10", got)
	}
}

func TestRunWithoutScreen(t *testing.T) {
	app, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Run(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run() = %v, want ErrNoBackend", err)
	}
}

func TestRunUntilQuit(t *testing.T) {
	app, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	screen := newFakeScreen(640, 320)
	if err := app.SetScreen(screen); err != nil {
		t.Fatal(err)
	}

	screen.events <- char('+')
	screen.events <- char('q')
	if err := app.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if app.IsRunning() {
		t.Error("IsRunning() after Run returned")
	}
	if s := app.Metrics().Snapshot(); s.Events != 2 {
		t.Errorf("events = %d, want 2", s.Events)
	}
}

func TestShutdownStopsRun(t *testing.T) {
	app, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	screen := newFakeScreen(640, 320)
	app.SetScreen(screen)

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	deadline := time.Now().Add(5 * time.Second)
	for !app.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	app.Shutdown()
	app.Shutdown()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestApplyConfigKeepsToggles(t *testing.T) {
	app, _ := newTestApp(t)
	e := app.Engine()

	app.HandleEvent(char('t'))
	app.HandleEvent(char('w'))

	// A reload that leaves both settings alone keeps the toggles.
	cfg := app.Config()
	cfg.Grid.CellWidth = 10
	app.ApplyConfig(cfg)
	if !e.Options().Transparent {
		t.Error("Transparent = false after reload, want the t toggle kept")
	}
	if !e.Options().ShowWhitespace {
		t.Error("ShowWhitespace = false after reload, want the w toggle kept")
	}

	// A reload that changes a setting applies the file value.
	cfg.Glyphs.ShowWhitespace = true
	app.ApplyConfig(cfg)
	cfg.Glyphs.ShowWhitespace = false
	app.ApplyConfig(cfg)
	if e.Options().ShowWhitespace {
		t.Error("ShowWhitespace = true, want the file value after it changed")
	}
	if !e.Options().Transparent {
		t.Error("Transparent = false, want the t toggle kept")
	}
}
