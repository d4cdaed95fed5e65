package app

import (
	"github.com/dshills/gridcanvas/internal/renderer"
	"github.com/dshills/gridcanvas/internal/renderer/anim"
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// Input tuning.
const (
	// KeyZoomStep is the zoom multiplier for one + or - press.
	KeyZoomStep = 1.25

	// PanStep is the screen-pixel distance of one h/j/k/l press.
	PanStep = 40.0

	// WheelNotch is the wheel delta of one notch of a terminal wheel event.
	WheelNotch = 100.0
)

// dragState tracks a left-button press.
type dragState struct {
	active bool
	moved  bool
	start  core.Point
	last   core.Point
}

// HandleEvent processes one input event. Returns ErrQuit when the viewer
// should exit.
func (app *Application) HandleEvent(ev backend.Event) error {
	engine := app.Engine()
	if engine == nil {
		return nil
	}

	switch ev.Type {
	case backend.EventResize:
		return app.handleResize(engine)
	case backend.EventKey:
		return app.handleKey(engine, ev)
	case backend.EventMouse:
		return app.handleMouse(engine, ev)
	case backend.EventFocus:
		return app.handleFocus(engine, ev)
	default:
		return nil
	}
}

// handleResize re-reads the surface size. The camera keeps its place.
func (app *Application) handleResize(engine *renderer.Engine) error {
	s := engine.Surface()
	w, h := s.Size()
	engine.Resize(w, h, s.PixelRatio(), false)
	engine.Draw()
	return nil
}

func (app *Application) handleKey(engine *renderer.Engine, ev backend.Event) error {
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyUp:
		app.moveCaret(engine, -1, 0)
	case backend.KeyDown:
		app.moveCaret(engine, 1, 0)
	case backend.KeyLeft:
		app.moveCaret(engine, 0, -1)
	case backend.KeyRight:
		app.moveCaret(engine, 0, 1)
	case backend.KeyHome:
		app.setCaret(engine, core.CellPos{Row: app.caretPos().Row})
	case backend.KeyPageUp:
		_, h := engine.Surface().Size()
		engine.PanBy(0, -h/2)
	case backend.KeyPageDown:
		_, h := engine.Surface().Size()
		engine.PanBy(0, h/2)
	case backend.KeyRune:
		return app.handleRune(engine, ev.Rune)
	}
	return nil
}

func (app *Application) handleRune(engine *renderer.Engine, r rune) error {
	switch r {
	case 'q', 'Q':
		return ErrQuit
	case '+', '=':
		engine.ZoomDelta(KeyZoomStep, nil)
	case '-', '_':
		engine.ZoomDelta(1/KeyZoomStep, nil)
	case '0':
		engine.ZoomToFit()
	case '1':
		engine.ZoomToDefault(0)
	case 'z':
		engine.ZoomOutMax()
	case 'h':
		engine.PanBy(-PanStep, 0)
	case 'l':
		engine.PanBy(PanStep, 0)
	case 'k':
		engine.PanBy(0, -PanStep)
	case 'j':
		engine.PanBy(0, PanStep)
	case 'w':
		opts := engine.Options()
		opts.ShowWhitespace = !opts.ShowWhitespace
		engine.SetOptions(opts)
	case 't':
		engine.DrawBackground(!engine.Options().Transparent)
	case 'c':
		app.cycleCaretStyle(engine)
	case 's':
		app.mu.Lock()
		app.outline = !app.outline
		app.mu.Unlock()
		app.refreshOutline()
	}
	return nil
}

func (app *Application) handleMouse(engine *renderer.Engine, ev backend.Event) error {
	switch ev.MouseButton {
	case backend.MouseWheelUp:
		engine.ZoomWheel(-WheelNotch, ev.Pos)
		return nil
	case backend.MouseWheelDown:
		engine.ZoomWheel(WheelNotch, ev.Pos)
		return nil
	case backend.MouseLeft:
		app.mu.Lock()
		d := &app.drag
		if !d.active {
			*d = dragState{active: true, start: ev.Pos, last: ev.Pos}
			app.mu.Unlock()
			return nil
		}
		dx, dy := d.last.X-ev.Pos.X, d.last.Y-ev.Pos.Y
		d.last = ev.Pos
		if dx != 0 || dy != 0 {
			d.moved = true
		}
		app.mu.Unlock()
		// Content follows the pointer.
		engine.PanBy(dx, dy)
		return nil
	case backend.MouseNone:
		app.mu.Lock()
		d := app.drag
		app.drag = dragState{}
		app.mu.Unlock()
		if d.active && !d.moved {
			app.setCaret(engine, engine.CaretCellAt(d.start))
		}
	}
	return nil
}

// handleFocus hides the caret while the terminal is not focused.
func (app *Application) handleFocus(engine *renderer.Engine, ev backend.Event) error {
	if !ev.Focused {
		engine.StopCaret()
		return nil
	}
	if engine.Caret() == nil {
		app.mu.Lock()
		caret, style := app.caret, app.caretStyle
		app.mu.Unlock()
		engine.StartCaret(caret, style)
	}
	return nil
}

func (app *Application) caretPos() core.CellPos {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.caret
}

// moveCaret moves the caret by a cell offset, staying inside the grid.
func (app *Application) moveCaret(engine *renderer.Engine, dr, dc int) {
	pos := app.caretPos()
	app.setCaret(engine, core.CellPos{Row: pos.Row + dr, Col: pos.Col + dc})
}

// setCaret clamps pos to the grid and moves the caret there.
func (app *Application) setCaret(engine *renderer.Engine, pos core.CellPos) {
	rows, cols := app.doc.GridSize()
	pos.Row = clampInt(pos.Row, 0, rows-1)
	pos.Col = clampInt(pos.Col, 0, cols)

	app.mu.Lock()
	if pos == app.caret {
		app.mu.Unlock()
		return
	}
	app.caret = pos
	style := app.caretStyle
	app.mu.Unlock()

	if !engine.MoveCaret(pos) {
		engine.StartCaret(pos, style)
	}
	app.refreshOutline()
}

func (app *Application) cycleCaretStyle(engine *renderer.Engine) {
	app.mu.Lock()
	switch app.caretStyle {
	case anim.CaretBeam:
		app.caretStyle = anim.CaretBlock
	case anim.CaretBlock:
		app.caretStyle = anim.CaretUnderline
	default:
		app.caretStyle = anim.CaretBeam
	}
	caret, style := app.caret, app.caretStyle
	app.mu.Unlock()

	engine.StartCaret(caret, style)
}

// refreshOutline starts, moves or stops the outline around the caret row.
func (app *Application) refreshOutline() {
	engine := app.Engine()
	if engine == nil {
		return
	}
	app.mu.Lock()
	on, row := app.outline, app.caret.Row
	app.mu.Unlock()

	if !on {
		engine.StopOutline()
		return
	}
	poly := rowOutline(engine, row)
	if !engine.SetOutline(poly) {
		engine.StartOutline(poly)
	}
}

// rowOutline returns the world rectangle around one grid row.
func rowOutline(engine *renderer.Engine, row int) []core.Point {
	cells := engine.CellMetrics()
	area := engine.Area()
	y0 := float64(row) * cells.Height
	y1 := y0 + cells.Height
	return []core.Point{
		{X: area.Min.X, Y: y0},
		{X: area.Max.X, Y: y0},
		{X: area.Max.X, Y: y1},
		{X: area.Min.X, Y: y1},
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
