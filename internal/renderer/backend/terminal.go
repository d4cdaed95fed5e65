package backend

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// Virtual pixel size of one terminal cell.
const (
	DefaultCellPixelWidth  = 8.0
	DefaultCellPixelHeight = 16.0
)

// Terminal is a Surface drawn with tcell. Every terminal cell stands for a
// box of virtual pixels; a fill or stroke paints the cells whose centers it
// covers, and text places one grapheme per advance.
type Terminal struct {
	mu            sync.Mutex
	screen        tcell.Screen
	buf           *CellBuffer
	cellW, cellH  float64
	st            stack
	resizeHandler func(width, height int)
}

// NewTerminal creates a new terminal surface on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen creates a terminal surface on an existing screen,
// such as a tcell simulation screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen: screen,
		buf:    NewCellBuffer(0, 0),
		cellW:  DefaultCellPixelWidth,
		cellH:  DefaultCellPixelHeight,
	}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}

	// Wheel zoom and drag pan need mouse reporting
	t.screen.EnableMouse()

	t.resize(t.screen.Size())
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// resize must be called with the lock held.
func (t *Terminal) resize(cols, rows int) {
	t.buf.Resize(cols, rows)
	t.st = stack{cur: defaultState(float64(cols)*t.cellW, float64(rows)*t.cellH)}
}

// OnResize registers a callback for terminal resize events.
func (t *Terminal) OnResize(callback func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resizeHandler = callback
}

// Cells returns the terminal size in cells.
func (t *Terminal) Cells() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.buf.Size()
}

// CellPixelSize returns the virtual pixel size of one terminal cell.
func (t *Terminal) CellPixelSize() (width, height float64) {
	return t.cellW, t.cellH
}

// Cell returns the painted content of one terminal cell.
func (t *Terminal) Cell(x, y int) TermCell {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.buf.Get(x, y)
}

func (t *Terminal) Size() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows := t.buf.Size()
	return float64(cols) * t.cellW, float64(rows) * t.cellH
}

func (t *Terminal) PixelRatio() float64 {
	return 1
}

func (t *Terminal) Save() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.save()
}

func (t *Terminal) Restore() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.restore()
}

func (t *Terminal) SetTransform(m core.Affine) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.cur.transform = m
}

func (t *Terminal) Transform() core.Affine {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.st.cur.transform
}

func (t *Terminal) Clip(r core.Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.clip(r)
}

func (t *Terminal) ClipBounds() core.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.st.cur.clip
}

func (t *Terminal) SetAlpha(a float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.setAlpha(a)
}

func (t *Terminal) SetFont(f Font) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.st.cur.font = f
}

// cellSpan returns the cells whose centers lie inside a device rectangle.
func (t *Terminal) cellSpan(d core.Rect) (x0, y0, x1, y1 int) {
	d = d.Intersection(t.st.cur.clip)
	if d.IsEmpty() {
		return 0, 0, 0, 0
	}
	x0 = int(math.Ceil(d.Min.X/t.cellW - 0.5))
	y0 = int(math.Ceil(d.Min.Y/t.cellH - 0.5))
	x1 = int(math.Ceil(d.Max.X/t.cellW - 0.5))
	y1 = int(math.Ceil(d.Max.Y/t.cellH - 0.5))
	return x0, y0, x1, y1
}

func (t *Terminal) FillRect(r core.Rect, c core.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c = c.WithAlpha(t.st.cur.alpha)
	if c.IsTransparent() {
		return
	}
	x0, y0, x1, y1 := t.cellSpan(t.st.cur.transform.ApplyRect(r))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cell := t.buf.Get(x, y)
			if c.A == 255 {
				cell = TermCell{Bg: c}
			} else {
				cell.Bg = over(cell.Bg, c)
			}
			t.buf.Set(x, y, cell)
		}
	}
}

func (t *Terminal) ClearRect(r core.Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()

	x0, y0, x1, y1 := t.cellSpan(t.st.cur.transform.ApplyRect(r))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			t.buf.Set(x, y, TermCell{})
		}
	}
}

func (t *Terminal) FillText(text string, x, y float64, c core.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c = c.WithAlpha(t.st.cur.alpha)
	if text == "" || c.IsTransparent() {
		return
	}
	m := t.st.cur.transform
	p := m.Apply(core.Pt(x, y))
	advance := t.st.cur.font.Advance * math.Abs(m.ScaleX)
	if !(advance > 0) {
		return
	}
	row := int(math.Floor(p.Y / t.cellH))

	i := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		cx := p.X + (float64(i)+0.5)*advance
		i++
		g := gr.Str()
		if g == " " || !t.st.cur.clip.Contains(core.Pt(cx, p.Y)) {
			continue
		}
		col := int(math.Floor(cx / t.cellW))
		cell := t.buf.Get(col, row)
		cell.Text = g
		cell.Fg = c
		t.buf.Set(col, row, cell)
	}
}

func (t *Terminal) StrokePolygon(pts []core.Point, s Stroke) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := s.Color.WithAlpha(t.st.cur.alpha)
	if len(pts) < 2 || c.IsTransparent() {
		return
	}
	m := t.st.cur.transform
	scale := math.Abs(m.ScaleX)
	dash := make([]float64, len(s.Dash))
	for i, d := range s.Dash {
		dash[i] = d * scale
	}
	offset := s.Offset * scale
	step := math.Min(t.cellW, t.cellH) / 2

	dist := 0.0
	for i := range pts {
		a := m.Apply(pts[i])
		b := m.Apply(pts[(i+1)%len(pts)])
		length := math.Hypot(b.X-a.X, b.Y-a.Y)
		for d := 0.0; d < length; d += step {
			if !DashOn(dist+d+offset, dash) {
				continue
			}
			f := d / length
			p := core.Pt(a.X+(b.X-a.X)*f, a.Y+(b.Y-a.Y)*f)
			if !t.st.cur.clip.Contains(p) {
				continue
			}
			col, row := int(math.Floor(p.X/t.cellW)), int(math.Floor(p.Y/t.cellH))
			cell := t.buf.Get(col, row)
			cell.Bg = over(cell.Bg, c)
			t.buf.Set(col, row, cell)
		}
		dist += length
	}
}

// Flush sends changed cells to the terminal and shows them.
func (t *Terminal) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range t.buf.Diff() {
		mainc, comb := splitText(ch.Cell.Text)
		t.screen.SetContent(ch.X, ch.Y, mainc, comb, convertStyle(ch.Cell))
	}
	t.buf.Sync()
	t.screen.Show()
}

// PollEvent waits for and returns the next input event.
func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	return t.convertEvent(ev)
}

// PostEvent posts a synthetic key event to the event queue.
func (t *Terminal) PostEvent(event Event) {
	if event.Type == EventKey {
		tcellEv := tcell.NewEventKey(convertToTcellKey(event.Key), event.Rune, convertToTcellMod(event.Mod))
		_ = t.screen.PostEvent(tcellEv) // best-effort; event queue may be full
	}
}

// convertEvent converts tcell events to our Event type.
func (t *Terminal) convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{
			Type: EventKey,
			Key:  convertKey(e.Key()),
			Rune: e.Rune(),
			Mod:  convertMod(e.Modifiers()),
		}

	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:        EventMouse,
			Pos:         core.Pt((float64(x)+0.5)*t.cellW, (float64(y)+0.5)*t.cellH),
			MouseButton: convertMouseButton(e.Buttons()),
			Mod:         convertMod(e.Modifiers()),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		t.mu.Lock()
		t.resize(w, h)
		handler := t.resizeHandler
		t.mu.Unlock()
		if handler != nil {
			handler(w, h)
		}
		return Event{
			Type:   EventResize,
			Width:  w,
			Height: h,
		}

	case *tcell.EventFocus:
		return Event{
			Type:    EventFocus,
			Focused: e.Focused,
		}

	default:
		return Event{Type: EventNone}
	}
}

// convertStyle converts a painted cell to tcell.Style.
func convertStyle(c TermCell) tcell.Style {
	style := tcell.StyleDefault
	if !c.Fg.IsTransparent() {
		style = style.Foreground(tcell.NewRGBColor(int32(c.Fg.R), int32(c.Fg.G), int32(c.Fg.B)))
	}
	if !c.Bg.IsTransparent() {
		style = style.Background(tcell.NewRGBColor(int32(c.Bg.R), int32(c.Bg.G), int32(c.Bg.B)))
	}
	return style
}

func splitText(text string) (rune, []rune) {
	runes := []rune(text)
	if len(runes) == 0 {
		return ' ', nil
	}
	return runes[0], runes[1:]
}

// over composites src onto dst.
func over(dst, src core.Color) core.Color {
	if src.A == 255 || dst.IsTransparent() {
		return src
	}
	opaque := src
	opaque.A = 255
	mixed := dst.Blend(opaque, float64(src.A)/255)
	mixed.A = max(dst.A, src.A)
	return mixed
}

// DashOn reports whether position pos along a path falls on a dash of the
// on/off pattern. An empty pattern is solid; an odd-length pattern repeats
// twice, as in canvas dashing.
func DashOn(pos float64, dash []float64) bool {
	if len(dash)%2 == 1 {
		dash = append(append([]float64(nil), dash...), dash...)
	}
	period := 0.0
	for _, d := range dash {
		period += d
	}
	if len(dash) == 0 || !(period > 0) {
		return true
	}
	pos = math.Mod(pos, period)
	if pos < 0 {
		pos += period
	}
	on := true
	for i := 0; ; i = (i + 1) % len(dash) {
		if pos < dash[i] {
			return on
		}
		pos -= dash[i]
		on = !on
	}
}
