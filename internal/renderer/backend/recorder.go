package backend

import (
	"sync"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// OpKind identifies a recorded surface call.
type OpKind int

const (
	OpSave OpKind = iota
	OpRestore
	OpSetTransform
	OpClip
	OpSetAlpha
	OpSetFont
	OpFillRect
	OpClearRect
	OpFillText
	OpStrokePolygon
	OpFlush
)

var opNames = [...]string{
	OpSave:          "save",
	OpRestore:       "restore",
	OpSetTransform:  "setTransform",
	OpClip:          "clip",
	OpSetAlpha:      "setAlpha",
	OpSetFont:       "setFont",
	OpFillRect:      "fillRect",
	OpClearRect:     "clearRect",
	OpFillText:      "fillText",
	OpStrokePolygon: "strokePolygon",
	OpFlush:         "flush",
}

// String returns the call name.
func (k OpKind) String() string {
	if k >= 0 && int(k) < len(opNames) {
		return opNames[k]
	}
	return "unknown"
}

// Op is one recorded call together with the state it ran under.
type Op struct {
	Kind OpKind

	// State in effect when the call was made (after it, for state setters).
	Transform core.Affine
	Clip      core.Rect // device pixels
	Alpha     float64
	Font      Font

	// Call arguments. Rect is in world coordinates.
	Rect   core.Rect
	Color  core.Color
	Text   string
	X, Y   float64
	Points []core.Point
	Stroke Stroke
}

// Device returns the op's rectangle in device pixels.
func (o Op) Device() core.Rect {
	return o.Transform.ApplyRect(o.Rect)
}

// Recorder is a Surface that records every call for inspection in tests.
type Recorder struct {
	mu     sync.Mutex
	width  float64
	height float64
	dpr    float64
	st     stack
	ops    []Op
}

// NewRecorder creates a recorder with the given size in screen pixels.
func NewRecorder(width, height, dpr float64) *Recorder {
	if !(dpr > 0) {
		dpr = 1
	}
	return &Recorder{
		width:  width,
		height: height,
		dpr:    dpr,
		st:     stack{cur: defaultState(width*dpr, height*dpr)},
	}
}

func (r *Recorder) record(op Op) {
	op.Transform = r.st.cur.transform
	op.Clip = r.st.cur.clip
	op.Alpha = r.st.cur.alpha
	op.Font = r.st.cur.font
	r.ops = append(r.ops, op)
}

func (r *Recorder) Size() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *Recorder) PixelRatio() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dpr
}

func (r *Recorder) Save() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Op{Kind: OpSave})
	r.st.save()
}

func (r *Recorder) Restore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.restore()
	r.record(Op{Kind: OpRestore})
}

func (r *Recorder) SetTransform(m core.Affine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.cur.transform = m
	r.record(Op{Kind: OpSetTransform})
}

func (r *Recorder) Transform() core.Affine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.cur.transform
}

func (r *Recorder) Clip(rect core.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.clip(rect)
	r.record(Op{Kind: OpClip, Rect: rect})
}

func (r *Recorder) ClipBounds() core.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.cur.clip
}

func (r *Recorder) SetAlpha(a float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.setAlpha(a)
	r.record(Op{Kind: OpSetAlpha})
}

func (r *Recorder) SetFont(f Font) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.cur.font = f
	r.record(Op{Kind: OpSetFont})
}

func (r *Recorder) FillRect(rect core.Rect, c core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Op{Kind: OpFillRect, Rect: rect, Color: c})
}

func (r *Recorder) ClearRect(rect core.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Op{Kind: OpClearRect, Rect: rect})
}

func (r *Recorder) FillText(text string, x, y float64, c core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Op{Kind: OpFillText, Text: text, X: x, Y: y, Color: c})
}

func (r *Recorder) StrokePolygon(pts []core.Point, s Stroke) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Dash = append([]float64(nil), s.Dash...)
	r.record(Op{Kind: OpStrokePolygon, Points: append([]core.Point(nil), pts...), Stroke: s})
}

func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Op{Kind: OpFlush})
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// OpsOf returns the recorded calls of one kind.
func (r *Recorder) OpsOf(kind OpKind) []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Count returns the number of recorded calls of one kind.
func (r *Recorder) Count(kind OpKind) int {
	return len(r.OpsOf(kind))
}

// Reset discards the recorded calls. The state stack is kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}

// Depth returns the number of unmatched Save calls.
func (r *Recorder) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.depth()
}

// Resize changes the surface size and resets the state stack.
func (r *Recorder) Resize(width, height, dpr float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !(dpr > 0) {
		dpr = 1
	}
	r.width, r.height, r.dpr = width, height, dpr
	r.st = stack{cur: defaultState(width*dpr, height*dpr)}
}
