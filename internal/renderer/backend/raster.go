package backend

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// monoAdvance is the advance width of Go Mono in ems.
const monoAdvance = 0.6

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func loadMono() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// Raster is a Surface backed by an RGBA image. Rectangles are composited
// directly into the image; text and strokes go through gg.
type Raster struct {
	mu     sync.Mutex
	width  float64
	height float64
	dpr    float64
	img    *image.RGBA
	dc     *gg.Context
	st     stack
	font   *truetype.Font
	faces  map[float64]font.Face
}

// NewRaster creates a transparent raster surface of the given size in
// screen pixels. The image is width*dpr by height*dpr device pixels.
func NewRaster(width, height, dpr float64) (*Raster, error) {
	if !(width > 0) || !(height > 0) {
		return nil, fmt.Errorf("raster: invalid size %vx%v", width, height)
	}
	if !(dpr > 0) || !core.IsFinite(dpr) {
		dpr = 1
	}
	f, err := loadMono()
	if err != nil {
		return nil, fmt.Errorf("raster: parse font: %w", err)
	}

	dw, dh := int(math.Round(width*dpr)), int(math.Round(height*dpr))
	img := image.NewRGBA(image.Rect(0, 0, dw, dh))
	return &Raster{
		width:  width,
		height: height,
		dpr:    dpr,
		img:    img,
		dc:     gg.NewContextForRGBA(img),
		st:     stack{cur: defaultState(float64(dw), float64(dh))},
		font:   f,
		faces:  make(map[float64]font.Face),
	}, nil
}

func (r *Raster) Size() (float64, float64) {
	return r.width, r.height
}

func (r *Raster) PixelRatio() float64 {
	return r.dpr
}

func (r *Raster) Save() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.save()
}

func (r *Raster) Restore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.restore()
}

func (r *Raster) SetTransform(m core.Affine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.cur.transform = m
}

func (r *Raster) Transform() core.Affine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.cur.transform
}

func (r *Raster) Clip(rect core.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.clip(rect)
}

func (r *Raster) ClipBounds() core.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.cur.clip
}

func (r *Raster) SetAlpha(a float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.setAlpha(a)
}

func (r *Raster) SetFont(f Font) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.cur.font = f
}

// devicePixels converts a world rectangle to the covered device pixels,
// limited to the clip. Edges are rounded so adjacent rectangles abut.
func (r *Raster) devicePixels(rect core.Rect) image.Rectangle {
	d := r.st.cur.transform.ApplyRect(rect).Intersection(r.st.cur.clip)
	if d.IsEmpty() {
		return image.Rectangle{}
	}
	ir := image.Rect(
		int(math.Round(d.Min.X)), int(math.Round(d.Min.Y)),
		int(math.Round(d.Max.X)), int(math.Round(d.Max.Y)),
	)
	return ir.Intersect(r.img.Bounds())
}

func (r *Raster) FillRect(rect core.Rect, c core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c = c.WithAlpha(r.st.cur.alpha)
	if c.IsTransparent() {
		return
	}
	ir := r.devicePixels(rect)
	if ir.Empty() {
		return
	}
	op := draw.Over
	if c.A == 255 {
		op = draw.Src
	}
	draw.Draw(r.img, ir, image.NewUniform(c.NRGBA()), image.Point{}, op)
}

func (r *Raster) ClearRect(rect core.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ir := r.devicePixels(rect)
	if ir.Empty() {
		return
	}
	draw.Draw(r.img, ir, image.Transparent, image.Point{}, draw.Src)
}

func (r *Raster) FillText(text string, x, y float64, c core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c = c.WithAlpha(r.st.cur.alpha)
	if text == "" || c.IsTransparent() {
		return
	}

	m := r.st.cur.transform
	f := r.st.cur.font
	size := math.Min(f.Advance*math.Abs(m.ScaleX)/monoAdvance, f.LineHeight*math.Abs(m.ScaleY))
	if !(size >= 1) {
		return
	}
	p := m.Apply(core.Pt(x, y))

	r.applyClip()
	r.dc.SetFontFace(r.face(size))
	r.dc.SetColor(c.NRGBA())
	r.dc.DrawStringAnchored(text, p.X, p.Y, 0, 0.5)
	r.dc.ResetClip()
}

func (r *Raster) StrokePolygon(pts []core.Point, s Stroke) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := s.Color.WithAlpha(r.st.cur.alpha)
	if len(pts) < 2 || c.IsTransparent() {
		return
	}

	m := r.st.cur.transform
	scale := math.Abs(m.ScaleX)
	dash := make([]float64, len(s.Dash))
	for i, d := range s.Dash {
		dash[i] = d * scale
	}

	r.applyClip()
	defer r.dc.ResetClip()
	r.dc.SetColor(c.NRGBA())
	r.dc.SetLineWidth(math.Max(1, s.Width*scale))
	r.dc.SetDash(dash...)
	r.dc.SetDashOffset(s.Offset * scale)
	for i, pt := range pts {
		p := m.Apply(pt)
		if i == 0 {
			r.dc.MoveTo(p.X, p.Y)
		} else {
			r.dc.LineTo(p.X, p.Y)
		}
	}
	r.dc.ClosePath()
	r.dc.Stroke()
	r.dc.SetDash()
}

func (r *Raster) Flush() {}

// applyClip installs the current device clip on the gg context when it is
// narrower than the image.
func (r *Raster) applyClip() {
	b := r.img.Bounds()
	full := core.RectXYWH(0, 0, float64(b.Dx()), float64(b.Dy()))
	clip := r.st.cur.clip
	if clip.ContainsRect(full, 0) {
		return
	}
	r.dc.DrawRectangle(clip.Min.X, clip.Min.Y, clip.Width(), clip.Height())
	r.dc.Clip()
}

// face returns a cached Go Mono face of the given pixel size. Hinting is
// off so advances stay fractional and glyphs stay on the cell grid.
func (r *Raster) face(size float64) font.Face {
	size = math.Round(size*4) / 4
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	r.faces[size] = f
	return f
}

// Image returns the backing image. It is shared, not copied.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// SavePNG writes the surface to a PNG file.
func (r *Raster) SavePNG(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.SavePNG(path)
}

// EncodePNG writes the surface as PNG to w.
func (r *Raster) EncodePNG(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.EncodePNG(w)
}
