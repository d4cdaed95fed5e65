// Package server serves rendered frames of a document over HTTP, for
// previewing camera settings without a terminal.
package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dshills/gridcanvas/internal/app"
	"github.com/dshills/gridcanvas/internal/config"
	"github.com/dshills/gridcanvas/internal/document"
)

// Frame size limits in screen pixels.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
	MinSize       = 16
	MaxSize       = 4096
	MaxPixelRatio = 4
)

// Source supplies the document and the configuration to render with.
// *app.Application is a Source.
type Source interface {
	Document() *document.Document
	Config() config.Config
}

// Handler serves frames and camera state for one Source.
type Handler struct {
	src Source
	log *app.Logger
}

// NewRouter returns the preview routes:
//
//	GET /healthz
//	GET /camera?width&height&zoom
//	GET /frame.png?width&height&zoom&dpr&transparent
func NewRouter(src Source, log *app.Logger) http.Handler {
	if log == nil {
		log = app.NullLogger
	}
	h := &Handler{src: src, log: log.WithComponent("server")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/camera", h.Camera)
	r.Get("/frame.png", h.Frame)
	return r
}

// cameraResponse is the JSON body of GET /camera.
type cameraResponse struct {
	Document   string  `json:"document"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Zoom       float64 `json:"zoom"`
	PanX       float64 `json:"panX"`
	PanY       float64 `json:"panY"`
	Fit        float64 `json:"fit"`
	ZoomOutMin float64 `json:"zoomOutMin"`
	ZoomInMax  float64 `json:"zoomInMax"`
}

// Camera handles GET /camera. It reports the camera and the zoom range a
// frame of the requested size would be drawn with.
func (h *Handler) Camera(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := h.render(w, req)
	if !ok {
		return
	}

	doc := h.src.Document()
	respondJSON(w, http.StatusOK, cameraResponse{
		Document:   doc.Name(),
		Width:      req.Width,
		Height:     req.Height,
		Zoom:       snap.Camera.Zoom,
		PanX:       snap.Camera.PanX,
		PanY:       snap.Camera.PanY,
		Fit:        snap.Thresholds.Fit,
		ZoomOutMin: snap.Thresholds.ZoomOutMin,
		ZoomInMax:  snap.Thresholds.ZoomInMax,
	})
}

// Frame handles GET /frame.png.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := h.render(w, req)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := snap.Image.EncodePNG(w); err != nil {
		h.log.Warn("encode frame", "error", err)
	}
}

func (h *Handler) render(w http.ResponseWriter, req app.SnapshotRequest) (*app.Snapshot, bool) {
	start := time.Now()
	snap, err := app.RenderSnapshot(h.src.Document(), h.src.Config(), req, h.log)
	if err != nil {
		h.log.Warn("render failed", "error", err)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, false
	}
	h.log.Debug("rendered", "width", req.Width, "height", req.Height, "zoom", snap.Camera.Zoom,
		"took", time.Since(start))
	return snap, true
}

// parseRequest reads the frame query parameters. Sizes are clamped; a
// malformed number is an error.
func parseRequest(r *http.Request) (app.SnapshotRequest, error) {
	q := r.URL.Query()
	req := app.SnapshotRequest{PixelRatio: 1}

	width, err := parseIntParam(q.Get("width"), "width", DefaultWidth)
	if err != nil {
		return req, err
	}
	height, err := parseIntParam(q.Get("height"), "height", DefaultHeight)
	if err != nil {
		return req, err
	}
	req.Width = float64(clamp(width, MinSize, MaxSize))
	req.Height = float64(clamp(height, MinSize, MaxSize))

	if req.Zoom, err = parseFloatParam(q.Get("zoom"), "zoom", 0); err != nil {
		return req, err
	}
	dpr, err := parseFloatParam(q.Get("dpr"), "dpr", 1)
	if err != nil {
		return req, err
	}
	if dpr > MaxPixelRatio {
		dpr = MaxPixelRatio
	}
	req.PixelRatio = dpr

	if s := q.Get("transparent"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return req, &ParamError{Name: "transparent", Value: s}
		}
		req.Transparent = &v
	}
	return req, nil
}

// ParamError reports a malformed query parameter.
type ParamError struct {
	Name  string
	Value string
}

func (e *ParamError) Error() string {
	return "invalid " + e.Name + " " + strconv.Quote(e.Value)
}

func parseIntParam(s, name string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParamError{Name: name, Value: s}
	}
	return v, nil
}

func parseFloatParam(s, name string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1e6 {
		return 0, &ParamError{Name: name, Value: s}
	}
	return v, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
