package app

import (
	"fmt"
	"os"
	"time"

	"github.com/dshills/gridcanvas/internal/config"
	"github.com/dshills/gridcanvas/internal/document"
	"github.com/dshills/gridcanvas/internal/renderer"
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/camera"
	"github.com/dshills/gridcanvas/internal/renderer/frame"
)

// SnapshotRequest describes a single off-screen frame.
type SnapshotRequest struct {
	Width      float64 // screen pixels
	Height     float64
	PixelRatio float64 // 0 means 1

	// Zoom is the camera level, centered on the document. Zero or less
	// fits the whole document.
	Zoom float64

	// Transparent overrides the configured background when set.
	Transparent *bool
}

// Snapshot is a rendered frame and the camera it was drawn with.
type Snapshot struct {
	Camera     camera.Camera
	Thresholds camera.Thresholds
	Image      *backend.Raster
}

// RenderSnapshot draws doc once onto a raster surface. The document must
// already carry the grid geometry of cfg (see PrepareDocument).
func RenderSnapshot(doc *document.Document, cfg config.Config, req SnapshotRequest, log *Logger) (*Snapshot, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if log == nil {
		log = NullLogger
	}

	opts, _, err := EngineOptions(cfg)
	if err != nil {
		return nil, NewOperationError("snapshot", doc.Name(), err)
	}
	if req.Transparent != nil {
		opts.Transparent = *req.Transparent
	}

	raster, err := backend.NewRaster(req.Width, req.Height, req.PixelRatio)
	if err != nil {
		return nil, NewOperationError("snapshot", doc.Name(), err)
	}

	engine := renderer.New(raster, doc, doc, frame.NewManual(time.Now()), opts, log.WithComponent("renderer"))
	defer engine.StopAnimations()

	w, h := raster.Size()
	if !engine.Resize(w, h, raster.PixelRatio(), true) {
		return nil, NewOperationError("snapshot", doc.Name(), ErrNothingToDraw).
			WithContext(fmt.Sprintf("%vx%v", w, h))
	}
	if req.Zoom > 0 {
		engine.ZoomToDefault(req.Zoom)
	} else {
		engine.ZoomToFit()
	}
	engine.Draw()

	t, _ := engine.Thresholds()
	snap := &Snapshot{Camera: engine.Camera(), Thresholds: t, Image: raster}
	log.Debug("snapshot", "document", doc.Name(), "width", w, "height", h, "camera", snap.Camera)
	return snap, nil
}

// ExportPNG renders doc and writes the frame to path.
func ExportPNG(path string, doc *document.Document, cfg config.Config, req SnapshotRequest, log *Logger) error {
	snap, err := RenderSnapshot(doc, cfg, req, log)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return NewOperationError("export", path, err)
	}
	if err := snap.Image.EncodePNG(f); err != nil {
		f.Close()
		return NewOperationError("export", path, err)
	}
	if err := f.Close(); err != nil {
		return NewOperationError("export", path, err)
	}
	return nil
}
