// Package renderer is the display engine for a zoomable character grid.
//
// The engine is responsible for:
//   - Keeping a zoom/pan camera within the content's zoom range and bounds
//   - Converting between screen pixels, world coordinates and grid cells
//   - Painting a flat or checkerboard background behind the content
//   - Batching the glyph grid into as few text draws as possible
//   - Running the blinking caret and marching-ants outline animations
//
// Architecture:
//
// The renderer follows a layered design:
//
//	┌─────────────────────────────────────────┐
//	│            Engine (Facade)              │
//	├─────────────────────────────────────────┤
//	│  camera   │ glyph  │ background │ anim  │
//	│  Viewport │ Batch  │ checker    │ Sched │
//	├─────────────────────────────────────────┤
//	│      backend.Surface │ frame.Pacer      │
//	├─────────────────────────────────────────┤
//	│  Raster (gg) │ Terminal (tcell) │ Rec.  │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	surface, _ := backend.NewRaster(1200, 800, 1)
//	e := renderer.New(surface, layout, content, frame.NewTicker(), renderer.DefaultOptions(), nil)
//	e.Resize(1200, 800, 1, true)
//	e.Draw()
package renderer
