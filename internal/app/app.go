// Package app is the interactive gridcanvas viewer. It wires the
// configuration, the document and the rendering engine to a terminal
// screen, translates input into camera and caret commands, and applies
// configuration changes while running.
package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/gridcanvas/internal/config"
	"github.com/dshills/gridcanvas/internal/document"
	"github.com/dshills/gridcanvas/internal/renderer"
	"github.com/dshills/gridcanvas/internal/renderer/anim"
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/renderer/core"
	"github.com/dshills/gridcanvas/internal/renderer/frame"
)

// Screen is an interactive surface: something to draw on that also
// produces input events. backend.Terminal is the production screen.
type Screen interface {
	backend.Surface
	Init() error
	Shutdown()
	PollEvent() backend.Event
	PostEvent(ev backend.Event)
}

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML or YAML configuration file. Empty uses defaults.
	ConfigPath string

	// DocumentPath is the text or JSON document to show. Empty shows a
	// built-in sample.
	DocumentPath string

	// Watch reloads the configuration file when it changes.
	Watch bool

	// Logger receives application logs. Nil discards them.
	Logger *Logger
}

// Application is the viewer: it owns the engine and routes input to it.
type Application struct {
	mu sync.Mutex

	opts Options
	cfg  config.Config
	log  *Logger

	doc     *document.Document
	screen  Screen
	engine  *renderer.Engine
	watcher *config.Watcher
	metrics *Metrics

	// Interaction state
	caret      core.CellPos
	caretStyle anim.CaretStyle
	outline    bool
	drag       dragState

	running  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once
}

// New loads the configuration and the document.
func New(opts Options) (*Application, error) {
	log := opts.Logger
	if log == nil {
		log = NullLogger
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	doc, err := openDocument(opts.DocumentPath)
	if err != nil {
		return nil, &InitError{Component: "document", Err: err}
	}

	_, palette, err := EngineOptions(cfg)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	app := &Application{
		opts:       opts,
		cfg:        cfg,
		log:        log,
		doc:        doc,
		caretStyle: anim.ParseCaretStyle(cfg.Animation.CaretStyle),
		metrics:    NewMetrics(),
		done:       make(chan struct{}),
	}
	if err := PrepareDocument(doc, cfg.Grid, palette); err != nil {
		return nil, &InitError{Component: "document", Err: err}
	}
	log.Info("loaded", "document", doc.Name(), "config", opts.ConfigPath)
	return app, nil
}

func openDocument(path string) (*document.Document, error) {
	if path == "" {
		return document.FromLines("sample", sampleLines), nil
	}
	return document.Load(path)
}

// sampleLines is shown when no document is given.
var sampleLines = []string{
	"gridcanvas",
	"",
	"  wheel / + -   zoom        drag / h j k l   pan",
	"  0 fit   1 default   z zoom out fully",
	"  arrows move the caret     c caret style",
	"  s outline the caret row   w whitespace   t transparency",
	"  q quit",
	"",
	"  wide:  日本語  ｆｕｌｌ  emoji: 🎨",
}

// SetScreen attaches the screen Run draws on.
func (app *Application) SetScreen(s Screen) error {
	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.mu.Lock()
	defer app.mu.Unlock()
	app.screen = s
	return nil
}

// Config returns the configuration in effect.
func (app *Application) Config() config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// Document returns the document being shown.
func (app *Application) Document() *document.Document {
	return app.doc
}

// Engine returns the rendering engine, nil before Run.
func (app *Application) Engine() *renderer.Engine {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.engine
}

// attach builds the engine on a surface, fits the camera and starts the
// caret.
func (app *Application) attach(surface backend.Surface, pacer frame.Pacer) error {
	opts, _, err := EngineOptions(app.cfg)
	if err != nil {
		return &InitError{Component: "renderer", Err: err}
	}

	engine := renderer.New(surface, app.doc, app.doc, pacer, opts, app.log.WithComponent("renderer"))
	w, h := surface.Size()
	if !engine.Resize(w, h, surface.PixelRatio(), true) {
		app.log.Warn("surface too small to draw", "width", w, "height", h)
	}

	app.mu.Lock()
	app.engine = engine
	style := app.caretStyle
	caret := app.caret
	app.mu.Unlock()

	engine.Draw()
	engine.StartCaret(caret, style)
	return nil
}

// Run attaches the engine to the screen and processes input until quit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.Lock()
	screen := app.screen
	app.mu.Unlock()
	if screen == nil {
		return ErrNoBackend
	}

	if err := screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer screen.Shutdown()

	if err := app.attach(screen, frame.NewTicker()); err != nil {
		return err
	}
	defer app.Engine().Clear()

	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.opts.ConfigPath, app.ApplyConfig,
			config.WithErrorHandler(func(err error) {
				app.log.Warn("config reload failed", "error", err)
			}))
		if err != nil {
			app.log.Warn("config watch unavailable", "path", app.opts.ConfigPath, "error", err)
		} else {
			app.watcher = w
			defer w.Close()
		}
	}

	return app.eventLoop(screen)
}

// eventLoop polls the screen and handles events until quit or Shutdown.
func (app *Application) eventLoop(screen Screen) error {
	for {
		select {
		case <-app.done:
			app.logSession()
			return nil
		default:
		}

		ev := screen.PollEvent()
		start := time.Now()
		err := app.HandleEvent(ev)
		app.metrics.RecordEvent(time.Since(start))
		if errors.Is(err, ErrQuit) {
			app.logSession()
			return nil
		}
		if err != nil {
			app.log.Error("event failed", "type", ev.Type, "error", err)
		}

		start = time.Now()
		if app.Engine().Render() {
			app.metrics.RecordFrame(time.Since(start))
		}
	}
}

// Metrics returns the session timing counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

func (app *Application) logSession() {
	s := app.metrics.Snapshot()
	app.log.Info("session",
		"frames", s.Frames, "avgFrame", s.AvgFrameTime, "maxFrame", s.MaxFrameTime,
		"events", s.Events, "avgEvent", s.AvgEventTime, "uptime", s.Uptime.Round(time.Second))
}

// Shutdown asks Run to return. Safe to call more than once.
func (app *Application) Shutdown() {
	app.doneOnce.Do(func() {
		close(app.done)
	})
	app.mu.Lock()
	screen := app.screen
	app.mu.Unlock()
	if screen != nil && app.running.Load() {
		// Wake PollEvent.
		screen.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyNone})
	}
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// ApplyConfig switches to a new configuration while running: engine
// options, cell size, palette, caret style and log level.
func (app *Application) ApplyConfig(cfg config.Config) {
	opts, palette, err := EngineOptions(cfg)
	if err != nil {
		app.log.Warn("config rejected", "error", err)
		return
	}
	if err := PrepareDocument(app.doc, cfg.Grid, palette); err != nil {
		app.log.Warn("config rejected", "error", err)
		return
	}

	app.mu.Lock()
	prev := app.cfg
	app.cfg = cfg
	app.caretStyle = anim.ParseCaretStyle(cfg.Animation.CaretStyle)
	engine := app.engine
	caret, style := app.caret, app.caretStyle
	app.mu.Unlock()

	app.log.SetLevel(ParseLogLevel(cfg.Log.Level))
	app.log.Info("config applied", "path", app.opts.ConfigPath)
	if engine == nil {
		return
	}

	// The mask is set in code, not in the file. The t and w toggles hold
	// until the file changes the matching setting.
	cur := engine.Options()
	opts.Mask = cur.Mask
	if cfg.Background.Transparent == prev.Background.Transparent {
		opts.Transparent = cur.Transparent
	}
	if cfg.Glyphs.ShowWhitespace == prev.Glyphs.ShowWhitespace {
		opts.ShowWhitespace = cur.ShowWhitespace
	}
	engine.SetOptions(opts)
	w, h := engine.Surface().Size()
	engine.Resize(w, h, engine.Surface().PixelRatio(), false)
	engine.Draw()
	if engine.Caret() != nil {
		engine.StartCaret(caret, style)
	}
	app.refreshOutline()
}

// PrepareDocument pushes the grid geometry and the fallback palette to a
// document.
func PrepareDocument(doc *document.Document, grid config.GridConfig, palette core.Palette) error {
	if err := doc.SetCellSize(grid.CellWidth, grid.CellHeight); err != nil {
		return err
	}
	doc.SetFallbackPalette(palette)
	return nil
}
