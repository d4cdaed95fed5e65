// Package main is the entry point for the gridcanvas viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/dshills/gridcanvas/internal/app"
	"github.com/dshills/gridcanvas/internal/config"
	"github.com/dshills/gridcanvas/internal/renderer/backend"
	"github.com/dshills/gridcanvas/internal/server"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// flags holds the parsed command line.
type flags struct {
	configPath string
	document   string
	logLevel   string
	watch      bool

	// PNG export
	pngPath     string
	width       float64
	height      float64
	dpr         float64
	zoom        float64
	transparent bool

	// Preview server
	serveAddr string
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	// The log settings live in the config file; read it once up front.
	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	level := cfg.Log.Level
	if f.logLevel != "" {
		level = f.logLevel
	}

	interactive := f.pngPath == "" && f.serveAddr == ""
	var log *app.Logger
	closeLog := func() error { return nil }
	if interactive && cfg.Log.File == "" {
		// The terminal belongs to the viewer.
		log = app.NullLogger
	} else {
		log, closeLog, err = app.OpenLogger(level, cfg.Log.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	defer closeLog()

	application, err := app.New(app.Options{
		ConfigPath:   f.configPath,
		DocumentPath: f.document,
		Watch:        f.watch,
		Logger:       log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	switch {
	case f.pngPath != "":
		return exportPNG(application, f, log)
	case f.serveAddr != "":
		return serve(application, f, log)
	default:
		return view(application)
	}
}

func exportPNG(application *app.Application, f flags, log *app.Logger) int {
	req := app.SnapshotRequest{Width: f.width, Height: f.height, PixelRatio: f.dpr, Zoom: f.zoom}
	if f.transparent {
		req.Transparent = &f.transparent
	}
	if err := app.ExportPNG(f.pngPath, application.Document(), application.Config(), req, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Info("exported", "path", f.pngPath)
	return 0
}

func serve(application *app.Application, f flags, log *app.Logger) int {
	if f.watch && f.configPath != "" {
		w, err := config.NewWatcher(f.configPath, application.ApplyConfig,
			config.WithErrorHandler(func(err error) {
				log.Warn("config reload failed", "error", err)
			}))
		if err != nil {
			log.Warn("config watch unavailable", "path", f.configPath, "error", err)
		} else {
			defer w.Close()
		}
	}

	srv := &http.Server{
		Addr:              f.serveAddr,
		Handler:           server.NewRouter(application, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving", "addr", f.serveAddr, "document", application.Document().Name())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func view(application *app.Application) int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal; use -png or -serve")
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	screen, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetScreen(screen); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set screen: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() flags {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&f.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	flag.BoolVar(&f.watch, "watch", false, "Reload the configuration file when it changes")
	flag.StringVar(&f.pngPath, "png", "", "Render one frame to this PNG file and exit")
	flag.Float64Var(&f.width, "width", 800, "PNG width in pixels")
	flag.Float64Var(&f.height, "height", 600, "PNG height in pixels")
	flag.Float64Var(&f.dpr, "dpr", 1, "PNG device pixel ratio")
	flag.Float64Var(&f.zoom, "zoom", 0, "PNG zoom level (0 fits the document)")
	flag.BoolVar(&f.transparent, "transparent", false, "PNG with the transparency checkerboard")
	flag.StringVar(&f.serveAddr, "serve", "", "Serve PNG previews on this address (e.g. :8080)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gridcanvas - zoomable character-grid viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gridcanvas [options] [document]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridcanvas art.txt                    View a text file\n")
		fmt.Fprintf(os.Stderr, "  gridcanvas -c canvas.toml -watch art.json\n")
		fmt.Fprintf(os.Stderr, "  gridcanvas -png out.png -zoom 2 art.txt\n")
		fmt.Fprintf(os.Stderr, "  gridcanvas -serve :8080 art.json      Then GET /frame.png\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gridcanvas %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch f.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", f.logLevel)
		os.Exit(1)
	}

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: at most one document")
		os.Exit(1)
	}
	f.document = flag.Arg(0)
	return f
}
