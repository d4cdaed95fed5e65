package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
	if len(cfg.Palette) != 16 {
		t.Errorf("len(Palette) = %d, want 16", len(cfg.Palette))
	}
	cfg.Palette[0] = "#123456"
	if DefaultPalette[0] == "#123456" {
		t.Error("Default() should copy the palette")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		path   string
		code   ValidationErrorCode
	}{
		{"zoom max", func(c *Config) { c.Camera.ZoomInMax = 0 }, "camera.zoomInMax", ErrCodeOutOfRange},
		{"out ratio", func(c *Config) { c.Camera.OutRatio = 1 }, "camera.outRatio", ErrCodeOutOfRange},
		{"scroll base", func(c *Config) { c.Wheel.ScrollBase = 0.5 }, "wheel.scrollBase", ErrCodeOutOfRange},
		{"cell width", func(c *Config) { c.Grid.CellWidth = -1 }, "grid.cellWidth", ErrCodeOutOfRange},
		{"background", func(c *Config) { c.Background.Color = "#zzz" }, "background.color", ErrCodeInvalidColor},
		{"checker colors", func(c *Config) { c.Background.CheckerColors = []string{"#fff"} }, "background.checkerColors", ErrCodeRequiredMissing},
		{"opacity", func(c *Config) { c.Glyphs.Opacity = 1.5 }, "glyphs.opacity", ErrCodeOutOfRange},
		{"frame interval", func(c *Config) { c.Animation.FrameIntervalMS = 0 }, "animation.frameIntervalMs", ErrCodeOutOfRange},
		{"caret style", func(c *Config) { c.Animation.CaretStyle = "hbar" }, "animation.caretStyle", ErrCodeInvalidEnum},
		{"ants color", func(c *Config) { c.Animation.AntsColors[1] = "nope" }, "animation.antsColors[1]", ErrCodeInvalidColor},
		{"palette empty", func(c *Config) { c.Palette = nil }, "palette", ErrCodeRequiredMissing},
		{"palette entry", func(c *Config) { c.Palette[3] = "blue-ish" }, "palette[3]", ErrCodeInvalidColor},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level", ErrCodeInvalidEnum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() error type = %T", err)
			}
			if len(verrs) != 1 {
				t.Fatalf("problems = %v, want exactly one", verrs)
			}
			if verrs[0].Path != tt.path || verrs[0].Code != tt.code {
				t.Errorf("problem = %s (%s), want %s (%s)", verrs[0].Path, verrs[0].Code, tt.path, tt.code)
			}
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Camera.ZoomInMax = -1
	cfg.Glyphs.TextColor = "bad"
	cfg.Log.Level = ""

	var verrs ValidationErrors
	if !errors.As(cfg.Validate(), &verrs) {
		t.Fatal("Validate() should return ValidationErrors")
	}
	for _, p := range []string{"camera.zoomInMax", "glyphs.textColor", "log.level"} {
		if !verrs.Has(p) {
			t.Errorf("missing problem for %s in %v", p, verrs)
		}
	}
}

func TestValidationErrorCodeString(t *testing.T) {
	tests := []struct {
		code ValidationErrorCode
		want string
	}{
		{ErrCodeOutOfRange, "out_of_range"},
		{ErrCodeInvalidEnum, "invalid_enum"},
		{ErrCodeInvalidColor, "invalid_color"},
		{ErrCodeRequiredMissing, "required_missing"},
		{ValidationErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ValidationErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		err  ParseError
		want string
	}{
		{ParseError{Path: "a.toml", Line: 2, Column: 5, Message: "bad"}, "parse error in a.toml at line 2, column 5: bad"},
		{ParseError{Path: "a.toml", Line: 2, Message: "bad"}, "parse error in a.toml at line 2: bad"},
		{ParseError{Path: "a.toml", Message: "bad"}, "parse error in a.toml: bad"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"canvas.toml", FormatTOML, false},
		{"canvas.TOML", FormatTOML, false},
		{"canvas.yaml", FormatYAML, false},
		{"dir/canvas.yml", FormatYAML, false},
		{"canvas.json", 0, true},
		{"canvas", 0, true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("FormatOf(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q) = %v, %v, want %v", tt.path, got, err, tt.want)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.toml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q) error = %v", path, err)
		}
		if cfg.Camera.ZoomInMax != Default().Camera.ZoomInMax {
			t.Errorf("Load(%q) should return defaults", path)
		}
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "canvas.toml", `
[camera]
zoomInMax = 12.0

[background]
transparent = true

[animation]
caretStyle = "block"
frameIntervalMs = 33
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Camera.ZoomInMax != 12 {
		t.Errorf("ZoomInMax = %v, want 12", cfg.Camera.ZoomInMax)
	}
	if !cfg.Background.Transparent {
		t.Error("Transparent = false, want true")
	}
	if cfg.Animation.CaretStyle != "block" || cfg.Animation.FrameIntervalMS != 33 {
		t.Errorf("Animation = %+v", cfg.Animation)
	}
	// Untouched settings keep their defaults.
	if cfg.Camera.OutRatio != 1.4 || cfg.Grid.CellHeight != 16 {
		t.Errorf("defaults lost: %+v %+v", cfg.Camera, cfg.Grid)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "canvas.yaml", `
glyphs:
  showWhitespace: true
  opacity: 0.5
palette:
  - "#000000"
  - "#ff0000"
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Glyphs.ShowWhitespace || cfg.Glyphs.Opacity != 0.5 {
		t.Errorf("Glyphs = %+v", cfg.Glyphs)
	}
	if len(cfg.Palette) != 2 || cfg.Palette[1] != "#ff0000" {
		t.Errorf("Palette = %v", cfg.Palette)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Grid != Default().Grid {
		t.Errorf("Grid = %+v, want defaults", cfg.Grid)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name      string
		file      string
		content   string
		wantParse bool
		wantValid bool
	}{
		{"toml syntax", "a.toml", "[camera]\nzoomInMax = =\n", true, false},
		{"toml unknown key", "b.toml", "[camera]\nzoomMax = 3.0\n", true, false},
		{"yaml unknown key", "c.yaml", "grid:\n  cellDepth: 3\n", true, false},
		{"yaml syntax", "d.yaml", "grid: [\n", true, false},
		{"invalid value", "e.toml", "[grid]\ncellWidth = -8.0\n", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			var perr *ParseError
			if got := errors.As(err, &perr); got != tt.wantParse {
				t.Errorf("ParseError = %v, want %v (%v)", got, tt.wantParse, err)
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.wantValid {
				t.Errorf("ErrInvalidConfig = %v, want %v (%v)", got, tt.wantValid, err)
			}
			if perr != nil && perr.Path != path {
				t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
			}
		})
	}
}

func TestTOMLSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("inline", FormatTOML, []byte("[camera]\nzoomInMax = =\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want ParseError", err)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatTOML, FormatYAML} {
		want := Default()
		want.Camera.ZoomInMax = 10
		want.Animation.CaretStyle = "underline"

		data, err := Marshal(want, f)
		if err != nil {
			t.Fatalf("Marshal(%s) error = %v", f, err)
		}
		got, err := Parse("roundtrip", f, data)
		if err != nil {
			t.Fatalf("Parse(%s) error = %v", f, err)
		}
		if got.Camera != want.Camera || got.Animation.CaretStyle != "underline" {
			t.Errorf("%s round trip = %+v, want %+v", f, got.Camera, want.Camera)
		}
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "canvas.toml", "[camera]\nzoomInMax = 4.0\n")

	changes := make(chan Config, 4)
	errs := make(chan error, 4)
	w, err := NewWatcher(path, func(c Config) { changes <- c },
		WithDebounce(20*time.Millisecond),
		WithErrorHandler(func(err error) { errs <- err }))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "canvas.toml", "[camera]\nzoomInMax = 6.0\n")
	select {
	case cfg := <-changes:
		if cfg.Camera.ZoomInMax != 6 {
			t.Errorf("reloaded ZoomInMax = %v, want 6", cfg.Camera.ZoomInMax)
		}
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	writeFile(t, dir, "canvas.toml", "[camera]\nzoomInMax = -1.0\n")
	select {
	case err := <-errs:
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	case cfg := <-changes:
		t.Fatalf("invalid file was accepted: %+v", cfg.Camera)
	case <-time.After(5 * time.Second):
		t.Fatal("no error after invalid write")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "canvas.yaml", "")

	changes := make(chan Config, 1)
	w, err := NewWatcher(path, func(c Config) { changes <- c }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "other.yaml", "grid:\n  cellWidth: 3\n")
	select {
	case <-changes:
		t.Error("change to another file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherClose(t *testing.T) {
	path := writeFile(t, t.TempDir(), "canvas.toml", "")
	w, err := NewWatcher(path, func(Config) {})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close() = %v, want ErrWatcherClosed", err)
	}
}

func TestNewWatcherRejectsFormat(t *testing.T) {
	if _, err := NewWatcher("canvas.ini", func(Config) {}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewWatcher() error = %v, want ErrUnsupportedFormat", err)
	}
}
