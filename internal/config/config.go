package config

// Config is the complete set of gridcanvas settings.
type Config struct {
	Camera     CameraConfig     `toml:"camera" yaml:"camera"`
	Wheel      WheelConfig      `toml:"wheel" yaml:"wheel"`
	Grid       GridConfig       `toml:"grid" yaml:"grid"`
	Background BackgroundConfig `toml:"background" yaml:"background"`
	Glyphs     GlyphsConfig     `toml:"glyphs" yaml:"glyphs"`
	Animation  AnimationConfig  `toml:"animation" yaml:"animation"`

	// Palette maps glyph color indices to colors.
	Palette []string `toml:"palette" yaml:"palette"`

	Log LogConfig `toml:"log" yaml:"log"`
}

// CameraConfig holds zoom range settings.
type CameraConfig struct {
	// ZoomInMax is the highest zoom level.
	ZoomInMax float64 `toml:"zoomInMax" yaml:"zoomInMax"`

	// OutRatio divides the fit zoom to get the lowest zoom level.
	OutRatio float64 `toml:"outRatio" yaml:"outRatio"`

	// Tolerance is the rounding step below which zoom changes are ignored.
	Tolerance float64 `toml:"tolerance" yaml:"tolerance"`

	// DefaultZoom is the level the "default zoom" command goes to.
	DefaultZoom float64 `toml:"defaultZoom" yaml:"defaultZoom"`
}

// WheelConfig holds wheel zoom tuning.
type WheelConfig struct {
	ScrollBase     float64 `toml:"scrollBase" yaml:"scrollBase"`
	BoostThreshold float64 `toml:"boostThreshold" yaml:"boostThreshold"`
	Boost          float64 `toml:"boost" yaml:"boost"`
}

// GridConfig holds cell geometry.
type GridConfig struct {
	CellWidth  float64 `toml:"cellWidth" yaml:"cellWidth"`
	CellHeight float64 `toml:"cellHeight" yaml:"cellHeight"`
}

// BackgroundConfig holds background settings.
type BackgroundConfig struct {
	Color       string `toml:"color" yaml:"color"`
	Transparent bool   `toml:"transparent" yaml:"transparent"`

	// CheckerSize is the checker square edge in device pixels.
	CheckerSize   float64  `toml:"checkerSize" yaml:"checkerSize"`
	CheckerColors []string `toml:"checkerColors" yaml:"checkerColors"`
}

// GlyphsConfig holds text rendering settings.
type GlyphsConfig struct {
	// TextColor is used for color indices missing from the palette.
	TextColor       string  `toml:"textColor" yaml:"textColor"`
	ShowWhitespace  bool    `toml:"showWhitespace" yaml:"showWhitespace"`
	WhitespaceColor string  `toml:"whitespaceColor" yaml:"whitespaceColor"`
	Opacity         float64 `toml:"opacity" yaml:"opacity"`
}

// AnimationConfig holds caret and outline settings.
type AnimationConfig struct {
	FrameIntervalMS int `toml:"frameIntervalMs" yaml:"frameIntervalMs"`

	// CaretStyle is "beam", "block" or "underline".
	CaretStyle   string `toml:"caretStyle" yaml:"caretStyle"`
	CaretColor   string `toml:"caretColor" yaml:"caretColor"`
	CaretCycleMS int    `toml:"caretCycleMs" yaml:"caretCycleMs"`

	AntsDash   float64  `toml:"antsDash" yaml:"antsDash"`
	AntsWidth  float64  `toml:"antsWidth" yaml:"antsWidth"`
	AntsSpeed  float64  `toml:"antsSpeed" yaml:"antsSpeed"`
	AntsColors []string `toml:"antsColors" yaml:"antsColors"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" yaml:"level"`

	// File receives log output. Empty means standard error.
	File string `toml:"file" yaml:"file"`
}

// DefaultPalette is the 16-color table used when none is configured.
var DefaultPalette = []string{
	"#ffffff", "#cd3131", "#0dbc79", "#e5e510",
	"#2472c8", "#bc3fbc", "#11a8cd", "#e5e5e5",
	"#666666", "#f14c4c", "#23d18b", "#f5f543",
	"#3b8eea", "#d670d6", "#29b8db", "#000000",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			ZoomInMax:   8,
			OutRatio:    1.4,
			Tolerance:   1e-4,
			DefaultZoom: 1,
		},
		Wheel: WheelConfig{
			ScrollBase:     1.2,
			BoostThreshold: 10,
			Boost:          6,
		},
		Grid: GridConfig{
			CellWidth:  8,
			CellHeight: 16,
		},
		Background: BackgroundConfig{
			Color:         "#000000",
			CheckerSize:   8,
			CheckerColors: []string{"#cccccc", "#ffffff"},
		},
		Glyphs: GlyphsConfig{
			TextColor:       "#ffffff",
			WhitespaceColor: "#808080",
			Opacity:         1,
		},
		Animation: AnimationConfig{
			FrameIntervalMS: 16,
			CaretStyle:      "beam",
			CaretColor:      "#ffffff",
			CaretCycleMS:    800,
			AntsDash:        4,
			AntsWidth:       1,
			AntsSpeed:       20,
			AntsColors:      []string{"#000000", "#ffffff"},
		},
		Palette: append([]string(nil), DefaultPalette...),
		Log: LogConfig{
			Level: "info",
		},
	}
}
