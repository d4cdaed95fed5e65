package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/gridcanvas/internal/renderer/core"
)

var (
	caretStyles = []string{"beam", "block", "underline"}
	logLevels   = []string{"debug", "info", "warn", "error"}
)

// Validate checks every setting and returns ValidationErrors listing all
// problems, or nil.
func (c *Config) Validate() error {
	var v validator

	v.positive("camera.zoomInMax", c.Camera.ZoomInMax)
	v.check("camera.outRatio", c.Camera.OutRatio > 1 && finite(c.Camera.OutRatio),
		"must be greater than 1", c.Camera.OutRatio, ErrCodeOutOfRange)
	v.positive("camera.tolerance", c.Camera.Tolerance)
	v.positive("camera.defaultZoom", c.Camera.DefaultZoom)

	v.check("wheel.scrollBase", c.Wheel.ScrollBase > 1 && finite(c.Wheel.ScrollBase),
		"must be greater than 1", c.Wheel.ScrollBase, ErrCodeOutOfRange)
	v.nonNegative("wheel.boostThreshold", c.Wheel.BoostThreshold)
	v.nonNegative("wheel.boost", c.Wheel.Boost)

	v.positive("grid.cellWidth", c.Grid.CellWidth)
	v.positive("grid.cellHeight", c.Grid.CellHeight)

	v.color("background.color", c.Background.Color)
	v.positive("background.checkerSize", c.Background.CheckerSize)
	v.colorPair("background.checkerColors", c.Background.CheckerColors)

	v.color("glyphs.textColor", c.Glyphs.TextColor)
	v.color("glyphs.whitespaceColor", c.Glyphs.WhitespaceColor)
	v.check("glyphs.opacity", c.Glyphs.Opacity >= 0 && c.Glyphs.Opacity <= 1,
		"must be between 0 and 1", c.Glyphs.Opacity, ErrCodeOutOfRange)

	v.check("animation.frameIntervalMs", c.Animation.FrameIntervalMS > 0,
		"must be positive", c.Animation.FrameIntervalMS, ErrCodeOutOfRange)
	v.oneOf("animation.caretStyle", c.Animation.CaretStyle, caretStyles)
	v.color("animation.caretColor", c.Animation.CaretColor)
	v.check("animation.caretCycleMs", c.Animation.CaretCycleMS > 0,
		"must be positive", c.Animation.CaretCycleMS, ErrCodeOutOfRange)
	v.positive("animation.antsDash", c.Animation.AntsDash)
	v.positive("animation.antsWidth", c.Animation.AntsWidth)
	v.nonNegative("animation.antsSpeed", c.Animation.AntsSpeed)
	v.colorPair("animation.antsColors", c.Animation.AntsColors)

	v.check("palette", len(c.Palette) > 0, "must not be empty", len(c.Palette), ErrCodeRequiredMissing)
	for i, entry := range c.Palette {
		v.color(fmt.Sprintf("palette[%d]", i), entry)
	}

	v.oneOf("log.level", c.Log.Level, logLevels)

	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) check(path string, ok bool, msg string, value any, code ValidationErrorCode) {
	if ok {
		return
	}
	v.errs = append(v.errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
}

func (v *validator) positive(path string, f float64) {
	v.check(path, f > 0 && finite(f), "must be positive", f, ErrCodeOutOfRange)
}

func (v *validator) nonNegative(path string, f float64) {
	v.check(path, f >= 0 && finite(f), "must not be negative", f, ErrCodeOutOfRange)
}

func (v *validator) color(path, s string) {
	_, err := core.ParseColor(s)
	v.check(path, err == nil, "not a color", s, ErrCodeInvalidColor)
}

func (v *validator) colorPair(path string, list []string) {
	if len(list) != 2 {
		v.check(path, false, "must list exactly two colors", len(list), ErrCodeRequiredMissing)
		return
	}
	for i, s := range list {
		v.color(fmt.Sprintf("%s[%d]", path, i), s)
	}
}

func (v *validator) oneOf(path, s string, allowed []string) {
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return
		}
	}
	v.check(path, false, "must be one of "+strings.Join(allowed, ", "), s, ErrCodeInvalidEnum)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
