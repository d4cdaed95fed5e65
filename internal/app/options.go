package app

import (
	"fmt"
	"time"

	"github.com/dshills/gridcanvas/internal/config"
	"github.com/dshills/gridcanvas/internal/renderer"
	"github.com/dshills/gridcanvas/internal/renderer/anim"
	"github.com/dshills/gridcanvas/internal/renderer/background"
	"github.com/dshills/gridcanvas/internal/renderer/camera"
	"github.com/dshills/gridcanvas/internal/renderer/core"
)

// EngineOptions converts a validated configuration into engine options and
// the fallback palette.
func EngineOptions(cfg config.Config) (renderer.Options, core.Palette, error) {
	opts := renderer.DefaultOptions()
	p := colorParser{}

	opts.Limits = camera.Limits{
		ZoomInMax: cfg.Camera.ZoomInMax,
		OutRatio:  cfg.Camera.OutRatio,
		Tolerance: cfg.Camera.Tolerance,
	}
	opts.DefaultZoom = cfg.Camera.DefaultZoom
	opts.Wheel = camera.WheelOptions{
		ScrollBase:     cfg.Wheel.ScrollBase,
		BoostThreshold: cfg.Wheel.BoostThreshold,
		Boost:          cfg.Wheel.Boost,
	}

	opts.Background = p.parse("background.color", cfg.Background.Color)
	opts.Transparent = cfg.Background.Transparent
	opts.Checker = background.Checker{Size: cfg.Background.CheckerSize}
	if len(cfg.Background.CheckerColors) == 2 {
		opts.Checker.Colors = [2]core.Color{
			p.parse("background.checkerColors[0]", cfg.Background.CheckerColors[0]),
			p.parse("background.checkerColors[1]", cfg.Background.CheckerColors[1]),
		}
	} else {
		opts.Checker.Colors = background.DefaultChecker().Colors
	}

	opts.TextColor = p.parse("glyphs.textColor", cfg.Glyphs.TextColor)
	opts.ShowWhitespace = cfg.Glyphs.ShowWhitespace
	opts.WhitespaceColor = p.parse("glyphs.whitespaceColor", cfg.Glyphs.WhitespaceColor)
	opts.Opacity = cfg.Glyphs.Opacity

	opts.FrameInterval = time.Duration(cfg.Animation.FrameIntervalMS) * time.Millisecond
	opts.Caret.Style = anim.ParseCaretStyle(cfg.Animation.CaretStyle)
	opts.Caret.Color = p.parse("animation.caretColor", cfg.Animation.CaretColor)
	opts.Caret.Cycle = time.Duration(cfg.Animation.CaretCycleMS) * time.Millisecond
	opts.Ants.Dash = cfg.Animation.AntsDash
	opts.Ants.Width = cfg.Animation.AntsWidth
	opts.Ants.Speed = cfg.Animation.AntsSpeed
	if len(cfg.Animation.AntsColors) == 2 {
		opts.Ants.Colors = [2]core.Color{
			p.parse("animation.antsColors[0]", cfg.Animation.AntsColors[0]),
			p.parse("animation.antsColors[1]", cfg.Animation.AntsColors[1]),
		}
	}

	palette, err := core.ParsePalette(cfg.Palette)
	if err != nil {
		p.fail("palette", err)
	}
	if p.err != nil {
		return renderer.Options{}, nil, p.err
	}
	return opts, palette, nil
}

// colorParser keeps the first color error.
type colorParser struct {
	err error
}

func (p *colorParser) parse(key, s string) core.Color {
	c, err := core.ParseColor(s)
	if err != nil {
		p.fail(key, err)
	}
	return c
}

func (p *colorParser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
}
