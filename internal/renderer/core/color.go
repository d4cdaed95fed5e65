package core

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a non-premultiplied RGBA color.
// The zero value is fully transparent.
type Color struct {
	R, G, B, A uint8
}

// ColorTransparent clears whatever is beneath it.
var ColorTransparent = Color{}

// Common colors.
var (
	ColorBlack     = Color{R: 0, G: 0, B: 0, A: 255}
	ColorWhite     = Color{R: 255, G: 255, B: 255, A: 255}
	ColorGray      = Color{R: 128, G: 128, B: 128, A: 255}
	ColorLightGray = Color{R: 204, G: 204, B: 204, A: 255}
)

// ColorFromRGB creates an opaque color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ParseColor parses "#RGB", "#RRGGBB", the same without "#", or "transparent".
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "transparent", "none":
		return ColorTransparent, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: 255}, nil
}

// MustParseColor is ParseColor for compile-time constants. It panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsTransparent returns true if the color has no coverage.
func (c Color) IsTransparent() bool {
	return c.A == 0
}

// WithAlpha returns the color with its alpha scaled by a (0.0 to 1.0).
func (c Color) WithAlpha(a float64) Color {
	a = min(1, max(0, a))
	c.A = uint8(float64(c.A)*a + 0.5)
	return c
}

// Blend mixes two colors in Lab space.
// Amount 0.0 = c, 1.0 = other. Alpha is interpolated linearly.
func (c Color) Blend(other Color, amount float64) Color {
	switch {
	case amount <= 0:
		return c
	case amount >= 1:
		return other
	}
	mixed := c.colorful().BlendLab(other.colorful(), amount).Clamped()
	r, g, b := mixed.RGB255()
	a := float64(c.A)*(1-amount) + float64(other.A)*amount
	return Color{R: r, G: g, B: b, A: uint8(a + 0.5)}
}

// NRGBA converts to the image/color representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// String returns "#RRGGBB", "#RRGGBBAA" when translucent, or "transparent".
func (c Color) String() string {
	switch c.A {
	case 0:
		return "transparent"
	case 255:
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	default:
		return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
	}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Palette maps color indexes to colors.
type Palette []Color

// ParsePalette parses a list of color strings.
func ParsePalette(entries []string) (Palette, error) {
	p := make(Palette, 0, len(entries))
	for i, e := range entries {
		c, err := ParseColor(e)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		p = append(p, c)
	}
	return p, nil
}

// Lookup returns the color for idx, or fallback when idx is out of range.
func (p Palette) Lookup(idx int, fallback Color) Color {
	if idx < 0 || idx >= len(p) {
		return fallback
	}
	return p[idx]
}
