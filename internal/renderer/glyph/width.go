package glyph

import (
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/width"
)

// Braille patterns render at inconsistent widths across monospace fonts.
const (
	brailleFirst = 0x2800
	brailleLast  = 0x28FF
)

// RuneWidth returns the display width of a rune.
// Returns 0 for control characters and zero-width marks, 2 for wide and
// fullwidth East Asian characters and emoji, and 1 otherwise.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	if r < 0x80 {
		return 1
	}
	if unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	if isEmoji(r) {
		return 2
	}
	return 1
}

// CellWidth returns the display width of a cell as measured by grapheme
// segmentation.
func CellWidth(cell string) int {
	return uniseg.StringWidth(cell)
}

// IsLayoutUnsafe reports whether a cell may draw wider or narrower than one
// monospace column, so that text drawn after it in the same call could
// drift out of its column.
func IsLayoutUnsafe(cell string) bool {
	if IsBlank(cell) {
		return false
	}
	if len(cell) == 1 {
		c := cell[0]
		if c >= 0x20 && c < 0x7F {
			return false
		}
	}
	if uniseg.GraphemeClusterCount(cell) != 1 || CellWidth(cell) != 1 {
		return true
	}
	for _, r := range cell {
		if r >= brailleFirst && r <= brailleLast {
			return true
		}
		if RuneWidth(r) != 1 {
			return true
		}
	}
	return false
}

// isEmoji covers the supplementary pictographic blocks. Emoji in the BMP are
// already classified wide by the East Asian width table.
func isEmoji(r rune) bool {
	return r >= 0x1F000 && r <= 0x1FAFF
}
