package captions

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// average glyph advance as a fraction of the font size for proportional
// sans-serif faces
const glyphWidthRatio = 0.55

// LineWidth returns how many characters fit in boxWidth pixels at fontSize.
func LineWidth(boxWidth float64, fontSize int) int {
	if fontSize <= 0 || boxWidth <= 0 {
		return 0
	}
	return max(int(math.Floor(boxWidth/(float64(fontSize)*glyphWidthRatio))), 1)
}

// Wrap breaks text into lines of at most width cells, splitting on word
// boundaries. Words longer than width are kept whole. width <= 0 disables
// wrapping.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	wrapped := ansi.Wordwrap(text, width, "")
	return strings.Split(wrapped, "\n")
}

// FitLines wraps text and keeps at most maxLines lines, joining the
// overflow into the last line so nothing is dropped.
func FitLines(text string, width, maxLines int) []string {
	lines := Wrap(text, width)
	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}
	kept := append([]string{}, lines[:maxLines-1]...)
	return append(kept, strings.Join(lines[maxLines-1:], " "))
}
