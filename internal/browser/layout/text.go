// internal/browser/layout/text.go
package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Advance widths as a fraction of the font size.
const (
	narrowAdvance  = 0.3
	wideAdvance    = 0.8
	defaultAdvance = 0.5
)

// glyphAdvance holds rough advance widths for common Latin glyphs in a
// proportional sans-serif face.
var glyphAdvance = map[rune]float32{
	' ': 0.28, '.': 0.28, ',': 0.28, ':': 0.28, ';': 0.28, '\'': 0.19, '"': 0.36,
	'!': 0.28, '|': 0.26, '(': 0.33, ')': 0.33, '-': 0.33, '_': 0.55,
	'i': 0.22, 'j': 0.22, 'l': 0.22, 'f': 0.28, 't': 0.28, 'r': 0.33,
	'I': 0.28, 'J': 0.5,
	'a': 0.56, 'b': 0.56, 'c': 0.5, 'd': 0.56, 'e': 0.56, 'g': 0.56,
	'h': 0.56, 'k': 0.5, 'n': 0.56, 'o': 0.56, 'p': 0.56, 'q': 0.56,
	's': 0.5, 'u': 0.56, 'v': 0.5, 'x': 0.5, 'y': 0.5, 'z': 0.5,
	'm': 0.83, 'w': 0.72,
	'M': 0.83, 'W': 0.94, 'O': 0.78, 'Q': 0.78, 'G': 0.78, 'C': 0.72,
	'D': 0.72, 'H': 0.72, 'N': 0.72, 'U': 0.72, 'A': 0.67, 'B': 0.67,
	'E': 0.67, 'K': 0.67, 'P': 0.67, 'R': 0.72, 'S': 0.67, 'V': 0.67,
	'X': 0.67, 'Y': 0.67, 'F': 0.61, 'L': 0.56, 'T': 0.61, 'Z': 0.61,
	'0': 0.56, '1': 0.56, '2': 0.56, '3': 0.56, '4': 0.56, '5': 0.56,
	'6': 0.56, '7': 0.56, '8': 0.56, '9': 0.56,
}

// advance returns the width of r as a fraction of the font size.
func advance(r rune) float32 {
	if w, ok := glyphAdvance[r]; ok {
		return w
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return wideAdvance
	}
	switch {
	case unicode.Is(unicode.Mn, r), unicode.IsControl(r):
		return 0
	case unicode.IsSpace(r), unicode.IsPunct(r):
		return narrowAdvance
	}
	return defaultAdvance
}

// measureText estimates the box of unwrapped text. Width is the longest
// line; height is one line box per line.
func measureText(text string, fontSize, lineHeight float32) (w, h float32) {
	if text == "" {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		var lw float32
		for _, r := range line {
			lw += advance(r)
		}
		if lw > w {
			w = lw
		}
	}
	return w * fontSize, lineHeight * float32(len(lines))
}
