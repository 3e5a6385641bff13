// internal/browser/style/color.go
package style

import (
	"regexp"
	"strconv"
	"strings"
)

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

var namedColors = map[string]Color{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"navy":        {0, 0, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor reads a named, hex (#rgb, #rgba, #rrggbb, #rrggbbaa) or
// rgb()/rgba() color.
func ParseColor(value string) (Color, bool) {
	value = strings.TrimSpace(strings.ToLower(value))

	if c, ok := namedColors[value]; ok {
		return c, true
	}
	switch {
	case strings.HasPrefix(value, "#"):
		return parseHexColor(value)
	case strings.HasPrefix(value, "rgb"):
		return parseRGBColor(value)
	}
	return Color{0, 0, 0, 255}, false
}

func parseHexColor(hex string) (Color, bool) {
	hex = strings.TrimPrefix(hex, "#")
	for i := 0; i < len(hex); i++ {
		if _, ok := hexValue(hex[i]); !ok {
			return Color{}, false
		}
	}
	d := func(i int) uint8 { v, _ := hexValue(hex[i]); return v }

	c := Color{A: 255}
	switch len(hex) {
	case 3, 4:
		c.R, c.G, c.B = d(0)*17, d(1)*17, d(2)*17
		if len(hex) == 4 {
			c.A = d(3) * 17
		}
	case 6, 8:
		c.R, c.G, c.B = d(0)<<4|d(1), d(2)<<4|d(3), d(4)<<4|d(5)
		if len(hex) == 8 {
			c.A = d(6)<<4 | d(7)
		}
	default:
		return Color{}, false
	}
	return c, true
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

var rgbRegex = regexp.MustCompile(`^rgba?\((.*?)\)$`)

func parseRGBColor(value string) (Color, bool) {
	m := rgbRegex.FindStringSubmatch(value)
	if len(m) != 2 {
		return Color{}, false
	}
	parts := strings.FieldsFunc(m[1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) < 3 || len(parts) > 4 {
		return Color{}, false
	}

	c := Color{
		R: colorComponent(parts[0], false),
		G: colorComponent(parts[1], false),
		B: colorComponent(parts[2], false),
		A: 255,
	}
	if len(parts) == 4 {
		c.A = colorComponent(parts[3], true)
	}
	return c, true
}

func colorComponent(value string, isAlpha bool) uint8 {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return 0
		}
		return uint8(clamp(pct/100*255+0.5, 0, 255))
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		if isAlpha {
			return 255
		}
		return 0
	}
	if isAlpha {
		return uint8(clamp(v*255+0.5, 0, 255))
	}
	return uint8(clamp(v+0.5, 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
