// internal/browser/style/shorthand.go
package style

import (
	"strconv"
	"strings"
)

type longhand struct {
	property string
	value    string
}

var shorthandTargets = map[string][]string{
	"margin":        {"margin-top", "margin-right", "margin-bottom", "margin-left"},
	"padding":       {"padding-top", "padding-right", "padding-bottom", "padding-left"},
	"border-width":  {"border-top-width", "border-right-width", "border-bottom-width", "border-left-width"},
	"inset":         {"top", "right", "bottom", "left"},
	"border":        {"border-top-width", "border-right-width", "border-bottom-width", "border-left-width"},
	"border-top":    {"border-top-width"},
	"border-right":  {"border-right-width"},
	"border-bottom": {"border-bottom-width"},
	"border-left":   {"border-left-width"},
	"flex":          {"flex-grow", "flex-shrink", "flex-basis"},
	"flex-flow":     {"flex-direction", "flex-wrap"},
	"gap":           {"row-gap", "column-gap"},
	"grid-gap":      {"row-gap", "column-gap"},
	"grid-row":      {"grid-row-start", "grid-row-end"},
	"grid-column":   {"grid-column-start", "grid-column-end"},
	"grid-area":     {"grid-row-start", "grid-column-start", "grid-row-end", "grid-column-end"},
	"place-items":   {"align-items", "justify-items"},
	"place-content": {"align-content", "justify-content"},
	"place-self":    {"align-self", "justify-self"},
}

// IsShorthand reports whether property expands into longhands.
func IsShorthand(property string) bool {
	_, ok := shorthandTargets[property]
	return ok
}

// expandShorthand splits a shorthand declaration into its longhands. The
// second result is false when property is not a shorthand.
func expandShorthand(property, value string) ([]longhand, bool) {
	targets, ok := shorthandTargets[property]
	if !ok {
		return nil, false
	}
	value = strings.TrimSpace(value)
	if isCSSWideKeyword(value) {
		out := make([]longhand, len(targets))
		for i, t := range targets {
			out[i] = longhand{t, value}
		}
		return out, true
	}

	switch property {
	case "margin", "padding", "border-width", "inset":
		return expand1To4(value, targets), true
	case "border", "border-top", "border-right", "border-bottom", "border-left":
		w := borderWidthPart(value)
		out := make([]longhand, len(targets))
		for i, t := range targets {
			out[i] = longhand{t, w}
		}
		return out, true
	case "flex":
		grow, shrink, basis := expandFlex(value)
		return []longhand{{"flex-grow", grow}, {"flex-shrink", shrink}, {"flex-basis", basis}}, true
	case "flex-flow":
		dir, wrap := "row", "nowrap"
		for _, part := range strings.Fields(value) {
			switch part {
			case "wrap", "nowrap", "wrap-reverse":
				wrap = part
			default:
				dir = part
			}
		}
		return []longhand{{"flex-direction", dir}, {"flex-wrap", wrap}}, true
	case "gap", "grid-gap", "place-items", "place-content", "place-self":
		parts := strings.Fields(value)
		if len(parts) == 0 {
			return nil, true
		}
		second := parts[0]
		if len(parts) > 1 {
			second = parts[1]
		}
		return []longhand{{targets[0], parts[0]}, {targets[1], second}}, true
	case "grid-row", "grid-column":
		parts := splitSlash(value)
		end := "auto"
		if len(parts) > 1 {
			end = parts[1]
		} else if isCustomIdent(parts[0]) {
			end = parts[0]
		}
		return []longhand{{targets[0], parts[0]}, {targets[1], end}}, true
	case "grid-area":
		parts := splitSlash(value)
		// Missing values copy a named line from their counterpart, else auto.
		pick := func(i, fallback int) string {
			if i < len(parts) {
				return parts[i]
			}
			if fb := parts[fallback]; isCustomIdent(fb) {
				return fb
			}
			return "auto"
		}
		rowStart := parts[0]
		colStart := pick(1, 0)
		rowEnd := pick(2, 0)
		colEnd := "auto"
		if len(parts) > 3 {
			colEnd = parts[3]
		} else if isCustomIdent(colStart) {
			colEnd = colStart
		}
		return []longhand{{targets[0], rowStart}, {targets[1], colStart}, {targets[2], rowEnd}, {targets[3], colEnd}}, true
	}
	return nil, false
}

// expand1To4 applies the CSS box shorthand rules: 1 value for all sides,
// 2 for vertical/horizontal, 3 for top/horizontal/bottom, 4 clockwise.
func expand1To4(value string, targets []string) []longhand {
	parts := strings.Fields(value)
	var t, r, b, l string
	switch len(parts) {
	case 1:
		t, r, b, l = parts[0], parts[0], parts[0], parts[0]
	case 2:
		t, r, b, l = parts[0], parts[1], parts[0], parts[1]
	case 3:
		t, r, b, l = parts[0], parts[1], parts[2], parts[1]
	case 4:
		t, r, b, l = parts[0], parts[1], parts[2], parts[3]
	default:
		return nil
	}
	return []longhand{{targets[0], t}, {targets[1], r}, {targets[2], b}, {targets[3], l}}
}

func borderWidthPart(value string) string {
	for _, part := range strings.Fields(value) {
		switch part {
		case "thin", "medium", "thick":
			return part
		}
		if len(part) > 0 && (part[0] >= '0' && part[0] <= '9' || part[0] == '.') {
			return part
		}
	}
	if strings.Contains(value, "none") || strings.Contains(value, "hidden") {
		return "0"
	}
	return "medium"
}

func expandFlex(value string) (grow, shrink, basis string) {
	grow, shrink, basis = "0", "1", "auto"
	parts := strings.Fields(value)
	switch len(parts) {
	case 0:
	case 1:
		switch parts[0] {
		case "none":
			return "0", "0", "auto"
		case "auto":
			return "1", "1", "auto"
		}
		if isNumber(parts[0]) {
			return parts[0], "1", "0"
		}
		return "1", "1", parts[0]
	case 2:
		grow = parts[0]
		if isNumber(parts[1]) {
			shrink = parts[1]
			basis = "0"
		} else {
			basis = parts[1]
		}
	default:
		grow, shrink, basis = parts[0], parts[1], parts[2]
	}
	return grow, shrink, basis
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 32)
	return err == nil
}

func splitSlash(value string) []string {
	raw := strings.Split(value, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		parts = append(parts, strings.TrimSpace(p))
	}
	return parts
}

func isCustomIdent(s string) bool {
	if s == "" || s == "auto" || strings.HasPrefix(s, "span") {
		return false
	}
	_, err := strconv.Atoi(s)
	return err != nil
}

func isCSSWideKeyword(v string) bool {
	switch v {
	case "inherit", "initial", "unset":
		return true
	}
	return false
}
