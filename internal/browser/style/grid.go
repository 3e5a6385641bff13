// internal/browser/style/grid.go
package style

import (
	"regexp"
	"strconv"
	"strings"
)

// GridTrack is one entry of a grid-template-rows/columns track list.
type GridTrack struct {
	Size      string
	LineNames []string
}

// GridLine is a grid placement: auto, a line number, a named line or a span.
type GridLine struct {
	IsAuto      bool
	IsNamedSpan bool
	Span        int
	Line        int
	Name        string
}

var repeatRegex = regexp.MustCompile(`repeat\(\s*(\d+)\s*,\s*([^)]+)\)`)

func isWhitespace(r byte) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

// tokenizeGridTracks splits a track list on top-level whitespace, keeping
// bracketed line names and function calls whole.
func tokenizeGridTracks(value string) []string {
	var tokens []string
	for i := 0; i < len(value); {
		if isWhitespace(value[i]) {
			i++
			continue
		}
		if value[i] == '[' {
			end := strings.IndexByte(value[i:], ']')
			if end == -1 {
				tokens = append(tokens, value[i:])
				break
			}
			tokens = append(tokens, value[i:i+end+1])
			i += end + 1
			continue
		}

		start := i
		depth := 0
	scan:
		for ; i < len(value); i++ {
			switch value[i] {
			case '(':
				depth++
			case ')':
				depth--
			case ' ', '\t', '\n':
				if depth == 0 {
					break scan
				}
			}
		}
		tokens = append(tokens, value[start:i])
	}
	return tokens
}

// ParseGridTracks parses a track list, expanding repeat(n, ...) with an
// integer count. Line names trailing the last track are returned separately.
func ParseGridTracks(value string) ([]GridTrack, []string) {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" {
		return nil, nil
	}
	expanded := repeatRegex.ReplaceAllStringFunc(value, func(match string) string {
		sub := repeatRegex.FindStringSubmatch(match)
		count, err := strconv.Atoi(sub[1])
		if err != nil || count <= 0 || count > maxGridRepeat {
			return ""
		}
		return strings.TrimSpace(strings.Repeat(sub[2]+" ", count))
	})

	var tracks []GridTrack
	var names []string
	for _, tok := range tokenizeGridTracks(expanded) {
		if strings.HasPrefix(tok, "[") {
			names = append(names, strings.Fields(strings.Trim(tok, "[]"))...)
			continue
		}
		tracks = append(tracks, GridTrack{Size: tok, LineNames: names})
		names = nil
	}
	return tracks, names
}

// maxGridRepeat bounds repeat() expansion of untrusted stylesheets.
const maxGridRepeat = 1000

// ParseGridLine reads a grid-row-start style placement value.
func ParseGridLine(value string) GridLine {
	value = strings.TrimSpace(value)
	if value == "" || value == "auto" {
		return GridLine{IsAuto: true}
	}
	if strings.HasPrefix(value, "span ") {
		rest := strings.TrimSpace(strings.TrimPrefix(value, "span "))
		if span, err := strconv.Atoi(rest); err == nil && span > 0 {
			return GridLine{Span: span}
		}
		return GridLine{Name: rest, IsNamedSpan: true}
	}
	if line, err := strconv.Atoi(value); err == nil {
		return GridLine{Line: line}
	}
	return GridLine{Name: value}
}
