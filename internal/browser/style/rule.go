// internal/browser/style/rule.go
package style

import (
	"strings"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
)

// Declaration is one sanitized property/value pair from a stylesheet.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// StyleRule pairs a single selector with its declarations.
type StyleRule struct {
	Selector     string
	Declarations []Declaration
	Specificity  int
}

// NewStyleRule builds a rule and computes its specificity from the selector.
func NewStyleRule(selector string, decls ...Declaration) StyleRule {
	selector = strings.TrimSpace(selector)
	return StyleRule{Selector: selector, Declarations: decls, Specificity: Specificity(selector)}
}

// Origin ranks where a rule set came from. Higher origins win ties.
type Origin int

const (
	OriginUserAgent Origin = iota
	OriginUser
	OriginAuthor
)

func (o Origin) String() string {
	switch o {
	case OriginUserAgent:
		return "user-agent"
	case OriginUser:
		return "user"
	case OriginAuthor:
		return "author"
	default:
		return "unknown"
	}
}

// RuleSet is an origin-tagged, ordered list of rules.
type RuleSet struct {
	Origin Origin
	Rules  []StyleRule
}

// Specificity weighs a selector as 100 per id, 10 per class or attribute
// selector and 1 per alphabetic character of the tag name.
func Specificity(selector string) int {
	selector = strings.TrimSpace(selector)
	score := 0
	inTag := true
	for i := 0; i < len(selector); i++ {
		c := selector[i]
		switch {
		case c == '#':
			score += 100
			inTag = false
		case c == '.' || c == '[':
			score += 10
			inTag = false
		case c == ':' || c == ' ' || c == '>' || c == '+' || c == '~':
			inTag = false
		case inTag && isAlpha(c):
			score++
		}
	}
	return score
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// compound is a parsed simple compound selector such as div.a#b.
type compound struct {
	tag     string
	id      string
	classes []string
}

// parseCompound returns false for anything beyond a compound of type, id
// and class selectors. Combinators, attribute and pseudo selectors are not
// supported and such selectors never match.
func parseCompound(selector string) (compound, bool) {
	selector = strings.TrimSpace(selector)
	if selector == "" || strings.ContainsAny(selector, " \t\n>+~:[],()") {
		return compound{}, false
	}

	var c compound
	i := 0
	start := 0
	for i < len(selector) && selector[i] != '#' && selector[i] != '.' {
		i++
	}
	c.tag = strings.ToLower(selector[start:i])
	if c.tag == "*" {
		c.tag = ""
	} else if strings.Contains(c.tag, "*") {
		return compound{}, false
	}

	for i < len(selector) {
		kind := selector[i]
		i++
		start = i
		for i < len(selector) && selector[i] != '#' && selector[i] != '.' {
			i++
		}
		name := selector[start:i]
		if name == "" {
			return compound{}, false
		}
		if kind == '#' {
			if c.id != "" && c.id != name {
				return compound{}, false
			}
			c.id = name
		} else {
			c.classes = append(c.classes, name)
		}
	}
	return c, true
}

// Matches reports whether the selector selects the node.
func Matches(selector string, n dom.Node) bool {
	c, ok := parseCompound(selector)
	if !ok || n == nil {
		return false
	}
	if c.tag != "" && c.tag != strings.ToLower(n.Tag()) {
		return false
	}
	if c.id != "" {
		id, has := n.ElementID()
		if !has || id != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		have := n.Classes()
		for _, want := range c.classes {
			if !containsString(have, want) {
				return false
			}
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
