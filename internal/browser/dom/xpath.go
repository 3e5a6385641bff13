// internal/browser/dom/xpath.go
package dom

import (
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// GenerateUniqueXPath builds an XPath expression that selects exactly node
// within its parsed tree. The path is anchored at the nearest ancestor whose
// id attribute is unique in the tree, or at the document root.
func GenerateUniqueXPath(node *html.Node) string {
	if node == nil {
		return ""
	}
	top := node
	for top.Parent != nil {
		top = top.Parent
	}
	return xpathFor(node, idCounts(top))
}

// idCounts tallies id attributes under root. Duplicate ids are common in
// scraped markup and cannot anchor a path.
func idCounts(root *html.Node) map[string]int {
	counts := make(map[string]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := htmlquery.SelectAttr(n, "id"); id != "" {
				counts[id]++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return counts
}

func xpathFor(node *html.Node, ids map[string]int) string {
	var (
		steps  []string
		anchor string
	)
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		if n.Type != html.ElementNode || n.Data == "" {
			continue
		}
		if id := htmlquery.SelectAttr(n, "id"); id != "" && ids[id] == 1 {
			anchor = "//*[@id=" + xpathLiteral(id) + "]"
			break
		}
		steps = append(steps, elementStep(n))
	}

	var b strings.Builder
	b.WriteString(anchor)
	for i := len(steps) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(steps[i])
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// elementStep is tag[pos], where pos is 1-based and counts element
// siblings with the same tag only.
func elementStep(n *html.Node) string {
	tag := strings.ToLower(n.Data)
	pos := 1
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type == html.ElementNode && strings.EqualFold(prev.Data, tag) {
			pos++
		}
	}
	return tag + "[" + strconv.Itoa(pos) + "]"
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so a value holding both quote kinds is split into a concat().
func xpathLiteral(s string) string {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	args := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if p != "" {
			args = append(args, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}
