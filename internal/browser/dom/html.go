// internal/browser/dom/html.go
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page projected onto Elements. It keeps the
// parse tree so callers can address elements by XPath.
type Document struct {
	Root *Element
	// StyleText holds the contents of every <style> element in document order.
	StyleText []string

	tree   *html.Node
	byID   map[NodeID]*html.Node
	byNode map[*html.Node]NodeID
	// idAttrs counts id attribute values; only unique ones anchor XPaths.
	idAttrs map[string]int
}

// FromHTML parses markup and assigns sequential NodeIDs starting at 1 in
// document order. Only element nodes become Elements; direct text children
// are whitespace-collapsed into TextContent.
func FromHTML(r io.Reader) (*Document, error) {
	tree, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	doc := &Document{
		tree:   tree,
		byID:   make(map[NodeID]*html.Node),
		byNode: make(map[*html.Node]NodeID),
	}
	doc.idAttrs = idCounts(tree)

	var next NodeID
	var convert func(n *html.Node) *Element
	convert = func(n *html.Node) *Element {
		next++
		el := NewElement(next, n.Data)
		doc.byID[el.NodeID] = n
		doc.byNode[n] = el.NodeID

		var text []string
		for _, attr := range n.Attr {
			switch strings.ToLower(attr.Key) {
			case "id":
				el.IDAttribute = strings.TrimSpace(attr.Val)
			case "class":
				el.ClassList = strings.Fields(attr.Val)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.ElementNode:
				el.Kids = append(el.Kids, convert(c))
			case html.TextNode:
				text = append(text, strings.Fields(c.Data)...)
			}
		}
		if el.TagName == "style" {
			doc.StyleText = append(doc.StyleText, htmlquery.InnerText(n))
		} else {
			el.TextContent = strings.Join(text, " ")
		}
		return el
	}

	root := findElement(tree)
	if root == nil {
		return nil, fmt.Errorf("html document has no root element")
	}
	doc.Root = convert(root)
	return doc, nil
}

func findElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// QueryIDs evaluates an XPath expression and returns the ids of the matched
// elements in document order.
func (d *Document) QueryIDs(expr string) ([]NodeID, error) {
	nodes, err := htmlquery.QueryAll(d.tree, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	ids := make([]NodeID, 0, len(nodes))
	for _, n := range nodes {
		if id, ok := d.byNode[n]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// XPath returns a stable XPath for the element with the given id, or ""
// when the id is unknown.
func (d *Document) XPath(id NodeID) string {
	n, ok := d.byID[id]
	if !ok {
		return ""
	}
	return xpathFor(n, d.idAttrs)
}

// Stylesheet concatenates the document's embedded <style> blocks.
func (d *Document) Stylesheet() string {
	return strings.Join(d.StyleText, "\n")
}
