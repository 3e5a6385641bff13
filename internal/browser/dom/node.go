// internal/browser/dom/node.go
package dom

import "strings"

// NodeID is the stable per-node identity assigned by the DOM owner.
type NodeID int64

// Node is the read-only view of an element that the layout engine walks.
// Implementations must not change while a layout pass is reading them.
type Node interface {
	ID() NodeID
	Tag() string
	Classes() []string
	// ElementID returns the id attribute, if present.
	ElementID() (string, bool)
	Children() []Node
	// Text returns the element's own inline text content.
	Text() string
}

// Element is an in-memory Node. It is what the HTML adapter produces and
// what tests build by hand.
type Element struct {
	NodeID      NodeID
	TagName     string
	ClassList   []string
	IDAttribute string
	TextContent string
	Kids        []*Element
}

// NewElement creates an element with a lowercased tag name.
func NewElement(id NodeID, tag string) *Element {
	return &Element{NodeID: id, TagName: strings.ToLower(tag)}
}

func (e *Element) ID() NodeID        { return e.NodeID }
func (e *Element) Tag() string       { return e.TagName }
func (e *Element) Classes() []string { return e.ClassList }
func (e *Element) Text() string      { return e.TextContent }

func (e *Element) ElementID() (string, bool) {
	return e.IDAttribute, e.IDAttribute != ""
}

func (e *Element) Children() []Node {
	if len(e.Kids) == 0 {
		return nil
	}
	nodes := make([]Node, len(e.Kids))
	for i, k := range e.Kids {
		nodes[i] = k
	}
	return nodes
}

// WithClass appends class names and returns the element for chaining.
func (e *Element) WithClass(classes ...string) *Element {
	e.ClassList = append(e.ClassList, classes...)
	return e
}

// WithID sets the id attribute.
func (e *Element) WithID(id string) *Element {
	e.IDAttribute = id
	return e
}

// WithText sets the inline text content.
func (e *Element) WithText(text string) *Element {
	e.TextContent = text
	return e
}

// Append adds children in order.
func (e *Element) Append(children ...*Element) *Element {
	e.Kids = append(e.Kids, children...)
	return e
}

// Walk visits root and its descendants in document order. Returning false
// from fn skips that node's subtree. The traversal uses an explicit stack
// so adversarially deep trees cannot exhaust the goroutine stack.
func Walk(root Node, fn func(n Node, depth int) bool) {
	if root == nil {
		return
	}
	type frame struct {
		node  Node
		depth int
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		children := f.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], depth: f.depth + 1})
		}
	}
}

// Find returns the first node with the given id, or nil.
func Find(root Node, id NodeID) Node {
	var found Node
	Walk(root, func(n Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}
