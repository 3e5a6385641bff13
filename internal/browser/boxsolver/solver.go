// internal/browser/boxsolver/solver.go
package boxsolver

import (
	"errors"
	"fmt"
)

// NodeID identifies a node inside one solver instance.
type NodeID uint64

// Solver is a retained box tree that computes positions and sizes from
// per-node styles. Implementations are not safe for concurrent use.
type Solver interface {
	NewLeaf(style Style) (NodeID, error)
	// NewWithChildren creates a node adopting children in order. Each child
	// must exist and must not already have a parent.
	NewWithChildren(style Style, children []NodeID) (NodeID, error)
	SetStyle(id NodeID, style Style) error
	ComputeLayout(root NodeID, available Size) error
	// Layout returns the solved rectangle relative to the node's parent.
	Layout(id NodeID) (Rect, error)
	Parent(id NodeID) (NodeID, bool)
	// Clear drops every node.
	Clear()
	NodeCount() int
}

var (
	// ErrUnknownNode is returned for ids the solver never issued or has cleared.
	ErrUnknownNode = errors.New("boxsolver: unknown node")
	// ErrAlreadyParented is returned when a child is adopted twice.
	ErrAlreadyParented = errors.New("boxsolver: node already has a parent")
)

// InvalidStyleError reports a style the solver refuses to accept.
type InvalidStyleError struct {
	Property string
	Reason   string
}

func (e *InvalidStyleError) Error() string {
	return fmt.Sprintf("boxsolver: invalid %s: %s", e.Property, e.Reason)
}

// PanicError wraps a panic raised inside the underlying layout library.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("boxsolver: solver panicked: %v", e.Value)
}
