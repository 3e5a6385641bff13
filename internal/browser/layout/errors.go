// internal/browser/layout/errors.go
package layout

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
)

// ErrSecurityViolation is matched by every SecurityViolationError.
var ErrSecurityViolation = errors.New("layout: security bound exceeded")

// SecurityViolationError reports a document whose participating node count
// exceeds the configured bound. It is returned before the solver is touched
// when the pre-pass catches it.
type SecurityViolationError struct {
	Count int
	Limit int
}

func (e *SecurityViolationError) Error() string {
	return fmt.Sprintf("layout: %d participating nodes exceeds limit of %d", e.Count, e.Limit)
}

func (e *SecurityViolationError) Is(target error) bool {
	return target == ErrSecurityViolation
}

// LayoutError wraps a failure reported by the box solver.
type LayoutError struct {
	Op     string
	NodeID dom.NodeID
	Err    error
}

func (e *LayoutError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("layout: %s (node %d): %v", e.Op, e.NodeID, e.Err)
	}
	return fmt.Sprintf("layout: %s: %v", e.Op, e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }
