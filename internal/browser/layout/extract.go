// internal/browser/layout/extract.go
package layout

import (
	"github.com/xkilldash9x/stylebox/internal/browser/boxsolver"
	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
)

// extractor reads solved geometry back out of the solver. The solver
// reports each box relative to its parent; Extract accumulates offsets up
// the parent chain into document coordinates.
type extractor struct {
	solver boxsolver.Solver
	cull   bool
}

// Extract builds a Result holding one Rect per mapped node. order fixes
// the iteration order so culling and bounds do not depend on map order.
func (x *extractor) Extract(nodeMap map[dom.NodeID]boxsolver.NodeID, order []dom.NodeID, vp units.Viewport) (*Result, error) {
	res := &Result{Rects: make(map[dom.NodeID]Rect, len(nodeMap))}
	origins := make(map[boxsolver.NodeID][2]float32, len(nodeMap))

	var maxX, maxY float32
	for _, id := range order {
		sid, ok := nodeMap[id]
		if !ok {
			continue
		}
		local, err := x.solver.Layout(sid)
		if err != nil {
			return nil, &LayoutError{Op: "extract", NodeID: id, Err: err}
		}
		ox, oy, err := x.origin(sid, origins)
		if err != nil {
			return nil, &LayoutError{Op: "extract", NodeID: id, Err: err}
		}
		r := Rect{X: ox + local.X, Y: oy + local.Y, Width: local.Width, Height: local.Height}
		res.Rects[id] = r

		maxX = max(maxX, r.Right())
		maxY = max(maxY, r.Bottom())
		if x.cull && r.outside(vp.Width, vp.Height) {
			res.Metrics.Culled++
		}
	}

	res.DocumentSize = Size{Width: max(maxX, vp.Width), Height: max(maxY, vp.Height)}
	res.Metrics.NodeCount = len(res.Rects)
	return res, nil
}

// origin returns the document position of sid's parent content origin,
// that is the summed offsets of all its ancestors. Results are memoized in
// origins.
func (x *extractor) origin(sid boxsolver.NodeID, origins map[boxsolver.NodeID][2]float32) (float32, float32, error) {
	var chain []boxsolver.NodeID
	cur := sid
	var base [2]float32
	for {
		parent, ok := x.solver.Parent(cur)
		if !ok {
			break
		}
		if o, seen := origins[parent]; seen {
			base = o
			break
		}
		chain = append(chain, parent)
		cur = parent
	}

	// Walk back down from the topmost unresolved ancestor.
	for i := len(chain) - 1; i >= 0; i-- {
		p := chain[i]
		r, err := x.solver.Layout(p)
		if err != nil {
			return 0, 0, err
		}
		base = [2]float32{base[0] + r.X, base[1] + r.Y}
		origins[p] = base
	}
	return base[0], base[1], nil
}
