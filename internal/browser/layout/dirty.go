// internal/browser/layout/dirty.go
package layout

import (
	"sort"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
)

// dirtyTracker records what changed since the last pass. It is cleared
// after every pass, incremental or full.
type dirtyTracker struct {
	nodes   map[dom.NodeID]struct{}
	regions []Rect
	props   map[dom.NodeID][]string
}

func newDirtyTracker() *dirtyTracker {
	d := &dirtyTracker{}
	d.clear()
	return d
}

func (d *dirtyTracker) markNode(id dom.NodeID, props ...string) {
	d.nodes[id] = struct{}{}
	if len(props) > 0 {
		d.props[id] = append(d.props[id], props...)
	}
}

func (d *dirtyTracker) markRegion(r Rect) {
	d.regions = append(d.regions, r)
}

func (d *dirtyTracker) empty() bool {
	return len(d.nodes) == 0 && len(d.regions) == 0
}

// resolve expands dirty regions against the previous pass's rectangles
// and returns the union with the explicitly marked ids, sorted.
func (d *dirtyTracker) resolve(prev map[dom.NodeID]Rect) []dom.NodeID {
	set := make(map[dom.NodeID]struct{}, len(d.nodes))
	for id := range d.nodes {
		set[id] = struct{}{}
	}
	for _, region := range d.regions {
		for id, r := range prev {
			if r.Intersects(region) {
				set[id] = struct{}{}
			}
		}
	}
	ids := make([]dom.NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (d *dirtyTracker) clear() {
	d.nodes = make(map[dom.NodeID]struct{})
	d.regions = nil
	d.props = make(map[dom.NodeID][]string)
}
