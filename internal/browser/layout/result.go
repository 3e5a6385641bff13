// internal/browser/layout/result.go
package layout

import (
	"time"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
)

// Rect is a box in document coordinates, origin at the root's top-left.
type Rect struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Right is the x coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.Width }

// Bottom is the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.Height }

// Intersects reports whether r and o overlap with a non-empty area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// outside reports whether r lies entirely beyond a w x h viewport at the origin.
func (r Rect) outside(w, h float32) bool {
	return r.X >= w || r.Y >= h || r.Right() <= 0 || r.Bottom() <= 0
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Metrics describes one layout pass.
type Metrics struct {
	PassID      string        `json:"pass_id"`
	NodeCount   int           `json:"node_count"`
	Elapsed     time.Duration `json:"elapsed"`
	CacheHits   uint64        `json:"cache_hits"`
	CacheMisses uint64        `json:"cache_misses"`
	Culled      int           `json:"culled"`
	FromCache   bool          `json:"from_cache"`
	// Incremental is set when the pass reused the previous solver tree.
	// The result is best-effort in that case.
	Incremental bool `json:"incremental"`
}

// Result is the output of a layout pass. It is owned by the caller; the
// engine keeps its own copy.
type Result struct {
	Rects        map[dom.NodeID]Rect `json:"rects"`
	DocumentSize Size                `json:"document_size"`
	Metrics      Metrics             `json:"metrics"`
	CacheKey     uint64              `json:"cache_key"`
}

// Rect returns the box for id.
func (r *Result) Rect(id dom.NodeID) (Rect, bool) {
	rect, ok := r.Rects[id]
	return rect, ok
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Rects = make(map[dom.NodeID]Rect, len(r.Rects))
	for id, rect := range r.Rects {
		c.Rects[id] = rect
	}
	return &c
}
