// internal/browser/layout/hash.go
package layout

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
	"sync"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/style"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
)

const (
	maxHashDepth    = 64
	maxHashChildren = 50
	maxHashedRules  = 20
)

var hasherPool = sync.Pool{
	New: func() interface{} { return fnv.New64a() },
}

func getHasher() hash.Hash64 {
	return hasherPool.Get().(hash.Hash64)
}

func putHasher(h hash.Hash64) {
	h.Reset()
	hasherPool.Put(h)
}

// hashWriter wraps a Hash64 with typed writes. Every field is terminated
// or length-prefixed so adjacent values cannot run together.
type hashWriter struct {
	h   hash.Hash64
	buf [8]byte
}

func (w *hashWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:], v)
	_, _ = w.h.Write(w.buf[:])
}

func (w *hashWriter) str(s string) {
	w.u64(uint64(len(s)))
	_, _ = w.h.Write([]byte(s))
}

func (w *hashWriter) flag(b bool) {
	if b {
		w.u64(1)
	} else {
		w.u64(0)
	}
}

// hashDOM combines every text node in document order with a depth and
// breadth bounded structural hash of ids, tags, child counts, classes and
// id attributes.
func hashDOM(root dom.Node) uint64 {
	if root == nil {
		return 0
	}
	h := getHasher()
	defer putHasher(h)
	w := &hashWriter{h: h}

	dom.Walk(root, func(n dom.Node, _ int) bool {
		w.str(n.Text())
		return true
	})
	w.u64(structuralHash(root, 0))
	return h.Sum64()
}

func structuralHash(n dom.Node, depth int) uint64 {
	h := getHasher()
	defer putHasher(h)
	w := &hashWriter{h: h}

	children := n.Children()
	w.u64(uint64(n.ID()))
	w.str(n.Tag())
	w.u64(uint64(len(children)))
	for _, c := range n.Classes() {
		w.str(c)
	}
	id, ok := n.ElementID()
	w.flag(ok)
	w.str(id)

	if depth < maxHashDepth {
		for i, c := range children {
			if i == maxHashChildren {
				break
			}
			w.u64(structuralHash(c, depth+1))
		}
	}
	return h.Sum64()
}

// hashRuleSets covers the rule count of every set and, for the first rules
// of each, the selector, specificity and declarations.
func hashRuleSets(sets []style.RuleSet) uint64 {
	h := getHasher()
	defer putHasher(h)
	w := &hashWriter{h: h}

	for _, set := range sets {
		w.u64(uint64(set.Origin))
		w.u64(uint64(len(set.Rules)))
		for i, rule := range set.Rules {
			if i == maxHashedRules {
				break
			}
			w.str(rule.Selector)
			w.u64(uint64(rule.Specificity))
			w.u64(uint64(len(rule.Declarations)))
			for _, d := range rule.Declarations {
				w.str(d.Property)
				w.str(d.Value)
				w.flag(d.Important)
			}
		}
	}
	return h.Sum64()
}

// cacheKey folds the DOM and stylesheet hashes with the viewport. Sizes are
// truncated to whole pixels; zoom, DPR and root font size are keyed at
// hundredths.
func cacheKey(domHash, cssHash uint64, vp units.Viewport) uint64 {
	h := getHasher()
	defer putHasher(h)
	w := &hashWriter{h: h}

	w.u64(domHash)
	w.u64(cssHash)
	w.u64(uint64(int64(vp.Width)))
	w.u64(uint64(int64(vp.Height)))
	w.u64(uint64(int64(math.Round(float64(vp.Zoom) * 100))))
	w.u64(uint64(int64(math.Round(float64(vp.DevicePixelRatio) * 100))))
	w.u64(uint64(int64(math.Round(float64(vp.RootFontSize) * 100))))
	return h.Sum64()
}
