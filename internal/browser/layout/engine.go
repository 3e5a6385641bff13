// internal/browser/layout/engine.go
package layout

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/browser/boxsolver"
	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/parser"
	"github.com/xkilldash9x/stylebox/internal/browser/style"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
	"github.com/xkilldash9x/stylebox/internal/config"
	"github.com/xkilldash9x/stylebox/internal/observability"
)

var (
	errNoTree       = errors.New("no layout tree from a previous pass")
	errStaleNode    = errors.New("dirty node is not in the layout tree")
	errDisplayShift = errors.New("dirty node changed its display type")
)

// Engine computes layouts. It caches results by document, stylesheet and
// viewport, and can update the previous solver tree in place when only
// marked nodes changed.
//
// An Engine is not safe for concurrent use. Run one engine per goroutine.
type Engine struct {
	cfg      config.LayoutConfig
	logger   *zap.Logger
	solver   boxsolver.Solver
	resolver *style.Resolver
	now      func() time.Time

	uaRules   []style.StyleRule
	userRules []style.StyleRule

	cache *resultCache
	dirty *dirtyTracker
	hits  uint64
	miss  uint64

	// State of the last full build, used by incremental passes.
	tree     *builder
	lastDOM  uint64
	lastCSS  uint64
	lastVP   units.Viewport
	lastRect map[dom.NodeID]Rect
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. It is named "layout".
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSolver replaces the default flex-backed box solver.
func WithSolver(s boxsolver.Solver) Option {
	return func(e *Engine) { e.solver = s }
}

// WithClock overrides the time source used for elapsed metrics.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine. Non-positive limits in cfg fall back to the
// defaults.
func NewEngine(cfg config.LayoutConfig, opts ...Option) *Engine {
	def := config.NewDefaultConfig().Layout()
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = def.CacheCapacity
	}
	if cfg.MaxNestingDepth <= 0 {
		cfg.MaxNestingDepth = def.MaxNestingDepth
	}
	if cfg.SecurityNodeMultiplier <= 0 {
		cfg.SecurityNodeMultiplier = def.SecurityNodeMultiplier
	}

	e := &Engine{
		cfg:   cfg,
		now:   time.Now,
		cache: newResultCache(cfg.CacheCapacity),
		dirty: newDirtyTracker(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = observability.GetLogger()
	}
	e.logger = e.logger.Named("layout")
	if e.solver == nil {
		e.solver = boxsolver.NewFlexSolver(e.logger)
	}
	e.resolver = style.NewResolver(e.logger)
	if cfg.UserAgentDefaults {
		e.uaRules = parser.ParseRules(style.DefaultUserAgentCSS)
	}
	return e
}

// ComputeLayout lays out root under sheet, the author stylesheet, for the
// viewport vp. The returned Result belongs to the caller.
func (e *Engine) ComputeLayout(root dom.Node, sheet []style.StyleRule, vp units.Viewport) (*Result, error) {
	start := e.now()
	vp = vp.Normalized()
	if root == nil || isNonVisual(root) {
		return e.emptyResult(vp, start), nil
	}
	sets := e.ruleSets(sheet)

	domHash := hashDOM(root)
	cssHash := hashRuleSets(sets)
	key := cacheKey(domHash, cssHash, vp)

	if e.dirty.empty() {
		if res, ok := e.cache.get(key); ok {
			e.hits++
			res.Metrics.FromCache = true
			res.Metrics.Elapsed = e.now().Sub(start)
			res.Metrics.CacheHits, res.Metrics.CacheMisses = e.hits, e.miss
			// Region marks resolve against the boxes the caller last saw. A
			// tree built for another document cannot take them.
			e.lastRect = res.Rects
			if domHash != e.lastDOM || cssHash != e.lastCSS || vp != e.lastVP {
				e.tree = nil
			}
			e.logger.Debug("Layout cache hit", zap.Uint64("key", key))
			return res.Clone(), nil
		}
	}
	e.miss++

	var res *Result
	if e.canIncremental(domHash, cssHash, vp) {
		r, err := e.incremental(root, sets, vp)
		if err != nil {
			e.logger.Warn("Incremental layout failed, rebuilding", zap.Error(err))
		} else {
			res = r
		}
	}
	if res == nil {
		r, err := e.fullBuild(root, sets, vp)
		if err != nil {
			e.dirty.clear()
			return nil, err
		}
		res = r
		e.lastDOM, e.lastCSS, e.lastVP = domHash, cssHash, vp
	}
	e.dirty.clear()
	e.lastRect = res.Rects

	res.CacheKey = key
	res.Metrics.PassID = uuid.NewString()
	res.Metrics.Elapsed = e.now().Sub(start)
	res.Metrics.CacheHits, res.Metrics.CacheMisses = e.hits, e.miss
	if evicted := e.cache.put(key, res, domHash, cssHash, start); evicted > 0 {
		e.logger.Debug("Layout cache evicted entries", zap.Int("evicted", evicted))
	}
	return res.Clone(), nil
}

// emptyResult is the layout of a document with no participating root: no
// boxes and a document the size of the viewport.
func (e *Engine) emptyResult(vp units.Viewport, start time.Time) *Result {
	e.dirty.clear()
	e.tree, e.lastRect = nil, nil
	e.logger.Debug("Document has no participating root")
	return &Result{
		Rects:        make(map[dom.NodeID]Rect),
		DocumentSize: Size{Width: vp.Width, Height: vp.Height},
		Metrics: Metrics{
			PassID:      uuid.NewString(),
			Elapsed:     e.now().Sub(start),
			CacheHits:   e.hits,
			CacheMisses: e.miss,
		},
	}
}

func (e *Engine) ruleSets(sheet []style.StyleRule) []style.RuleSet {
	return []style.RuleSet{
		{Origin: style.OriginUserAgent, Rules: e.uaRules},
		{Origin: style.OriginUser, Rules: e.userRules},
		{Origin: style.OriginAuthor, Rules: sheet},
	}
}

func (e *Engine) canIncremental(domHash, cssHash uint64, vp units.Viewport) bool {
	return e.cfg.Incremental &&
		!e.dirty.empty() &&
		e.tree != nil &&
		domHash == e.lastDOM &&
		cssHash == e.lastCSS &&
		vp == e.lastVP
}

func (e *Engine) fullBuild(root dom.Node, sets []style.RuleSet, vp units.Viewport) (*Result, error) {
	e.solver.Clear()
	e.tree = nil

	b := newBuilder(e.solver, e.resolver, e.logger, e.cfg.NodeLimit())
	rootID, err := b.Build(root, sets, vp)
	if err != nil {
		var sec *SecurityViolationError
		if errors.As(err, &sec) {
			e.logger.Warn("Layout rejected by node bound", zap.Int("count", sec.Count), zap.Int("limit", sec.Limit))
		}
		e.solver.Clear()
		return nil, err
	}
	res, err := e.solve(b, rootID, vp)
	if err != nil {
		e.solver.Clear()
		return nil, err
	}
	e.tree = b
	return res, nil
}

// incremental re-cascades the document and pushes new styles for the
// dirty nodes only, then re-solves the existing tree.
func (e *Engine) incremental(root dom.Node, sets []style.RuleSet, vp units.Viewport) (*Result, error) {
	if e.tree == nil {
		return nil, errNoTree
	}
	b := e.tree
	styles := e.resolver.ComputeTree(root, sets, vp, isNonVisual)

	nodes := make(map[dom.NodeID]dom.Node, len(b.nodeMap))
	dom.Walk(root, func(n dom.Node, _ int) bool {
		if isNonVisual(n) {
			return false
		}
		nodes[n.ID()] = n
		return true
	})

	for _, id := range e.dirty.resolve(e.lastRect) {
		sid, ok := b.nodeMap[id]
		n, found := nodes[id]
		cs := styles[id]
		if !ok || !found || cs == nil {
			return nil, &LayoutError{Op: "incremental", NodeID: id, Err: errStaleNode}
		}
		var parentBox *boxsolver.Style
		var parentCS *style.ComputedStyle
		if pid, hasParent := b.parents[id]; hasParent {
			pb := b.boxes[pid]
			parentBox, parentCS = &pb, styles[pid]
		}
		st := convertStyle(n, cs, styles, parentBox, parentCS, vp)
		if st.Display != b.boxes[id].Display {
			return nil, &LayoutError{Op: "incremental", NodeID: id, Err: errDisplayShift}
		}
		if err := e.solver.SetStyle(sid, st); err != nil {
			return nil, &LayoutError{Op: "incremental", NodeID: id, Err: err}
		}
		b.boxes[id] = st
		e.logger.Debug("Restyled dirty node", zap.Int64("node", int64(id)), zap.Strings("props", e.dirty.props[id]))
	}

	res, err := e.solve(b, b.root, vp)
	if err != nil {
		// The tree may be half updated; force the next pass to rebuild.
		e.tree = nil
		return nil, err
	}
	res.Metrics.Incremental = true
	return res, nil
}

func (e *Engine) solve(b *builder, rootID boxsolver.NodeID, vp units.Viewport) (*Result, error) {
	if err := e.solver.ComputeLayout(rootID, boxsolver.Size{Width: vp.Width}); err != nil {
		return nil, &LayoutError{Op: "solve", Err: err}
	}
	x := &extractor{solver: e.solver, cull: e.cfg.ViewportCulling}
	return x.Extract(b.nodeMap, b.order, vp)
}

// MarkDirty records that id changed. The next pass skips the cache and,
// when possible, updates only the marked nodes.
func (e *Engine) MarkDirty(id dom.NodeID, props ...string) {
	e.dirty.markNode(id, props...)
}

// MarkRegionDirty marks every node whose last rectangle intersects r.
func (e *Engine) MarkRegionDirty(r Rect) {
	e.dirty.markRegion(r)
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cache.clear()
}

// Reset drops all engine state: cache, solver tree, node maps, dirty
// marks and counters.
func (e *Engine) Reset() {
	e.cache.clear()
	e.dirty.clear()
	e.solver.Clear()
	e.tree = nil
	e.lastDOM, e.lastCSS, e.lastVP, e.lastRect = 0, 0, units.Viewport{}, nil
	e.hits, e.miss = 0, 0
}

// SetUserAgentRules replaces the user-agent stylesheet and clears the cache.
func (e *Engine) SetUserAgentRules(rules []style.StyleRule) {
	e.uaRules = rules
	e.ClearCache()
}

// SetUserRules replaces the user stylesheet and clears the cache.
func (e *Engine) SetUserRules(rules []style.StyleRule) {
	e.userRules = rules
	e.ClearCache()
}

// CacheLen returns the number of cached results.
func (e *Engine) CacheLen() int { return e.cache.len() }

// Stats is a snapshot of engine counters.
type Stats struct {
	CacheHits    uint64 `json:"cache_hits"`
	CacheMisses  uint64 `json:"cache_misses"`
	CacheEntries int    `json:"cache_entries"`
	TreeNodes    int    `json:"tree_nodes"`
	SolverNodes  int    `json:"solver_nodes"`
	PendingDirty bool   `json:"pending_dirty"`
}

// Stats returns a snapshot of the engine's cache, tree and dirty-mark
// counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		CacheHits:    e.hits,
		CacheMisses:  e.miss,
		CacheEntries: e.cache.len(),
		SolverNodes:  e.solver.NodeCount(),
		PendingDirty: !e.dirty.empty(),
	}
	if e.tree != nil {
		s.TreeNodes = len(e.tree.nodeMap)
	}
	return s
}
