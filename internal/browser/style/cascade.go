// internal/browser/style/cascade.go
package style

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
	"github.com/xkilldash9x/stylebox/internal/observability"
)

// Resolver runs the cascade. It holds no per-document state and is safe to
// reuse across passes.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to the global one.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &Resolver{logger: logger.Named("style")}
}

// ComputeStyle resolves one element against the rule sets using the global
// logger. See Resolver.ComputeStyle.
func ComputeStyle(el dom.Node, sets []RuleSet, parent *ComputedStyle, vp units.Viewport) ComputedStyle {
	return NewResolver(nil).ComputeStyle(el, sets, parent, vp)
}

// compiledRule is a StyleRule with its selector parsed once per pass.
type compiledRule struct {
	sel         compound
	ok          bool
	origin      Origin
	specificity int
	order       int
	decls       []Declaration
}

func compile(sets []RuleSet) []compiledRule {
	var out []compiledRule
	order := 0
	for _, set := range sets {
		for _, rule := range set.Rules {
			c, ok := parseCompound(rule.Selector)
			out = append(out, compiledRule{
				sel:         c,
				ok:          ok,
				origin:      set.Origin,
				specificity: rule.Specificity,
				order:       order,
				decls:       rule.Declarations,
			})
			order += len(rule.Declarations)
		}
	}
	return out
}

func (cr *compiledRule) matches(n dom.Node) bool {
	if !cr.ok {
		return false
	}
	if cr.sel.tag != "" && cr.sel.tag != strings.ToLower(n.Tag()) {
		return false
	}
	if cr.sel.id != "" {
		if id, has := n.ElementID(); !has || id != cr.sel.id {
			return false
		}
	}
	for _, want := range cr.sel.classes {
		if !containsString(n.Classes(), want) {
			return false
		}
	}
	return true
}

type matchedDecl struct {
	Declaration
	origin      Origin
	specificity int
	order       int
}

// ComputeStyle matches el against every rule, orders the matches by
// (origin, specificity, source order) and applies normal declarations
// followed by !important ones. parent is nil for the root element.
func (r *Resolver) ComputeStyle(el dom.Node, sets []RuleSet, parent *ComputedStyle, vp units.Viewport) ComputedStyle {
	return r.compute(el, compile(sets), parent, vp.Normalized())
}

// ComputeTree resolves every element under root in one pass and returns the
// styles keyed by node id. Subtrees for which skip returns true are left out
// entirely and display:none elements get a style but their children do not.
func (r *Resolver) ComputeTree(root dom.Node, sets []RuleSet, vp units.Viewport, skip func(dom.Node) bool) map[dom.NodeID]*ComputedStyle {
	styles := make(map[dom.NodeID]*ComputedStyle)
	if root == nil {
		return styles
	}
	rules := compile(sets)
	vp = vp.Normalized()

	type frame struct {
		node   dom.Node
		parent *ComputedStyle
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if skip != nil && skip(f.node) {
			continue
		}
		cs := r.compute(f.node, rules, f.parent, vp)
		styles[f.node.ID()] = &cs
		if cs.Display == DisplayNone {
			continue
		}
		children := f.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], parent: &cs})
		}
	}
	return styles
}

func (r *Resolver) compute(el dom.Node, rules []compiledRule, parent *ComputedStyle, vp units.Viewport) ComputedStyle {
	var matched []matchedDecl
	for i := range rules {
		rule := &rules[i]
		if !rule.matches(el) {
			continue
		}
		for j, d := range rule.decls {
			matched = append(matched, matchedDecl{
				Declaration: d,
				origin:      rule.origin,
				specificity: rule.specificity,
				order:       rule.order + j,
			})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.origin != b.origin {
			return a.origin < b.origin
		}
		if a.specificity != b.specificity {
			return a.specificity < b.specificity
		}
		return a.order < b.order
	})

	declared := make(map[string]string)
	for _, important := range []bool{false, true} {
		for _, m := range matched {
			if m.Important == important {
				applyDeclaration(declared, m.Property, m.Value)
			}
		}
	}

	initial := InitialStyle()
	c := &cascade{
		logger:   r.logger,
		node:     el,
		declared: declared,
		parent:   parent,
		vp:       vp,
	}
	if parent == nil {
		root := initial
		root.FontSize = vp.RootFontSize
		root.LineHeight = vp.RootFontSize * DefaultLineHeight
		c.parent = &root
	}
	return c.resolve(&initial)
}

// applyDeclaration writes a declaration into the declared map, expanding
// shorthands in place so later longhands and shorthands override earlier
// ones in cascade order.
func applyDeclaration(declared map[string]string, property, value string) {
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)
	if property == "" {
		return
	}
	if parts, ok := expandShorthand(property, value); ok {
		for _, lh := range parts {
			declared[lh.property] = lh.value
		}
		return
	}
	declared[property] = value
}

var inheritedProperties = map[string]bool{
	"color":           true,
	"font":            true,
	"line-height":     true,
	"border-collapse": true,
	"border-spacing":  true,
	"white-space":     true,
	"direction":       true,
	"cursor":          true,
	"visibility":      true,
	"quotes":          true,
	"widows":          true,
	"orphans":         true,
}

// IsInherited reports whether a property takes its parent's value when unset.
func IsInherited(property string) bool {
	if inheritedProperties[property] {
		return true
	}
	for _, prefix := range []string{"font-", "text-", "list-style", "page-break-"} {
		if strings.HasPrefix(property, prefix) {
			return true
		}
	}
	return false
}

type cascade struct {
	logger   *zap.Logger
	node     dom.Node
	declared map[string]string
	parent   *ComputedStyle
	vp       units.Viewport
}

// resolveProp applies the CSS-wide keywords and inheritance rules, calling
// parse only for a concrete declared value.
func resolveProp[T any](c *cascade, prop string, initial, inherited T, parse func(string) T) T {
	v, ok := c.declared[prop]
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case !ok, v == "unset":
		if IsInherited(prop) {
			return inherited
		}
		return initial
	case v == "inherit":
		return inherited
	case v == "initial":
		return initial
	}
	return parse(v)
}

func (c *cascade) resolve(initial *ComputedStyle) ComputedStyle {
	p := c.parent
	cs := ComputedStyle{}

	cs.Display = c.resolveDisplay()
	cs.Position = resolveProp(c, "position", initial.Position, p.Position, parsePosition)
	cs.BoxSizing = resolveProp(c, "box-sizing", initial.BoxSizing, p.BoxSizing, parseBoxSizing)

	cs.FontSize = resolveProp(c, "font-size", initial.FontSize, p.FontSize, c.parseFontSize)
	cs.FontWeight = resolveProp(c, "font-weight", initial.FontWeight, p.FontWeight, func(v string) int {
		return parseFontWeight(v, p.FontWeight)
	})
	cs.LineHeight = c.resolveLineHeight(cs.FontSize)
	cs.Color = resolveProp(c, "color", initial.Color, p.Color, func(v string) Color {
		if v == "currentcolor" {
			return p.Color
		}
		col, ok := ParseColor(v)
		if !ok {
			c.logger.Debug("Unparseable color, inheriting", zap.String("value", v), zap.Int64("node_id", int64(c.node.ID())))
			return p.Color
		}
		return col
	})

	cs.Width = c.length("width", initial.Width, p.Width)
	cs.Height = c.length("height", initial.Height, p.Height)
	cs.MinWidth = c.length("min-width", initial.MinWidth, p.MinWidth)
	cs.MinHeight = c.length("min-height", initial.MinHeight, p.MinHeight)
	cs.MaxWidth = c.length("max-width", initial.MaxWidth, p.MaxWidth)
	cs.MaxHeight = c.length("max-height", initial.MaxHeight, p.MaxHeight)

	cs.Margin = c.edges("margin-", "", initial.Margin, p.Margin)
	cs.Padding = c.edges("padding-", "", initial.Padding, p.Padding)
	cs.Border = c.edges("border-", "-width", initial.Border, p.Border)
	cs.Inset = c.edges("", "", initial.Inset, p.Inset)

	cs.FlexDirection = resolveProp(c, "flex-direction", initial.FlexDirection, p.FlexDirection, parseFlexDirection)
	cs.FlexWrap = resolveProp(c, "flex-wrap", initial.FlexWrap, p.FlexWrap, parseFlexWrap)
	cs.JustifyContent = resolveProp(c, "justify-content", initial.JustifyContent, p.JustifyContent, parseJustifyContent)
	cs.AlignItems = resolveProp(c, "align-items", initial.AlignItems, p.AlignItems, parseAlignItems)
	cs.AlignSelf = resolveProp(c, "align-self", initial.AlignSelf, p.AlignSelf, parseAlignSelf)
	cs.AlignContent = resolveProp(c, "align-content", initial.AlignContent, p.AlignContent, parseAlignContent)
	cs.FlexGrow = resolveProp(c, "flex-grow", initial.FlexGrow, p.FlexGrow, c.factor("flex-grow", initial.FlexGrow))
	cs.FlexShrink = resolveProp(c, "flex-shrink", initial.FlexShrink, p.FlexShrink, c.factor("flex-shrink", initial.FlexShrink))
	cs.FlexBasis = c.length("flex-basis", initial.FlexBasis, p.FlexBasis)

	cs.RowGap = c.length("row-gap", initial.RowGap, p.RowGap)
	cs.ColumnGap = c.length("column-gap", initial.ColumnGap, p.ColumnGap)

	tracks := func(v string) []GridTrack {
		t, _ := ParseGridTracks(v)
		return t
	}
	cs.GridTemplateColumns = resolveProp(c, "grid-template-columns", initial.GridTemplateColumns, p.GridTemplateColumns, tracks)
	cs.GridTemplateRows = resolveProp(c, "grid-template-rows", initial.GridTemplateRows, p.GridTemplateRows, tracks)
	cs.GridAutoFlow = resolveProp(c, "grid-auto-flow", initial.GridAutoFlow, p.GridAutoFlow, parseGridAutoFlow)
	cs.GridRowStart = resolveProp(c, "grid-row-start", initial.GridRowStart, p.GridRowStart, ParseGridLine)
	cs.GridRowEnd = resolveProp(c, "grid-row-end", initial.GridRowEnd, p.GridRowEnd, ParseGridLine)
	cs.GridColumnStart = resolveProp(c, "grid-column-start", initial.GridColumnStart, p.GridColumnStart, ParseGridLine)
	cs.GridColumnEnd = resolveProp(c, "grid-column-end", initial.GridColumnEnd, p.GridColumnEnd, ParseGridLine)

	cs.Inherited = c.inheritedMap()
	return cs
}

func (c *cascade) resolveDisplay() Display {
	tagDefault := DefaultDisplay(strings.ToLower(c.node.Tag()))
	v, ok := c.declared["display"]
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case !ok, v == "unset":
		return tagDefault
	case v == "inherit":
		return c.parent.Display
	case v == "initial":
		return DisplayInline
	}
	d, known := parseDisplay(v)
	if !known {
		c.logger.Debug("Unknown display value, using tag default", zap.String("value", v), zap.String("tag", c.node.Tag()))
		return tagDefault
	}
	return d
}

var borderWidthKeywords = map[string]units.Length{
	"thin":   units.Px(1),
	"medium": units.Px(3),
	"thick":  units.Px(5),
}

// nonNegative lists the length properties that reject negative values.
// Margins and insets are absent.
var nonNegative = map[string]bool{
	"width": true, "height": true,
	"min-width": true, "min-height": true,
	"max-width": true, "max-height": true,
	"padding-top": true, "padding-right": true, "padding-bottom": true, "padding-left": true,
	"border-top-width": true, "border-right-width": true, "border-bottom-width": true, "border-left-width": true,
	"flex-basis": true, "row-gap": true, "column-gap": true,
}

// parseLength reads a length for prop. Unparseable values degrade to zero
// and negative values of a nonNegative property fall back to initial.
func (c *cascade) parseLength(prop, v string, initial units.Length) units.Length {
	switch v {
	case "none":
		if strings.HasPrefix(prop, "max-") {
			return units.Auto()
		}
	case "normal":
		if strings.HasSuffix(prop, "gap") {
			return units.Zero()
		}
	case "content", "max-content", "min-content", "fit-content":
		return units.Auto()
	}
	if strings.HasPrefix(prop, "border-") {
		if l, ok := borderWidthKeywords[v]; ok {
			return l
		}
	}
	l, err := units.ParseLength(v)
	if err != nil {
		c.logger.Debug("Unparseable length, using zero",
			zap.String("property", prop),
			zap.String("value", v),
			zap.Int64("node_id", int64(c.node.ID())),
		)
		return units.Zero()
	}
	if l.Value < 0 && nonNegative[prop] {
		c.logger.Debug("Negative length, using initial value",
			zap.String("property", prop),
			zap.String("value", v),
			zap.Int64("node_id", int64(c.node.ID())),
		)
		return initial
	}
	return l
}

func (c *cascade) length(prop string, initial, inherited units.Length) units.Length {
	return resolveProp(c, prop, initial, inherited, func(v string) units.Length {
		return c.parseLength(prop, v, initial)
	})
}

// edges resolves the four sides of a box property named prefix+side+suffix.
func (c *cascade) edges(prefix, suffix string, initial, inherited Edges) Edges {
	side := func(name string) string { return prefix + name + suffix }
	return Edges{
		Top:    c.length(side("top"), initial.Top, inherited.Top),
		Right:  c.length(side("right"), initial.Right, inherited.Right),
		Bottom: c.length(side("bottom"), initial.Bottom, inherited.Bottom),
		Left:   c.length(side("left"), initial.Left, inherited.Left),
	}
}

func (c *cascade) factor(prop string, initial float32) func(string) float32 {
	return func(v string) float32 {
		f, ok := parseFactor(v)
		if !ok {
			c.logger.Debug("Invalid flex factor", zap.String("property", prop), zap.String("value", v))
			return initial
		}
		return f
	}
}

var fontSizeKeywords = map[string]float32{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    16,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

// parseFontSize resolves a font-size to px against the parent font size.
// Percent, em, ex and ch are parent relative and rem is root relative.
func (c *cascade) parseFontSize(v string) float32 {
	parent := c.parent.FontSize
	if px, ok := fontSizeKeywords[v]; ok {
		return px
	}
	switch v {
	case "smaller":
		return parent / 1.2
	case "larger":
		return parent * 1.2
	}

	l, err := units.ParseLength(v)
	if err != nil || l.IsAuto() {
		c.logger.Debug("Unparseable font-size, inheriting", zap.String("value", v))
		return parent
	}
	var px float32
	if l.IsPercent() {
		px = l.Value / 100 * parent
	} else {
		px = units.ToPixels(l, parent, c.vp)
	}
	if px < 0 || finitePx(px, -1) < 0 {
		c.logger.Debug("Out of range font-size, inheriting", zap.String("value", v))
		return parent
	}
	return px
}

// parseFactor reads a finite non-negative number such as a flex factor or
// a unitless line-height.
func parseFactor(v string) (float32, bool) {
	f, err := strconv.ParseFloat(v, 32)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return float32(f), true
}

func parseFontWeight(v string, parent int) int {
	switch v {
	case "normal":
		return 400
	case "bold":
		return 700
	case "bolder":
		switch {
		case parent < 400:
			return 400
		case parent < 600:
			return 700
		default:
			return 900
		}
	case "lighter":
		switch {
		case parent < 600:
			return 100
		case parent < 800:
			return 400
		default:
			return 700
		}
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 1000 {
		return n
	}
	return 400
}

// resolveLineHeight returns the used line height in px. A unitless number
// is inherited as a factor and re-applied to this element's font size;
// lengths are inherited as the parent's computed px.
func (c *cascade) resolveLineHeight(fontSize float32) float32 {
	v, ok := c.declared["line-height"]
	v = strings.ToLower(strings.TrimSpace(v))
	if !ok || v == "inherit" || v == "unset" {
		raw := strings.ToLower(c.parent.Inherited["line-height"])
		if raw == "" || raw == "normal" || raw == "initial" {
			return fontSize * DefaultLineHeight
		}
		if isNumber(raw) {
			if f, ok := parseFactor(raw); ok {
				return finitePx(f*fontSize, fontSize*DefaultLineHeight)
			}
			return fontSize * DefaultLineHeight
		}
		return c.parent.LineHeight
	}
	if v == "initial" || v == "normal" {
		return fontSize * DefaultLineHeight
	}
	if isNumber(v) {
		if f, ok := parseFactor(v); ok {
			return finitePx(f*fontSize, fontSize*DefaultLineHeight)
		}
		c.logger.Debug("Invalid line-height factor, using normal", zap.String("value", v))
		return fontSize * DefaultLineHeight
	}
	l, err := units.ParseLength(v)
	if err != nil || l.Value < 0 {
		c.logger.Debug("Unparseable line-height, using normal", zap.String("value", v))
		return fontSize * DefaultLineHeight
	}
	if l.IsPercent() {
		return finitePx(l.Value/100*fontSize, fontSize*DefaultLineHeight)
	}
	return finitePx(units.ToPixels(l, fontSize, c.vp), fontSize*DefaultLineHeight)
}

// finitePx returns px, or fallback when a unit conversion overflowed.
func finitePx(px, fallback float32) float32 {
	if math.IsInf(float64(px), 0) || math.IsNaN(float64(px)) {
		return fallback
	}
	return px
}

// inheritedMap carries the parent's inherited values forward and overlays
// this element's own inherited declarations.
func (c *cascade) inheritedMap() map[string]string {
	out := make(map[string]string, len(c.parent.Inherited)+4)
	for k, v := range c.parent.Inherited {
		out[k] = v
	}
	for prop, v := range c.declared {
		if !IsInherited(prop) {
			continue
		}
		switch strings.ToLower(v) {
		case "inherit", "unset":
		case "initial":
			delete(out, prop)
		default:
			out[prop] = v
		}
	}
	return out
}
