// internal/browser/layout/builder.go
package layout

import (
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/browser/boxsolver"
	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/style"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
)

var (
	errEmptyTree     = errors.New("document has no participating root")
	errDuplicateNode = errors.New("node id registered twice")
)

// nonVisualTags never produce a box and are not visited.
var nonVisualTags = map[string]struct{}{
	"head":     {},
	"script":   {},
	"style":    {},
	"meta":     {},
	"link":     {},
	"title":    {},
	"template": {},
	"noscript": {},
	"base":     {},
}

func isNonVisual(n dom.Node) bool {
	_, skip := nonVisualTags[n.Tag()]
	return skip
}

// countParticipating counts the nodes a build would visit. It stops as
// soon as the count passes limit.
func countParticipating(root dom.Node, limit int) int {
	count := 0
	stack := []dom.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if isNonVisual(n) {
			continue
		}
		count++
		if count > limit {
			return count
		}
		stack = append(stack, n.Children()...)
	}
	return count
}

// builder turns a DOM tree into a box solver tree. A builder is used for
// one full build; its maps are kept afterwards for incremental updates.
type builder struct {
	solver   boxsolver.Solver
	resolver *style.Resolver
	logger   *zap.Logger
	limit    int

	root    boxsolver.NodeID
	nodeMap map[dom.NodeID]boxsolver.NodeID
	// order is registration order: children before their parent.
	order   []dom.NodeID
	parents map[dom.NodeID]dom.NodeID
	boxes   map[dom.NodeID]boxsolver.Style
}

func newBuilder(solver boxsolver.Solver, resolver *style.Resolver, logger *zap.Logger, limit int) *builder {
	return &builder{
		solver:   solver,
		resolver: resolver,
		logger:   logger,
		limit:    limit,
		nodeMap:  make(map[dom.NodeID]boxsolver.NodeID),
		parents:  make(map[dom.NodeID]dom.NodeID),
		boxes:    make(map[dom.NodeID]boxsolver.Style),
	}
}

// Build cascades the document, converts every participating node and
// registers it with the solver, children first. The returned id is the
// solver root.
func (b *builder) Build(root dom.Node, sets []style.RuleSet, vp units.Viewport) (boxsolver.NodeID, error) {
	if root == nil || isNonVisual(root) {
		return 0, &LayoutError{Op: "build", Err: errEmptyTree}
	}
	if n := countParticipating(root, b.limit); n > b.limit {
		return 0, &SecurityViolationError{Count: n, Limit: b.limit}
	}

	styles := b.resolver.ComputeTree(root, sets, vp, isNonVisual)

	type frame struct {
		node     dom.Node
		expanded bool
	}
	stack := []*frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		id := f.node.ID()

		if f.expanded {
			stack = stack[:len(stack)-1]
			var kids []boxsolver.NodeID
			for _, c := range f.node.Children() {
				if sid, ok := b.nodeMap[c.ID()]; ok && b.parents[c.ID()] == id {
					kids = append(kids, sid)
				}
			}
			if err := b.register(id, kids); err != nil {
				return 0, err
			}
			continue
		}

		cs := styles[id]
		if cs == nil {
			stack = stack[:len(stack)-1]
			continue
		}
		var parentBox *boxsolver.Style
		var parentCS *style.ComputedStyle
		if pid, ok := b.parents[id]; ok {
			pb := b.boxes[pid]
			parentBox, parentCS = &pb, styles[pid]
		}
		b.boxes[id] = convertStyle(f.node, cs, styles, parentBox, parentCS, vp)

		kids := participating(f.node, styles)
		if cs.Display == style.DisplayNone || len(kids) == 0 {
			stack = stack[:len(stack)-1]
			if err := b.register(id, nil); err != nil {
				return 0, err
			}
			continue
		}
		f.expanded = true
		for i := len(kids) - 1; i >= 0; i-- {
			b.parents[kids[i].ID()] = id
			stack = append(stack, &frame{node: kids[i]})
		}
	}

	sid, ok := b.nodeMap[root.ID()]
	if !ok {
		return 0, &LayoutError{Op: "build", NodeID: root.ID(), Err: errEmptyTree}
	}
	b.root = sid
	b.logger.Debug("Layout tree built", zap.Int("nodes", len(b.nodeMap)))
	return sid, nil
}

// register adds one node to the solver. The node bound is checked again
// here so a tree that changes under the pre-pass still cannot exceed it.
func (b *builder) register(id dom.NodeID, kids []boxsolver.NodeID) error {
	if len(b.nodeMap) >= b.limit {
		return &SecurityViolationError{Count: len(b.nodeMap) + 1, Limit: b.limit}
	}
	if _, dup := b.nodeMap[id]; dup {
		return &LayoutError{Op: "register", NodeID: id, Err: errDuplicateNode}
	}
	st := b.boxes[id]
	var sid boxsolver.NodeID
	var err error
	if len(kids) == 0 {
		sid, err = b.solver.NewLeaf(st)
	} else {
		sid, err = b.solver.NewWithChildren(st, kids)
	}
	if err != nil {
		return &LayoutError{Op: "register", NodeID: id, Err: err}
	}
	b.nodeMap[id] = sid
	b.order = append(b.order, id)
	return nil
}

// participating returns the children that received a computed style.
func participating(n dom.Node, styles map[dom.NodeID]*style.ComputedStyle) []dom.Node {
	var out []dom.Node
	for _, c := range n.Children() {
		if _, ok := styles[c.ID()]; ok {
			out = append(out, c)
		}
	}
	return out
}

func isInlineLevel(d style.Display) bool {
	switch d {
	case style.DisplayInline, style.DisplayInlineBlock, style.DisplayInlineFlex, style.DisplayInlineGrid:
		return true
	}
	return false
}

// inlineContext reports whether every rendered child of n is inline-level.
func inlineContext(n dom.Node, styles map[dom.NodeID]*style.ComputedStyle) bool {
	rendered := 0
	for _, c := range participating(n, styles) {
		d := styles[c.ID()].Display
		if d == style.DisplayNone {
			continue
		}
		if !isInlineLevel(d) {
			return false
		}
		rendered++
	}
	return rendered > 0
}

// convertStyle maps a computed style onto the solver's style record.
// parent is the already converted style of the parent box, nil at the root.
func convertStyle(n dom.Node, cs *style.ComputedStyle, styles map[dom.NodeID]*style.ComputedStyle, parent *boxsolver.Style, parentCS *style.ComputedStyle, vp units.Viewport) boxsolver.Style {
	st := boxsolver.DefaultStyle()
	fs := cs.FontSize
	dim := func(l units.Length) boxsolver.Dimension { return toDimension(l, fs, vp) }

	switch cs.Display {
	case style.DisplayFlex, style.DisplayInlineFlex:
		st.Display = boxsolver.DisplayFlex
		st.FlexDirection = mapFlexDirection(cs.FlexDirection)
		st.FlexWrap = mapFlexWrap(cs.FlexWrap)
		st.JustifyContent = mapJustify(cs.JustifyContent)
		st.AlignItems = mapAlignItems(cs.AlignItems)
		st.AlignContent = mapAlignContent(cs.AlignContent)
	case style.DisplayGrid, style.DisplayInlineGrid:
		st.Display = boxsolver.DisplayGrid
	case style.DisplayNone:
		st.Display = boxsolver.DisplayNone
	case style.DisplayTableRow:
		st.Display = boxsolver.DisplayFlex
		st.FlexDirection = boxsolver.FlexDirectionRow
		st.AlignItems = boxsolver.AlignStretch
	default:
		st.Display = boxsolver.DisplayBlock
		if inlineContext(n, styles) {
			st.Display = boxsolver.DisplayFlex
			st.FlexDirection = boxsolver.FlexDirectionRow
			st.FlexWrap = boxsolver.Wrap
			st.AlignItems = boxsolver.AlignFlexStart
			st.AlignContent = boxsolver.AlignFlexStart
		}
	}

	switch cs.Position {
	case style.PositionAbsolute, style.PositionFixed:
		st.Position = boxsolver.PositionAbsolute
	default:
		st.Position = boxsolver.PositionRelative
	}
	if cs.Position != style.PositionStatic {
		st.Inset = boxsolver.Edges{
			Left:   dim(cs.Inset.Left),
			Right:  dim(cs.Inset.Right),
			Top:    dim(cs.Inset.Top),
			Bottom: dim(cs.Inset.Bottom),
		}
	}

	st.Size = boxsolver.DimensionSize{Width: dim(cs.Width), Height: dim(cs.Height)}
	st.MinSize = boxsolver.DimensionSize{Width: dim(cs.MinWidth), Height: dim(cs.MinHeight)}
	st.MaxSize = boxsolver.DimensionSize{Width: dim(cs.MaxWidth), Height: dim(cs.MaxHeight)}

	st.Margin = boxsolver.Edges{
		Left:   dim(cs.Margin.Left),
		Right:  dim(cs.Margin.Right),
		Top:    dim(cs.Margin.Top),
		Bottom: dim(cs.Margin.Bottom),
	}
	st.Padding = boxEdges(cs.Padding, fs, vp)
	st.Border = boxEdges(cs.Border, fs, vp)

	// The solver sizes the border box; content-box lengths grow by the
	// padding and border on their axis.
	if cs.BoxSizing == style.ContentBox {
		dx := points(st.Padding.Left) + points(st.Padding.Right) + points(st.Border.Left) + points(st.Border.Right)
		dy := points(st.Padding.Top) + points(st.Padding.Bottom) + points(st.Border.Top) + points(st.Border.Bottom)
		for _, d := range []*boxsolver.Dimension{&st.Size.Width, &st.MinSize.Width, &st.MaxSize.Width} {
			grow(d, dx)
		}
		for _, d := range []*boxsolver.Dimension{&st.Size.Height, &st.MinSize.Height, &st.MaxSize.Height} {
			grow(d, dy)
		}
	}

	st.FlexGrow = cs.FlexGrow
	st.FlexShrink = cs.FlexShrink
	st.FlexBasis = dim(cs.FlexBasis)
	st.AlignSelf = mapAlignSelf(cs.AlignSelf)
	if parentCS != nil && parentCS.Display == style.DisplayTableRow && cs.Width.IsAuto() && cs.FlexGrow == 0 {
		// Cells share the row evenly.
		st.FlexGrow = 1
		st.FlexBasis = boxsolver.Points(0)
	}

	st.Gap = boxsolver.DimensionSize{Width: dim(cs.ColumnGap), Height: dim(cs.RowGap)}
	st.GridTemplateColumns = convertTracks(cs.GridTemplateColumns, fs, vp)
	st.GridTemplateRows = convertTracks(cs.GridTemplateRows, fs, vp)
	st.GridAutoFlow = mapGridAutoFlow(cs.GridAutoFlow)
	st.GridRow = boxsolver.GridLine{Start: placement(cs.GridRowStart), End: placement(cs.GridRowEnd)}
	st.GridColumn = boxsolver.GridLine{Start: placement(cs.GridColumnStart), End: placement(cs.GridColumnEnd)}

	if text := strings.TrimSpace(n.Text()); text != "" && len(participating(n, styles)) == 0 && st.Display != boxsolver.DisplayNone {
		sizeText(&st, text, cs, parent)
	}
	return st
}

// sizeText gives a text leaf an intrinsic size on each axis it leaves
// auto. Width is left alone when the parent would stretch the box across
// its cross axis anyway.
func sizeText(st *boxsolver.Style, text string, cs *style.ComputedStyle, parent *boxsolver.Style) {
	w, h := measureText(text, cs.FontSize, cs.LineHeight)
	if st.Size.Height.Unit == boxsolver.UnitAuto {
		h += points(st.Padding.Top) + points(st.Padding.Bottom) + points(st.Border.Top) + points(st.Border.Bottom)
		st.Size.Height = boxsolver.Points(h)
	}
	if st.Size.Width.Unit == boxsolver.UnitAuto && !stretchesWidth(st, parent) {
		w += points(st.Padding.Left) + points(st.Padding.Right) + points(st.Border.Left) + points(st.Border.Right)
		st.Size.Width = boxsolver.Points(w)
	}
}

func stretchesWidth(st *boxsolver.Style, parent *boxsolver.Style) bool {
	if parent == nil {
		return true
	}
	if st.Position == boxsolver.PositionAbsolute {
		return false
	}
	align := parent.AlignItems
	column := false
	switch parent.Display {
	case boxsolver.DisplayBlock, boxsolver.DisplayGrid:
		column, align = true, boxsolver.AlignStretch
	case boxsolver.DisplayFlex:
		column = parent.FlexDirection == boxsolver.FlexDirectionColumn || parent.FlexDirection == boxsolver.FlexDirectionColumnReverse
	}
	if !column {
		return false
	}
	if st.AlignSelf != boxsolver.AlignAuto {
		align = st.AlignSelf
	}
	return align == boxsolver.AlignStretch
}

func toDimension(l units.Length, fontSize float32, vp units.Viewport) boxsolver.Dimension {
	switch {
	case l.IsAuto():
		return boxsolver.Auto()
	case l.IsPercent():
		return boxsolver.Percent(l.Value)
	}
	px, ok := units.Resolve(l, fontSize, vp)
	if !ok || math.IsInf(float64(px), 0) || math.IsNaN(float64(px)) {
		return boxsolver.Auto()
	}
	return boxsolver.Points(px)
}

// boxEdges converts padding or border widths, which take neither auto nor
// negative values.
func boxEdges(e style.Edges, fontSize float32, vp units.Viewport) boxsolver.Edges {
	conv := func(l units.Length) boxsolver.Dimension {
		d := toDimension(l, fontSize, vp)
		if d.Unit == boxsolver.UnitAuto || d.Value < 0 {
			return boxsolver.Points(0)
		}
		return d
	}
	return boxsolver.Edges{Left: conv(e.Left), Right: conv(e.Right), Top: conv(e.Top), Bottom: conv(e.Bottom)}
}

func points(d boxsolver.Dimension) float32 {
	if d.Unit == boxsolver.UnitPoints {
		return d.Value
	}
	return 0
}

func grow(d *boxsolver.Dimension, by float32) {
	if d.Unit == boxsolver.UnitPoints {
		d.Value += by
	}
}

func convertTracks(tracks []style.GridTrack, fontSize float32, vp units.Viewport) []boxsolver.TrackSizing {
	if len(tracks) == 0 {
		return nil
	}
	out := make([]boxsolver.TrackSizing, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackSizing(t.Size, fontSize, vp))
	}
	return out
}

func trackSizing(size string, fontSize float32, vp units.Viewport) boxsolver.TrackSizing {
	size = strings.ToLower(strings.TrimSpace(size))
	switch size {
	case "auto":
		return boxsolver.TrackSizing{Kind: boxsolver.TrackAuto}
	case "min-content":
		return boxsolver.TrackSizing{Kind: boxsolver.TrackMinContent}
	case "max-content":
		return boxsolver.TrackSizing{Kind: boxsolver.TrackMaxContent}
	}
	if strings.HasSuffix(size, "fr") {
		if l, err := units.ParseLength(strings.TrimSuffix(size, "fr") + "px"); err == nil && l.Unit == units.UnitPx {
			return boxsolver.TrackSizing{Kind: boxsolver.TrackFraction, Value: l.Value}
		}
		return boxsolver.TrackSizing{Kind: boxsolver.TrackAuto}
	}
	l, err := units.ParseLength(size)
	if err != nil {
		// minmax(), fit-content() and friends are not interpreted.
		return boxsolver.TrackSizing{Kind: boxsolver.TrackAuto}
	}
	switch d := toDimension(l, fontSize, vp); d.Unit {
	case boxsolver.UnitPoints:
		return boxsolver.TrackSizing{Kind: boxsolver.TrackPoints, Value: d.Value}
	case boxsolver.UnitPercent:
		return boxsolver.TrackSizing{Kind: boxsolver.TrackPercent, Value: d.Value}
	}
	return boxsolver.TrackSizing{Kind: boxsolver.TrackAuto}
}

func placement(l style.GridLine) boxsolver.GridPlacement {
	switch {
	case l.IsAuto:
		return boxsolver.GridPlacement{Kind: boxsolver.PlacementAuto}
	case l.IsNamedSpan:
		return boxsolver.GridPlacement{Kind: boxsolver.PlacementNamedSpan, Name: l.Name}
	case l.Span > 0:
		return boxsolver.GridPlacement{Kind: boxsolver.PlacementSpan, Span: l.Span}
	case l.Name != "":
		return boxsolver.GridPlacement{Kind: boxsolver.PlacementNamed, Name: l.Name}
	default:
		return boxsolver.GridPlacement{Kind: boxsolver.PlacementLine, Line: l.Line}
	}
}

func mapFlexDirection(d style.FlexDirection) boxsolver.FlexDirection {
	switch d {
	case style.FlexDirectionRowReverse:
		return boxsolver.FlexDirectionRowReverse
	case style.FlexDirectionColumn:
		return boxsolver.FlexDirectionColumn
	case style.FlexDirectionColumnReverse:
		return boxsolver.FlexDirectionColumnReverse
	default:
		return boxsolver.FlexDirectionRow
	}
}

func mapFlexWrap(w style.FlexWrap) boxsolver.FlexWrap {
	switch w {
	case style.FlexWrapWrap:
		return boxsolver.Wrap
	case style.FlexWrapReverse:
		return boxsolver.WrapReverse
	default:
		return boxsolver.NoWrap
	}
}

func mapJustify(j style.JustifyContent) boxsolver.JustifyContent {
	switch j {
	case style.JustifyFlexEnd:
		return boxsolver.JustifyFlexEnd
	case style.JustifyCenter:
		return boxsolver.JustifyCenter
	case style.JustifySpaceBetween:
		return boxsolver.JustifySpaceBetween
	case style.JustifySpaceAround:
		return boxsolver.JustifySpaceAround
	case style.JustifySpaceEvenly:
		return boxsolver.JustifySpaceEvenly
	default:
		return boxsolver.JustifyFlexStart
	}
}

func mapAlignItems(a style.AlignItems) boxsolver.Align {
	switch a {
	case style.AlignItemsFlexStart:
		return boxsolver.AlignFlexStart
	case style.AlignItemsCenter:
		return boxsolver.AlignCenter
	case style.AlignItemsFlexEnd:
		return boxsolver.AlignFlexEnd
	case style.AlignItemsBaseline:
		return boxsolver.AlignBaseline
	default:
		return boxsolver.AlignStretch
	}
}

func mapAlignSelf(a style.AlignSelf) boxsolver.Align {
	switch a {
	case style.AlignSelfStretch:
		return boxsolver.AlignStretch
	case style.AlignSelfFlexStart:
		return boxsolver.AlignFlexStart
	case style.AlignSelfCenter:
		return boxsolver.AlignCenter
	case style.AlignSelfFlexEnd:
		return boxsolver.AlignFlexEnd
	case style.AlignSelfBaseline:
		return boxsolver.AlignBaseline
	default:
		return boxsolver.AlignAuto
	}
}

func mapAlignContent(a style.AlignContent) boxsolver.Align {
	switch a {
	case style.AlignContentFlexStart:
		return boxsolver.AlignFlexStart
	case style.AlignContentFlexEnd:
		return boxsolver.AlignFlexEnd
	case style.AlignContentCenter:
		return boxsolver.AlignCenter
	case style.AlignContentSpaceBetween:
		return boxsolver.AlignSpaceBetween
	case style.AlignContentSpaceAround:
		return boxsolver.AlignSpaceAround
	case style.AlignContentSpaceEvenly:
		return boxsolver.AlignSpaceEvenly
	default:
		return boxsolver.AlignStretch
	}
}

func mapGridAutoFlow(f style.GridAutoFlow) boxsolver.GridAutoFlow {
	switch f {
	case style.GridAutoFlowColumn:
		return boxsolver.GridAutoFlowColumn
	case style.GridAutoFlowRowDense:
		return boxsolver.GridAutoFlowRowDense
	case style.GridAutoFlowColumnDense:
		return boxsolver.GridAutoFlowColumnDense
	default:
		return boxsolver.GridAutoFlowRow
	}
}
