// internal/browser/boxsolver/flex.go
package boxsolver

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/kjk/flex"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/observability"
)

// calcMu serializes flex.CalculateLayout, which bumps a package-level
// generation counter inside the flex library.
var calcMu sync.Mutex

// FlexSolver implements Solver on top of github.com/kjk/flex, a Go port of
// the Yoga flexbox engine. Block and grid containers are laid out as
// single-column flex containers; grid tracks, gap and placements are
// accepted but not interpreted.
type FlexSolver struct {
	logger *zap.Logger
	config *flex.Config

	nodes  map[NodeID]*flex.Node
	styles map[NodeID]Style
	ids    map[*flex.Node]NodeID
	next   NodeID
}

// NewFlexSolver creates an empty solver. A nil logger falls back to the
// global logger.
func NewFlexSolver(logger *zap.Logger) *FlexSolver {
	if logger == nil {
		logger = observability.GetLogger()
	}
	cfg := flex.NewConfig()
	cfg.UseWebDefaults = true

	s := &FlexSolver{
		logger: logger.Named("boxsolver"),
		config: cfg,
	}
	s.Clear()
	return s
}

// recoverPanic converts a flex assertion panic into a PanicError.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r}
	}
}

func (s *FlexSolver) NewLeaf(style Style) (NodeID, error) {
	return s.NewWithChildren(style, nil)
}

func (s *FlexSolver) NewWithChildren(style Style, children []NodeID) (id NodeID, err error) {
	defer recoverPanic(&err)

	if err := style.Validate(); err != nil {
		return 0, err
	}
	kids := make([]*flex.Node, len(children))
	for i, cid := range children {
		child, ok := s.nodes[cid]
		if !ok {
			return 0, fmt.Errorf("%w: child %d", ErrUnknownNode, cid)
		}
		if child.Parent != nil {
			return 0, fmt.Errorf("%w: child %d", ErrAlreadyParented, cid)
		}
		kids[i] = child
	}

	node := flex.NewNodeWithConfig(s.config)
	applyStyle(node, style)
	for i, child := range kids {
		node.InsertChild(child, i)
	}

	s.next++
	id = s.next
	s.nodes[id] = node
	s.styles[id] = style
	s.ids[node] = id
	return id, nil
}

// SetStyle replaces a node's style. Unchanged styles leave the node clean so
// the next ComputeLayout can reuse cached measurements.
func (s *FlexSolver) SetStyle(id NodeID, style Style) (err error) {
	defer recoverPanic(&err)

	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if err := style.Validate(); err != nil {
		return err
	}
	if reflect.DeepEqual(s.styles[id], style) {
		return nil
	}
	applyStyle(node, style)
	s.styles[id] = style
	return nil
}

func (s *FlexSolver) ComputeLayout(root NodeID, available Size) (err error) {
	defer recoverPanic(&err)

	node, ok := s.nodes[root]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, root)
	}
	calcMu.Lock()
	defer calcMu.Unlock()
	flex.CalculateLayout(node, availableAxis(available.Width), availableAxis(available.Height), flex.DirectionLTR)
	return nil
}

func availableAxis(v float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || v <= 0 {
		return flex.Undefined
	}
	return v
}

func (s *FlexSolver) Layout(id NodeID) (Rect, error) {
	node, ok := s.nodes[id]
	if !ok {
		return Rect{}, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	r := Rect{
		X:      node.LayoutGetLeft(),
		Y:      node.LayoutGetTop(),
		Width:  node.LayoutGetWidth(),
		Height: node.LayoutGetHeight(),
	}
	if isNaN(r.X) || isNaN(r.Y) || isNaN(r.Width) || isNaN(r.Height) {
		return Rect{}, fmt.Errorf("boxsolver: node %d has no computed layout", id)
	}
	return r, nil
}

func isNaN(f float32) bool { return math.IsNaN(float64(f)) }

func (s *FlexSolver) Parent(id NodeID) (NodeID, bool) {
	node, ok := s.nodes[id]
	if !ok || node.Parent == nil {
		return 0, false
	}
	pid, ok := s.ids[node.Parent]
	return pid, ok
}

func (s *FlexSolver) Clear() {
	s.nodes = make(map[NodeID]*flex.Node)
	s.styles = make(map[NodeID]Style)
	s.ids = make(map[*flex.Node]NodeID)
	s.next = 0
}

func (s *FlexSolver) NodeCount() int {
	return len(s.nodes)
}

func applyStyle(node *flex.Node, st Style) {
	dir, justify, alignItems, wrap := st.FlexDirection, st.JustifyContent, st.AlignItems, st.FlexWrap
	switch st.Display {
	case DisplayBlock, DisplayGrid:
		dir, justify, alignItems, wrap = FlexDirectionColumn, JustifyFlexStart, AlignStretch, NoWrap
	}

	if st.Display == DisplayNone {
		node.StyleSetDisplay(flex.DisplayNone)
	} else {
		node.StyleSetDisplay(flex.DisplayFlex)
	}
	if st.Position == PositionAbsolute {
		node.StyleSetPositionType(flex.PositionTypeAbsolute)
	} else {
		node.StyleSetPositionType(flex.PositionTypeRelative)
	}

	node.StyleSetFlexDirection(flexDirection(dir))
	node.StyleSetFlexWrap(flexWrap(wrap))
	node.StyleSetJustifyContent(flexJustify(justify))
	node.StyleSetAlignItems(flexAlign(alignItems, flex.AlignStretch))
	node.StyleSetAlignSelf(flexAlign(st.AlignSelf, flex.AlignAuto))
	node.StyleSetAlignContent(flexAlign(st.AlignContent, flex.AlignStretch))
	node.StyleSetFlexGrow(st.FlexGrow)
	node.StyleSetFlexShrink(st.FlexShrink)

	switch st.FlexBasis.Unit {
	case UnitPoints:
		node.StyleSetFlexBasis(st.FlexBasis.Value)
	case UnitPercent:
		node.StyleSetFlexBasisPercent(st.FlexBasis.Value)
	default:
		node.StyleSetFlexBasis(flex.Undefined)
	}

	setSize(st.Size.Width, node.StyleSetWidth, node.StyleSetWidthPercent, node.StyleSetWidthAuto)
	setSize(st.Size.Height, node.StyleSetHeight, node.StyleSetHeightPercent, node.StyleSetHeightAuto)
	setBound(st.MinSize.Width, node.StyleSetMinWidth, node.StyleSetMinWidthPercent)
	setBound(st.MinSize.Height, node.StyleSetMinHeight, node.StyleSetMinHeightPercent)
	setBound(st.MaxSize.Width, node.StyleSetMaxWidth, node.StyleSetMaxWidthPercent)
	setBound(st.MaxSize.Height, node.StyleSetMaxHeight, node.StyleSetMaxHeightPercent)

	for _, e := range []struct {
		edge                           flex.Edge
		margin, padding, border, inset Dimension
	}{
		{flex.EdgeLeft, st.Margin.Left, st.Padding.Left, st.Border.Left, st.Inset.Left},
		{flex.EdgeRight, st.Margin.Right, st.Padding.Right, st.Border.Right, st.Inset.Right},
		{flex.EdgeTop, st.Margin.Top, st.Padding.Top, st.Border.Top, st.Inset.Top},
		{flex.EdgeBottom, st.Margin.Bottom, st.Padding.Bottom, st.Border.Bottom, st.Inset.Bottom},
	} {
		switch e.margin.Unit {
		case UnitPoints:
			node.StyleSetMargin(e.edge, e.margin.Value)
		case UnitPercent:
			node.StyleSetMarginPercent(e.edge, e.margin.Value)
		case UnitAuto:
			node.StyleSetMarginAuto(e.edge)
		default:
			node.StyleSetMargin(e.edge, 0)
		}

		switch e.padding.Unit {
		case UnitPoints:
			node.StyleSetPadding(e.edge, e.padding.Value)
		case UnitPercent:
			node.StyleSetPaddingPercent(e.edge, e.padding.Value)
		default:
			node.StyleSetPadding(e.edge, 0)
		}

		if e.border.Unit == UnitPoints {
			node.StyleSetBorder(e.edge, e.border.Value)
		} else {
			node.StyleSetBorder(e.edge, 0)
		}

		switch e.inset.Unit {
		case UnitPoints:
			node.StyleSetPosition(e.edge, e.inset.Value)
		case UnitPercent:
			node.StyleSetPositionPercent(e.edge, e.inset.Value)
		default:
			node.StyleSetPosition(e.edge, flex.Undefined)
		}
	}
}

func setSize(d Dimension, points, percent func(float32), auto func()) {
	switch d.Unit {
	case UnitPoints:
		points(d.Value)
	case UnitPercent:
		percent(d.Value)
	default:
		auto()
	}
}

func setBound(d Dimension, points, percent func(float32)) {
	switch d.Unit {
	case UnitPoints:
		points(d.Value)
	case UnitPercent:
		percent(d.Value)
	default:
		points(flex.Undefined)
	}
}

func flexDirection(d FlexDirection) flex.FlexDirection {
	switch d {
	case FlexDirectionRowReverse:
		return flex.FlexDirectionRowReverse
	case FlexDirectionColumn:
		return flex.FlexDirectionColumn
	case FlexDirectionColumnReverse:
		return flex.FlexDirectionColumnReverse
	default:
		return flex.FlexDirectionRow
	}
}

func flexWrap(w FlexWrap) flex.Wrap {
	switch w {
	case Wrap:
		return flex.WrapWrap
	case WrapReverse:
		return flex.WrapWrapReverse
	default:
		return flex.WrapNoWrap
	}
}

// flexJustify maps space-evenly to space-around, the closest mode the flex
// library offers.
func flexJustify(j JustifyContent) flex.Justify {
	switch j {
	case JustifyFlexEnd:
		return flex.JustifyFlexEnd
	case JustifyCenter:
		return flex.JustifyCenter
	case JustifySpaceBetween:
		return flex.JustifySpaceBetween
	case JustifySpaceAround, JustifySpaceEvenly:
		return flex.JustifySpaceAround
	default:
		return flex.JustifyFlexStart
	}
}

func flexAlign(a Align, fallback flex.Align) flex.Align {
	switch a {
	case AlignAuto:
		return flex.AlignAuto
	case AlignStretch:
		return flex.AlignStretch
	case AlignFlexStart:
		return flex.AlignFlexStart
	case AlignFlexEnd:
		return flex.AlignFlexEnd
	case AlignCenter:
		return flex.AlignCenter
	case AlignBaseline:
		return flex.AlignBaseline
	case AlignSpaceBetween:
		return flex.AlignSpaceBetween
	case AlignSpaceAround, AlignSpaceEvenly:
		return flex.AlignSpaceAround
	default:
		return fallback
	}
}
