// internal/browser/boxsolver/style.go
package boxsolver

import "math"

// DimensionUnit tags how a Dimension is measured.
type DimensionUnit int

const (
	UnitUndefined DimensionUnit = iota
	UnitPoints
	UnitPercent
	UnitAuto
)

// Dimension is a solver-native length: absolute points, a percentage of the
// containing block, auto, or undefined (no constraint).
type Dimension struct {
	Value float32
	Unit  DimensionUnit
}

func Points(v float32) Dimension  { return Dimension{Value: v, Unit: UnitPoints} }
func Percent(v float32) Dimension { return Dimension{Value: v, Unit: UnitPercent} }
func Auto() Dimension             { return Dimension{Unit: UnitAuto} }
func Undefined() Dimension        { return Dimension{Unit: UnitUndefined} }

func (d Dimension) valid() bool {
	if d.Unit != UnitPoints && d.Unit != UnitPercent {
		return true
	}
	v := float64(d.Value)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Edges is a four-sided set of dimensions.
type Edges struct {
	Left, Right, Top, Bottom Dimension
}

func UniformEdges(d Dimension) Edges {
	return Edges{Left: d, Right: d, Top: d, Bottom: d}
}

// DimensionSize pairs a width and a height constraint.
type DimensionSize struct {
	Width, Height Dimension
}

// Size is a concrete available space. Non-positive or non-finite values
// mean unbounded along that axis.
type Size struct {
	Width, Height float32
}

// Rect is a solved box relative to its parent's border box.
type Rect struct {
	X, Y, Width, Height float32
}

type Display int

const (
	DisplayFlex Display = iota
	DisplayBlock
	DisplayGrid
	DisplayNone
)

type Position int

const (
	PositionRelative Position = iota
	PositionAbsolute
)

type FlexDirection int

const (
	FlexDirectionRow FlexDirection = iota
	FlexDirectionRowReverse
	FlexDirectionColumn
	FlexDirectionColumnReverse
)

type FlexWrap int

const (
	NoWrap FlexWrap = iota
	Wrap
	WrapReverse
)

type JustifyContent int

const (
	JustifyFlexStart JustifyContent = iota
	JustifyFlexEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// Align covers align-items, align-self and align-content.
type Align int

const (
	AlignAuto Align = iota
	AlignStretch
	AlignFlexStart
	AlignFlexEnd
	AlignCenter
	AlignBaseline
	AlignSpaceBetween
	AlignSpaceAround
	AlignSpaceEvenly
)

// TrackKind tags a grid track sizing function.
type TrackKind int

const (
	TrackAuto TrackKind = iota
	TrackPoints
	TrackPercent
	TrackFraction
	TrackMinContent
	TrackMaxContent
)

type TrackSizing struct {
	Kind  TrackKind
	Value float32
}

type GridAutoFlow int

const (
	GridAutoFlowRow GridAutoFlow = iota
	GridAutoFlowColumn
	GridAutoFlowRowDense
	GridAutoFlowColumnDense
)

// PlacementKind tags a grid line placement.
type PlacementKind int

const (
	PlacementAuto PlacementKind = iota
	PlacementLine
	PlacementSpan
	PlacementNamed
	PlacementNamedSpan
)

type GridPlacement struct {
	Kind PlacementKind
	Line int
	Span int
	Name string
}

// GridLine is the start/end placement along one grid axis.
type GridLine struct {
	Start, End GridPlacement
}

// Style is the solver's native style record.
type Style struct {
	Display  Display
	Position Position
	Inset    Edges

	Size    DimensionSize
	MinSize DimensionSize
	MaxSize DimensionSize

	Margin  Edges
	Padding Edges
	Border  Edges

	FlexDirection  FlexDirection
	FlexWrap       FlexWrap
	JustifyContent JustifyContent
	AlignItems     Align
	AlignSelf      Align
	AlignContent   Align
	FlexGrow       float32
	FlexShrink     float32
	FlexBasis      Dimension

	// Gap is column gap (Width) and row gap (Height).
	Gap DimensionSize

	GridTemplateColumns []TrackSizing
	GridTemplateRows    []TrackSizing
	GridAutoFlow        GridAutoFlow
	GridRow             GridLine
	GridColumn          GridLine
}

// DefaultStyle mirrors the CSS initial values for a flex-capable box.
func DefaultStyle() Style {
	return Style{
		Display:        DisplayFlex,
		Position:       PositionRelative,
		Inset:          UniformEdges(Auto()),
		Size:           DimensionSize{Width: Auto(), Height: Auto()},
		MinSize:        DimensionSize{Width: Auto(), Height: Auto()},
		MaxSize:        DimensionSize{Width: Auto(), Height: Auto()},
		Margin:         UniformEdges(Points(0)),
		Padding:        UniformEdges(Points(0)),
		Border:         UniformEdges(Points(0)),
		FlexDirection:  FlexDirectionRow,
		FlexWrap:       NoWrap,
		JustifyContent: JustifyFlexStart,
		AlignItems:     AlignStretch,
		AlignSelf:      AlignAuto,
		AlignContent:   AlignStretch,
		FlexGrow:       0,
		FlexShrink:     1,
		FlexBasis:      Auto(),
		Gap:            DimensionSize{Width: Points(0), Height: Points(0)},
	}
}

// Validate rejects non-finite dimensions and negative sizes.
func (s *Style) Validate() error {
	dims := []struct {
		name string
		d    Dimension
	}{
		{"width", s.Size.Width}, {"height", s.Size.Height},
		{"min-width", s.MinSize.Width}, {"min-height", s.MinSize.Height},
		{"max-width", s.MaxSize.Width}, {"max-height", s.MaxSize.Height},
		{"flex-basis", s.FlexBasis},
		{"margin-left", s.Margin.Left}, {"margin-right", s.Margin.Right},
		{"margin-top", s.Margin.Top}, {"margin-bottom", s.Margin.Bottom},
		{"padding-left", s.Padding.Left}, {"padding-right", s.Padding.Right},
		{"padding-top", s.Padding.Top}, {"padding-bottom", s.Padding.Bottom},
		{"border-left", s.Border.Left}, {"border-right", s.Border.Right},
		{"border-top", s.Border.Top}, {"border-bottom", s.Border.Bottom},
		{"left", s.Inset.Left}, {"right", s.Inset.Right},
		{"top", s.Inset.Top}, {"bottom", s.Inset.Bottom},
	}
	for _, dim := range dims {
		if !dim.d.valid() {
			return &InvalidStyleError{Property: dim.name, Reason: "non-finite value"}
		}
	}
	for _, dim := range dims[:6] {
		if dim.d.Unit == UnitPoints && dim.d.Value < 0 {
			return &InvalidStyleError{Property: dim.name, Reason: "negative size"}
		}
	}
	for _, f := range []float32{s.FlexGrow, s.FlexShrink} {
		if math.IsNaN(float64(f)) || f < 0 {
			return &InvalidStyleError{Property: "flex", Reason: "invalid flex factor"}
		}
	}
	return nil
}
