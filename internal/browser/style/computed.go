// internal/browser/style/computed.go
package style

import (
	"github.com/xkilldash9x/stylebox/internal/browser/units"
)

// Edges holds a four-sided length box in top, right, bottom, left order.
type Edges struct {
	Top, Right, Bottom, Left units.Length
}

// UniformEdges returns an Edges with the same length on every side.
func UniformEdges(l units.Length) Edges {
	return Edges{Top: l, Right: l, Bottom: l, Left: l}
}

// ComputedStyle is the typed cascade output for one element. Lengths stay
// unit-tagged; only FontSize and LineHeight are resolved to pixels. A
// ComputedStyle is never mutated after ComputeStyle returns it.
type ComputedStyle struct {
	Display   Display
	Position  Position
	BoxSizing BoxSizing

	Width, Height       units.Length
	MinWidth, MinHeight units.Length
	MaxWidth, MaxHeight units.Length

	Margin  Edges
	Padding Edges
	Border  Edges
	Inset   Edges

	FlexDirection  FlexDirection
	FlexWrap       FlexWrap
	JustifyContent JustifyContent
	AlignItems     AlignItems
	AlignSelf      AlignSelf
	AlignContent   AlignContent
	FlexGrow       float32
	FlexShrink     float32
	FlexBasis      units.Length

	RowGap    units.Length
	ColumnGap units.Length

	GridTemplateColumns []GridTrack
	GridTemplateRows    []GridTrack
	GridAutoFlow        GridAutoFlow
	GridRowStart        GridLine
	GridRowEnd          GridLine
	GridColumnStart     GridLine
	GridColumnEnd       GridLine

	Color      Color
	FontSize   float32
	FontWeight int
	LineHeight float32

	// Inherited carries the cascaded raw values of every inherited
	// property (font-family, text-align, visibility, ...).
	Inherited map[string]string
}

// Lookup returns a cascaded inherited property value.
func (cs *ComputedStyle) Lookup(property, fallback string) string {
	if cs == nil {
		return fallback
	}
	if v, ok := cs.Inherited[property]; ok {
		return v
	}
	return fallback
}

// IsVisible is false for display:none and hidden or collapsed visibility.
func (cs *ComputedStyle) IsVisible() bool {
	if cs.Display == DisplayNone {
		return false
	}
	switch cs.Lookup("visibility", "visible") {
	case "hidden", "collapse":
		return false
	}
	return true
}

// Clone returns a deep copy.
func (cs *ComputedStyle) Clone() *ComputedStyle {
	if cs == nil {
		return nil
	}
	c := *cs
	c.GridTemplateColumns = append([]GridTrack(nil), cs.GridTemplateColumns...)
	c.GridTemplateRows = append([]GridTrack(nil), cs.GridTemplateRows...)
	c.Inherited = make(map[string]string, len(cs.Inherited))
	for k, v := range cs.Inherited {
		c.Inherited[k] = v
	}
	return &c
}

// InitialStyle returns the style every property starts from before the
// cascade runs.
func InitialStyle() ComputedStyle {
	return ComputedStyle{
		Display:         DisplayInline,
		Position:        PositionStatic,
		BoxSizing:       ContentBox,
		Width:           units.Auto(),
		Height:          units.Auto(),
		MinWidth:        units.Auto(),
		MinHeight:       units.Auto(),
		MaxWidth:        units.Auto(),
		MaxHeight:       units.Auto(),
		Margin:          UniformEdges(units.Zero()),
		Padding:         UniformEdges(units.Zero()),
		Border:          UniformEdges(units.Zero()),
		Inset:           UniformEdges(units.Auto()),
		FlexDirection:   FlexDirectionRow,
		FlexWrap:        FlexNoWrap,
		JustifyContent:  JustifyFlexStart,
		AlignItems:      AlignItemsStretch,
		AlignSelf:       AlignSelfAuto,
		AlignContent:    AlignContentStretch,
		FlexGrow:        0,
		FlexShrink:      1,
		FlexBasis:       units.Auto(),
		RowGap:          units.Zero(),
		ColumnGap:       units.Zero(),
		GridAutoFlow:    GridAutoFlowRow,
		GridRowStart:    GridLine{IsAuto: true},
		GridRowEnd:      GridLine{IsAuto: true},
		GridColumnStart: GridLine{IsAuto: true},
		GridColumnEnd:   GridLine{IsAuto: true},
		Color:           Color{0, 0, 0, 255},
		FontSize:        units.DefaultRootFontSize,
		FontWeight:      400,
		LineHeight:      units.DefaultRootFontSize * DefaultLineHeight,
		Inherited:       map[string]string{},
	}
}

// DefaultLineHeight is the multiplier used for line-height: normal.
const DefaultLineHeight = 1.2

type Display int

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayListItem
	DisplayFlex
	DisplayInlineFlex
	DisplayGrid
	DisplayInlineGrid
	DisplayTable
	DisplayTableRow
	DisplayTableCell
	DisplayNone
)

func parseDisplay(v string) (Display, bool) {
	switch v {
	case "inline":
		return DisplayInline, true
	case "block":
		return DisplayBlock, true
	case "inline-block":
		return DisplayInlineBlock, true
	case "list-item":
		return DisplayListItem, true
	case "flex":
		return DisplayFlex, true
	case "inline-flex":
		return DisplayInlineFlex, true
	case "grid":
		return DisplayGrid, true
	case "inline-grid":
		return DisplayInlineGrid, true
	case "table":
		return DisplayTable, true
	case "table-row":
		return DisplayTableRow, true
	case "table-cell":
		return DisplayTableCell, true
	case "none":
		return DisplayNone, true
	default:
		return DisplayInline, false
	}
}

// DefaultDisplay is the display a tag gets when no rule sets one.
func DefaultDisplay(tag string) Display {
	switch tag {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "form", "header", "footer", "section", "article", "nav",
		"main", "aside", "blockquote", "pre", "figure", "figcaption", "dl",
		"dt", "dd", "fieldset", "address", "hr", "details", "summary":
		return DisplayBlock
	case "li":
		return DisplayListItem
	case "table":
		return DisplayTable
	case "tr":
		return DisplayTableRow
	case "td", "th":
		return DisplayTableCell
	case "input", "button", "textarea", "select", "img":
		return DisplayInlineBlock
	case "head", "script", "style", "meta", "link", "title", "template", "noscript", "base":
		return DisplayNone
	default:
		return DisplayInline
	}
}

type Position int

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
	PositionSticky
)

func parsePosition(v string) Position {
	switch v {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	case "sticky":
		return PositionSticky
	default:
		return PositionStatic
	}
}

type BoxSizing int

const (
	ContentBox BoxSizing = iota
	BorderBox
)

func parseBoxSizing(v string) BoxSizing {
	if v == "border-box" {
		return BorderBox
	}
	return ContentBox
}

type FlexDirection int

const (
	FlexDirectionRow FlexDirection = iota
	FlexDirectionRowReverse
	FlexDirectionColumn
	FlexDirectionColumnReverse
)

func parseFlexDirection(v string) FlexDirection {
	switch v {
	case "column":
		return FlexDirectionColumn
	case "row-reverse":
		return FlexDirectionRowReverse
	case "column-reverse":
		return FlexDirectionColumnReverse
	default:
		return FlexDirectionRow
	}
}

type FlexWrap int

const (
	FlexNoWrap FlexWrap = iota
	FlexWrapWrap
	FlexWrapReverse
)

func parseFlexWrap(v string) FlexWrap {
	switch v {
	case "wrap":
		return FlexWrapWrap
	case "wrap-reverse":
		return FlexWrapReverse
	default:
		return FlexNoWrap
	}
}

type JustifyContent int

const (
	JustifyFlexStart JustifyContent = iota
	JustifyFlexEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

func parseJustifyContent(v string) JustifyContent {
	switch v {
	case "flex-end", "end", "right":
		return JustifyFlexEnd
	case "center":
		return JustifyCenter
	case "space-between":
		return JustifySpaceBetween
	case "space-around":
		return JustifySpaceAround
	case "space-evenly":
		return JustifySpaceEvenly
	default:
		return JustifyFlexStart
	}
}

type AlignItems int

const (
	AlignItemsStretch AlignItems = iota
	AlignItemsFlexStart
	AlignItemsCenter
	AlignItemsFlexEnd
	AlignItemsBaseline
)

func parseAlignItems(v string) AlignItems {
	switch v {
	case "flex-start", "start", "self-start":
		return AlignItemsFlexStart
	case "center":
		return AlignItemsCenter
	case "flex-end", "end", "self-end":
		return AlignItemsFlexEnd
	case "baseline":
		return AlignItemsBaseline
	default:
		return AlignItemsStretch
	}
}

type AlignSelf int

const (
	AlignSelfAuto AlignSelf = iota
	AlignSelfStretch
	AlignSelfFlexStart
	AlignSelfCenter
	AlignSelfFlexEnd
	AlignSelfBaseline
)

func parseAlignSelf(v string) AlignSelf {
	switch v {
	case "stretch":
		return AlignSelfStretch
	case "flex-start", "start", "self-start":
		return AlignSelfFlexStart
	case "center":
		return AlignSelfCenter
	case "flex-end", "end", "self-end":
		return AlignSelfFlexEnd
	case "baseline":
		return AlignSelfBaseline
	default:
		return AlignSelfAuto
	}
}

type AlignContent int

const (
	AlignContentStretch AlignContent = iota
	AlignContentFlexStart
	AlignContentFlexEnd
	AlignContentCenter
	AlignContentSpaceBetween
	AlignContentSpaceAround
	AlignContentSpaceEvenly
)

func parseAlignContent(v string) AlignContent {
	switch v {
	case "flex-start", "start":
		return AlignContentFlexStart
	case "flex-end", "end":
		return AlignContentFlexEnd
	case "center":
		return AlignContentCenter
	case "space-between":
		return AlignContentSpaceBetween
	case "space-around":
		return AlignContentSpaceAround
	case "space-evenly":
		return AlignContentSpaceEvenly
	default:
		return AlignContentStretch
	}
}

type GridAutoFlow int

const (
	GridAutoFlowRow GridAutoFlow = iota
	GridAutoFlowColumn
	GridAutoFlowRowDense
	GridAutoFlowColumnDense
)

func parseGridAutoFlow(v string) GridAutoFlow {
	switch v {
	case "column":
		return GridAutoFlowColumn
	case "dense", "row dense", "dense row":
		return GridAutoFlowRowDense
	case "column dense", "dense column":
		return GridAutoFlowColumnDense
	default:
		return GridAutoFlowRow
	}
}
