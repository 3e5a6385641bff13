package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
)

func decl(prop, value string) Declaration {
	return Declaration{Property: prop, Value: value}
}

func important(prop, value string) Declaration {
	return Declaration{Property: prop, Value: value, Important: true}
}

func author(rules ...StyleRule) []RuleSet {
	return []RuleSet{{Origin: OriginAuthor, Rules: rules}}
}

func setupResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(zaptest.NewLogger(t))
}

var testViewport = units.NewViewport(1000, 800)

func targetElement() *dom.Element {
	return dom.NewElement(1, "p").WithID("target").WithClass("highlight")
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		selector string
		expected int
	}{
		{"*", 0},
		{"div", 3},
		{"p", 1},
		{".class", 10},
		{"#id", 100},
		{"div.class", 13},
		{"p#x.a.b", 121},
		{"a[href]", 11},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.expected, Specificity(tt.selector))
		})
	}

	assert.Greater(t, Specificity("#id"), Specificity(".class"))
	assert.Greater(t, Specificity(".class"), Specificity("tag"))
	assert.Greater(t, Specificity("tag.class"), Specificity("tag"))
}

func TestMatches(t *testing.T) {
	el := dom.NewElement(1, "DIV").WithID("main").WithClass("a", "b")

	tests := []struct {
		selector string
		match    bool
	}{
		{"*", true},
		{"div", true},
		{"DIV", true},
		{"span", false},
		{"#main", true},
		{"#other", false},
		{".a", true},
		{".a.b", true},
		{".a.c", false},
		{"div.a", true},
		{"div#main.b", true},
		{"span.a", false},
		{"div > p", false},
		{"div p", false},
		{"div:hover", false},
		{"div[title]", false},
		{"", false},
		{".", false},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.match, Matches(tt.selector, el))
		})
	}
}

func TestCascade_SpecificityOrdering(t *testing.T) {
	r := setupResolver(t)
	el := targetElement()

	// Declared most specific first so source order alone would pick "tag".
	sets := author(
		NewStyleRule("#target", decl("color", "red")),
		NewStyleRule("p.highlight", decl("color", "green")),
		NewStyleRule("p", decl("color", "blue")),
	)
	cs := r.ComputeStyle(el, sets, nil, testViewport)
	assert.Equal(t, Color{255, 0, 0, 255}, cs.Color)

	sets = author(
		NewStyleRule("p.highlight", decl("width", "20px")),
		NewStyleRule("p", decl("width", "10px")),
	)
	cs = r.ComputeStyle(el, sets, nil, testViewport)
	assert.Equal(t, units.Px(20), cs.Width)
}

func TestCascade_SourceOrderBreaksTies(t *testing.T) {
	r := setupResolver(t)
	sets := author(
		NewStyleRule(".highlight", decl("width", "10px")),
		NewStyleRule(".highlight", decl("width", "30px")),
	)
	cs := r.ComputeStyle(targetElement(), sets, nil, testViewport)
	assert.Equal(t, units.Px(30), cs.Width)
}

func TestCascade_Important(t *testing.T) {
	r := setupResolver(t)
	body := dom.NewElement(1, "body").WithID("page")

	t.Run("important beats higher specificity", func(t *testing.T) {
		sets := author(
			NewStyleRule("#page", decl("color", "red")),
			NewStyleRule("body", important("color", "blue")),
		)
		cs := r.ComputeStyle(body, sets, nil, testViewport)
		assert.Equal(t, Color{0, 0, 255, 255}, cs.Color)
	})

	t.Run("important beats later normal declaration", func(t *testing.T) {
		sets := author(
			NewStyleRule("body", important("color", "blue")),
			NewStyleRule("body", decl("color", "red")),
		)
		cs := r.ComputeStyle(body, sets, nil, testViewport)
		assert.Equal(t, Color{0, 0, 255, 255}, cs.Color)
	})

	t.Run("important from lower origin still wins over normal author", func(t *testing.T) {
		sets := []RuleSet{
			{Origin: OriginUserAgent, Rules: []StyleRule{NewStyleRule("body", important("width", "5px"))}},
			{Origin: OriginAuthor, Rules: []StyleRule{NewStyleRule("#page", decl("width", "50px"))}},
		}
		cs := r.ComputeStyle(body, sets, nil, testViewport)
		assert.Equal(t, units.Px(5), cs.Width)
	})

	t.Run("origin breaks ties between important declarations", func(t *testing.T) {
		sets := []RuleSet{
			{Origin: OriginAuthor, Rules: []StyleRule{NewStyleRule("body", important("width", "50px"))}},
			{Origin: OriginUserAgent, Rules: []StyleRule{NewStyleRule("#page", important("width", "5px"))}},
		}
		cs := r.ComputeStyle(body, sets, nil, testViewport)
		assert.Equal(t, units.Px(50), cs.Width)
	})
}

func TestCascade_OriginRank(t *testing.T) {
	r := setupResolver(t)
	el := dom.NewElement(1, "div")
	sets := []RuleSet{
		{Origin: OriginAuthor, Rules: []StyleRule{NewStyleRule("div", decl("height", "30px"))}},
		{Origin: OriginUser, Rules: []StyleRule{NewStyleRule("div", decl("height", "20px"))}},
		{Origin: OriginUserAgent, Rules: []StyleRule{NewStyleRule("div", decl("height", "10px"))}},
	}
	cs := r.ComputeStyle(el, sets, nil, testViewport)
	assert.Equal(t, units.Px(30), cs.Height, "author origin outranks user and user-agent")
}

func TestCascade_Inheritance(t *testing.T) {
	r := setupResolver(t)
	parentEl := dom.NewElement(1, "div").WithClass("parent")
	childEl := dom.NewElement(2, "span")

	sets := author(NewStyleRule(".parent",
		decl("color", "red"),
		decl("font-family", "serif"),
		decl("text-align", "center"),
		decl("visibility", "hidden"),
		decl("width", "100px"),
		decl("margin", "10px"),
	))

	parent := r.ComputeStyle(parentEl, sets, nil, testViewport)
	child := r.ComputeStyle(childEl, sets, &parent, testViewport)

	assert.Equal(t, parent.Color, child.Color)
	assert.Equal(t, "serif", child.Lookup("font-family", ""))
	assert.Equal(t, "center", child.Lookup("text-align", ""))
	assert.False(t, child.IsVisible())

	// Non-inherited properties take their initial values.
	assert.True(t, child.Width.IsAuto())
	assert.Equal(t, UniformEdges(units.Zero()), child.Margin)
}

func TestCascade_ExplicitKeywords(t *testing.T) {
	r := setupResolver(t)
	parentEl := dom.NewElement(1, "div").WithClass("parent")
	sets := author(
		NewStyleRule(".parent", decl("width", "100px"), decl("color", "red")),
		NewStyleRule(".inherit", decl("width", "inherit")),
		NewStyleRule(".initial", decl("color", "initial")),
		NewStyleRule(".unset", decl("color", "unset"), decl("width", "unset")),
	)
	parent := r.ComputeStyle(parentEl, sets, nil, testViewport)

	inh := r.ComputeStyle(dom.NewElement(2, "div").WithClass("inherit"), sets, &parent, testViewport)
	assert.Equal(t, units.Px(100), inh.Width)

	ini := r.ComputeStyle(dom.NewElement(3, "div").WithClass("initial"), sets, &parent, testViewport)
	assert.Equal(t, Color{0, 0, 0, 255}, ini.Color)

	uns := r.ComputeStyle(dom.NewElement(4, "div").WithClass("unset"), sets, &parent, testViewport)
	assert.Equal(t, Color{255, 0, 0, 255}, uns.Color, "unset on an inherited property inherits")
	assert.True(t, uns.Width.IsAuto(), "unset on a non-inherited property resets")
}

func TestCascade_KeywordsIgnoreCase(t *testing.T) {
	r := setupResolver(t)
	sets := author(
		NewStyleRule(".parent", decl("width", "100px"), decl("color", "red"), decl("display", "flex")),
		NewStyleRule(".child", decl("width", "INHERIT"), decl("color", "Initial"), decl("display", "Inherit")),
		NewStyleRule(".unset", decl("display", "UNSET"), decl("height", " Initial ")),
	)
	parent := r.ComputeStyle(dom.NewElement(1, "div").WithClass("parent"), sets, nil, testViewport)

	child := r.ComputeStyle(dom.NewElement(2, "span").WithClass("child"), sets, &parent, testViewport)
	assert.Equal(t, units.Px(100), child.Width)
	assert.Equal(t, Color{0, 0, 0, 255}, child.Color)
	assert.Equal(t, DisplayFlex, child.Display)

	uns := r.ComputeStyle(dom.NewElement(3, "li").WithClass("unset"), sets, &parent, testViewport)
	assert.Equal(t, DisplayListItem, uns.Display, "unset display is the tag default")
	assert.True(t, uns.Height.IsAuto())
}

func TestCascade_DisplayDefaults(t *testing.T) {
	r := setupResolver(t)
	tests := []struct {
		tag      string
		expected Display
	}{
		{"div", DisplayBlock},
		{"span", DisplayInline},
		{"li", DisplayListItem},
		{"table", DisplayTable},
		{"td", DisplayTableCell},
		{"button", DisplayInlineBlock},
		{"custom-element", DisplayInline},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			cs := r.ComputeStyle(dom.NewElement(1, tt.tag), nil, nil, testViewport)
			assert.Equal(t, tt.expected, cs.Display)
		})
	}

	sets := author(NewStyleRule("div", decl("display", "bogus")))
	cs := r.ComputeStyle(dom.NewElement(1, "div"), sets, nil, testViewport)
	assert.Equal(t, DisplayBlock, cs.Display, "unknown values fall back to the tag default")
}

func TestCascade_ShorthandSpacing(t *testing.T) {
	r := setupResolver(t)
	tests := []struct {
		value    string
		expected Edges
	}{
		{"5px", UniformEdges(units.Px(5))},
		{"1px 2px", Edges{units.Px(1), units.Px(2), units.Px(1), units.Px(2)}},
		{"1px 2px 3px", Edges{units.Px(1), units.Px(2), units.Px(3), units.Px(2)}},
		{"1px 2px 3px 4px", Edges{units.Px(1), units.Px(2), units.Px(3), units.Px(4)}},
		{"1em auto", Edges{units.Em(1), units.Auto(), units.Em(1), units.Auto()}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			sets := author(NewStyleRule("div", decl("margin", tt.value), decl("padding", tt.value)))
			cs := r.ComputeStyle(dom.NewElement(1, "div"), sets, nil, testViewport)
			assert.Equal(t, tt.expected, cs.Margin)
			assert.Equal(t, tt.expected, cs.Padding)
		})
	}
}

func TestCascade_ShorthandLonghandOrder(t *testing.T) {
	r := setupResolver(t)
	el := dom.NewElement(1, "div")

	sets := author(NewStyleRule("div", decl("margin", "10px"), decl("margin-left", "20px")))
	cs := r.ComputeStyle(el, sets, nil, testViewport)
	assert.Equal(t, units.Px(10), cs.Margin.Top)
	assert.Equal(t, units.Px(20), cs.Margin.Left)

	sets = author(NewStyleRule("div", decl("margin-left", "20px"), decl("margin", "10px")))
	cs = r.ComputeStyle(el, sets, nil, testViewport)
	assert.Equal(t, units.Px(10), cs.Margin.Left)
}

func TestCascade_OtherShorthands(t *testing.T) {
	r := setupResolver(t)
	el := dom.NewElement(1, "div")

	t.Run("flex", func(t *testing.T) {
		for value, want := range map[string][3]any{
			"1":         {float32(1), float32(1), units.Zero()},
			"none":      {float32(0), float32(0), units.Auto()},
			"auto":      {float32(1), float32(1), units.Auto()},
			"2 3 10px":  {float32(2), float32(3), units.Px(10)},
			"100px":     {float32(1), float32(1), units.Px(100)},
			"2 50%":     {float32(2), float32(1), units.Percent(50)},
		} {
			cs := r.ComputeStyle(el, author(NewStyleRule("div", decl("flex", value))), nil, testViewport)
			assert.Equal(t, want[0], cs.FlexGrow, value)
			assert.Equal(t, want[1], cs.FlexShrink, value)
			assert.Equal(t, want[2], cs.FlexBasis, value)
		}
	})

	t.Run("border and inset", func(t *testing.T) {
		sets := author(NewStyleRule("div", decl("border", "2px solid red"), decl("inset", "1px 2px")))
		cs := r.ComputeStyle(el, sets, nil, testViewport)
		assert.Equal(t, UniformEdges(units.Px(2)), cs.Border)
		assert.Equal(t, Edges{units.Px(1), units.Px(2), units.Px(1), units.Px(2)}, cs.Inset)

		sets = author(NewStyleRule("div", decl("border-width", "thin thick")))
		cs = r.ComputeStyle(el, sets, nil, testViewport)
		assert.Equal(t, units.Px(1), cs.Border.Top)
		assert.Equal(t, units.Px(5), cs.Border.Right)
	})

	t.Run("gap", func(t *testing.T) {
		cs := r.ComputeStyle(el, author(NewStyleRule("div", decl("gap", "4px 8px"))), nil, testViewport)
		assert.Equal(t, units.Px(4), cs.RowGap)
		assert.Equal(t, units.Px(8), cs.ColumnGap)
	})

	t.Run("grid placement", func(t *testing.T) {
		sets := author(NewStyleRule("div", decl("grid-row", "1 / span 2"), decl("grid-column", "sidebar")))
		cs := r.ComputeStyle(el, sets, nil, testViewport)
		assert.Equal(t, GridLine{Line: 1}, cs.GridRowStart)
		assert.Equal(t, GridLine{Span: 2}, cs.GridRowEnd)
		assert.Equal(t, GridLine{Name: "sidebar"}, cs.GridColumnStart)
		assert.Equal(t, GridLine{Name: "sidebar"}, cs.GridColumnEnd)

		sets = author(NewStyleRule("div", decl("grid-area", "2 / 3 / 4 / 5")))
		cs = r.ComputeStyle(el, sets, nil, testViewport)
		assert.Equal(t, GridLine{Line: 2}, cs.GridRowStart)
		assert.Equal(t, GridLine{Line: 3}, cs.GridColumnStart)
		assert.Equal(t, GridLine{Line: 4}, cs.GridRowEnd)
		assert.Equal(t, GridLine{Line: 5}, cs.GridColumnEnd)
	})

	t.Run("place-items", func(t *testing.T) {
		cs := r.ComputeStyle(el, author(NewStyleRule("div", decl("place-items", "center"))), nil, testViewport)
		assert.Equal(t, AlignItemsCenter, cs.AlignItems)
	})
}

func TestCascade_FontSize(t *testing.T) {
	r := setupResolver(t)
	parentEl := dom.NewElement(1, "div").WithClass("p")
	sets := author(NewStyleRule(".p", decl("font-size", "20px")))
	parent := r.ComputeStyle(parentEl, sets, nil, testViewport)
	require.Equal(t, float32(20), parent.FontSize)

	tests := []struct {
		value    string
		expected float32
	}{
		{"2em", 40},
		{"50%", 10},
		{"2rem", 32},
		{"10vw", 100},
		{"large", 18},
		{"larger", 24},
		{"12pt", 16},
		{"garbage", 20},
		{"-5px", 20},
		{"infpx", 20},
		{"nanpx", 20},
		{"1e38em", 20},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			sets := author(NewStyleRule(".c", decl("font-size", tt.value)))
			cs := r.ComputeStyle(dom.NewElement(2, "span").WithClass("c"), sets, &parent, testViewport)
			assert.InDelta(t, tt.expected, cs.FontSize, 0.01)
		})
	}

	t.Run("root uses viewport root font size", func(t *testing.T) {
		vp := testViewport
		vp.RootFontSize = 10
		cs := r.ComputeStyle(dom.NewElement(1, "div"), nil, nil, vp)
		assert.Equal(t, float32(10), cs.FontSize)
	})
}

func TestCascade_LineHeight(t *testing.T) {
	r := setupResolver(t)
	sets := author(
		NewStyleRule(".factor", decl("font-size", "10px"), decl("line-height", "1.5")),
		NewStyleRule(".fixed", decl("font-size", "10px"), decl("line-height", "2em")),
		NewStyleRule(".big", decl("font-size", "20px")),
	)

	parent := r.ComputeStyle(dom.NewElement(1, "div").WithClass("factor"), sets, nil, testViewport)
	assert.InDelta(t, 15, parent.LineHeight, 0.01)
	child := r.ComputeStyle(dom.NewElement(2, "div").WithClass("big"), sets, &parent, testViewport)
	assert.InDelta(t, 30, child.LineHeight, 0.01, "unitless line-height inherits as a factor")

	parent = r.ComputeStyle(dom.NewElement(1, "div").WithClass("fixed"), sets, nil, testViewport)
	assert.InDelta(t, 20, parent.LineHeight, 0.01)
	child = r.ComputeStyle(dom.NewElement(2, "div").WithClass("big"), sets, &parent, testViewport)
	assert.InDelta(t, 20, child.LineHeight, 0.01, "length line-height inherits as computed px")

	plain := r.ComputeStyle(dom.NewElement(1, "div"), nil, nil, testViewport)
	assert.InDelta(t, 16*DefaultLineHeight, plain.LineHeight, 0.01)
}

func TestCascade_UnparseableLengthDegradesToZero(t *testing.T) {
	r := setupResolver(t)
	sets := author(NewStyleRule("div", decl("width", "wide"), decl("padding-top", "12qq")))
	cs := r.ComputeStyle(dom.NewElement(1, "div"), sets, nil, testViewport)
	assert.Equal(t, units.Zero(), cs.Width)
	assert.Equal(t, units.Zero(), cs.Padding.Top)
}

func TestCascade_NegativeLengthsUseInitial(t *testing.T) {
	r := setupResolver(t)
	sets := author(NewStyleRule("div",
		decl("width", "-10px"),
		decl("height", "-1em"),
		decl("min-width", "-5px"),
		decl("max-height", "-1%"),
		decl("padding-left", "-4px"),
		decl("border-top-width", "-2px"),
		decl("flex-basis", "-20px"),
		decl("row-gap", "-3px"),
		decl("flex-grow", "inf"),
		decl("flex-shrink", "-1"),
		decl("margin-top", "-8px"),
		decl("left", "-6px"),
	))
	cs := r.ComputeStyle(dom.NewElement(1, "div"), sets, nil, testViewport)
	initial := InitialStyle()

	assert.Equal(t, initial.Width, cs.Width)
	assert.Equal(t, initial.Height, cs.Height)
	assert.Equal(t, initial.MinWidth, cs.MinWidth)
	assert.Equal(t, initial.MaxHeight, cs.MaxHeight)
	assert.Equal(t, initial.Padding.Left, cs.Padding.Left)
	assert.Equal(t, initial.Border.Top, cs.Border.Top)
	assert.Equal(t, initial.FlexBasis, cs.FlexBasis)
	assert.Equal(t, initial.RowGap, cs.RowGap)
	assert.Equal(t, initial.FlexGrow, cs.FlexGrow)
	assert.Equal(t, initial.FlexShrink, cs.FlexShrink)

	// Margins and insets may be negative.
	assert.Equal(t, units.Px(-8), cs.Margin.Top)
	assert.Equal(t, units.Px(-6), cs.Inset.Left)
}

func TestCascade_NonFiniteLengths(t *testing.T) {
	r := setupResolver(t)
	sets := author(NewStyleRule("div",
		decl("width", "infpx"),
		decl("height", "nanpx"),
		decl("line-height", "inf"),
	))
	cs := r.ComputeStyle(dom.NewElement(1, "div"), sets, nil, testViewport)
	assert.Equal(t, units.Zero(), cs.Width)
	assert.Equal(t, units.Zero(), cs.Height)
	assert.InDelta(t, 16*DefaultLineHeight, cs.LineHeight, 0.01)

	for _, v := range []string{"-2", "-1px", "1e38em", "NaN"} {
		t.Run("line-height "+v, func(t *testing.T) {
			sets := author(NewStyleRule("div", decl("line-height", v)))
			cs := r.ComputeStyle(dom.NewElement(1, "div"), sets, nil, testViewport)
			assert.InDelta(t, 16*DefaultLineHeight, cs.LineHeight, 0.01)
		})
	}
}

func TestCascade_MaxNoneIsAuto(t *testing.T) {
	r := setupResolver(t)
	sets := author(NewStyleRule("div", decl("max-width", "none"), decl("min-height", "50%")))
	cs := r.ComputeStyle(dom.NewElement(1, "div"), sets, nil, testViewport)
	assert.True(t, cs.MaxWidth.IsAuto())
	assert.Equal(t, units.Percent(50), cs.MinHeight)
}

func TestComputeTree(t *testing.T) {
	r := setupResolver(t)
	root := dom.NewElement(1, "div").WithClass("root").Append(
		dom.NewElement(2, "script"),
		dom.NewElement(3, "div").WithClass("hidden").Append(dom.NewElement(4, "span")),
		dom.NewElement(5, "span").WithText("x"),
	)
	sets := author(
		NewStyleRule(".root", decl("color", "red")),
		NewStyleRule(".hidden", decl("display", "none")),
	)

	styles := r.ComputeTree(root, sets, testViewport, func(n dom.Node) bool { return n.Tag() == "script" })
	require.Len(t, styles, 3)
	assert.Contains(t, styles, dom.NodeID(1))
	assert.Contains(t, styles, dom.NodeID(3))
	assert.Contains(t, styles, dom.NodeID(5))
	assert.Equal(t, DisplayNone, styles[3].Display)
	assert.Equal(t, Color{255, 0, 0, 255}, styles[5].Color)
}

func TestComputedStyle_Clone(t *testing.T) {
	cs := InitialStyle()
	cs.Inherited["font-family"] = "serif"
	cs.GridTemplateColumns = []GridTrack{{Size: "1fr"}}

	c := cs.Clone()
	c.Inherited["font-family"] = "mono"
	c.GridTemplateColumns[0].Size = "2fr"

	assert.Equal(t, "serif", cs.Inherited["font-family"])
	assert.Equal(t, "1fr", cs.GridTemplateColumns[0].Size)
	assert.Nil(t, (*ComputedStyle)(nil).Clone())
}
