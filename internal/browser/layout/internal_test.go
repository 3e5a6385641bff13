// internal/browser/layout/internal_test.go
package layout

import (
	"math"
	"testing"
	"time"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/browser/boxsolver"
	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/style"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
	"github.com/xkilldash9x/stylebox/internal/config"
)

func TestMeasureText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		fontSize   float32
		lineHeight float32
		wantW      float32
		wantH      float32
	}{
		{"empty", "", 16, 19.2, 0, 0},
		{"table glyphs", "ab", 10, 12, 11.2, 12},
		{"narrow fallback", "¿", 10, 12, 3, 12},
		{"wide rune", "漢字", 10, 12, 16, 12},
		{"fullwidth latin", "Ａ", 20, 24, 16, 24},
		{"default bucket", "ж", 10, 12, 5, 12},
		{"longest line wins", "i\nmm\nl", 10, 12, 16.6, 36},
		{"combining mark has no width", "e\u0301", 10, 12, 5.6, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := measureText(tt.text, tt.fontSize, tt.lineHeight)
			assert.InDelta(t, tt.wantW, w, 0.001)
			assert.InDelta(t, tt.wantH, h, 0.001)
		})
	}
}

func TestResultCache(t *testing.T) {
	c := newResultCache(4)
	now := time.Unix(0, 0)
	for k := uint64(1); k <= 4; k++ {
		assert.Zero(t, c.put(k, &Result{Rects: map[dom.NodeID]Rect{1: {Width: float32(k)}}}, k, k, now))
	}

	got, ok := c.get(1)
	require.True(t, ok)
	got.Rects[1] = Rect{Width: 99}
	again, _ := c.get(1)
	assert.Equal(t, float32(1), again.Rects[1].Width, "get returns copies")

	// At capacity 4 the quarter is one entry: key 2 is now the oldest.
	assert.Equal(t, 1, c.put(5, &Result{}, 5, 5, now))
	_, ok = c.get(2)
	assert.False(t, ok)
	assert.Equal(t, 4, c.len())

	// Overwriting an existing key never evicts.
	assert.Zero(t, c.put(5, &Result{}, 5, 5, now))
	assert.Equal(t, 4, c.len())
	assert.Equal(t, uint64(3), c.entries[1].accesses)

	c.clear()
	assert.Zero(t, c.len())
}

func TestResultCache_MinimumCapacity(t *testing.T) {
	c := newResultCache(0)
	c.put(1, &Result{}, 0, 0, time.Time{})
	c.put(2, &Result{}, 0, 0, time.Time{})
	assert.Equal(t, 1, c.len())
	_, ok := c.get(2)
	assert.True(t, ok)
}

func TestDirtyTracker(t *testing.T) {
	d := newDirtyTracker()
	assert.True(t, d.empty())

	d.markNode(7, "width")
	d.markNode(7, "height")
	d.markRegion(Rect{X: 0, Y: 0, Width: 10, Height: 10})
	assert.False(t, d.empty())
	assert.Equal(t, []string{"width", "height"}, d.props[7])

	prev := map[dom.NodeID]Rect{
		1: {X: 0, Y: 0, Width: 100, Height: 100},
		2: {X: 50, Y: 50, Width: 10, Height: 10},
		3: {X: 10, Y: 0, Width: 5, Height: 5},
	}
	assert.Equal(t, []dom.NodeID{1, 7}, d.resolve(prev), "edge-touching rects do not intersect")

	d.clear()
	assert.True(t, d.empty())
	assert.Empty(t, d.resolve(prev))
}

func TestHashes(t *testing.T) {
	tree := func(class, text string) dom.Node {
		return dom.NewElement(1, "div").Append(
			dom.NewElement(2, "p").WithClass(class).WithText(text),
		)
	}
	base := hashDOM(tree("a", "hello"))
	assert.Equal(t, base, hashDOM(tree("a", "hello")))
	assert.NotEqual(t, base, hashDOM(tree("b", "hello")))
	assert.NotEqual(t, base, hashDOM(tree("a", "hellO")))
	assert.Zero(t, hashDOM(nil))

	sets := func(v string) []style.RuleSet {
		return []style.RuleSet{{Origin: style.OriginAuthor, Rules: []style.StyleRule{
			style.NewStyleRule("p", style.Declaration{Property: "width", Value: v}),
		}}}
	}
	assert.Equal(t, hashRuleSets(sets("1px")), hashRuleSets(sets("1px")))
	assert.NotEqual(t, hashRuleSets(sets("1px")), hashRuleSets(sets("2px")))

	vp := units.NewViewport(800, 600)
	k := cacheKey(base, 1, vp)
	frac := vp
	frac.Width = 800.4
	assert.Equal(t, k, cacheKey(base, 1, frac), "sizes are keyed as whole pixels")
	dpr := vp
	dpr.DevicePixelRatio = 2
	assert.NotEqual(t, k, cacheKey(base, 1, dpr))
	font := vp
	font.RootFontSize = 18
	assert.NotEqual(t, k, cacheKey(base, 1, font))
}

func TestHashDOM_SamplesChildren(t *testing.T) {
	wide := func(lastTag string) dom.Node {
		root := dom.NewElement(1, "div")
		for i := 0; i < maxHashChildren+5; i++ {
			tag := "span"
			if i == maxHashChildren+4 {
				tag = lastTag
			}
			root.Append(dom.NewElement(dom.NodeID(i+2), tag))
		}
		return root
	}
	// Children past the sample only show up through text and child count.
	assert.Equal(t, hashDOM(wide("span")), hashDOM(wide("b")))
}

func TestConvertStyle(t *testing.T) {
	vp := units.NewViewport(800, 600)
	cs := style.InitialStyle()
	cs.Display = style.DisplayGrid
	cs.Position = style.PositionRelative
	cs.Inset.Left = units.Px(4)
	cs.Margin.Left = units.Auto()
	cs.Padding = style.UniformEdges(units.Px(-3))
	cs.ColumnGap = units.Em(1)
	cs.GridTemplateColumns = []style.GridTrack{{Size: "1fr"}, {Size: "100px"}, {Size: "25%"}, {Size: "minmax(10px, 1fr)"}}
	cs.GridRowStart = style.GridLine{Span: 2}
	cs.GridColumnStart = style.GridLine{Name: "main"}

	n := dom.NewElement(1, "div")
	st := convertStyle(n, &cs, map[dom.NodeID]*style.ComputedStyle{1: &cs}, nil, nil, vp)

	assert.Equal(t, boxsolver.DisplayGrid, st.Display)
	assert.Equal(t, boxsolver.Points(4), st.Inset.Left)
	assert.Equal(t, boxsolver.Auto(), st.Inset.Top)
	assert.Equal(t, boxsolver.Auto(), st.Margin.Left)
	assert.Equal(t, boxsolver.Points(0), st.Padding.Top, "negative padding clamps to zero")
	assert.Equal(t, boxsolver.Points(16), st.Gap.Width)
	assert.Equal(t, []boxsolver.TrackSizing{
		{Kind: boxsolver.TrackFraction, Value: 1},
		{Kind: boxsolver.TrackPoints, Value: 100},
		{Kind: boxsolver.TrackPercent, Value: 25},
		{Kind: boxsolver.TrackAuto},
	}, st.GridTemplateColumns)
	assert.Equal(t, boxsolver.GridPlacement{Kind: boxsolver.PlacementSpan, Span: 2}, st.GridRow.Start)
	assert.Equal(t, boxsolver.GridPlacement{Kind: boxsolver.PlacementNamed, Name: "main"}, st.GridColumn.Start)
	assert.Equal(t, boxsolver.GridPlacement{Kind: boxsolver.PlacementAuto}, st.GridColumn.End)
	assert.NoError(t, st.Validate())
}

func TestConvertStyle_StaticIgnoresInsets(t *testing.T) {
	cs := style.InitialStyle()
	cs.Display = style.DisplayBlock
	cs.Inset.Top = units.Px(10)
	st := convertStyle(dom.NewElement(1, "div"), &cs, nil, nil, nil, units.NewViewport(800, 600))
	assert.Equal(t, boxsolver.Auto(), st.Inset.Top)
	assert.Equal(t, boxsolver.DisplayBlock, st.Display)
}

// FuzzComputeLayout builds arbitrary trees and stylesheets and checks that
// every pass either fails cleanly or returns one rect per rendered node.
func FuzzComputeLayout(f *testing.F) {
	f.Add([]byte("seed-data-for-layout"))
	f.Add([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	tags := []string{"div", "span", "p", "li", "table", "tr", "td", "script", "ul", "button"}
	props := []string{"display", "width", "height", "margin", "padding", "flex", "position", "top", "gap", "font-size", "box-sizing", "flex-direction", "grid-template-columns"}

	index := func(v, n int) int {
		v %= n
		if v < 0 {
			v += n
		}
		return v
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		count, err := c.GetInt()
		if err != nil {
			return
		}
		count = index(count, 40) + 1

		nodes := []*dom.Element{dom.NewElement(1, "div")}
		for i := 1; i < count; i++ {
			pick, err := c.GetInt()
			if err != nil {
				break
			}
			el := dom.NewElement(dom.NodeID(i+1), tags[index(pick, len(tags))])
			if text, err := c.GetString(); err == nil && len(text) < 64 {
				el.WithText(text)
			}
			if cls, err := c.GetString(); err == nil && cls != "" && len(cls) < 16 {
				el.WithClass(cls)
			}
			nodes[index(pick, len(nodes))].Append(el)
			nodes = append(nodes, el)
		}

		var rules []style.StyleRule
		for i := 0; i < 8; i++ {
			pick, err := c.GetInt()
			if err != nil {
				break
			}
			val, err := c.GetString()
			if err != nil {
				break
			}
			rules = append(rules, style.NewStyleRule(tags[index(pick, len(tags))],
				style.Declaration{Property: props[index(pick, len(props))], Value: val}))
		}

		cfg := config.NewDefaultConfig().Layout()
		e := NewEngine(cfg, WithLogger(zap.NewNop()))
		res, err := e.ComputeLayout(nodes[0], rules, units.NewViewport(640, 480))
		if err != nil {
			return
		}
		for id, r := range res.Rects {
			require.NotNil(t, dom.Find(nodes[0], id), "rect for unknown node %d", id)
			require.False(t, math.IsNaN(float64(r.Width)) || math.IsNaN(float64(r.Height)), "NaN size for node %d", id)
		}
		assert.GreaterOrEqual(t, res.DocumentSize.Width, float32(640))
		assert.GreaterOrEqual(t, res.DocumentSize.Height, float32(480))
	})
}
