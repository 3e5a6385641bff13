package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPixels(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800, RootFontSize: 16, Zoom: 1, DevicePixelRatio: 1}

	tests := []struct {
		name     string
		input    Length
		fontSize float32
		expected float32
	}{
		{"px passthrough", Px(12), 20, 12},
		{"em against context", Em(2), 20, 40},
		{"rem against root", Rem(2), 20, 32},
		{"vw", Vw(50), 16, 500},
		{"vh", Vh(10), 16, 80},
		{"vmin", Vmin(10), 16, 80},
		{"vmax", Vmax(10), 16, 100},
		{"ch approximation", Ch(2), 20, 20},
		{"ex approximation", Ex(1), 10, 5},
		{"zero", Zero(), 16, 0},
		{"percent is not resolved", Percent(50), 16, 0},
		{"auto is not resolved", Auto(), 16, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToPixels(tt.input, tt.fontSize, vp))
		})
	}
}

func TestResolve_ContextDependentUnits(t *testing.T) {
	vp := NewViewport(800, 600)

	_, ok := Resolve(Percent(25), 16, vp)
	assert.False(t, ok, "percent needs a containing block")

	_, ok = Resolve(Auto(), 16, vp)
	assert.False(t, ok, "auto is carried to the solver")

	px, ok := Resolve(Zero(), 16, vp)
	assert.True(t, ok)
	assert.Equal(t, float32(0), px)
}

func TestToPixels_IsPureAcrossViewports(t *testing.T) {
	l := Vw(50)
	assert.Equal(t, float32(500), ToPixels(l, 16, NewViewport(1000, 500)))
	assert.Equal(t, float32(200), ToPixels(l, 16, NewViewport(400, 500)))
	assert.Equal(t, Vw(50), l, "the length itself is never rewritten")
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		input    string
		expected Length
	}{
		{"10px", Px(10)},
		{"1.5em", Em(1.5)},
		{"2rem", Rem(2)},
		{"50%", Percent(50)},
		{"10vw", Vw(10)},
		{"5vh", Vh(5)},
		{"5vmin", Vmin(5)},
		{"10vmax", Vmax(10)},
		{"3ch", Ch(3)},
		{"2ex", Ex(2)},
		{"auto", Auto()},
		{"AUTO", Auto()},
		{"0", Zero()},
		{"  12  ", Px(12)},
		{"-4px", Px(-4)},
		{"1in", Px(96)},
		{"72pt", Px(96)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual, err := ParseLength(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Unit, actual.Unit)
			assert.InDelta(t, tt.expected.Value, actual.Value, 0.001)
		})
	}
}

func TestParseLength_Invalid(t *testing.T) {
	for _, input := range []string{"", "wide", "px", "12furlongs", "calc(1px + 2px)",
		"infpx", "-infpx", "nanpx", "inf", "NaN", "1e39px", "1e38in"} {
		t.Run(input, func(t *testing.T) {
			l, err := ParseLength(input)
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
			assert.Equal(t, Zero(), l, "unparseable lengths degrade to zero")
		})
	}
}

func TestLengthString(t *testing.T) {
	assert.Equal(t, "auto", Auto().String())
	assert.Equal(t, "0", Zero().String())
	assert.Equal(t, "12px", Px(12).String())
	assert.Equal(t, "1.5em", Em(1.5).String())
	assert.Equal(t, "50%", Percent(50).String())
}

func TestViewportNormalized(t *testing.T) {
	vp := Viewport{Width: 100, Height: 50}.Normalized()
	assert.Equal(t, float32(DefaultRootFontSize), vp.RootFontSize)
	assert.Equal(t, float32(1), vp.Zoom)
	assert.Equal(t, float32(1), vp.DevicePixelRatio)
}
