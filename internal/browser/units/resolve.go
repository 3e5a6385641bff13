// internal/browser/units/resolve.go
package units

// DefaultRootFontSize is the root font size used when a viewport leaves it unset.
const DefaultRootFontSize = 16.0

// glyphFactor approximates both ch and ex as half the font size. This is
// not glyph accurate; real font metrics are outside this package.
const glyphFactor = 0.5

// Viewport is the per-pass context for viewport-relative and root-relative
// units. It is supplied by the caller on every layout pass.
type Viewport struct {
	Width            float32
	Height           float32
	RootFontSize     float32
	Zoom             float32
	DevicePixelRatio float32
}

// NewViewport returns a viewport with a 16px root font size and unit zoom/DPR.
func NewViewport(width, height float32) Viewport {
	return Viewport{
		Width:            width,
		Height:           height,
		RootFontSize:     DefaultRootFontSize,
		Zoom:             1,
		DevicePixelRatio: 1,
	}
}

// Normalized fills zero-valued scalars with their defaults.
func (v Viewport) Normalized() Viewport {
	if v.RootFontSize <= 0 {
		v.RootFontSize = DefaultRootFontSize
	}
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	if v.DevicePixelRatio <= 0 {
		v.DevicePixelRatio = 1
	}
	return v
}

// ToPixels converts l to pixels. Percent and auto depend on the containing
// block and resolve to 0 here; use Resolve to tell them apart from a real 0.
func ToPixels(l Length, contextFontSize float32, vp Viewport) float32 {
	px, _ := Resolve(l, contextFontSize, vp)
	return px
}

// Resolve converts l to pixels and reports whether the unit was resolvable
// without a containing block.
func Resolve(l Length, contextFontSize float32, vp Viewport) (float32, bool) {
	switch l.Unit {
	case UnitPx:
		return l.Value, true
	case UnitEm:
		return l.Value * contextFontSize, true
	case UnitRem:
		return l.Value * vp.RootFontSize, true
	case UnitVh:
		return l.Value / 100 * vp.Height, true
	case UnitVw:
		return l.Value / 100 * vp.Width, true
	case UnitVmin:
		return l.Value / 100 * min(vp.Width, vp.Height), true
	case UnitVmax:
		return l.Value / 100 * max(vp.Width, vp.Height), true
	case UnitCh, UnitEx:
		return l.Value * glyphFactor * contextFontSize, true
	case UnitZero:
		return 0, true
	case UnitPercent, UnitAuto:
		return 0, false
	default:
		return 0, false
	}
}
