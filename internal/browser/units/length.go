// internal/browser/units/length.go
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit tags the kind of a Length.
type Unit int

const (
	UnitZero Unit = iota
	UnitPx
	UnitEm
	UnitRem
	UnitPercent
	UnitVh
	UnitVw
	UnitVmin
	UnitVmax
	UnitCh
	UnitEx
	UnitAuto
)

// Absolute units are normalized to px when parsed (CSS reference pixel, 96 per inch).
const (
	pxPerIn = 96.0
	pxPerCm = pxPerIn / 2.54
	pxPerMm = pxPerCm / 10
	pxPerQ  = pxPerMm / 4
	pxPerPt = pxPerIn / 72
	pxPerPc = pxPerPt * 12
)

// Length is an unresolved CSS length. It is a value type and is never
// cached in resolved form, so it can be resolved again under a different
// viewport.
type Length struct {
	Value float32
	Unit  Unit
}

func Px(v float32) Length      { return Length{Value: v, Unit: UnitPx} }
func Em(v float32) Length      { return Length{Value: v, Unit: UnitEm} }
func Rem(v float32) Length     { return Length{Value: v, Unit: UnitRem} }
func Percent(v float32) Length { return Length{Value: v, Unit: UnitPercent} }
func Vh(v float32) Length      { return Length{Value: v, Unit: UnitVh} }
func Vw(v float32) Length      { return Length{Value: v, Unit: UnitVw} }
func Vmin(v float32) Length    { return Length{Value: v, Unit: UnitVmin} }
func Vmax(v float32) Length    { return Length{Value: v, Unit: UnitVmax} }
func Ch(v float32) Length      { return Length{Value: v, Unit: UnitCh} }
func Ex(v float32) Length      { return Length{Value: v, Unit: UnitEx} }
func Auto() Length             { return Length{Unit: UnitAuto} }
func Zero() Length             { return Length{Unit: UnitZero} }

// IsAuto reports whether the length is the auto keyword.
func (l Length) IsAuto() bool { return l.Unit == UnitAuto }

// IsPercent reports whether the length is relative to its containing block.
func (l Length) IsPercent() bool { return l.Unit == UnitPercent }

// IsZero reports whether the length resolves to zero in every context.
func (l Length) IsZero() bool {
	return l.Unit == UnitZero || (l.Unit != UnitAuto && l.Value == 0)
}

var unitSuffixes = map[Unit]string{
	UnitPx:      "px",
	UnitEm:      "em",
	UnitRem:     "rem",
	UnitPercent: "%",
	UnitVh:      "vh",
	UnitVw:      "vw",
	UnitVmin:    "vmin",
	UnitVmax:    "vmax",
	UnitCh:      "ch",
	UnitEx:      "ex",
}

func (l Length) String() string {
	switch l.Unit {
	case UnitAuto:
		return "auto"
	case UnitZero:
		return "0"
	}
	return strconv.FormatFloat(float64(l.Value), 'f', -1, 32) + unitSuffixes[l.Unit]
}

// ParseError reports a value that could not be read as a length.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable length %q", e.Input)
}

// ParseLength reads a CSS length. Suffixes are matched longest first so
// "rem" is not mistaken for "em" and "vmin" not for "in". Unitless numbers
// are read as px except for a bare 0, which is UnitZero.
func ParseLength(s string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return Zero(), &ParseError{Input: s}
	case "auto":
		return Auto(), nil
	case "0", "+0", "-0", "0.0":
		return Zero(), nil
	}

	for _, suf := range parseOrder {
		if !strings.HasSuffix(v, suf.suffix) {
			continue
		}
		num, ok := finite(strings.TrimSuffix(v, suf.suffix), suf.scale)
		if !ok {
			return Zero(), &ParseError{Input: s}
		}
		if suf.scale != 0 {
			return Px(num), nil
		}
		return Length{Value: num, Unit: suf.unit}, nil
	}

	num, ok := finite(v, 0)
	if !ok {
		return Zero(), &ParseError{Input: s}
	}
	if num == 0 {
		return Zero(), nil
	}
	return Px(num), nil
}

// finite parses s, applies scale when non-zero and rejects results that are
// not finite float32 values. strconv accepts "inf" and "nan".
func finite(s string, scale float64) (float32, bool) {
	num, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	if scale != 0 {
		num *= scale
	}
	if math.IsNaN(num) || math.Abs(num) > math.MaxFloat32 {
		return 0, false
	}
	return float32(num), true
}

// MustParseLength is ParseLength for literals known to be valid.
func MustParseLength(s string) Length {
	l, err := ParseLength(s)
	if err != nil {
		panic(err)
	}
	return l
}

type suffixRule struct {
	suffix string
	unit   Unit
	scale  float64 // non-zero for absolute units folded into px
}

var parseOrder = []suffixRule{
	{suffix: "vmin", unit: UnitVmin},
	{suffix: "vmax", unit: UnitVmax},
	{suffix: "rem", unit: UnitRem},
	{suffix: "px", unit: UnitPx},
	{suffix: "em", unit: UnitEm},
	{suffix: "ex", unit: UnitEx},
	{suffix: "ch", unit: UnitCh},
	{suffix: "vh", unit: UnitVh},
	{suffix: "vw", unit: UnitVw},
	{suffix: "%", unit: UnitPercent},
	{suffix: "in", scale: pxPerIn},
	{suffix: "cm", scale: pxPerCm},
	{suffix: "mm", scale: pxPerMm},
	{suffix: "pt", scale: pxPerPt},
	{suffix: "pc", scale: pxPerPc},
	{suffix: "q", scale: pxPerQ},
}
