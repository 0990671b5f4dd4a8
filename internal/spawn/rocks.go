package spawn

import "fmt"

// RockType is the closed set of minable rock variants.
type RockType int

const (
	RockPlain RockType = iota
	RockCopper
	RockIron
	RockGold
	RockCrystal
)

// AllRockTypes returns every rock type in declaration order
func AllRockTypes() []RockType {
	return []RockType{RockPlain, RockCopper, RockIron, RockGold, RockCrystal}
}

// String returns the string representation of a rock type
func (r RockType) String() string {
	switch r {
	case RockPlain:
		return "plain"
	case RockCopper:
		return "copper"
	case RockIron:
		return "iron"
	case RockGold:
		return "gold"
	case RockCrystal:
		return "crystal"
	default:
		return "unknown"
	}
}

// ParseRockType converts a rock name back to its type.
func ParseRockType(s string) (RockType, error) {
	for _, r := range AllRockTypes() {
		if r.String() == s {
			return r, nil
		}
	}
	return RockPlain, fmt.Errorf("unknown rock type: %q", s)
}

// DefaultRockTable is the ore distribution: plain rock everywhere, copper early,
// precious ores rising with depth.
func DefaultRockTable() *Table[RockType] {
	return NewTable(RockPlain,
		Entry[RockType]{Kind: RockPlain, Weight: NewCurve(CurvePoint{1, 0.70}, CurvePoint{20, 0.40})},
		Entry[RockType]{Kind: RockCopper, Weight: NewCurve(CurvePoint{1, 0.25}, CurvePoint{10, 0.20}, CurvePoint{20, 0.10})},
		Entry[RockType]{Kind: RockIron, Weight: NewCurve(CurvePoint{1, 0.05}, CurvePoint{10, 0.20}, CurvePoint{20, 0.20})},
		Entry[RockType]{Kind: RockGold, Weight: NewCurve(CurvePoint{3, 0}, CurvePoint{10, 0.06}, CurvePoint{20, 0.18})},
		Entry[RockType]{Kind: RockCrystal, Weight: NewCurve(CurvePoint{8, 0}, CurvePoint{20, 0.12})},
	)
}

// DefaultFillCurve is the per-tile chance of a rock on open floor.
func DefaultFillCurve() Curve {
	return NewCurve(CurvePoint{1, 0.02}, CurvePoint{20, 0.06})
}
