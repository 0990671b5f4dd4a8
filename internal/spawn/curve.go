package spawn

import "sort"

// CurvePoint pins a probability (or weight) to a floor.
type CurvePoint struct {
	Floor int     `yaml:"floor"`
	P     float64 `yaml:"p"`
}

// Curve is a floor-indexed value, linear between points and flat past either end.
type Curve []CurvePoint

// NewCurve returns a curve with its points sorted by floor.
func NewCurve(points ...CurvePoint) Curve {
	c := make(Curve, len(points))
	copy(c, points)
	sort.SliceStable(c, func(i, j int) bool { return c[i].Floor < c[j].Floor })
	return c
}

// Constant is a curve with the same value on every floor.
func Constant(p float64) Curve {
	return Curve{{Floor: 1, P: p}}
}

// At evaluates the curve at a floor. An empty curve is 0.
func (c Curve) At(floor int) float64 {
	if len(c) == 0 {
		return 0
	}
	if floor <= c[0].Floor {
		return c[0].P
	}
	last := c[len(c)-1]
	if floor >= last.Floor {
		return last.P
	}
	for i := 1; i < len(c); i++ {
		hi := c[i]
		if floor > hi.Floor {
			continue
		}
		lo := c[i-1]
		if hi.Floor == lo.Floor {
			return hi.P
		}
		t := float64(floor-lo.Floor) / float64(hi.Floor-lo.Floor)
		return lo.P + (hi.P-lo.P)*t
	}
	return last.P
}

// Probability evaluates the curve clamped to [0,1].
func (c Curve) Probability(floor int) float64 {
	return clamp01(c.At(floor))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
