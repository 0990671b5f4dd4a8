package spawn

import "math/rand"

// Entry is one outcome of a weighted table and its floor-scaled weight.
type Entry[K comparable] struct {
	Kind   K
	Weight Curve
}

// Table picks outcomes by weighted random sampling at a given floor.
// Weights need not sum to one; negative weights count as zero.
type Table[K comparable] struct {
	entries  []Entry[K]
	fallback K
}

// NewTable creates a table. fallback is returned when every weight on a floor is zero.
func NewTable[K comparable](fallback K, entries ...Entry[K]) *Table[K] {
	return &Table[K]{entries: entries, fallback: fallback}
}

// Entries returns the table's outcomes in declaration order.
func (t *Table[K]) Entries() []Entry[K] {
	return t.entries
}

// Fallback returns the outcome used when no weight is positive.
func (t *Table[K]) Fallback() K {
	return t.fallback
}

// Weights evaluates each entry at a floor, negatives clamped to zero.
func (t *Table[K]) Weights(floor int) []float64 {
	w := make([]float64, len(t.entries))
	for i, e := range t.entries {
		if v := e.Weight.At(floor); v > 0 {
			w[i] = v
		}
	}
	return w
}

// Chance returns the normalized probability of kind at a floor.
func (t *Table[K]) Chance(kind K, floor int) float64 {
	weights := t.Weights(floor)
	total, mine := 0.0, 0.0
	for i, w := range weights {
		total += w
		if t.entries[i].Kind == kind {
			mine += w
		}
	}
	if total <= 0 {
		if kind == t.fallback {
			return 1
		}
		return 0
	}
	return mine / total
}

// Pick samples one outcome. It draws exactly one value from rng.
func (t *Table[K]) Pick(floor int, rng *rand.Rand) K {
	weights := t.Weights(floor)
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64()
	if total <= 0 {
		return t.fallback
	}

	r *= total
	pick := t.fallback
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		pick = t.entries[i].Kind
		if r < w {
			return pick
		}
		r -= w
	}
	return pick
}
