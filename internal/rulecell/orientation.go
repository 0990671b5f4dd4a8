package rulecell

// Orientation is the transform a renderer applies to a rule's canonical sprite:
// flip first, then rotate clockwise by Rotation quarter turns.
type Orientation struct {
	Rotation int
	FlipH    bool
	FlipV    bool
}

// orientation describes one of the 8 variants tried against a signature.
type orientation struct {
	Orientation
	apply func(Pattern) Pattern
}

func rotateN(p Pattern, n int) Pattern {
	for i := 0; i < n; i++ {
		p = p.RotateCW()
	}
	return p
}

// orientations is the fixed match order: the pattern rotated 0..3 quarter turns,
// then its mirror image rotated 0..3. A mirror turned twice is the vertical flip,
// so it is reported as FlipV with no rotation.
var orientations = [8]orientation{
	{Orientation{Rotation: 0}, func(p Pattern) Pattern { return p }},
	{Orientation{Rotation: 1}, func(p Pattern) Pattern { return rotateN(p, 1) }},
	{Orientation{Rotation: 2}, func(p Pattern) Pattern { return rotateN(p, 2) }},
	{Orientation{Rotation: 3}, func(p Pattern) Pattern { return rotateN(p, 3) }},
	{Orientation{FlipH: true}, func(p Pattern) Pattern { return p.MirrorH() }},
	{Orientation{Rotation: 1, FlipH: true}, func(p Pattern) Pattern { return rotateN(p.MirrorH(), 1) }},
	{Orientation{FlipV: true}, func(p Pattern) Pattern { return rotateN(p.MirrorH(), 2) }},
	{Orientation{Rotation: 3, FlipH: true}, func(p Pattern) Pattern { return rotateN(p.MirrorH(), 3) }},
}

// Variants returns the pattern in each of the 8 orientations, in match order.
func (p Pattern) Variants() [8]Pattern {
	var out [8]Pattern
	for i, o := range orientations {
		out[i] = o.apply(p)
	}
	return out
}

// Orientations returns the 8 orientations in match order, aligned with Variants.
func Orientations() [8]Orientation {
	var out [8]Orientation
	for i, o := range orientations {
		out[i] = o.Orientation
	}
	return out
}
