package rulecell

import (
	"github.com/lawnchairsociety/deepcave/internal/grid"
)

// Match is the winning rule for a signature.
type Match struct {
	Tile    int // index into Metadata.Tiles
	Pattern int // index into that tile's Patterns
	Orientation
}

// RuleSet answers signature lookups for one rule file.
//
// All 256 possible signatures are resolved up front by scanning tiles in file
// order, each tile's patterns in order, and the 8 orientations in order. The
// first hit is stored, so lookups keep declaration priority.
type RuleSet struct {
	md    *Metadata
	table [256]int16 // index into matches, -1 = unmatched
	found []Match
}

// NewRuleSet builds the lookup table for md.
func NewRuleSet(md *Metadata) *RuleSet {
	rs := &RuleSet{md: md}
	for idx := range rs.table {
		rs.table[idx] = -1
		if m, ok := scan(md, signatureFromIndex(idx)); ok {
			rs.table[idx] = int16(len(rs.found))
			rs.found = append(rs.found, m)
		}
	}
	return rs
}

// scan is the reference first-match search.
func scan(md *Metadata, sig Pattern) (Match, bool) {
	for ti, tile := range md.Tiles {
		for pi, p := range tile.Patterns {
			for _, o := range orientations {
				if o.apply(p).Matches(sig) {
					return Match{Tile: ti, Pattern: pi, Orientation: o.Orientation}, true
				}
			}
		}
	}
	return Match{}, false
}

// Metadata returns the rule file backing this set.
func (rs *RuleSet) Metadata() *Metadata {
	return rs.md
}

// Lookup returns the first rule matching a signature.
func (rs *RuleSet) Lookup(sig Pattern) (Match, bool) {
	i := rs.table[sig.index()]
	if i < 0 {
		return Match{}, false
	}
	return rs.found[i], true
}

// Coverage lists every signature no rule matches, in index order.
// A complete rule set returns nil.
func (rs *RuleSet) Coverage() []Pattern {
	var missing []Pattern
	for idx, i := range rs.table {
		if i < 0 {
			missing = append(missing, signatureFromIndex(idx))
		}
	}
	return missing
}

// Signature computes the neighborhood of (x, y) as seen by the rule matcher.
// Neighbors past the grid edge are Present; in-bounds neighbors are Present only
// when occupied by the same group as the center. The center is DontCare.
func Signature(g *grid.Grid, x, y int) Pattern {
	center := g.Group(x, y)
	var sig Pattern
	for _, off := range neighborOffsets {
		nx, ny := x+off[0], y+off[1]
		state := Absent
		if !g.InBounds(nx, ny) {
			state = Present
		} else if g.Occupied(nx, ny) && g.Group(nx, ny) == center {
			state = Present
		}
		sig[off[1]+1][off[0]+1] = state
	}
	return sig
}
