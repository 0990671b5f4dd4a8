package rulecell

import (
	"fmt"

	"github.com/lawnchairsociety/deepcave/internal/grid"
)

// PlacedTile is one resolved cell: which sprite to draw where, and how to orient it.
type PlacedTile struct {
	At     grid.Point
	Sheet  string
	Source grid.Point
	Orientation
	Rule string
}

// Layer is the resolved render layer for a grid, tiles in row-major order.
type Layer struct {
	Width  int
	Height int
	Tiles  []PlacedTile
	index  map[grid.Point]int
}

func newLayer(w, h int) *Layer {
	return &Layer{Width: w, Height: h, index: make(map[grid.Point]int)}
}

func (l *Layer) add(t PlacedTile) {
	l.index[t.At] = len(l.Tiles)
	l.Tiles = append(l.Tiles, t)
}

// At returns the tile resolved for a cell, if any.
func (l *Layer) At(p grid.Point) (PlacedTile, bool) {
	i, ok := l.index[p]
	if !ok {
		return PlacedTile{}, false
	}
	return l.Tiles[i], true
}

// Len returns the number of resolved tiles.
func (l *Layer) Len() int {
	return len(l.Tiles)
}

// Resolver maps occupied cells to sprites using one RuleSet per grid group.
//
// Each group is matched only against its own rule set, so a pattern in one set
// never competes with a pattern in another. When two shapes need a DontCare-versus-
// specific precedence, both belong in the same rule file where declaration order
// decides.
type Resolver struct {
	sets map[grid.GroupID]*RuleSet
}

// NewResolver creates a resolver with no rule sets registered.
func NewResolver() *Resolver {
	return &Resolver{sets: make(map[grid.GroupID]*RuleSet)}
}

// Register binds a rule set to a group, replacing any earlier one.
func (r *Resolver) Register(group grid.GroupID, rs *RuleSet) {
	r.sets[group] = rs
}

// RegisterMetadata builds a rule set for md and binds it to md.Group.
func (r *Resolver) RegisterMetadata(md *Metadata) *RuleSet {
	rs := NewRuleSet(md)
	r.Register(md.Group, rs)
	return rs
}

// RuleSet returns the set registered for a group.
func (r *Resolver) RuleSet(group grid.GroupID) (*RuleSet, bool) {
	rs, ok := r.sets[group]
	return rs, ok
}

// ResolveCell resolves a single cell. ok is false for open cells and for groups
// without a registered rule set.
func (r *Resolver) ResolveCell(g *grid.Grid, x, y int) (tile PlacedTile, ok bool, err error) {
	if !g.Occupied(x, y) {
		return PlacedTile{}, false, nil
	}
	group := g.Group(x, y)
	rs, registered := r.sets[group]
	if !registered {
		return PlacedTile{}, false, nil
	}

	sig := Signature(g, x, y)
	m, found := rs.Lookup(sig)
	if !found {
		cell := grid.Pt(x, y)
		return PlacedTile{}, false, &ConfigError{
			Source:    rs.md.Sheet,
			Reason:    "no pattern matches under any orientation",
			Cell:      &cell,
			Group:     group,
			Signature: &sig,
		}
	}

	rule := rs.md.Tiles[m.Tile]
	return PlacedTile{
		At:          grid.Pt(x, y),
		Sheet:       rs.md.Sheet,
		Source:      rule.Source,
		Orientation: m.Orientation,
		Rule:        rule.Name,
	}, true, nil
}

// Resolve walks the grid in row-major order and resolves every occupied cell.
// The first unmatched cell aborts resolution with a *ConfigError.
func (r *Resolver) Resolve(g *grid.Grid) (*Layer, error) {
	layer := newLayer(g.Width(), g.Height())
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			tile, ok, err := r.ResolveCell(g, x, y)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve layer: %w", err)
			}
			if ok {
				layer.add(tile)
			}
		}
	}
	return layer, nil
}
