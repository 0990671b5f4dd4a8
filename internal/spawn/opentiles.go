package spawn

import (
	"math/rand"

	"github.com/lawnchairsociety/deepcave/internal/grid"
)

// OpenTileSet tracks open floor tiles with O(1) membership, removal and uniform pick.
// Its order depends only on the order of operations, so seeded runs repeat exactly.
type OpenTileSet struct {
	tiles []grid.Point
	index map[grid.Point]int
}

// NewOpenTileSet creates a set from tiles, ignoring duplicates.
func NewOpenTileSet(tiles []grid.Point) *OpenTileSet {
	s := &OpenTileSet{
		tiles: make([]grid.Point, 0, len(tiles)),
		index: make(map[grid.Point]int, len(tiles)),
	}
	for _, p := range tiles {
		s.Add(p)
	}
	return s
}

// OpenTilesOf collects every open cell of g in row-major order.
func OpenTilesOf(g *grid.Grid) *OpenTileSet {
	return NewOpenTileSet(g.OpenTiles())
}

// Len returns the number of tiles in the set.
func (s *OpenTileSet) Len() int {
	return len(s.tiles)
}

// Has reports whether p is in the set.
func (s *OpenTileSet) Has(p grid.Point) bool {
	_, ok := s.index[p]
	return ok
}

// Add inserts p. It returns false if p was already present.
func (s *OpenTileSet) Add(p grid.Point) bool {
	if _, ok := s.index[p]; ok {
		return false
	}
	s.index[p] = len(s.tiles)
	s.tiles = append(s.tiles, p)
	return true
}

// Remove deletes p by swapping the last tile into its slot. It returns false if p was absent.
func (s *OpenTileSet) Remove(p grid.Point) bool {
	i, ok := s.index[p]
	if !ok {
		return false
	}
	last := len(s.tiles) - 1
	if i != last {
		moved := s.tiles[last]
		s.tiles[i] = moved
		s.index[moved] = i
	}
	s.tiles = s.tiles[:last]
	delete(s.index, p)
	return true
}

// Random returns a uniformly chosen tile without removing it.
func (s *OpenTileSet) Random(rng *rand.Rand) (grid.Point, bool) {
	if len(s.tiles) == 0 {
		return grid.Point{}, false
	}
	return s.tiles[rng.Intn(len(s.tiles))], true
}

// Tiles returns a copy of the set's current contents.
func (s *OpenTileSet) Tiles() []grid.Point {
	out := make([]grid.Point, len(s.tiles))
	copy(out, s.tiles)
	return out
}
