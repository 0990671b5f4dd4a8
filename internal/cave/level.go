package cave

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

// Level is one built cave floor: its grid, render layers and placements.
type Level struct {
	Floor      int
	Seed       int64
	Grid       *grid.Grid
	Layer      *rulecell.Layer       // walls and rocks
	Base       []rulecell.PlacedTile // floor and wall faces
	Open       *spawn.OpenTileSet
	Spawn      grid.Point
	HasSpawn   bool
	Placements []spawn.Placement // rope first, then rocks, then enemies
	Generated  time.Time

	resolver *rulecell.Resolver
}

// Rope returns the rope placement, if the level has one.
func (l *Level) Rope() (spawn.Placement, bool) {
	for _, p := range l.Placements {
		if p.Category == spawn.CategoryRope {
			return p, true
		}
	}
	return spawn.Placement{}, false
}

// Count returns how many placements of a category the level holds.
func (l *Level) Count(c spawn.Category) int {
	n := 0
	for _, p := range l.Placements {
		if p.Category == c {
			n++
		}
	}
	return n
}

// Walkable reports whether an actor can stand on p.
func (l *Level) Walkable(p grid.Point) bool {
	return !l.Grid.Solid(p.X, p.Y)
}

// RemoveRock mines the rock at p: the tile reopens, its placement goes away and
// the layer is re-resolved. It returns the removed placement.
func (l *Level) RemoveRock(p grid.Point) (spawn.Placement, error) {
	if err := l.Grid.Check(p); err != nil {
		return spawn.Placement{}, err
	}
	if l.Grid.Group(p.X, p.Y) != grid.GroupRock {
		return spawn.Placement{}, fmt.Errorf("no rock at %v", p)
	}

	idx := -1
	for i, pl := range l.Placements {
		if pl.Category == spawn.CategoryRock && pl.Tile == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return spawn.Placement{}, fmt.Errorf("rock at %v has no placement", p)
	}
	removed := l.Placements[idx]

	l.Grid.Set(p.X, p.Y, grid.GroupNone)
	layer, err := l.resolver.Resolve(l.Grid)
	if err != nil {
		l.Grid.Set(p.X, p.Y, grid.GroupRock)
		return spawn.Placement{}, err
	}

	l.Layer = layer
	l.Placements = append(l.Placements[:idx:idx], l.Placements[idx+1:]...)
	l.Open.Add(p)
	return removed, nil
}
