package cavegen

import (
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

var cardinals = [4]grid.Point{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// OpenRegions returns the 4-connected open regions of g, each in discovery order.
// Regions are ordered by their first cell in row-major order.
func OpenRegions(g *grid.Grid) [][]grid.Point {
	visited := mapset.New[grid.Point]()
	var regions [][]grid.Point

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			start := grid.Pt(x, y)
			if g.Occupied(x, y) || visited.Has(start) {
				continue
			}
			regions = append(regions, floodOpen(g, start, visited))
		}
	}
	return regions
}

func floodOpen(g *grid.Grid, start grid.Point, visited mapset.Set[grid.Point]) []grid.Point {
	region := []grid.Point{start}
	visited.Put(start)
	for i := 0; i < len(region); i++ {
		for _, d := range cardinals {
			n := region[i].Add(d)
			if g.Solid(n.X, n.Y) || visited.Has(n) {
				continue
			}
			visited.Put(n)
			region = append(region, n)
		}
	}
	return region
}

// fillSmallRegions turns open pockets smaller than minSize into cave wall.
func fillSmallRegions(g *grid.Grid, minSize int) {
	for _, region := range OpenRegions(g) {
		if len(region) >= minSize {
			continue
		}
		for _, p := range region {
			g.Set(p.X, p.Y, grid.GroupCaveWall)
		}
	}
}
