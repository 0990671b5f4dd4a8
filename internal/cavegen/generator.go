// Package cavegen builds cave occupancy grids with a smoothing cellular automaton.
package cavegen

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/deepcave/internal/grid"
)

// Params controls cave generation.
type Params struct {
	Width               int     // Grid columns
	Height              int     // Grid rows
	FillPercent         float64 // Chance a cell starts occupied, 0..1
	SmoothingIterations int     // Number of smoothing passes
	WallThreshold       int     // Occupied neighbors needed for a cell to become a wall, 0..8
	MinRegionSize       int     // Open regions smaller than this are filled in; 0 disables
	Seed                int64
}

// DefaultParams returns the standard 200x200 cave settings for a seed
func DefaultParams(seed int64) Params {
	return Params{
		Width:               200,
		Height:              200,
		FillPercent:         0.5,
		SmoothingIterations: 5,
		WallThreshold:       5,
		Seed:                seed,
	}
}

// ParamError reports an invalid generation parameter.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks that the parameters describe a buildable cave.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0:
		return &ParamError{Field: "width", Value: p.Width, Reason: "must be positive"}
	case p.Height <= 0:
		return &ParamError{Field: "height", Value: p.Height, Reason: "must be positive"}
	case p.FillPercent < 0 || p.FillPercent > 1:
		return &ParamError{Field: "fill_percent", Value: p.FillPercent, Reason: "must be within [0,1]"}
	case p.SmoothingIterations < 0:
		return &ParamError{Field: "smoothing_iterations", Value: p.SmoothingIterations, Reason: "must not be negative"}
	case p.WallThreshold < 0 || p.WallThreshold > 8:
		return &ParamError{Field: "wall_threshold", Value: p.WallThreshold, Reason: "must be within [0,8]"}
	case p.MinRegionSize < 0:
		return &ParamError{Field: "min_region_size", Value: p.MinRegionSize, Reason: "must not be negative"}
	}
	return nil
}

// Generate produces a cave grid. The same Params always yield the same grid.
// Every occupied cell is tagged grid.GroupCaveWall and the border is always closed.
func Generate(p Params) (*grid.Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	g, err := grid.New(p.Width, p.Height)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.Seed))

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if rng.Float64() < p.FillPercent {
				g.Set(x, y, grid.GroupCaveWall)
			}
		}
	}
	closeBorder(g)

	for i := 0; i < p.SmoothingIterations; i++ {
		g = smooth(g, p.WallThreshold)
		closeBorder(g)
	}

	if p.MinRegionSize > 0 {
		fillSmallRegions(g, p.MinRegionSize)
	}

	return g, nil
}

// smooth runs one automaton pass, reading only from the previous generation.
func smooth(prev *grid.Grid, threshold int) *grid.Grid {
	next := prev.Clone()
	for y := 0; y < prev.Height(); y++ {
		for x := 0; x < prev.Width(); x++ {
			if countWallNeighbors(prev, x, y) >= threshold {
				next.Set(x, y, grid.GroupCaveWall)
			} else {
				next.Set(x, y, grid.GroupNone)
			}
		}
	}
	return next
}

// countWallNeighbors counts occupied cells around (x, y); cells past the edge count as walls.
func countWallNeighbors(g *grid.Grid, x, y int) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.Solid(x+dx, y+dy) {
				count++
			}
		}
	}
	return count
}

func closeBorder(g *grid.Grid) {
	w, h := g.Width(), g.Height()
	for x := 0; x < w; x++ {
		g.Set(x, 0, grid.GroupCaveWall)
		g.Set(x, h-1, grid.GroupCaveWall)
	}
	for y := 0; y < h; y++ {
		g.Set(0, y, grid.GroupCaveWall)
		g.Set(w-1, y, grid.GroupCaveWall)
	}
}
