// Package cave turns generated grids into playable floors and moves a player
// between them, restoring visited floors from mementos instead of rebuilding.
package cave

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/cavegen"
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/logger"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

// GeneratorConfig contains everything needed to build floors
type GeneratorConfig struct {
	Cave  cavegen.Params     // layout parameters; Seed is replaced per floor
	Walls *rulecell.Metadata // cave wall rules, also supplies base layer sprites
	Rocks *rulecell.Metadata // rock rules; nil leaves rocks unresolved
	Spawn spawn.Config
}

// Generator builds and restores levels. It is safe to reuse across floors.
type Generator struct {
	params   cavegen.Params
	walls    *rulecell.Metadata
	resolver *rulecell.Resolver
	planner  *spawn.Planner
}

// NewGenerator validates cfg and prepares the rule sets and spawn planner.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.Cave.Validate(); err != nil {
		return nil, err
	}
	if cfg.Walls == nil {
		return nil, fmt.Errorf("generator requires wall rules")
	}
	if err := checkBaseSprites(cfg.Walls); err != nil {
		return nil, err
	}
	if cfg.Walls.Group != grid.GroupCaveWall {
		return nil, fmt.Errorf("wall rules bound to group %v, want %v", cfg.Walls.Group, grid.GroupCaveWall)
	}

	planner, err := spawn.NewPlanner(cfg.Spawn)
	if err != nil {
		return nil, fmt.Errorf("failed to create spawn planner: %w", err)
	}

	resolver := rulecell.NewResolver()
	resolver.RegisterMetadata(cfg.Walls)
	if cfg.Rocks != nil {
		if cfg.Rocks.Group != grid.GroupRock {
			return nil, fmt.Errorf("rock rules bound to group %v, want %v", cfg.Rocks.Group, grid.GroupRock)
		}
		resolver.RegisterMetadata(cfg.Rocks)
	}

	return &Generator{
		params:   cfg.Cave,
		walls:    cfg.Walls,
		resolver: resolver,
		planner:  planner,
	}, nil
}

// Resolver returns the generator's rule resolver.
func (g *Generator) Resolver() *rulecell.Resolver {
	return g.resolver
}

// Build generates a fresh level: cave layout, spawn tile, rocks and enemies, then
// the render layers. Identical floor and seed always give an identical level.
func (g *Generator) Build(floor int, seed int64) (*Level, error) {
	start := time.Now()

	params := g.params
	params.Seed = seed
	cells, err := cavegen.Generate(params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate floor %d: %w", floor, err)
	}

	// Wall tiles never depend on rocks (different group), so resolving here
	// catches rule errors before anything is spawned.
	if _, err := g.resolver.Resolve(cells); err != nil {
		return nil, fmt.Errorf("floor %d: %w", floor, err)
	}

	rng := rand.New(rand.NewSource(spawnSeed(seed)))
	open := spawn.OpenTilesOf(cells)

	level := &Level{
		Floor:     floor,
		Seed:      seed,
		Grid:      cells,
		Open:      open,
		Generated: time.Now(),
		resolver:  g.resolver,
	}

	if tile, ok := open.Random(rng); ok {
		open.Remove(tile)
		level.Spawn = tile
		level.HasSpawn = true
		level.Placements = append(level.Placements, spawn.Placement{Tile: tile, Category: spawn.CategoryRope, Kind: spawn.CategoryRope.String()})
	} else {
		level.Spawn = grid.Pt(cells.Width()/2, cells.Height()/2)
		logger.Warning("Cave floor has no open tiles", "floor", floor, "seed", seed)
	}

	result, err := g.planner.Plan(cells, open, floor, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to plan spawns on floor %d: %w", floor, err)
	}
	level.Placements = append(level.Placements, result.All()...)

	if err := g.render(level); err != nil {
		return nil, err
	}

	logger.Elapsed("Cave floor built", start,
		"floor", floor,
		"seed", seed,
		"size", fmt.Sprintf("%dx%d", cells.Width(), cells.Height()),
		"occupied", cells.CountOccupied(),
		"rocks", len(result.Rocks),
		"enemies", len(result.Enemies))

	return level, nil
}

// Restore rebuilds a level from a memento without running the spawn planner.
func (g *Generator) Restore(m *FloorMemento) (*Level, error) {
	cells, err := grid.FromRows(m.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to decode floor %d grid: %w", m.Floor, err)
	}
	if cells.Width() != m.Width || cells.Height() != m.Height {
		return nil, fmt.Errorf("floor %d grid is %dx%d, memento says %dx%d",
			m.Floor, cells.Width(), cells.Height(), m.Width, m.Height)
	}

	for _, p := range m.Placements {
		if err := cells.Check(p.Tile); err != nil {
			return nil, fmt.Errorf("floor %d placement %s: %w", m.Floor, p.Kind, err)
		}
	}

	open := spawn.OpenTilesOf(cells)
	if m.HasSpawn {
		open.Remove(m.Spawn)
	}

	level := &Level{
		Floor:      m.Floor,
		Seed:       m.Seed,
		Grid:       cells,
		Open:       open,
		Spawn:      m.Spawn,
		HasSpawn:   m.HasSpawn,
		Placements: append([]spawn.Placement(nil), m.Placements...),
		Generated:  m.GeneratedAt,
		resolver:   g.resolver,
	}
	if err := g.render(level); err != nil {
		return nil, err
	}

	logger.Debug("Cave floor restored", "floor", m.Floor, "placements", len(m.Placements))
	return level, nil
}

func (g *Generator) render(level *Level) error {
	layer, err := g.resolver.Resolve(level.Grid)
	if err != nil {
		return fmt.Errorf("floor %d: %w", level.Floor, err)
	}
	base, err := BaseLayer(level.Grid, g.walls)
	if err != nil {
		return fmt.Errorf("floor %d: %w", level.Floor, err)
	}
	level.Layer = layer
	level.Base = base
	logger.Debug("Cave floor resolved", "floor", level.Floor, "tiles", layer.Len(), "base_tiles", len(base))
	return nil
}
