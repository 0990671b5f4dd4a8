// Package spawn decides where rocks and enemies go on a generated cave floor.
package spawn

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/logger"
)

// Category groups placements by what the world adapter builds from them.
type Category string

const (
	CategoryRock  Category = "rock"
	CategoryEnemy Category = "enemy"
	CategoryRope  Category = "rope"
)

// Placement puts one thing of a given kind on a tile.
type Placement struct {
	Tile     grid.Point `yaml:"tile" json:"tile"`
	Category Category   `yaml:"category" json:"category"`
	Kind     string     `yaml:"kind" json:"kind"`
}

// Result holds the placements from one planning run.
type Result struct {
	Rocks   []Placement
	Enemies []Placement
}

// All returns rocks followed by enemies.
func (r Result) All() []Placement {
	out := make([]Placement, 0, len(r.Rocks)+len(r.Enemies))
	out = append(out, r.Rocks...)
	return append(out, r.Enemies...)
}

// Default enemy count range per floor.
const (
	DefaultEnemyMin = 90
	DefaultEnemyMax = 100
)

// Config holds the probability tables for a planner.
type Config struct {
	Fill     Curve            // per-tile rock chance by floor
	Rocks    *Table[RockType] // rock variant weights by floor
	EnemyMin int
	EnemyMax int
	Enemies  *Table[string] // enemy kind weights by floor
}

// DefaultConfig returns the standard spawn tables.
func DefaultConfig() Config {
	return Config{
		Fill:     DefaultFillCurve(),
		Rocks:    DefaultRockTable(),
		EnemyMin: DefaultEnemyMin,
		EnemyMax: DefaultEnemyMax,
		Enemies:  NewTable("slime", Entry[string]{Kind: "slime", Weight: Constant(1)}),
	}
}

// Validate checks the enemy range and that every table is present.
func (c Config) Validate() error {
	if c.Rocks == nil {
		return fmt.Errorf("spawn config has no rock table")
	}
	if c.Enemies == nil {
		return fmt.Errorf("spawn config has no enemy table")
	}
	if c.EnemyMin < 0 || c.EnemyMax < c.EnemyMin {
		return fmt.Errorf("invalid enemy range [%d, %d]", c.EnemyMin, c.EnemyMax)
	}
	return nil
}

// Planner places rocks, then enemies, on the open tiles of a floor.
type Planner struct {
	cfg Config
}

// NewPlanner creates a planner after validating cfg.
func NewPlanner(cfg Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg}, nil
}

// Config returns the planner's tables.
func (p *Planner) Config() Config {
	return p.cfg
}

// Plan runs the rock fill pass and then the enemy pass.
//
// Rocks are written into g as grid.GroupRock and removed from open, so enemies
// are only sampled from tiles still open afterwards. Enemies change neither g
// nor open. An empty open set is a no-op with a warning.
func (p *Planner) Plan(g *grid.Grid, open *OpenTileSet, floor int, rng *rand.Rand) (Result, error) {
	if open.Len() == 0 {
		logger.Warning("Open tile set is empty, nothing to spawn", "floor", floor)
		return Result{}, nil
	}

	rocks, err := p.PlanRocks(g, open, floor, rng)
	if err != nil {
		return Result{}, err
	}
	enemies := p.PlanEnemies(open, floor, rng)

	logger.Debug("Spawn plan complete",
		"floor", floor,
		"rocks", len(rocks),
		"enemies", len(enemies),
		"open_tiles", open.Len())

	return Result{Rocks: rocks, Enemies: enemies}, nil
}

// PlanRocks runs a Bernoulli trial on every open tile and turns the hits into rocks.
func (p *Planner) PlanRocks(g *grid.Grid, open *OpenTileSet, floor int, rng *rand.Rand) ([]Placement, error) {
	chance := p.cfg.Fill.Probability(floor)
	var rocks []Placement

	for _, tile := range open.Tiles() {
		if err := g.Check(tile); err != nil {
			return nil, err
		}
		if rng.Float64() >= chance {
			continue
		}
		kind := p.cfg.Rocks.Pick(floor, rng)
		g.Set(tile.X, tile.Y, grid.GroupRock)
		open.Remove(tile)
		rocks = append(rocks, Placement{Tile: tile, Category: CategoryRock, Kind: kind.String()})
	}
	return rocks, nil
}

// PlanEnemies picks a count in [EnemyMin, EnemyMax] and drops each enemy on a
// uniformly random open tile. Tiles may be shared.
func (p *Planner) PlanEnemies(open *OpenTileSet, floor int, rng *rand.Rand) []Placement {
	if open.Len() == 0 {
		logger.Warning("No open tiles left for enemies", "floor", floor)
		return nil
	}

	count := p.cfg.EnemyMin + rng.Intn(p.cfg.EnemyMax-p.cfg.EnemyMin+1)
	enemies := make([]Placement, 0, count)
	for i := 0; i < count; i++ {
		tile, _ := open.Random(rng)
		kind := p.cfg.Enemies.Pick(floor, rng)
		enemies = append(enemies, Placement{Tile: tile, Category: CategoryEnemy, Kind: kind})
	}
	return enemies
}

func (c Category) String() string {
	return string(c)
}
