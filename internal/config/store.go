package config

import (
	"fmt"
	"io"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/database"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore opens the memento store named by the storage section. The closer
// releases any database connection.
func (c *Config) OpenStore() (cave.MementoStore, io.Closer, error) {
	switch c.Storage.Driver {
	case "memory", "":
		return cave.NewMemoryStore(), nopCloser{}, nil
	case "yaml":
		store, err := cave.NewDirStore(c.Storage.SnapshotDir)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	case "sqlite", "postgres":
		db, err := database.OpenWithConfig(c.DatabaseConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s store: %w", c.Storage.Driver, err)
		}
		return db.Mementos(), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
}

// GeneratorConfig loads the rule files and assembles a cave generator config.
func (c *Config) GeneratorConfig() (cave.GeneratorConfig, error) {
	var gc cave.GeneratorConfig

	walls, err := rulecell.LoadMetadata(c.Rules.CaveWall)
	if err != nil {
		return gc, err
	}
	gc.Walls = walls

	if c.Rules.Rock != "" {
		rocks, err := rulecell.LoadMetadata(c.Rules.Rock)
		if err != nil {
			return gc, err
		}
		gc.Rocks = rocks
	}

	sc, err := c.SpawnConfig()
	if err != nil {
		return gc, err
	}
	gc.Spawn = sc
	gc.Cave = c.CaveParams(c.Cave.Seed)
	return gc, nil
}

// NewCave builds a generator and opens a cave for seed over store.
func (c *Config) NewCave(seed int64, store cave.MementoStore) (*cave.Cave, error) {
	gc, err := c.GeneratorConfig()
	if err != nil {
		return nil, err
	}
	gen, err := cave.NewGenerator(gc)
	if err != nil {
		return nil, err
	}
	cv := cave.New(seed, gen, store)
	cv.MaxFloor = c.Cave.MaxFloor
	return cv, nil
}
