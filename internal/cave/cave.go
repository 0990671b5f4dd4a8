package cave

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lawnchairsociety/deepcave/internal/logger"
)

// ErrNotInCave is returned when a move needs a current floor and there is none.
var ErrNotInCave = errors.New("not in the cave")

// ErrBottomFloor is returned when descending past the deepest floor.
var ErrBottomFloor = errors.New("already on the deepest floor")

// Cave is one seeded dungeon. Each floor is built the first time it is entered
// and restored from its memento on every later visit.
type Cave struct {
	Seed     int64
	MaxFloor int // 0 = unlimited

	gen     *Generator
	store   MementoStore
	current *Level
	mu      sync.Mutex
}

// New creates a cave over a generator and a memento store.
func New(seed int64, gen *Generator, store MementoStore) *Cave {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cave{Seed: seed, gen: gen, store: store}
}

// Current returns the floor the player is on, or nil outside the cave.
func (c *Cave) Current() *Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Store returns the memento store backing this cave.
func (c *Cave) Store() MementoStore {
	return c.store
}

// Enter moves to a floor, saving the floor being left. It reports whether the
// floor was restored from a memento rather than built.
func (c *Cave) Enter(floor int) (*Level, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enterLocked(floor)
}

func (c *Cave) enterLocked(floor int) (*Level, bool, error) {
	if floor < 1 {
		return nil, false, fmt.Errorf("invalid floor %d", floor)
	}
	if c.MaxFloor > 0 && floor > c.MaxFloor {
		return nil, false, fmt.Errorf("floor %d: %w", floor, ErrBottomFloor)
	}
	if c.current != nil && c.current.Floor == floor {
		return c.current, false, nil
	}

	m, err := c.store.Load(c.Seed, floor)
	var (
		level    *Level
		restored bool
	)
	switch {
	case err == nil:
		level, err = c.gen.Restore(m)
		restored = true
	case errors.Is(err, ErrNoMemento):
		level, err = c.gen.Build(floor, FloorSeed(c.Seed, floor))
	default:
		return nil, false, fmt.Errorf("failed to load floor %d: %w", floor, err)
	}
	if err != nil {
		return nil, false, err
	}

	if err := c.saveLocked(); err != nil {
		return nil, false, err
	}
	c.current = level
	logger.Info("Entered cave floor", "cave", c.Seed, "floor", floor, "restored", restored)
	return level, restored, nil
}

// Leave saves the current floor and exits the cave.
func (c *Cave) Leave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ErrNotInCave
	}
	if err := c.saveLocked(); err != nil {
		return err
	}
	logger.Info("Left cave", "cave", c.Seed, "floor", c.current.Floor)
	c.current = nil
	return nil
}

// Descend goes one floor down.
func (c *Cave) Descend() (*Level, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, false, ErrNotInCave
	}
	return c.enterLocked(c.current.Floor + 1)
}

// Ascend climbs the rope one floor up. From floor 1 it leaves the cave and
// returns a nil level.
func (c *Cave) Ascend() (*Level, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, false, ErrNotInCave
	}
	if c.current.Floor == 1 {
		if err := c.saveLocked(); err != nil {
			return nil, false, err
		}
		c.current = nil
		return nil, false, nil
	}
	return c.enterLocked(c.current.Floor - 1)
}

// Save stores a memento of the current floor without leaving it.
func (c *Cave) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// Reset forgets a floor's memento so the next visit builds it fresh.
func (c *Cave) Reset(floor int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Floor == floor {
		return fmt.Errorf("cannot reset floor %d while on it", floor)
	}
	return c.store.Delete(c.Seed, floor)
}

func (c *Cave) saveLocked() error {
	if c.current == nil {
		return nil
	}
	if err := c.store.Save(c.Seed, Snapshot(c.current)); err != nil {
		return fmt.Errorf("failed to save floor %d: %w", c.current.Floor, err)
	}
	logger.Debug("Saved floor memento", "cave", c.Seed, "floor", c.current.Floor)
	return nil
}
