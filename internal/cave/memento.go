package cave

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

// ErrNoMemento is returned by a MementoStore when a floor was never saved.
var ErrNoMemento = errors.New("no memento for floor")

// FloorMemento is a saved floor. Restoring it reproduces the level exactly,
// including rocks mined and enemies that moved, without re-rolling anything.
type FloorMemento struct {
	Floor       int               `yaml:"floor"`
	Seed        int64             `yaml:"seed"`
	Width       int               `yaml:"width"`
	Height      int               `yaml:"height"`
	Rows        []string          `yaml:"rows"`
	Spawn       grid.Point        `yaml:"spawn"`
	HasSpawn    bool              `yaml:"has_spawn"`
	Placements  []spawn.Placement `yaml:"placements"`
	GeneratedAt time.Time         `yaml:"generated_at"`
	SavedAt     time.Time         `yaml:"saved_at"`
}

// Snapshot captures a level. The memento shares nothing with it.
func Snapshot(l *Level) *FloorMemento {
	return &FloorMemento{
		Floor:       l.Floor,
		Seed:        l.Seed,
		Width:       l.Grid.Width(),
		Height:      l.Grid.Height(),
		Rows:        l.Grid.Rows(),
		Spawn:       l.Spawn,
		HasSpawn:    l.HasSpawn,
		Placements:  append([]spawn.Placement(nil), l.Placements...),
		GeneratedAt: l.Generated,
		SavedAt:     time.Now(),
	}
}

// MementoStore keeps one memento per (cave, floor).
type MementoStore interface {
	Save(caveSeed int64, m *FloorMemento) error
	Load(caveSeed int64, floor int) (*FloorMemento, error) // ErrNoMemento if absent
	Delete(caveSeed int64, floor int) error
	Floors(caveSeed int64) ([]int, error)
}

// CaveLister is implemented by stores that can enumerate the caves they hold.
type CaveLister interface {
	Caves() ([]int64, error)
}

type mementoKey struct {
	cave  int64
	floor int
}

// MemoryStore is a MementoStore that lives for the session.
type MemoryStore struct {
	mementos map[mementoKey]*FloorMemento
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mementos: make(map[mementoKey]*FloorMemento)}
}

func (s *MemoryStore) Save(caveSeed int64, m *FloorMemento) error {
	if m == nil {
		return fmt.Errorf("nil memento")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mementos[mementoKey{caveSeed, m.Floor}] = m
	return nil
}

func (s *MemoryStore) Load(caveSeed int64, floor int) (*FloorMemento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mementos[mementoKey{caveSeed, floor}]
	if !ok {
		return nil, fmt.Errorf("floor %d: %w", floor, ErrNoMemento)
	}
	return m, nil
}

func (s *MemoryStore) Delete(caveSeed int64, floor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mementos, mementoKey{caveSeed, floor})
	return nil
}

func (s *MemoryStore) Floors(caveSeed int64) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var floors []int
	for k := range s.mementos {
		if k.cave == caveSeed {
			floors = append(floors, k.floor)
		}
	}
	sort.Ints(floors)
	return floors, nil
}

func (s *MemoryStore) Caves() ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]bool)
	var caves []int64
	for k := range s.mementos {
		if !seen[k.cave] {
			seen[k.cave] = true
			caves = append(caves, k.cave)
		}
	}
	slices.Sort(caves)
	return caves, nil
}
