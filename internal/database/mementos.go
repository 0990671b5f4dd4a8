package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

// ErrNotFound is returned by Load for a floor that was never saved.
var ErrNotFound = cave.ErrNoMemento

// MementoStore keeps floor mementos in the floor_mementos table as YAML
// documents. It implements cave.MementoStore.
type MementoStore struct {
	d *Database
}

var (
	_ cave.MementoStore = (*MementoStore)(nil)
	_ cave.CaveLister   = (*MementoStore)(nil)
)

// Mementos returns the memento store backed by this database.
func (d *Database) Mementos() *MementoStore {
	return &MementoStore{d: d}
}

// Save inserts or replaces the memento for (caveSeed, m.Floor).
func (s *MementoStore) Save(caveSeed int64, m *cave.FloorMemento) error {
	if m == nil {
		return fmt.Errorf("nil memento")
	}
	data, err := cave.MarshalMemento(m)
	if err != nil {
		return err
	}

	rocks, enemies := 0, 0
	for _, p := range m.Placements {
		switch p.Category {
		case spawn.CategoryRock:
			rocks++
		case spawn.CategoryEnemy:
			enemies++
		}
	}

	savedAt := m.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	query := s.d.qb.Build(`INSERT INTO floor_mementos (cave_seed, floor, data, rocks, enemies, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (cave_seed, floor) DO UPDATE SET
			data = excluded.data,
			rocks = excluded.rocks,
			enemies = excluded.enemies,
			saved_at = excluded.saved_at`)
	if _, err := s.d.db.Exec(query, caveSeed, m.Floor, string(data), rocks, enemies, savedAt.UTC()); err != nil {
		return fmt.Errorf("failed to save floor memento: %w", err)
	}
	return nil
}

// Load returns the memento for a floor, or an error wrapping cave.ErrNoMemento.
func (s *MementoStore) Load(caveSeed int64, floor int) (*cave.FloorMemento, error) {
	var data string
	query := s.d.qb.Build("SELECT data FROM floor_mementos WHERE cave_seed = ? AND floor = ?")
	err := s.d.db.QueryRow(query, caveSeed, floor).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("floor %d: %w", floor, cave.ErrNoMemento)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load floor memento: %w", err)
	}
	return cave.UnmarshalMemento([]byte(data))
}

// Delete removes a floor's memento. Deleting a missing memento is not an error.
func (s *MementoStore) Delete(caveSeed int64, floor int) error {
	query := s.d.qb.Build("DELETE FROM floor_mementos WHERE cave_seed = ? AND floor = ?")
	if _, err := s.d.db.Exec(query, caveSeed, floor); err != nil {
		return fmt.Errorf("failed to delete floor memento: %w", err)
	}
	return nil
}

// Floors lists the saved floors of a cave in ascending order.
func (s *MementoStore) Floors(caveSeed int64) ([]int, error) {
	query := s.d.qb.Build("SELECT floor FROM floor_mementos WHERE cave_seed = ? ORDER BY floor")
	rows, err := s.d.db.Query(query, caveSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to list floor mementos: %w", err)
	}
	defer rows.Close()

	var floors []int
	for rows.Next() {
		var f int
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan floor: %w", err)
		}
		floors = append(floors, f)
	}
	return floors, rows.Err()
}

// Caves lists every cave with at least one saved floor.
func (s *MementoStore) Caves() ([]int64, error) {
	rows, err := s.d.db.Query("SELECT DISTINCT cave_seed FROM floor_mementos ORDER BY cave_seed")
	if err != nil {
		return nil, fmt.Errorf("failed to list caves: %w", err)
	}
	defer rows.Close()

	var caves []int64
	for rows.Next() {
		var seed int64
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan cave seed: %w", err)
		}
		caves = append(caves, seed)
	}
	return caves, rows.Err()
}

// FloorSummary is a row of the floor_mementos table without its document.
type FloorSummary struct {
	Floor   int
	Rocks   int
	Enemies int
}

// Summaries lists saved floors with their placement counts.
func (s *MementoStore) Summaries(caveSeed int64) ([]FloorSummary, error) {
	query := s.d.qb.Build("SELECT floor, rocks, enemies FROM floor_mementos WHERE cave_seed = ? ORDER BY floor")
	rows, err := s.d.db.Query(query, caveSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to list floor summaries: %w", err)
	}
	defer rows.Close()

	var out []FloorSummary
	for rows.Next() {
		var fs FloorSummary
		if err := rows.Scan(&fs.Floor, &fs.Rocks, &fs.Enemies); err != nil {
			return nil, fmt.Errorf("failed to scan floor summary: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}
