package database

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testMemento(floor int) *cave.FloorMemento {
	return &cave.FloorMemento{
		Floor:    floor,
		Seed:     int64(1000 + floor),
		Width:    4,
		Height:   3,
		Rows:     []string{"1111", "1.21", "1111"},
		Spawn:    grid.Pt(1, 1),
		HasSpawn: true,
		Placements: []spawn.Placement{
			{Tile: grid.Pt(1, 1), Category: spawn.CategoryRope, Kind: "rope"},
			{Tile: grid.Pt(2, 1), Category: spawn.CategoryRock, Kind: "gold"},
		},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SavedAt:     time.Date(2026, 1, 2, 3, 5, 0, 0, time.UTC),
	}
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM floor_mementos").Scan(&count); err != nil {
		t.Errorf("Failed to query floor_mementos table: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty table, got %d rows", count)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := Open(nestedPath)
	if err != nil {
		t.Fatalf("Failed to open database with nested path: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := OpenWithConfig(Config{Driver: "sqlite"}); err == nil {
		t.Error("Expected error for empty sqlite path")
	}
}

func TestMigration_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Mementos().Save(7, testMemento(1)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	db.Close()

	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	if _, err := db.Mementos().Load(7, 1); err != nil {
		t.Errorf("Memento lost across reopen: %v", err)
	}
}

func TestMigration_WALModeEnabled(t *testing.T) {
	db := openTestDB(t)

	var mode string
	if err := db.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestMementoStore_SaveLoad(t *testing.T) {
	store := openTestDB(t).Mementos()
	want := testMemento(3)

	if err := store.Save(42, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(42, 3)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Floor != want.Floor || got.Seed != want.Seed {
		t.Errorf("Load() floor/seed = %d/%d, want %d/%d", got.Floor, got.Seed, want.Floor, want.Seed)
	}
	if !reflect.DeepEqual(got.Rows, want.Rows) {
		t.Errorf("Rows = %v, want %v", got.Rows, want.Rows)
	}
	if !reflect.DeepEqual(got.Placements, want.Placements) {
		t.Errorf("Placements = %v, want %v", got.Placements, want.Placements)
	}
	if got.Spawn != want.Spawn || !got.HasSpawn {
		t.Errorf("Spawn = %v (%v), want %v", got.Spawn, got.HasSpawn, want.Spawn)
	}
}

func TestMementoStore_SaveReplaces(t *testing.T) {
	store := openTestDB(t).Mementos()

	first := testMemento(1)
	if err := store.Save(1, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := testMemento(1)
	second.Rows = []string{"1111", "1..1", "1111"}
	second.Placements = second.Placements[:1]
	if err := store.Save(1, second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	got, err := store.Load(1, 1)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got.Rows, second.Rows) {
		t.Errorf("Rows = %v, want replaced %v", got.Rows, second.Rows)
	}

	summaries, err := store.Summaries(1)
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Rocks != 0 {
		t.Errorf("Summaries() = %+v, want one floor with no rocks", summaries)
	}
}

func TestMementoStore_LoadMissing(t *testing.T) {
	store := openTestDB(t).Mementos()

	_, err := store.Load(1, 9)
	if !errors.Is(err, cave.ErrNoMemento) {
		t.Errorf("Load() error = %v, want ErrNoMemento", err)
	}
}

func TestMementoStore_CavesAreSeparate(t *testing.T) {
	store := openTestDB(t).Mementos()

	if err := store.Save(1, testMemento(1)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Load(2, 1); !errors.Is(err, cave.ErrNoMemento) {
		t.Errorf("Load() for other cave error = %v, want ErrNoMemento", err)
	}
}

func TestMementoStore_FloorsAndDelete(t *testing.T) {
	store := openTestDB(t).Mementos()

	for _, f := range []int{3, 1, 2} {
		if err := store.Save(5, testMemento(f)); err != nil {
			t.Fatalf("Save floor %d failed: %v", f, err)
		}
	}

	floors, err := store.Floors(5)
	if err != nil {
		t.Fatalf("Floors failed: %v", err)
	}
	if !reflect.DeepEqual(floors, []int{1, 2, 3}) {
		t.Errorf("Floors() = %v, want [1 2 3]", floors)
	}

	if err := store.Delete(5, 2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(5, 2); err != nil {
		t.Errorf("Deleting a missing memento should not fail: %v", err)
	}

	floors, _ = store.Floors(5)
	if !reflect.DeepEqual(floors, []int{1, 3}) {
		t.Errorf("Floors() after delete = %v, want [1 3]", floors)
	}

	summaries, err := store.Summaries(5)
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Rocks != 1 || summaries[0].Enemies != 0 {
		t.Errorf("Summaries() = %+v", summaries)
	}
}

func TestMementoStore_SaveNil(t *testing.T) {
	store := openTestDB(t).Mementos()
	if err := store.Save(1, nil); err == nil {
		t.Error("Expected error saving nil memento")
	}
}

func TestMementoStore_Caves(t *testing.T) {
	store := openTestDB(t).Mementos()

	caves, err := store.Caves()
	if err != nil {
		t.Fatalf("Caves failed: %v", err)
	}
	if len(caves) != 0 {
		t.Errorf("Caves() = %v on an empty database", caves)
	}

	for _, seed := range []int64{9, -3, 9} {
		if err := store.Save(seed, testMemento(len(caves)+1)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	store.Save(9, testMemento(2))

	caves, err = store.Caves()
	if err != nil {
		t.Fatalf("Caves failed: %v", err)
	}
	if !reflect.DeepEqual(caves, []int64{-3, 9}) {
		t.Errorf("Caves() = %v, want [-3 9]", caves)
	}
}
