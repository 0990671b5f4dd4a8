package main

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/database"
)

func memento(floor int) *cave.FloorMemento {
	return &cave.FloorMemento{Floor: floor, Width: 3, Height: 3, Rows: []string{"111", "1.1", "111"}}
}

func TestMigrate(t *testing.T) {
	src, err := cave.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	for _, f := range []int{1, 2, 5} {
		src.Save(7, memento(f))
	}
	src.Save(8, memento(1))

	db, err := database.Open(filepath.Join(t.TempDir(), "dst.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
	dst := db.Mementos()

	caves, _ := src.Caves()
	seen := map[int64][]int{}
	n, err := migrate(src, dst, caves, false, func(seed int64, floors []int) { seen[seed] = floors })
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if n != 4 {
		t.Errorf("migrated %d floors, want 4", n)
	}
	if !reflect.DeepEqual(seen[7], []int{1, 2, 5}) {
		t.Errorf("progress for cave 7 = %v", seen[7])
	}

	floors, _ := dst.Floors(7)
	if !reflect.DeepEqual(floors, []int{1, 2, 5}) {
		t.Errorf("destination floors = %v, want [1 2 5]", floors)
	}
	got, err := dst.Load(8, 1)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got.Rows, memento(1).Rows) {
		t.Errorf("Rows = %v", got.Rows)
	}
}

func TestMigrate_DryRun(t *testing.T) {
	src := cave.NewMemoryStore()
	src.Save(3, memento(1))
	dst := cave.NewMemoryStore()

	n, err := migrate(src, dst, []int64{3}, true, nil)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if n != 1 {
		t.Errorf("counted %d floors, want 1", n)
	}
	if _, err := dst.Load(3, 1); !errors.Is(err, cave.ErrNoMemento) {
		t.Errorf("dry run wrote to the destination: %v", err)
	}
}
