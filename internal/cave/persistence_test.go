package cave

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/deepcave/internal/entity"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

func testStores(t *testing.T) map[string]MementoStore {
	dir, err := NewDirStore(filepath.Join(t.TempDir(), "floors"))
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	return map[string]MementoStore{
		"memory": NewMemoryStore(),
		"dir":    dir,
	}
}

func TestMementoStores(t *testing.T) {
	level, err := testGenerator(t).Build(2, 77)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	m := Snapshot(level)

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(5, 2); !errors.Is(err, ErrNoMemento) {
				t.Errorf("Load() before save error = %v, want ErrNoMemento", err)
			}

			if err := store.Save(5, m); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			other := *m
			other.Floor = 4
			if err := store.Save(-1, &other); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			got, err := store.Load(5, 2)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(got.Rows, m.Rows) || !samePlacements(got.Placements, m.Placements) {
				t.Error("loaded memento differs from the saved one")
			}
			if got.Spawn != m.Spawn || got.Seed != m.Seed {
				t.Errorf("Spawn/Seed = %v/%d, want %v/%d", got.Spawn, got.Seed, m.Spawn, m.Seed)
			}

			floors, err := store.Floors(5)
			if err != nil || !reflect.DeepEqual(floors, []int{2}) {
				t.Errorf("Floors(5) = %v, %v, want [2]", floors, err)
			}

			lister, ok := store.(CaveLister)
			if !ok {
				t.Fatal("store does not list caves")
			}
			caves, err := lister.Caves()
			if err != nil || !reflect.DeepEqual(caves, []int64{-1, 5}) {
				t.Errorf("Caves() = %v, %v, want [-1 5]", caves, err)
			}

			if err := store.Delete(5, 2); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := store.Delete(5, 2); err != nil {
				t.Errorf("Delete of a missing floor = %v, want nil", err)
			}
			if _, err := store.Load(5, 2); !errors.Is(err, ErrNoMemento) {
				t.Errorf("Load() after delete error = %v, want ErrNoMemento", err)
			}
		})
	}
}

func TestDirStoreLayout(t *testing.T) {
	root := t.TempDir()
	store, err := NewDirStore(root)
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	level, _ := testGenerator(t).Build(3, 1)
	if err := store.Save(12, Snapshot(level)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	want := filepath.Join(root, "cave_12", "floor_3.yaml")
	if store.Path(12, 3) != want {
		t.Errorf("Path() = %q, want %q", store.Path(12, 3), want)
	}
	if !MementoFileExists(want) {
		t.Fatalf("memento file %s not written", want)
	}

	// Stray files are ignored when listing.
	os.WriteFile(filepath.Join(root, "cave_12", "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(root, "cave_99"), []byte("x"), 0644)
	floors, _ := store.Floors(12)
	if !reflect.DeepEqual(floors, []int{3}) {
		t.Errorf("Floors() = %v, want [3]", floors)
	}
	caves, _ := store.Caves()
	if !reflect.DeepEqual(caves, []int64{12}) {
		t.Errorf("Caves() = %v, want [12]", caves)
	}
}

func TestUnmarshalMementoRejectsEmpty(t *testing.T) {
	if _, err := UnmarshalMemento([]byte("floor: 3\n")); err == nil {
		t.Error("Expected error for a memento without rows")
	}
	if _, err := UnmarshalMemento([]byte("rows: [unterminated")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestWorldMine(t *testing.T) {
	level, _ := testGenerator(t).Build(9, 31)
	var rock spawn.Placement
	found := false
	for _, p := range level.Placements {
		if p.Category == spawn.CategoryRock {
			rock, found = p, true
			break
		}
	}
	if !found {
		t.Skip("no rocks on this floor")
	}

	w := NewWorld()
	if err := w.Regenerate(level); err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	w.Tick(nil)
	before := w.Entities.Len()

	if _, err := w.Mine(level, rock.Tile); err != nil {
		t.Fatalf("Mine failed: %v", err)
	}
	if w.Entities.Len() != before {
		t.Error("rock prop removed before the flush")
	}
	w.Tick(nil)
	if w.Entities.Len() != before-1 {
		t.Errorf("entities = %d after flush, want %d", w.Entities.Len(), before-1)
	}
	for _, e := range w.Entities.Items() {
		if p, ok := e.(*entity.Prop); ok && p.At == rock.Tile {
			t.Errorf("prop %v still live after mining", p)
		}
	}

	if _, err := w.Mine(level, rock.Tile); err == nil {
		t.Error("Expected error mining the same tile twice")
	}
}
