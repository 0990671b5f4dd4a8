package cave

import (
	"fmt"

	"github.com/lawnchairsociety/deepcave/internal/entity"
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

// World keeps the live entities of the current floor for the game loop.
// Level changes are applied through the collection's after-render queue, so a
// floor swap never happens in the middle of an update or draw pass.
type World struct {
	Entities *entity.Collection[entity.Entity]
	Player   *entity.Player
	floor    int
}

// NewWorld creates a world holding only the player.
func NewWorld() *World {
	w := &World{
		Entities: entity.NewCollection(entity.ZByOrder),
		Player:   &entity.Player{},
	}
	w.Entities.AddInstantly(w.Player)
	return w
}

// Floor returns the floor the entities currently belong to, 0 before the first swap.
func (w *World) Floor() int {
	return w.floor
}

// Build turns placements into entities. Enemy HP scales with the floor.
func Build(placements []spawn.Placement, floor int) ([]entity.Entity, error) {
	out := make([]entity.Entity, 0, len(placements))
	for _, p := range placements {
		switch p.Category {
		case spawn.CategoryRope:
			out = append(out, entity.NewProp(entity.KindRope, "", p.Tile))
		case spawn.CategoryRock:
			out = append(out, entity.NewProp(entity.KindRock, p.Kind, p.Tile))
		case spawn.CategoryEnemy:
			def, ok := entity.LookupEnemy(p.Kind)
			if !ok {
				return nil, fmt.Errorf("unknown enemy kind %q at %v", p.Kind, p.Tile)
			}
			out = append(out, entity.NewEnemy(def, p.Tile, EnemyHP(p.Kind, floor)))
		default:
			return nil, fmt.Errorf("unknown placement category %q at %v", p.Category, p.Tile)
		}
	}
	return out, nil
}

// Regenerate schedules a swap to level at the end of the next flush: everything
// but the player is cleared, the level's entities are added and the player is
// moved to the rope.
func (w *World) Regenerate(level *Level) error {
	built, err := Build(level.Placements, level.Floor)
	if err != nil {
		return err
	}
	w.Entities.DoAfterRender(func() {
		w.Entities.Clear()
		w.Player.At = level.Spawn
		w.Entities.AddInstantly(w.Player)
		w.Entities.AddAll(built...)
		w.floor = level.Floor
	})
	return nil
}

// Tick runs one update pass over the live entities and then flushes staged changes.
func (w *World) Tick(update func(entity.Entity)) {
	if update != nil {
		w.Entities.Each(update)
	}
	w.Entities.Flush()
}

// Sync writes the live enemies and props back into level's placements so the
// next snapshot captures moved and killed enemies.
func (w *World) Sync(level *Level) {
	if w.floor != level.Floor {
		return
	}
	placements := make([]spawn.Placement, 0, len(level.Placements))
	var enemies []spawn.Placement
	w.Entities.Each(func(e entity.Entity) {
		switch v := e.(type) {
		case *entity.Prop:
			cat := spawn.CategoryRock
			kind := v.Variant
			if v.IsRope() {
				cat, kind = spawn.CategoryRope, spawn.CategoryRope.String()
			}
			placements = append(placements, spawn.Placement{Tile: v.At, Category: cat, Kind: kind})
		case *entity.Enemy:
			if v.HP > 0 {
				enemies = append(enemies, spawn.Placement{Tile: v.At, Category: spawn.CategoryEnemy, Kind: v.Kind()})
			}
		}
	})
	level.Placements = append(placements, enemies...)
}

// Mine removes the rock at p from level and schedules its prop for removal on
// the next flush.
func (w *World) Mine(level *Level, p grid.Point) (spawn.Placement, error) {
	removed, err := level.RemoveRock(p)
	if err != nil {
		return removed, err
	}
	if w.floor != level.Floor {
		return removed, nil
	}
	for _, e := range w.Entities.Items() {
		if prop, ok := e.(*entity.Prop); ok && !prop.IsRope() && prop.At == p {
			w.Entities.Remove(e)
			break
		}
	}
	return removed, nil
}
