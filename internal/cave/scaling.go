package cave

import "github.com/lawnchairsociety/deepcave/internal/entity"

// Scaling contains difficulty formulas for cave floors

// EnemyHP returns max HP for an enemy kind on a floor.
// Formula: base_hp + (floor-1)/5, so slimes gain a point every 5 floors.
func EnemyHP(kind string, floor int) int {
	def, ok := entity.LookupEnemy(kind)
	if !ok {
		return 1
	}
	if floor <= 1 {
		return def.MaxHP
	}
	return def.MaxHP + (floor-1)/5
}

// Tier groups floors by difficulty
func Tier(floor int) int {
	switch {
	case floor <= 0:
		return 0 // surface
	case floor <= 5:
		return 1
	case floor <= 10:
		return 2
	case floor <= 20:
		return 3
	default:
		return 4
	}
}
