package entity

import (
	"fmt"

	"github.com/lawnchairsociety/deepcave/internal/grid"
)

// Entity is anything placed on a floor tile.
type Entity interface {
	Kind() string
	Tile() grid.Point
	ZOrder() int
}

// The rope sits under everything; within a row props draw under actors.
const ropeZ = -1

// ZByOrder orders entities for drawing.
func ZByOrder(e Entity) int {
	return e.ZOrder()
}

// Prop is a static object: a rock, an ore vein or the rope out of the floor.
type Prop struct {
	kind    string
	Variant string
	At      grid.Point
}

// NewProp creates a prop. variant is the rock type for rocks, empty otherwise.
func NewProp(kind, variant string, at grid.Point) *Prop {
	return &Prop{kind: kind, Variant: variant, At: at}
}

func (p *Prop) Kind() string     { return p.kind }
func (p *Prop) Tile() grid.Point { return p.At }
func (p *Prop) String() string   { return fmt.Sprintf("%s(%s)@%v", p.kind, p.Variant, p.At) }

// IsRope reports whether this prop is the way back up.
func (p *Prop) IsRope() bool { return p.kind == KindRope }

func (p *Prop) ZOrder() int {
	if p.IsRope() {
		return ropeZ
	}
	return p.At.Y * 2
}

// Kinds known to the world adapter.
const (
	KindRope   = "rope"
	KindRock   = "rock"
	KindPlayer = "player"
)

// EnemyDef holds an enemy kind's base stats.
type EnemyDef struct {
	Kind  string
	MaxHP int
	Speed float64
}

var enemyDefs = map[string]EnemyDef{
	"slime":  {Kind: "slime", MaxHP: 3, Speed: 1},
	"bat":    {Kind: "bat", MaxHP: 2, Speed: 2},
	"beetle": {Kind: "beetle", MaxHP: 6, Speed: 0.5},
}

// LookupEnemy returns the base stats for an enemy kind.
func LookupEnemy(kind string) (EnemyDef, bool) {
	def, ok := enemyDefs[kind]
	return def, ok
}

// Enemy is a mobile hostile. It never blocks a tile.
type Enemy struct {
	kind  string
	At    grid.Point
	HP    int
	MaxHP int
	Speed float64
}

// NewEnemy creates an enemy from def with maxHP hit points.
func NewEnemy(def EnemyDef, at grid.Point, maxHP int) *Enemy {
	return &Enemy{kind: def.Kind, At: at, HP: maxHP, MaxHP: maxHP, Speed: def.Speed}
}

func (e *Enemy) Kind() string     { return e.kind }
func (e *Enemy) Tile() grid.Point { return e.At }
func (e *Enemy) ZOrder() int      { return e.At.Y*2 + 1 }

// Damage lowers HP and reports whether the enemy died.
func (e *Enemy) Damage(amount int) bool {
	e.HP -= amount
	if e.HP < 0 {
		e.HP = 0
	}
	return e.HP == 0
}

// Player is the one entity that survives floor changes.
type Player struct {
	At grid.Point
}

func (p *Player) Kind() string     { return KindPlayer }
func (p *Player) Tile() grid.Point { return p.At }
func (p *Player) ZOrder() int      { return p.At.Y*2 + 1 }
