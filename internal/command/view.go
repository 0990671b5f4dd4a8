package command

import (
	"fmt"
	"strconv"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/entity"
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
)

// Rect is a region of a floor in tile coordinates.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) contains(p grid.Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// parseRect reads "x y w h", clipped to the grid. No arguments means the whole grid.
func parseRect(args []string, g *grid.Grid) (Rect, error) {
	full := Rect{0, 0, g.Width(), g.Height()}
	if len(args) == 0 {
		return full, nil
	}
	if len(args) != 4 {
		return Rect{}, fmt.Errorf("expected x y w h, got %d values", len(args))
	}
	var v [4]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return Rect{}, fmt.Errorf("invalid number %q", a)
		}
		v[i] = n
	}
	r := Rect{v[0], v[1], v[2], v[3]}
	if r.W <= 0 || r.H <= 0 {
		return Rect{}, fmt.Errorf("empty region %dx%d", r.W, r.H)
	}
	if r.X < 0 {
		r.W += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.H += r.Y
		r.Y = 0
	}
	r.W = min(r.W, g.Width()-r.X)
	r.H = min(r.H, g.Height()-r.Y)
	if r.W <= 0 || r.H <= 0 {
		return Rect{}, fmt.Errorf("region outside the %dx%d floor", g.Width(), g.Height())
	}
	return r, nil
}

// Map legend.
const (
	glyphWall   = '#'
	glyphOpen   = '.'
	glyphRock   = 'o'
	glyphRope   = '^'
	glyphEnemy  = 'e'
	glyphPlayer = '@'
)

// MapView draws the floor: walls, rocks, then the live entities of w on top.
func MapView(level *cave.Level, w *cave.World, r Rect) []string {
	rows := make([][]byte, r.H)
	for y := range rows {
		row := make([]byte, r.W)
		for x := range row {
			switch level.Grid.Group(r.X+x, r.Y+y) {
			case grid.GroupNone:
				row[x] = glyphOpen
			case grid.GroupRock:
				row[x] = glyphRock
			default:
				row[x] = glyphWall
			}
		}
		rows[y] = row
	}

	plot := func(p grid.Point, c byte) {
		if r.contains(p) {
			rows[p.Y-r.Y][p.X-r.X] = c
		}
	}
	if w != nil && w.Floor() == level.Floor {
		// Items come back z-sorted, so later entities draw over earlier ones.
		for _, e := range w.Entities.Items() {
			switch v := e.(type) {
			case *entity.Prop:
				if v.IsRope() {
					plot(v.At, glyphRope)
				}
			case *entity.Enemy:
				plot(v.At, glyphEnemy)
			case *entity.Player:
				plot(v.At, glyphPlayer)
			}
		}
	} else if level.HasSpawn {
		plot(level.Spawn, glyphRope)
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = string(row)
	}
	return out
}

// TileView is a placed tile as sent to inspector clients.
type TileView struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Sheet    string `json:"sheet"`
	Rule     string `json:"rule"`
	SourceX  int    `json:"source_x"`
	SourceY  int    `json:"source_y"`
	Rotation int    `json:"rotation"`
	FlipH    bool   `json:"flip_h,omitempty"`
	FlipV    bool   `json:"flip_v,omitempty"`
}

func newTileView(t rulecell.PlacedTile) TileView {
	return TileView{
		X:        t.At.X,
		Y:        t.At.Y,
		Sheet:    t.Sheet,
		Rule:     t.Rule,
		SourceX:  t.Source.X,
		SourceY:  t.Source.Y,
		Rotation: t.Orientation.Rotation,
		FlipH:    t.Orientation.FlipH,
		FlipV:    t.Orientation.FlipV,
	}
}

// TileViews lists the resolved tiles inside r in row-major order.
func TileViews(level *cave.Level, r Rect) []TileView {
	var out []TileView
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			if t, ok := level.Layer.At(grid.Pt(x, y)); ok {
				out = append(out, newTileView(t))
			}
		}
	}
	return out
}
