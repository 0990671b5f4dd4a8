// Package grid holds the fixed-size occupancy map a cave level is built on.
//
// Each cell is either open or occupied. An occupied cell carries the GroupID of
// the rule set that draws it, so walls of different kinds (natural cave walls,
// placed rocks) only connect visually to cells of their own group.
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupID identifies the rule group an occupied cell belongs to.
type GroupID uint8

const (
	GroupNone     GroupID = 0
	GroupCaveWall GroupID = 1
	GroupRock     GroupID = 2

	// MaxGroup is the largest group that survives Rows/FromRows (one base-36 digit).
	MaxGroup GroupID = 35
)

// String returns the group name
func (g GroupID) String() string {
	switch g {
	case GroupNone:
		return "none"
	case GroupCaveWall:
		return "cave_wall"
	case GroupRock:
		return "rock"
	default:
		return fmt.Sprintf("group_%d", uint8(g))
	}
}

// ParseGroup converts a group name back to a GroupID.
func ParseGroup(s string) (GroupID, error) {
	switch s {
	case "none", "":
		return GroupNone, nil
	case "cave_wall":
		return GroupCaveWall, nil
	case "rock":
		return GroupRock, nil
	}
	if rest, ok := strings.CutPrefix(s, "group_"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n > 0 && n <= int(MaxGroup) {
			return GroupID(n), nil
		}
	}
	return GroupNone, fmt.Errorf("unknown group: %q", s)
}

// Point is a tile coordinate. Y grows downward.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p offset by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// BoundsError reports an access outside the grid.
type BoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("grid: cell (%d,%d) out of bounds for %dx%d grid", e.X, e.Y, e.Width, e.Height)
}

// Grid is a width x height occupancy map. The zero value is not usable; use New.
type Grid struct {
	width  int
	height int
	group  []GroupID // row-major, GroupNone = open
}

// New creates an all-open grid.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		group:  make([]GroupID, width*height),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) is a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) index(x, y int) int {
	if !g.InBounds(x, y) {
		panic(&BoundsError{X: x, Y: y, Width: g.width, Height: g.height})
	}
	return y*g.width + x
}

// Occupied reports whether the cell is a wall or rock. Panics with *BoundsError outside the grid.
func (g *Grid) Occupied(x, y int) bool {
	return g.group[g.index(x, y)] != GroupNone
}

// Group returns the cell's group, GroupNone for open cells.
func (g *Grid) Group(x, y int) GroupID {
	return g.group[g.index(x, y)]
}

// Set assigns a group to the cell. GroupNone opens it.
func (g *Grid) Set(x, y int, group GroupID) {
	g.group[g.index(x, y)] = group
}

// Check returns a *BoundsError if p is outside the grid.
func (g *Grid) Check(p Point) error {
	if !g.InBounds(p.X, p.Y) {
		return &BoundsError{X: p.X, Y: p.Y, Width: g.width, Height: g.height}
	}
	return nil
}

// Solid is the collision query: occupied cells and everything beyond the edge are solid.
func (g *Grid) Solid(x, y int) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.group[y*g.width+x] != GroupNone
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, group: make([]GroupID, len(g.group))}
	copy(c.group, g.group)
	return c
}

// Equal reports whether both grids have the same size and cell contents.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.group {
		if g.group[i] != other.group[i] {
			return false
		}
	}
	return true
}

// OpenTiles lists the open cells in row-major order.
func (g *Grid) OpenTiles() []Point {
	var tiles []Point
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.group[y*g.width+x] == GroupNone {
				tiles = append(tiles, Point{X: x, Y: y})
			}
		}
	}
	return tiles
}

// CountOccupied returns the number of occupied cells.
func (g *Grid) CountOccupied() int {
	n := 0
	for _, c := range g.group {
		if c != GroupNone {
			n++
		}
	}
	return n
}

// Rows encodes the grid one string per row: '.' for open, the group in base 36 otherwise.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		sb.Reset()
		for x := 0; x < g.width; x++ {
			c := g.group[y*g.width+x]
			if c == GroupNone {
				sb.WriteByte('.')
			} else {
				sb.WriteString(strconv.FormatUint(uint64(c), 36))
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// FromRows decodes the output of Rows.
func FromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to decode")
	}
	g, err := New(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("row %d has width %d, want %d", y, len(row), g.width)
		}
		for x := 0; x < len(row); x++ {
			if row[x] == '.' {
				continue
			}
			v, err := strconv.ParseUint(row[x:x+1], 36, 8)
			if err != nil || v == 0 {
				return nil, fmt.Errorf("row %d col %d: invalid cell %q", y, x, row[x])
			}
			g.group[y*g.width+x] = GroupID(v)
		}
	}
	return g, nil
}

// String renders the grid with '#' for any occupied cell.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.group[y*g.width+x] == GroupNone {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
