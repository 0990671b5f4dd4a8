package cave

import (
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
)

// Named sprites the wall rule file must provide for the base layer.
const (
	spriteFloor       = "floor"
	spriteFaceSingle  = "face_single"
	spriteFaceLeft    = "face_left"
	spriteFaceRight   = "face_right"
	spriteFaceMiddle1 = "face_middle1"
	spriteFaceMiddle2 = "face_middle2"
)

var baseSprites = []string{
	spriteFloor, spriteFaceSingle, spriteFaceLeft, spriteFaceRight, spriteFaceMiddle1, spriteFaceMiddle2,
}

func checkBaseSprites(md *rulecell.Metadata) error {
	for _, name := range baseSprites {
		if _, ok := md.Extra(name); !ok {
			return &rulecell.ConfigError{Source: md.Sheet, Entry: name, Reason: "missing base layer sprite"}
		}
	}
	return nil
}

// hasFace reports whether (x, y) shows the front of the cave wall above it.
func hasFace(g *grid.Grid, x, y int) bool {
	if !g.InBounds(x, y) || g.Group(x, y) == grid.GroupCaveWall {
		return false
	}
	return g.InBounds(x, y-1) && g.Group(x, y-1) == grid.GroupCaveWall
}

// BaseLayer places a floor sprite under every cell that is not cave wall, plus a
// wall-face sprite where the cell above is cave wall. Faces join with faces
// beside them into runs: left end, alternating middles, right end.
func BaseLayer(g *grid.Grid, md *rulecell.Metadata) ([]rulecell.PlacedTile, error) {
	if err := checkBaseSprites(md); err != nil {
		return nil, err
	}

	var tiles []rulecell.PlacedTile
	place := func(x, y int, name string) {
		src, _ := md.Extra(name)
		tiles = append(tiles, rulecell.PlacedTile{At: grid.Pt(x, y), Sheet: md.Sheet, Source: src, Rule: name})
	}

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Group(x, y) == grid.GroupCaveWall {
				continue
			}
			place(x, y, spriteFloor)
			if !hasFace(g, x, y) {
				continue
			}

			left := hasFace(g, x-1, y)
			right := hasFace(g, x+1, y)
			switch {
			case !left && !right:
				place(x, y, spriteFaceSingle)
			case !left:
				place(x, y, spriteFaceLeft)
			case !right:
				place(x, y, spriteFaceRight)
			case x%2 == 0:
				place(x, y, spriteFaceMiddle1)
			default:
				place(x, y, spriteFaceMiddle2)
			}
		}
	}
	return tiles, nil
}
