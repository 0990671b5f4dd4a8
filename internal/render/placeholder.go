package render

import (
	"hash/fnv"
	"image"
	"image/color"

	"github.com/lawnchairsociety/deepcave/internal/rulecell"
)

// Palette for generated sheets.
var (
	ColorWall     = color.RGBA{0x5a, 0x4a, 0x3c, 0xff}
	ColorFloor    = color.RGBA{0x2a, 0x24, 0x20, 0xff}
	ColorDontCare = color.RGBA{0x44, 0x3b, 0x33, 0xff}
	ColorFace     = color.RGBA{0x7a, 0x62, 0x4c, 0xff}
)

// Placeholder draws a stand-in sheet for rule metadata whose image is missing.
// Each rule sprite shows its first pattern as a 3x3 block diagram, so the
// resolved orientation is visible on screen. Named extras get flat colors.
func Placeholder(md *rulecell.Metadata) *image.RGBA {
	size := md.TileSize
	if size <= 0 {
		size = rulecell.DefaultTileSize
	}

	cols, rows := 1, 1
	grow := func(x, y int) {
		cols = max(cols, x+1)
		rows = max(rows, y+1)
	}
	for _, t := range md.Tiles {
		grow(t.Source.X, t.Source.Y)
	}
	for _, p := range md.Extras {
		grow(p.X, p.Y)
	}

	img := image.NewRGBA(image.Rect(0, 0, cols*size, rows*size))

	for _, t := range md.Tiles {
		if len(t.Patterns) == 0 {
			continue
		}
		drawPattern(img, SourceRect(t.Source, size), t.Patterns[0])
	}
	for name, p := range md.Extras {
		r := SourceRect(p, size)
		fill(img, r, extraColor(name))
		if len(name) > 5 && name[:5] == "face_" {
			// Dark top edge marks where the wall meets the face.
			fill(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+max(1, size/8)), ColorWall)
		}
	}
	return img
}

func drawPattern(img *image.RGBA, r image.Rectangle, p rulecell.Pattern) {
	cell := r.Dx() / 3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			c := ColorDontCare
			switch {
			case row == 1 && col == 1:
				c = ColorWall
			case p[row][col] == rulecell.Present:
				c = ColorWall
			case p[row][col] == rulecell.Absent:
				c = ColorFloor
			}
			x0 := r.Min.X + col*cell
			y0 := r.Min.Y + row*cell
			x1, y1 := x0+cell, y0+cell
			// The last row and column absorb the remainder.
			if col == 2 {
				x1 = r.Max.X
			}
			if row == 2 {
				y1 = r.Max.Y
			}
			fill(img, image.Rect(x0, y0, x1, y1), c)
		}
	}
}

func extraColor(name string) color.RGBA {
	switch {
	case name == "floor":
		return ColorFloor
	case len(name) > 5 && name[:5] == "face_":
		return ColorFace
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return color.RGBA{uint8(0x60 + v%0x80), uint8(0x60 + (v>>8)%0x80), uint8(0x60 + (v>>16)%0x80), 0xff}
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
