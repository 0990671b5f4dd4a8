// Package ebiten draws render ops and floor entities with Ebiten.
package ebiten

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lawnchairsociety/deepcave/internal/entity"
	"github.com/lawnchairsociety/deepcave/internal/render"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
)

// Sheets maps sheet names to loaded sprite sheets.
type Sheets map[string]*ebiten.Image

// LoadSheets loads the image named by each rule file. A sheet whose image
// cannot be read is replaced by a generated placeholder.
func LoadSheets(mds ...*rulecell.Metadata) Sheets {
	sheets := make(Sheets, len(mds))
	for _, md := range mds {
		if md == nil {
			continue
		}
		if md.Image != "" {
			img, _, err := ebitenutil.NewImageFromFile(md.Image)
			if err == nil {
				sheets[md.Sheet] = img
				continue
			}
			log.Printf("Sheet %s: %v, using placeholder", md.Sheet, err)
		}
		sheets[md.Sheet] = ebiten.NewImageFromImage(render.Placeholder(md))
	}
	return sheets
}

// GeoM converts an affine transform to an Ebiten matrix.
func GeoM(m render.Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m.A)
	g.SetElement(0, 1, m.B)
	g.SetElement(0, 2, m.TX)
	g.SetElement(1, 0, m.C)
	g.SetElement(1, 1, m.D)
	g.SetElement(1, 2, m.TY)
	return g
}

// Draw executes ops onto dst. view maps world pixels to the screen.
// Ops on a sheet that was never loaded are skipped.
func Draw(dst *ebiten.Image, ops []render.DrawOp, sheets Sheets, view ebiten.GeoM) {
	opts := &ebiten.DrawImageOptions{}
	for _, op := range ops {
		sheet, ok := sheets[op.Sheet]
		if !ok {
			continue
		}
		sprite := sheet.SubImage(op.Src).(*ebiten.Image)
		opts.GeoM = GeoM(op.M)
		opts.GeoM.Concat(view)
		dst.DrawImage(sprite, opts)
	}
}

var (
	colorRope   = color.RGBA{0xc8, 0xa0, 0x50, 0xff}
	colorEnemy  = color.RGBA{0x60, 0xd0, 0x60, 0xff}
	colorPlayer = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
)

// DrawEntities draws markers for entities the tile layers do not cover, in
// z-order. Rocks are part of the resolved layer and are not drawn here.
func DrawEntities(dst *ebiten.Image, entities *entity.Collection[entity.Entity], size int, view ebiten.GeoM) {
	s := float64(size)
	entities.Each(func(e entity.Entity) {
		var clr color.Color
		inset := s / 4
		switch v := e.(type) {
		case *entity.Prop:
			if !v.IsRope() {
				return
			}
			clr, inset = colorRope, s*3/8
		case *entity.Enemy:
			clr = colorEnemy
		case *entity.Player:
			clr, inset = colorPlayer, s/8
		default:
			return
		}
		t := e.Tile()
		x0, y0 := view.Apply(float64(t.X)*s+inset, float64(t.Y)*s+inset)
		x1, y1 := view.Apply(float64(t.X+1)*s-inset, float64(t.Y+1)*s-inset)
		vector.DrawFilledRect(dst, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), clr, false)
	})
}
