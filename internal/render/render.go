// Package render turns resolved layers into backend-neutral draw operations.
// The ebiten subpackage executes them.
package render

import (
	"image"
	"math"

	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
)

// Affine is a 2D affine transform laid out like ebiten.GeoM:
//
//	x' = A*x + B*y + TX
//	y' = C*x + D*y + TY
type Affine struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Apply maps a point.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.TX, m.C*x + m.D*y + m.TY
}

// Then returns the transform that applies m and then n.
func (m Affine) Then(n Affine) Affine {
	return Affine{
		A:  n.A*m.A + n.B*m.C,
		B:  n.A*m.B + n.B*m.D,
		TX: n.A*m.TX + n.B*m.TY + n.TX,
		C:  n.C*m.A + n.D*m.C,
		D:  n.C*m.B + n.D*m.D,
		TY: n.C*m.TX + n.D*m.TY + n.TY,
	}
}

// Translate returns a translation.
func Translate(tx, ty float64) Affine {
	return Affine{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scale about the origin.
func Scale(sx, sy float64) Affine {
	return Affine{A: sx, D: sy}
}

// quarterTurn returns an exact clockwise rotation by n*90 degrees in screen
// space, where y grows downward.
func quarterTurn(n int) Affine {
	n = ((n % 4) + 4) % 4
	sin := [4]float64{0, 1, 0, -1}[n]
	cos := [4]float64{1, 0, -1, 0}[n]
	return Affine{A: cos, B: -sin, C: sin, D: cos}
}

// OrientationTransform maps a size x size sprite onto itself: mirror first,
// then rotate clockwise, both about the sprite's center.
func OrientationTransform(o rulecell.Orientation, size int) Affine {
	s := float64(size)
	m := Identity()
	if o.FlipH {
		m = m.Then(Affine{A: -1, D: 1, TX: s})
	}
	if o.FlipV {
		m = m.Then(Affine{A: 1, D: -1, TY: s})
	}
	if o.Rotation%4 != 0 {
		m = m.Then(Translate(-s/2, -s/2)).Then(quarterTurn(o.Rotation)).Then(Translate(s/2, s/2))
	}
	return m
}

// Radians returns the clockwise rotation angle of an orientation.
func Radians(o rulecell.Orientation) float64 {
	return float64(o.Rotation%4) * math.Pi / 2
}

// DrawOp draws one sprite: the Src rectangle of Sheet through M into world
// pixel space.
type DrawOp struct {
	Sheet string
	Src   image.Rectangle
	M     Affine
	At    grid.Point
}

// SourceRect returns the pixel rectangle of a sprite on its sheet.
func SourceRect(src grid.Point, size int) image.Rectangle {
	return image.Rect(src.X*size, src.Y*size, (src.X+1)*size, (src.Y+1)*size)
}

// Ops converts placed tiles to draw operations in the order given.
func Ops(tiles []rulecell.PlacedTile, size int) []DrawOp {
	ops := make([]DrawOp, len(tiles))
	for i, t := range tiles {
		ops[i] = DrawOp{
			Sheet: t.Sheet,
			Src:   SourceRect(t.Source, size),
			M:     OrientationTransform(t.Orientation, size).Then(Translate(float64(t.At.X*size), float64(t.At.Y*size))),
			At:    t.At,
		}
	}
	return ops
}

// FloorOps returns the draw list for a floor: base layer first, then the
// resolved wall and rock layer.
func FloorOps(base []rulecell.PlacedTile, layer *rulecell.Layer, size int) []DrawOp {
	ops := Ops(base, size)
	if layer != nil {
		ops = append(ops, Ops(layer.Tiles, size)...)
	}
	return ops
}

// Visible filters ops to those whose tile lies within view, in tiles.
func Visible(ops []DrawOp, view image.Rectangle) []DrawOp {
	out := ops[:0:0]
	for _, op := range ops {
		if image.Pt(op.At.X, op.At.Y).In(view) {
			out = append(out, op)
		}
	}
	return out
}
