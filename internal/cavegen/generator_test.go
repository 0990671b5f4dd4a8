package cavegen

import (
	"errors"
	"testing"

	"github.com/lawnchairsociety/deepcave/internal/grid"
)

func smallParams(seed int64) Params {
	p := DefaultParams(seed)
	p.Width = 60
	p.Height = 40
	return p
}

func TestGenerateDeterministic(t *testing.T) {
	for _, seed := range []int64{1, 42, 12345, -7} {
		a, err := Generate(smallParams(seed))
		if err != nil {
			t.Fatalf("Generate(seed=%d) failed: %v", seed, err)
		}
		b, err := Generate(smallParams(seed))
		if err != nil {
			t.Fatalf("Generate(seed=%d) failed: %v", seed, err)
		}
		if !a.Equal(b) {
			t.Errorf("Seed %d: two generations differ", seed)
		}
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	a, _ := Generate(smallParams(1))
	b, _ := Generate(smallParams(2))
	if a.Equal(b) {
		t.Error("Expected different seeds to produce different caves")
	}
}

func TestGenerateBorderClosed(t *testing.T) {
	for _, seed := range []int64{3, 99, 2024} {
		p := smallParams(seed)
		p.FillPercent = 0.1
		g, err := Generate(p)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		w, h := g.Width(), g.Height()
		for x := 0; x < w; x++ {
			if !g.Occupied(x, 0) || !g.Occupied(x, h-1) {
				t.Fatalf("Seed %d: border open at column %d", seed, x)
			}
		}
		for y := 0; y < h; y++ {
			if !g.Occupied(0, y) || !g.Occupied(w-1, y) {
				t.Fatalf("Seed %d: border open at row %d", seed, y)
			}
		}
	}
}

func TestGenerateTagsCaveWall(t *testing.T) {
	g, _ := Generate(smallParams(5))
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Occupied(x, y) && g.Group(x, y) != grid.GroupCaveWall {
				t.Fatalf("Cell (%d,%d) group = %v, want %v", x, y, g.Group(x, y), grid.GroupCaveWall)
			}
		}
	}
}

func TestGenerateFillExtremes(t *testing.T) {
	p := smallParams(8)
	p.FillPercent = 1
	full, _ := Generate(p)
	if n := full.CountOccupied(); n != p.Width*p.Height {
		t.Errorf("Full fill: occupied = %d, want %d", n, p.Width*p.Height)
	}

	p.FillPercent = 0
	p.SmoothingIterations = 0
	empty, _ := Generate(p)
	border := 2*p.Width + 2*p.Height - 4
	if n := empty.CountOccupied(); n != border {
		t.Errorf("Zero fill: occupied = %d, want border only (%d)", n, border)
	}
}

func TestSmoothUsesSnapshot(t *testing.T) {
	// A vertical 3-cell bar inside a 5x5 grid. With threshold 3 an in-place
	// pass would let updated cells feed later ones; a snapshot pass must not.
	g, _ := grid.New(5, 5)
	for y := 1; y <= 3; y++ {
		g.Set(2, y, grid.GroupCaveWall)
	}

	next := smooth(g, 3)

	// (1,1): neighbors (2,1),(2,2) + out of bounds none -> 2 walls -> open
	if next.Occupied(1, 1) {
		t.Error("Expected (1,1) open after smoothing")
	}
	// (1,2): neighbors (2,1),(2,2),(2,3) -> 3 walls -> occupied
	if !next.Occupied(1, 2) {
		t.Error("Expected (1,2) occupied after smoothing")
	}
	// (2,2): neighbors (2,1),(2,3) -> 2 walls -> open
	if next.Occupied(2, 2) {
		t.Error("Expected (2,2) open after smoothing")
	}
	// Corners see 5 out-of-bounds neighbors.
	if !next.Occupied(0, 0) {
		t.Error("Expected corner (0,0) occupied after smoothing")
	}
	// Source grid untouched.
	if !g.Occupied(2, 2) || g.Occupied(1, 2) {
		t.Error("smooth modified its input grid")
	}
}

func TestCountWallNeighborsOutOfBounds(t *testing.T) {
	g, _ := grid.New(3, 3)
	tests := []struct {
		x, y int
		want int
	}{
		{0, 0, 5},
		{1, 0, 3},
		{1, 1, 0},
	}
	for _, tt := range tests {
		if got := countWallNeighbors(g, tt.x, tt.y); got != tt.want {
			t.Errorf("countWallNeighbors(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Params)
		field string
	}{
		{"zero width", func(p *Params) { p.Width = 0 }, "width"},
		{"negative height", func(p *Params) { p.Height = -3 }, "height"},
		{"fill above one", func(p *Params) { p.FillPercent = 1.5 }, "fill_percent"},
		{"negative iterations", func(p *Params) { p.SmoothingIterations = -1 }, "smoothing_iterations"},
		{"threshold nine", func(p *Params) { p.WallThreshold = 9 }, "wall_threshold"},
		{"negative region", func(p *Params) { p.MinRegionSize = -1 }, "min_region_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams(1)
			tt.mod(&p)
			_, err := Generate(p)
			var pe *ParamError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected *ParamError, got %v", err)
			}
			if pe.Field != tt.field {
				t.Errorf("ParamError.Field = %q, want %q", pe.Field, tt.field)
			}
		})
	}
}

func TestMinRegionSizeFillsPockets(t *testing.T) {
	p := smallParams(77)
	p.MinRegionSize = 20
	g, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, region := range OpenRegions(g) {
		if len(region) < p.MinRegionSize {
			t.Errorf("Region %d has %d cells, want >= %d", i, len(region), p.MinRegionSize)
		}
	}
}

func TestOpenRegions(t *testing.T) {
	g, err := grid.FromRows([]string{
		"111111",
		"1..1.1",
		"1..1.1",
		"111111",
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	regions := OpenRegions(g)
	if len(regions) != 2 {
		t.Fatalf("OpenRegions() returned %d regions, want 2", len(regions))
	}
	if len(regions[0]) != 4 || len(regions[1]) != 2 {
		t.Errorf("Region sizes = %d, %d, want 4, 2", len(regions[0]), len(regions[1]))
	}
	if regions[0][0] != grid.Pt(1, 1) {
		t.Errorf("First region starts at %v, want (1,1)", regions[0][0])
	}
}
