package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/config"
	"github.com/lawnchairsociety/deepcave/internal/entity"
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/logger"
	"github.com/lawnchairsociety/deepcave/internal/render"
	ebitenrender "github.com/lawnchairsociety/deepcave/internal/render/ebiten"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	panSpeed     = 8.0
	wanderEvery  = 30 // frames between enemy steps
)

type Game struct {
	cave     *cave.Cave
	world    *cave.World
	level    *cave.Level
	sheets   ebitenrender.Sheets
	tileSize int
	ops      []render.DrawOp

	camX, camY float64
	zoom       float64
	frame      int
	rng        *rand.Rand
	status     string
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.camX -= panSpeed / g.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.camX += panSpeed / g.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		g.camY -= panSpeed / g.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		g.camY += panSpeed / g.zoom
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.zoom = min(g.zoom*2, 8)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.zoom = max(g.zoom/2, 0.25)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		g.move(g.cave.Descend)
	case inpututil.IsKeyJustPressed(ebiten.KeyComma):
		g.move(g.cave.Ascend)
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.world.Sync(g.level)
		if err := g.cave.Save(); err != nil {
			g.status = err.Error()
		} else {
			g.status = fmt.Sprintf("saved floor %d", g.level.Floor)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.mine(ebiten.CursorPosition())
	}

	g.frame++
	var update func(entity.Entity)
	if g.frame%wanderEvery == 0 {
		update = g.wander
	}
	g.world.Tick(update)
	return nil
}

// move switches floors through fn and schedules the entity swap.
func (g *Game) move(fn func() (*cave.Level, bool, error)) {
	g.world.Sync(g.level)
	level, restored, err := fn()
	if err != nil {
		g.status = err.Error()
		return
	}
	if level == nil {
		// Climbed out of floor 1; go straight back down.
		level, restored, err = g.cave.Enter(1)
		if err != nil {
			g.status = err.Error()
			return
		}
	}
	g.setLevel(level)
	g.status = fmt.Sprintf("floor %d (restored: %v)", level.Floor, restored)
}

func (g *Game) setLevel(level *cave.Level) {
	if err := g.world.Regenerate(level); err != nil {
		g.status = err.Error()
		return
	}
	g.level = level
	g.ops = render.FloorOps(level.Base, level.Layer, g.tileSize)
	s := float64(g.tileSize)
	g.camX = float64(level.Spawn.X)*s - screenWidth/(2*g.zoom)
	g.camY = float64(level.Spawn.Y)*s - screenHeight/(2*g.zoom)
}

func (g *Game) mine(sx, sy int) {
	view := g.view()
	view.Invert()
	wx, wy := view.Apply(float64(sx), float64(sy))
	s := float64(g.tileSize)
	p := grid.Pt(int(wx/s), int(wy/s))
	if wx < 0 || wy < 0 || !g.level.Grid.InBounds(p.X, p.Y) || g.level.Grid.Group(p.X, p.Y) != grid.GroupRock {
		return
	}
	removed, err := g.world.Mine(g.level, p)
	if err != nil {
		g.status = err.Error()
		return
	}
	g.ops = render.FloorOps(g.level.Base, g.level.Layer, g.tileSize)
	g.status = fmt.Sprintf("mined %s rock at %v", removed.Kind, p)
}

var steps = [4]grid.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

func (g *Game) wander(e entity.Entity) {
	enemy, ok := e.(*entity.Enemy)
	if !ok {
		return
	}
	next := enemy.At.Add(steps[g.rng.Intn(len(steps))])
	if g.level.Grid.InBounds(next.X, next.Y) && g.level.Walkable(next) {
		enemy.At = next
	}
}

func (g *Game) view() ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-g.camX, -g.camY)
	m.Scale(g.zoom, g.zoom)
	return m
}

func (g *Game) Draw(screen *ebiten.Image) {
	s := float64(g.tileSize) * g.zoom
	x0, y0 := int(g.camX*g.zoom/s)-1, int(g.camY*g.zoom/s)-1
	visible := image.Rect(x0, y0, x0+int(screenWidth/s)+3, y0+int(screenHeight/s)+3)

	view := g.view()
	ebitenrender.Draw(screen, render.Visible(g.ops, visible), g.sheets, view)
	ebitenrender.DrawEntities(screen, g.world.Entities, g.tileSize, view)

	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"floor %d  seed %d  enemies %d  rocks %d\nWASD pan  +/- zoom  . down  , up  click mine  F5 save\n%s",
		g.level.Floor, g.level.Seed, g.level.Count(spawn.CategoryEnemy), g.level.Count(spawn.CategoryRock), g.status))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	configFile := flag.String("config", "data/config.yaml", "Path to config YAML file")
	seed := flag.Int64("seed", 0, "Cave seed (default: cave.seed from config, or random)")
	floor := flag.Int("floor", 1, "Floor to open")
	flag.Parse()

	logConfig, _ := logger.LoadConfig(*configFile)
	logger.Initialize(logConfig)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	caveSeed := *seed
	if caveSeed == 0 {
		caveSeed = cfg.Cave.Seed
	}
	if caveSeed == 0 {
		caveSeed = time.Now().UnixNano()
	}

	gc, err := cfg.GeneratorConfig()
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}
	store, closer, err := cfg.OpenStore()
	if err != nil {
		log.Fatalf("Failed to open memento store: %v", err)
	}
	defer closer.Close()

	gen, err := cave.NewGenerator(gc)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}
	c := cave.New(caveSeed, gen, store)
	c.MaxFloor = cfg.Cave.MaxFloor
	level, _, err := c.Enter(*floor)
	if err != nil {
		log.Fatalf("Failed to enter floor %d: %v", *floor, err)
	}

	g := &Game{
		cave:     c,
		world:    cave.NewWorld(),
		sheets:   ebitenrender.LoadSheets(gc.Walls, gc.Rocks),
		tileSize: gc.Walls.TileSize,
		zoom:     2,
		rng:      rand.New(rand.NewSource(caveSeed)),
	}
	g.setLevel(level)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("deepcave - cave %d", caveSeed))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}

	g.world.Sync(g.level)
	if err := c.Leave(); err != nil {
		logger.Error("Failed to save on exit", "error", err)
	}
}
