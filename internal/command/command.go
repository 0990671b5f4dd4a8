// Package command parses and executes inspector commands against a cave session.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

// Session is the per-connection state a command runs against.
type Session struct {
	Cave  *cave.Cave
	World *cave.World
}

// NewSession creates a session outside the cave.
func NewSession(c *cave.Cave) *Session {
	return &Session{Cave: c, World: cave.NewWorld()}
}

// Response is the JSON document sent back for every command.
type Response struct {
	Command  string            `json:"command"`
	OK       bool              `json:"ok"`
	Error    string            `json:"error,omitempty"`
	Message  string            `json:"message,omitempty"`
	Floor    int               `json:"floor,omitempty"`
	Restored bool              `json:"restored,omitempty"`
	Map      []string          `json:"map,omitempty"`
	Tiles    []TileView        `json:"tiles,omitempty"`
	Spawns   []spawn.Placement `json:"spawns,omitempty"`
	Floors   []int             `json:"floors,omitempty"`
	Commands []string          `json:"commands,omitempty"`
}

// Command is a parsed input line.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a line into a lowercase command name and its arguments.
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Name: "", Args: []string{}}
	}

	return &Command{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

var helpText = map[string]string{
	"help":    "help - list commands",
	"enter":   "enter <floor> - go to a floor, restoring it if visited",
	"descend": "descend - go one floor down",
	"ascend":  "ascend - climb the rope; from floor 1 this leaves the cave",
	"leave":   "leave - save the floor and exit the cave",
	"map":     "map [x y w h] - ASCII view of the floor",
	"tiles":   "tiles [x y w h] - resolved wall and rock tiles",
	"spawns":  "spawns [rock|enemy|rope] - placements on the floor",
	"mine":    "mine <x> <y> - remove a rock",
	"save":    "save - store the current floor",
	"floors":  "floors - list saved floors",
	"reset":   "reset <floor> - forget a saved floor",
}

// Execute runs the command and always returns a response; failures set Error.
func (c *Command) Execute(s *Session) Response {
	resp, err := c.execute(s)
	resp.Command = c.Name
	if err != nil {
		resp.OK = false
		resp.Error = err.Error()
		return resp
	}
	resp.OK = true
	if level := s.Cave.Current(); level != nil && resp.Floor == 0 {
		resp.Floor = level.Floor
	}
	return resp
}

func (c *Command) execute(s *Session) (Response, error) {
	switch c.Name {
	case "help", "?":
		return c.executeHelp()
	case "enter":
		return c.executeEnter(s)
	case "descend", "down", "d":
		return c.move(s, s.Cave.Descend)
	case "ascend", "up", "u":
		return c.move(s, s.Cave.Ascend)
	case "leave", "quit", "exit":
		return c.executeLeave(s)
	case "map":
		return c.executeMap(s)
	case "tiles":
		return c.executeTiles(s)
	case "spawns":
		return c.executeSpawns(s)
	case "mine":
		return c.executeMine(s)
	case "save":
		return c.executeSave(s)
	case "floors":
		return c.executeFloors(s)
	case "reset":
		return c.executeReset(s)
	case "":
		return Response{}, errors.New("empty command")
	default:
		return Response{}, fmt.Errorf("unknown command %q, try help", c.Name)
	}
}

func (c *Command) executeHelp() (Response, error) {
	names := make([]string, 0, len(helpText))
	for name := range helpText {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = helpText[name]
	}
	return Response{Commands: lines}, nil
}

func (c *Command) executeEnter(s *Session) (Response, error) {
	if len(c.Args) != 1 {
		return Response{}, errors.New("usage: enter <floor>")
	}
	floor, err := strconv.Atoi(c.Args[0])
	if err != nil {
		return Response{}, fmt.Errorf("invalid floor %q", c.Args[0])
	}
	return c.move(s, func() (*cave.Level, bool, error) { return s.Cave.Enter(floor) })
}

// move syncs the live world into the floor being left, performs the move and
// swaps the world over to the new floor.
func (c *Command) move(s *Session, fn func() (*cave.Level, bool, error)) (Response, error) {
	if cur := s.Cave.Current(); cur != nil {
		s.World.Sync(cur)
	}
	level, restored, err := fn()
	if err != nil {
		return Response{}, err
	}
	if level == nil {
		return Response{Message: "You climb out of the cave."}, nil
	}
	if err := s.World.Regenerate(level); err != nil {
		return Response{}, err
	}
	s.World.Tick(nil)

	verb := "built"
	if restored {
		verb = "restored"
	}
	return Response{
		Floor:    level.Floor,
		Restored: restored,
		Message:  fmt.Sprintf("Floor %d %s: %d rocks, %d enemies.", level.Floor, verb, level.Count(spawn.CategoryRock), level.Count(spawn.CategoryEnemy)),
	}, nil
}

func (c *Command) executeLeave(s *Session) (Response, error) {
	cur := s.Cave.Current()
	if cur == nil {
		return Response{}, cave.ErrNotInCave
	}
	s.World.Sync(cur)
	if err := s.Cave.Leave(); err != nil {
		return Response{}, err
	}
	return Response{Message: "You leave the cave."}, nil
}

func (c *Command) executeMap(s *Session) (Response, error) {
	level := s.Cave.Current()
	if level == nil {
		return Response{}, cave.ErrNotInCave
	}
	r, err := parseRect(c.Args, level.Grid)
	if err != nil {
		return Response{}, err
	}
	return Response{Map: MapView(level, s.World, r)}, nil
}

func (c *Command) executeTiles(s *Session) (Response, error) {
	level := s.Cave.Current()
	if level == nil {
		return Response{}, cave.ErrNotInCave
	}
	r, err := parseRect(c.Args, level.Grid)
	if err != nil {
		return Response{}, err
	}
	return Response{Tiles: TileViews(level, r)}, nil
}

func (c *Command) executeSpawns(s *Session) (Response, error) {
	level := s.Cave.Current()
	if level == nil {
		return Response{}, cave.ErrNotInCave
	}
	if len(c.Args) == 0 {
		return Response{Spawns: append([]spawn.Placement(nil), level.Placements...)}, nil
	}
	want := spawn.Category(strings.ToLower(c.Args[0]))
	var out []spawn.Placement
	for _, p := range level.Placements {
		if p.Category == want {
			out = append(out, p)
		}
	}
	return Response{Spawns: out}, nil
}

func (c *Command) executeMine(s *Session) (Response, error) {
	level := s.Cave.Current()
	if level == nil {
		return Response{}, cave.ErrNotInCave
	}
	if len(c.Args) != 2 {
		return Response{}, errors.New("usage: mine <x> <y>")
	}
	x, errX := strconv.Atoi(c.Args[0])
	y, errY := strconv.Atoi(c.Args[1])
	if errX != nil || errY != nil {
		return Response{}, fmt.Errorf("invalid tile %q %q", c.Args[0], c.Args[1])
	}
	removed, err := s.World.Mine(level, grid.Pt(x, y))
	if err != nil {
		return Response{}, err
	}
	s.World.Tick(nil)
	return Response{
		Message: fmt.Sprintf("Mined %s rock at %v.", removed.Kind, removed.Tile),
		Spawns:  []spawn.Placement{removed},
	}, nil
}

func (c *Command) executeSave(s *Session) (Response, error) {
	level := s.Cave.Current()
	if level == nil {
		return Response{}, cave.ErrNotInCave
	}
	s.World.Sync(level)
	if err := s.Cave.Save(); err != nil {
		return Response{}, err
	}
	return Response{Message: fmt.Sprintf("Floor %d saved.", level.Floor)}, nil
}

func (c *Command) executeFloors(s *Session) (Response, error) {
	floors, err := s.Cave.Store().Floors(s.Cave.Seed)
	if err != nil {
		return Response{}, err
	}
	return Response{Floors: floors}, nil
}

func (c *Command) executeReset(s *Session) (Response, error) {
	if len(c.Args) != 1 {
		return Response{}, errors.New("usage: reset <floor>")
	}
	floor, err := strconv.Atoi(c.Args[0])
	if err != nil {
		return Response{}, fmt.Errorf("invalid floor %q", c.Args[0])
	}
	if err := s.Cave.Reset(floor); err != nil {
		return Response{}, err
	}
	return Response{Message: fmt.Sprintf("Floor %d will be rebuilt on the next visit.", floor)}, nil
}
