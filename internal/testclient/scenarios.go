package testclient

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/lawnchairsociety/deepcave/internal/command"
)

// Verbose controls whether each command is echoed while scenarios run.
var Verbose = false

// TestResult is the outcome of one scenario.
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

type scenario struct {
	name string
	run  func(address string) (string, error)
}

var scenarios = []scenario{
	{"Help", testHelp},
	{"OutsideCave", testOutsideCave},
	{"DescendAscend", testDescendAscend},
	{"MapMatchesTiles", testMapMatchesTiles},
	{"MineRestores", testMineRestores},
}

// RunAllTests runs every scenario against a live inspector at address.
func RunAllTests(address string) []TestResult {
	results := make([]TestResult, 0, len(scenarios))
	for _, s := range scenarios {
		msg, err := s.run(address)
		r := TestResult{Name: s.name, Passed: err == nil, Message: msg}
		if err != nil {
			r.Message = err.Error()
		}
		results = append(results, r)
	}
	return results
}

// PrintResults writes a pass/fail summary.
func PrintResults(w io.Writer, results []TestResult) {
	passed := 0
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, "Inspector Scenario Results")
	fmt.Fprintln(w, "============================================================")
	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			status = "FAIL"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", status, r.Name, r.Message)
	}
	fmt.Fprintln(w, "------------------------------------------------------------")
	fmt.Fprintf(w, "Total: %d | Passed: %d | Failed: %d\n", len(results), passed, len(results)-passed)
}

func logAction(c *TestClient, line string) {
	if Verbose {
		fmt.Printf("  [%s] > %s\n", c.Name, line)
	}
}

func run(c *TestClient, line string) (command.Response, error) {
	logAction(c, line)
	return c.MustSucceed(line)
}

func testHelp(address string) (string, error) {
	c, err := Dial("help", address)
	if err != nil {
		return "", err
	}
	defer c.Close()

	resp, err := run(c, "help")
	if err != nil {
		return "", err
	}
	for _, want := range []string{"enter", "map", "tiles", "spawns", "mine"} {
		if !slices.Contains(resp.Commands, want) {
			return "", fmt.Errorf("help does not list %q", want)
		}
	}
	return fmt.Sprintf("%d commands listed", len(resp.Commands)), nil
}

func testOutsideCave(address string) (string, error) {
	c, err := Dial("outside", address)
	if err != nil {
		return "", err
	}
	defer c.Close()

	for _, line := range []string{"map", "descend", "mine 1 1"} {
		logAction(c, line)
		resp, err := c.Send(line)
		if err != nil {
			return "", err
		}
		if resp.OK {
			return "", fmt.Errorf("%q succeeded outside the cave", line)
		}
	}
	return "commands rejected before entering", nil
}

func testDescendAscend(address string) (string, error) {
	c, err := Dial("stairs", address)
	if err != nil {
		return "", err
	}
	defer c.Close()

	steps := []struct {
		line  string
		floor int
	}{
		{"enter 1", 1},
		{"descend", 2},
		{"descend", 3},
		{"ascend", 2},
	}
	for _, s := range steps {
		resp, err := run(c, s.line)
		if err != nil {
			return "", err
		}
		if resp.Floor != s.floor {
			return "", fmt.Errorf("%q landed on floor %d, want %d", s.line, resp.Floor, s.floor)
		}
	}
	resp, err := run(c, "floors")
	if err != nil {
		return "", err
	}
	if !slices.Contains(resp.Floors, 1) || !slices.Contains(resp.Floors, 3) {
		return "", fmt.Errorf("saved floors = %v, want 1 and 3 among them", resp.Floors)
	}
	if _, err := run(c, "leave"); err != nil {
		return "", err
	}
	return fmt.Sprintf("saved floors %v", resp.Floors), nil
}

func testMapMatchesTiles(address string) (string, error) {
	c, err := Dial("mapper", address)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if _, err := run(c, "enter 1"); err != nil {
		return "", err
	}
	const region = "0 0 16 12"
	m, err := run(c, "map "+region)
	if err != nil {
		return "", err
	}
	tiles, err := run(c, "tiles "+region)
	if err != nil {
		return "", err
	}

	walls := 0
	for _, row := range m.Map {
		walls += strings.Count(row, "#") + strings.Count(row, "o")
	}
	if walls != len(tiles.Tiles) {
		return "", fmt.Errorf("map shows %d walls and rocks, tiles resolved %d", walls, len(tiles.Tiles))
	}
	return fmt.Sprintf("%d tiles resolved", walls), nil
}

// testMineRestores mines a rock, disconnects, and checks a new session sees
// the floor as it was left.
func testMineRestores(address string) (string, error) {
	c, err := Dial("miner", address)
	if err != nil {
		return "", err
	}
	if _, err := run(c, "enter 1"); err != nil {
		c.Close()
		return "", err
	}
	rocks, err := run(c, "spawns rock")
	if err != nil {
		c.Close()
		return "", err
	}
	if len(rocks.Spawns) == 0 {
		c.Close()
		return "skipped: no rocks on floor 1", nil
	}
	target := rocks.Spawns[0].Tile
	if _, err := run(c, fmt.Sprintf("mine %d %d", target.X, target.Y)); err != nil {
		c.Close()
		return "", err
	}
	if _, err := run(c, "leave"); err != nil {
		c.Close()
		return "", err
	}
	c.Close()

	c2, err := Dial("miner2", address)
	if err != nil {
		return "", err
	}
	defer c2.Close()
	entered, err := run(c2, "enter 1")
	if err != nil {
		return "", err
	}
	if !entered.Restored {
		return "", fmt.Errorf("floor 1 was rebuilt instead of restored")
	}
	after, err := run(c2, "spawns rock")
	if err != nil {
		return "", err
	}
	if len(after.Spawns) != len(rocks.Spawns)-1 {
		return "", fmt.Errorf("rocks after mining = %d, want %d", len(after.Spawns), len(rocks.Spawns)-1)
	}
	for _, p := range after.Spawns {
		if p.Tile == target {
			return "", fmt.Errorf("mined rock at %v came back", target)
		}
	}
	return fmt.Sprintf("rock at %v stayed mined", target), nil
}
