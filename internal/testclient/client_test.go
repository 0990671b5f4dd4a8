package testclient

import (
	"bytes"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/cavegen"
	"github.com/lawnchairsociety/deepcave/internal/config"
	"github.com/lawnchairsociety/deepcave/internal/rulecell"
	"github.com/lawnchairsociety/deepcave/internal/server"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

func startServer(t *testing.T) string {
	t.Helper()
	walls, err := rulecell.LoadMetadata("../../data/rules/cave_walls.yaml")
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	rocks, err := rulecell.LoadMetadata("../../data/rules/rocks.yaml")
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	params := cavegen.DefaultParams(0)
	params.Width, params.Height = 32, 24
	params.FillPercent = 0.3
	sc := spawn.DefaultConfig()
	sc.Fill = spawn.Constant(0.1)
	sc.EnemyMin, sc.EnemyMax = 1, 3

	gen, err := cave.NewGenerator(cave.GeneratorConfig{Cave: params, Walls: walls, Rocks: rocks, Spawn: sc})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	cfg := config.DefaultConfig().Server
	cfg.Connections.MaxPerIP = 0
	s := server.NewServer(cfg, gen, cave.NewMemoryStore(), 5, 0)
	t.Cleanup(s.Shutdown)
	go s.Start("127.0.0.1:0")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if addr := s.Addr(); addr != nil {
			return addr.String()
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server did not start listening")
	return ""
}

func TestDial(t *testing.T) {
	addr := startServer(t)

	c, err := Dial("tester", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	if c.Welcome.Command != "connect" {
		t.Errorf("Welcome.Command = %q, want connect", c.Welcome.Command)
	}

	resp, err := c.Send("enter 1")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !resp.OK || resp.Floor != 1 {
		t.Errorf("enter 1 = %+v", resp)
	}

	if _, err := c.MustSucceed("bogus"); err == nil {
		t.Error("MustSucceed(bogus) expected error")
	}
	if got := c.Sent(); len(got) != 2 || got[0] != "enter 1" {
		t.Errorf("Sent() = %v", got)
	}
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Write([]byte(`{"command":"connect","ok":false,"error":"too many connections"}` + "\n"))
		conn.Close()
	}()

	_, err = Dial("rejected", ln.Addr().String())
	if err == nil || !strings.Contains(err.Error(), "too many connections") {
		t.Errorf("Dial() error = %v, want refusal", err)
	}
}

func TestRunAllTests(t *testing.T) {
	addr := startServer(t)

	results := RunAllTests(addr)
	if len(results) != len(scenarios) {
		t.Fatalf("got %d results, want %d", len(results), len(scenarios))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s failed: %s", r.Name, r.Message)
		}
	}

	var buf bytes.Buffer
	PrintResults(&buf, results)
	if !strings.Contains(buf.String(), "Failed: 0") {
		t.Errorf("summary = %q", buf.String())
	}
}
