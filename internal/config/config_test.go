package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/cavegen"
	"github.com/lawnchairsociety/deepcave/internal/database"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deepcave.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
	if cfg.Cave.Width != 200 || cfg.Cave.Height != 200 {
		t.Errorf("expected 200x200 cave, got %dx%d", cfg.Cave.Width, cfg.Cave.Height)
	}
	if cfg.Cave.WallThreshold != 5 || cfg.Cave.SmoothingIterations != 5 {
		t.Errorf("expected threshold 5 and 5 iterations, got %d and %d", cfg.Cave.WallThreshold, cfg.Cave.SmoothingIterations)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Server.WebSocket.AllowedOrigins)
	}
	if cfg.Server.WebSocket.MaxMessageSize != 4096 {
		t.Errorf("expected max message size 4096, got %d", cfg.Server.WebSocket.MaxMessageSize)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("expected default sqlite driver, got %q", cfg.Storage.Driver)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
cave:
  seed: 99
  width: 64
  height: 48
  fill_percent: 0.45
  min_region_size: 10
  max_floor: 12
spawn:
  enemy_min: 3
  enemy_max: 6
storage:
  driver: memory
server:
  address: "127.0.0.1:9000"
  websocket:
    allowed_origins:
      - "https://example.com"
    max_message_size: 8192
logging:
  level: DEBUG
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Cave.Seed != 99 || cfg.Cave.Width != 64 || cfg.Cave.Height != 48 {
		t.Errorf("cave section = %+v", cfg.Cave)
	}
	// Unset keys keep their defaults.
	if cfg.Cave.WallThreshold != 5 {
		t.Errorf("expected default wall threshold 5, got %d", cfg.Cave.WallThreshold)
	}
	if cfg.Cave.MaxFloor != 12 {
		t.Errorf("expected max floor 12, got %d", cfg.Cave.MaxFloor)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("expected address 127.0.0.1:9000, got %s", cfg.Server.Address)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 1 || cfg.Server.WebSocket.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("allowed origins = %v", cfg.Server.WebSocket.AllowedOrigins)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "cave: [unterminated"},
		{"bad fill", "cave:\n  fill_percent: 1.5\n"},
		{"bad threshold", "cave:\n  wall_threshold: 9\n"},
		{"bad enemy range", "spawn:\n  enemy_min: 5\n  enemy_max: 2\n"},
		{"unknown rock", "spawn:\n  rocks:\n    mithril: [{floor: 1, p: 1}]\n"},
		{"unknown enemy", "spawn:\n  enemies:\n    dragon: [{floor: 1, p: 1}]\n"},
		{"unknown driver", "storage:\n  driver: redis\n"},
		{"postgres without database", "storage:\n  driver: postgres\n"},
		{"missing wall rules", "rules:\n  cave_wall: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidate_ParamError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cave.Width = 0

	var pe *cavegen.ParamError
	if err := cfg.Validate(); !errors.As(err, &pe) {
		t.Fatalf("Validate() = %v, want *cavegen.ParamError", err)
	}
	if pe.Field != "width" {
		t.Errorf("ParamError.Field = %q, want width", pe.Field)
	}
}

func TestCaveParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cave.MinRegionSize = 7

	p := cfg.CaveParams(1234)
	want := cavegen.DefaultParams(1234)
	want.MinRegionSize = 7
	if p != want {
		t.Errorf("CaveParams() = %+v, want %+v", p, want)
	}
}

func TestSpawnConfig_Defaults(t *testing.T) {
	sc, err := DefaultConfig().SpawnConfig()
	if err != nil {
		t.Fatalf("SpawnConfig() error: %v", err)
	}
	if sc.EnemyMin != spawn.DefaultEnemyMin || sc.EnemyMax != spawn.DefaultEnemyMax {
		t.Errorf("enemy range = [%d, %d]", sc.EnemyMin, sc.EnemyMax)
	}
	if got := len(sc.Rocks.Entries()); got != len(spawn.AllRockTypes()) {
		t.Errorf("default rock table has %d entries, want %d", got, len(spawn.AllRockTypes()))
	}
	if sc.Enemies.Fallback() != "slime" {
		t.Errorf("enemy fallback = %q, want slime", sc.Enemies.Fallback())
	}
}

func TestSpawnConfig_FromYAML(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
spawn:
  fill_curve:
    - {floor: 1, p: 0.1}
    - {floor: 10, p: 0.3}
  rocks:
    gold: [{floor: 1, p: 3}]
    plain: [{floor: 1, p: 1}]
  enemies:
    slime: [{floor: 1, p: 1}]
    bat: [{floor: 5, p: 0}, {floor: 10, p: 1}]
`))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	sc, err := cfg.SpawnConfig()
	if err != nil {
		t.Fatalf("SpawnConfig() error: %v", err)
	}

	if got := sc.Fill.At(1); got != 0.1 {
		t.Errorf("Fill.At(1) = %v, want 0.1", got)
	}
	if got := sc.Rocks.Chance(spawn.RockGold, 1); got != 0.75 {
		t.Errorf("Chance(gold) = %v, want 0.75", got)
	}
	entries := sc.Rocks.Entries()
	if len(entries) != 2 || entries[0].Kind != spawn.RockPlain || entries[1].Kind != spawn.RockGold {
		t.Errorf("rock entries out of declaration order: %+v", entries)
	}
	if got := sc.Enemies.Chance("bat", 1); got != 0 {
		t.Errorf("Chance(bat, 1) = %v, want 0", got)
	}
	if got := sc.Enemies.Chance("bat", 10); got != 0.5 {
		t.Errorf("Chance(bat, 10) = %v, want 0.5", got)
	}
}

func TestDatabaseConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = "postgres"
	cfg.Storage.Postgres.Database = "deepcave"
	cfg.Storage.Postgres.User = "cave"

	dc := cfg.DatabaseConfig()
	if dc.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", dc.Driver)
	}
	want := database.DefaultPostgresConfig()
	if dc.Postgres.ConnMaxLifetime != want.ConnMaxLifetime {
		t.Errorf("ConnMaxLifetime = %v, want %v", dc.Postgres.ConnMaxLifetime, want.ConnMaxLifetime)
	}
	if dc.Postgres.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want 5m", dc.Postgres.ConnMaxLifetime)
	}
	if dc.Postgres.Database != "deepcave" || dc.Postgres.User != "cave" {
		t.Errorf("postgres = %+v", dc.Postgres)
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		apply func(*Config)
	}{
		{"memory", func(c *Config) { c.Storage.Driver = "memory" }},
		{"yaml", func(c *Config) { c.Storage.Driver = "yaml"; c.Storage.SnapshotDir = filepath.Join(dir, "floors") }},
		{"sqlite", func(c *Config) { c.Storage.Driver = "sqlite"; c.Storage.SQLitePath = filepath.Join(dir, "cave.db") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.apply(cfg)

			store, closer, err := cfg.OpenStore()
			if err != nil {
				t.Fatalf("OpenStore() error: %v", err)
			}
			defer closer.Close()

			if _, err := store.Load(1, 1); !errors.Is(err, cave.ErrNoMemento) {
				t.Errorf("Load() on empty store = %v, want ErrNoMemento", err)
			}
		})
	}
}

func TestNewCave(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.CaveWall = "../../data/rules/cave_walls.yaml"
	cfg.Rules.Rock = "../../data/rules/rocks.yaml"
	cfg.Cave.Width, cfg.Cave.Height = 40, 30
	cfg.Cave.MaxFloor = 3
	cfg.Spawn.EnemyMin, cfg.Spawn.EnemyMax = 1, 2

	cv, err := cfg.NewCave(5, cave.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewCave() error: %v", err)
	}
	if cv.MaxFloor != 3 {
		t.Errorf("MaxFloor = %d, want 3", cv.MaxFloor)
	}
	level, _, err := cv.Enter(1)
	if err != nil {
		t.Fatalf("Enter(1) error: %v", err)
	}
	if level.Grid.Width() != 40 || level.Grid.Height() != 30 {
		t.Errorf("level size = %dx%d, want 40x30", level.Grid.Width(), level.Grid.Height())
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := WebSocketConfig{AllowedOrigins: []string{}}

	if !cfg.IsOriginAllowed("", "localhost:4000") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}
	if !cfg.IsOriginAllowed("http://localhost:4000", "localhost:4000") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_List(t *testing.T) {
	cfg := WebSocketConfig{AllowedOrigins: []string{"https://example.com", "http://localhost:3000"}}

	if !cfg.IsOriginAllowed("https://example.com", "localhost:4000") {
		t.Error("expected exact match to be allowed")
	}
	if cfg.IsOriginAllowed("https://example.com:8080", "localhost:4000") {
		t.Error("expected partial match to be rejected")
	}

	wild := WebSocketConfig{AllowedOrigins: []string{"*"}}
	if !wild.IsOriginAllowed("http://anything.com", "localhost:4000") {
		t.Error("expected wildcard to allow any origin")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:4000", true},
		{"http://localhost:4000", "localhost:4000", true},
		{"https://localhost:4000", "localhost:4000", true},
		{"http://localhost:4000/", "localhost:4000", true},
		{"http://example.com", "localhost:4000", false},
		{"http://localhost:3000", "localhost:4000", false},
		{"ws://localhost:4000", "localhost:4000", true},
	}

	for _, tt := range tests {
		if got := isSameOrigin(tt.origin, tt.requestHost); got != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v", tt.origin, tt.requestHost, got, tt.expected)
		}
	}
}

func TestLoadConfig_Shipped(t *testing.T) {
	cfg, err := LoadConfig("../../data/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Storage.Driver)
	}

	sc, err := cfg.SpawnConfig()
	if err != nil {
		t.Fatalf("SpawnConfig failed: %v", err)
	}
	if got := sc.Enemies.Chance("beetle", 1); got != 0 {
		t.Errorf("Chance(beetle, 1) = %v, want 0", got)
	}
	if sc.EnemyMin != 90 || sc.EnemyMax != 100 {
		t.Errorf("enemy range = [%d, %d], want [90, 100]", sc.EnemyMin, sc.EnemyMax)
	}
}
