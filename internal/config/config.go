// Package config loads the deepcave YAML configuration.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/deepcave/internal/cavegen"
	"github.com/lawnchairsociety/deepcave/internal/database"
	"github.com/lawnchairsociety/deepcave/internal/entity"
	"github.com/lawnchairsociety/deepcave/internal/spawn"
)

// Config is the top-level configuration file. The logging section of the same
// file is read separately by logger.LoadConfig.
type Config struct {
	Cave    CaveConfig    `yaml:"cave"`
	Rules   RulesConfig   `yaml:"rules"`
	Spawn   SpawnConfig   `yaml:"spawn"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// CaveConfig holds cave generation settings.
type CaveConfig struct {
	Seed                int64   `yaml:"seed"`
	Width               int     `yaml:"width"`
	Height              int     `yaml:"height"`
	FillPercent         float64 `yaml:"fill_percent"`
	SmoothingIterations int     `yaml:"smoothing_iterations"`
	WallThreshold       int     `yaml:"wall_threshold"`
	MinRegionSize       int     `yaml:"min_region_size"`

	// MaxFloor is the deepest floor. 0 means unlimited.
	MaxFloor int `yaml:"max_floor"`
}

// RulesConfig points at the rule metadata files.
type RulesConfig struct {
	CaveWall string `yaml:"cave_wall"`
	Rock     string `yaml:"rock"` // optional
}

// SpawnConfig holds the spawn tables. Empty tables fall back to the built-in ones.
type SpawnConfig struct {
	FillCurve []spawn.CurvePoint            `yaml:"fill_curve"`
	EnemyMin  int                           `yaml:"enemy_min"`
	EnemyMax  int                           `yaml:"enemy_max"`
	Rocks     map[string][]spawn.CurvePoint `yaml:"rocks"`
	Enemies   map[string][]spawn.CurvePoint `yaml:"enemies"`
}

// StorageConfig selects where floor mementos are kept.
type StorageConfig struct {
	// Driver is one of "memory", "yaml", "sqlite" or "postgres".
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`

	// SnapshotDir is where YAML mementos are written, by the "yaml" driver
	// and by cavegen.
	SnapshotDir string `yaml:"snapshot_dir"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `yaml:"conn_max_lifetime_seconds"`
}

// ServerConfig holds inspector service settings.
type ServerConfig struct {
	Address     string            `yaml:"address"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	params := cavegen.DefaultParams(0)
	pg := database.DefaultPostgresConfig()
	return &Config{
		Cave: CaveConfig{
			Width:               params.Width,
			Height:              params.Height,
			FillPercent:         params.FillPercent,
			SmoothingIterations: params.SmoothingIterations,
			WallThreshold:       params.WallThreshold,
		},
		Rules: RulesConfig{
			CaveWall: "data/rules/cave_walls.yaml",
			Rock:     "data/rules/rocks.yaml",
		},
		Spawn: SpawnConfig{
			EnemyMin: spawn.DefaultEnemyMin,
			EnemyMax: spawn.DefaultEnemyMax,
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "data/deepcave.db",
			Postgres: PostgresConfig{
				Host:                   pg.Host,
				Port:                   pg.Port,
				SSLMode:                pg.SSLMode,
				MaxOpenConns:           pg.MaxOpenConns,
				MaxIdleConns:           pg.MaxIdleConns,
				ConnMaxLifetimeSeconds: int(pg.ConnMaxLifetime / time.Second),
			},
			SnapshotDir: "data/floors",
		},
		Server: ServerConfig{
			Address: ":4000",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 100,
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.CaveParams(c.Cave.Seed).Validate(); err != nil {
		return err
	}
	if c.Cave.MaxFloor < 0 {
		return fmt.Errorf("max_floor must not be negative")
	}
	if c.Rules.CaveWall == "" {
		return fmt.Errorf("rules.cave_wall is required")
	}
	if _, err := c.SpawnConfig(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "memory", "":
	case "yaml":
		if c.Storage.SnapshotDir == "" {
			return fmt.Errorf("storage.snapshot_dir is required for the yaml driver")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.Postgres.Database == "" {
			return fmt.Errorf("storage.postgres.database is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// CaveParams converts the cave section into generator parameters.
func (c *Config) CaveParams(seed int64) cavegen.Params {
	return cavegen.Params{
		Width:               c.Cave.Width,
		Height:              c.Cave.Height,
		FillPercent:         c.Cave.FillPercent,
		SmoothingIterations: c.Cave.SmoothingIterations,
		WallThreshold:       c.Cave.WallThreshold,
		MinRegionSize:       c.Cave.MinRegionSize,
		Seed:                seed,
	}
}

// SpawnConfig builds the planner tables from the spawn section.
func (c *Config) SpawnConfig() (spawn.Config, error) {
	out := spawn.DefaultConfig()
	out.EnemyMin = c.Spawn.EnemyMin
	out.EnemyMax = c.Spawn.EnemyMax

	if len(c.Spawn.FillCurve) > 0 {
		out.Fill = spawn.NewCurve(c.Spawn.FillCurve...)
	}

	if len(c.Spawn.Rocks) > 0 {
		var entries []spawn.Entry[spawn.RockType]
		for _, name := range sortedKeys(c.Spawn.Rocks) {
			kind, err := spawn.ParseRockType(name)
			if err != nil {
				return out, fmt.Errorf("spawn.rocks: %w", err)
			}
			entries = append(entries, spawn.Entry[spawn.RockType]{Kind: kind, Weight: spawn.NewCurve(c.Spawn.Rocks[name]...)})
		}
		// Declaration order keeps Pick stable regardless of map order.
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Kind < entries[j].Kind })
		out.Rocks = spawn.NewTable(spawn.RockPlain, entries...)
	}

	if len(c.Spawn.Enemies) > 0 {
		names := sortedKeys(c.Spawn.Enemies)
		var entries []spawn.Entry[string]
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				return out, fmt.Errorf("spawn.enemies: empty enemy name")
			}
			if _, ok := entity.LookupEnemy(name); !ok {
				return out, fmt.Errorf("spawn.enemies: unknown enemy kind %q", name)
			}
			entries = append(entries, spawn.Entry[string]{Kind: name, Weight: spawn.NewCurve(c.Spawn.Enemies[name]...)})
		}
		out.Enemies = spawn.NewTable(names[0], entries...)
	}

	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("spawn: %w", err)
	}
	return out, nil
}

// DatabaseConfig converts the storage section for database.OpenWithConfig.
func (c *Config) DatabaseConfig() database.Config {
	pg := c.Storage.Postgres
	return database.Config{
		Driver:     c.Storage.Driver,
		SQLitePath: c.Storage.SQLitePath,
		Postgres: database.PostgresConfig{
			Host:            pg.Host,
			Port:            pg.Port,
			User:            pg.User,
			Password:        pg.Password,
			Database:        pg.Database,
			SSLMode:         pg.SSLMode,
			MaxOpenConns:    pg.MaxOpenConns,
			MaxIdleConns:    pg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(pg.ConnMaxLifetimeSeconds) * time.Second,
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
