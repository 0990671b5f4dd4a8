package rulecell

import (
	"fmt"
	"os"

	"github.com/lawnchairsociety/deepcave/internal/grid"
	"github.com/zyedidia/generic/mapset"
	"gopkg.in/yaml.v3"
)

// DefaultTileSize is the sprite edge length in pixels when a rule file omits it.
const DefaultTileSize = 16

// TileRule maps one sprite on the sheet to its ordered patterns.
type TileRule struct {
	Name     string
	Source   grid.Point
	Patterns []Pattern
}

// Metadata is a parsed rule file. It is read-only once loaded.
type Metadata struct {
	Sheet    string
	Image    string
	TileSize int
	Group    grid.GroupID
	Tiles    []TileRule
	Extras   map[string]grid.Point // named sprites outside the rule table
}

// metadataFile is the on-disk YAML layout.
type metadataFile struct {
	Sheet    string           `yaml:"sheet"`
	Image    string           `yaml:"image"`
	TileSize int              `yaml:"tile_size"`
	Group    string           `yaml:"group"`
	Tiles    []tileRuleFile   `yaml:"tiles"`
	Extras   map[string][]int `yaml:"extras"`
}

type tileRuleFile struct {
	Name     string     `yaml:"name"`
	Position []int      `yaml:"position"`
	Patterns [][]string `yaml:"patterns"`
}

// LoadMetadata reads and parses a rule file.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return ParseMetadata(data, path)
}

// ParseMetadata parses rule YAML. source names the document in errors.
// Every problem is reported as a *ConfigError naming the offending entry.
func ParseMetadata(data []byte, source string) (*Metadata, error) {
	var file metadataFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigError{Source: source, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	if len(file.Tiles) == 0 {
		return nil, &ConfigError{Source: source, Reason: "no tiles defined"}
	}

	md := &Metadata{
		Sheet:    file.Sheet,
		Image:    file.Image,
		TileSize: file.TileSize,
		Tiles:    make([]TileRule, 0, len(file.Tiles)),
		Extras:   make(map[string]grid.Point, len(file.Extras)),
	}
	if md.TileSize <= 0 {
		md.TileSize = DefaultTileSize
	}
	if md.Sheet == "" {
		md.Sheet = source
	}

	group, err := grid.ParseGroup(file.Group)
	if err != nil {
		return nil, &ConfigError{Source: source, Reason: err.Error()}
	}
	if group == grid.GroupNone {
		group = grid.GroupCaveWall
	}
	md.Group = group

	names := mapset.New[string]()
	for i, tf := range file.Tiles {
		entry := tf.Name
		if entry == "" {
			entry = fmt.Sprintf("#%d", i)
		} else if names.Has(entry) {
			return nil, &ConfigError{Source: source, Entry: entry, Reason: "duplicate tile name"}
		}
		names.Put(entry)

		if len(tf.Position) != 2 || tf.Position[0] < 0 || tf.Position[1] < 0 {
			return nil, &ConfigError{Source: source, Entry: entry, Reason: fmt.Sprintf("position %v must be [x, y] with non-negative values", tf.Position)}
		}
		if len(tf.Patterns) == 0 {
			return nil, &ConfigError{Source: source, Entry: entry, Reason: "no patterns"}
		}

		rule := TileRule{
			Name:     entry,
			Source:   grid.Pt(tf.Position[0], tf.Position[1]),
			Patterns: make([]Pattern, 0, len(tf.Patterns)),
		}
		for j, rows := range tf.Patterns {
			p, err := ParsePattern(rows)
			if err != nil {
				return nil, &ConfigError{Source: source, Entry: entry, Reason: fmt.Sprintf("pattern %d: %v", j, err)}
			}
			rule.Patterns = append(rule.Patterns, p)
		}
		md.Tiles = append(md.Tiles, rule)
	}

	for name, pos := range file.Extras {
		if len(pos) != 2 || pos[0] < 0 || pos[1] < 0 {
			return nil, &ConfigError{Source: source, Entry: name, Reason: fmt.Sprintf("extra position %v must be [x, y] with non-negative values", pos)}
		}
		md.Extras[name] = grid.Pt(pos[0], pos[1])
	}

	return md, nil
}

// Extra returns a named sprite position.
func (m *Metadata) Extra(name string) (grid.Point, bool) {
	p, ok := m.Extras[name]
	return p, ok
}
