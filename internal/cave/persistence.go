package cave

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalMemento encodes a memento as YAML.
func MarshalMemento(m *FloorMemento) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal floor memento: %w", err)
	}
	return data, nil
}

// UnmarshalMemento decodes YAML produced by MarshalMemento.
func UnmarshalMemento(data []byte) (*FloorMemento, error) {
	var m FloorMemento
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse floor memento YAML: %w", err)
	}
	if len(m.Rows) == 0 {
		return nil, fmt.Errorf("floor memento %d has no grid rows", m.Floor)
	}
	return &m, nil
}

// SaveMemento writes a memento to a YAML file
func SaveMemento(m *FloorMemento, filename string) error {
	data, err := MarshalMemento(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write floor memento: %w", err)
	}
	return nil
}

// LoadMemento reads a memento from a YAML file
func LoadMemento(filename string) (*FloorMemento, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read floor memento: %w", err)
	}
	return UnmarshalMemento(data)
}

// MementoFileExists checks if a memento file exists
func MementoFileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// DirStore is a MementoStore that keeps one YAML file per floor under
// <root>/cave_<seed>/floor_<n>.yaml.
type DirStore struct {
	root string
}

// NewDirStore creates the root directory if needed.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create memento directory: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Path returns the file a floor's memento lives in.
func (s *DirStore) Path(caveSeed int64, floor int) string {
	return filepath.Join(s.caveDir(caveSeed), fmt.Sprintf("floor_%d.yaml", floor))
}

func (s *DirStore) caveDir(caveSeed int64) string {
	return filepath.Join(s.root, fmt.Sprintf("cave_%d", caveSeed))
}

func (s *DirStore) Save(caveSeed int64, m *FloorMemento) error {
	if err := os.MkdirAll(s.caveDir(caveSeed), 0755); err != nil {
		return fmt.Errorf("failed to create cave directory: %w", err)
	}
	return SaveMemento(m, s.Path(caveSeed, m.Floor))
}

func (s *DirStore) Load(caveSeed int64, floor int) (*FloorMemento, error) {
	path := s.Path(caveSeed, floor)
	if !MementoFileExists(path) {
		return nil, fmt.Errorf("floor %d: %w", floor, ErrNoMemento)
	}
	return LoadMemento(path)
}

func (s *DirStore) Delete(caveSeed int64, floor int) error {
	err := os.Remove(s.Path(caveSeed, floor))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete floor memento: %w", err)
	}
	return nil
}

var floorFile = regexp.MustCompile(`^floor_(-?\d+)\.yaml$`)

func (s *DirStore) Floors(caveSeed int64) ([]int, error) {
	entries, err := os.ReadDir(s.caveDir(caveSeed))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list floor mementos: %w", err)
	}
	var floors []int
	for _, e := range entries {
		match := floorFile.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		floors = append(floors, n)
	}
	sort.Ints(floors)
	return floors, nil
}

var caveDirName = regexp.MustCompile(`^cave_(-?\d+)$`)

func (s *DirStore) Caves() ([]int64, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list caves: %w", err)
	}
	var caves []int64
	for _, e := range entries {
		match := caveDirName.FindStringSubmatch(e.Name())
		if !e.IsDir() || match == nil {
			continue
		}
		seed, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		caves = append(caves, seed)
	}
	slices.Sort(caves)
	return caves, nil
}
