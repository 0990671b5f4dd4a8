package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/command"
	"github.com/lawnchairsociety/deepcave/internal/config"
	"github.com/lawnchairsociety/deepcave/internal/logger"
)

func main() {
	configFile := flag.String("config", "data/config.yaml", "Path to config YAML file")
	floors := flag.String("floors", "", "Floor range to generate (e.g., 1-10 or 5)")
	seed := flag.Int64("seed", 42, "Cave seed")
	outDir := flag.String("out", "", "Output directory (default: storage.snapshot_dir from config)")
	ascii := flag.Bool("ascii", false, "Also write an ASCII preview next to each memento")
	flag.Parse()

	if *floors == "" {
		fmt.Fprintln(os.Stderr, "Error: --floors is required (e.g., --floors=1-10 or --floors=5)")
		flag.Usage()
		os.Exit(1)
	}

	startFloor, endFloor, err := parseFloorRange(*floors)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid floor range: %v\n", err)
		os.Exit(1)
	}

	logConfig, _ := logger.LoadConfig(*configFile)
	logger.Initialize(logConfig)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Cave.MaxFloor > 0 && endFloor > cfg.Cave.MaxFloor {
		fmt.Fprintf(os.Stderr, "Error: floor %d is below max_floor %d\n", endFloor, cfg.Cave.MaxFloor)
		os.Exit(1)
	}

	outputDir := *outDir
	if outputDir == "" {
		outputDir = cfg.Storage.SnapshotDir
	}

	gc, err := cfg.GeneratorConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load rules: %v\n", err)
		os.Exit(1)
	}
	gen, err := cave.NewGenerator(gc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := cave.NewDirStore(outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating floors %d-%d (seed: %d)\n", startFloor, endFloor, *seed)
	fmt.Printf("Output directory: %s\n\n", outputDir)

	for floorNum := startFloor; floorNum <= endFloor; floorNum++ {
		fmt.Printf("Generating floor %d... ", floorNum)
		level, err := generateFloor(gen, store, *seed, floorNum)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			os.Exit(1)
		}
		if *ascii {
			if err := writePreview(level, strings.TrimSuffix(store.Path(*seed, floorNum), ".yaml")+".txt"); err != nil {
				fmt.Printf("FAILED: %v\n", err)
				os.Exit(1)
			}
		}
		fmt.Printf("OK (%s)\n", filepath.Base(store.Path(*seed, floorNum)))
	}

	fmt.Printf("\nSuccessfully generated %d floor(s)\n", endFloor-startFloor+1)
}

// generateFloor builds a floor from its derived seed and saves its memento.
func generateFloor(gen *cave.Generator, store *cave.DirStore, caveSeed int64, floor int) (*cave.Level, error) {
	level, err := gen.Build(floor, cave.FloorSeed(caveSeed, floor))
	if err != nil {
		return nil, err
	}
	if err := store.Save(caveSeed, cave.Snapshot(level)); err != nil {
		return nil, err
	}
	return level, nil
}

// writePreview writes the floor as the inspector's map view, entities included.
func writePreview(level *cave.Level, path string) error {
	w := cave.NewWorld()
	if err := w.Regenerate(level); err != nil {
		return err
	}
	w.Tick(nil)

	rows := command.MapView(level, w, command.Rect{W: level.Grid.Width(), H: level.Grid.Height()})
	header := fmt.Sprintf("# Floor %d, seed %d, %dx%d\n", level.Floor, level.Seed, level.Grid.Width(), level.Grid.Height())
	return os.WriteFile(path, []byte(header+strings.Join(rows, "\n")+"\n"), 0644)
}

// parseFloorRange parses a floor range string like "1-10" or "5"
func parseFloorRange(s string) (start, end int, err error) {
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("invalid range format, expected 'start-end'")
		}
		start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start floor: %w", err)
		}
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end floor: %w", err)
		}
	} else {
		start, err = strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid floor number: %w", err)
		}
		end = start
	}

	if start < 1 {
		return 0, 0, fmt.Errorf("floor numbers must be >= 1")
	}
	if end < start {
		return 0, 0, fmt.Errorf("end floor must be >= start floor")
	}

	return start, end, nil
}
