// migrate-mementos copies saved floors from SQLite or a YAML snapshot
// directory into PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-mementos \
//	    -sqlite data/deepcave.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user deepcave \
//	    -pg-password deepcave \
//	    -pg-database deepcave
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/deepcave.db", "Path to source SQLite database")
	snapshotDir := flag.String("dir", "", "Read from a YAML snapshot directory instead of SQLite")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "deepcave", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "deepcave", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "deepcave", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	caveSeed := flag.Int64("cave", 0, "Only migrate this cave (default: all caves)")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("Floor Memento Migration Tool")
	log.Println("====================================")

	var src interface {
		cave.MementoStore
		cave.CaveLister
	}
	if *snapshotDir != "" {
		log.Printf("Reading YAML snapshots: %s", *snapshotDir)
		store, err := cave.NewDirStore(*snapshotDir)
		if err != nil {
			log.Fatalf("Failed to open snapshot directory: %v", err)
		}
		src = store
	} else {
		log.Printf("Opening SQLite database: %s", *sqlitePath)
		db, err := database.Open(*sqlitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite database: %v", err)
		}
		defer db.Close()
		src = db.Mementos()
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = *pgHost
	pgCfg.Port = *pgPort
	pgCfg.User = *pgUser
	pgCfg.Password = *pgPassword
	pgCfg.Database = *pgDatabase
	pgCfg.SSLMode = *pgSSLMode

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	pg, err := database.OpenWithConfig(database.Config{Driver: string(database.DialectPostgres), Postgres: pgCfg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer pg.Close()

	caves := []int64{*caveSeed}
	if *caveSeed == 0 {
		caves, err = src.Caves()
		if err != nil {
			log.Fatalf("Failed to list caves: %v", err)
		}
	}

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	total, err := migrate(src, pg.Mementos(), caves, *dryRun, func(seed int64, floors []int) {
		log.Printf("Cave %d: %d floor(s) %v", seed, len(floors), floors)
	})
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("====================================")
	log.Printf("Migration complete! Total floors migrated: %d", total)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

// migrate copies every floor of each cave from src to dst and returns how many
// were copied. progress is called once per cave before its floors are copied.
func migrate(src, dst cave.MementoStore, caves []int64, dryRun bool, progress func(int64, []int)) (int, error) {
	total := 0
	for _, seed := range caves {
		floors, err := src.Floors(seed)
		if err != nil {
			return total, fmt.Errorf("cave %d: %w", seed, err)
		}
		if progress != nil {
			progress(seed, floors)
		}
		for _, floor := range floors {
			m, err := src.Load(seed, floor)
			if err != nil {
				return total, fmt.Errorf("cave %d: %w", seed, err)
			}
			if !dryRun {
				if err := dst.Save(seed, m); err != nil {
					return total, fmt.Errorf("cave %d: %w", seed, err)
				}
			}
			total++
		}
	}
	return total, nil
}
