// Package database provides SQL persistence for floor mementos, on SQLite by
// default or PostgreSQL for shared deployments.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the SQL connection and its dialect.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the database described by cfg and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.ConnString()
	default:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pg, ok := dialect.(*PostgresDialect); ok {
		pg.configurePool(db, cfg.Postgres)
	} else {
		// One writer keeps SQLite from returning SQLITE_BUSY under WAL.
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database (%s): %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping verifies the connection is alive.
func (d *Database) Ping() error {
	return d.db.Ping()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// migrate creates the database schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS floor_mementos (
			cave_seed BIGINT NOT NULL,
			floor INTEGER NOT NULL,
			data TEXT NOT NULL,
			rocks INTEGER NOT NULL DEFAULT 0,
			enemies INTEGER NOT NULL DEFAULT 0,
			saved_at %s NOT NULL,
			PRIMARY KEY (cave_seed, floor)
		)`, d.dialect.TimestampType()),
	}

	for _, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
