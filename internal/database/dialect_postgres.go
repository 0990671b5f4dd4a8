package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// PostgresDialect implements Dialect for PostgreSQL databases via lib/pq.
type PostgresDialect struct{}

// DriverName returns "postgres" for lib/pq.
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// Placeholder returns "$N" for the given position.
func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

// InitStatements returns nothing; PostgreSQL needs no per-connection setup here.
func (d *PostgresDialect) InitStatements() []string {
	return nil
}

// TimestampType returns "TIMESTAMPTZ".
func (d *PostgresDialect) TimestampType() string {
	return "TIMESTAMPTZ"
}

// IsDuplicateKeyError returns true if the error is a PostgreSQL unique violation.
func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// PostgreSQL error code 23505 is unique_violation
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "unique constraint")
}

func (d *PostgresDialect) configurePool(db *sql.DB, cfg PostgresConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
