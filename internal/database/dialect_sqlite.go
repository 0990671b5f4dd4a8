package database

import (
	"strings"
)

// SQLiteDialect implements Dialect for SQLite databases.
type SQLiteDialect struct{}

// DriverName returns "sqlite" for the modernc.org/sqlite driver.
func (d *SQLiteDialect) DriverName() string {
	return "sqlite"
}

// Placeholder returns "?" for all positions.
func (d *SQLiteDialect) Placeholder(position int) string {
	return "?"
}

// InitStatements returns SQLite PRAGMA statements.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

// TimestampType returns "TIMESTAMP".
func (d *SQLiteDialect) TimestampType() string {
	return "TIMESTAMP"
}

// IsDuplicateKeyError returns true if the error is a SQLite UNIQUE or PRIMARY KEY violation.
func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
