package database

// Dialect abstracts the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	// SQLite: "sqlite", PostgreSQL: "postgres"
	DriverName() string

	// Placeholder returns the parameter placeholder for the given position (1-indexed).
	// SQLite: "?" (ignores position), PostgreSQL: "$1", "$2", etc.
	Placeholder(position int) string

	// InitStatements returns statements run once after connecting.
	InitStatements() []string

	// TimestampType returns the column type for timestamps.
	TimestampType() string

	// IsDuplicateKeyError returns true if the error is a unique constraint violation.
	IsDuplicateKeyError(err error) bool
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect creates a new Dialect for the given type.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}
