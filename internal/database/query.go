package database

import (
	"strings"
)

// QueryBuilder converts SQL queries with ? placeholders to dialect-specific format.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build converts a query with ? placeholders to dialect-specific placeholders.
//
//	input:    "SELECT data FROM floor_mementos WHERE cave_seed = ? AND floor = ?"
//	SQLite:   unchanged
//	Postgres: "SELECT data FROM floor_mementos WHERE cave_seed = $1 AND floor = $2"
//
// Question marks inside single-quoted literals are left alone.
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var result strings.Builder
	position := 1
	inLiteral := false

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			result.WriteByte(c)
		case c == '?' && !inLiteral:
			result.WriteString(qb.dialect.Placeholder(position))
			position++
		default:
			result.WriteByte(c)
		}
	}

	return result.String()
}
