package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect hides the differences between the supported SQL backends.
// Queries are written with ? placeholders and rewritten per dialect.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// GooseDialect returns the dialect name goose expects.
	GooseDialect() string

	// RewriteQuery converts placeholder syntax if needed.
	RewriteQuery(query string) string

	// ConfigureConnection applies pool and session settings.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the embedded migrations subdirectory.
	MigrationsSubdir() string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
