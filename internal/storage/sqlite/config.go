// Package sqlite implements a SQLite-backed storage.Repository using the
// pure-Go modernc.org/sqlite driver. It is used for local runs and for
// exercising the load and validate stages without a network.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:churn.db?_pragma=busy_timeout(5000)"
	//   ":memory:"
	DSN string

	// Table is the target table name. "main.churn" style names are quoted
	// per segment.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
