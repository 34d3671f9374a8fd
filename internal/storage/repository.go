// Package storage contains the backend-agnostic repository contract, the
// backend registry and the batched loader shared by every destination.
//
// Backends (rest, postgres, sqlite, mssql, mysql) register a Factory in their
// init functions; callers import internal/storage/all for side effects and
// open a Repository with New.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"churnetl/internal/records"
)

// ErrUnsupported is returned by backends for operations they cannot perform,
// e.g. DDL over the hosted REST interface.
var ErrUnsupported = errors.New("storage: operation not supported by backend")

// Repository is the destination table as seen by the pipeline stages.
type Repository interface {
	// CopyFrom inserts rows (aligned to columns) in a single request or
	// statement and returns the number of rows the backend reports inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// SelectAll returns every row of the table, including server-generated
	// columns such as id.
	SelectAll(ctx context.Context) (*records.Table, error)

	// Exec runs a DDL/maintenance statement.
	Exec(ctx context.Context, sql string) error

	Close()
}

// Config carries the backend-independent connection settings.
type Config struct {
	Kind string

	// DSN is the connection string of SQL backends.
	DSN string

	// URL and Key address the hosted REST table service.
	URL string
	Key string

	// Table is the destination table and Columns its insert column order.
	Table   string
	Columns []string

	// Timeout bounds each backend request. Zero means no explicit timeout.
	Timeout time.Duration
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
