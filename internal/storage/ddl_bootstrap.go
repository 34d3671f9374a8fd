package storage

import (
	"context"
	"fmt"
	"sync"

	"churnetl/internal/ddl"
)

// DDLBuilder renders a backend-specific CREATE TABLE statement.
type DDLBuilder func(def ddl.TableDef) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL registers (or replaces) the DDL builder for kind. It is
// typically called from backend packages' init functions.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// BuildDDL renders the CREATE TABLE statement for def in the dialect of kind.
func BuildDDL(kind string, def ddl.TableDef) (string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no DDL builder registered for storage.kind=%q", kind)
	}
	return fn(def)
}

// EnsureTable renders def for kind and applies it through repo.Exec. The
// registered builders emit idempotent statements, so calling it for an
// existing table is harmless.
func EnsureTable(ctx context.Context, kind string, repo Repository, def ddl.TableDef) error {
	stmt, err := BuildDDL(kind, def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
