package rest

import (
	"context"

	"churnetl/internal/storage"
	pgddl "churnetl/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

// init registers the "rest" backend. The hosted table is Postgres, so its
// DDL is rendered by the Postgres builder and applied out of band.
func init() {
	storage.Register("rest", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			URL:     cfg.URL,
			Key:     cfg.Key,
			Table:   cfg.Table,
			Columns: cfg.Columns,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("rest", pgddl.BuildCreateTableSQL)
}

type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
