// Package stage holds what the transform, load and validate stages share:
// the missing-input sentinel and repository construction from config.
package stage

import (
	"context"
	"errors"
	"fmt"

	"churnetl/internal/churn"
	"churnetl/internal/config"
	"churnetl/internal/datasource/file"
	"churnetl/internal/storage"
)

// ErrInputNotFound is returned when a stage's input file does not exist.
// Callers treat it as a graceful stop rather than a failure.
var ErrInputNotFound = errors.New("input file not found")

// RequireInput returns an error wrapping ErrInputNotFound when path is not
// an existing regular file.
func RequireInput(path string) error {
	ok, err := file.Exists(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	return nil
}

// StorageConfig maps the pipeline config onto the backend-agnostic
// repository settings for the destination table.
func StorageConfig(cfg config.Config) storage.Config {
	return storage.Config{
		Kind:    cfg.Storage.Kind,
		DSN:     cfg.Storage.DSN,
		URL:     cfg.Storage.URL,
		Key:     cfg.Storage.Key,
		Table:   cfg.Table,
		Columns: churn.DestinationColumns(),
		Timeout: cfg.Storage.Timeout.Duration,
	}
}

// OpenRepository validates cfg and opens the configured destination. Missing
// credentials surface as *config.Error before any connection is attempted.
func OpenRepository(ctx context.Context, cfg config.Config) (storage.Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	repo, err := storage.New(ctx, StorageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Kind, err)
	}
	return repo, nil
}
