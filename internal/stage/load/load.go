// Package load inserts the staged CSV into the destination table in fixed
// size batches. A failing batch is logged and skipped; the run always
// continues with the next batch.
package load

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"churnetl/internal/churn"
	"churnetl/internal/config"
	"churnetl/internal/logger"
	"churnetl/internal/metrics"
	"churnetl/internal/parser/csv"
	"churnetl/internal/records"
	"churnetl/internal/stage"
	"churnetl/internal/storage"
	"churnetl/internal/transformer/builtin"
)

// Summary is the outcome of one load run.
type Summary struct {
	storage.Summary
	RunID string
	Table string
}

// Run loads cfg.StagedPath() into cfg.Table. When the staged file is absent
// it logs a hint and returns an error wrapping stage.ErrInputNotFound
// without touching the destination. Batch failures do not make Run fail;
// inspect Summary.Partial and Summary.Err.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) (sum Summary, err error) {
	done := metrics.Step(cfg.Job, "load")
	defer func() { done(err) }()

	path := cfg.StagedPath()
	log.Info("load: looking for staged file", "path", path)
	if err := stage.RequireInput(path); err != nil {
		if errors.Is(err, stage.ErrInputNotFound) {
			log.Error("load: staged file not found", "path", path)
			log.Info("load: run `churnetl transform` first to generate the staged file")
		}
		return Summary{}, err
	}

	t, err := csv.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read staged file: %w", err)
	}
	log.Info("load: staged file read", "rows", t.Len(), "columns", t.Columns)

	columns, rows, err := Prepare(t)
	if err != nil {
		return Summary{}, err
	}
	log.Debug("load: null counts after cleaning", "nulls", nullCounts(columns, rows))

	repo, err := stage.OpenRepository(ctx, cfg)
	if err != nil {
		return Summary{}, err
	}
	defer repo.Close()

	if cfg.Storage.AutoCreateTable {
		err := storage.EnsureTable(ctx, cfg.Storage.Kind, repo, churn.TableDef(cfg.Table))
		switch {
		case errors.Is(err, storage.ErrUnsupported):
			log.Warn("load: backend cannot create tables; create it with `churnetl ddl`", "kind", cfg.Storage.Kind)
		case err != nil:
			return Summary{}, fmt.Errorf("ensure table %s: %w", cfg.Table, err)
		}
	}

	sum = Summary{RunID: uuid.NewString(), Table: cfg.Table}
	log = log.With("run_id", sum.RunID, "table", cfg.Table)
	log.Info("load: loading rows", "total", len(rows), "batch_size", cfg.BatchSize, "kind", cfg.Storage.Kind)

	first := true
	copyFn := func(ctx context.Context, cols []string, batch [][]any) (int64, error) {
		recs := records.FromRows(cols, batch)
		for _, r := range recs {
			SanitizeRecord(r)
		}
		if first && len(recs) > 0 {
			first = false
			log.Debug("load: first cleaned record of batch 1", "record", map[string]any(recs[0]))
		}
		return repo.CopyFrom(ctx, cols, records.ToRows(cols, recs))
	}
	onBatch := func(b storage.BatchResult) {
		metrics.RecordBatch(cfg.Job, b.Err)
		if b.Err != nil {
			metrics.RecordRows(cfg.Job, "failed", b.Rows)
			log.Error("load: batch failed", "batch", b.Index, "rows", fmt.Sprintf("%d-%d", b.Start+1, b.End), "error", b.Err)
			return
		}
		metrics.RecordRows(cfg.Job, "inserted", int(b.Inserted))
		log.Info(fmt.Sprintf("load: inserted rows %d-%d of %d", b.Start+1, b.End, len(rows)), "batch", b.Index, "elapsed", b.Elapsed)
	}

	sum.Summary, err = storage.LoadBatches(ctx, columns, rows, cfg.BatchSize, copyFn, onBatch)
	log.Info("load: finished loading",
		"inserted", sum.Inserted,
		"failed_batches", sum.Failed,
		"batches", len(sum.Batches),
		"elapsed", sum.Elapsed,
	)
	if err != nil {
		return sum, fmt.Errorf("load batches: %w", err)
	}
	return sum, nil
}

// Prepare selects the destination columns in order, coerces numeric columns
// and sanitizes every value. Integer columns carry int64 and float columns
// float64; anything unparseable or non-finite becomes nil.
func Prepare(t *records.Table) ([]string, [][]any, error) {
	columns := churn.DestinationColumns()
	sel, err := t.Select(columns)
	if err != nil {
		return nil, nil, err
	}

	types := make(map[string]string, len(columns))
	for _, c := range churn.NumericColumns() {
		kind, _ := churn.KindOf(c)
		types[c] = string(kind)
	}
	sel.Rows = builtin.Coerce{Types: types}.Apply(sel.Rows)
	for _, r := range sel.Rows {
		SanitizeRecord(r)
	}
	return columns, records.ToRows(columns, sel.Rows), nil
}

// nullCounts returns the number of nil values per column.
func nullCounts(columns []string, rows [][]any) map[string]int {
	out := make(map[string]int, len(columns))
	for _, c := range columns {
		out[c] = 0
	}
	for _, row := range rows {
		for j, v := range row {
			if v == nil && j < len(columns) {
				out[columns[j]]++
			}
		}
	}
	return out
}

// SanitizeRecord replaces NaN and ±Inf with nil in place.
func SanitizeRecord(r records.Record) {
	for k, v := range r {
		r[k] = SanitizeValue(v)
	}
}

// SanitizeValue maps non-finite floats to nil and leaves other values as is.
func SanitizeValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
	}
	return v
}
