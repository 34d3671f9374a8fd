// Package transform turns the raw churn export into the staged CSV the
// loader consumes.
package transform

import (
	"context"
	"fmt"
	"time"

	"churnetl/internal/churn"
	"churnetl/internal/config"
	"churnetl/internal/datasource"
	"churnetl/internal/datasource/httpds"
	"churnetl/internal/logger"
	"churnetl/internal/metrics"
	"churnetl/internal/parser"
	"churnetl/internal/parser/csv"
	"churnetl/internal/records"
	"churnetl/internal/transformer"
	"churnetl/internal/transformer/builtin"
)

// Result describes one transform run.
type Result struct {
	Path    string
	Rows    int
	Medians map[string]float64
	Elapsed time.Duration
}

// Run reads cfg.RawFile(), cleans it, adds the engineered features and
// writes cfg.StagedPath(). A missing raw file is an error that satisfies
// errors.Is(err, os.ErrNotExist); a missing source column wraps
// records.ErrColumnNotFound.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) (res Result, err error) {
	done := metrics.Step(cfg.Job, "transform")
	defer func() { done(err) }()
	start := time.Now()

	raw := cfg.RawFile()
	log.Info("transform: reading raw file", "path", raw)
	t, err := read(ctx, raw, cfg.Storage.Timeout.Duration)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordRows(cfg.Job, "read", t.Len())
	log.Debug("transform: raw columns", "columns", t.Columns)

	medians, err := Apply(t)
	if err != nil {
		return Result{}, err
	}
	log.Info("transform: imputed medians", "medians", medians)

	out := cfg.StagedPath()
	if err := csv.WriteFile(out, t); err != nil {
		return Result{}, fmt.Errorf("write staged file: %w", err)
	}
	metrics.RecordRows(cfg.Job, "staged", t.Len())

	res = Result{Path: out, Rows: t.Len(), Medians: medians, Elapsed: time.Since(start)}
	log.Info("transform: wrote staged file", "path", out, "rows", res.Rows, "columns", len(t.Columns), "elapsed", res.Elapsed)
	return res, nil
}

func read(ctx context.Context, location string, timeout time.Duration) (*records.Table, error) {
	var client *httpds.Client
	if datasource.IsRemote(location) {
		client = httpds.NewClient(httpds.Config{Timeout: timeout, MaxRetries: 3})
	}
	rc, err := datasource.For(location, client).Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("read raw file: %w", err)
	}
	defer rc.Close()

	var p parser.Parser = csv.NewParser()
	t, err := p.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse raw file %s: %w", location, err)
	}
	return t, nil
}

// Apply transforms a raw table into the staged shape in place and returns
// the medians used for imputation.
func Apply(t *records.Table) (map[string]float64, error) {
	features := churn.Features{}
	need := append(append([]string{}, churn.RawNumericColumns...), churn.RawServiceColumns...)
	need = append(need, features.Inputs()...)
	need = append(need, churn.DroppedColumns...)
	if err := t.Require(need...); err != nil {
		return nil, err
	}

	types := make(map[string]string, len(churn.RawNumericColumns))
	for _, c := range churn.RawNumericColumns {
		types[c] = "float"
	}
	median := &builtin.FillMedian{Columns: churn.RawNumericColumns}
	chain := transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{Types: types},
		median,
		builtin.FillConstant{Columns: churn.RawServiceColumns, Value: churn.UnknownCategory},
		features,
	}
	t.Rows = chain.Apply(t.Rows)
	for _, c := range features.Columns() {
		t.AddColumn(c)
	}

	if err := t.Drop(churn.DroppedColumns...); err != nil {
		return nil, err
	}
	t.Rename(churn.StagedName)

	out := make(map[string]float64, len(median.Medians))
	for col, m := range median.Medians {
		out[churn.StagedName(col)] = m
	}
	return out, nil
}
