package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// BatchResult is the outcome of one batch. Start is the 0-based offset of the
// first row and End the exclusive offset of the last; Index is 1-based.
type BatchResult struct {
	Index    int
	Start    int
	End      int
	Rows     int
	Inserted int64
	Err      error
	Elapsed  time.Duration
}

// Summary aggregates the batch results of one load.
type Summary struct {
	Total    int
	Inserted int64
	Failed   int
	Batches  []BatchResult
	Elapsed  time.Duration
}

// Partial reports whether at least one batch failed.
func (s Summary) Partial() bool { return s.Failed > 0 }

// Err joins the errors of every failed batch, or returns nil.
func (s Summary) Err() error {
	var errs []error
	for _, b := range s.Batches {
		if b.Err != nil {
			errs = append(errs, fmt.Errorf("batch %d (rows %d-%d): %w", b.Index, b.Start+1, b.End, b.Err))
		}
	}
	return errors.Join(errs...)
}

// LoadBatches splits rows into consecutive batches of batchSize (the last
// may be shorter) and calls copyFn once per batch, strictly in order. A
// failing batch is recorded in the Summary and the next batch is attempted;
// nothing is retried or rolled back. onBatch, when non-nil, observes every
// result as it completes.
//
// The returned error is non-nil only for invalid arguments or when ctx is
// canceled before all batches were attempted.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
	onBatch func(BatchResult),
) (Summary, error) {
	if batchSize <= 0 {
		return Summary{}, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return Summary{}, fmt.Errorf("copyFn must not be nil")
	}

	sum := Summary{Total: len(rows)}
	start := time.Now()

	for i, idx := 0, 1; i < len(rows); i, idx = i+batchSize, idx+1 {
		if err := ctx.Err(); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, err
		}
		end := min(i+batchSize, len(rows))

		t0 := time.Now()
		n, err := copyFn(ctx, columns, rows[i:end])
		res := BatchResult{
			Index:   idx,
			Start:   i,
			End:     end,
			Rows:    end - i,
			Err:     err,
			Elapsed: time.Since(t0),
		}
		if err != nil {
			sum.Failed++
		} else {
			res.Inserted = n
			sum.Inserted += n
		}
		sum.Batches = append(sum.Batches, res)
		if onBatch != nil {
			onBatch(res)
		}
	}
	sum.Elapsed = time.Since(start)
	return sum, nil
}
