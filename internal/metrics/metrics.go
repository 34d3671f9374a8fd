// Package metrics records pipeline metrics through a pluggable Backend.
//
// The default backend is a no-op, so stages call the Record helpers
// unconditionally; cmd/churnetl installs a Prometheus Pushgateway (prompush)
// or DogStatsD (datadog) backend when configured.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal           = "churnetl_step_total"
	StepDurationSeconds = "churnetl_step_duration_seconds"
	RowsTotal           = "churnetl_rows_total"
	BatchesTotal        = "churnetl_batches_total"
	ValidationRows      = "churnetl_validation_rows"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error { return current().Flush() }

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep counts one execution of a pipeline step and observes its
// duration.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{"job": job, "step": step, "status": status(err)}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// Step starts timing a step and returns the function that records it:
//
//	done := metrics.Step(job, "load")
//	defer func() { done(err) }()
func Step(job, step string) func(error) {
	start := time.Now()
	return func(err error) { RecordStep(job, step, err, time.Since(start)) }
}

// RecordRows adds n rows of the given kind (read, staged, inserted, failed).
// Non-positive n is ignored.
func RecordRows(job, kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{"job": job, "kind": kind})
}

// RecordBatch counts one submitted batch by outcome.
func RecordBatch(job string, err error) {
	current().IncCounter(BatchesTotal, 1, Labels{"job": job, "status": status(err)})
}

// RecordValidation publishes a validator row count (original, loaded, unique).
func RecordValidation(job, kind string, n int) {
	current().SetGauge(ValidationRows, float64(n), Labels{"job": job, "kind": kind})
}
