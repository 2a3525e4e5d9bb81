// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the inventory ETL.
//
// It exposes a narrow Backend interface (counters and timings) and a global,
// pluggable backend that defaults to a no-op, so recording is always safe even
// when no backend is configured. Concrete systems live in subpackages
// (prompush, datadog).
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StageTotal    = "inventario_stage_total"
	StageDuration = "inventario_stage_duration_seconds"
	RowsTotal     = "inventario_rows_total"
	DroppedTotal  = "inventario_rows_dropped_total"
	WarningsTotal = "inventario_warnings_total"
	SourcesTotal  = "inventario_sources_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one pipeline stage run and its duration.
func RecordStep(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows counts rows by kind: "read", "normalized" or "upserted".
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordDrop counts rows removed by a transform stage for a reason.
func RecordDrop(job, stage, reason string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(DroppedTotal, float64(delta), Labels{
		"job":    job,
		"stage":  stage,
		"reason": reason,
	})
}

// RecordWarning counts a batch-level warning.
func RecordWarning(job, stage string) {
	backend.IncCounter(WarningsTotal, 1, Labels{
		"job":   job,
		"stage": stage,
	})
}

// RecordSource counts a source by outcome: "read", "failed" or "skipped".
func RecordSource(job, status string) {
	backend.IncCounter(SourcesTotal, 1, Labels{
		"job":    job,
		"status": status,
	})
}
