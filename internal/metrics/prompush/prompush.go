// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. Collectors are registered on a private registry and pushed
// on Flush; the pipeline job is the Pushgateway grouping key, so it is not a
// label on the collectors.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"inventario/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stageCounter   *prometheus.CounterVec
	stageDuration  *prometheus.SummaryVec
	rowCounter     *prometheus.CounterVec
	dropCounter    *prometheus.CounterVec
	warningCounter *prometheus.CounterVec
	sourceCounter  *prometheus.CounterVec
}

// NewBackend constructs a Prometheus Pushgateway backend.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "inventario"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stageCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StageTotal,
			Help: "Pipeline stage runs by stage and status.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StageDuration,
			Help:       "Pipeline stage duration in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"stage", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows by kind (read, normalized, upserted).",
		}, []string{"kind"}),
		dropCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.DroppedTotal,
			Help: "Rows dropped by the normalizer by stage and reason.",
		}, []string{"stage", "reason"}),
		warningCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.WarningsTotal,
			Help: "Batch-level warnings by stage.",
		}, []string{"stage"}),
		sourceCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SourcesTotal,
			Help: "Sources by outcome (read, failed, skipped).",
		}, []string{"status"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"stage counter":   b.stageCounter,
		"stage summary":   b.stageDuration,
		"row counter":     b.rowCounter,
		"drop counter":    b.dropCounter,
		"warning counter": b.warningCounter,
		"source counter":  b.sourceCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		if b.stageCounter != nil {
			b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.DroppedTotal:
		if b.dropCounter != nil {
			b.dropCounter.WithLabelValues(labels["stage"], labels["reason"]).Add(delta)
		}
	case metrics.WarningsTotal:
		if b.warningCounter != nil {
			b.warningCounter.WithLabelValues(labels["stage"]).Add(delta)
		}
	case metrics.SourcesTotal:
		if b.sourceCounter != nil {
			b.sourceCounter.WithLabelValues(labels["status"]).Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StageDuration || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
