package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"inventario/internal/metrics"
	"inventario/internal/schema"
)

// Sink upserts reconciled product batches into a Repository.
type Sink struct {
	Repo    Repository
	Columns []string
	Job     string
	Logger  *log.Logger
}

// NewSink binds repo to the inventory column order.
func NewSink(repo Repository, job string) *Sink {
	return &Sink{Repo: repo, Columns: schema.Columns, Job: job, Logger: log.Default()}
}

// Upsert writes ps in one transaction and returns the applied row count. An
// empty batch never reaches the repository.
func (s *Sink) Upsert(ctx context.Context, ps []schema.Product) (int64, error) {
	if len(ps) == 0 {
		return 0, nil
	}
	start := time.Now()
	n, err := s.Repo.Upsert(ctx, s.Columns, schema.Rows(ps))
	if err != nil {
		return 0, fmt.Errorf("upsert %d rows: %w", len(ps), err)
	}
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("sink: upserted=%d elapsed=%s", n, time.Since(start).Truncate(time.Millisecond))
	metrics.RecordRows(s.Job, "upserted", n)
	return n, nil
}
