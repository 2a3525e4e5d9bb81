// Package main wires the inventory ETL end to end: extract every configured
// source, normalize the union into canonical products, and upsert the batch
// into the warehouse. This file keeps the CLI layer thin: it depends only on
// storage-agnostic interfaces and never imports database drivers directly.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"inventario/internal/config"
	"inventario/internal/datasource"
	"inventario/internal/metrics"
	"inventario/internal/reader"
	"inventario/internal/runlock"
	"inventario/internal/schema"
	"inventario/internal/storage"
	"inventario/internal/transformer"
	"inventario/internal/transformer/builtin"
	"inventario/pkg/records"
)

type Repository = storage.Repository

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		return storage.New(ctx, cfg)
	}

	buildSourcesFn = func(ctx context.Context, spec config.Pipeline) ([]datasource.Source, error) {
		return datasource.FromConfig(ctx, spec.Sources, spec.Runtime, datasource.Deps{})
	}

	acquireLockFn = acquireLock

	nowFn = time.Now
)

// runStats is the end-of-run summary.
type runStats struct {
	read       int
	normalized int
	upserted   int64
}

// run executes Extract → Transform → Load strictly in sequence. Row defects
// are dropped and reported by the normalizer; only source cancellation,
// locking and sink failures abort the run.
func run(ctx context.Context, spec config.Pipeline, runID string) (runStats, error) {
	var stats runStats

	release, err := acquireLockFn(ctx, spec)
	if err != nil {
		return stats, err
	}
	defer release()

	mode, err := schema.ParseKeyMode(spec.Transform.KeyMode)
	if err != nil {
		return stats, err
	}

	var tbl records.Table
	err = step(spec.Job, "EXTRACT", func() error {
		srcs, err := buildSourcesFn(ctx, spec)
		if err != nil {
			return fmt.Errorf("build sources: %w", err)
		}
		rd := reader.Reader{
			Sources: srcs,
			Options: spec.Parser.Options,
			Workers: spec.Runtime.ReaderWorkers,
			Job:     spec.Job,
		}
		tbl, err = rd.Read(ctx)
		return err
	})
	if err != nil {
		return stats, err
	}
	stats.read = tbl.Len()

	var products []schema.Product
	err = step(spec.Job, "TRANSFORM", func() error {
		n := builtin.NewNormalizer(builtin.Options{
			KeyMode: mode,
			Aliases: builtin.DefaultAliases().With(spec.Transform.Aliases),
			Report: transformer.Reporters{
				transformer.LogReporter{},
				transformer.MetricsReporter{Job: spec.Job},
			},
			Now: nowFn,
		})
		products = n.Run(tbl)
		log.Printf("transform: final rows=%d", len(products))
		metrics.RecordRows(spec.Job, "normalized", int64(len(products)))
		return ctx.Err()
	})
	if err != nil {
		return stats, err
	}
	stats.normalized = len(products)

	err = step(spec.Job, "LOAD", func() error {
		if len(products) == 0 {
			log.Printf("load: WARNING no data to load")
			return nil
		}
		n, err := load(ctx, spec, mode, products)
		stats.upserted = n
		return err
	})
	if err != nil {
		return stats, err
	}

	log.Printf("summary: job=%s run_id=%s read=%d normalized=%d upserted=%d",
		spec.Job, runID, stats.read, stats.normalized, stats.upserted)
	return stats, nil
}

// load opens the repository, optionally creates the table and upserts the
// batch in one transaction.
func load(ctx context.Context, spec config.Pipeline, mode schema.KeyMode, products []schema.Product) (int64, error) {
	cfg, err := storage.ConfigFromPipeline(spec)
	if err != nil {
		return 0, err
	}
	cfg.KeyMode = mode
	log.Printf("load: storage=%s table=%s rows=%d", cfg.Kind, cfg.Table, len(products))

	repo, err := newRepositoryFn(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	if spec.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, cfg, repo); err != nil {
			return 0, fmt.Errorf("apply DDL: %w", err)
		}
		log.Printf("load: table ensured: %s", cfg.Table)
	}

	n, err := storage.NewSink(repo, spec.Job).Upsert(ctx, products)
	if err != nil {
		return 0, err
	}
	log.Printf("load: loaded/updated=%d", n)
	return n, nil
}

// step runs one stage with start/ok/failed logs and records its outcome.
func step(job, name string, fn func() error) error {
	log.Printf("[%s] start", name)
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStep(job, name, err, elapsed)
	if err != nil {
		log.Printf("[%s] failed after %s: %v", name, elapsed.Truncate(time.Millisecond), err)
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Printf("[%s] ok in %s", name, elapsed.Truncate(time.Millisecond))
	return nil
}

// acquireLock takes the per-job Redis lock when one is configured. The
// returned release function is always safe to call.
func acquireLock(ctx context.Context, spec config.Pipeline) (func(), error) {
	locker, err := runlock.New(spec.Lock.RedisURL, time.Duration(spec.Lock.TTLSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	lk, err := locker.Acquire(ctx, spec.Job)
	if err != nil {
		_ = locker.Close()
		return nil, err
	}
	if locker != nil {
		log.Printf("lock: acquired %s", runlock.Key(spec.Job))
	}
	return func() {
		if err := lk.Release(context.Background()); err != nil {
			log.Printf("lock: release error: %v", err)
		}
		_ = locker.Close()
	}, nil
}
