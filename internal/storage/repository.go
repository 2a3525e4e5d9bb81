// Package storage defines the backend-agnostic warehouse contract and a
// registry of backends. Backends register a Factory from init; importing
// inventario/internal/storage/all enables every built-in one.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"inventario/internal/config"
	"inventario/internal/schema"
)

// Repository is one opened warehouse table.
type Repository interface {
	// Upsert inserts or overwrites rows keyed by Config.KeyColumn, aligned to
	// columns, in a single transaction. It returns the number of rows
	// applied, one per input row.
	Upsert(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a statement outside the upsert path, typically DDL.
	Exec(ctx context.Context, sql string) error

	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind  string
	DSN   string
	Table string

	// Columns is the warehouse column order; KeyColumn is the conflict key.
	Columns   []string
	KeyColumn string
	KeyMode   schema.KeyMode
}

// ConfigFromPipeline builds the inventory table configuration from a
// decoded pipeline.
func ConfigFromPipeline(p config.Pipeline) (Config, error) {
	mode, err := schema.ParseKeyMode(p.Transform.KeyMode)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Kind:      p.Storage.Kind,
		DSN:       p.Storage.DB.DSN,
		Table:     p.Storage.DB.Table,
		Columns:   append([]string(nil), schema.Columns...),
		KeyColumn: schema.ColProductCode,
		KeyMode:   mode,
	}, nil
}

// UpdateColumns returns the non-key columns, the ones overwritten on
// conflict.
func (c Config) UpdateColumns() []string {
	out := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		if col != c.KeyColumn {
			out = append(out, col)
		}
	}
	return out
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds or replaces the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository with the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s (registered: %s)", cfg.Kind, strings.Join(ListKinds(), ", "))
	}
	if cfg.KeyColumn == "" || len(cfg.Columns) == 0 {
		return nil, fmt.Errorf("storage %s: columns and key column are required", cfg.Kind)
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("storage %s: table is required", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Chunks splits rows into consecutive slices of at most n rows. Backends that
// render multi-row statements use it to stay under placeholder limits.
func Chunks(rows [][]any, n int) [][][]any {
	if n <= 0 {
		n = len(rows)
	}
	var out [][][]any
	for start := 0; start < len(rows); start += n {
		end := min(start+n, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
