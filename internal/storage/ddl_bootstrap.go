package storage

import (
	"context"
	"fmt"
	"sync"

	"inventario/internal/ddl"
	"inventario/internal/schema"
)

// DDLBootstrapper renders and applies the CREATE TABLE statement of a
// backend. Backends register one per kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, cfg Config) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates the inventory table for cfg when it does not exist.
func EnsureTable(ctx context.Context, cfg Config, repo Repository) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", cfg.Kind)
	}
	return fn(ctx, repo, cfg)
}

// DialectBootstrapper returns a bootstrapper that renders the inventory
// table with d and executes it through repo.Exec.
func DialectBootstrapper(d ddl.Dialect) DDLBootstrapper {
	return func(ctx context.Context, repo Repository, cfg Config) error {
		stmt, err := ddl.BuildCreateTableSQL(schema.ProductTable(cfg.Table, cfg.KeyMode), d)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: create table %s: %w", d.Name, cfg.Table, err)
		}
		return nil
	}
}
