// Package sqlite implements the inventory sink on SQLite through
// database/sql and the pure-Go modernc.org/sqlite driver. Rows are upserted
// with INSERT ... ON CONFLICT DO UPDATE inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"inventario/internal/ddl"
	"inventario/internal/storage"
)

// Repository upserts into one SQLite table.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// NewRepository opens and pings the database, returning a close function.
//
// DSN is passed to the driver as is, e.g. "file:inventario.db" or
// "file::memory:?cache=shared".
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return New(db, cfg), func() { _ = db.Close() }, nil
}

// New wraps an open database.
func New(db *sql.DB, cfg storage.Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// Upsert applies rows in one transaction. Every row counts once whether it
// was inserted or updated.
func (r *Repository) Upsert(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmtSQL, err := upsertSQL(r.cfg.Table, columns, r.cfg.KeyColumn)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare upsert: %w", err)
	}
	defer stmt.Close()

	var applied int64
	for i, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: upsert row %d: %w", i, err)
		}
		applied++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return applied, nil
}

// Exec runs a statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// upsertSQL renders:
//
//	INSERT INTO "t" ("k","a") VALUES (?,?)
//	ON CONFLICT ("k") DO UPDATE SET "a" = excluded."a"
func upsertSQL(table string, columns []string, key string) (string, error) {
	if len(columns) == 0 || key == "" {
		return "", fmt.Errorf("sqlite: columns and key column are required")
	}
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == key {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", ident(c), ident(c)))
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)\nON CONFLICT (%s) DO UPDATE SET %s",
		Dialect.QuoteFQN(table),
		strings.Join(Dialect.QuoteAll(columns), ","),
		ph,
		ident(key),
		strings.Join(sets, ", "),
	), nil
}

func ident(s string) string { return Dialect.QuoteIdent(s) }

// Dialect renders the inventory table for SQLite. Types follow SQLite
// affinity rules; lengths are not enforced by SQLite but kept for clarity.
var Dialect = ddl.Dialect{
	Name:       "sqlite",
	QuoteIdent: func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	MapType: func(c ddl.ColumnDef) string {
		switch c.Type {
		case ddl.TypeBigInt:
			return "INTEGER"
		case ddl.TypeVarchar:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		case ddl.TypeDecimal:
			return fmt.Sprintf("NUMERIC(%d,%d)", c.Precision, c.Scale)
		case ddl.TypeTimestamp:
			return "TIMESTAMP"
		}
		return ""
	},
}
