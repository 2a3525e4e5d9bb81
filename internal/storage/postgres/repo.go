// Package postgres implements the inventory sink on Postgres with pgx v5.
// A batch is COPYed into a transaction-scoped temp table and merged into the
// target with INSERT ... ON CONFLICT DO UPDATE.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"inventario/internal/ddl"
	"inventario/internal/storage"
)

// stageTable is the temp table name; it is dropped on commit.
const stageTable = "inventario_stage"

// Repository upserts into one Postgres table.
type Repository struct {
	pool *pgxpool.Pool
	cfg  storage.Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// Upsert stages rows with COPY and merges them in one transaction.
func (r *Repository) Upsert(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	merge, err := mergeSQL(r.cfg.Table, stageTable, columns, r.cfg.KeyColumn)
	if err != nil {
		return 0, err
	}
	staged, err := copyRows(rows)
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, stageSQL(r.cfg.Table, stageTable)); err != nil {
		return 0, fmt.Errorf("postgres: create stage: %w", describe(err))
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{stageTable}, columns, pgx.CopyFromRows(staged))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy into stage: %w", describe(err))
	}
	if _, err := tx.Exec(ctx, merge); err != nil {
		return 0, fmt.Errorf("postgres: merge: %w", describe(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return describe(err)
	}
	return nil
}

// describe surfaces the server detail and SQLSTATE of a PgError.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
	}
	return err
}

// copyRows converts decimal values to pgtype.Numeric for the COPY binary
// protocol. Other values pass through.
func copyRows(rows [][]any) ([][]any, error) {
	out := make([][]any, len(rows))
	for i, row := range rows {
		conv := make([]any, len(row))
		for j, v := range row {
			d, ok := v.(decimal.Decimal)
			if !ok {
				conv[j] = v
				continue
			}
			var n pgtype.Numeric
			if err := n.Scan(d.String()); err != nil {
				return nil, fmt.Errorf("postgres: row %d: numeric %s: %w", i, d, err)
			}
			conv[j] = n
		}
		out[i] = conv
	}
	return out, nil
}

func stageSQL(table, stage string) string {
	return fmt.Sprintf("CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgIdent(stage), Dialect.QuoteFQN(table))
}

// mergeSQL renders:
//
//	INSERT INTO "t" ("k","a") SELECT "k","a" FROM "stage"
//	ON CONFLICT ("k") DO UPDATE SET "a" = EXCLUDED."a"
func mergeSQL(table, stage string, columns []string, key string) (string, error) {
	if len(columns) == 0 || key == "" {
		return "", fmt.Errorf("postgres: columns and key column are required")
	}
	cols := strings.Join(Dialect.QuoteAll(columns), ",")
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == key {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", pgIdent(c), pgIdent(c)))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s\nON CONFLICT (%s) DO UPDATE SET %s",
		Dialect.QuoteFQN(table), cols, cols, pgIdent(stage), pgIdent(key), strings.Join(sets, ", ")), nil
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// Dialect renders the inventory table for Postgres.
var Dialect = ddl.Dialect{
	Name:       "postgres",
	QuoteIdent: pgIdent,
	MapType: func(c ddl.ColumnDef) string {
		switch c.Type {
		case ddl.TypeBigInt:
			return "BIGINT"
		case ddl.TypeVarchar:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		case ddl.TypeDecimal:
			return fmt.Sprintf("NUMERIC(%d,%d)", c.Precision, c.Scale)
		case ddl.TypeTimestamp:
			return "TIMESTAMPTZ"
		}
		return ""
	},
}
