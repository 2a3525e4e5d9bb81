// Package snowflake implements the inventory sink on Snowflake through the
// gosnowflake database/sql driver. Chunks of rows are merged with
// MERGE INTO ... USING (SELECT ... FROM VALUES ...) inside one transaction.
package snowflake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"inventario/internal/ddl"
	"inventario/internal/storage"
)

// rowsPerStatement bounds the bind count of one MERGE.
const rowsPerStatement = 1000

// Repository upserts into one Snowflake table.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// NewRepository validates the DSN (user:password@account/database/schema?warehouse=wh)
// and pings the account.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if _, err := gosnowflake.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("snowflake dsn: %w", err)
	}
	db, err := sql.Open("snowflake", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("snowflake: open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("snowflake: ping: %w", describe(err))
	}
	return New(db, cfg), func() { _ = db.Close() }, nil
}

// New wraps an open database.
func New(db *sql.DB, cfg storage.Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// Upsert merges rows chunk by chunk in one transaction and counts one per
// row sent.
func (r *Repository) Upsert(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("snowflake: begin tx: %w", err)
	}
	var applied int64
	for _, chunk := range storage.Chunks(rows, rowsPerStatement) {
		stmt, args, err := mergeSQL(r.cfg.Table, columns, r.cfg.KeyColumn, chunk)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("snowflake: merge: %w", describe(err))
		}
		applied += int64(len(chunk))
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("snowflake: commit: %w", err)
	}
	return applied, nil
}

// Exec runs a statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("snowflake: exec: %w", describe(err))
	}
	return nil
}

// describe adds the Snowflake error number and query id when present.
func describe(err error) error {
	var se *gosnowflake.SnowflakeError
	if errors.As(err, &se) {
		return fmt.Errorf("error %d (query %s): %w", se.Number, se.QueryID, err)
	}
	return err
}

// mergeSQL renders one MERGE for a chunk and its flattened arguments:
//
//	MERGE INTO "t" AS T
//	USING (SELECT column1 AS "k", column2 AS "a" FROM VALUES (?,?),(?,?)) AS S
//	ON T."k" = S."k"
//	WHEN MATCHED THEN UPDATE SET T."a" = S."a"
//	WHEN NOT MATCHED THEN INSERT ("k","a") VALUES (S."k",S."a")
func mergeSQL(table string, columns []string, key string, rows [][]any) (string, []any, error) {
	if len(columns) == 0 || key == "" {
		return "", nil, fmt.Errorf("snowflake: columns and key column are required")
	}
	one := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("snowflake: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		tuples[i] = one
		args = append(args, row...)
	}

	proj := make([]string, len(columns))
	src := make([]string, len(columns))
	sets := make([]string, 0, len(columns))
	for i, c := range columns {
		q := Dialect.QuoteIdent(c)
		proj[i] = fmt.Sprintf("column%d AS %s", i+1, q)
		src[i] = "S." + q
		if c != key {
			sets = append(sets, fmt.Sprintf("T.%s = S.%s", q, q))
		}
	}
	k := Dialect.QuoteIdent(key)
	stmt := fmt.Sprintf("MERGE INTO %s AS T\nUSING (SELECT %s FROM VALUES %s) AS S\nON T.%s = S.%s\n"+
		"WHEN MATCHED THEN UPDATE SET %s\nWHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		Dialect.QuoteFQN(table),
		strings.Join(proj, ", "),
		strings.Join(tuples, ","),
		k, k,
		strings.Join(sets, ", "),
		strings.Join(Dialect.QuoteAll(columns), ","),
		strings.Join(src, ","),
	)
	return stmt, args, nil
}

// Dialect renders the inventory table for Snowflake. Quoted identifiers are
// case-sensitive, so column names keep their lower-case spelling.
var Dialect = ddl.Dialect{
	Name:       "snowflake",
	QuoteIdent: func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	MapType: func(c ddl.ColumnDef) string {
		switch c.Type {
		case ddl.TypeBigInt:
			return "NUMBER(19,0)"
		case ddl.TypeVarchar:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		case ddl.TypeDecimal:
			return fmt.Sprintf("NUMBER(%d,%d)", c.Precision, c.Scale)
		case ddl.TypeTimestamp:
			return "TIMESTAMP_NTZ"
		}
		return ""
	},
}
