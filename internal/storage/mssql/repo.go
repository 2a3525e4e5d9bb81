// Package mssql implements the inventory sink on Microsoft SQL Server with
// the go-mssqldb bulk copy API. A batch is bulk-copied into a session temp
// table (#stage) and merged into the target in the same transaction.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
	"github.com/shopspring/decimal"

	"inventario/internal/ddl"
	"inventario/internal/storage"
)

const stageTable = "#inventario_stage"

// Repository upserts into one SQL Server table.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// Upsert bulk-copies rows into #stage and merges them into the target. The
// returned count is the number of rows copied, one per applied row.
func (r *Repository) Upsert(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	merge, err := mergeSQL(r.cfg.Table, stageTable, columns, r.cfg.KeyColumn)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	if _, err := tx.ExecContext(ctx, stageSQL(r.cfg.Table, stageTable, columns)); err != nil {
		rollback()
		return 0, fmt.Errorf("create stage: %w", describe(err))
	}

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(stageTable, mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, copyVals(rows[i])...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, describe(err))
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", describe(err))
	}
	copied, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, merge); err != nil {
		rollback()
		return 0, fmt.Errorf("merge: %w", describe(err))
	}
	if _, err := tx.ExecContext(ctx, "DROP TABLE "+stageTable); err != nil {
		rollback()
		return 0, fmt.Errorf("drop stage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return copied, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return describe(err)
}

// describe adds the server error number to mssql.Error values.
func describe(err error) error {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return fmt.Errorf("error %d: %w", msErr.Number, err)
	}
	return err
}

// copyVals converts decimals to strings; bulk copy parses them against the
// DECIMAL column.
func copyVals(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if d, ok := v.(decimal.Decimal); ok {
			out[i] = d.String()
			continue
		}
		out[i] = v
	}
	return out
}

// stageSQL clones the target's column shape into an empty temp table.
func stageSQL(table, stage string, columns []string) string {
	return fmt.Sprintf("SELECT TOP 0 %s INTO %s FROM %s",
		strings.Join(Dialect.QuoteAll(columns), ","), msIdent(stage), Dialect.QuoteFQN(table))
}

// mergeSQL renders a MERGE keyed on key that updates matched rows and
// inserts the rest.
func mergeSQL(table, stage string, columns []string, key string) (string, error) {
	if len(columns) == 0 || key == "" {
		return "", fmt.Errorf("mssql: columns and key column are required")
	}
	sets := make([]string, 0, len(columns))
	src := make([]string, len(columns))
	for i, c := range columns {
		src[i] = "S." + msIdent(c)
		if c == key {
			continue
		}
		sets = append(sets, fmt.Sprintf("T.%s = S.%s", msIdent(c), msIdent(c)))
	}
	return fmt.Sprintf(`MERGE %s WITH (HOLDLOCK) AS T
USING %s AS S
   ON T.%s = S.%s
WHEN MATCHED THEN
  UPDATE SET %s
WHEN NOT MATCHED THEN
  INSERT (%s) VALUES (%s);`,
		Dialect.QuoteFQN(table), msIdent(stage), msIdent(key), msIdent(key),
		strings.Join(sets, ", "),
		strings.Join(Dialect.QuoteAll(columns), ","), strings.Join(src, ",")), nil
}

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// Dialect renders the inventory table for SQL Server. SQL Server has no
// CREATE TABLE IF NOT EXISTS, so the statement is guarded with OBJECT_ID.
var Dialect = ddl.Dialect{
	Name:       "mssql",
	QuoteIdent: msIdent,
	MapType: func(c ddl.ColumnDef) string {
		switch c.Type {
		case ddl.TypeBigInt:
			return "BIGINT"
		case ddl.TypeVarchar:
			if c.Length <= 0 || c.Length > 4000 {
				return "NVARCHAR(MAX)"
			}
			return fmt.Sprintf("NVARCHAR(%d)", c.Length)
		case ddl.TypeDecimal:
			return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
		case ddl.TypeTimestamp:
			return "DATETIME2"
		}
		return ""
	},
	Guard: func(quotedFQN, create string) string {
		unquoted := strings.NewReplacer("[", "", "]", "").Replace(quotedFQN)
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND", strings.ReplaceAll(unquoted, "'", "''"), create)
	},
}
