// Package mysql implements the inventory sink on MySQL with
// INSERT ... ON DUPLICATE KEY UPDATE, the statement the warehouse was first
// loaded with. Multi-row statements are chunked inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"inventario/internal/ddl"
	"inventario/internal/storage"
)

// rowsPerStatement keeps placeholders well under MySQL's 65535 limit.
const rowsPerStatement = 500

// Repository upserts into one MySQL table.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// NewRepository parses the DSN, forces ClientFoundRows and ParseTime, and
// pings the server.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	dsn.ClientFoundRows = true
	dsn.ParseTime = true
	conn, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql ping: %w", err)
	}
	return New(db, cfg), func() { _ = db.Close() }, nil
}

// New wraps an open database.
func New(db *sql.DB, cfg storage.Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// Upsert applies rows in one transaction. MySQL reports 1 per insert and 2
// per update, so the applied count is the number of rows sent.
func (r *Repository) Upsert(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	var applied int64
	for _, chunk := range storage.Chunks(rows, rowsPerStatement) {
		stmt, args, err := upsertSQL(r.cfg.Table, columns, r.cfg.KeyColumn, chunk)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: upsert: %w", describe(err))
		}
		applied += int64(len(chunk))
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return applied, nil
}

// Exec runs a statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", describe(err))
	}
	return nil
}

// describe prefixes server errors with their error number.
func describe(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return fmt.Errorf("error %d: %w", me.Number, err)
	}
	return err
}

// upsertSQL renders one multi-row statement and its flattened arguments:
//
//	INSERT INTO `t` (`k`,`a`) VALUES (?,?),(?,?)
//	ON DUPLICATE KEY UPDATE `a` = VALUES(`a`)
func upsertSQL(table string, columns []string, key string, rows [][]any) (string, []any, error) {
	if len(columns) == 0 || key == "" {
		return "", nil, fmt.Errorf("mysql: columns and key column are required")
	}
	one := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		tuples[i] = one
		args = append(args, row...)
	}

	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == key {
			continue
		}
		q := Dialect.QuoteIdent(c)
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", q, q))
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s\nON DUPLICATE KEY UPDATE %s",
		Dialect.QuoteFQN(table),
		strings.Join(Dialect.QuoteAll(columns), ","),
		strings.Join(tuples, ","),
		strings.Join(sets, ", "),
	)
	return stmt, args, nil
}

// Dialect renders the inventory table for MySQL (InnoDB, utf8mb4).
var Dialect = ddl.Dialect{
	Name:       "mysql",
	QuoteIdent: func(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" },
	MapType: func(c ddl.ColumnDef) string {
		switch c.Type {
		case ddl.TypeBigInt:
			return "BIGINT"
		case ddl.TypeVarchar:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		case ddl.TypeDecimal:
			return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
		case ddl.TypeTimestamp:
			return "DATETIME(6)"
		}
		return ""
	},
	Guard: func(quotedFQN, create string) string {
		create = strings.Replace(create, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
		return strings.TrimSuffix(create, ";") + " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;"
	},
}
