package mysql

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/ddl"
	"inventario/internal/schema"
	"inventario/internal/storage"
)

func testConfig() storage.Config {
	return storage.Config{
		Kind:      "mysql",
		Table:     "inventario_consolidado",
		Columns:   schema.Columns,
		KeyColumn: schema.ColProductCode,
	}
}

func products(n int) []schema.Product {
	at := time.Date(2026, 10, 14, 3, 0, 0, 0, time.UTC)
	out := make([]schema.Product, n)
	for i := range out {
		out[i] = schema.Product{
			ProductCode: schema.IntKey(int64(1000 + i)),
			Name:        "Producto",
			Description: "Sin descripción disponible",
			Stock:       decimal.NewFromInt(int64(i)),
			Category:    "Otros",
			ImageURL:    "Sin dato disponible",
			LoadedAt:    at,
		}
	}
	return out
}

var insertPrefix = regexp.QuoteMeta("INSERT INTO `inventario_consolidado` (`codigo_producto`,")

// TestUpsertCountsOnePerRow verifies that the applied count ignores MySQL's
// 1-or-2 rows-affected convention.
func TestUpsertCountsOnePerRow(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(insertPrefix).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	n, err := New(db, testConfig()).Upsert(context.Background(), schema.Columns, schema.Rows(products(2)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChunksInOneTransaction(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(insertPrefix).WillReturnResult(sqlmock.NewResult(0, rowsPerStatement))
	mock.ExpectExec(insertPrefix).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := New(db, testConfig()).Upsert(context.Background(), schema.Columns, schema.Rows(products(rowsPerStatement+1)))
	require.NoError(t, err)
	assert.Equal(t, int64(rowsPerStatement+1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUpsertRollsBackAndReportsErrorNumber checks rollback on failure and
// that the server error number is surfaced.
func TestUpsertRollsBackAndReportsErrorNumber(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(insertPrefix).WillReturnError(&mysql.MySQLError{Number: 1406, Message: "Data too long for column 'nombre'"})
	mock.ExpectRollback()

	_, err = New(db, testConfig()).Upsert(context.Background(), schema.Columns, schema.Rows(products(1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error 1406")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEmptyBatchTouchesNothing(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	n, err := New(db, testConfig()).Upsert(context.Background(), schema.Columns, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSQL(t *testing.T) {
	t.Parallel()

	stmt, args, err := upsertSQL("dw.inv", []string{"k", "a"}, "k", [][]any{{1, "x"}, {2, "y"}})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `dw`.`inv` (`k`,`a`) VALUES (?,?),(?,?)\nON DUPLICATE KEY UPDATE `a` = VALUES(`a`)", stmt)
	assert.Equal(t, []any{1, "x", 2, "y"}, args)

	_, _, err = upsertSQL("t", []string{"k", "a"}, "k", [][]any{{1}})
	assert.Error(t, err)
}

func TestDialectCreateTable(t *testing.T) {
	t.Parallel()

	stmt, err := ddl.BuildCreateTableSQL(schema.ProductTable("inventario_consolidado", schema.KeyInt), Dialect)
	require.NoError(t, err)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS `inventario_consolidado` (",
		"`codigo_producto` BIGINT NOT NULL",
		"`stock` DECIMAL(18,4) NOT NULL",
		"`fecha_carga_dw` DATETIME(6) NOT NULL",
		"PRIMARY KEY (`codigo_producto`)",
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;",
	} {
		assert.True(t, strings.Contains(stmt, want), "missing %q in\n%s", want, stmt)
	}
}

// TestRegisteredFactory swaps the constructor hook; it does not run in
// parallel because the hook is package state.
func TestRegisteredFactory(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)

	closed := false
	orig := newRepository
	newRepository = func(_ context.Context, cfg storage.Config) (*Repository, func(), error) {
		return New(db, cfg), func() { closed = true; _ = db.Close() }, nil
	}
	t.Cleanup(func() { newRepository = orig })

	repo, err := storage.New(context.Background(), testConfig())
	require.NoError(t, err)
	repo.Close()
	assert.True(t, closed)
}
