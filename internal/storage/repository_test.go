package storage

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/config"
	"inventario/internal/ddl"
	"inventario/internal/schema"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	calls  int
	cols   []string
	rows   [][]any
	execs  []string
	err    error
	closed bool
}

func (f *fakeRepo) Upsert(_ context.Context, cols []string, rows [][]any) (int64, error) {
	f.calls++
	f.cols, f.rows = cols, rows
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return f.err
}

func (f *fakeRepo) Close() { f.closed = true }

func testConfig(kind string) Config {
	return Config{
		Kind:      kind,
		Table:     "inventario_consolidado",
		Columns:   schema.Columns,
		KeyColumn: schema.ColProductCode,
	}
}

// TestRegisterAndNew verifies that registering a backend enables New() and
// that ListKinds reports it.
func TestRegisterAndNew(t *testing.T) {
	t.Parallel()

	var got Config
	Register("fake", func(_ context.Context, cfg Config) (Repository, error) {
		got = cfg
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), testConfig("fake"))
	if err != nil || repo == nil {
		t.Fatalf("New = %v, %v", repo, err)
	}
	if got.Table != "inventario_consolidado" {
		t.Fatalf("factory got %+v", got)
	}

	found := false
	for _, k := range ListKinds() {
		found = found || k == "fake"
	}
	if !found {
		t.Fatalf("fake not in ListKinds: %v", ListKinds())
	}
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil || !strings.HasPrefix(err.Error(), "unsupported storage.kind=does-not-exist (registered: ") {
		t.Fatalf("err = %v", err)
	}
	Register("fake-listed", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	_, err = New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil || !strings.Contains(err.Error(), "fake-listed") {
		t.Fatalf("registered kinds missing from error: %v", err)
	}

	Register("fake-cols", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	if _, err := New(context.Background(), Config{Kind: "fake-cols", Table: "t"}); err == nil {
		t.Fatalf("missing columns must fail")
	}
	cfg := testConfig("fake-cols")
	cfg.Table = " "
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("blank table must fail")
	}
}

func TestConfigFromPipeline(t *testing.T) {
	t.Parallel()

	p := config.Pipeline{
		Transform: config.Transform{KeyMode: "string"},
		Storage:   config.Storage{Kind: "sqlite", DB: config.DBConfig{DSN: "file::memory:", Table: "dw.inv"}},
	}
	cfg, err := ConfigFromPipeline(p)
	if err != nil {
		t.Fatalf("ConfigFromPipeline error = %v", err)
	}
	if cfg.KeyMode != schema.KeyString || cfg.KeyColumn != schema.ColProductCode || cfg.Table != "dw.inv" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if got := cfg.UpdateColumns(); len(got) != len(schema.Columns)-1 || got[0] != schema.ColName {
		t.Fatalf("UpdateColumns = %v", got)
	}

	p.Transform.KeyMode = "uuid"
	if _, err := ConfigFromPipeline(p); err == nil {
		t.Fatalf("bad key mode must fail")
	}
}

func TestChunks(t *testing.T) {
	t.Parallel()

	rows := [][]any{{1}, {2}, {3}, {4}, {5}}
	got := Chunks(rows, 2)
	want := [][][]any{{{1}, {2}}, {{3}, {4}}, {{5}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Chunks = %v", got)
	}
	if got := Chunks(rows, 0); len(got) != 1 || len(got[0]) != 5 {
		t.Fatalf("Chunks(0) = %v", got)
	}
	if got := Chunks(nil, 3); got != nil {
		t.Fatalf("Chunks(nil) = %v", got)
	}
}

/*
TestEnsureTable renders the inventory table with a registered dialect and
executes it through the repository.
*/
func TestEnsureTable(t *testing.T) {
	t.Parallel()

	d := ddl.Dialect{
		Name:       "fake",
		QuoteIdent: func(s string) string { return `"` + s + `"` },
		MapType:    func(ddl.ColumnDef) string { return "TEXT" },
	}
	RegisterDDL("fake-ddl", DialectBootstrapper(d))

	repo := &fakeRepo{}
	if err := EnsureTable(context.Background(), testConfig("fake-ddl"), repo); err != nil {
		t.Fatalf("EnsureTable error = %v", err)
	}
	if len(repo.execs) != 1 || !strings.HasPrefix(repo.execs[0], `CREATE TABLE IF NOT EXISTS "inventario_consolidado"`) {
		t.Fatalf("execs = %q", repo.execs)
	}

	if err := EnsureTable(context.Background(), testConfig("no-ddl"), repo); err == nil {
		t.Fatalf("unregistered kind must fail")
	}
}

func TestSinkUpsert(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	s := NewSink(repo, "inv")
	s.Logger = log.New(io.Discard, "", 0)

	n, err := s.Upsert(context.Background(), nil)
	if err != nil || n != 0 || repo.calls != 0 {
		t.Fatalf("empty batch: n=%d err=%v calls=%d", n, err, repo.calls)
	}

	at := time.Date(2026, 10, 14, 3, 0, 0, 0, time.UTC)
	ps := []schema.Product{
		{ProductCode: schema.IntKey(1), Name: "Martillo", Stock: decimal.NewFromInt(5), LoadedAt: at},
		{ProductCode: schema.IntKey(2), Name: "Clavo", Stock: decimal.Zero, LoadedAt: at},
	}
	n, err = s.Upsert(context.Background(), ps)
	if err != nil || n != 2 {
		t.Fatalf("Upsert = %d, %v", n, err)
	}
	if !reflect.DeepEqual(repo.cols, schema.Columns) || len(repo.rows) != 2 || repo.rows[1][0] != int64(2) {
		t.Fatalf("repo got cols=%v rows=%v", repo.cols, repo.rows)
	}

	repo.err = errors.New("deadlock")
	if _, err := s.Upsert(context.Background(), ps); err == nil || !strings.Contains(err.Error(), "deadlock") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
