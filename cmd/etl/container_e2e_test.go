package main

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"inventario/internal/config"
)

// writeFile creates a source file under dir.
func writeFile(tb testing.TB, dir, name, body string) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
	return p
}

// openSQL opens a raw *sql.DB to the same DSN so we can verify loaded rows.
// The storage/all blank import in main.go makes the driver available.
func openSQL(tb testing.TB, dsn string) *sql.DB {
	tb.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		tb.Fatalf("sql open: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

/*
End-to-end test: reads two sources with differently spelled headers, one of
them Latin-1 encoded, normalizes them and loads the batch into SQLite with
auto-create enabled. The run is repeated to check the upsert is idempotent.
It uses the production seams, so it does not run in parallel with the seam
tests.
*/
func TestRun_E2E_SQLite(t *testing.T) {
	dir := t.TempDir()
	pos1 := writeFile(t, dir, "Inventario POS 1.csv",
		"Código,Nombre,Descripción,Stock,Categoría\n"+
			"1001,Martillo,Cabeza de acero,5,Herramientas\n"+
			"1002,,sin nombre,3,Pintura\n"+
			"1003,Broca,,-1,Brocas\n")
	// "Categoría" and "Fontanería" in ISO-8859-1.
	pos2 := writeFile(t, dir, "Inventario POS 2.csv",
		"CODIGO,NOMBRE,STOCK,Categor\xeda\n"+
			"1001,Martillo nuevo,8,Fontaner\xeda\n"+
			"2001,Llave,2,hogar\n")

	dbPath := filepath.Join(dir, "e2e.sqlite")
	dsn := "file:" + url.PathEscape(dbPath) + "?mode=rwc"

	p := config.Pipeline{
		Job: "inventario_e2e",
		Sources: []config.Source{
			{Kind: "file", File: config.SourceFile{Path: pos1}},
			{Kind: "file", File: config.SourceFile{Path: pos2}},
		},
		Parser:    config.Parser{Options: config.Options{}},
		Transform: config.Transform{KeyMode: "int"},
		Storage: config.Storage{
			Kind: "sqlite",
			DB:   config.DBConfig{DSN: dsn, Table: "inventario_consolidado", AutoCreateTable: true},
		},
		Runtime: config.RuntimeConfig{ReaderWorkers: 2},
	}

	first, err := run(context.Background(), p, "e2e-1")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := run(context.Background(), p, "e2e-2")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.upserted != 2 || second.upserted != first.upserted {
		t.Fatalf("upserted first=%d second=%d; want 2 both times", first.upserted, second.upserted)
	}

	db := openSQL(t, dsn)
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM inventario_consolidado`).Scan(&count); err != nil {
		t.Fatalf("verify count: %v", err)
	}
	if count != 2 {
		t.Fatalf("row count = %d; want 2", count)
	}

	var name string
	var stock float64
	if err := db.QueryRow(`SELECT nombre, stock FROM inventario_consolidado WHERE codigo_producto = 1001`).Scan(&name, &stock); err != nil {
		t.Fatalf("verify 1001: %v", err)
	}
	if name != "Martillo nuevo" || stock != 8 {
		t.Fatalf("1001 = (%q, %v); want the last occurrence", name, stock)
	}
}
