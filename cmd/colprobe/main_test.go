package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inventario/internal/config"
	"inventario/internal/datasource/httpds"
)

func newProber() prober {
	return prober{
		http:     httpds.NewClient(httpds.Config{Timeout: 5 * time.Second}),
		maxBytes: 64,
		options:  config.Options{},
	}
}

/*
TestRun_TextReport probes a local file and a sampled URL and checks both the
per-header lines and the field plan.
*/
func TestRun_TextReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	local := filepath.Join(dir, "Inventario POS 1.csv")
	if err := os.WriteFile(local, []byte("Código,Nombre,Stock\n1,Martillo,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	body := "CODIGO,Producto,Existencia,Rubro\n" + strings.Repeat("1001,Taladro percutor,3,hogar\n", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") == "" {
			t.Errorf("expected a ranged request")
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := newProber().run(context.Background(), &out, []string{local, srv.URL + "/Inventario%20POS%202.csv"}, false)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		`Inventario POS 1.csv: "Código" -> codigo`,
		`Inventario POS 2.csv: "Existencia" -> existencia`,
		"product_code <- [Código CODIGO]",
		"stock <- [Stock]",
		"image_url <- (unmapped)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in report:\n%s", want, got)
		}
	}
}

func TestRun_JSONReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "a.tsv")
	if err := os.WriteFile(p, []byte("sku\tname\tqty\n1\tx\t2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := newProber().run(context.Background(), &out, []string{p}, true); err != nil {
		t.Fatalf("run error = %v", err)
	}
	var rep report
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if len(rep.Headers) != 3 || rep.Headers[0].Key != "sku" {
		t.Fatalf("headers = %+v", rep.Headers)
	}
	if len(rep.Fields) == 0 || rep.Fields[0].Field != "product_code" || len(rep.Fields[0].Columns) != 1 || rep.Fields[0].Columns[0] != "sku" {
		t.Fatalf("fields = %+v", rep.Fields)
	}
}

func TestRun_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	if err := newProber().run(context.Background(), &bytes.Buffer{}, []string{"report.pdf"}, false); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestDropPartialLine(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a,b\n1,2\n3,": "a,b\n1,2\n",
		"a,b\n":        "a,b\n",
		"a,b":          "a,b",
	}
	for in, want := range cases {
		if got := string(dropPartialLine([]byte(in))); got != want {
			t.Fatalf("dropPartialLine(%q) = %q; want %q", in, got, want)
		}
	}
}
