// Package reader fetches every configured source, parses it by file
// extension and unions the rows into one records.Table in source order.
// A source that cannot be opened or parsed is logged and skipped.
package reader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"inventario/internal/config"
	"inventario/internal/datasource"
	"inventario/internal/metrics"
	"inventario/internal/parser"
	pcsv "inventario/internal/parser/csv"
	"inventario/internal/parser/xlsx"
	"inventario/pkg/records"
)

// Reader reads a fixed list of sources.
type Reader struct {
	Sources []datasource.Source
	// Options are the parser options (comma, lazy_quotes, sheet, header_row).
	Options config.Options
	// Workers bounds concurrent fetches; values below 1 mean 1.
	Workers int
	// Job labels metrics.
	Job    string
	Logger *log.Logger
}

// slot holds the outcome of one source so the union keeps source order.
type slot struct {
	columns []string
	rows    []records.RawRow
	ok      bool
}

// Read fetches and parses all sources. It fails only when ctx is canceled;
// an empty table is a valid result.
func (r *Reader) Read(ctx context.Context) (records.Table, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	slots := make([]slot, len(r.Sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range r.Sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := r.readOne(gctx, logger, src)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Printf("reader: skip source=%q err=%v", src.Name(), err)
				metrics.RecordSource(r.Job, "failed")
				return nil
			}
			slots[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return records.Table{}, fmt.Errorf("read sources: %w", err)
	}

	var tbl records.Table
	read := 0
	for _, s := range slots {
		if !s.ok {
			continue
		}
		read++
		tbl.Append(s.columns, s.rows)
	}
	logger.Printf("reader: union complete rows=%d columns=%d sources=%d/%d", tbl.Len(), len(tbl.Columns), read, len(r.Sources))
	metrics.RecordRows(r.Job, "read", int64(tbl.Len()))
	return tbl, nil
}

func (r *Reader) readOne(ctx context.Context, logger *log.Logger, src datasource.Source) (slot, error) {
	name := src.Name()
	p, ok := ParserFor(name, r.Options)
	if !ok {
		logger.Printf("reader: WARNING unsupported format source=%q; skipped", name)
		metrics.RecordSource(r.Job, "skipped")
		return slot{}, nil
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return slot{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return slot{}, fmt.Errorf("read %s: %w", name, err)
	}

	res, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return slot{}, fmt.Errorf("parse %s: %w", name, err)
	}
	for i := range res.Rows {
		res.Rows[i].SourceFile = name
	}
	logger.Printf("reader: read source=%q rows=%d bytes=%d xxh3=%016x", name, len(res.Rows), len(data), xxh3.Hash(data))
	metrics.RecordSource(r.Job, "read")
	return slot{columns: res.Columns, rows: res.Rows, ok: true}, nil
}

// ParserFor selects a parser from the file extension of name.
func ParserFor(name string, opts config.Options) (parser.Parser, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return pcsv.NewParser(csvOptions(opts, ',')), true
	case ".tsv":
		return pcsv.NewParser(csvOptions(opts, '\t')), true
	case ".xlsx", ".xlsm":
		return xlsx.NewParser(xlsx.Options{
			Sheet:     opts.String("sheet", ""),
			HeaderRow: opts.Int("header_row", 1),
		}), true
	default:
		return nil, false
	}
}

func csvOptions(opts config.Options, comma rune) pcsv.Options {
	return pcsv.Options{
		Comma:      opts.Rune("comma", comma),
		LazyQuotes: opts.Bool("lazy_quotes", true),
		HeaderRow:  opts.Int("header_row", 1),
	}
}
