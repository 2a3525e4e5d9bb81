// Package csv parses delimited text sources. Input is decoded with
// DecodeText first, so Latin-1 exports from point-of-sale systems read the
// same as UTF-8 ones.
package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"

	"inventario/internal/parser"
	"inventario/pkg/records"
)

// Options configures the parser. Zero values mean: ',' delimiter, strict
// quotes, header on the first line.
type Options struct {
	Comma      rune
	LazyQuotes bool

	// HeaderRow is the 1-based record holding column names; earlier records
	// are skipped.
	HeaderRow int

	// Logger receives per-row skip messages; log.Default() when nil.
	Logger *log.Logger
}

// Parser parses one delimited source.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	if opt.HeaderRow < 1 {
		opt.HeaderRow = 1
	}
	if opt.Logger == nil {
		opt.Logger = log.Default()
	}
	return &Parser{opt: opt}
}

// maxSkipLogs caps per-row skip messages for one source.
const maxSkipLogs = 50

// Parse reads the whole input. Malformed records are skipped and logged; an
// input without a header is an error. Ragged rows are kept.
func (p *Parser) Parse(r io.Reader) (parser.Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return parser.Result{}, fmt.Errorf("read csv: %w", err)
	}
	text, _ := DecodeText(raw)

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = p.opt.Comma
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1

	var header []string
	for i := 1; i <= p.opt.HeaderRow; i++ {
		header, err = cr.Read()
		if err == io.EOF {
			return parser.Result{}, fmt.Errorf("read csv header: no header row")
		}
		if err != nil {
			return parser.Result{}, fmt.Errorf("read csv header: %w", err)
		}
	}

	res := parser.Result{Columns: parser.Header(header)}
	skipped := 0
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < maxSkipLogs {
				p.opt.Logger.Printf("csv: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		rec, ok := parser.Row(res.Columns, row)
		if !ok {
			continue
		}
		res.Rows = append(res.Rows, records.RawRow{Fields: rec, Line: line})
	}
	if skipped > 0 {
		p.opt.Logger.Printf("csv: skipped=%d malformed rows", skipped)
	}
	return res, nil
}
