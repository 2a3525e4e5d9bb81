// Package xlsx parses workbook sources with excelize. Only one sheet is read:
// the configured one or the first in the workbook.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"inventario/internal/parser"
	"inventario/pkg/records"
)

// Options selects the sheet and header row.
type Options struct {
	// Sheet names the sheet to read; empty means the first one.
	Sheet string
	// HeaderRow is the 1-based row holding column names.
	HeaderRow int
}

// Parser parses one workbook.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if opt.HeaderRow < 1 {
		opt.HeaderRow = 1
	}
	return &Parser{opt: opt}
}

// Parse reads raw cell values, so numeric codes are not reformatted by the
// cell's number format.
func (p *Parser) Parse(r io.Reader) (parser.Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return parser.Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return parser.Result{}, fmt.Errorf("open workbook: no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return parser.Result{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < p.opt.HeaderRow {
		return parser.Result{}, fmt.Errorf("read sheet %q: no header row", sheet)
	}

	res := parser.Result{Columns: parser.Header(rows[p.opt.HeaderRow-1])}
	for i, row := range rows[p.opt.HeaderRow:] {
		rec, ok := parser.Row(res.Columns, row)
		if !ok {
			continue
		}
		res.Rows = append(res.Rows, records.RawRow{Fields: rec, Line: i + 1})
	}
	return res, nil
}
