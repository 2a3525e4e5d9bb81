// Package parser turns the bytes of one source file into raw rows. Formats
// live in subpackages (csv, xlsx); all of them share Result and the header
// rules in this file.
package parser

import (
	"fmt"
	"io"
	"strings"

	"inventario/pkg/records"
)

// Parser reads one whole source.
type Parser interface {
	Parse(r io.Reader) (Result, error)
}

// Result is the header and data rows of one source. Rows carry Fields and
// Line; the reader fills SourceFile.
type Result struct {
	Columns []string
	Rows    []records.RawRow
}

// Header returns unique column names for a raw header row. Blank cells become
// "col_N" (0-based) and repeated names get ".1", ".2", ... suffixes. A UTF-8
// BOM on the first cell is dropped.
func Header(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, c := range raw {
		if i == 0 {
			c = strings.TrimPrefix(c, "\uFEFF")
		}
		if strings.TrimSpace(c) == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		name := c
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", c, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// Row maps one data row onto columns. Empty cells are nil; cells beyond the
// header get "col_N" names. It reports false for a row with no values.
func Row(columns, cells []string) (records.Record, bool) {
	rec := make(records.Record, len(columns))
	nonEmpty := false
	for i, v := range cells {
		key := fmt.Sprintf("col_%d", i)
		if i < len(columns) {
			key = columns[i]
		}
		if v == "" {
			rec[key] = nil
			continue
		}
		rec[key] = v
		nonEmpty = true
	}
	for i := len(cells); i < len(columns); i++ {
		rec[columns[i]] = nil
	}
	return rec, nonEmpty
}
