// Package records holds the row shapes passed between the reader and the
// transform chain.
package records

// Record is one row keyed by column or field name. Values are scalars
// (string, int64, decimal.Decimal, ...) or nil for a missing value.
type Record map[string]any

// RawRow is a row as read from a source file, keyed by the original column
// name, tagged with the file it came from.
type RawRow struct {
	Fields     Record
	SourceFile string
	// Line is the 1-based data line within the source.
	Line int
}

// Table is the union of raw rows across all sources. Columns lists every
// column name seen, in first-seen order. Rows keep input order.
type Table struct {
	Columns []string
	Rows    []RawRow

	seen map[string]struct{}
}

// Append adds rows read from one source whose header is columns.
func (t *Table) Append(columns []string, rows []RawRow) {
	if t.seen == nil {
		t.seen = make(map[string]struct{}, len(t.Columns)+len(columns))
		for _, c := range t.Columns {
			t.seen[c] = struct{}{}
		}
	}
	for _, c := range columns {
		if _, ok := t.seen[c]; ok {
			continue
		}
		t.seen[c] = struct{}{}
		t.Columns = append(t.Columns, c)
	}
	t.Rows = append(t.Rows, rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }
