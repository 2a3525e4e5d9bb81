package builtin

import (
	"sync"

	"inventario/pkg/records"
)

// recorder is a transformer.Reporter that keeps every call for assertions.
type recorder struct {
	mu       sync.Mutex
	drops    map[string]int // "stage/reason" -> total
	warnings []string
}

func newRecorder() *recorder { return &recorder{drops: map[string]int{}} }

func (r *recorder) Dropped(stage, reason string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drops[stage+"/"+reason] += n
}

func (r *recorder) Warn(stage, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, stage+": "+msg)
}

func (r *recorder) dropped(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drops[key]
}

// table builds a records.Table from one source with the given header.
func table(source string, header []string, rows ...[]any) records.Table {
	var tbl records.Table
	raw := make([]records.RawRow, 0, len(rows))
	for i, vals := range rows {
		rec := records.Record{}
		for j, h := range header {
			if j < len(vals) {
				rec[h] = vals[j]
			}
		}
		raw = append(raw, records.RawRow{Fields: rec, SourceFile: source, Line: i + 1})
	}
	tbl.Append(header, raw)
	return tbl
}
