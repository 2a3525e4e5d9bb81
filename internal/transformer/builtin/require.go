package builtin

import (
	"inventario/internal/transformer"
	"inventario/pkg/records"
)

// Require drops records whose value for any of Fields is nil or blank after
// trimming.
type Require struct {
	Fields []string
	Report transformer.Reporter
}

// Apply filters in place and reports the drop count once.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	dropped := 0
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			if isBlank(rec[f]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
			continue
		}
		dropped++
	}
	transformer.OrNop(r.Report).Dropped("require", "missing_mandatory", dropped)
	return out
}
