package builtin

import (
	"unicode/utf8"

	"inventario/internal/schema"
	"inventario/internal/transformer"
	"inventario/pkg/records"
)

// Validate enforces a schema.Contract on cleaned records: required fields
// must be non-nil and string values must fit MaxLength. Text fields are
// truncated earlier; string keys are never truncated and are dropped here.
type Validate struct {
	Contract schema.Contract
	Report   transformer.Reporter
}

func (v Validate) Apply(in []records.Record) []records.Record {
	out := in[:0]
	missing, over := 0, 0
	for _, rec := range in {
		switch v.check(rec) {
		case "":
			out = append(out, rec)
		case "missing_required":
			missing++
		default:
			over++
		}
	}
	rep := transformer.OrNop(v.Report)
	rep.Dropped("validate", "missing_required", missing)
	rep.Dropped("validate", "over_length", over)
	return out
}

func (v Validate) check(rec records.Record) string {
	for _, f := range v.Contract.Fields {
		val := rec[f.Name]
		if f.Required && val == nil {
			return "missing_required"
		}
		if f.MaxLength <= 0 {
			continue
		}
		if s, ok := val.(string); ok && utf8.RuneCountInString(s) > f.MaxLength {
			return "over_length"
		}
	}
	return ""
}
