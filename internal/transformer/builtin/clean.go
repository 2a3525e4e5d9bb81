package builtin

import (
	"inventario/internal/schema"
	"inventario/pkg/records"
)

// TextField names a text field and its maximum length in runes.
type TextField struct {
	Field  string
	MaxLen int
}

// CleanText normalizes short text fields: nil becomes empty, diacritics are
// folded, whitespace runs collapse to one space, the ends are trimmed and the
// value is truncated. A value left empty gets schema.NoData.
type CleanText struct {
	Fields []TextField
}

func (c CleanText) Apply(in []records.Record) []records.Record {
	for _, rec := range in {
		for _, f := range c.Fields {
			rec[f.Field] = CleanValue(rec[f.Field], f.MaxLen)
		}
	}
	return in
}

// CleanValue applies the CleanText rules to a single value.
func CleanValue(v any, maxLen int) string {
	s := Truncate(CollapseSpace(Fold(Stringify(v))), maxLen)
	if s == "" {
		return schema.NoData
	}
	return s
}

// PreserveText fills a free-text field without touching its whitespace: nil
// becomes Sentinel, anything else is stringified and truncated.
type PreserveText struct {
	Field    string
	MaxLen   int
	Sentinel string
}

func (p PreserveText) Apply(in []records.Record) []records.Record {
	for _, rec := range in {
		v := rec[p.Field]
		if v == nil {
			rec[p.Field] = p.Sentinel
			continue
		}
		rec[p.Field] = Truncate(Stringify(v), p.MaxLen)
	}
	return in
}
