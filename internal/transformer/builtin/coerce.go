package builtin

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"inventario/internal/transformer"
	"inventario/pkg/records"
)

// Coercion target types.
const (
	TypeInt64   = "int64"
	TypeString  = "string"
	TypeDecimal = "decimal"
)

// Coercion converts one field.
type Coercion struct {
	Field string
	Type  string // TypeInt64 | TypeString | TypeDecimal
	// NonNegative drops rows whose decimal value is below zero.
	NonNegative bool
	// Precision and Scale, when Precision is set, drop decimals that do not
	// fit DECIMAL(Precision, Scale) once rounded to Scale.
	Precision, Scale int
}

// Coerce applies coercions in order. A row failing any of them is dropped
// and reported as invalid_<field> or negative_<field>.
type Coerce struct {
	Fields []Coercion
	Report transformer.Reporter
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

func (c Coerce) Apply(in []records.Record) []records.Record {
	rep := transformer.OrNop(c.Report)
	counts := make(map[string]int)
	var reasons []string
	out := in[:0]

	for _, rec := range in {
		reason := ""
		for _, f := range c.Fields {
			v, r := coerceValue(rec[f.Field], f)
			if r != "" {
				reason = r + "_" + f.Field
				break
			}
			rec[f.Field] = v
		}
		if reason == "" {
			out = append(out, rec)
			continue
		}
		if counts[reason] == 0 {
			reasons = append(reasons, reason)
		}
		counts[reason]++
	}
	for _, r := range reasons {
		rep.Dropped("coerce", r, counts[r])
	}
	return out
}

// coerceValue returns the converted value or a non-empty failure reason.
func coerceValue(v any, f Coercion) (any, string) {
	switch f.Type {
	case TypeString:
		s := strings.TrimSpace(Stringify(v))
		if s == "" {
			return nil, "invalid"
		}
		return s, ""

	case TypeInt64:
		d, err := ParseDecimal(v)
		if err != nil || d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
			return nil, "invalid"
		}
		return d.IntPart(), ""

	case TypeDecimal:
		d, err := ParseDecimal(v)
		if err != nil {
			return nil, "invalid"
		}
		if f.NonNegative && d.IsNegative() {
			return nil, "negative"
		}
		if f.Precision > 0 && !fitsDecimal(d, f.Precision, f.Scale) {
			return nil, "invalid"
		}
		return d, ""
	}
	return v, ""
}

// fitsDecimal reports whether d fits DECIMAL(precision, scale): after rounding
// to scale its absolute value stays below 10^(precision-scale).
func fitsDecimal(d decimal.Decimal, precision, scale int) bool {
	limit := decimal.New(1, int32(precision-scale))
	return d.Round(int32(scale)).Abs().LessThan(limit)
}

// ParseDecimal reads a number from a cell value. Text is trimmed first;
// NaN and infinities are rejected.
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Decimal{}, fmt.Errorf("empty value")
	case decimal.Decimal:
		return t, nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Decimal{}, fmt.Errorf("not a finite number: %v", t)
		}
		return decimal.NewFromFloat(t), nil
	}
	s := strings.TrimSpace(Stringify(v))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return d, nil
}
