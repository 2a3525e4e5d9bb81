package builtin

import (
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/schema"
	"inventario/internal/transformer"
	"inventario/pkg/records"
)

// Assemble converts cleaned records into products stamped with one shared
// loadedAt. Records whose typed fields do not have the shape the chain
// produces are dropped and reported as malformed.
func Assemble(in []records.Record, loadedAt time.Time, report transformer.Reporter) []schema.Product {
	out := make([]schema.Product, 0, len(in))
	malformed := 0
	for _, rec := range in {
		p, ok := assembleOne(rec, loadedAt)
		if !ok {
			malformed++
			continue
		}
		out = append(out, p)
	}
	transformer.OrNop(report).Dropped("assemble", "malformed", malformed)
	return out
}

func assembleOne(rec records.Record, loadedAt time.Time) (schema.Product, bool) {
	key, err := schema.KeyOf(rec[schema.FieldProductCode])
	if err != nil {
		return schema.Product{}, false
	}
	stock, ok := rec[schema.FieldStock].(decimal.Decimal)
	if !ok {
		return schema.Product{}, false
	}
	text := func(f string) (string, bool) {
		s, ok := rec[f].(string)
		return s, ok
	}
	name, ok1 := text(schema.FieldName)
	desc, ok2 := text(schema.FieldDescription)
	cat, ok3 := text(schema.FieldCategory)
	img, ok4 := text(schema.FieldImageURL)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return schema.Product{}, false
	}
	return schema.Product{
		ProductCode: key,
		Name:        name,
		Description: desc,
		Stock:       stock,
		Category:    cat,
		ImageURL:    img,
		LoadedAt:    loadedAt,
	}, true
}
