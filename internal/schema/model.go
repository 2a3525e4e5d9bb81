package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one reconciled inventory record. Every field is populated; the
// string fields already carry sentinels where the source had nothing.
type Product struct {
	ProductCode Key             `db:"codigo_producto"`
	Name        string          `db:"nombre"`
	Description string          `db:"descripcion_producto"`
	Stock       decimal.Decimal `db:"stock"`
	Category    string          `db:"categoria"`
	ImageURL    string          `db:"imagen_url"`
	LoadedAt    time.Time       `db:"fecha_carga_dw"`
}

// Values returns the row in Columns order. Stock is passed as a
// decimal.Decimal; backends convert it when their driver needs to.
func (p Product) Values() []any {
	return []any{
		p.ProductCode.Value(),
		p.Name,
		p.Description,
		p.Stock,
		p.Category,
		p.ImageURL,
		p.LoadedAt,
	}
}

// Rows converts a batch to [][]any in Columns order.
func Rows(ps []Product) [][]any {
	out := make([][]any, len(ps))
	for i, p := range ps {
		out[i] = p.Values()
	}
	return out
}
