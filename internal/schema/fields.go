// Package schema defines the canonical inventory record and the constants
// that pin its shape: field names, warehouse column names, length limits and
// sentinel values.
package schema

// Canonical field names used by the transform chain.
const (
	FieldProductCode = "product_code"
	FieldName        = "name"
	FieldDescription = "description"
	FieldStock       = "stock"
	FieldCategory    = "category"
	FieldImageURL    = "image_url"
	FieldLoadedAt    = "loaded_at"
)

// Fields lists the canonical fields resolved from source columns, in output
// order. loaded_at is stamped by the assembler and never mapped.
var Fields = []string{
	FieldProductCode,
	FieldName,
	FieldDescription,
	FieldStock,
	FieldCategory,
	FieldImageURL,
}

// Mandatory fields; a row missing any of them is dropped.
var Mandatory = []string{FieldName, FieldProductCode}

// IsField reports whether name is a mappable canonical field.
func IsField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Warehouse column names, aligned with Fields plus loaded_at.
const (
	ColProductCode = "codigo_producto"
	ColName        = "nombre"
	ColDescription = "descripcion_producto"
	ColStock       = "stock"
	ColCategory    = "categoria"
	ColImageURL    = "imagen_url"
	ColLoadedAt    = "fecha_carga_dw"
)

// Columns is the fixed column order of every output row.
var Columns = []string{
	ColProductCode,
	ColName,
	ColDescription,
	ColStock,
	ColCategory,
	ColImageURL,
	ColLoadedAt,
}

// Maximum lengths, counted in runes. MaxLenKey applies to string keys.
const (
	MaxLenKey         = 100
	MaxLenName        = 250
	MaxLenDescription = 250
	MaxLenCategory    = 100
	MaxLenImageURL    = 500
)

// Stock is stored as DECIMAL(StockPrecision, StockScale).
const (
	StockPrecision = 18
	StockScale     = 4
)

// Sentinels written when a value is absent.
const (
	NoData          = "Sin dato disponible"
	NoDescription   = "Sin descripción disponible"
	DefaultCategory = "Otros"
)

// Categories is the enumerated set of canonical categories.
var Categories = []string{
	"Brocas",
	"Consumibles",
	"Electricidad",
	"Embalajes",
	"Fijaciones",
	"Fontanería",
	"Herrajes",
	"Herramientas",
	"Herramientas manuales",
	"Iluminación",
	"Jardinería",
	"Pinturas",
	"Químicos",
	"Seguridad",
	"Soldadura",
	"Tornillos",
	"Ferretería Online",
	"Ferretería Local Físico",
	DefaultCategory,
}

// IsCategory reports whether c belongs to Categories.
func IsCategory(c string) bool {
	for _, x := range Categories {
		if x == c {
			return true
		}
	}
	return false
}
