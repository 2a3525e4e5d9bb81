package schema

// Field describes one canonical field of a contract.
type Field struct {
	Name      string `json:"name"`
	Type      string `json:"type"` // "key" | "text" | "decimal" | "timestamp"
	Required  bool   `json:"required,omitempty"`
	MaxLength int    `json:"max_length,omitempty"` // in runes; 0 = unbounded
}

// Contract is the set of rules the validator enforces on cleaned records.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Inventory is the contract of the reconciled inventory table.
func Inventory() Contract {
	return Contract{
		Name: "inventario_consolidado",
		Fields: []Field{
			{Name: FieldProductCode, Type: "key", Required: true, MaxLength: MaxLenKey},
			{Name: FieldName, Type: "text", Required: true, MaxLength: MaxLenName},
			{Name: FieldDescription, Type: "text", MaxLength: MaxLenDescription},
			{Name: FieldStock, Type: "decimal", Required: true},
			{Name: FieldCategory, Type: "text", MaxLength: MaxLenCategory},
			{Name: FieldImageURL, Type: "text", MaxLength: MaxLenImageURL},
		},
	}
}
