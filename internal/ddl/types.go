package ddl

// Type is a logical column type. Each backend dialect maps it to a concrete
// SQL type.
type Type string

const (
	TypeBigInt    Type = "bigint"
	TypeVarchar   Type = "varchar"
	TypeDecimal   Type = "decimal"
	TypeTimestamp Type = "timestamp"
)

// ColumnDef describes a single column.
//
// Length applies to TypeVarchar (in characters). Precision and Scale apply to
// TypeDecimal. Name is unquoted; quoting happens at render time.
type ColumnDef struct {
	Name       string
	Type       Type
	Length     int
	Precision  int
	Scale      int
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name in dotted form (e.g. "schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Key returns the primary key column names in column order.
func (t TableDef) Key() []string {
	var out []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			out = append(out, c.Name)
		}
	}
	return out
}
