package schema

import "inventario/internal/ddl"

// ProductTable returns the backend-agnostic definition of the inventory
// table. The key column type follows mode.
func ProductTable(fqn string, mode KeyMode) ddl.TableDef {
	key := ddl.ColumnDef{Name: ColProductCode, Type: ddl.TypeBigInt, PrimaryKey: true}
	if mode == KeyString {
		key = ddl.ColumnDef{Name: ColProductCode, Type: ddl.TypeVarchar, Length: MaxLenKey, PrimaryKey: true}
	}
	return ddl.TableDef{
		FQN: fqn,
		Columns: []ddl.ColumnDef{
			key,
			{Name: ColName, Type: ddl.TypeVarchar, Length: MaxLenName},
			{Name: ColDescription, Type: ddl.TypeVarchar, Length: MaxLenDescription},
			{Name: ColStock, Type: ddl.TypeDecimal, Precision: StockPrecision, Scale: StockScale},
			{Name: ColCategory, Type: ddl.TypeVarchar, Length: MaxLenCategory},
			{Name: ColImageURL, Type: ddl.TypeVarchar, Length: MaxLenImageURL},
			{Name: ColLoadedAt, Type: ddl.TypeTimestamp},
		},
	}
}
