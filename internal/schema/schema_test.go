package schema

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/ddl"
)

func TestParseKeyMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    KeyMode
		wantErr bool
	}{
		{"", KeyInt, false},
		{"int", KeyInt, false},
		{" INT64 ", KeyInt, false},
		{"string", KeyString, false},
		{"uuid", KeyInt, true},
	}
	for _, tc := range tests {
		got, err := ParseKeyMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseKeyMode(%q) err=%v; wantErr=%v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseKeyMode(%q)=%v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestKeyOf(t *testing.T) {
	t.Parallel()

	k, err := KeyOf(int64(42))
	if err != nil || k.Value() != int64(42) || k.String() != "42" {
		t.Fatalf("int key: %v %v", k, err)
	}
	k, err = KeyOf("A-1")
	if err != nil || k.Value() != "A-1" || k.Mode() != KeyString {
		t.Fatalf("string key: %v %v", k, err)
	}
	if _, err := KeyOf(1.5); err == nil {
		t.Fatalf("expected error for float key")
	}
}

func TestProductValues_ColumnOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := Product{
		ProductCode: IntKey(7),
		Name:        "Martillo",
		Description: NoDescription,
		Stock:       decimal.NewFromInt(3),
		Category:    "Herramientas",
		ImageURL:    NoData,
		LoadedAt:    now,
	}
	v := p.Values()
	if len(v) != len(Columns) {
		t.Fatalf("len(Values)=%d; want %d", len(v), len(Columns))
	}
	if v[0] != int64(7) || v[1] != "Martillo" || v[4] != "Herramientas" || v[6] != now {
		t.Fatalf("unexpected values: %#v", v)
	}
	if rows := Rows([]Product{p, p}); len(rows) != 2 {
		t.Fatalf("Rows len=%d", len(rows))
	}
}

func TestProductTable_KeyModeDrivesKeyType(t *testing.T) {
	t.Parallel()

	td := ProductTable("inventario_consolidado", KeyInt)
	if td.Columns[0].Type != ddl.TypeBigInt || !td.Columns[0].PrimaryKey {
		t.Fatalf("int mode key column: %+v", td.Columns[0])
	}
	td = ProductTable("inventario_consolidado", KeyString)
	if td.Columns[0].Type != ddl.TypeVarchar {
		t.Fatalf("string mode key column: %+v", td.Columns[0])
	}
	if len(td.Columns) != len(Columns) {
		t.Fatalf("columns=%d; want %d", len(td.Columns), len(Columns))
	}
	for i, c := range td.Columns {
		if c.Name != Columns[i] {
			t.Fatalf("column %d=%s; want %s", i, c.Name, Columns[i])
		}
	}
}

func TestCategoriesContainDefault(t *testing.T) {
	t.Parallel()

	if !IsCategory(DefaultCategory) || IsCategory("Juguetes") {
		t.Fatalf("IsCategory mismatch")
	}
	if !IsField(FieldStock) || IsField(FieldLoadedAt) {
		t.Fatalf("IsField mismatch")
	}
}

func TestInventoryContractMatchesTable(t *testing.T) {
	t.Parallel()

	def := ProductTable("t", KeyString)
	if def.Columns[0].Length != MaxLenKey {
		t.Fatalf("key length=%d; want %d", def.Columns[0].Length, MaxLenKey)
	}
	if f := Inventory().Fields[0]; f.Name != FieldProductCode || f.MaxLength != MaxLenKey {
		t.Fatalf("key field=%+v", f)
	}
}
