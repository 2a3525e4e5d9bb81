package builtin

import (
	"testing"

	"github.com/shopspring/decimal"

	"inventario/internal/schema"
	"inventario/pkg/records"
)

/*
TestCoerce_StockBoundary pins the stock rule: -1 and "abc" are dropped, 0
and 5 are kept as decimals.
*/
func TestCoerce_StockBoundary(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"stock": "-1"},
		{"stock": "abc"},
		{"stock": "0"},
		{"stock": " 5 "},
	}
	rep := newRecorder()
	out := Coerce{Fields: []Coercion{{Field: "stock", Type: TypeDecimal, NonNegative: true}}, Report: rep}.Apply(in)

	if len(out) != 2 {
		t.Fatalf("kept %d rows; want 2: %v", len(out), out)
	}
	for i, want := range []int64{0, 5} {
		d, ok := out[i]["stock"].(decimal.Decimal)
		if !ok || !d.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("row %d stock=%#v; want %d", i, out[i]["stock"], want)
		}
	}
	if rep.dropped("coerce/negative_stock") != 1 || rep.dropped("coerce/invalid_stock") != 1 {
		t.Fatalf("drops=%v", rep.drops)
	}
}

func TestCoerce_IntKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want any // nil means dropped
	}{
		{"1001", int64(1001)},
		{" 1001.0 ", int64(1001)},
		{"12.7", int64(12)},
		{float64(7), int64(7)},
		{int64(9), int64(9)},
		{"A-100", nil},
		{"99999999999999999999", nil},
	}
	for _, tc := range tests {
		out := Coerce{Fields: []Coercion{{Field: "product_code", Type: TypeInt64}}}.Apply(
			[]records.Record{{"product_code": tc.in}},
		)
		if tc.want == nil {
			if len(out) != 0 {
				t.Fatalf("%#v: expected drop, got %v", tc.in, out)
			}
			continue
		}
		if len(out) != 1 || out[0]["product_code"] != tc.want {
			t.Fatalf("%#v: got %v; want %v", tc.in, out, tc.want)
		}
	}
}

func TestCoerce_StringKeyTrims(t *testing.T) {
	t.Parallel()

	out := Coerce{Fields: []Coercion{{Field: "product_code", Type: TypeString}}}.Apply(
		[]records.Record{{"product_code": "  A-100 "}, {"product_code": int64(5)}},
	)
	if len(out) != 2 || out[0]["product_code"] != "A-100" || out[1]["product_code"] != "5" {
		t.Fatalf("got %v", out)
	}
}

/*
TestCoerce_FirstFailureWins checks that a row failing two coercions is
reported once, under the first failing field.
*/
func TestCoerce_FirstFailureWins(t *testing.T) {
	t.Parallel()

	rep := newRecorder()
	Coerce{Fields: []Coercion{
		{Field: "product_code", Type: TypeInt64},
		{Field: "stock", Type: TypeDecimal, NonNegative: true},
	}, Report: rep}.Apply([]records.Record{{"product_code": "x", "stock": "-3"}})

	if rep.dropped("coerce/invalid_product_code") != 1 || rep.dropped("coerce/negative_stock") != 0 {
		t.Fatalf("drops=%v", rep.drops)
	}
}

func TestParseDecimal(t *testing.T) {
	t.Parallel()

	if _, err := ParseDecimal(nil); err == nil {
		t.Fatalf("nil must fail")
	}
	if _, err := ParseDecimal("   "); err == nil {
		t.Fatalf("blank must fail")
	}
	d, err := ParseDecimal("1e3")
	if err != nil || !d.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("1e3 -> %v, %v", d, err)
	}
}

/*
TestCoerce_StockFitsColumn drops stock values that a DECIMAL(18,4) column
cannot hold, including ones that only overflow after rounding to four places.
*/
func TestCoerce_StockFitsColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		keep bool
	}{
		{"99999999999999.9999", true},
		{"12.34567", true},
		{"100000000000000", false},
		{"99999999999999.99995", false},
		{"1e20", false},
	}
	for _, tc := range tests {
		rep := newRecorder()
		out := Coerce{Fields: []Coercion{{
			Field: "stock", Type: TypeDecimal, NonNegative: true,
			Precision: schema.StockPrecision, Scale: schema.StockScale,
		}}, Report: rep}.Apply([]records.Record{{"stock": tc.in}})

		if got := len(out) == 1; got != tc.keep {
			t.Fatalf("%s: kept=%v; want %v", tc.in, got, tc.keep)
		}
		if !tc.keep && rep.dropped("coerce/invalid_stock") != 1 {
			t.Fatalf("%s: drops=%v", tc.in, rep.drops)
		}
	}
}
