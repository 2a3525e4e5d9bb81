package builtin

import (
	"maps"
	"reflect"
	"testing"

	"inventario/pkg/records"
)

/*
TestRequireApply_Table covers the presence rule: a record survives only when
every required field is non-nil and non-blank after trimming. Order of the
survivors is preserved.
*/
func TestRequireApply_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       []records.Record
		wantIdx  []int
		wantDrop int
	}{
		{
			name: "all_present",
			in: []records.Record{
				{"name": "a", "product_code": "1"},
				{"name": "b", "product_code": int64(2)},
			},
			wantIdx: []int{0, 1},
		},
		{
			name: "missing_name_or_code_dropped",
			in: []records.Record{
				{"name": nil, "product_code": "1"},
				{"name": "ok", "product_code": "2"},
				{"name": "   ", "product_code": "3"},
				{"name": "x", "product_code": ""},
				{"product_code": "5"},
			},
			wantIdx:  []int{1},
			wantDrop: 4,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			want := make([]records.Record, 0, len(tc.wantIdx))
			for _, i := range tc.wantIdx {
				want = append(want, maps.Clone(tc.in[i]))
			}
			rep := newRecorder()
			got := Require{Fields: []string{"name", "product_code"}, Report: rep}.Apply(tc.in)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %#v want %#v", got, want)
			}
			if n := rep.dropped("require/missing_mandatory"); n != tc.wantDrop {
				t.Fatalf("reported drops=%d; want %d", n, tc.wantDrop)
			}
		})
	}
}
