package builtin

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Código Producto", "codigoproducto"},
		{"  CODIGO  ", "codigo"},
		{"Imagen (URL)", "imagenurl"},
		{"Descripción_Producto", "descripcionproducto"},
		{"desc_en", "descen"},
		{"Año-2024", "ano2024"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeHeader(tc.in); got != tc.want {
			t.Fatalf("NormalizeHeader(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	if got := Fold("Fontanería Ñandú"); got != "Fontaneria Nandu" {
		t.Fatalf("Fold=%q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()

	if got := CollapseSpace("  Martillo \t de\n\n  bola  "); got != "Martillo de bola" {
		t.Fatalf("CollapseSpace=%q", got)
	}
}

/*
TestTruncate counts runes, not bytes, so multi-byte text is never cut in the
middle of a character.
*/
func TestTruncate(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("á", 300)
	got := Truncate(s, 250)
	if n := utf8.RuneCountInString(got); n != 250 {
		t.Fatalf("rune count=%d; want 250", n)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8")
	}
	if Truncate("abc", 10) != "abc" || Truncate("abc", 0) != "abc" {
		t.Fatalf("short strings must be returned unchanged")
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	if Stringify(nil) != "" || Stringify(int64(12)) != "12" || Stringify("x") != "x" {
		t.Fatalf("Stringify mismatch")
	}
}
