// Package builtin contains the transform steps that reconcile raw inventory
// rows into canonical products, and the Normalizer that chains them.
package builtin

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics: decompose, drop nonspacing marks, recompose.
// "Fontanería" becomes "Fontaneria"; "ñ" becomes "n".
func Fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeHeader turns a source column name into its matching key: folded,
// lower-cased, with every non-alphanumeric rune removed.
// "Código Producto" becomes "codigoproducto".
func NormalizeHeader(name string) string {
	folded := strings.ToLower(Fold(name))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapseSpace replaces every run of Unicode whitespace with one ASCII
// space and trims both ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Stringify renders a scalar cell value as text. nil becomes "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case decimal.Decimal:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// isBlank reports whether v is nil or text that is empty after trimming.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(Stringify(v)) == ""
}
