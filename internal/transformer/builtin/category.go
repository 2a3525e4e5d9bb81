package builtin

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"inventario/internal/schema"
	"inventario/pkg/records"
)

type categoryRule struct {
	pattern *regexp.Regexp
	label   string
}

// categoryRules is evaluated top to bottom against the letters-only form of
// the raw category; the first match wins.
var categoryRules = []categoryRule{
	{regexp.MustCompile(`brocas`), "Brocas"},
	{regexp.MustCompile(`consumible`), "Consumibles"},
	{regexp.MustCompile(`electricidad`), "Electricidad"},
	{regexp.MustCompile(`embalaje`), "Embalajes"},
	{regexp.MustCompile(`fijacion`), "Fijaciones"},
	{regexp.MustCompile(`fontaneria`), "Fontanería"},
	{regexp.MustCompile(`herraje`), "Herrajes"},
	{regexp.MustCompile(`herramienta`), "Herramientas"},
	{regexp.MustCompile(`manual`), "Herramientas manuales"},
	{regexp.MustCompile(`iluminacion`), "Iluminación"},
	{regexp.MustCompile(`jardin`), "Jardinería"},
	{regexp.MustCompile(`pintura`), "Pinturas"},
	{regexp.MustCompile(`quimico`), "Químicos"},
	{regexp.MustCompile(`seguridad`), "Seguridad"},
	{regexp.MustCompile(`soldadura`), "Soldadura"},
	{regexp.MustCompile(`tornillo`), "Tornillos"},
	{regexp.MustCompile(`ferreteriaonline`), "Ferretería Online"},
	{regexp.MustCompile(`ferreterialocal(fisico)?`), "Ferretería Local Físico"},
}

func init() {
	for _, rule := range categoryRules {
		if !schema.IsCategory(rule.label) {
			panic(fmt.Sprintf("builtin: category rule %q maps to %q, which is not in schema.Categories", rule.pattern, rule.label))
		}
	}
}

// CanonicalCategory maps any raw category to one of schema.Categories.
// nil and unmatched values map to schema.DefaultCategory.
func CanonicalCategory(raw any) string {
	if raw == nil {
		return schema.DefaultCategory
	}
	folded := Fold(strings.ToLower(strings.TrimSpace(Stringify(raw))))
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	key := b.String()
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(key) {
			return rule.label
		}
	}
	return schema.DefaultCategory
}

// Categorize replaces Field with its canonical category.
type Categorize struct {
	Field string
}

func (c Categorize) Apply(in []records.Record) []records.Record {
	for _, rec := range in {
		rec[c.Field] = CanonicalCategory(rec[c.Field])
	}
	return in
}
