package builtin

import (
	"fmt"
	"strings"

	"inventario/internal/schema"
	"inventario/internal/transformer"
	"inventario/pkg/records"
)

// AliasTable maps each canonical field to its normalized aliases, most
// specific first.
type AliasTable map[string][]string

// DefaultAliases returns the built-in alias table.
func DefaultAliases() AliasTable {
	return AliasTable{
		schema.FieldProductCode: {"codigoproducto", "codigo", "codproducto", "id", "sku", "itemcode"},
		schema.FieldName:        {"nombre", "nombreproducto", "producto", "name", "productname", "item"},
		schema.FieldDescription: {"descripcionproducto", "descripcion", "description", "detalle", "desc"},
		schema.FieldStock:       {"stock", "existencia", "existencias", "cantidad", "qty", "quantity"},
		schema.FieldCategory:    {"categoria", "rubro", "familia", "category", "departamento"},
		schema.FieldImageURL:    {"imagenurl", "imagen", "urlimagen", "imageurl", "image", "foto"},
	}
}

// With returns a copy of a with extra aliases appended per field. Extra
// aliases are normalized the same way headers are.
func (a AliasTable) With(extra map[string][]string) AliasTable {
	out := make(AliasTable, len(a))
	for f, al := range a {
		out[f] = append([]string(nil), al...)
	}
	for f, al := range extra {
		for _, s := range al {
			if k := NormalizeHeader(s); k != "" {
				out[f] = append(out[f], k)
			}
		}
	}
	return out
}

// MergeRule fills Field by joining two distinct source columns. It applies
// only when a column matching First and a different column matching Second
// are both present in the batch.
type MergeRule struct {
	Field  string
	First  []string
	Second []string
	Sep    string
}

// DefaultMerges joins split English/Spanish descriptions.
func DefaultMerges() []MergeRule {
	return []MergeRule{{
		Field:  schema.FieldDescription,
		First:  []string{"descen", "descripcionen", "descriptionen", "description"},
		Second: []string{"desces", "descripciones", "descripcion"},
		Sep:    "\n",
	}}
}

// Resolver produces the value of one canonical field from a raw row.
type Resolver interface {
	Field() string
	// Columns lists the raw source columns the resolver reads.
	Columns() []string
	Resolve(row records.Record) any
}

// columnResolver coalesces one or more raw columns sharing a normalized key:
// the first non-nil value wins.
type columnResolver struct {
	field string
	cols  []string
}

func (c columnResolver) Field() string     { return c.field }
func (c columnResolver) Columns() []string { return c.cols }

func (c columnResolver) Resolve(row records.Record) any {
	for _, col := range c.cols {
		if v := row[col]; v != nil {
			return v
		}
	}
	return nil
}

// mergeResolver joins the non-nil values of two resolvers with sep.
type mergeResolver struct {
	field         string
	first, second columnResolver
	sep           string
}

func (m mergeResolver) Field() string { return m.field }

func (m mergeResolver) Columns() []string {
	return append(append([]string(nil), m.first.cols...), m.second.cols...)
}

func (m mergeResolver) Resolve(row records.Record) any {
	a, b := m.first.Resolve(row), m.second.Resolve(row)
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return Stringify(a) + m.sep + Stringify(b)
}

// nullResolver stands in for a field with no source column.
type nullResolver struct{ field string }

func (n nullResolver) Field() string              { return n.field }
func (n nullResolver) Columns() []string          { return nil }
func (n nullResolver) Resolve(records.Record) any { return nil }

// Plan is the column mapping chosen for one batch, one resolver per
// canonical field in schema.Fields order.
type Plan []Resolver

// Describe renders the plan one field per line, e.g.
// "product_code <- [Código]".
func (p Plan) Describe() string {
	var b strings.Builder
	for _, r := range p {
		cols := r.Columns()
		if len(cols) == 0 {
			fmt.Fprintf(&b, "%s <- (unmapped)\n", r.Field())
			continue
		}
		fmt.Fprintf(&b, "%s <- %v\n", r.Field(), cols)
	}
	return b.String()
}

// Apply projects raw rows onto canonical records.
func (p Plan) Apply(rows []records.RawRow) []records.Record {
	out := make([]records.Record, 0, len(rows))
	for _, raw := range rows {
		rec := make(records.Record, len(p))
		for _, r := range p {
			rec[r.Field()] = r.Resolve(raw.Fields)
		}
		out = append(out, rec)
	}
	return out
}

// Mapper resolves canonical fields from arbitrarily spelled source columns.
// Mapping never fails; a missing mandatory field is only reported.
type Mapper struct {
	Aliases AliasTable
	Merges  []MergeRule
	Report  transformer.Reporter
}

// Plan picks a resolver per canonical field for a batch with the given raw
// column union. The first alias present wins; source order never breaks ties.
func (m Mapper) Plan(columns []string) Plan {
	rep := transformer.OrNop(m.Report)
	aliases := m.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}

	byKey := make(map[string][]string, len(columns))
	for _, c := range columns {
		k := NormalizeHeader(c)
		if k == "" {
			continue
		}
		byKey[k] = append(byKey[k], c)
	}

	lookup := func(list []string) (columnResolver, bool) {
		for _, a := range list {
			if cols, ok := byKey[a]; ok {
				return columnResolver{cols: cols}, true
			}
		}
		return columnResolver{}, false
	}

	plan := make(Plan, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if r, ok := m.merge(field, lookup); ok {
			plan = append(plan, r)
			continue
		}
		if r, ok := lookup(aliases[field]); ok {
			r.field = field
			plan = append(plan, r)
			continue
		}
		plan = append(plan, nullResolver{field: field})
		for _, mf := range schema.Mandatory {
			if mf == field {
				rep.Warn("map", fmt.Sprintf("mandatory field %s has no source column; every row will be dropped", field))
			}
		}
	}
	return plan
}

func (m Mapper) merge(field string, lookup func([]string) (columnResolver, bool)) (Resolver, bool) {
	for _, rule := range m.Merges {
		if rule.Field != field {
			continue
		}
		a, okA := lookup(rule.First)
		b, okB := lookup(rule.Second)
		if !okA || !okB || overlaps(a.cols, b.cols) {
			continue
		}
		a.field, b.field = field, field
		return mergeResolver{field: field, first: a, second: b, sep: rule.Sep}, true
	}
	return nil, false
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// Map plans against tbl.Columns and projects every row.
func (m Mapper) Map(tbl records.Table) []records.Record {
	return m.Plan(tbl.Columns).Apply(tbl.Rows)
}
