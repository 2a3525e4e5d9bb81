package builtin

import (
	"time"

	"inventario/internal/schema"
	"inventario/internal/transformer"
	"inventario/pkg/records"
)

// Options configures a Normalizer. Zero values select the defaults.
type Options struct {
	KeyMode schema.KeyMode
	Aliases AliasTable
	Merges  []MergeRule
	Report  transformer.Reporter
	// Now stamps loaded_at; defaults to time.Now.
	Now func() time.Time
}

// Normalizer is the schema normalizer and validator: it maps raw columns to
// canonical fields, runs the cleaning chain and assembles products. It holds
// no state between Run calls.
type Normalizer struct {
	mapper Mapper
	chain  transformer.Chain
	report transformer.Reporter
	now    func() time.Time
}

// NewNormalizer builds the mapping and the chain
// require → coerce → dedup → clean → preserve → validate → categorize.
func NewNormalizer(opts Options) *Normalizer {
	rep := transformer.OrNop(opts.Report)
	aliases := opts.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}
	merges := opts.Merges
	if merges == nil {
		merges = DefaultMerges()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	keyType := TypeInt64
	if opts.KeyMode == schema.KeyString {
		keyType = TypeString
	}

	chain := transformer.Chain{
		Require{Fields: schema.Mandatory, Report: rep},
		Coerce{Fields: []Coercion{
			{Field: schema.FieldProductCode, Type: keyType},
			{Field: schema.FieldStock, Type: TypeDecimal, NonNegative: true, Precision: schema.StockPrecision, Scale: schema.StockScale},
		}, Report: rep},
		DeDup{Keys: []string{schema.FieldProductCode}, Report: rep},
		CleanText{Fields: []TextField{
			{Field: schema.FieldName, MaxLen: schema.MaxLenName},
			{Field: schema.FieldCategory, MaxLen: schema.MaxLenCategory},
			{Field: schema.FieldImageURL, MaxLen: schema.MaxLenImageURL},
		}},
		PreserveText{Field: schema.FieldDescription, MaxLen: schema.MaxLenDescription, Sentinel: schema.NoDescription},
		Validate{Contract: schema.Inventory(), Report: rep},
		Categorize{Field: schema.FieldCategory},
	}

	return &Normalizer{
		mapper: Mapper{Aliases: aliases, Merges: merges, Report: rep},
		chain:  chain,
		report: rep,
		now:    now,
	}
}

// Plan exposes the column mapping for a set of raw columns.
func (n *Normalizer) Plan(columns []string) Plan {
	return n.mapper.Plan(columns)
}

// Run normalizes a whole batch. An empty table yields an empty result and a
// warning; row defects never fail the batch.
func (n *Normalizer) Run(tbl records.Table) []schema.Product {
	if tbl.Len() == 0 {
		n.report.Warn("input", "empty input table; nothing to normalize")
		return []schema.Product{}
	}
	recs := n.mapper.Map(tbl)
	recs = n.chain.Apply(recs)
	return Assemble(recs, n.now(), n.report)
}
