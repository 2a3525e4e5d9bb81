// Package transformer defines the record transform chain and the reporters
// its stages use to surface dropped rows and batch warnings.
package transformer

import "inventario/pkg/records"

// Transformer is one step of the chain. Apply may filter or rewrite records
// and returns the surviving slice.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every step in order. Nil steps are skipped.
func (c Chain) Apply(in []records.Record) []records.Record {
	if len(c) == 0 {
		return in
	}

	out := in
	for _, t := range c {
		if t == nil {
			continue
		}
		out = t.Apply(out)
	}
	return out
}
