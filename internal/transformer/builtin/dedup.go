package builtin

import (
	"fmt"
	"sort"
	"strings"

	"inventario/internal/transformer"
	"inventario/pkg/records"
)

// DeDup collapses records sharing a key so that the last occurrence in input
// order wins. Winners keep the position of their winning row. Records missing
// a key field pass through after the winners.
type DeDup struct {
	Keys   []string
	Report transformer.Reporter
}

func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	keyOf := func(r records.Record) (string, bool) {
		var b strings.Builder
		for _, k := range d.Keys {
			v, ok := r[k]
			if !ok || v == nil {
				return "", false
			}
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			// The type prefix keeps int64(1) and "1" apart.
			fmt.Fprintf(&b, "%T:%v", v, v)
		}
		return b.String(), true
	}

	winners := make(map[string]int, len(in))
	var passthrough []int
	for i, r := range in {
		key, ok := keyOf(r)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		winners[key] = i
	}

	indexes := make([]int, 0, len(winners))
	for _, idx := range winners {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]records.Record, 0, len(indexes)+len(passthrough))
	for _, idx := range indexes {
		out = append(out, in[idx])
	}
	for _, idx := range passthrough {
		out = append(out, in[idx])
	}

	transformer.OrNop(d.Report).Dropped("dedup", "duplicate_key", len(in)-len(out))
	return out
}
