// Package ddl defines a small, backend-agnostic model for the warehouse table
// and renders CREATE TABLE statements through a per-backend Dialect.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect adapts rendering to one SQL backend.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite".
	Name string

	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(string) string

	// MapType returns the concrete SQL type of c.
	MapType func(c ColumnDef) string

	// Guard wraps the CREATE TABLE statement so it is a no-op when the table
	// exists. quotedFQN is the already-quoted table name. When nil, the
	// statement is prefixed with CREATE TABLE IF NOT EXISTS.
	Guard func(quotedFQN, create string) string
}

// QuoteFQN quotes every dot-separated segment of fqn, skipping empty ones.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// QuoteAll quotes each column name.
func (d Dialect) QuoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.QuoteIdent(c)
	}
	return out
}

// BuildCreateTableSQL renders an idempotent CREATE TABLE statement:
//
//	CREATE TABLE IF NOT EXISTS "t" (
//	  "col1" TYPE NOT NULL,
//	  "col2" TYPE,
//	  PRIMARY KEY ("col1")
//	);
//
// Dialects with a Guard emit their own wrapper instead of IF NOT EXISTS.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := d.MapType(c)
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s has unsupported type %q", d.Name, name, c.Type)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	quoted := d.QuoteFQN(fqn)
	body := strings.Join(cols, ",\n  ")
	if d.Guard != nil {
		return d.Guard(quoted, fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", quoted, body)), nil
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoted, body), nil
}
