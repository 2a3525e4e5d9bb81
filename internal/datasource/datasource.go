// Package datasource opens the raw bytes of one input file. Concrete sources
// live in subpackages (file, httpds, s3ds); FromConfig builds them from a
// pipeline source entry.
package datasource

import (
	"context"
	"io"
)

// Source is one named input file. Name carries the file name including its
// extension; the reader selects a parser from it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
