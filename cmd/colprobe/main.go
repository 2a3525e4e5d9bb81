// Command colprobe prints the column mapping a batch would use without
// loading anything: every raw header, its normalized key, and the source
// columns chosen for each canonical field.
//
//	colprobe "data/raw/Inventario POS 1.xlsx" https://host/Inventario%20POS%202.csv
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"inventario/internal/config"
	"inventario/internal/datasource/file"
	"inventario/internal/datasource/httpds"
	"inventario/internal/parser"
	"inventario/internal/reader"
	"inventario/internal/transformer/builtin"
	"inventario/pkg/records"
)

var (
	flagBytes     = flag.Int("bytes", 20000, "number of bytes to sample from the start of delimited URLs")
	flagDelimiter = flag.String("delimiter", "", "CSV field delimiter (single character); defaults by extension")
	flagSheet     = flag.String("sheet", "", "workbook sheet to read; defaults to the first one")
	flagJSON      = flag.Bool("json", false, "print the mapping as JSON")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: colprobe [flags] <path-or-url>...")
		os.Exit(2)
	}

	opts := config.Options{}
	if *flagDelimiter != "" {
		if r, _ := utf8.DecodeRuneInString(*flagDelimiter); r != utf8.RuneError {
			opts["comma"] = string(r)
		}
	}
	if *flagSheet != "" {
		opts["sheet"] = *flagSheet
	}

	p := prober{
		http:     httpds.NewClient(httpds.Config{Timeout: 30 * time.Second}),
		maxBytes: *flagBytes,
		options:  opts,
	}
	if err := p.run(context.Background(), os.Stdout, flag.Args(), *flagJSON); err != nil {
		log.Fatalf("colprobe: %v", err)
	}
}

type prober struct {
	http     *httpds.Client
	maxBytes int
	options  config.Options
}

// headerReport is one raw header and its normalized key.
type headerReport struct {
	Source string `json:"source"`
	Raw    string `json:"raw"`
	Key    string `json:"key"`
}

// fieldReport is the resolution of one canonical field.
type fieldReport struct {
	Field   string   `json:"field"`
	Columns []string `json:"columns"`
}

type report struct {
	Headers []headerReport `json:"headers"`
	Fields  []fieldReport  `json:"fields"`
}

func (p prober) run(ctx context.Context, w io.Writer, names []string, asJSON bool) error {
	var tbl records.Table
	var rep report
	for _, name := range names {
		res, err := p.sample(ctx, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for _, c := range res.Columns {
			rep.Headers = append(rep.Headers, headerReport{Source: displayName(name), Raw: c, Key: builtin.NormalizeHeader(c)})
		}
		tbl.Append(res.Columns, res.Rows)
	}

	plan := builtin.Mapper{Aliases: builtin.DefaultAliases(), Merges: builtin.DefaultMerges()}.Plan(tbl.Columns)
	for _, r := range plan {
		rep.Fields = append(rep.Fields, fieldReport{Field: r.Field(), Columns: r.Columns()})
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	for _, h := range rep.Headers {
		fmt.Fprintf(w, "%s: %q -> %s\n", h.Source, h.Raw, h.Key)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, plan.Describe())
	return nil
}

// sample parses the header and the first rows of name. Delimited URLs are
// sampled with a ranged GET; workbooks are always read whole.
func (p prober) sample(ctx context.Context, name string) (res parser.Result, err error) {
	display := displayName(name)
	ps, ok := reader.ParserFor(display, p.options)
	if !ok {
		return res, fmt.Errorf("unsupported format %q", filepath.Ext(display))
	}

	var data []byte
	switch {
	case isURL(name) && !isWorkbook(display):
		data, err = p.http.FetchFirstBytes(ctx, name, p.maxBytes)
		if err == nil {
			data = dropPartialLine(data)
		}
	case isURL(name):
		data, err = readAll(ctx, httpds.NewURL(p.http, name, nil))
	default:
		data, err = readAll(ctx, file.NewLocal(name))
	}
	if err != nil {
		return res, err
	}
	return ps.Parse(bytes.NewReader(data))
}

type opener interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

func readAll(ctx context.Context, o opener) ([]byte, error) {
	rc, err := o.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// dropPartialLine trims a sample cut in the middle of a record.
func dropPartialLine(b []byte) []byte {
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		return b[:i+1]
	}
	return b
}

func displayName(name string) string {
	if isURL(name) {
		return httpds.NameFromURL(name)
	}
	return filepath.Base(name)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isWorkbook(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
