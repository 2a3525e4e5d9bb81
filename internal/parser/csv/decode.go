package csv

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding names reported by DecodeText.
const (
	EncodingUTF8BOM = "utf-8-bom"
	EncodingUTF8    = "utf-8"
	EncodingLatin1  = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText returns b as UTF-8. It tries UTF-8 with a BOM, then plain UTF-8,
// then Latin-1, and reports which one applied. Latin-1 maps every byte, so
// decoding never fails.
func DecodeText(b []byte) ([]byte, string) {
	if rest, ok := bytes.CutPrefix(b, utf8BOM); ok && utf8.Valid(rest) {
		return rest, EncodingUTF8BOM
	}
	if utf8.Valid(b) {
		return b, EncodingUTF8
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// Unreachable for ISO-8859-1; keep the input rather than lose rows.
		return b, EncodingUTF8
	}
	return out, EncodingLatin1
}
