package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyMode selects how product_code is typed.
type KeyMode int

const (
	// KeyInt casts the code to int64. Codes that are not numbers are dropped.
	KeyInt KeyMode = iota
	// KeyString keeps the trimmed code text.
	KeyString
)

// ParseKeyMode accepts "int" (or empty) and "string".
func ParseKeyMode(s string) (KeyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "int", "int64", "integer":
		return KeyInt, nil
	case "string", "text":
		return KeyString, nil
	default:
		return KeyInt, fmt.Errorf("unknown key mode %q (want int or string)", s)
	}
}

func (m KeyMode) String() string {
	if m == KeyString {
		return "string"
	}
	return "int"
}

// Key is a product_code value in either mode. The zero value is IntKey(0).
type Key struct {
	mode KeyMode
	i    int64
	s    string
}

// IntKey returns a numeric key.
func IntKey(n int64) Key { return Key{mode: KeyInt, i: n} }

// StringKey returns a text key.
func StringKey(s string) Key { return Key{mode: KeyString, s: s} }

// Mode reports which representation k holds.
func (k Key) Mode() KeyMode { return k.mode }

// Value returns the driver value: int64 or string.
func (k Key) Value() any {
	if k.mode == KeyString {
		return k.s
	}
	return k.i
}

func (k Key) String() string {
	if k.mode == KeyString {
		return k.s
	}
	return strconv.FormatInt(k.i, 10)
}

// KeyOf builds a Key from a coerced record value (int64 or string).
func KeyOf(v any) (Key, error) {
	switch t := v.(type) {
	case int64:
		return IntKey(t), nil
	case int:
		return IntKey(int64(t)), nil
	case string:
		return StringKey(t), nil
	default:
		return Key{}, fmt.Errorf("product_code: unsupported type %T", v)
	}
}
