// Package config defines the configuration model for the inventory ETL
// binary. A pipeline file lists the sources to read, reader options, the
// transform settings and the warehouse sink.
//
// Pipeline files may be JSON or YAML. Field names in Go mirror the keys used
// in configs/pipelines/*.json.
//
// Example (trimmed):
//
//	{
//	  "job": "inventario_consolidado",
//	  "sources": [
//	    { "kind": "file", "file": { "path": "data/raw/Inventario POS 1.xlsx" } },
//	    { "kind": "http", "http": { "url": "https://host/Inventario%20POS%202.csv" } }
//	  ],
//	  "parser":    { "options": { "comma": ";" } },
//	  "transform": { "key_mode": "int" },
//	  "storage":   { "kind": "mysql", "db": { "dsn": "...", "table": "inventario_consolidado" } }
//	}
package config

import "encoding/json"

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logs, metrics and the run lock.
	Job string `json:"job" yaml:"job"`

	// Sources are read in order; their rows are concatenated in this order.
	Sources []Source `json:"sources" yaml:"sources"`

	// Parser carries reader options shared by every source.
	Parser Parser `json:"parser" yaml:"parser"`

	Transform Transform     `json:"transform" yaml:"transform"`
	Storage   Storage       `json:"storage" yaml:"storage"`
	Lock      Lock          `json:"lock" yaml:"lock"`
	Metrics   Metrics       `json:"metrics" yaml:"metrics"`
	Runtime   RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// RuntimeConfig controls source fetch concurrency and HTTP behavior.
type RuntimeConfig struct {
	ReaderWorkers      int `json:"reader_workers" yaml:"reader_workers"`
	HTTPRetries        int `json:"http_retries" yaml:"http_retries"`
	HTTPTimeoutSeconds int `json:"http_timeout_seconds" yaml:"http_timeout_seconds"`
}

// Source identifies one input file. Kind is one of "file", "http", "s3" or
// "list".
type Source struct {
	Kind string     `json:"kind" yaml:"kind"`
	File SourceFile `json:"file" yaml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http"`
	S3   SourceS3   `json:"s3" yaml:"s3"`
	List SourceList `json:"list" yaml:"list"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" yaml:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// SourceS3 holds configuration for the "s3" source kind. Region and
// Endpoint are optional; the default AWS credential chain applies.
type SourceS3 struct {
	Bucket   string `json:"bucket" yaml:"bucket"`
	Key      string `json:"key" yaml:"key"`
	Region   string `json:"region" yaml:"region"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// SourceList points at a text file with one path or http(s) URL per line.
// Blank lines and lines starting with '#' are ignored.
type SourceList struct {
	Path string `json:"path" yaml:"path"`
}

// Parser configures how raw bytes are turned into rows.
type Parser struct {
	// Options is a free-form map. Recognized keys:
	//   comma (string), lazy_quotes (bool), sheet (string), header_row (int)
	Options Options `json:"options" yaml:"options"`
}

// Transform configures the schema normalizer.
type Transform struct {
	// KeyMode is "int" (default) or "string".
	KeyMode string `json:"key_mode" yaml:"key_mode"`

	// Aliases appends extra normalized aliases per canonical field, after the
	// built-in ones (e.g. {"stock": ["saldo"]}).
	Aliases map[string][]string `json:"aliases" yaml:"aliases"`
}

// Storage selects the sink used to persist reconciled records.
type Storage struct {
	// Kind selects the storage backend: mysql, postgres, sqlite, mssql or
	// snowflake.
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the warehouse sink.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the destination table, optionally schema-qualified.
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable creates the table when it does not exist.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Lock configures the optional Redis run lock. An empty RedisURL disables it.
type Lock struct {
	RedisURL   string `json:"redis_url" yaml:"redis_url"`
	TTLSeconds int    `json:"ttl_seconds" yaml:"ttl_seconds"`
}

// Metrics selects the metrics backend: "pushgateway", "datadog" or "none".
type Metrics struct {
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// Options is a small helper to fetch typed values from arbitrary maps. It
// performs only minimal type coercion and returns the provided default when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64
// and YAML integers as int; both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for the CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON decodes a missing or null "options" object to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
