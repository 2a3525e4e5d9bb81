package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied by Load when the pipeline file leaves them unset.
const (
	DefaultTable          = "inventario_consolidado"
	DefaultKeyMode        = "int"
	DefaultLockTTLSeconds = 600
	DefaultReaderWorkers  = 4
	DefaultHTTPRetries    = 3
	DefaultHTTPTimeoutSec = 60
)

// Load reads a pipeline file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON.
func Load(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
	}
	p, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}

// Decode parses a pipeline document. ext selects the format (".yaml", ".yml"
// or anything else for JSON) and defaults are applied afterwards.
func Decode(data []byte, ext string) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Pipeline{}, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, err
		}
	}
	applyDefaults(&p)
	return p, nil
}

// LoadFromEnv loads a .env file when present, then the pipeline file, then
// applies environment overrides. Secrets such as the DSN can therefore live
// outside the pipeline file.
func LoadFromEnv(path string) (Pipeline, error) {
	_ = godotenv.Load()

	p, err := Load(path)
	if err != nil {
		return Pipeline{}, err
	}
	ApplyEnv(&p, os.Getenv)
	return p, nil
}

// ApplyEnv overrides pipeline values from the environment. getenv is
// usually os.Getenv.
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	if v := getenv("ETL_JOB"); v != "" {
		p.Job = v
	}
	if v := getenv("ETL_STORAGE_KIND"); v != "" {
		p.Storage.Kind = v
	}
	if v := getenv("ETL_STORAGE_DSN"); v != "" {
		p.Storage.DB.DSN = v
	}
	if v := getenv("ETL_TABLE"); v != "" {
		p.Storage.DB.Table = v
	}
	if v := getenv("ETL_AUTO_CREATE_TABLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.Storage.DB.AutoCreateTable = b
		}
	}
	if v := getenv("ETL_KEY_MODE"); v != "" {
		p.Transform.KeyMode = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		p.Lock.RedisURL = v
	}
	if v := getenv("METRICS_BACKEND"); v != "" {
		p.Metrics.Backend = v
	}
	if v := getenv("PUSHGATEWAY_URL"); v != "" {
		p.Metrics.PushgatewayURL = v
	}
	if v := getenv("DD_AGENT_ADDR"); v != "" {
		p.Metrics.DatadogAddr = v
	}
	if n, ok := envInt(getenv, "ETL_READER_WORKERS"); ok {
		p.Runtime.ReaderWorkers = n
	}
}

func envInt(getenv func(string) string, k string) (int, bool) {
	s := getenv(k)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func applyDefaults(p *Pipeline) {
	if p.Storage.DB.Table == "" {
		p.Storage.DB.Table = DefaultTable
	}
	if p.Transform.KeyMode == "" {
		p.Transform.KeyMode = DefaultKeyMode
	}
	if p.Lock.TTLSeconds == 0 {
		p.Lock.TTLSeconds = DefaultLockTTLSeconds
	}
	if p.Runtime.ReaderWorkers == 0 {
		p.Runtime.ReaderWorkers = DefaultReaderWorkers
	}
	if p.Runtime.HTTPRetries == 0 {
		p.Runtime.HTTPRetries = DefaultHTTPRetries
	}
	if p.Runtime.HTTPTimeoutSeconds == 0 {
		p.Runtime.HTTPTimeoutSeconds = DefaultHTTPTimeoutSec
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
}
