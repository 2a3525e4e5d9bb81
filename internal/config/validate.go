// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"inventario/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "sources[1].http.url").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs, metrics and the run lock",
		})
	}
	issues = append(issues, validateSources(p.Sources)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransform(p.Transform)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateLock(p.Lock)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

func validateSources(ss []Source) []Issue {
	if len(ss) == 0 {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "sources",
			Message:  "no sources configured; the run will load nothing",
		}}
	}

	var issues []Issue
	for i, s := range ss {
		base := fmt.Sprintf("sources[%d]", i)
		switch s.Kind {
		case "":
			issues = append(issues, Issue{SeverityError, base + ".kind", "source kind must not be empty"})
		case "file":
			if strings.TrimSpace(s.File.Path) == "" {
				issues = append(issues, Issue{SeverityError, base + ".file.path", "file source requires a non-empty path"})
			}
		case "list":
			if strings.TrimSpace(s.List.Path) == "" {
				issues = append(issues, Issue{SeverityError, base + ".list.path", "list source requires a non-empty path"})
			}
		case "http":
			u, err := url.Parse(s.HTTP.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				issues = append(issues, Issue{SeverityError, base + ".http.url", fmt.Sprintf("invalid http url %q", s.HTTP.URL)})
			}
		case "s3":
			if strings.TrimSpace(s.S3.Bucket) == "" {
				issues = append(issues, Issue{SeverityError, base + ".s3.bucket", "s3 source requires a bucket"})
			}
			if strings.TrimSpace(s.S3.Key) == "" {
				issues = append(issues, Issue{SeverityError, base + ".s3.key", "s3 source requires a key"})
			}
		default:
			issues = append(issues, Issue{SeverityError, base + ".kind", fmt.Sprintf("unknown source kind %q", s.Kind)})
		}
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if c := p.Options.String("comma", ""); c != "" && len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	if n := p.Options.Int("header_row", 1); n < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.header_row",
			Message:  "header_row is 1-based and must be positive",
		})
	}
	return issues
}

func validateTransform(t Transform) []Issue {
	var issues []Issue
	if _, err := schema.ParseKeyMode(t.KeyMode); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.key_mode",
			Message:  err.Error(),
		})
	}
	for field, aliases := range t.Aliases {
		path := "transform.aliases." + field
		if !schema.IsField(field) {
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("unknown canonical field %q", field)})
			continue
		}
		if len(aliases) == 0 {
			issues = append(issues, Issue{SeverityWarning, path, "alias list is empty"})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"mysql":     {},
		"postgres":  {},
		"mssql":     {},
		"sqlite":    {},
		"snowflake": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	return issues
}

func validateLock(l Lock) []Issue {
	var issues []Issue
	if l.RedisURL == "" {
		return nil
	}
	if !strings.HasPrefix(l.RedisURL, "redis://") && !strings.HasPrefix(l.RedisURL, "rediss://") {
		issues = append(issues, Issue{SeverityError, "lock.redis_url", "redis_url must start with redis:// or rediss://"})
	}
	if l.TTLSeconds < 0 {
		issues = append(issues, Issue{SeverityError, "lock.ttl_seconds", "ttl_seconds must not be negative"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none", "pushgateway", "datadog":
		return nil
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		}}
	}
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.ReaderWorkers < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.reader_workers", "reader_workers must not be negative"})
	}
	if r.HTTPRetries < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.http_retries", "http_retries must not be negative"})
	}
	if r.HTTPTimeoutSeconds < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.http_timeout_seconds", "http_timeout_seconds must not be negative"})
	}
	return issues
}
