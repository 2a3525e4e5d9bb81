package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inventario/internal/config"
	"inventario/internal/datasource/file"
	"inventario/internal/datasource/httpds"
	"inventario/internal/datasource/s3ds"
)

// Deps carries shared clients used while building sources. Nil fields are
// created on first use.
type Deps struct {
	HTTP *httpds.Client
	S3   s3ds.GetObjectAPI

	// NewS3 builds an S3 client for a region and optional endpoint.
	NewS3 func(ctx context.Context, region, endpoint string) (s3ds.GetObjectAPI, error)
}

// FromConfig expands the configured sources into openable ones, keeping
// configuration order. A "list" source expands to one source per line.
func FromConfig(ctx context.Context, srcs []config.Source, rt config.RuntimeConfig, deps Deps) ([]Source, error) {
	if deps.HTTP == nil {
		deps.HTTP = httpds.NewClient(httpds.Config{
			Timeout:    time.Duration(rt.HTTPTimeoutSeconds) * time.Second,
			MaxRetries: rt.HTTPRetries,
		})
	}
	if deps.NewS3 == nil {
		deps.NewS3 = func(ctx context.Context, region, endpoint string) (s3ds.GetObjectAPI, error) {
			return s3ds.NewClient(ctx, region, endpoint)
		}
	}

	var out []Source
	for i, s := range srcs {
		switch s.Kind {
		case "file":
			out = append(out, file.NewLocal(s.File.Path))
		case "http":
			out = append(out, httpds.NewURL(deps.HTTP, s.HTTP.URL, headerOf(s.HTTP.Headers)))
		case "s3":
			api := deps.S3
			if api == nil {
				c, err := deps.NewS3(ctx, s.S3.Region, s.S3.Endpoint)
				if err != nil {
					return nil, fmt.Errorf("sources[%d]: %w", i, err)
				}
				api = c
			}
			out = append(out, s3ds.NewObject(api, s.S3.Bucket, s.S3.Key))
		case "list":
			lines, err := file.ReadList(s.List.Path)
			if err != nil {
				return nil, fmt.Errorf("sources[%d]: read list %s: %w", i, s.List.Path, err)
			}
			for _, l := range lines {
				if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
					out = append(out, httpds.NewURL(deps.HTTP, l, nil))
					continue
				}
				out = append(out, file.NewLocal(l))
			}
		default:
			return nil, fmt.Errorf("sources[%d]: unknown source kind %q", i, s.Kind)
		}
	}
	return out, nil
}

func headerOf(m map[string]string) http.Header {
	if len(m) == 0 {
		return nil
	}
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
