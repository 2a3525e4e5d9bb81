package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"inventario/internal/config"
	"inventario/internal/metrics"
)

// TestSetupMetrics_Pushgateway installs the Pushgateway backend against a
// local server and checks that the returned flush pushes the job's metrics.
func TestSetupMetrics_Pushgateway(t *testing.T) {
	var pushes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/metrics/job/inventario_test") {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	flush := setupMetrics(config.Pipeline{
		Job:     "inventario_test",
		Metrics: config.Metrics{Backend: "pushgateway", PushgatewayURL: srv.URL},
	}, false)
	metrics.RecordRows("inventario_test", "read", 3)
	flush()

	if pushes.Load() != 1 {
		t.Fatalf("pushes = %d; want 1", pushes.Load())
	}
}

func TestSetupMetrics_DisabledAndUnknown(t *testing.T) {
	for _, backend := range []string{"", "none", "graphite"} {
		flush := setupMetrics(config.Pipeline{Metrics: config.Metrics{Backend: backend}}, true)
		flush()
	}
}
