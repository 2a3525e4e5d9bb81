package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func withFake(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := withFake(t)

	RecordStep("inv", "extract", nil, 2*time.Second)
	RecordStep("inv", "load", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 || len(fb.callsHistograms) != 2 {
		t.Fatalf("counters=%d histograms=%d; want 2 each", len(fb.callsCounters), len(fb.callsHistograms))
	}

	c0 := fb.callsCounters[0]
	if c0.name != StageTotal || c0.labels["stage"] != "extract" || c0.labels["status"] != "success" {
		t.Fatalf("counter[0]=%#v", c0)
	}
	if h := fb.callsHistograms[0]; h.name != StageDuration || h.value < 1.999 || h.value > 2.001 {
		t.Fatalf("hist[0]=%#v", h)
	}
	if c1 := fb.callsCounters[1]; c1.labels["status"] != "failure" || c1.labels["job"] != "inv" {
		t.Fatalf("counter[1]=%#v", c1)
	}
}

func TestRecordRowsDropsAndSources(t *testing.T) {
	fb := withFake(t)

	RecordRows("inv", "read", 10)
	RecordRows("inv", "read", 0) // ignored
	RecordDrop("inv", "coerce", "negative_stock", 2)
	RecordDrop("inv", "coerce", "negative_stock", 0) // ignored
	RecordWarning("inv", "map")
	RecordSource("inv", "failed")

	if len(fb.callsCounters) != 4 {
		t.Fatalf("expected 4 counter calls, got %d", len(fb.callsCounters))
	}
	if c := fb.callsCounters[0]; c.name != RowsTotal || c.delta != 10 || c.labels["kind"] != "read" {
		t.Fatalf("rows=%#v", c)
	}
	if c := fb.callsCounters[1]; c.name != DroppedTotal || c.labels["reason"] != "negative_stock" || c.labels["stage"] != "coerce" {
		t.Fatalf("drop=%#v", c)
	}
	if c := fb.callsCounters[2]; c.name != WarningsTotal || c.labels["stage"] != "map" {
		t.Fatalf("warning=%#v", c)
	}
	if c := fb.callsCounters[3]; c.name != SourcesTotal || c.labels["status"] != "failed" {
		t.Fatalf("source=%#v", c)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}
