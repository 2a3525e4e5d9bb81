package transformer

import (
	"log"

	"inventario/internal/metrics"
)

// Reporter observes row drops and structural warnings raised while a batch
// is normalized. Implementations must tolerate n == 0.
type Reporter interface {
	// Dropped is called once per stage and reason with the number of rows
	// removed.
	Dropped(stage, reason string, n int)
	// Warn reports a batch-level condition that does not drop rows, such as an
	// unmapped mandatory field.
	Warn(stage, msg string)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Dropped(string, string, int) {}
func (NopReporter) Warn(string, string)         {}

// OrNop returns r, or NopReporter when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return NopReporter{}
	}
	return r
}

// LogReporter writes drops and warnings through a *log.Logger. A nil Logger
// writes to the standard logger.
type LogReporter struct {
	Logger *log.Logger
}

func (l LogReporter) printf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (l LogReporter) Dropped(stage, reason string, n int) {
	if n <= 0 {
		return
	}
	l.printf("transform: stage=%s dropped=%d reason=%s", stage, n, reason)
}

func (l LogReporter) Warn(stage, msg string) {
	l.printf("transform: WARNING stage=%s %s", stage, msg)
}

// MetricsReporter forwards drops to the metrics backend labeled with Job.
type MetricsReporter struct {
	Job string
}

func (m MetricsReporter) Dropped(stage, reason string, n int) {
	metrics.RecordDrop(m.Job, stage, reason, int64(n))
}

func (m MetricsReporter) Warn(stage, _ string) {
	metrics.RecordWarning(m.Job, stage)
}

// Reporters fans out to every element.
type Reporters []Reporter

func (rs Reporters) Dropped(stage, reason string, n int) {
	for _, r := range rs {
		if r != nil {
			r.Dropped(stage, reason, n)
		}
	}
}

func (rs Reporters) Warn(stage, msg string) {
	for _, r := range rs {
		if r != nil {
			r.Warn(stage, msg)
		}
	}
}
