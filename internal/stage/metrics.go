package stage

import (
	"sort"
	"sync"
	"time"

	"github.com/sells-group/geo-intel/internal/model"
)

// Metrics accumulates per-request orchestration statistics.
type Metrics struct {
	mu         sync.Mutex
	start      time.Time
	total      time.Duration
	perStep    map[string]time.Duration
	successful map[string]struct{}
	failed     map[string]struct{}
	skipped    map[string]struct{}
	warnings   []string
}

// NewMetrics starts a metrics record at the given instant.
func NewMetrics(start time.Time) *Metrics {
	return &Metrics{
		start:      start,
		perStep:    make(map[string]time.Duration),
		successful: make(map[string]struct{}),
		failed:     make(map[string]struct{}),
		skipped:    make(map[string]struct{}),
	}
}

// Record files a stage outcome under its key.
func (m *Metrics) Record(key string, success bool, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perStep[key] = d
	if success {
		m.successful[key] = struct{}{}
		delete(m.failed, key)
		return
	}
	m.failed[key] = struct{}{}
	delete(m.successful, key)
}

// Skip marks a stage as intentionally not run.
func (m *Metrics) Skip(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[key] = struct{}{}
}

// Warn appends warnings in order.
func (m *Metrics) Warn(msgs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, msgs...)
}

// Finish stamps the total duration.
func (m *Metrics) Finish(end time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = end.Sub(m.start)
}

// Warnings returns a copy of the accumulated warnings.
func (m *Metrics) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.warnings...)
}

// Failed reports whether the stage was recorded as failed.
func (m *Metrics) Failed(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.failed[key]
	return ok
}

// Counts returns the number of failed stages and of executed stages.
func (m *Metrics) Counts() (failed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.failed), len(m.failed) + len(m.successful)
}

// Snapshot returns an immutable summary with sorted step lists.
func (m *Metrics) Snapshot() *model.ExecutionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	per := make(map[string]int64, len(m.perStep))
	for k, d := range m.perStep {
		per[k] = d.Milliseconds()
	}
	return &model.ExecutionSummary{
		TotalDurationMs:   m.total.Milliseconds(),
		PerStepDurationMs: per,
		SuccessfulSteps:   sortedKeys(m.successful),
		FailedSteps:       sortedKeys(m.failed),
		SkippedSteps:      sortedKeys(m.skipped),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
