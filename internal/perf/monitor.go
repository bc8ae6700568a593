package perf

import (
	"runtime"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/scenario-engine/internal/policy"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/utils"
)

// recentSampleCount is how many trailing samples a metrics snapshot carries.
const recentSampleCount = 10

// Monitor records operation timings and memory usage and derives scaling
// recommendations from them. It is an explicit, caller-owned context object:
// the engine never touches it internally, callers compose it around the
// calls they care about. Samples live for the lifetime of the monitor.
type Monitor struct {
	mu      sync.RWMutex
	samples []models.PerformanceSample
	rules   []policy.Rule
}

// NewMonitor creates a monitor with the default scaling rules.
func NewMonitor() *Monitor {
	return &Monitor{
		rules: policy.DefaultRules(),
	}
}

// TimingHandle is one open timing scope.
type TimingHandle struct {
	monitor   *Monitor
	operation string
	start     time.Time
}

// StartTiming opens a timing scope for the named operation.
func (m *Monitor) StartTiming(operation string) *TimingHandle {
	return &TimingHandle{
		monitor:   m,
		operation: operation,
		start:     time.Now(),
	}
}

// End closes the scope, appends a sample to the monitor history and returns
// the measured duration in milliseconds.
func (h *TimingHandle) End() float64 {
	durationMs := float64(time.Since(h.start)) / float64(time.Millisecond)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.monitor.append(models.PerformanceSample{
		Operation:   h.operation,
		DurationMs:  durationMs,
		Timestamp:   time.Now().UTC(),
		MemoryBytes: memStats.Alloc,
	})
	return durationMs
}

// Record appends a pre-measured sample directly. Used when the duration was
// measured elsewhere (or replayed from another instance's history).
func (m *Monitor) Record(sample models.PerformanceSample) {
	m.append(sample)
}

func (m *Monitor) append(sample models.PerformanceSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
}

// Metrics returns a snapshot computed over the full sample history.
func (m *Monitor) Metrics() models.PerformanceMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := models.PerformanceMetrics{
		TotalOperations: len(m.samples),
	}

	if len(m.samples) == 0 {
		metrics.RecentSamples = []models.PerformanceSample{}
		return metrics
	}

	durations := make([]float64, len(m.samples))
	for i, s := range m.samples {
		durations[i] = s.DurationMs
		if s.MemoryBytes > metrics.MemoryPeakBytes {
			metrics.MemoryPeakBytes = s.MemoryBytes
		}
	}
	metrics.AverageDurationMs = utils.Mean(durations)
	metrics.P95DurationMs = utils.Percentile(durations, 95)

	recent := len(m.samples)
	if recent > recentSampleCount {
		recent = recentSampleCount
	}
	metrics.RecentSamples = make([]models.PerformanceSample, recent)
	copy(metrics.RecentSamples, m.samples[len(m.samples)-recent:])

	return metrics
}

// Samples returns a copy of the full history.
func (m *Monitor) Samples() []models.PerformanceSample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.PerformanceSample, len(m.samples))
	copy(out, m.samples)
	return out
}

// ScalingRecommendations evaluates the scaling rules against the current
// aggregate. Recommendations are computed on demand and never stored.
func (m *Monitor) ScalingRecommendations() []models.ScalingRecommendation {
	metrics := m.Metrics()
	return policy.Evaluate(m.rules, policy.Aggregate{
		AverageDurationMs: metrics.AverageDurationMs,
		TotalOperations:   metrics.TotalOperations,
		MemoryPeakBytes:   metrics.MemoryPeakBytes,
	})
}
