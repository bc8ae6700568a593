package models

import "time"

// RunStatus represents the status of a simulation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether the status is a terminal state
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run represents a simulation run
type Run struct {
	ID              string    `json:"id"`
	Status          RunStatus `json:"status"`
	Backend         string    `json:"backend,omitempty"`
	CreatedAtUnixMs int64     `json:"created_at_unix_ms"`
	StartedAtUnixMs int64     `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64     `json:"ended_at_unix_ms,omitempty"`
	Error           string    `json:"error,omitempty"`
	ScenarioCount   int       `json:"scenario_count"`
	DroppedIndices  uint64    `json:"dropped_indices,omitempty"`
}

// ScenarioRecord is the aggregated summary of one simulated trajectory.
// It is immutable once produced by the decoder.
type ScenarioRecord struct {
	Iteration           uint32  `json:"iteration"`
	ExtremeWeatherEvents uint32 `json:"extreme_weather_events"`
	AvgTemperature      float64 `json:"avg_temperature"`
	TotalPrecipitation  float64 `json:"total_precipitation"`
	MaxWindSpeed        float64 `json:"max_wind_speed"`
	Confidence          float64 `json:"confidence"`
}

// Score is the ranking score used by the scenario selector.
func (r ScenarioRecord) Score() float64 {
	return r.Confidence * (1.0 + float64(r.ExtremeWeatherEvents)/100.0)
}

// SelectedScenario is a ScenarioRecord accepted by the randomized selector,
// tagged with the 1-based attempt at which it was accepted.
type SelectedScenario struct {
	ScenarioRecord

	SelectionAttempt uint32 `json:"selection_attempt"`
	SelectionMethod  string `json:"selection_method"`
	Criteria         string `json:"criteria"`
}

// PerformanceSample is one recorded timing scope. Samples are appended to
// the monitor history and never mutated afterwards.
type PerformanceSample struct {
	Operation   string    `json:"operation"`
	DurationMs  float64   `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
	MemoryBytes uint64    `json:"memory_bytes"`
}

// RecommendationKind identifies a scaling recommendation category
type RecommendationKind string

const (
	RecommendationGpuScaleUp    RecommendationKind = "gpu_scale_up"
	RecommendationMemoryScaleUp RecommendationKind = "memory_scale_up"
	RecommendationHorizontal    RecommendationKind = "horizontal_scale"
)

// ScalingRecommendation is a resource-scaling action derived from the
// accumulated performance samples. Computed on demand, not stored.
type ScalingRecommendation struct {
	Kind       RecommendationKind `json:"kind"`
	Reason     string             `json:"reason"`
	Suggestion string             `json:"suggestion"`
}

// PerformanceMetrics is a read-only snapshot over the full sample history.
type PerformanceMetrics struct {
	AverageDurationMs float64             `json:"average_duration_ms"`
	P95DurationMs     float64             `json:"p95_duration_ms"`
	TotalOperations   int                 `json:"total_operations"`
	MemoryPeakBytes   uint64              `json:"memory_peak_bytes"`
	RecentSamples     []PerformanceSample `json:"recent_samples"`
}
