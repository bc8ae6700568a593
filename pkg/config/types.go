package config

// SimulationParameters describes one Monte Carlo ensemble request. The
// variable order defines the output buffer layout, so it is significant.
type SimulationParameters struct {
	Years      uint32   `yaml:"years" json:"years"`
	Iterations uint32   `yaml:"iterations" json:"iterations"`
	Variables  []string `yaml:"variables" json:"variables"`

	// UncertaintyBounds enumerates per-variable bound semantics. The bounds
	// are accepted and validated but not yet consumed by the kernel; see
	// the extension point in the kernel dispatch.
	UncertaintyBounds []UncertaintyBound `yaml:"uncertainty_bounds,omitempty" json:"uncertainty_bounds,omitempty"`

	// Seed is the external seed mixed into every lane seed. Zero is a valid
	// seed and still yields a deterministic run.
	Seed uint32 `yaml:"seed,omitempty" json:"seed,omitempty"`

	Engine *EngineOptions `yaml:"engine,omitempty" json:"engine,omitempty"`
}

// UncertaintyBound gives the recognized uncertainty range for one variable.
type UncertaintyBound struct {
	Variable string  `yaml:"variable" json:"variable"`
	Lower    float64 `yaml:"lower" json:"lower"`
	Upper    float64 `yaml:"upper" json:"upper"`
}

// EngineOptions tune backend selection and dispatch shape.
type EngineOptions struct {
	// ForceFallback skips accelerator detection and runs the sequential path.
	ForceFallback bool `yaml:"force_fallback,omitempty" json:"force_fallback,omitempty"`
	// WorkgroupSize is the number of lanes dispatched per workgroup.
	// Zero selects the default of 64.
	WorkgroupSize int `yaml:"workgroup_size,omitempty" json:"workgroup_size,omitempty"`
}

// Selection criterion names understood by the scenario selector.
const (
	CriterionExtremeWeather       = "extremeWeatherEvents"
	CriterionTemperatureVariance  = "temperatureVariance"
	CriterionPrecipitationExtremes = "precipitationExtremes"
	CriterionDefault              = "default"
)

// SelectionCriteria configures one bounded randomized selection pass.
type SelectionCriteria struct {
	Criteria string `yaml:"criteria,omitempty" json:"criteria,omitempty"`
	// MaxIterations bounds the number of sampling attempts.
	MaxIterations uint32 `yaml:"max_iterations" json:"max_iterations"`
	// SuccessProbability is consumed only by the default criterion.
	SuccessProbability float64 `yaml:"success_probability,omitempty" json:"success_probability,omitempty"`
	// Seed seeds the selector's pool draws for reproducible selection.
	Seed uint32 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// WorkgroupSizeOrDefault returns the configured workgroup size or 64.
func (p *SimulationParameters) WorkgroupSizeOrDefault() int {
	if p.Engine != nil && p.Engine.WorkgroupSize > 0 {
		return p.Engine.WorkgroupSize
	}
	return 64
}

// ForceFallback reports whether the sequential path was requested explicitly.
func (p *SimulationParameters) ForceFallback() bool {
	return p.Engine != nil && p.Engine.ForceFallback
}
