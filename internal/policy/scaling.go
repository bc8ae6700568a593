package policy

import (
	"fmt"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

// Aggregate is the monitor-level summary a scaling rule evaluates against.
type Aggregate struct {
	AverageDurationMs float64
	TotalOperations   int
	MemoryPeakBytes   uint64
}

// Rule is one independent scaling check. Rules do not rank or suppress each
// other; every firing rule contributes a recommendation.
type Rule interface {
	// Name returns the rule name for identification
	Name() string
	// Evaluate returns a recommendation and whether the rule fired
	Evaluate(agg Aggregate) (models.ScalingRecommendation, bool)
}

const (
	// slowOperationThresholdMs is the average duration above which compute
	// is considered the bottleneck.
	slowOperationThresholdMs = 1000.0
	// memoryPressureThresholdBytes is 1 GiB of peak usage.
	memoryPressureThresholdBytes = uint64(1) << 30
	// operationVolumeThreshold is the total operation count above which a
	// single instance is considered saturated.
	operationVolumeThreshold = 1000
)

// slowOperationsRule recommends accelerator scale-up when operations are slow
// on average.
type slowOperationsRule struct{}

func (slowOperationsRule) Name() string { return "slow_operations" }

func (slowOperationsRule) Evaluate(agg Aggregate) (models.ScalingRecommendation, bool) {
	if agg.AverageDurationMs <= slowOperationThresholdMs {
		return models.ScalingRecommendation{}, false
	}
	return models.ScalingRecommendation{
		Kind:       models.RecommendationGpuScaleUp,
		Reason:     fmt.Sprintf("average operation duration %.1fms exceeds %.0fms", agg.AverageDurationMs, slowOperationThresholdMs),
		Suggestion: "move dispatches to a larger accelerator tier or increase worker parallelism",
	}, true
}

// memoryPressureRule recommends memory scale-up when peak usage crosses 1 GiB.
type memoryPressureRule struct{}

func (memoryPressureRule) Name() string { return "memory_pressure" }

func (memoryPressureRule) Evaluate(agg Aggregate) (models.ScalingRecommendation, bool) {
	if agg.MemoryPeakBytes <= memoryPressureThresholdBytes {
		return models.ScalingRecommendation{}, false
	}
	return models.ScalingRecommendation{
		Kind:       models.RecommendationMemoryScaleUp,
		Reason:     fmt.Sprintf("peak memory %d bytes exceeds 1GiB", agg.MemoryPeakBytes),
		Suggestion: "provision more memory or reduce ensemble size per dispatch",
	}, true
}

// operationVolumeRule recommends horizontal scale-out under sustained volume.
type operationVolumeRule struct{}

func (operationVolumeRule) Name() string { return "operation_volume" }

func (operationVolumeRule) Evaluate(agg Aggregate) (models.ScalingRecommendation, bool) {
	if agg.TotalOperations <= operationVolumeThreshold {
		return models.ScalingRecommendation{}, false
	}
	return models.ScalingRecommendation{
		Kind:       models.RecommendationHorizontal,
		Reason:     fmt.Sprintf("%d operations recorded on one instance", agg.TotalOperations),
		Suggestion: "distribute simulation runs across additional engine instances",
	}, true
}

// DefaultRules returns the scaling rules in their fixed evaluation order.
// Emission order is this insertion order, not severity.
func DefaultRules() []Rule {
	return []Rule{
		slowOperationsRule{},
		memoryPressureRule{},
		operationVolumeRule{},
	}
}

// Evaluate runs every rule against the aggregate and collects the
// recommendations of those that fired.
func Evaluate(rules []Rule, agg Aggregate) []models.ScalingRecommendation {
	recommendations := make([]models.ScalingRecommendation, 0, len(rules))
	for _, rule := range rules {
		if rec, fired := rule.Evaluate(agg); fired {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}
