package engine

import (
	"sort"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/config"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

// SelectionMethod tags every selected scenario with the algorithm that
// produced it.
const SelectionMethod = "randomized-search"

const (
	// selectionQuota is the number of acceptances that terminates the search
	// early.
	selectionQuota = 10
	// selectionLimit caps the number of scenarios returned after ranking.
	selectionLimit = 5
)

// SelectOptimal runs a bounded-attempt randomized filter over the scenario
// pool. Each attempt draws one candidate uniformly from the pool and tests it
// against the configured criterion; the search stops after selectionQuota
// acceptances or when the attempt budget is exhausted, whichever comes first.
// Accepted candidates are ranked by score and at most selectionLimit are
// returned.
//
// Exhausting the budget with fewer acceptances — including zero — is an
// expected outcome of bounded search, not an error. Callers must not treat a
// short result as a failure signal.
func SelectOptimal(pool []models.ScenarioRecord, criteria *config.SelectionCriteria) []models.SelectedScenario {
	accepted := make([]models.SelectedScenario, 0, selectionQuota)
	if len(pool) == 0 || criteria == nil || criteria.MaxIterations == 0 {
		return accepted
	}

	criterion := criteria.Criteria
	if criterion == "" {
		criterion = config.CriterionDefault
	}

	rng := newLaneRNG(0, criteria.Seed)

	for attempt := uint32(1); attempt <= criteria.MaxIterations; attempt++ {
		candidate := pool[int(rng.float64()*float64(len(pool)))]

		if !accepts(criterion, candidate, criteria.SuccessProbability, &rng) {
			continue
		}

		accepted = append(accepted, models.SelectedScenario{
			ScenarioRecord:   candidate,
			SelectionAttempt: attempt,
			SelectionMethod:  SelectionMethod,
			Criteria:         criterion,
		})
		if len(accepted) >= selectionQuota {
			break
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score() > accepted[j].Score()
	})
	if len(accepted) > selectionLimit {
		accepted = accepted[:selectionLimit]
	}
	return accepted
}

// accepts evaluates the success predicate for one candidate. The default
// criterion consumes one PRNG draw per attempt; the named criteria are
// deterministic given the candidate.
func accepts(criterion string, rec models.ScenarioRecord, successProbability float64, rng *laneRNG) bool {
	switch criterion {
	case config.CriterionExtremeWeather:
		return rec.ExtremeWeatherEvents > 10 && rec.ExtremeWeatherEvents < 100 && rec.Confidence > 0.9
	case config.CriterionTemperatureVariance:
		diff := rec.AvgTemperature - 15.0
		if diff < 0 {
			diff = -diff
		}
		return diff > 2.0 && rec.Confidence > 0.85
	case config.CriterionPrecipitationExtremes:
		return (rec.TotalPrecipitation > 800.0 || rec.TotalPrecipitation < 200.0) && rec.Confidence > 0.88
	default:
		return rng.float64() < successProbability
	}
}
