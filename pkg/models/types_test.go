package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRunStatusIsTerminal(t *testing.T) {
	cases := []struct {
		status RunStatus
		want   bool
	}{
		{RunStatusPending, false},
		{RunStatusRunning, false},
		{RunStatusCompleted, true},
		{RunStatusFailed, true},
		{RunStatusCancelled, true},
	}
	for _, tc := range cases {
		if got := tc.status.IsTerminal(); got != tc.want {
			t.Fatalf("IsTerminal(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestScenarioRecordScore(t *testing.T) {
	rec := ScenarioRecord{ExtremeWeatherEvents: 50, Confidence: 0.95}
	want := 0.95 * 1.5
	if got := rec.Score(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected score %f, got %f", want, got)
	}

	// No extreme events: score equals confidence.
	rec = ScenarioRecord{ExtremeWeatherEvents: 0, Confidence: 0.75}
	if got := rec.Score(); got != 0.75 {
		t.Fatalf("expected score 0.75, got %f", got)
	}
}

func TestSelectedScenarioJSONShape(t *testing.T) {
	sel := SelectedScenario{
		ScenarioRecord: ScenarioRecord{
			Iteration:  3,
			Confidence: 0.95,
		},
		SelectionAttempt: 7,
		SelectionMethod:  "randomized-search",
		Criteria:         "extremeWeatherEvents",
	}

	data, err := json.Marshal(sel)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	// Embedded record fields must appear flat for downstream consumers.
	if decoded["iteration"] != float64(3) {
		t.Fatalf("expected flat iteration field, got %v", decoded["iteration"])
	}
	if decoded["selection_attempt"] != float64(7) {
		t.Fatalf("expected selection_attempt 7, got %v", decoded["selection_attempt"])
	}
}
