package scenariod

import (
	"fmt"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/scenario-engine/internal/engine"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/config"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/utils"
)

// RunRecord is the store's view of one simulation run.
type RunRecord struct {
	Run       *models.Run
	Params    *config.SimulationParameters
	Scenarios []models.ScenarioRecord
	Stats     engine.SimulationStats

	// Completion webhook, optional.
	CallbackURL    string
	CallbackSecret string
}

// RunStore is the in-memory run registry.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

func (s *RunStore) Create(runID string, params *config.SimulationParameters, callbackURL, callbackSecret string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("run already exists: %s", runID)
	}

	rec := &RunRecord{
		Run: &models.Run{
			ID:              runID,
			Status:          models.RunStatusPending,
			CreatedAtUnixMs: nowUnixMs(),
		},
		Params:         params,
		CallbackURL:    callbackURL,
		CallbackSecret: callbackSecret,
	}
	s.runs[runID] = rec
	return rec, nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	return rec, ok
}

func (s *RunStore) List(limit int) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]*RunRecord, 0, limit)
	for _, rec := range s.runs {
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	switch status {
	case models.RunStatusRunning:
		if rec.Run.StartedAtUnixMs == 0 {
			rec.Run.StartedAtUnixMs = nowUnixMs()
		}
	case models.RunStatusCompleted, models.RunStatusFailed, models.RunStatusCancelled:
		rec.Run.EndedAtUnixMs = nowUnixMs()
	}

	return rec, nil
}

// SetResults stores the scenario ensemble produced by a completed run.
func (s *RunStore) SetResults(runID string, scenarios []models.ScenarioRecord, stats engine.SimulationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	rec.Scenarios = scenarios
	rec.Stats = stats
	rec.Run.Backend = stats.Backend
	rec.Run.ScenarioCount = len(scenarios)
	rec.Run.DroppedIndices = stats.DroppedIndices
	return nil
}
