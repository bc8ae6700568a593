package scenariod

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/scenario-engine/internal/engine"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/config"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/logger"
)

type HTTPServer struct {
	mux         *http.ServeMux
	store       *RunStore
	Executor    *RunExecutor
	Broadcaster *Broadcaster
}

func NewHTTPServer(store *RunStore, executor *RunExecutor, broadcaster *Broadcaster) *HTTPServer {
	s := &HTTPServer{
		mux:         http.NewServeMux(),
		store:       store,
		Executor:    executor,
		Broadcaster: broadcaster,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)
	if broadcaster != nil {
		s.mux.HandleFunc("/ws", broadcaster.HandleWS)
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"backend":   s.Executor.Engine().BackendName(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// handleRuns handles /v1/runs endpoint
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id} and related endpoints
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	// Parse path: /v1/runs/{id}, /v1/runs/{id}:start, /v1/runs/{id}:stop,
	// /v1/runs/{id}/scenarios, /v1/runs/{id}/select, /v1/runs/{id}/perf
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	// Check for :start suffix
	if strings.HasSuffix(path, ":start") {
		runID := strings.TrimSuffix(path, ":start")
		if r.Method == http.MethodPost {
			s.handleStartRun(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Check for :stop suffix
	if strings.HasSuffix(path, ":stop") {
		runID := strings.TrimSuffix(path, ":stop")
		if r.Method == http.MethodPost {
			s.handleStopRun(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Check for /scenarios suffix
	if strings.HasSuffix(path, "/scenarios") {
		runID := strings.TrimSuffix(path, "/scenarios")
		if r.Method == http.MethodGet {
			s.handleGetScenarios(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Check for /select suffix
	if strings.HasSuffix(path, "/select") {
		runID := strings.TrimSuffix(path, "/select")
		if r.Method == http.MethodPost {
			s.handleSelectScenarios(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Check for /perf suffix
	if strings.HasSuffix(path, "/perf") {
		runID := strings.TrimSuffix(path, "/perf")
		if r.Method == http.MethodGet {
			s.handleGetPerf(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Otherwise it's GET /v1/runs/{id}
	if r.Method == http.MethodGet {
		s.handleGetRun(w, r, path)
	} else {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreateRun handles POST /v1/runs
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID          string                       `json:"run_id,omitempty"`
		Parameters     *config.SimulationParameters `json:"parameters"`
		CallbackURL    string                       `json:"callback_url,omitempty"`
		CallbackSecret string                       `json:"callback_secret,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Parameters == nil {
		s.writeError(w, http.StatusBadRequest, "parameters is required")
		return
	}

	if err := config.ValidateParameters(req.Parameters); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.CallbackURL != "" {
		if err := validateCallbackURL(req.CallbackURL); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rec, err := s.store.Create(req.RunID, req.Parameters, req.CallbackURL, req.CallbackSecret)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			s.writeError(w, http.StatusConflict, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": rec.Run,
	})
}

// handleListRuns handles GET /v1/runs
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > 1000 {
				limit = 1000
			}
		}
	}

	recs := s.store.List(limit)
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Run.CreatedAtUnixMs > recs[j].Run.CreatedAtUnixMs
	})

	runs := make([]any, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": rec.Run,
	})
}

// handleStartRun handles POST /v1/runs/{id}:start
func (s *HTTPServer) handleStartRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Start(runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRunIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrRunTerminal):
			s.writeError(w, http.StatusConflict, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run started (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRunIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleGetScenarios handles GET /v1/runs/{id}/scenarios
func (s *HTTPServer) handleGetScenarios(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	if rec.Scenarios == nil {
		s.writeError(w, http.StatusPreconditionFailed, "scenarios not available")
		return
	}

	scenarios := rec.Scenarios
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed < len(scenarios) {
			scenarios = scenarios[:parsed]
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":    runID,
		"backend":   rec.Stats.Backend,
		"count":     len(rec.Scenarios),
		"scenarios": scenarios,
	})
}

// handleSelectScenarios handles POST /v1/runs/{id}/select
func (s *HTTPServer) handleSelectScenarios(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	if rec.Scenarios == nil {
		s.writeError(w, http.StatusPreconditionFailed, "scenarios not available")
		return
	}

	var criteria config.SelectionCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	selected, err := s.Executor.Engine().SelectOptimal(rec.Scenarios, &criteria)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidParameters) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("scenarios selected (HTTP)",
		"run_id", runID,
		"criteria", criteria.Criteria,
		"selected", len(selected))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":   runID,
		"criteria": criteria.Criteria,
		"count":    len(selected),
		"selected": selected,
	})
}

// handleGetPerf handles GET /v1/runs/{id}/perf
func (s *HTTPServer) handleGetPerf(w http.ResponseWriter, _ *http.Request, runID string) {
	if _, ok := s.store.Get(runID); !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	monitor := s.Executor.Monitor()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":          runID,
		"metrics":         monitor.Metrics(),
		"recommendations": monitor.ScalingRecommendations(),
	})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
