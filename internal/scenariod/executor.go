package scenariod

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/scenario-engine/internal/engine"
	"github.com/GoSim-25-26J-441/scenario-engine/internal/perf"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/logger"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
)

// RunExecutor manages asynchronous run execution and per-run cancellation.
// Cancellation here abandons the wait on the engine, it does not interrupt a
// dispatched ensemble; that is a serving-level capability layered on top of
// the non-interruptible core.
type RunExecutor struct {
	store   *RunStore
	engine  *engine.MonteCarloEngine
	monitor *perf.Monitor

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	// onTransition, when set, observes every status change (broadcast,
	// webhook delivery). Called outside the store lock.
	onTransition func(*RunRecord)
}

func NewRunExecutor(store *RunStore, eng *engine.MonteCarloEngine, monitor *perf.Monitor) *RunExecutor {
	return &RunExecutor{
		store:   store,
		engine:  eng,
		monitor: monitor,
		cancels: make(map[string]context.CancelFunc),
	}
}

// SetOnTransition registers the status-change observer.
func (e *RunExecutor) SetOnTransition(fn func(*RunRecord)) {
	e.onTransition = fn
}

// Monitor exposes the executor's performance monitor for read-only queries.
func (e *RunExecutor) Monitor() *perf.Monitor {
	return e.monitor
}

// Engine exposes the underlying engine (selection endpoint, metadata).
func (e *RunExecutor) Engine() *engine.MonteCarloEngine {
	return e.engine
}

func (e *RunExecutor) notify(rec *RunRecord) {
	if e.onTransition != nil && rec != nil {
		e.onTransition(rec)
	}
}

// Start begins executing a run asynchronously.
// Returns the updated run state (running) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	switch {
	case rec.Run.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	e.notify(updated)
	go e.runSimulation(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a running run and marks it cancelled.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()

	if ok {
		cancel()
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		if _, exists := e.store.Get(runID); !exists {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	e.notify(updated)
	return updated, nil
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runSimulation(ctx context.Context, runID string) {
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}

	timing := e.monitor.StartTiming("simulate")
	records, stats, err := e.engine.SimulateWithStats(ctx, rec.Params)
	durationMs := timing.End()

	if err != nil {
		if ctx.Err() != nil {
			// Stop already transitioned the run to cancelled.
			logger.Info("run cancelled", "run_id", runID)
			return
		}
		logger.Error("simulation failed", "run_id", runID, "error", err)
		failed, setErr := e.store.SetStatus(runID, models.RunStatusFailed, err.Error())
		if setErr != nil {
			logger.Error("failed to set failed status", "run_id", runID, "error", setErr)
			return
		}
		e.notify(failed)
		return
	}

	if current, ok := e.store.Get(runID); ok && current.Run.Status == models.RunStatusCancelled {
		// Stop won the race; discard the late result.
		logger.Info("run cancelled before completion", "run_id", runID)
		return
	}

	if err := e.store.SetResults(runID, records, stats); err != nil {
		logger.Error("failed to store results", "run_id", runID, "error", err)
		return
	}

	completed, err := e.store.SetStatus(runID, models.RunStatusCompleted, "")
	if err != nil {
		logger.Error("failed to set completed status", "run_id", runID, "error", err)
		return
	}

	logger.Info("run completed",
		"run_id", runID,
		"backend", stats.Backend,
		"scenarios", len(records),
		"duration_ms", durationMs,
		"dropped_indices", stats.DroppedIndices)
	e.notify(completed)
}
