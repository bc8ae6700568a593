package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/config"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/logger"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

// ErrInvalidParameters marks malformed simulation parameters. It is one of
// the two hard-error conditions; everything else degrades to partial or
// lower-confidence results.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

// Options configure engine construction.
type Options struct {
	// Logger overrides the default logger.
	Logger *slog.Logger
	// ForceFallback skips accelerator detection entirely.
	ForceFallback bool
	// Workers overrides the detected parallelism. Zero means autodetect.
	Workers int
}

// SimulationStats describes how one ensemble was executed.
type SimulationStats struct {
	Backend        string `json:"backend"`
	Accelerated    bool   `json:"accelerated"`
	DroppedIndices uint64 `json:"dropped_indices"`
}

// MonteCarloEngine generates scenario ensembles. An engine instance owns its
// backend handle exclusively; concurrent Simulate calls on one instance are
// safe only because each dispatch owns its own buffers, but the handle must
// not be shared across engine instances.
type MonteCarloEngine struct {
	backend Backend // nil when running in fallback mode
	logger  *slog.Logger
}

// New constructs an engine, deciding the execution mode once at
// initialization. Accelerator absence is an expected, recoverable condition
// and selects fallback mode with an informational log. A genuine backend
// initialization fault is escalated instead of silently falling back, since
// it indicates an unstable environment rather than absent capability.
func New(opts Options) (*MonteCarloEngine, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Default
	}

	e := &MonteCarloEngine{logger: log}

	if opts.ForceFallback {
		log.Info("accelerated dispatch disabled, running in fallback mode")
		return e, nil
	}

	workers := opts.Workers
	if workers == 0 {
		detected, ok := detectWorkers()
		if !ok {
			log.Info("no usable parallelism detected, running in fallback mode")
			return e, nil
		}
		workers = detected
	}

	backend, err := newParallelBackend(workers)
	if err != nil {
		return nil, err
	}
	e.backend = backend
	log.Info("parallel backend initialized", "workers", workers)
	return e, nil
}

// Accelerated reports whether the engine dispatches to the parallel backend.
func (e *MonteCarloEngine) Accelerated() bool {
	return e.backend != nil
}

// BackendName returns the active backend name for logging and run metadata.
func (e *MonteCarloEngine) BackendName() string {
	if e.backend != nil {
		return e.backend.Name()
	}
	return "fallback"
}

// Simulate generates one scenario record per requested iteration.
func (e *MonteCarloEngine) Simulate(ctx context.Context, params *config.SimulationParameters) ([]models.ScenarioRecord, error) {
	records, _, err := e.SimulateWithStats(ctx, params)
	return records, err
}

// SimulateWithStats is Simulate plus execution diagnostics: which path ran
// and how many buffer positions the bounds checks dropped.
func (e *MonteCarloEngine) SimulateWithStats(ctx context.Context, params *config.SimulationParameters) ([]models.ScenarioRecord, SimulationStats, error) {
	if err := config.ValidateParameters(params); err != nil {
		return nil, SimulationStats{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	if e.backend == nil || params.ForceFallback() {
		records := e.simulateFallback(params)
		return records, SimulationStats{Backend: "fallback"}, nil
	}

	sub, err := e.backend.Dispatch(params)
	if err != nil {
		return nil, SimulationStats{}, err
	}

	// Total barrier: the decoder only ever observes a completely written
	// buffer.
	buf, err := sub.Wait(ctx)
	if err != nil {
		return nil, SimulationStats{}, err
	}

	layout := layoutFor(params.Iterations, params.Years, len(params.Variables))
	records, skipped := decodeBuffer(buf, layout)

	dropped := sub.DroppedWrites() + skipped
	if dropped > 0 {
		e.logger.Warn("buffer positions dropped by bounds checks",
			"dropped", dropped,
			"variables", len(params.Variables))
	}

	return records, SimulationStats{
		Backend:        e.backend.Name(),
		Accelerated:    true,
		DroppedIndices: dropped,
	}, nil
}

// simulateFallback runs the sequential aggregate generator on the calling
// goroutine. It has no suspension points and blocks for its full duration;
// callers needing responsiveness run it inside their own goroutine.
func (e *MonteCarloEngine) simulateFallback(params *config.SimulationParameters) []models.ScenarioRecord {
	records := make([]models.ScenarioRecord, 0, params.Iterations)
	for i := 0; i < int(params.Iterations); i++ {
		records = append(records, fallbackIteration(i, params.Seed))
	}
	return records
}

// SelectOptimal applies the bounded randomized selector to a scenario pool.
func (e *MonteCarloEngine) SelectOptimal(pool []models.ScenarioRecord, criteria *config.SelectionCriteria) ([]models.SelectedScenario, error) {
	if err := config.ValidateSelectionCriteria(criteria); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	return SelectOptimal(pool, criteria), nil
}
