package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/config"
)

// BackendError reports a genuine device-initialization or dispatch fault.
// Absence of an accelerator is not a BackendError; it degrades to fallback
// mode instead.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Backend dispatches the simulation kernel across independent lanes.
type Backend interface {
	// Name returns the backend type for logging.
	Name() string
	// Workers returns the degree of parallelism available to dispatches.
	Workers() int
	// Dispatch submits one ensemble without blocking. The returned submission
	// completes when every lane has written its output region.
	Dispatch(params *config.SimulationParameters) (*Submission, error)
}

// Submission is one in-flight dispatch. The fence channel is closed exactly
// once, after the last lane finishes, so a successful Wait always observes a
// fully written buffer.
type Submission struct {
	layout  BufferLayout
	buf     []float32
	dropped atomic.Uint64
	fence   chan struct{}
}

// Wait blocks until the completion fence signals and returns the output
// buffer. A context cancellation abandons the wait but does not stop in-flight
// lanes; interruptible dispatch is not part of this engine's contract.
func (s *Submission) Wait(ctx context.Context) ([]float32, error) {
	select {
	case <-s.fence:
		return s.buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DroppedWrites returns the number of kernel writes discarded by the bounds
// check. Non-zero means the variable count did not match the kernel's three
// channels and the run degraded rather than aborting.
func (s *Submission) DroppedWrites() uint64 {
	return s.dropped.Load()
}

// parallelBackend executes lanes on a bounded worker pool, grouped into
// fixed-size workgroups. Lanes share no mutable state and write disjoint
// buffer regions, so the pool needs no coordination beyond the completion
// fence.
type parallelBackend struct {
	workers int
}

// detectWorkers probes the host for usable parallelism. A single-processor
// host cannot service a data-parallel dispatch meaningfully and reports the
// accelerator as absent.
func detectWorkers() (int, bool) {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		return 0, false
	}
	return n, true
}

func newParallelBackend(workers int) (*parallelBackend, error) {
	if workers < 1 {
		return nil, &BackendError{Op: "init", Err: fmt.Errorf("invalid worker count %d", workers)}
	}
	return &parallelBackend{workers: workers}, nil
}

func (b *parallelBackend) Name() string { return "parallel" }

func (b *parallelBackend) Workers() int { return b.workers }

func (b *parallelBackend) Dispatch(params *config.SimulationParameters) (*Submission, error) {
	layout := layoutFor(params.Iterations, params.Years, len(params.Variables))

	sub := &Submission{
		layout: layout,
		buf:    make([]float32, layout.Len()),
		fence:  make(chan struct{}),
	}

	groupSize := params.WorkgroupSizeOrDefault()
	lanes := layout.Iterations
	groups := (lanes + groupSize - 1) / groupSize

	// One token per worker bounds concurrent workgroups.
	tokens := make(chan struct{}, b.workers)
	var wg sync.WaitGroup

	for g := 0; g < groups; g++ {
		first := g * groupSize
		last := first + groupSize
		if last > lanes {
			last = lanes
		}

		wg.Add(1)
		go func(first, last int) {
			defer wg.Done()
			tokens <- struct{}{}
			defer func() { <-tokens }()

			for lane := first; lane < last; lane++ {
				simulateLane(sub.buf, layout, lane, params.Seed, &sub.dropped)
			}
		}(first, last)
	}

	go func() {
		wg.Wait()
		close(sub.fence)
	}()

	return sub, nil
}
