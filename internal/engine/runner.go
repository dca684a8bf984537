// Multi-repetition orchestration: a bounded worker pool runs independent
// repetitions over one shared topology, then reduces their series under the
// configured policy.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/talgya/funnelsim/internal/network"
	"github.com/talgya/funnelsim/internal/scenario"
)

// DefaultRepTimeout caps how long a single repetition may run.
const DefaultRepTimeout = 5 * time.Minute

// Runner executes a full scenario: topology once, then Reps repetitions.
// The zero value is usable; fields override defaults.
type Runner struct {
	Workers    int           // Concurrent repetitions; default GOMAXPROCS
	RepTimeout time.Duration // Per-repetition cap; default DefaultRepTimeout
	Policy     Policy        // Reduction policy; default DefaultPolicy
	Logger     *slog.Logger  // Default slog.Default()

	// Progress, when set, receives advisory completion fractions in [0, 1].
	// Calls are serialized but not synchronized with simulation state.
	Progress func(fraction float64)
}

// Run validates the scenario, builds the topology, and runs every
// repetition. Repetition i derives its seed as cfg.Seed + i, owns a private
// population and RNG stream, and shares only the immutable topology, so
// repetitions run concurrently without locks.
//
// A repetition failure or timeout is isolated: the remaining repetitions
// complete, and the failures come back joined in the error. When enough
// repetitions completed to apply the policy, the reduced result is returned
// alongside that error; the caller decides whether a partial run is usable.
func (r *Runner) Run(ctx context.Context, cfg scenario.Config) (*Result, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	timeout := r.RepTimeout
	if timeout <= 0 {
		timeout = DefaultRepTimeout
	}
	policy := r.Policy
	if policy == "" {
		policy = DefaultPolicy
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	topo, err := network.Generate(cfg.Network, cfg.Seed)
	if err != nil {
		return nil, err
	}
	logger.Debug("topology built",
		"kind", string(cfg.Network.Kind),
		"nodes", topo.NumNodes(),
		"edges", topo.NumEdges(),
		"elapsed", time.Since(start),
	)
	r.report(0.2)

	series := make([]repSeries, cfg.Reps)
	errs := make([]error, cfg.Reps)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex // Guards done and Progress calls
		done int
		sem  = make(chan struct{}, workers)
	)
	for rep := 0; rep < cfg.Reps; rep++ {
		wg.Add(1)
		go func(rep int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			repCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			s, err := runRepetition(repCtx, &cfg, topo, cfg.Seed+uint64(rep))
			if err != nil {
				errs[rep] = fmt.Errorf("repetition %d: %w", rep, err)
				logger.Warn("repetition failed", "rep", rep, "error", err)
			} else {
				series[rep] = s
			}

			mu.Lock()
			done++
			frac := 0.2 + 0.7*float64(done)/float64(cfg.Reps)
			mu.Unlock()
			r.report(frac)
		}(rep)
	}
	wg.Wait()

	var completed []repSeries
	for _, s := range series {
		if s != nil {
			completed = append(completed, s)
		}
	}
	runErr := errors.Join(errs...)

	if len(completed) == 0 {
		return nil, fmt.Errorf("all %d repetitions failed: %w", cfg.Reps, runErr)
	}
	if policy == PolicyFirst && series[0] == nil {
		return nil, fmt.Errorf("policy first needs repetition 0: %w", runErr)
	}

	res, err := reduce(completed, policy)
	if err != nil {
		return nil, errors.Join(err, runErr)
	}
	r.report(1.0)
	logger.Info("run complete",
		"reps", len(completed),
		"of", cfg.Reps,
		"steps", cfg.Steps,
		"policy", string(policy),
		"elapsed", time.Since(start),
	)
	return res, runErr
}

func (r *Runner) report(frac float64) {
	if r.Progress != nil {
		r.Progress(frac)
	}
}

// runRepetition runs one seeded repetition to completion, checking for
// cancellation between steps. The returned series has cfg.Steps+1 rows.
func runRepetition(ctx context.Context, cfg *scenario.Config, topo *network.Topology, seed uint64) (repSeries, error) {
	sim := New(cfg, topo, seed)
	col := NewCollector(cfg.Steps)
	col.Snapshot(sim.Population())

	for step := 0; step < cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled at step %d: %w", step, err)
		}
		sim.Step()
		col.Snapshot(sim.Population())
	}
	return col.series(), nil
}
