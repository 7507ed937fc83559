package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"docbench/query"
)

// Runner drives the measured benchmark: per definition it executes the
// warm-up phase (timing discarded, errors swallowed), then the measured
// phase across a fixed worker pool, recording successful latencies into
// the definition's histogram and counting failures.
type Runner struct {
	Collaborator query.Collaborator
	Generator    *query.Generator
	Params       BenchParams
}

// RunAll benchmarks every definition and returns the run report.
// Definitions execute sequentially; iterations within one definition
// fan out across the worker pool. Cancelling ctx stops dispatching new
// iterations but lets in-flight calls finish under their own per-call
// timeout.
func (r *Runner) RunAll(ctx context.Context, defs []*query.QueryDefinition) Report {
	report := Report{RunID: uuid.NewString()}
	start := time.Now()
	for i, def := range defs {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(defs), def.Name)
		report.Stats = append(report.Stats, r.RunDefinition(ctx, def))
		if ctx.Err() != nil {
			logrus.Warn("run cancelled, remaining definitions skipped")
			break
		}
	}
	report.Duration = time.Since(start)
	return report
}

// RunDefinition benchmarks a single definition. A config-class failure
// (bad spec, unknown placeholder) aborts this definition before any
// iteration runs and is reported on the row; it never touches the rest
// of the run.
func (r *Runner) RunDefinition(ctx context.Context, def *query.QueryDefinition) QueryStats {
	if err := def.Validate(); err != nil {
		logrus.WithField("definition", def.Name).Errorf("definition rejected: %v", err)
		return QueryStats{Name: def.Name, ConfigErr: err.Error()}
	}

	// Warmup: untimed, all errors swallowed. A failed warm-up call must
	// not abort the run.
	fmt.Printf("  Warming up (%d queries)...\n", r.Params.Warmup)
	for i := 0; i < r.Params.Warmup; i++ {
		if _, err := def.Execute(ctx, r.Collaborator, r.Generator); err != nil {
			logrus.WithField("definition", def.Name).Debugf("warmup error swallowed: %v", err)
		}
	}

	fmt.Printf("  Running %d queries (%d concurrent)...\n", r.Params.Queries, r.Params.Concurrency)

	hist := NewLatencyHistogram(r.Params.Queries)
	var success, failures, empty, resultTotal atomic.Int64

	// First config-class error seen mid-run; it aborts dispatch.
	var fatalMu sync.Mutex
	var fatalErr error

	concurrency := r.Params.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// Dispatch is cancellable two ways: run-level ctx cancellation and a
	// config-class failure surfacing mid-run. In-flight calls finish
	// under their own per-call timeout either way.
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	jobs := make(chan struct{})
	go func() {
		defer close(jobs)
		for i := 0; i < r.Params.Queries; i++ {
			select {
			case jobs <- struct{}{}:
			case <-dispatchCtx.Done():
				return
			}
		}
	}()

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				res := r.iterate(ctx, def)
				switch res.Outcome {
				case OutcomeFailure:
					failures.Add(1)
					if query.IsConfig(res.Err) {
						fatalMu.Lock()
						if fatalErr == nil {
							fatalErr = res.Err
						}
						fatalMu.Unlock()
						stopDispatch()
						return
					}
					logrus.WithField("definition", def.Name).Debugf("iteration failed: %v", res.Err)
				case OutcomeEmpty:
					empty.Add(1)
					success.Add(1)
					hist.Record(res.Duration)
				default:
					success.Add(1)
					resultTotal.Add(int64(res.Results))
					hist.Record(res.Duration)
				}
			}
		}()
	}
	wg.Wait()
	wall := time.Since(start)

	stats := ComputeStats(def.Name, hist,
		int(success.Load()), int(failures.Load()), int(empty.Load()),
		int(resultTotal.Load()), wall)
	if fatalErr != nil {
		stats.ConfigErr = fatalErr.Error()
	}
	return stats
}

// iterate runs one measured iteration end-to-end: parameter generation,
// template resolution and chain execution, timed as a single sample.
func (r *Runner) iterate(ctx context.Context, def *query.QueryDefinition) IterationResult {
	start := time.Now()
	records, err := def.Execute(ctx, r.Collaborator, r.Generator)
	elapsed := time.Since(start)
	if err != nil {
		return IterationResult{Duration: elapsed, Outcome: OutcomeFailure, Err: err}
	}
	if len(records) == 0 {
		return IterationResult{Duration: elapsed, Outcome: OutcomeEmpty}
	}
	return IterationResult{Duration: elapsed, Results: len(records), Outcome: OutcomeSuccess}
}

// RunMultiple executes runFn N times, checks steady-state, and reports
// the median run per definition. runFn receives the run index.
func RunMultiple(runs int, runFn func(run int) Report) Report {
	if runs <= 1 {
		return runFn(0)
	}

	fmt.Printf("\n╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║  %d-RUN BENCHMARK                                          ║\n", runs)
	fmt.Printf("║  Methodology: median of %d runs, steady-state verified     ║\n", runs)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")

	allRuns := make([]Report, runs)
	for i := 0; i < runs; i++ {
		fmt.Printf("\n── Run %d/%d ──\n", i+1, runs)
		allRuns[i] = runFn(i)

		// Cooldown between runs (not after last)
		if i < runs-1 {
			fmt.Print("  Cooling down (3s)...")
			time.Sleep(3 * time.Second)
			fmt.Println(" done")
		}
	}

	merged := Report{RunID: allRuns[runs-1].RunID}
	for _, r := range allRuns {
		merged.Duration += r.Duration
	}

	// Median per definition across runs, with a steady-state check.
	for di := range allRuns[0].Stats {
		perDef := make([]QueryStats, 0, runs)
		for _, r := range allRuns {
			if di < len(r.Stats) {
				perDef = append(perDef, r.Stats[di])
			}
		}
		steady, maxDev := SteadyState(perDef, 0.05)
		if !steady {
			fmt.Printf("  ⚠ %s: QPS deviation %.1f%% > 5%% — median still reported\n",
				perDef[0].Name, maxDev*100)
		}
		merged.Stats = append(merged.Stats, MedianStats(perDef))
	}
	return merged
}
