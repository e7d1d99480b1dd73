package benchmark

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nvr-ai/go-eval/coco"
	"github.com/nvr-ai/go-eval/profiler"
)

// evalBatchSize is how many images each timed batch call gets. Small enough
// that a run yields a usable latency distribution, large enough that
// per-call overhead stays negligible.
const evalBatchSize = 32

// Suite runs scenarios and collects their results. Safe for concurrent use.
type Suite struct {
	mu      sync.RWMutex
	results []RunResult
}

// NewSuite creates an empty benchmark suite.
func NewSuite() *Suite {
	return &Suite{}
}

// Run generates a scenario's workload and evaluates it once under the given
// protocol, profiling as it goes. The pass is split into batches of 32
// images; each batch is one timed call. A warmup batch runs first and is
// discarded.
//
// Arguments:
//   - scenario: The workload to generate.
//   - cfg: The evaluation protocol. Its class list should cover the
//     scenario's class IDs, otherwise most boxes are skipped as unknown.
//   - concurrency: Worker count for each batch call.
//
// Returns:
//   - *RunResult: Metrics and evaluation outcome for the run.
//   - error: The error if the scenario or protocol is invalid.
func (bs *Suite) Run(scenario Scenario, cfg coco.Config, concurrency int) (*RunResult, error) {
	pairs, err := Generate(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to generate scenario %s: %w", scenario.Name, err)
	}

	eval, err := coco.NewEvaluator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluator for scenario %s: %w", scenario.Name, err)
	}

	// Warmup on the first batch, then reset so the measured pass starts
	// from empty totals.
	warm := pairs
	if len(warm) > evalBatchSize {
		warm = warm[:evalBatchSize]
	}
	eval.EvaluateBatch(warm, concurrency)
	eval.Reset()

	prof := profiler.New(profiler.Options{SampleInterval: 10 * time.Millisecond})
	prof.Start()

	startTime := time.Now()
	for lo := 0; lo < len(pairs); lo += evalBatchSize {
		hi := lo + evalBatchSize
		if hi > len(pairs) {
			hi = len(pairs)
		}
		done := prof.StartOperation("evaluate_batch")
		eval.EvaluateBatch(pairs[lo:hi], concurrency)
		done()
	}
	elapsed := time.Since(startTime)
	summary := prof.Stop()
	batches := prof.Tracker("evaluate_batch")

	metrics := RunMetrics{
		Duration:         elapsed,
		Images:           len(pairs),
		AvgLatencyMicros: float64(batches.Average().Nanoseconds()) / 1e3,
		P95LatencyMicros: float64(batches.Percentile(0.95).Nanoseconds()) / 1e3,
		PeakHeapMB:       summary.PeakHeapMB,
		NumGC:            summary.GCCycles,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		metrics.ImagesPerSecond = float64(len(pairs)) / secs
	}

	outcome := eval.Result()
	merged := outcome.RecallMap()
	for k, v := range outcome.PrecisionMap() {
		merged[k] = v
	}

	result := RunResult{
		Scenario: scenario.Name,
		Metrics:  metrics,
		Result:   merged,
	}

	bs.mu.Lock()
	bs.results = append(bs.results, result)
	bs.mu.Unlock()

	return &result, nil
}

// RunSet runs every scenario in a set in order, stopping at the first failure.
func (bs *Suite) RunSet(set *ScenarioSet, cfg coco.Config, concurrency int) ([]RunResult, error) {
	if set == nil || len(set.Scenarios) == 0 {
		return nil, errors.New("scenario set is empty")
	}

	results := make([]RunResult, 0, len(set.Scenarios))
	for _, scenario := range set.Scenarios {
		result, err := bs.Run(scenario, cfg, concurrency)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// Results returns a copy of every result collected so far.
func (bs *Suite) Results() []RunResult {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	out := make([]RunResult, len(bs.results))
	copy(out, bs.results)
	return out
}

// SaveResults writes the collected results to a JSON file.
func (bs *Suite) SaveResults(filename string) error {
	return SaveResults(bs.Results(), filename)
}
