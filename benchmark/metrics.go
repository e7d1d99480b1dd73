// Package benchmark - Synthetic workloads and measurement for the detection
// evaluator.
package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RunMetrics captures the performance side of one scenario run.
type RunMetrics struct {
	// Duration is the wall time of the measured evaluation pass.
	Duration        time.Duration `json:"duration"`
	Images          int           `json:"images"`
	ImagesPerSecond float64       `json:"images_per_second"`
	// AvgLatencyMicros and P95LatencyMicros describe the individual batch
	// evaluation calls inside the pass.
	AvgLatencyMicros float64 `json:"avg_latency_micros"`
	P95LatencyMicros float64 `json:"p95_latency_micros"`
	PeakHeapMB       float64 `json:"peak_heap_mb"`
	NumGC            uint32  `json:"num_gc"`
}

// RunResult pairs a scenario's performance metrics with its evaluation
// outcome, so a benchmark diff can catch a speedup that broke matching.
type RunResult struct {
	Scenario string     `json:"scenario"`
	Metrics  RunMetrics `json:"metrics"`
	// Result holds the reduced recall and precision values merged into one
	// map, keyed the way the accumulator reports them.
	Result map[string]float64 `json:"result"`
}

// SaveResults writes run results to a JSON file
func SaveResults(results []RunResult, filename string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return nil
}

// LoadResults reads run results from a JSON file
func LoadResults(filename string) ([]RunResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var results []RunResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	return results, nil
}
