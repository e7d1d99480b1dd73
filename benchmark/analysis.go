package benchmark

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RunDelta is the per-scenario comparison between two result sets.
type RunDelta struct {
	Scenario                string  `json:"scenario"`
	BaselineImagesPerSecond float64 `json:"baseline_images_per_second"`
	CurrentImagesPerSecond  float64 `json:"current_images_per_second"`
	// ThroughputChange is the relative change, negative when the current
	// run is slower. Zero when the baseline throughput is zero.
	ThroughputChange float64 `json:"throughput_change"`
	PeakHeapChangeMB float64 `json:"peak_heap_change_mb"`
}

// CompareRuns matches baseline and current results by scenario name and
// reports the per-scenario performance deltas, sorted by scenario name.
// Scenarios present in only one of the two sets are skipped.
func CompareRuns(baseline, current []RunResult) []RunDelta {
	base := make(map[string]RunResult, len(baseline))
	for _, r := range baseline {
		base[r.Scenario] = r
	}

	deltas := make([]RunDelta, 0, len(current))
	for _, cur := range current {
		prev, ok := base[cur.Scenario]
		if !ok {
			continue
		}
		delta := RunDelta{
			Scenario:                cur.Scenario,
			BaselineImagesPerSecond: prev.Metrics.ImagesPerSecond,
			CurrentImagesPerSecond:  cur.Metrics.ImagesPerSecond,
			PeakHeapChangeMB:        cur.Metrics.PeakHeapMB - prev.Metrics.PeakHeapMB,
		}
		if prev.Metrics.ImagesPerSecond > 0 {
			delta.ThroughputChange = (cur.Metrics.ImagesPerSecond - prev.Metrics.ImagesPerSecond) /
				prev.Metrics.ImagesPerSecond
		}
		deltas = append(deltas, delta)
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Scenario < deltas[j].Scenario })
	return deltas
}

// Regressions filters deltas down to scenarios whose throughput dropped by
// more than the threshold fraction (0.1 means more than 10% slower).
func Regressions(deltas []RunDelta, threshold float64) []RunDelta {
	out := make([]RunDelta, 0)
	for _, d := range deltas {
		if d.ThroughputChange < -threshold {
			out = append(out, d)
		}
	}
	return out
}

// Trend is the least-squares throughput line over a run history.
type Trend struct {
	// Slope is images/sec gained per run, negative when throughput decays.
	Slope float64 `json:"slope"`
	// Intercept is the fitted throughput of the first run.
	Intercept float64 `json:"intercept"`
	Runs      int     `json:"runs"`
}

// ThroughputTrend fits a line to one scenario's throughput across a result
// history, oldest first. A sustained downward slope across nightly runs
// flags a creeping regression before any single diff trips a threshold.
func ThroughputTrend(history []RunResult, scenario string) (Trend, error) {
	xs := make([]float64, 0, len(history))
	ys := make([]float64, 0, len(history))
	for _, r := range history {
		if r.Scenario != scenario {
			continue
		}
		xs = append(xs, float64(len(xs)))
		ys = append(ys, r.Metrics.ImagesPerSecond)
	}
	if len(xs) < 2 {
		return Trend{}, fmt.Errorf("scenario %s has %d runs, want >= 2 for a trend",
			scenario, len(xs))
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return Trend{Slope: slope, Intercept: intercept, Runs: len(xs)}, nil
}
