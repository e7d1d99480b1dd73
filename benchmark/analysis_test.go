package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(scenario string, imagesPerSecond, peakHeapMB float64) RunResult {
	return RunResult{
		Scenario: scenario,
		Metrics: RunMetrics{
			ImagesPerSecond: imagesPerSecond,
			PeakHeapMB:      peakHeapMB,
		},
	}
}

func TestCompareRuns(t *testing.T) {
	baseline := []RunResult{
		run("alpha", 100, 10),
		run("beta", 200, 20),
		run("gone", 50, 5),
	}
	current := []RunResult{
		run("beta", 150, 26),
		run("alpha", 110, 9),
		run("new", 70, 7),
	}

	deltas := CompareRuns(baseline, current)
	require.Len(t, deltas, 2)

	assert.Equal(t, "alpha", deltas[0].Scenario)
	assert.InDelta(t, 100, deltas[0].BaselineImagesPerSecond, 1e-12)
	assert.InDelta(t, 110, deltas[0].CurrentImagesPerSecond, 1e-12)
	assert.InDelta(t, 0.10, deltas[0].ThroughputChange, 1e-9)
	assert.InDelta(t, -1, deltas[0].PeakHeapChangeMB, 1e-12)

	assert.Equal(t, "beta", deltas[1].Scenario)
	assert.InDelta(t, -0.25, deltas[1].ThroughputChange, 1e-9)
	assert.InDelta(t, 6, deltas[1].PeakHeapChangeMB, 1e-12)
}

func TestCompareRuns_ZeroBaselineThroughput(t *testing.T) {
	deltas := CompareRuns(
		[]RunResult{run("stall", 0, 1)},
		[]RunResult{run("stall", 80, 1)},
	)

	require.Len(t, deltas, 1)
	assert.Zero(t, deltas[0].ThroughputChange)
}

func TestCompareRuns_NoOverlap(t *testing.T) {
	deltas := CompareRuns(
		[]RunResult{run("only-before", 10, 1)},
		[]RunResult{run("only-after", 10, 1)},
	)
	assert.Empty(t, deltas)
}

func TestRegressions(t *testing.T) {
	deltas := []RunDelta{
		{Scenario: "faster", ThroughputChange: 0.2},
		{Scenario: "borderline", ThroughputChange: -0.1},
		{Scenario: "slower", ThroughputChange: -0.25},
	}

	flagged := Regressions(deltas, 0.1)
	require.Len(t, flagged, 1)
	assert.Equal(t, "slower", flagged[0].Scenario)

	// A drop equal to the threshold is not yet a regression.
	assert.Empty(t, Regressions([]RunDelta{{ThroughputChange: -0.1}}, 0.1))
}

func TestThroughputTrend(t *testing.T) {
	history := []RunResult{
		run("steady", 100, 1),
		run("other", 999, 1),
		run("steady", 110, 1),
		run("steady", 120, 1),
		run("other", 998, 1),
		run("steady", 130, 1),
	}

	trend, err := ThroughputTrend(history, "steady")
	require.NoError(t, err)

	assert.Equal(t, 4, trend.Runs)
	assert.InDelta(t, 10, trend.Slope, 1e-9)
	assert.InDelta(t, 100, trend.Intercept, 1e-9)
}

func TestThroughputTrend_DecayIsNegative(t *testing.T) {
	history := []RunResult{
		run("leak", 200, 1),
		run("leak", 180, 1),
		run("leak", 140, 1),
	}

	trend, err := ThroughputTrend(history, "leak")
	require.NoError(t, err)
	assert.Negative(t, trend.Slope)
}

func TestThroughputTrend_TooFewRuns(t *testing.T) {
	_, err := ThroughputTrend([]RunResult{run("once", 50, 1)}, "once")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want >= 2")
}
