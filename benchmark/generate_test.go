package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-eval/coco"
)

func TestGenerate_Deterministic(t *testing.T) {
	scenario := NewScenarioBuilder("repeatable").
		WithImages(20).
		WithSeed(7).
		MustBuild()

	first, err := Generate(scenario)
	require.NoError(t, err)
	second, err := Generate(scenario)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_SeedChangesWorkload(t *testing.T) {
	a := NewScenarioBuilder("seeded").WithSeed(1).MustBuild()
	b := NewScenarioBuilder("seeded").WithSeed(2).MustBuild()

	pairsA, err := Generate(a)
	require.NoError(t, err)
	pairsB, err := Generate(b)
	require.NoError(t, err)

	assert.NotEqual(t, pairsA, pairsB)
}

func TestGenerate_ShapesAndBounds(t *testing.T) {
	scenario := NewScenarioBuilder("bounds").
		WithImages(30).
		WithMaxBoxes(5).
		WithClasses(3).
		WithDetections(7).
		WithScoreJitter(0.2).
		WithSeed(42).
		MustBuild()

	pairs, err := Generate(scenario)
	require.NoError(t, err)
	require.Len(t, pairs, 30)

	for _, pair := range pairs {
		require.NotEmpty(t, pair.GroundTruth)
		assert.LessOrEqual(t, len(pair.GroundTruth), 5)
		require.Len(t, pair.Detections, 7)

		for _, b := range pair.GroundTruth {
			assert.GreaterOrEqual(t, b.X1, float32(0))
			assert.GreaterOrEqual(t, b.Y1, float32(0))
			assert.LessOrEqual(t, b.X2, float32(canvasSize))
			assert.LessOrEqual(t, b.Y2, float32(canvasSize))
			assert.Greater(t, b.X2, b.X1)
			assert.Greater(t, b.Y2, b.Y1)
			assert.GreaterOrEqual(t, b.Class, 1)
			assert.LessOrEqual(t, b.Class, 3)
			assert.Zero(t, b.Score)
		}

		for j, d := range pair.Detections {
			if j < len(pair.GroundTruth) {
				// Copies keep the ground-truth geometry and score near 1.
				gt := pair.GroundTruth[j]
				assert.Equal(t, gt.X1, d.X1)
				assert.Equal(t, gt.Y2, d.Y2)
				assert.Equal(t, gt.Class, d.Class)
				assert.Greater(t, d.Score, float32(0.8))
				assert.LessOrEqual(t, d.Score, float32(1))
			} else {
				assert.Less(t, d.Score, float32(0.5))
				assert.GreaterOrEqual(t, d.Score, float32(0))
			}
		}
	}
}

// With no jitter and at least as many detections as boxes, every ground
// truth gets an exact top-scored copy, so recall must come out at 1.
func TestGenerate_PerfectDetectorHitsFullRecall(t *testing.T) {
	scenario := NewScenarioBuilder("perfect").
		WithImages(25).
		WithMaxBoxes(6).
		WithClasses(4).
		WithDetections(6).
		WithScoreJitter(0).
		WithSeed(3).
		MustBuild()

	pairs, err := Generate(scenario)
	require.NoError(t, err)

	eval, err := coco.NewEvaluator(coco.Config{
		IoUThresholds: []float32{0.5},
		AreaRanges:    []coco.AreaRange{{Label: "all", Min: 0, Max: 1e10}},
		MaxDetections: []int{100},
		Classes:       []int{1, 2, 3, 4},
	})
	require.NoError(t, err)

	eval.EvaluateBatch(pairs, 4)

	recalls := eval.Result().RecallMap()
	require.NotEmpty(t, recalls)
	for key, recall := range recalls {
		assert.InDelta(t, 1.0, recall, 1e-9, key)
	}
}

func TestGenerate_NoDetectionsZeroRecall(t *testing.T) {
	scenario := NewScenarioBuilder("silent").
		WithImages(10).
		WithClasses(2).
		WithDetections(0).
		MustBuild()

	pairs, err := Generate(scenario)
	require.NoError(t, err)
	for _, pair := range pairs {
		assert.Empty(t, pair.Detections)
	}

	eval, err := coco.NewEvaluator(coco.Config{
		IoUThresholds: []float32{0.5},
		AreaRanges:    []coco.AreaRange{{Label: "all", Min: 0, Max: 1e10}},
		MaxDetections: []int{100},
		Classes:       []int{1, 2},
	})
	require.NoError(t, err)

	eval.EvaluateBatch(pairs, 1)

	recalls := eval.Result().RecallMap()
	require.NotEmpty(t, recalls)
	for key, recall := range recalls {
		assert.Zero(t, recall, key)
	}
}

func TestGenerate_InvalidScenario(t *testing.T) {
	_, err := Generate(Scenario{Name: "halfbaked", Images: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 images")
}
