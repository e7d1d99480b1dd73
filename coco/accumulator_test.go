package coco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-eval/boxes"
)

type testImage struct {
	gt  []boxes.Box
	det []boxes.Box
}

// testImages is a small mixed workload: perfect hits, misses, duplicates,
// class confusion and size variety.
func testImages() []testImage {
	return []testImage{
		{
			gt:  []boxes.Box{{X1: 0, Y1: 0, X2: 10, Y2: 10, Class: 1}},
			det: []boxes.Box{{X1: 0, Y1: 0, X2: 10, Y2: 10, Class: 1, Score: 0.9}},
		},
		{
			gt: []boxes.Box{
				{X1: 0, Y1: 0, X2: 50, Y2: 50, Class: 2},
				{X1: 100, Y1: 100, X2: 140, Y2: 140, Class: 1},
			},
			det: []boxes.Box{
				{X1: 2, Y1: 2, X2: 52, Y2: 52, Class: 2, Score: 0.8},
				{X1: 100, Y1: 100, X2: 140, Y2: 140, Class: 2, Score: 0.7},
				{X1: 200, Y1: 200, X2: 220, Y2: 220, Class: 1, Score: 0.6},
			},
		},
		{
			gt:  []boxes.Box{{X1: 5, Y1: 5, X2: 105, Y2: 105, Class: 1}},
			det: nil,
		},
		{
			gt: nil,
			det: []boxes.Box{
				{X1: 0, Y1: 0, X2: 30, Y2: 30, Class: 2, Score: 0.95},
				{X1: 0, Y1: 0, X2: 30, Y2: 30, Class: 2, Score: 0.94},
			},
		},
	}
}

func accumulate(t *testing.T, cfg Config, imgs []testImage) *Accumulator {
	t.Helper()
	acc, err := NewAccumulator(cfg)
	require.NoError(t, err)
	for _, img := range imgs {
		counts, err := Match(cfg, img.gt, img.det)
		require.NoError(t, err)
		require.NoError(t, acc.Update(counts))
	}
	return acc
}

func TestAccumulator_OrderIndependence(t *testing.T) {
	cfg := testConfig()
	imgs := testImages()

	forward := accumulate(t, cfg, imgs)

	reversed := make([]testImage, len(imgs))
	for i, img := range imgs {
		reversed[len(imgs)-1-i] = img
	}
	backward := accumulate(t, cfg, reversed)

	assert.Equal(t, forward.tp, backward.tp)
	assert.Equal(t, forward.fp, backward.fp)
	assert.Equal(t, forward.gt, backward.gt)
	assert.Equal(t, forward.Images(), backward.Images())
	assert.Equal(t, forward.Result().RecallMap(), backward.Result().RecallMap())
}

func TestAccumulator_MergeMatchesSequential(t *testing.T) {
	cfg := testConfig()
	imgs := testImages()

	sequential := accumulate(t, cfg, imgs)

	// Split the workload into two partial accumulators and merge.
	first := accumulate(t, cfg, imgs[:2])
	second := accumulate(t, cfg, imgs[2:])
	require.NoError(t, first.Merge(second))

	assert.Equal(t, sequential.tp, first.tp)
	assert.Equal(t, sequential.fp, first.fp)
	assert.Equal(t, sequential.gt, first.gt)
	assert.Equal(t, sequential.Images(), first.Images())
}

func TestAccumulator_UpdateDimensionMismatch(t *testing.T) {
	cfg := testConfig()
	acc, err := NewAccumulator(cfg)
	require.NoError(t, err)

	other := testConfig()
	other.IoUThresholds = []float32{0.5, 0.75}
	counts, err := Match(other, nil, nil)
	require.NoError(t, err)

	err = acc.Update(counts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")

	assert.Error(t, acc.Update(nil))
}

func TestAccumulator_MergeDimensionMismatch(t *testing.T) {
	cfg := testConfig()
	acc, err := NewAccumulator(cfg)
	require.NoError(t, err)

	other := testConfig()
	other.MaxDetections = []int{1, 10}
	otherAcc, err := NewAccumulator(other)
	require.NoError(t, err)

	err = acc.Merge(otherAcc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")

	assert.Error(t, acc.Merge(nil))
}

func TestAccumulator_Reset(t *testing.T) {
	cfg := testConfig()
	acc := accumulate(t, cfg, testImages())
	require.Positive(t, acc.Images())

	acc.Reset()

	assert.Equal(t, 0, acc.Images())
	for _, v := range acc.tp {
		assert.Zero(t, v)
	}
	for _, v := range acc.gt {
		assert.Zero(t, v)
	}

	// The accumulator stays usable after a reset.
	counts, err := Match(cfg, testImages()[0].gt, testImages()[0].det)
	require.NoError(t, err)
	require.NoError(t, acc.Update(counts))
	assert.Equal(t, 1, acc.Images())
}

func TestAccumulator_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Classes = nil

	_, err := NewAccumulator(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
