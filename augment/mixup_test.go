package augment

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMixUp_Validation(t *testing.T) {
	tests := []struct {
		name           string
		rate           float32
		alpha          float64
		labelSmoothing float32
		wantErr        string
	}{
		{"rate below zero", -0.1, 0.2, 0, "rate"},
		{"rate above one", 1.1, 0.2, 0, "rate"},
		{"zero alpha", 0.5, 0, 0, "alpha"},
		{"smoothing at one", 0.5, 0.2, 1, "label smoothing"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMixUp(tc.rate, tc.alpha, tc.labelSmoothing)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	m, err := NewMixUp(1, 0.2, 0.1)
	require.NoError(t, err)
	assert.Equal(t, float32(1), m.Rate)
}

func TestMixUp_GateOffStillSmooths(t *testing.T) {
	m, err := NewMixUp(0.5, 0.2, 0.2)
	require.NoError(t, err)

	// 0.9 misses the 0.5 rate, so the whole batch stays unmixed.
	src := &scriptedSource{floats: []float32{0.9}}
	plan, err := m.Sample(src, 2)
	require.NoError(t, err)
	assert.False(t, plan.Augment)
	assert.Nil(t, plan.Permutation)
	assert.Nil(t, plan.Lambdas)

	labels := [][]float32{{1, 0}, {0, 1}}
	mixed, err := m.MixLabels(labels, plan)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float32{0.9, 0.1}, mixed[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0.1, 0.9}, mixed[1], 1e-6)
}

func TestMixUp_GateOnMixesWithPartner(t *testing.T) {
	m, err := NewMixUp(0.5, 0.2, 0)
	require.NoError(t, err)

	src := &scriptedSource{
		floats: []float32{0.1},
		perm:   []int{1, 0},
		gammas: []float64{3, 1, 1, 3}, // lambdas 0.75 and 0.25
	}
	plan, err := m.Sample(src, 2)
	require.NoError(t, err)
	require.True(t, plan.Augment)
	assert.Equal(t, []int{1, 0}, plan.Permutation)
	assert.InDeltaSlice(t, []float32{0.75, 0.25}, plan.Lambdas, 1e-6)

	labels := [][]float32{{1, 0}, {0, 1}}
	mixed, err := m.MixLabels(labels, plan)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float32{0.75, 0.25}, mixed[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0.75, 0.25}, mixed[1], 1e-6)
}

func TestMixUp_PartnerLabelsStayUnsmoothed(t *testing.T) {
	m, err := NewMixUp(1, 0.2, 0.2)
	require.NoError(t, err)

	// Lambda 0 for both samples: each output row is exactly the partner's
	// raw row, not its smoothed version.
	src := &scriptedSource{
		floats: []float32{0},
		perm:   []int{1, 0},
		gammas: []float64{0, 1, 0, 1},
	}
	plan, err := m.Sample(src, 2)
	require.NoError(t, err)
	require.True(t, plan.Augment)

	labels := [][]float32{{1, 0}, {0, 1}}
	mixed, err := m.MixLabels(labels, plan)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float32{0, 1}, mixed[0], 1e-6)
	assert.InDeltaSlice(t, []float32{1, 0}, mixed[1], 1e-6)
}

func TestMixUp_LambdasInUnitInterval(t *testing.T) {
	m, err := NewMixUp(1, 0.2, 0)
	require.NoError(t, err)

	plan, err := m.Sample(NewSource(99), 256)
	require.NoError(t, err)
	require.True(t, plan.Augment)
	require.Len(t, plan.Lambdas, 256)

	sorted := append([]int(nil), plan.Permutation...)
	sort.Ints(sorted)
	for i, v := range sorted {
		require.Equal(t, i, v)
	}
	for _, l := range plan.Lambdas {
		assert.GreaterOrEqual(t, l, float32(0))
		assert.LessOrEqual(t, l, float32(1))
	}
}

func TestMixUp_SingleSampleSelfMix(t *testing.T) {
	m, err := NewMixUp(1, 0.2, 0)
	require.NoError(t, err)

	plan, err := m.Sample(NewSource(5), 1)
	require.NoError(t, err)
	require.True(t, plan.Augment)
	assert.Equal(t, []int{0}, plan.Permutation)

	mixed, err := m.MixLabels([][]float32{{0, 1, 0}}, plan)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, mixed[0], 1e-6)
}

func TestMixUp_SampleRejectsEmptyBatch(t *testing.T) {
	m, err := NewMixUp(1, 0.2, 0)
	require.NoError(t, err)

	_, err = m.Sample(NewSource(1), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size")
}

func TestMixLabels_Validation(t *testing.T) {
	m, err := NewMixUp(1, 0.2, 0)
	require.NoError(t, err)

	_, err = m.MixLabels(nil, &MixUpPlan{})
	require.Error(t, err)

	_, err = m.MixLabels([][]float32{{1, 0}}, nil)
	require.Error(t, err)

	_, err = m.MixLabels([][]float32{{1, 0}, {1}}, &MixUpPlan{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label row 1 has 1 classes, want 2")

	short := &MixUpPlan{Augment: true, Permutation: []int{0}, Lambdas: []float32{0.5}}
	_, err = m.MixLabels([][]float32{{1, 0}, {0, 1}}, short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan covers 1 samples")

	oob := &MixUpPlan{Augment: true, Permutation: []int{0, 5}, Lambdas: []float32{0.5, 0.5}}
	_, err = m.MixLabels([][]float32{{1, 0}, {0, 1}}, oob)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
