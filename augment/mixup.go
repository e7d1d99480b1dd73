package augment

import "github.com/pkg/errors"

// MixUp samples batch-level mixing plans following the mixup scheme
// (https://arxiv.org/abs/1710.09412).
//
// Rate is the fraction of batches to augment; a single gate draw decides for
// the whole batch. Alpha is the rate parameter of the gamma draws behind the
// per-sample mixing weights. LabelSmoothing is applied to the primary labels
// whether or not the batch is augmented.
type MixUp struct {
	Rate           float32
	Alpha          float64
	LabelSmoothing float32
}

// NewMixUp validates the mixup parameters.
//
// Arguments:
// - rate: Fraction of batches to augment, in [0, 1].
// - alpha: Gamma rate parameter behind the mixing weights, > 0. 0.2 is a
//   common choice for imagenet-scale classification.
// - labelSmoothing: Label smoothing coefficient, in [0, 1).
func NewMixUp(rate float32, alpha float64, labelSmoothing float32) (*MixUp, error) {
	if rate < 0 || rate > 1 {
		return nil, errors.Errorf("rate %v is outside [0, 1]", rate)
	}
	if alpha <= 0 {
		return nil, errors.Errorf("alpha %v is not positive", alpha)
	}
	if labelSmoothing < 0 || labelSmoothing >= 1 {
		return nil, errors.Errorf("label smoothing %v is outside [0, 1)", labelSmoothing)
	}
	return &MixUp{Rate: rate, Alpha: alpha, LabelSmoothing: labelSmoothing}, nil
}

// MixUpPlan is one sampled batch augmentation. When Augment is false the
// permutation and lambdas are nil and only label smoothing applies.
type MixUpPlan struct {
	Augment     bool
	Permutation []int
	Lambdas     []float32
}

// Sample draws a plan for a batch of batchSize samples. One uniform draw
// gates the whole batch; when it clears the rate, every sample gets a
// permuted partner and a mixing weight lambda = g1/(g1+g2) from two gamma
// draws.
//
// A batch of one sample is permitted but degenerate: the only possible
// partner is the sample itself.
func (m *MixUp) Sample(src Source, batchSize int) (*MixUpPlan, error) {
	if batchSize < 1 {
		return nil, errors.Errorf("batch size %d is not positive", batchSize)
	}

	if src.Float32() >= m.Rate {
		return &MixUpPlan{}, nil
	}

	plan := &MixUpPlan{
		Augment:     true,
		Permutation: src.Perm(batchSize),
		Lambdas:     make([]float32, batchSize),
	}
	for i := range plan.Lambdas {
		g1 := src.Gamma(1, m.Alpha)
		g2 := src.Gamma(1, m.Alpha)
		plan.Lambdas[i] = float32(g1 / (g1 + g2))
	}
	return plan, nil
}

// MixLabels applies a plan to one-hot or soft labels, one row per sample.
// The primary row is smoothed before mixing; the partner row is mixed in
// unsmoothed. With augmentation gated off the result is just the smoothed
// labels.
func (m *MixUp) MixLabels(labels [][]float32, plan *MixUpPlan) ([][]float32, error) {
	if plan == nil {
		return nil, errors.New("nil plan")
	}
	if len(labels) == 0 {
		return nil, errors.New("empty label batch")
	}
	classes := len(labels[0])
	if classes == 0 {
		return nil, errors.New("label rows have no classes")
	}
	for i, row := range labels {
		if len(row) != classes {
			return nil, errors.Errorf("label row %d has %d classes, want %d", i, len(row), classes)
		}
	}
	if plan.Augment {
		if len(plan.Permutation) != len(labels) || len(plan.Lambdas) != len(labels) {
			return nil, errors.Errorf("plan covers %d samples, labels have %d",
				len(plan.Permutation), len(labels))
		}
		for i, p := range plan.Permutation {
			if p < 0 || p >= len(labels) {
				return nil, errors.Errorf("permutation index %d out of range at sample %d", p, i)
			}
		}
	}

	off := m.LabelSmoothing / float32(classes)
	on := 1 - m.LabelSmoothing + off

	out := make([][]float32, len(labels))
	for i := range labels {
		row := make([]float32, classes)
		for j, y := range labels[i] {
			row[j] = on*y + (1-y)*off
		}
		if plan.Augment {
			lambda := plan.Lambdas[i]
			partner := labels[plan.Permutation[i]]
			for j := range row {
				row[j] = lambda*row[j] + (1-lambda)*partner[j]
			}
		}
		out[i] = row
	}
	return out, nil
}
