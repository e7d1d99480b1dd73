package coco

import "github.com/pkg/errors"

// Accumulator maintains the running evaluation state across images: summed
// true/false positives per (threshold, class, area range, max detections)
// cell and ground-truth totals per (class, area range). State persists until
// an explicit Reset.
//
// Update is not safe for concurrent use. Parallel evaluation matches images
// concurrently and folds the per-image counts here sequentially; see
// Evaluator.EvaluateBatch. Folding is element-wise addition, so it is
// associative and commutative: image order never changes the totals.
type Accumulator struct {
	cfg      Config
	classIdx map[int]int
	d        dims

	tp     []uint64
	fp     []uint64
	gt     []uint64
	images int
}

// NewAccumulator builds an accumulator for the given evaluation dimensions.
// The config is validated and fixed for the accumulator's lifetime.
func NewAccumulator(cfg Config) (*Accumulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	d := dimsOf(cfg)
	return &Accumulator{
		cfg:      cfg,
		classIdx: cfg.classIndex(),
		d:        d,
		tp:       make([]uint64, d.cells()),
		fp:       make([]uint64, d.cells()),
		gt:       make([]uint64, d.gtCells()),
	}, nil
}

// Config returns the evaluation dimensions the accumulator was built with.
func (acc *Accumulator) Config() Config { return acc.cfg }

// Images returns how many images have been folded in since the last Reset.
func (acc *Accumulator) Images() int { return acc.images }

// Update folds one image's match counts into the running totals.
// Counts produced under a different configuration are rejected.
func (acc *Accumulator) Update(counts *ImageCounts) error {
	if counts == nil {
		return errors.New("nil image counts")
	}
	if counts.d != acc.d {
		return errors.Errorf("dimension mismatch: image counts have %+v, accumulator has %+v",
			counts.d, acc.d)
	}
	acc.fold(counts)
	return nil
}

// fold is Update without the dimension check, for in-package callers whose
// counts were produced under the accumulator's own config.
func (acc *Accumulator) fold(counts *ImageCounts) {
	for i, v := range counts.tp {
		acc.tp[i] += uint64(v)
	}
	for i, v := range counts.fp {
		acc.fp[i] += uint64(v)
	}
	for i, v := range counts.gt {
		acc.gt[i] += uint64(v)
	}
	acc.images++
}

// Merge adds another accumulator's totals into this one. Both must have been
// built from configs with identical dimensions. Merging partial accumulators
// produced from disjoint image subsets is equivalent to having processed all
// images on one accumulator, in any order.
func (acc *Accumulator) Merge(other *Accumulator) error {
	if other == nil {
		return errors.New("nil accumulator")
	}
	if other.d != acc.d {
		return errors.Errorf("dimension mismatch: other accumulator has %+v, this one has %+v",
			other.d, acc.d)
	}

	for i, v := range other.tp {
		acc.tp[i] += v
	}
	for i, v := range other.fp {
		acc.fp[i] += v
	}
	for i, v := range other.gt {
		acc.gt[i] += v
	}
	acc.images += other.images
	return nil
}

// Reset zeroes all running totals. The configuration is retained.
func (acc *Accumulator) Reset() {
	for i := range acc.tp {
		acc.tp[i] = 0
	}
	for i := range acc.fp {
		acc.fp[i] = 0
	}
	for i := range acc.gt {
		acc.gt[i] = 0
	}
	acc.images = 0
}
