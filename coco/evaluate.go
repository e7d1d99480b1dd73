package coco

import (
	"sync"

	"github.com/nvr-ai/go-eval/boxes"
)

// ImagePair couples one image's ground-truth annotations with the detections
// a model produced for it.
type ImagePair struct {
	GroundTruth []boxes.Box `json:"ground_truth" yaml:"ground_truth"`
	Detections  []boxes.Box `json:"detections" yaml:"detections"`
}

// Evaluator runs the full evaluation pipeline: per-image matching,
// accumulation across images, and reduction to recall/precision on demand.
//
// ProcessImage and EvaluateBatch must not be called concurrently with each
// other; EvaluateBatch handles its own internal parallelism.
type Evaluator struct {
	cfg      Config
	classIdx map[int]int
	acc      *Accumulator
}

// NewEvaluator validates the configuration and returns an evaluator with an
// empty accumulator.
//
// Arguments:
// - cfg: Evaluation configuration (thresholds, area ranges, cutoffs, classes).
//
// Returns:
// - The ready evaluator.
// - error if the configuration is invalid.
//
// @example
//
//	eval, err := coco.NewEvaluator(coco.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eval.ProcessImage(groundTruth, detections)
//	result := eval.Result()
func NewEvaluator(cfg Config) (*Evaluator, error) {
	acc, err := NewAccumulator(cfg)
	if err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg, classIdx: cfg.classIndex(), acc: acc}, nil
}

// Config returns the configuration the evaluator was built with.
func (e *Evaluator) Config() Config { return e.cfg }

// Images returns how many images have been folded in so far.
func (e *Evaluator) Images() int { return e.acc.Images() }

// ProcessImage matches a single image and folds its counts into the running
// totals.
func (e *Evaluator) ProcessImage(groundTruth, detections []boxes.Box) {
	e.acc.fold(matchImage(e.cfg, e.classIdx, groundTruth, detections))
}

// EvaluateBatch matches a batch of images with at most maxConcurrency images
// in flight at once, then folds the per-image counts in image order. The fold
// order is fixed so repeated runs over the same batch stay bit-identical,
// though accumulation itself is order-independent.
//
// maxConcurrency <= 0 runs the batch sequentially.
func (e *Evaluator) EvaluateBatch(images []ImagePair, maxConcurrency int) {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	partials := make([]*ImageCounts, len(images))

	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, img := range images {
		wg.Add(1)
		go func(idx int, pair ImagePair) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			partials[idx] = matchImage(e.cfg, e.classIdx, pair.GroundTruth, pair.Detections)
		}(i, img)
	}

	wg.Wait()

	for _, counts := range partials {
		e.acc.fold(counts)
	}
}

// Result reduces the current totals. See Accumulator.Result.
func (e *Evaluator) Result() Result { return e.acc.Result() }

// Reset discards all accumulated counts, keeping the configuration.
func (e *Evaluator) Reset() { e.acc.Reset() }
