package benchmark

import (
	"github.com/nvr-ai/go-eval/augment"
	"github.com/nvr-ai/go-eval/boxes"
	"github.com/nvr-ai/go-eval/coco"
)

// Generated boxes live on a fixed square canvas so area-range bucketing is
// stable across scenarios.
const canvasSize = 1024

// Generate produces the image pairs for a scenario. Output is a pure
// function of the scenario: the same seed yields the same boxes.
//
// Ground truth is uniform over the canvas. The first detections of an image
// copy its ground-truth boxes with score 1-ScoreJitter*u, so with enough
// detections per image recall sits at 1; the remaining detections are
// spurious low-score boxes that mostly add false positives. With zero
// detections per image recall is exactly 0. Those two extremes give a quick
// correctness check on any run.
func Generate(s Scenario) ([]coco.ImagePair, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	src := augment.NewSource(s.Seed)
	pairs := make([]coco.ImagePair, s.Images)
	for i := range pairs {
		// Uniform draws below MaxBoxes, but float rounding can land exactly
		// on the bound.
		count := 1 + int(src.Uniform(0, float32(s.MaxBoxes)))
		if count > s.MaxBoxes {
			count = s.MaxBoxes
		}
		gt := make([]boxes.Box, count)
		for j := range gt {
			gt[j] = randomBox(src, s.Classes)
		}

		det := make([]boxes.Box, s.DetectionsPerImage)
		for j := range det {
			if j < len(gt) {
				det[j] = gt[j]
				det[j].Score = 1 - s.ScoreJitter*src.Float32()
			} else {
				det[j] = randomBox(src, s.Classes)
				det[j].Score = 0.5 * src.Float32()
			}
		}
		pairs[i] = coco.ImagePair{GroundTruth: gt, Detections: det}
	}
	return pairs, nil
}

// randomBox draws a box uniform over the canvas with side lengths in
// [8, 96), which spans the small and medium COCO area buckets. Category IDs
// are 1-based so generated boxes land inside the default class universe.
func randomBox(src augment.Source, classes int) boxes.Box {
	w := src.Uniform(8, 96)
	h := src.Uniform(8, 96)
	x1 := src.Uniform(0, canvasSize-w)
	y1 := src.Uniform(0, canvasSize-h)
	class := 1 + int(src.Uniform(0, float32(classes)))
	if class > classes {
		class = classes
	}
	return boxes.Box{X1: x1, Y1: y1, X2: x1 + w, Y2: y1 + h, Class: class}
}
