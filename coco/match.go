package coco

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/boxes"
)

// dims captures the evaluation table dimensions in config order:
// IoU thresholds (T), classes (K), area ranges (A), max-detection values (M).
type dims struct {
	T, K, A, M int
}

func dimsOf(cfg Config) dims {
	return dims{
		T: len(cfg.IoUThresholds),
		K: len(cfg.Classes),
		A: len(cfg.AreaRanges),
		M: len(cfg.MaxDetections),
	}
}

// cell flattens a (threshold, class, area, maxdets) index into the tp/fp tables.
func (d dims) cell(t, k, a, m int) int { return ((t*d.K+k)*d.A+a)*d.M + m }

// gtCell flattens a (class, area) index into the ground-truth table.
func (d dims) gtCell(k, a int) int { return k*d.A + a }

func (d dims) cells() int   { return d.T * d.K * d.A * d.M }
func (d dims) gtCells() int { return d.K * d.A }

// ImageCounts is the match outcome for a single image: true/false positive
// counts per (threshold, class, area range, max detections) cell and ground
// truth totals per (class, area range). Counts are dense indexed tables, so
// folding them into running totals is plain element-wise addition.
type ImageCounts struct {
	d  dims
	tp []uint32
	fp []uint32
	gt []uint32
}

func newImageCounts(d dims) *ImageCounts {
	return &ImageCounts{
		d:  d,
		tp: make([]uint32, d.cells()),
		fp: make([]uint32, d.cells()),
		gt: make([]uint32, d.gtCells()),
	}
}

// TruePositives returns the matched-detection count for one cell. Indices are
// positions in the config's IoUThresholds/Classes/AreaRanges/MaxDetections.
func (c *ImageCounts) TruePositives(t, k, a, m int) uint32 { return c.tp[c.d.cell(t, k, a, m)] }

// FalsePositives returns the unmatched-detection count for one cell.
func (c *ImageCounts) FalsePositives(t, k, a, m int) uint32 { return c.fp[c.d.cell(t, k, a, m)] }

// GroundTruths returns the ground-truth count for a (class, area range) pair.
func (c *ImageCounts) GroundTruths(k, a int) uint32 { return c.gt[c.d.gtCell(k, a)] }

// Match runs the matching engine on a single image.
//
// For every (area range, max detections, IoU threshold) combination:
//
//  1. Ground truth and detections are filtered to the class universe and the
//     area range (half-open [Min, Max); malformed boxes count as area 0).
//  2. Detections are cut to the top max-detections by descending score, ties
//     keeping input order.
//  3. Detections greedily claim, in score order, the unmatched same-class
//     ground truth with the highest IoU at or above the threshold. A claimed
//     ground truth stays claimed for the rest of that combination.
//  4. A detection that claims a ground truth is a true positive, any other
//     considered detection a false positive. Every filtered ground truth
//     counts toward the recall denominator whether or not it was claimed.
//
// Arguments:
//   - cfg: The evaluation dimensions; validated before matching.
//   - groundTruth: The image's annotated boxes (Score ignored).
//   - detections: The image's predicted boxes with confidence scores.
//
// Returns:
//   - Per-cell counts for the image.
//   - error when the config is invalid.
func Match(cfg Config, groundTruth, detections []boxes.Box) (*ImageCounts, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return matchImage(cfg, cfg.classIndex(), groundTruth, detections), nil
}

// matchImage is the validated hot path; classIdx must be cfg.classIndex().
func matchImage(cfg Config, classIdx map[int]int, groundTruth, detections []boxes.Box) *ImageCounts {
	counts := newImageCounts(dimsOf(cfg))

	for a, areaRange := range cfg.AreaRanges {
		// Boxes with class IDs outside the universe are skipped entirely:
		// they can never match and would otherwise pollute the denominators.
		gtIdx := make([]int, 0, len(groundTruth))
		for i, b := range groundTruth {
			k, ok := classIdx[b.Class]
			if !ok || !areaRange.Contains(b.Area()) {
				continue
			}
			gtIdx = append(gtIdx, i)
			counts.gt[counts.d.gtCell(k, a)]++
		}

		detIdx := make([]int, 0, len(detections))
		for i, b := range detections {
			if _, ok := classIdx[b.Class]; !ok || !areaRange.Contains(b.Area()) {
				continue
			}
			detIdx = append(detIdx, i)
		}

		// Highest confidence first; stable so ties keep input order.
		sort.SliceStable(detIdx, func(i, j int) bool {
			return detections[detIdx[i]].Score > detections[detIdx[j]].Score
		})

		// IoU for every same-class detection/ground-truth pair, computed once
		// per area range and reused across every cutoff and threshold.
		// -1 marks a class mismatch.
		overlap := make([][]float32, len(detIdx))
		for i, di := range detIdx {
			overlap[i] = make([]float32, len(gtIdx))
			for j, gi := range gtIdx {
				if detections[di].Class != groundTruth[gi].Class {
					overlap[i][j] = -1
					continue
				}
				overlap[i][j] = detections[di].IoU(groundTruth[gi])
			}
		}

		for m, cutoff := range cfg.MaxDetections {
			considered := len(detIdx)
			if cutoff < considered {
				considered = cutoff
			}

			for t, threshold := range cfg.IoUThresholds {
				matched := make([]bool, len(gtIdx))

				for i := 0; i < considered; i++ {
					k := classIdx[detections[detIdx[i]].Class]

					// Threshold comparison is inclusive: IoU exactly at the
					// threshold is a match.
					best := -1
					var bestIoU float32
					for j := range gtIdx {
						iou := overlap[i][j]
						if iou < 0 || matched[j] || iou < threshold {
							continue
						}
						if best == -1 || iou > bestIoU {
							best, bestIoU = j, iou
						}
					}

					if best >= 0 {
						matched[best] = true
						counts.tp[counts.d.cell(t, k, a, m)]++
					} else {
						counts.fp[counts.d.cell(t, k, a, m)]++
					}
				}
			}
		}
	}

	return counts
}
