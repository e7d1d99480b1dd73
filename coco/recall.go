package coco

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// BucketResult is the reduced outcome for one (area range, max detections)
// bucket. IoU thresholds and classes are averaged inside the bucket. A bucket
// with no qualifying cells reports its metric as invalid ("no data") rather
// than zero: a recall of 0 means every ground truth was missed, which is a
// different statement than having had nothing to measure.
type BucketResult struct {
	// Key is the deterministic recall key, e.g.
	// "Recall @ [0.5, 0.95, 0.05], all, max_dets=100".
	Key string `json:"key"`
	// AreaLabel and MaxDetections identify the bucket.
	AreaLabel     string `json:"area_label"`
	MaxDetections int    `json:"max_detections"`

	Recall         float64 `json:"recall"`
	RecallValid    bool    `json:"recall_valid"`
	Precision      float64 `json:"precision"`
	PrecisionValid bool    `json:"precision_valid"`

	// suffix is the shared "<thresholds>, <area>, max_dets=<m>" tail used to
	// build per-metric keys.
	suffix string
}

// Result is the reduced evaluation outcome: one entry per configured
// (area range, max detections) bucket, area-major in config order.
type Result struct {
	Buckets []BucketResult `json:"buckets"`
}

// Result reduces the running totals into per-bucket recall and precision.
//
// For a bucket (a, m), recall is the mean of tp/gt over every (threshold,
// class) cell whose ground-truth count is positive; precision the mean of
// tp/(tp+fp) over every cell with at least one considered detection. Cells
// without ground truth (or without detections) are left out of the mean
// instead of being averaged in as zeros.
func (acc *Accumulator) Result() Result {
	thresholds := thresholdsLabel(acc.cfg.IoUThresholds)

	buckets := make([]BucketResult, 0, acc.d.A*acc.d.M)
	for a, areaRange := range acc.cfg.AreaRanges {
		for m, maxDet := range acc.cfg.MaxDetections {
			suffix := fmt.Sprintf("%s, %s, max_dets=%d", thresholds, areaRange.Label, maxDet)
			bucket := BucketResult{
				Key:           "Recall @ " + suffix,
				AreaLabel:     areaRange.Label,
				MaxDetections: maxDet,
				suffix:        suffix,
			}

			var recalls, precisions []float64
			for t := 0; t < acc.d.T; t++ {
				for k := 0; k < acc.d.K; k++ {
					tp := float64(acc.tp[acc.d.cell(t, k, a, m)])
					fp := float64(acc.fp[acc.d.cell(t, k, a, m)])
					gt := float64(acc.gt[acc.d.gtCell(k, a)])

					if gt > 0 {
						recalls = append(recalls, tp/gt)
					}
					if tp+fp > 0 {
						precisions = append(precisions, tp/(tp+fp))
					}
				}
			}

			if len(recalls) > 0 {
				bucket.Recall = stat.Mean(recalls, nil)
				bucket.RecallValid = true
			}
			if len(precisions) > 0 {
				bucket.Precision = stat.Mean(precisions, nil)
				bucket.PrecisionValid = true
			}

			buckets = append(buckets, bucket)
		}
	}

	return Result{Buckets: buckets}
}

// Scalar returns the recall directly when exactly one bucket is configured,
// sparing the common single-configuration case a map lookup. ok is false when
// there are multiple buckets or the single bucket has no data.
func (r Result) Scalar() (float64, bool) {
	if len(r.Buckets) != 1 || !r.Buckets[0].RecallValid {
		return 0, false
	}
	return r.Buckets[0].Recall, true
}

// RecallMap returns bucket key → recall for every bucket with data.
func (r Result) RecallMap() map[string]float64 {
	out := make(map[string]float64, len(r.Buckets))
	for _, b := range r.Buckets {
		if b.RecallValid {
			out[b.Key] = b.Recall
		}
	}
	return out
}

// PrecisionMap returns bucket key → precision for every bucket with data.
func (r Result) PrecisionMap() map[string]float64 {
	out := make(map[string]float64, len(r.Buckets))
	for _, b := range r.Buckets {
		if b.PrecisionValid {
			out["Precision @ "+b.suffix] = b.Precision
		}
	}
	return out
}

// thresholdsLabel renders the threshold set for result keys. An evenly spaced
// ascending run of three or more collapses to "[min, max, step]"; anything
// else lists every value. Formatting is shortest-round-trip float32, so the
// default protocol reads "[0.5, 0.95, 0.05]".
func thresholdsLabel(thresholds []float32) string {
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 32)
	}

	if len(thresholds) >= 3 {
		// Judge spacing in float64 with the step rounded to 1e-6: float32
		// literal noise (0.55-0.5 is not exactly 0.05) must not leak into
		// the label.
		step := math.Round(float64(thresholds[1]-thresholds[0])*1e6) / 1e6
		uniform := step > 0
		for i := 1; i < len(thresholds) && uniform; i++ {
			diff := float64(thresholds[i] - thresholds[i-1])
			if math.Abs(diff-step) > 1e-6 {
				uniform = false
			}
		}
		if uniform {
			return fmt.Sprintf("[%s, %s, %s]",
				format(float64(thresholds[0])),
				format(float64(thresholds[len(thresholds)-1])),
				format(step))
		}
	}

	label := "["
	for i, v := range thresholds {
		if i > 0 {
			label += ", "
		}
		label += format(float64(v))
	}
	return label + "]"
}
