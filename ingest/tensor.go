// Package ingest decodes batched box tensors into per-image box slices.
//
// Ground truth arrives as a float32 tensor of shape (N, M, 5) with rows
// [x1, y1, x2, y2, class]; detections carry a trailing score column, shape
// (N, M, 6). M is the per-image box capacity: images with fewer boxes are
// padded with rows whose class is negative, and padding rows are dropped
// during decoding so they never reach the matcher.
package ingest

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-eval/boxes"
	"github.com/nvr-ai/go-eval/coco"
)

const (
	gtWidth  = 5
	detWidth = 6

	// paddingClass marks absent rows when encoding ragged batches.
	paddingClass = -1
)

// GroundTruth decodes a (N, M, 5) float32 tensor into per-image boxes,
// dropping padding rows.
func GroundTruth(t *tensor.Dense) ([][]boxes.Box, error) {
	return decode(t, gtWidth)
}

// Detections decodes a (N, M, 6) float32 tensor into per-image boxes with
// scores, dropping padding rows.
func Detections(t *tensor.Dense) ([][]boxes.Box, error) {
	return decode(t, detWidth)
}

// Pair decodes a ground-truth tensor and a detection tensor covering the same
// batch and zips them image by image.
//
// Arguments:
// - gt: Ground-truth tensor, shape (N, M, 5).
// - det: Detection tensor, shape (N, M', 6). M' may differ from M.
//
// Returns:
// - One ImagePair per image, padding removed.
// - error if either tensor is malformed or the batch sizes disagree.
func Pair(gt, det *tensor.Dense) ([]coco.ImagePair, error) {
	groundTruth, err := GroundTruth(gt)
	if err != nil {
		return nil, errors.Wrap(err, "ground truth")
	}
	detections, err := Detections(det)
	if err != nil {
		return nil, errors.Wrap(err, "detections")
	}
	if len(groundTruth) != len(detections) {
		return nil, errors.Errorf("batch size mismatch: %d ground-truth images, %d detection images",
			len(groundTruth), len(detections))
	}

	pairs := make([]coco.ImagePair, len(groundTruth))
	for i := range pairs {
		pairs[i] = coco.ImagePair{GroundTruth: groundTruth[i], Detections: detections[i]}
	}
	return pairs, nil
}

func decode(t *tensor.Dense, width int) ([][]boxes.Box, error) {
	if t == nil {
		return nil, errors.New("nil tensor")
	}
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Errorf("tensor dtype is %v, want float32", t.Dtype())
	}
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, errors.Errorf("tensor rank is %d, want 3 (images, boxes, values)", len(shape))
	}
	if shape[2] != width {
		return nil, errors.Errorf("tensor row width is %d, want %d", shape[2], width)
	}

	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("tensor backing is %T, want []float32", t.Data())
	}
	n, m := shape[0], shape[1]
	if len(data) != n*m*width {
		return nil, errors.Errorf("tensor backing has %d values, want %d", len(data), n*m*width)
	}

	out := make([][]boxes.Box, n)
	for i := 0; i < n; i++ {
		img := make([]boxes.Box, 0, m)
		for j := 0; j < m; j++ {
			row := data[(i*m+j)*width:]
			// The class column is float storage for an integer label; a
			// negative value is padding.
			if row[4] < 0 {
				continue
			}
			box := boxes.Box{
				X1:    row[0],
				Y1:    row[1],
				X2:    row[2],
				Y2:    row[3],
				Class: int(math32.Round(row[4])),
			}
			if width == detWidth {
				box.Score = row[5]
			}
			img = append(img, box)
		}
		out[i] = img
	}
	return out, nil
}

// EncodeGroundTruth packs ragged per-image boxes into a (N, M, 5) float32
// tensor, where M is the largest image's box count (at least 1). Short images
// are padded with rows whose class is -1.
func EncodeGroundTruth(images [][]boxes.Box) (*tensor.Dense, error) {
	return encode(images, gtWidth)
}

// EncodeDetections packs ragged per-image boxes into a (N, M, 6) float32
// tensor. See EncodeGroundTruth.
func EncodeDetections(images [][]boxes.Box) (*tensor.Dense, error) {
	return encode(images, detWidth)
}

func encode(images [][]boxes.Box, width int) (*tensor.Dense, error) {
	if len(images) == 0 {
		return nil, errors.New("empty batch")
	}

	m := 1
	for _, img := range images {
		if len(img) > m {
			m = len(img)
		}
	}

	backing := make([]float32, len(images)*m*width)
	for i, img := range images {
		for j := 0; j < m; j++ {
			row := backing[(i*m+j)*width:]
			if j >= len(img) {
				row[4] = paddingClass
				continue
			}
			b := img[j]
			row[0], row[1], row[2], row[3] = b.X1, b.Y1, b.X2, b.Y2
			row[4] = float32(b.Class)
			if width == detWidth {
				row[5] = b.Score
			}
		}
	}

	return tensor.New(
		tensor.WithShape(len(images), m, width),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(backing),
	), nil
}
