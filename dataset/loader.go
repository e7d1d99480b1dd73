// Package dataset loads per-image annotation files for evaluation runs.
//
// Each file holds one image's ground-truth boxes and the detections a model
// produced for it:
//
//	{
//	  "image_id": "000001",
//	  "ground_truth": [{"box": [0, 0, 10, 10], "class": 1}],
//	  "detections":   [{"box": [0, 0, 10, 10], "class": 1, "score": 0.9}]
//	}
package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/boxes"
	"github.com/nvr-ai/go-eval/coco"
)

// Annotation is one labelled or predicted box. Box corners are
// [x1, y1, x2, y2]; Score is only meaningful for detections.
type Annotation struct {
	Box   []float32 `json:"box" yaml:"box"`
	Class int       `json:"class" yaml:"class"`
	Score float32   `json:"score,omitempty" yaml:"score,omitempty"`
}

// ImageAnnotations is the on-disk document for a single image.
type ImageAnnotations struct {
	ImageID     string       `json:"image_id" yaml:"image_id"`
	GroundTruth []Annotation `json:"ground_truth" yaml:"ground_truth"`
	Detections  []Annotation `json:"detections" yaml:"detections"`
}

// LoadFile reads and validates one annotation file. A missing image_id
// defaults to the file name without its extension.
func LoadFile(path string) (*ImageAnnotations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read annotations %s", path)
	}

	var ia ImageAnnotations
	if err := json.Unmarshal(data, &ia); err != nil {
		return nil, errors.Wrapf(err, "failed to parse annotations %s", path)
	}
	if err := ia.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid annotations %s", path)
	}

	if ia.ImageID == "" {
		base := filepath.Base(path)
		ia.ImageID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &ia, nil
}

// LoadDir reads every .json file directly under dir, sorted by file name so
// repeated runs see the images in the same order. Subdirectories and other
// extensions are skipped. A directory with no annotation files is an error.
func LoadDir(dir string) ([]*ImageAnnotations, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read annotations directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no .json annotation files in %s", dir)
	}
	sort.Strings(names)

	annotations := make([]*ImageAnnotations, 0, len(names))
	for _, name := range names {
		ia, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, ia)
	}
	return annotations, nil
}

// Save writes the annotations as indented JSON.
func (ia *ImageAnnotations) Save(path string) error {
	if err := ia.validate(); err != nil {
		return errors.Wrap(err, "invalid annotations")
	}
	data, err := json.MarshalIndent(ia, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal annotations")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write annotations %s", path)
	}
	return nil
}

// GroundTruthBoxes converts the labelled annotations to evaluator boxes.
func (ia *ImageAnnotations) GroundTruthBoxes() []boxes.Box {
	return toBoxes(ia.GroundTruth)
}

// DetectionBoxes converts the predicted annotations to evaluator boxes.
func (ia *ImageAnnotations) DetectionBoxes() []boxes.Box {
	return toBoxes(ia.Detections)
}

// Pair returns the image as evaluator input.
func (ia *ImageAnnotations) Pair() coco.ImagePair {
	return coco.ImagePair{
		GroundTruth: ia.GroundTruthBoxes(),
		Detections:  ia.DetectionBoxes(),
	}
}

// Pairs converts loaded annotations to evaluator input, keeping file order.
func Pairs(annotations []*ImageAnnotations) []coco.ImagePair {
	pairs := make([]coco.ImagePair, len(annotations))
	for i, ia := range annotations {
		pairs[i] = ia.Pair()
	}
	return pairs
}

func (ia *ImageAnnotations) validate() error {
	for i, a := range ia.GroundTruth {
		if len(a.Box) != 4 {
			return errors.Errorf("ground-truth box %d has %d coordinates, want 4", i, len(a.Box))
		}
	}
	for i, a := range ia.Detections {
		if len(a.Box) != 4 {
			return errors.Errorf("detection box %d has %d coordinates, want 4", i, len(a.Box))
		}
	}
	return nil
}

func toBoxes(annotations []Annotation) []boxes.Box {
	out := make([]boxes.Box, len(annotations))
	for i, a := range annotations {
		out[i] = boxes.Box{
			X1:    a.Box[0],
			Y1:    a.Box[1],
			X2:    a.Box[2],
			Y2:    a.Box[3],
			Class: a.Class,
			Score: a.Score,
		}
	}
	return out
}
