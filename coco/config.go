// Package coco implements COCO-style object detection evaluation: per-image
// greedy matching of detections to ground truth across IoU thresholds, area
// ranges and max-detection cutoffs, running accumulation over images, and
// reduction to recall/precision per bucket.
package coco

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// unboundedArea is the practical upper bound for open-ended area ranges,
// following the COCO convention of 1e5 pixels squared on each side. Kept
// finite so configurations round-trip through JSON.
const unboundedArea = 1e10

// AreaRange buckets boxes by size so small, medium and large objects can be
// evaluated separately.
type AreaRange struct {
	// Label names the bucket in result keys ("all", "small", "medium", "large").
	Label string `json:"label" yaml:"label"`
	// Min is the inclusive lower bound of the box area in pixels squared.
	Min float32 `json:"min" yaml:"min"`
	// Max is the exclusive upper bound of the box area in pixels squared.
	Max float32 `json:"max" yaml:"max"`
}

// Contains reports whether an area falls inside the half-open interval [Min, Max).
func (r AreaRange) Contains(area float32) bool {
	return area >= r.Min && area < r.Max
}

// Config holds the evaluation dimensions. It is fixed for the lifetime of an
// Accumulator: construct a new one to evaluate under different settings.
type Config struct {
	// IoUThresholds are the minimum overlaps at which a detection counts as
	// a match, each in [0, 1].
	IoUThresholds []float32 `json:"iou_thresholds" yaml:"iou_thresholds"`
	// AreaRanges are the box-size buckets.
	AreaRanges []AreaRange `json:"area_ranges" yaml:"area_ranges"`
	// MaxDetections are the per-image caps on the number of
	// highest-confidence detections considered.
	MaxDetections []int `json:"max_detections" yaml:"max_detections"`
	// Classes is the category-ID universe. Boxes with IDs outside it are
	// ignored during matching.
	Classes []int `json:"classes" yaml:"classes"`
}

// DefaultConfig returns the standard COCO evaluation protocol: IoU thresholds
// 0.50 to 0.95 in steps of 0.05, the four standard area ranges, max-detection
// cutoffs 1/10/100 and the 80 COCO categories.
func DefaultConfig() Config {
	return Config{
		IoUThresholds: []float32{0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95},
		AreaRanges: []AreaRange{
			{Label: "all", Min: 0, Max: unboundedArea},
			{Label: "small", Min: 0, Max: 32 * 32},
			{Label: "medium", Min: 32 * 32, Max: 96 * 96},
			{Label: "large", Min: 96 * 96, Max: unboundedArea},
		},
		MaxDetections: []int{1, 10, 100},
		Classes:       DefaultClassIDs(),
	}
}

// Validate checks that every evaluation dimension is populated and coherent.
// An empty dimension is a configuration error: the accumulator tables would
// have no cells to hold counts.
func (c Config) Validate() error {
	if len(c.IoUThresholds) == 0 {
		return errors.New("config has no IoU thresholds")
	}
	if len(c.AreaRanges) == 0 {
		return errors.New("config has no area ranges")
	}
	if len(c.MaxDetections) == 0 {
		return errors.New("config has no max-detection values")
	}
	if len(c.Classes) == 0 {
		return errors.New("config has no classes")
	}

	for i, t := range c.IoUThresholds {
		if t < 0 || t > 1 {
			return errors.Errorf("IoU threshold %d is %v, want [0, 1]", i, t)
		}
	}

	labels := make(map[string]bool, len(c.AreaRanges))
	for i, r := range c.AreaRanges {
		if r.Label == "" {
			return errors.Errorf("area range %d has an empty label", i)
		}
		if labels[r.Label] {
			return errors.Errorf("duplicate area range label %q", r.Label)
		}
		labels[r.Label] = true
		if r.Min < 0 {
			return errors.Errorf("area range %q has negative minimum %v", r.Label, r.Min)
		}
		if r.Max <= r.Min {
			return errors.Errorf("area range %q is empty: [%v, %v)", r.Label, r.Min, r.Max)
		}
	}

	for i, m := range c.MaxDetections {
		if m < 1 {
			return errors.Errorf("max-detections %d is %d, want >= 1", i, m)
		}
	}

	seen := make(map[int]bool, len(c.Classes))
	for _, id := range c.Classes {
		if seen[id] {
			return errors.Errorf("duplicate class ID %d", id)
		}
		seen[id] = true
	}

	return nil
}

// classIndex maps class IDs to their position in Classes for table indexing.
func (c Config) classIndex() map[int]int {
	idx := make(map[int]int, len(c.Classes))
	for i, id := range c.Classes {
		idx[id] = i
	}
	return idx
}

// LoadConfig reads a configuration from a JSON or YAML file, chosen by the
// file extension, and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to parse JSON config")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to parse YAML config")
		}
	default:
		return Config{}, errors.Errorf("unsupported config extension %q (want .json, .yaml or .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Save writes the configuration to a JSON or YAML file, chosen by the file
// extension.
func (c Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return errors.Errorf("unsupported config extension %q (want .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}
