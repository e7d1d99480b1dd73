package benchmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Scenario describes one synthetic evaluation workload. A scenario is a pure
// recipe: every run regenerates the same image pairs from Seed, so results
// stay comparable across code changes.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Images is the number of image pairs to generate.
	Images int `json:"images"`
	// MaxBoxes caps the ground-truth boxes per image. Each image draws a
	// count in [1, MaxBoxes].
	MaxBoxes int `json:"max_boxes"`
	// Classes is how many category IDs the generator draws from
	// (1 through Classes, matching the COCO numbering).
	Classes int `json:"classes"`
	// DetectionsPerImage is the fixed number of predictions per image. The
	// first ones copy ground-truth boxes; the rest are spurious.
	DetectionsPerImage int `json:"detections_per_image"`
	// ScoreJitter scales how far copied detections drop below confidence 1.
	ScoreJitter float32  `json:"score_jitter"`
	Seed        uint64   `json:"seed"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate checks that the scenario can be generated.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name is empty")
	}
	if s.Images < 1 {
		return fmt.Errorf("scenario %s has %d images, want >= 1", s.Name, s.Images)
	}
	if s.MaxBoxes < 1 {
		return fmt.Errorf("scenario %s has max boxes %d, want >= 1", s.Name, s.MaxBoxes)
	}
	if s.Classes < 1 {
		return fmt.Errorf("scenario %s has %d classes, want >= 1", s.Name, s.Classes)
	}
	if s.DetectionsPerImage < 0 {
		return fmt.Errorf("scenario %s has %d detections per image, want >= 0",
			s.Name, s.DetectionsPerImage)
	}
	if s.ScoreJitter < 0 || s.ScoreJitter > 1 {
		return fmt.Errorf("scenario %s has score jitter %v, want [0, 1]", s.Name, s.ScoreJitter)
	}
	return nil
}

// ScenarioBuilder builds scenarios with a fluent API. The first invalid
// argument sticks: later calls become no-ops and Build reports it.
type ScenarioBuilder struct {
	scenario Scenario
	err      error
}

// NewScenarioBuilder creates a builder seeded with a moderate default workload.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	sb := &ScenarioBuilder{
		scenario: Scenario{
			Name:               name,
			Images:             64,
			MaxBoxes:           8,
			Classes:            5,
			DetectionsPerImage: 8,
			ScoreJitter:        0.1,
			Seed:               1,
		},
	}
	if name == "" {
		sb.err = errors.New("scenario name is empty")
	}
	return sb
}

// WithDescription sets the human-readable description
func (sb *ScenarioBuilder) WithDescription(description string) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	sb.scenario.Description = description
	return sb
}

// WithImages sets the number of generated image pairs
func (sb *ScenarioBuilder) WithImages(images int) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	if images < 1 {
		sb.err = fmt.Errorf("images is %d, want >= 1", images)
		return sb
	}
	sb.scenario.Images = images
	return sb
}

// WithMaxBoxes sets the per-image ground-truth box cap
func (sb *ScenarioBuilder) WithMaxBoxes(maxBoxes int) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	if maxBoxes < 1 {
		sb.err = fmt.Errorf("max boxes is %d, want >= 1", maxBoxes)
		return sb
	}
	sb.scenario.MaxBoxes = maxBoxes
	return sb
}

// WithClasses sets how many category IDs the generator draws from
func (sb *ScenarioBuilder) WithClasses(classes int) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	if classes < 1 {
		sb.err = fmt.Errorf("classes is %d, want >= 1", classes)
		return sb
	}
	sb.scenario.Classes = classes
	return sb
}

// WithDetections sets the fixed detection count per image
func (sb *ScenarioBuilder) WithDetections(detections int) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	if detections < 0 {
		sb.err = fmt.Errorf("detections per image is %d, want >= 0", detections)
		return sb
	}
	sb.scenario.DetectionsPerImage = detections
	return sb
}

// WithScoreJitter sets the confidence jitter on copied detections
func (sb *ScenarioBuilder) WithScoreJitter(jitter float32) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	if jitter < 0 || jitter > 1 {
		sb.err = fmt.Errorf("score jitter is %v, want [0, 1]", jitter)
		return sb
	}
	sb.scenario.ScoreJitter = jitter
	return sb
}

// WithSeed sets the generator seed
func (sb *ScenarioBuilder) WithSeed(seed uint64) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	sb.scenario.Seed = seed
	return sb
}

// WithTags sets free-form labels used to select scenario subsets
func (sb *ScenarioBuilder) WithTags(tags ...string) *ScenarioBuilder {
	if sb.HasError() {
		return sb
	}
	sb.scenario.Tags = tags
	return sb
}

// HasError checks if a previous builder call failed.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (sb *ScenarioBuilder) HasError() bool {
	return sb.err != nil
}

// Build returns the configured scenario.
//
// Returns:
//   - Scenario: The scenario.
//   - error: The first builder error if any.
func (sb *ScenarioBuilder) Build() (Scenario, error) {
	if sb.HasError() {
		return Scenario{}, sb.err
	}
	return sb.scenario, nil
}

// MustBuild returns the configured scenario and panics if any builder call failed.
func (sb *ScenarioBuilder) MustBuild() Scenario {
	s, err := sb.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// ScenarioSet represents a collection of related scenarios
type ScenarioSet struct {
	Name      string     `json:"name"`
	Version   string     `json:"version,omitempty"`
	Scenarios []Scenario `json:"scenarios"`
}

// DefaultScenarioSet returns graded workload sizes, from a quick smoke pass
// suitable for CI to a large stress pass for nightly runs.
func DefaultScenarioSet() *ScenarioSet {
	return &ScenarioSet{
		Name:    "evaluator_baseline",
		Version: "1",
		Scenarios: []Scenario{
			NewScenarioBuilder("smoke").
				WithDescription("Minimal pass for CI sanity").
				WithImages(16).
				WithMaxBoxes(4).
				WithClasses(3).
				WithDetections(4).
				WithScoreJitter(0.05).
				WithSeed(11).
				WithTags("ci").
				MustBuild(),
			NewScenarioBuilder("small").
				WithDescription("Light camera scene, few objects").
				WithImages(64).
				WithMaxBoxes(8).
				WithClasses(5).
				WithDetections(10).
				WithScoreJitter(0.1).
				WithSeed(12).
				WithTags("ci").
				MustBuild(),
			NewScenarioBuilder("medium").
				WithDescription("Busy scene with moderate clutter").
				WithImages(256).
				WithMaxBoxes(16).
				WithClasses(10).
				WithDetections(24).
				WithScoreJitter(0.15).
				WithSeed(13).
				WithTags("nightly").
				MustBuild(),
			NewScenarioBuilder("large").
				WithDescription("Crowded scene stress pass").
				WithImages(1024).
				WithMaxBoxes(32).
				WithClasses(20).
				WithDetections(48).
				WithScoreJitter(0.2).
				WithSeed(14).
				WithTags("nightly", "stress").
				MustBuild(),
		},
	}
}

// SaveScenarioSet saves a scenario set to a JSON file
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario set: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario set: %w", err)
	}

	return &scenarioSet, nil
}
