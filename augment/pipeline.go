package augment

import "github.com/pkg/errors"

// Layer is an augmentation whose per-image parameters are drawn from a
// Source.
type Layer interface {
	// Name identifies the layer in sampled transforms.
	Name() string
	// Sample draws the parameters for one application of the layer.
	Sample(src Source) (Transform, error)
}

// Transform is one sampled layer application.
type Transform interface {
	// Layer names the layer that produced the transform.
	Layer() string
}

// Pipeline samples a random augmentation schedule. For every image it makes
// AugmentationsPerImage attempts; each attempt clears the Rate gate
// independently and then samples one uniformly chosen layer.
type Pipeline struct {
	Layers                []Layer
	AugmentationsPerImage int
	Rate                  float32
}

// NewPipeline validates the pipeline parameters.
func NewPipeline(layers []Layer, augmentationsPerImage int, rate float32) (*Pipeline, error) {
	if len(layers) == 0 {
		return nil, errors.New("pipeline has no layers")
	}
	if augmentationsPerImage < 1 {
		return nil, errors.Errorf("augmentations per image is %d, want >= 1", augmentationsPerImage)
	}
	if rate < 0 || rate > 1 {
		return nil, errors.Errorf("rate %v is outside [0, 1]", rate)
	}
	return &Pipeline{
		Layers:                layers,
		AugmentationsPerImage: augmentationsPerImage,
		Rate:                  rate,
	}, nil
}

// Plan samples the schedule for a batch: one transform list per image, in
// application order. Images draw at most AugmentationsPerImage transforms
// each; a gate draw that misses the rate contributes nothing.
func (p *Pipeline) Plan(src Source, batchSize int) ([][]Transform, error) {
	if len(p.Layers) == 0 {
		return nil, errors.New("pipeline has no layers")
	}
	if batchSize < 1 {
		return nil, errors.Errorf("batch size %d is not positive", batchSize)
	}

	plans := make([][]Transform, batchSize)
	for i := range plans {
		transforms := make([]Transform, 0, p.AugmentationsPerImage)
		for n := 0; n < p.AugmentationsPerImage; n++ {
			if src.Float32() >= p.Rate {
				continue
			}
			idx := int(src.Uniform(0, float32(len(p.Layers))))
			if idx >= len(p.Layers) {
				idx = len(p.Layers) - 1
			}
			tr, err := p.Layers[idx].Sample(src)
			if err != nil {
				return nil, errors.Wrapf(err, "layer %s", p.Layers[idx].Name())
			}
			transforms = append(transforms, tr)
		}
		plans[i] = transforms
	}
	return plans, nil
}
