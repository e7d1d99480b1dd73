package augment

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// GaussianBlur samples separable Gaussian blur kernels with a random sigma.
//
// Kernel dimensions are fixed at construction. Every sampled transform draws
// one sigma uniformly from [SigmaMin, SigmaMax) and builds both 1-D kernels
// from that single draw.
type GaussianBlur struct {
	KernelX  int
	KernelY  int
	SigmaMin float32
	SigmaMax float32
}

// NewGaussianBlur returns a square-kernel blur layer with sigma drawn from
// [0, sigma).
func NewGaussianBlur(kernelSize int, sigma float32) (*GaussianBlur, error) {
	return NewGaussianBlurRange(kernelSize, kernelSize, 0, sigma)
}

// NewGaussianBlurRange returns a blur layer with separate x/y kernel sizes
// and an explicit sigma interval [sigmaMin, sigmaMax). Equal bounds pin sigma
// to a constant.
func NewGaussianBlurRange(kernelX, kernelY int, sigmaMin, sigmaMax float32) (*GaussianBlur, error) {
	if kernelX < 1 || kernelY < 1 {
		return nil, errors.Errorf("kernel size %dx%d is not positive", kernelX, kernelY)
	}
	if sigmaMin < 0 {
		return nil, errors.Errorf("sigma lower bound %v is negative", sigmaMin)
	}
	if sigmaMax < sigmaMin {
		return nil, errors.Errorf("sigma upper bound %v is less than lower bound %v", sigmaMax, sigmaMin)
	}
	if sigmaMax <= 0 {
		return nil, errors.Errorf("sigma upper bound %v is not positive", sigmaMax)
	}
	return &GaussianBlur{
		KernelX:  kernelX,
		KernelY:  kernelY,
		SigmaMin: sigmaMin,
		SigmaMax: sigmaMax,
	}, nil
}

// Name implements Layer.
func (g *GaussianBlur) Name() string { return "gaussian_blur" }

// SampleSigma draws the sigma for one transform.
func (g *GaussianBlur) SampleSigma(src Source) float32 {
	return src.Uniform(g.SigmaMin, g.SigmaMax)
}

// Sample implements Layer: it draws one sigma and builds the horizontal and
// vertical kernels from it. A draw that lands exactly on a zero lower bound
// cannot produce a kernel and is reported as an error.
func (g *GaussianBlur) Sample(src Source) (Transform, error) {
	sigma := g.SampleSigma(src)
	horizontal, err := Kernel(sigma, g.KernelX)
	if err != nil {
		return nil, errors.Wrap(err, "horizontal kernel")
	}
	vertical, err := Kernel(sigma, g.KernelY)
	if err != nil {
		return nil, errors.Wrap(err, "vertical kernel")
	}
	return &BlurTransform{Sigma: sigma, Horizontal: horizontal, Vertical: vertical}, nil
}

// BlurTransform is one sampled blur: the shared sigma and the two 1-D
// kernels to convolve with, horizontal pass first.
type BlurTransform struct {
	Sigma      float32
	Horizontal []float32
	Vertical   []float32
}

// Layer implements Transform.
func (t *BlurTransform) Layer() string { return "gaussian_blur" }

// Kernel returns size Gaussian taps for the given sigma, normalized to sum
// to 1. Taps are centered for odd sizes; even sizes extend one tap further
// to the right.
func Kernel(sigma float32, size int) ([]float32, error) {
	if size < 1 {
		return nil, errors.Errorf("kernel size %d is not positive", size)
	}
	if sigma <= 0 {
		return nil, errors.Errorf("sigma %v is not positive", sigma)
	}

	start := -((size + 1) / 2) + 1
	taps := make([]float32, size)
	var sum float32
	for i := range taps {
		x := float32(start + i)
		taps[i] = math32.Exp(-x * x / (2 * sigma * sigma))
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps, nil
}
