package algorithms

import (
	"fmt"

	"image-transform-pipeline/internal/core"
)

// Params is the tagged union of transform parameters. Each variant is a
// core.Transformer, so a Session can apply it directly.
type Params interface {
	core.Transformer
	Validate() error
	isParams()
}

// Apply validates p and runs its transform on src
func Apply(src core.Image, p Params) (core.Image, error) {
	if err := p.Validate(); err != nil {
		return core.Image{}, err
	}
	return p.Transform(src)
}

// QuantizeParams selects k-means color quantization
type QuantizeParams struct {
	K int
	// Seed pins centroid initialization; 0 means unseeded
	Seed          int64
	MaxIterations int
}

func (QuantizeParams) Name() string { return QuantizeName }
func (QuantizeParams) isParams()    {}

func (p QuantizeParams) Validate() error {
	if p.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", core.ErrInvalidParameter, p.K)
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative, got %d", core.ErrInvalidParameter, p.MaxIterations)
	}
	return nil
}

func (p QuantizeParams) Transform(src core.Image) (core.Image, error) {
	var opts []QuantizeOption
	if p.Seed != 0 {
		opts = append(opts, WithSeed(p.Seed))
	}
	if p.MaxIterations > 0 {
		opts = append(opts, WithMaxIterations(p.MaxIterations))
	}
	return Quantize(src, p.K, opts...)
}

// ResizeParams selects bilinear resampling to Width x Height
type ResizeParams struct {
	Width  int
	Height int
}

func (ResizeParams) Name() string { return ResizeName }
func (ResizeParams) isParams()    {}

func (p ResizeParams) Validate() error {
	return validateSize(p.Width, p.Height)
}

func (p ResizeParams) Transform(src core.Image) (core.Image, error) {
	return Resize(src, p.Width, p.Height)
}

// BlurParams selects a Gaussian blur with a (2*Radius+1) square kernel
type BlurParams struct {
	Radius int
}

func (BlurParams) Name() string { return BlurName }
func (BlurParams) isParams()    {}

func (p BlurParams) Validate() error {
	if p.Radius < 0 {
		return fmt.Errorf("%w: radius must not be negative, got %d", core.ErrInvalidParameter, p.Radius)
	}
	return nil
}

func (p BlurParams) Transform(src core.Image) (core.Image, error) {
	return Blur(src, p.Radius)
}

// EdgeParams selects Canny edge detection; thresholds are fixed
type EdgeParams struct{}

func (EdgeParams) Name() string    { return EdgeName }
func (EdgeParams) isParams()       {}
func (EdgeParams) Validate() error { return nil }

func (EdgeParams) Transform(src core.Image) (core.Image, error) {
	return EdgeDetect(src)
}
