package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"image-transform-pipeline/internal/core"
)

const BlurName = "blur"

// Blurrer describes Gaussian blur to the controllers
type Blurrer struct{}

func NewBlurrer() *Blurrer {
	return &Blurrer{}
}

func (b *Blurrer) GetName() string  { return BlurName }
func (b *Blurrer) GetTitle() string { return "Apply Blur" }

func (b *Blurrer) GetDescription() string {
	return "Gaussian smoothing with a square kernel of side 2*radius+1"
}

func (b *Blurrer) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "radius",
			Prompt:      "Enter the blur kernel size:",
			Min:         0,
			Default:     2,
			Description: "Kernel half-width; 0 leaves the image unchanged",
		},
	}
}

func (b *Blurrer) Build(values map[string]int) (Params, error) {
	radius, err := lookup(values, "radius")
	if err != nil {
		return nil, err
	}
	p := BlurParams{Radius: radius}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// KernelSize returns the Gaussian kernel side for a blur radius
func KernelSize(radius int) int {
	return 2*radius + 1
}

// Blur applies a Gaussian blur with a (2*radius+1) square kernel. Sigma is
// derived from the kernel size (0.3*((ksize-1)*0.5-1)+0.8). Radius 0 is the
// identity.
func Blur(src core.Image, radius int) (core.Image, error) {
	if err := src.Validate(); err != nil {
		return core.Image{}, err
	}
	if radius < 0 {
		return core.Image{}, fmt.Errorf("%w: radius must not be negative, got %d", core.ErrInvalidParameter, radius)
	}
	if radius == 0 {
		return src.Clone(), nil
	}
	if radius > core.MaxDimension {
		return core.Image{}, fmt.Errorf("%w: radius too large: %d", core.ErrInvalidParameter, radius)
	}

	input, err := src.ToMat()
	if err != nil {
		return core.Image{}, err
	}
	defer input.Close()

	output := gocv.NewMat()
	defer output.Close()

	ksize := KernelSize(radius)
	if err := gocv.GaussianBlur(input, &output, image.Pt(ksize, ksize), 0, 0, gocv.BorderDefault); err != nil {
		return core.Image{}, fmt.Errorf("gaussian blur failed: %w", err)
	}
	return core.FromMat(output)
}
