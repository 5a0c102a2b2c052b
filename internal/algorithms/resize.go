package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"image-transform-pipeline/internal/core"
)

const ResizeName = "resize"

// Resizer describes bilinear resizing to the controllers
type Resizer struct{}

func NewResizer() *Resizer {
	return &Resizer{}
}

func (r *Resizer) GetName() string  { return ResizeName }
func (r *Resizer) GetTitle() string { return "Resize Image" }

func (r *Resizer) GetDescription() string {
	return "Resample the image to a new width and height with bilinear interpolation"
}

func (r *Resizer) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "width",
			Prompt:      "Enter the new width:",
			Min:         1,
			Description: "Output width in pixels",
		},
		{
			Name:        "height",
			Prompt:      "Enter the new height:",
			Min:         1,
			Description: "Output height in pixels",
		},
	}
}

func (r *Resizer) Build(values map[string]int) (Params, error) {
	w, err := lookup(values, "width")
	if err != nil {
		return nil, err
	}
	h, err := lookup(values, "height")
	if err != nil {
		return nil, err
	}
	p := ResizeParams{Width: w, Height: h}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Resize resamples src to width x height with bilinear interpolation.
// Upscaling and downscaling share the same path; the target size itself
// returns an unchanged copy.
func Resize(src core.Image, width, height int) (core.Image, error) {
	if err := src.Validate(); err != nil {
		return core.Image{}, err
	}
	if err := validateSize(width, height); err != nil {
		return core.Image{}, err
	}
	if width == src.Width && height == src.Height {
		return src.Clone(), nil
	}
	return resample(src, width, height)
}

// resample runs the bilinear interpolation, even when the size is unchanged
func resample(src core.Image, width, height int) (core.Image, error) {
	input, err := src.ToMat()
	if err != nil {
		return core.Image{}, err
	}
	defer input.Close()

	output := gocv.NewMat()
	defer output.Close()

	if err := gocv.Resize(input, &output, image.Pt(width, height), 0, 0, gocv.InterpolationLinear); err != nil {
		return core.Image{}, fmt.Errorf("resize failed: %w", err)
	}
	return core.FromMat(output)
}

func validateSize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", core.ErrInvalidParameter, width, height)
	}
	if width > core.MaxDimension || height > core.MaxDimension {
		return fmt.Errorf("%w: dimensions exceed %d, got %dx%d", core.ErrInvalidParameter, core.MaxDimension, width, height)
	}
	return nil
}
