package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"image-transform-pipeline/internal/core"
)

const (
	EdgeName = "edges"

	// Canny hysteresis thresholds, fixed for the pipeline
	EdgeLowThreshold  = 50
	EdgeHighThreshold = 150
)

// EdgeDetector describes Canny edge detection to the controllers
type EdgeDetector struct{}

func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{}
}

func (e *EdgeDetector) GetName() string  { return EdgeName }
func (e *EdgeDetector) GetTitle() string { return "Edge Detection" }

func (e *EdgeDetector) GetDescription() string {
	return "Canny edge detection on the luminance channel (thresholds 50/150)"
}

func (e *EdgeDetector) GetParameterInfo() []ParameterInfo {
	return nil
}

func (e *EdgeDetector) Build(map[string]int) (Params, error) {
	return EdgeParams{}, nil
}

// EdgeDetect converts src to luminance and runs Canny. The result has one
// channel holding 0 or 255.
func EdgeDetect(src core.Image) (core.Image, error) {
	if err := src.Validate(); err != nil {
		return core.Image{}, err
	}

	input, err := src.ToMat()
	if err != nil {
		return core.Image{}, err
	}
	defer input.Close()

	gray := input
	if src.Channels == 3 {
		gray = gocv.NewMat()
		defer gray.Close()
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
			return core.Image{}, fmt.Errorf("luminance conversion failed: %w", err)
		}
	}

	edges := gocv.NewMat()
	defer edges.Close()

	if err := gocv.Canny(gray, &edges, EdgeLowThreshold, EdgeHighThreshold); err != nil {
		return core.Image{}, fmt.Errorf("canny failed: %w", err)
	}
	return core.FromMat(edges)
}
