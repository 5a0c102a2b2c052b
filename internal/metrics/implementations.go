package metrics

import (
	"math"

	"image-transform-pipeline/internal/core"
)

// MSE implements mean squared error over all samples
type MSE struct{}

func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed core.Image) (float64, error) {
	if err := sameShape(original, processed); err != nil {
		return 0, err
	}
	return meanSquaredError(original.Pix, processed.Pix), nil
}

func (m *MSE) GetName() string        { return "MSE" }
func (m *MSE) GetDescription() string { return "Mean Squared Error" }
func (m *MSE) IsHigherBetter() bool   { return false }

// PSNR implements Peak Signal-to-Noise Ratio
type PSNR struct{}

func NewPSNR() *PSNR {
	return &PSNR{}
}

// Calculate returns +Inf for identical images
func (p *PSNR) Calculate(original, processed core.Image) (float64, error) {
	if err := sameShape(original, processed); err != nil {
		return 0, err
	}

	mse := meanSquaredError(original.Pix, processed.Pix)
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string        { return "PSNR" }
func (p *PSNR) GetDescription() string { return "Peak Signal-to-Noise Ratio in dB" }
func (p *PSNR) IsHigherBetter() bool   { return true }

// ChangedRatio is the fraction of pixels with at least one differing sample
type ChangedRatio struct{}

func NewChangedRatio() *ChangedRatio {
	return &ChangedRatio{}
}

func (c *ChangedRatio) Calculate(original, processed core.Image) (float64, error) {
	if err := sameShape(original, processed); err != nil {
		return 0, err
	}

	ch := original.Channels
	pixels := original.Width * original.Height
	changed := 0
	for i := 0; i < pixels; i++ {
		for s := i * ch; s < (i+1)*ch; s++ {
			if original.Pix[s] != processed.Pix[s] {
				changed++
				break
			}
		}
	}
	return float64(changed) / float64(pixels), nil
}

func (c *ChangedRatio) GetName() string        { return "Changed" }
func (c *ChangedRatio) GetDescription() string { return "Fraction of pixels that differ" }
func (c *ChangedRatio) IsHigherBetter() bool   { return false }

func meanSquaredError(a, b []uint8) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum / float64(len(a))
}
