package algorithms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"image-transform-pipeline/internal/core"
)

func newImage(t *testing.T, w, h, c int) core.Image {
	t.Helper()
	img, err := core.NewImage(w, h, c)
	require.NoError(t, err)
	return img
}

func fill(t *testing.T, w, h int, bgr ...uint8) core.Image {
	t.Helper()
	img := newImage(t, w, h, len(bgr))
	for i := range img.Pix {
		img.Pix[i] = bgr[i%len(bgr)]
	}
	return img
}

// checkerboard alternates black and white single pixels
func checkerboard(t *testing.T, w, h int) core.Image {
	t.Helper()
	img := newImage(t, w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 1 {
				copy(img.At(x, y), []uint8{255, 255, 255})
			}
		}
	}
	return img
}

// gradient varies every channel so pixels are mostly distinct
func gradient(t *testing.T, w, h int) core.Image {
	t.Helper()
	img := newImage(t, w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			copy(img.At(x, y), []uint8{
				uint8(x * 255 / max(w-1, 1)),
				uint8(y * 255 / max(h-1, 1)),
				uint8((x + y) * 127 / max(w+h-2, 1)),
			})
		}
	}
	return img
}

// stepEdge is black on the left half and white on the right half
func stepEdge(t *testing.T, w, h int) core.Image {
	t.Helper()
	img := newImage(t, w, h, 3)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			copy(img.At(x, y), []uint8{255, 255, 255})
		}
	}
	return img
}

func distinctColors(img core.Image) map[string]int {
	colors := make(map[string]int)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			colors[string(img.At(x, y))]++
		}
	}
	return colors
}
