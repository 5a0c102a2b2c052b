// Core image buffer shared by the transform library, the session and the loader
package core

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MaxDimension bounds width and height to keep allocations sane
const MaxDimension = 16384

// Image is a decoded raster held in Go memory.
// Pix is row-major and interleaved; three-channel images are stored in BGR order.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewImage allocates a zeroed image of the given shape
func NewImage(width, height, channels int) (Image, error) {
	img := Image{
		Width:    width,
		Height:   height,
		Channels: channels,
	}
	if err := validateShape(width, height, channels); err != nil {
		return Image{}, err
	}
	img.Pix = make([]uint8, width*height*channels)
	return img, nil
}

// Validate checks the shape invariants and the buffer length
func (img Image) Validate() error {
	if err := validateShape(img.Width, img.Height, img.Channels); err != nil {
		return err
	}
	if want := img.Width * img.Height * img.Channels; len(img.Pix) != want {
		return fmt.Errorf("%w: pixel buffer has %d samples, want %d", ErrInvalidImage, len(img.Pix), want)
	}
	return nil
}

func validateShape(width, height, channels int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidImage, width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: image too large: %dx%d (max: %d)", ErrInvalidImage, width, height, MaxDimension)
	}
	if channels != 1 && channels != 3 {
		return fmt.Errorf("%w: unsupported number of channels: %d", ErrInvalidImage, channels)
	}
	return nil
}

// Empty reports whether the image holds no pixels
func (img Image) Empty() bool {
	return len(img.Pix) == 0
}

// Clone returns a deep copy
func (img Image) Clone() Image {
	out := img
	if img.Pix != nil {
		out.Pix = make([]uint8, len(img.Pix))
		copy(out.Pix, img.Pix)
	}
	return out
}

// Equal reports whether both images have the same shape and samples
func (img Image) Equal(other Image) bool {
	return img.Width == other.Width &&
		img.Height == other.Height &&
		img.Channels == other.Channels &&
		bytes.Equal(img.Pix, other.Pix)
}

// PixOffset returns the index of the first sample of pixel (x, y)
func (img Image) PixOffset(x, y int) int {
	return (y*img.Width + x) * img.Channels
}

// At returns the samples of pixel (x, y). The slice aliases Pix.
func (img Image) At(x, y int) []uint8 {
	i := img.PixOffset(x, y)
	return img.Pix[i : i+img.Channels : i+img.Channels]
}

func (img Image) String() string {
	return fmt.Sprintf("%dx%dx%d", img.Width, img.Height, img.Channels)
}

func (img Image) matType() gocv.MatType {
	if img.Channels == 1 {
		return gocv.MatTypeCV8UC1
	}
	return gocv.MatTypeCV8UC3
}

// ToMat copies the image into a new OpenCV Mat. The caller must Close it.
func (img Image) ToMat() (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	ref, err := gocv.NewMatFromBytes(img.Height, img.Width, img.matType(), img.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap pixel buffer: %w", err)
	}
	defer ref.Close()

	// ref points into Go memory, hand out an OpenCV-owned copy
	return ref.Clone(), nil
}

// FromMat copies an 8-bit Mat into an Image.
// Four-channel input is reduced to BGR.
func FromMat(mat gocv.Mat) (Image, error) {
	if mat.Empty() {
		return Image{}, fmt.Errorf("%w: image is empty", ErrInvalidImage)
	}

	src := mat
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3:
	case gocv.MatTypeCV8UC4:
		bgr := gocv.NewMat()
		defer bgr.Close()
		if err := gocv.CvtColor(mat, &bgr, gocv.ColorBGRAToBGR); err != nil {
			return Image{}, fmt.Errorf("failed to drop alpha channel: %w", err)
		}
		src = bgr
	default:
		return Image{}, fmt.Errorf("%w: unsupported mat type: %v", ErrInvalidImage, mat.Type())
	}

	if !src.IsContinuous() {
		cont := src.Clone()
		defer cont.Close()
		src = cont
	}

	img := Image{
		Width:    src.Cols(),
		Height:   src.Rows(),
		Channels: src.Channels(),
		Pix:      src.ToBytes(),
	}
	if err := img.Validate(); err != nil {
		return Image{}, err
	}
	return img, nil
}

// FromGoImage converts a decoded Go image into a three-channel BGR Image
func FromGoImage(src image.Image) (Image, error) {
	b := src.Bounds()
	img, err := NewImage(b.Dx(), b.Dy(), 3)
	if err != nil {
		return Image{}, err
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			img.Pix[i] = c.B
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.R
			i += 3
		}
	}
	return img, nil
}

// ToGoImage converts the image for display: *image.Gray for one channel,
// *image.RGBA (channels swapped to RGB) otherwise.
func (img Image) ToGoImage() image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.Channels == 1 {
		gray := image.NewGray(rect)
		copy(gray.Pix, img.Pix)
		return gray
	}

	rgba := image.NewRGBA(rect)
	n := img.Width * img.Height
	for p := 0; p < n; p++ {
		s := p * 3
		d := p * 4
		rgba.Pix[d] = img.Pix[s+2]
		rgba.Pix[d+1] = img.Pix[s+1]
		rgba.Pix[d+2] = img.Pix[s]
		rgba.Pix[d+3] = 0xff
	}
	return rgba
}
