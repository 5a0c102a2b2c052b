// Image loading and saving at the pipeline boundary
package io

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"golang.org/x/image/webp"

	"image-transform-pipeline/internal/core"
)

var (
	// opencvFormats are decoded and encoded by OpenCV
	opencvFormats = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif"}
	// webpFormats are decode-only through the pure Go decoder
	webpFormats = []string{".webp"}
)

// ImageLoader decodes files into core.Image and encodes them back.
// Failures wrap core.ErrIO.
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

func (il *ImageLoader) LoadImage(path string) (core.Image, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	ext := extension(path)
	if !il.CanLoad(path) {
		return core.Image{}, fmt.Errorf("%w: unsupported image format: %s", core.ErrIO, path)
	}
	if _, err := os.Stat(path); err != nil {
		return core.Image{}, fmt.Errorf("%w: %w", core.ErrIO, err)
	}

	var (
		img core.Image
		err error
	)
	if slices.Contains(webpFormats, ext) {
		img, err = il.loadWebP(path)
	} else {
		img, err = il.loadOpenCV(path)
	}
	if err != nil {
		return core.Image{}, err
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    img.Width,
		"height":   img.Height,
		"channels": img.Channels,
	}).Info("Image loaded successfully")

	return img, nil
}

func (il *ImageLoader) loadOpenCV(path string) (core.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return core.Image{}, fmt.Errorf("%w: failed to load image: %s", core.ErrIO, path)
	}

	img, err := core.FromMat(mat)
	if err != nil {
		return core.Image{}, fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	return img, nil
}

func (il *ImageLoader) loadWebP(path string) (core.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Image{}, fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	defer f.Close()

	decoded, err := webp.Decode(f)
	if err != nil {
		return core.Image{}, fmt.Errorf("%w: failed to decode webp %s: %w", core.ErrIO, path, err)
	}

	img, err := core.FromGoImage(decoded)
	if err != nil {
		return core.Image{}, fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	return img, nil
}

func (il *ImageLoader) SaveImage(img core.Image, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if img.Empty() {
		return fmt.Errorf("%w: cannot save empty image", core.ErrIO)
	}
	if !il.CanSave(path) {
		return fmt.Errorf("%w: unsupported image format: %s", core.ErrIO, path)
	}

	mat, err := img.ToMat()
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("%w: failed to save image: %s", core.ErrIO, path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    img.Width,
		"height":   img.Height,
		"channels": img.Channels,
	}).Info("Image saved successfully")

	return nil
}

// CanLoad reports whether the extension of path can be decoded
func (il *ImageLoader) CanLoad(path string) bool {
	ext := extension(path)
	return slices.Contains(opencvFormats, ext) || slices.Contains(webpFormats, ext)
}

// CanSave reports whether the extension of path can be encoded
func (il *ImageLoader) CanSave(path string) bool {
	return slices.Contains(opencvFormats, extension(path))
}

// LoadExtensions lists the extensions accepted by LoadImage, for file dialogs
func (il *ImageLoader) LoadExtensions() []string {
	return slices.Concat(opencvFormats, webpFormats)
}

// SaveExtensions lists the extensions accepted by SaveImage
func (il *ImageLoader) SaveExtensions() []string {
	return slices.Clone(opencvFormats)
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "BMP", "TIFF", "WebP (load only)"}
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
