// Side-by-side display of the original and processed images
package gui

import (
	"image"
	"image/color"
	"image/draw"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/nfnt/resize"

	"image-transform-pipeline/internal/config"
	"image-transform-pipeline/internal/core"
)

type ImageCanvas struct {
	display config.DisplayConfig

	split         *container.Split
	originalView  *widget.Card
	processedView *widget.Card
	originalImg   *canvas.Image
	processedImg  *canvas.Image
}

func NewImageCanvas(display config.DisplayConfig) *ImageCanvas {
	ic := &ImageCanvas{display: display}
	ic.initializeUI()
	return ic
}

func (ic *ImageCanvas) initializeUI() {
	ic.originalImg = newViewImage()
	ic.processedImg = newViewImage()

	ic.originalView = widget.NewCard("Original", "", ic.originalImg)
	ic.processedView = widget.NewCard("Processed", "", ic.processedImg)

	ic.split = container.NewHSplit(ic.originalView, ic.processedView)
	ic.split.SetOffset(0.5)
}

func newViewImage() *canvas.Image {
	img := canvas.NewImageFromImage(placeholder())
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(320, 240))
	return img
}

func placeholder() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{240, 240, 240, 255}), image.Point{}, draw.Src)
	return img
}

func (ic *ImageCanvas) GetContainer() fyne.CanvasObject {
	return ic.split
}

// Show renders the session. The processed pane falls back to a blank
// placeholder until a transform has been applied.
func (ic *ImageCanvas) Show(session core.Session) {
	if original, err := session.Original(); err == nil {
		ic.setImage(ic.originalImg, original)
		ic.originalView.SetSubTitle(original.String())
	} else {
		ic.clearImage(ic.originalImg)
		ic.originalView.SetSubTitle("")
	}

	if processed, err := session.Processed(); err == nil {
		ic.setImage(ic.processedImg, processed)
		ic.processedView.SetSubTitle(session.LastOperation() + "  " + processed.String())
	} else {
		ic.clearImage(ic.processedImg)
		ic.processedView.SetSubTitle("")
	}
}

func (ic *ImageCanvas) setImage(target *canvas.Image, img core.Image) {
	target.Image = previewImage(img.ToGoImage(), ic.display.PreviewMaxWidth, ic.display.PreviewMaxHeight)
	target.Refresh()
}

func (ic *ImageCanvas) clearImage(target *canvas.Image) {
	target.Image = placeholder()
	target.Refresh()
}

// previewImage downsizes img to fit within maxW x maxH, keeping its aspect
// ratio. Images that already fit are returned as is.
func previewImage(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return resize.Thumbnail(uint(maxW), uint(maxH), img, resize.Bilinear)
}
