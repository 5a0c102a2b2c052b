// Right-hand panel with image details and quality metrics
package gui

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"image-transform-pipeline/internal/core"
	"image-transform-pipeline/internal/metrics"
)

type InfoPanel struct {
	evaluator *metrics.Evaluator

	container *fyne.Container

	detailsCard  *widget.Card
	detailsLabel *widget.Label
	metricsCard  *widget.Card
	metricsBox   *fyne.Container
}

func NewInfoPanel(evaluator *metrics.Evaluator) *InfoPanel {
	panel := &InfoPanel{evaluator: evaluator}
	panel.initializeUI()
	return panel
}

func (ip *InfoPanel) initializeUI() {
	ip.detailsLabel = widget.NewLabel("No image loaded")
	ip.detailsLabel.Wrapping = fyne.TextWrapWord
	ip.detailsCard = widget.NewCard("Image", "", ip.detailsLabel)

	ip.metricsBox = container.NewVBox()
	ip.metricsCard = widget.NewCard("Quality Metrics", "", ip.metricsBox)
	ip.clearMetrics()

	ip.container = container.NewVBox(ip.detailsCard, ip.metricsCard)
}

func (ip *InfoPanel) GetContainer() fyne.CanvasObject {
	return ip.container
}

// Update shows the session metadata and, when both images share a shape,
// the metrics comparing them. It returns the computed metrics.
func (ip *InfoPanel) Update(session core.Session) map[string]float64 {
	if !session.HasImage() {
		ip.detailsLabel.SetText("No image loaded")
		ip.clearMetrics()
		return nil
	}

	md := session.Metadata()
	ip.detailsLabel.SetText(fmt.Sprintf("%s\n%s, %dx%d, %d channel(s)",
		md.Path, md.Format, md.Width, md.Height, md.Channels))

	original, _ := session.Original()
	processed, err := session.Processed()
	if err != nil {
		ip.clearMetrics()
		return nil
	}

	results := ip.evaluator.CalculateAll(original, processed)
	ip.metricsBox.RemoveAll()
	if len(results) == 0 {
		ip.metricsBox.Add(widget.NewLabel("Not comparable: image size changed"))
		return results
	}
	for _, name := range ip.evaluator.Names() {
		value, ok := results[name]
		if !ok {
			continue
		}
		ip.metricsBox.Add(widget.NewLabel(formatMetric(name, value)))
	}
	return results
}

func (ip *InfoPanel) clearMetrics() {
	ip.metricsBox.RemoveAll()
	ip.metricsBox.Add(widget.NewLabel("Apply a transform to see quality metrics"))
}

func formatMetric(name string, value float64) string {
	if math.IsInf(value, 1) {
		return fmt.Sprintf("%s: identical", name)
	}
	return fmt.Sprintf("%s: %.3f", name, value)
}
