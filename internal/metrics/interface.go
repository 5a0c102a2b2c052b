// Quality metrics comparing a processed image with its original
package metrics

import (
	"errors"
	"fmt"
	"sort"

	"image-transform-pipeline/internal/core"
)

// ErrShapeMismatch is returned when the two images cannot be compared sample by sample
var ErrShapeMismatch = errors.New("image shapes differ")

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed core.Image) (float64, error)

	GetName() string
	GetDescription() string

	// IsHigherBetter returns true if higher values indicate closer images
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.Register("mse", NewMSE())
	e.Register("psnr", NewPSNR())
	e.Register("changed", NewChangedRatio())
	return e
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed core.Image) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(original, processed)
}

// CalculateAll calculates every registered metric. Metrics that cannot be
// computed, for example after a resize, are left out.
func (e *Evaluator) CalculateAll(original, processed core.Image) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}
	return results
}

// Names lists registered metric names, sorted
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary renders results in a stable order for status lines and logs
func (e *Evaluator) Summary(results map[string]float64) string {
	out := ""
	for _, name := range e.Names() {
		value, ok := results[name]
		if !ok {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += fmt.Sprintf("%s=%.2f", e.metrics[name].GetName(), value)
	}
	return out
}

func sameShape(a, b core.Image) error {
	if a.Empty() || b.Empty() {
		return fmt.Errorf("%w: empty image", ErrShapeMismatch)
	}
	if a.Width != b.Width || a.Height != b.Height || a.Channels != b.Channels {
		return fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a, b)
	}
	return nil
}
