// Transform registry used by the controllers to collect parameters before invoking a transform
package algorithms

import (
	"fmt"

	"image-transform-pipeline/internal/core"
)

// Algorithm describes one transform to a controller: what to ask the user
// and how to turn the answers into validated Params.
type Algorithm interface {
	GetName() string
	GetTitle() string
	GetDescription() string
	GetParameterInfo() []ParameterInfo
	Build(values map[string]int) (Params, error)
}

// ParameterInfo describes an integer parameter for prompt and flag generation
type ParameterInfo struct {
	Name        string `json:"name"`
	Prompt      string `json:"prompt"`
	Min         int    `json:"min"`
	Default     int    `json:"default"`
	Description string `json:"description"`
}

// HasDefault reports whether Default is a usable suggestion
func (p ParameterInfo) HasDefault() bool {
	return p.Default >= p.Min
}

// Settings carries the non-interactive knobs of the transforms
type Settings struct {
	// Seed pins k-means initialization; 0 draws a fresh seed per run
	Seed          int64
	MaxIterations int
}

// Registry maps transform names to their descriptors, in registration order
type Registry struct {
	algorithms map[string]Algorithm
	order      []string
}

// NewRegistry returns a registry holding the four pipeline transforms
func NewRegistry(settings Settings) *Registry {
	r := &Registry{algorithms: make(map[string]Algorithm)}
	r.Register(NewQuantizer(settings))
	r.Register(NewResizer())
	r.Register(NewBlurrer())
	r.Register(NewEdgeDetector())
	return r
}

func (r *Registry) Register(algorithm Algorithm) {
	name := algorithm.GetName()
	if _, exists := r.algorithms[name]; !exists {
		r.order = append(r.order, name)
	}
	r.algorithms[name] = algorithm
}

func (r *Registry) Get(name string) (Algorithm, bool) {
	algorithm, exists := r.algorithms[name]
	return algorithm, exists
}

// Names lists registered transforms in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Build turns collected values into Params for the named transform
func (r *Registry) Build(name string, values map[string]int) (Params, error) {
	algorithm, exists := r.algorithms[name]
	if !exists {
		return nil, fmt.Errorf("%w: unknown transform: %s", core.ErrInvalidParameter, name)
	}
	return algorithm.Build(values)
}

func lookup(values map[string]int, name string) (int, error) {
	v, ok := values[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing value for %s", core.ErrInvalidParameter, name)
	}
	return v, nil
}
