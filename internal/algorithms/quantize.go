// K-means color quantization
package algorithms

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"image-transform-pipeline/internal/core"
)

const (
	QuantizeName = "quantize"

	// DefaultMaxIterations caps Lloyd iterations when assignments keep changing
	DefaultMaxIterations = 300
)

// Quantizer describes color quantization to the controllers
type Quantizer struct {
	settings Settings
}

func NewQuantizer(settings Settings) *Quantizer {
	return &Quantizer{settings: settings}
}

func (q *Quantizer) GetName() string  { return QuantizeName }
func (q *Quantizer) GetTitle() string { return "Color Quantization" }

func (q *Quantizer) GetDescription() string {
	return "Reduce the image to k representative colors with k-means clustering"
}

func (q *Quantizer) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "k",
			Prompt:      "Enter the number of colors (clusters) for quantization:",
			Min:         1,
			Default:     8,
			Description: "Number of colors in the output",
		},
	}
}

func (q *Quantizer) Build(values map[string]int) (Params, error) {
	k, err := lookup(values, "k")
	if err != nil {
		return nil, err
	}
	p := QuantizeParams{
		K:             k,
		Seed:          q.settings.Seed,
		MaxIterations: q.settings.MaxIterations,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// QuantizeOption adjusts a single Quantize call
type QuantizeOption func(*quantizeConfig)

type quantizeConfig struct {
	seed          int64
	seeded        bool
	maxIterations int
}

// WithSeed makes centroid initialization reproducible
func WithSeed(seed int64) QuantizeOption {
	return func(c *quantizeConfig) {
		c.seed = seed
		c.seeded = true
	}
}

// WithMaxIterations overrides DefaultMaxIterations
func WithMaxIterations(n int) QuantizeOption {
	return func(c *quantizeConfig) {
		c.maxIterations = n
	}
}

// Quantize replaces every pixel with the centroid of its k-means cluster.
//
// Centroids are initialized with k-means++ and refined until no color changes
// cluster or the iteration cap is reached. Without WithSeed the initialization
// draws from the clock, so two runs may differ. When k exceeds the number of
// distinct colors it is lowered to that number.
func Quantize(src core.Image, k int, opts ...QuantizeOption) (core.Image, error) {
	if err := src.Validate(); err != nil {
		return core.Image{}, err
	}
	if k < 1 {
		return core.Image{}, fmt.Errorf("%w: k must be at least 1, got %d", core.ErrInvalidParameter, k)
	}

	cfg := quantizeConfig{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxIterations < 1 {
		return core.Image{}, fmt.Errorf("%w: max iterations must be at least 1, got %d", core.ErrInvalidParameter, cfg.maxIterations)
	}
	if !cfg.seeded {
		cfg.seed = time.Now().UnixNano()
	}

	p := buildPalette(src)
	if k > p.len() {
		k = p.len()
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.seed), uint64(cfg.seed)^0x9e3779b97f4a7c15))
	centroids := p.seedCentroids(k, rng)
	assign := p.cluster(centroids, cfg.maxIterations)

	c := src.Channels
	levels := make([]uint8, len(centroids))
	for i, v := range centroids {
		levels[i] = roundSample(v)
	}

	out := core.Image{
		Width:    src.Width,
		Height:   src.Height,
		Channels: c,
		Pix:      make([]uint8, len(src.Pix)),
	}
	for i, id := range p.index {
		j := assign[id] * c
		copy(out.Pix[i*c:i*c+c], levels[j:j+c])
	}
	return out, nil
}

// palette holds the distinct colors of an image with their pixel counts.
// Clustering runs on it instead of on every pixel; weighting by count keeps
// the result identical to per-pixel k-means.
type palette struct {
	channels int
	colors   []float64 // distinct colors, flattened
	counts   []float64
	index    []int32 // pixel -> distinct color
}

func buildPalette(img core.Image) palette {
	c := img.Channels
	n := img.Width * img.Height
	p := palette{
		channels: c,
		index:    make([]int32, n),
	}

	seen := make(map[uint32]int32)
	for i := 0; i < n; i++ {
		sample := img.Pix[i*c : i*c+c]
		key := packColor(sample)
		id, ok := seen[key]
		if !ok {
			id = int32(len(p.counts))
			seen[key] = id
			for _, v := range sample {
				p.colors = append(p.colors, float64(v))
			}
			p.counts = append(p.counts, 0)
		}
		p.counts[id]++
		p.index[i] = id
	}
	return p
}

func (p palette) len() int {
	return len(p.counts)
}

func (p palette) color(i int) []float64 {
	return p.colors[i*p.channels : (i+1)*p.channels]
}

// seedCentroids runs count-weighted k-means++ initialization
func (p palette) seedCentroids(k int, rng *rand.Rand) []float64 {
	c := p.channels
	centroids := make([]float64, 0, k*c)
	centroids = append(centroids, p.color(pickWeighted(rng, p.counts))...)

	dist := make([]float64, p.len())
	for i := range dist {
		dist[i] = sqDist(p.color(i), centroids)
	}

	weights := make([]float64, p.len())
	for len(centroids) < k*c {
		for i := range weights {
			weights[i] = dist[i] * p.counts[i]
		}
		next := pickWeighted(rng, weights)
		if next < 0 {
			// every color already is a centroid
			break
		}
		centroids = append(centroids, p.color(next)...)
		added := centroids[len(centroids)-c:]
		for i := range dist {
			if d := sqDist(p.color(i), added); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// cluster refines centroids in place with Lloyd iterations and returns the
// cluster of each distinct color
func (p palette) cluster(centroids []float64, maxIterations int) []int {
	c := p.channels
	k := len(centroids) / c

	assign := make([]int, p.len())
	for i := range assign {
		assign[i] = -1
	}
	sums := make([]float64, len(centroids))
	weights := make([]float64, k)

	for iter := 0; iter < maxIterations; iter++ {
		changed := 0
		for i := range assign {
			if best := nearest(p.color(i), centroids, c); best != assign[i] {
				assign[i] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}

		clear(sums)
		clear(weights)
		for i, j := range assign {
			w := p.counts[i]
			weights[j] += w
			for ch, v := range p.color(i) {
				sums[j*c+ch] += v * w
			}
		}
		for j := 0; j < k; j++ {
			// empty clusters keep their previous centroid
			if weights[j] == 0 {
				continue
			}
			for ch := 0; ch < c; ch++ {
				centroids[j*c+ch] = sums[j*c+ch] / weights[j]
			}
		}
	}
	return assign
}

func nearest(color, centroids []float64, c int) int {
	best, bestDist := 0, math.Inf(1)
	for j := 0; j*c < len(centroids); j++ {
		if d := sqDist(color, centroids[j*c:j*c+c]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func pickWeighted(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}

	r := rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		r -= w
		if r < 0 {
			return i
		}
	}
	return last
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

func packColor(sample []uint8) uint32 {
	var key uint32
	for _, v := range sample {
		key = key<<8 | uint32(v)
	}
	return key
}

func roundSample(v float64) uint8 {
	switch r := math.Round(v); {
	case r <= 0:
		return 0
	case r >= 255:
		return 255
	default:
		return uint8(r)
	}
}
