package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-transform-pipeline/internal/core"
)

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry(Settings{})
	assert.Equal(t, []string{QuantizeName, ResizeName, BlurName, EdgeName}, r.Names())

	for _, name := range r.Names() {
		a, ok := r.Get(name)
		require.True(t, ok)
		assert.Equal(t, name, a.GetName())
		assert.NotEmpty(t, a.GetTitle())
		assert.NotEmpty(t, a.GetDescription())
	}
}

func TestRegistry_Build(t *testing.T) {
	r := NewRegistry(Settings{Seed: 99, MaxIterations: 50})

	tests := []struct {
		name    string
		algo    string
		values  map[string]int
		want    Params
		wantErr bool
	}{
		{"quantize carries settings", QuantizeName, map[string]int{"k": 4}, QuantizeParams{K: 4, Seed: 99, MaxIterations: 50}, false},
		{"quantize zero k", QuantizeName, map[string]int{"k": 0}, nil, true},
		{"resize", ResizeName, map[string]int{"width": 10, "height": 20}, ResizeParams{Width: 10, Height: 20}, false},
		{"resize missing height", ResizeName, map[string]int{"width": 10}, nil, true},
		{"resize zero width", ResizeName, map[string]int{"width": 0, "height": 5}, nil, true},
		{"blur zero radius", BlurName, map[string]int{"radius": 0}, BlurParams{Radius: 0}, false},
		{"blur negative", BlurName, map[string]int{"radius": -1}, nil, true},
		{"edges ignore values", EdgeName, nil, EdgeParams{}, false},
		{"unknown", "sharpen", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Build(tt.algo, tt.values)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidParameter)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParameterInfo_HasDefault(t *testing.T) {
	r := NewRegistry(Settings{})

	q, _ := r.Get(QuantizeName)
	assert.True(t, q.GetParameterInfo()[0].HasDefault())

	rs, _ := r.Get(ResizeName)
	assert.False(t, rs.GetParameterInfo()[0].HasDefault())

	b, _ := r.Get(BlurName)
	assert.True(t, b.GetParameterInfo()[0].HasDefault())
}
