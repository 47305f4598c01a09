package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	t.Run("self similarity is one", func(t *testing.T) {
		v := []float64{0.3, -1.2, 4.5}
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		v := []float64{1, 2, 3}
		w := []float64{-1, -2, -3}
		assert.InDelta(t, -1.0, Cosine(v, w), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	})

	t.Run("zero vector is no signal", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float64{1, 2, 3}, []float64{0, 0, 0}))
	})

	t.Run("nil and empty inputs", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine(nil, []float64{1}))
		assert.Equal(t, 0.0, Cosine([]float64{1}, nil))
		assert.Equal(t, 0.0, Cosine([]float64{}, []float64{}))
	})

	t.Run("mismatched dimensions", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float64{1, 2}, []float64{1, 2, 3}))
	})
}
