package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func box(x, y, w, h float64) BoundingBox {
	return BoundingBox{X: x, Y: y, Width: w, Height: h}
}

func TestIoU(t *testing.T) {
	t.Run("identical boxes", func(t *testing.T) {
		b := box(0.1, 0.1, 0.4, 0.4)
		assert.InDelta(t, 1.0, IoU(b, b), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := box(0.0, 0.0, 0.5, 0.5)
		b := box(0.25, 0.25, 0.5, 0.5)
		assert.Equal(t, IoU(a, b), IoU(b, a))
	})

	t.Run("disjoint boxes", func(t *testing.T) {
		a := box(0.0, 0.0, 0.2, 0.2)
		b := box(0.5, 0.5, 0.2, 0.2)
		assert.Equal(t, 0.0, IoU(a, b))
	})

	t.Run("overlap on one axis only", func(t *testing.T) {
		a := box(0.0, 0.0, 0.5, 0.2)
		b := box(0.0, 0.5, 0.5, 0.2)
		assert.Equal(t, 0.0, IoU(a, b))
	})

	t.Run("partial overlap", func(t *testing.T) {
		// Two unit-quarter boxes offset by half their size: intersection
		// 0.25*0.25, union 2*0.25 - 0.0625.
		a := box(0.0, 0.0, 0.5, 0.5)
		b := box(0.25, 0.25, 0.5, 0.5)
		assert.InDelta(t, 0.0625/(0.5-0.0625), IoU(a, b), 1e-9)
	})

	t.Run("degenerate empty boxes", func(t *testing.T) {
		a := box(0.3, 0.3, 0, 0)
		assert.Equal(t, 0.0, IoU(a, a))
	})
}

func TestSuppress(t *testing.T) {
	b1 := box(0.10, 0.10, 0.40, 0.40)
	b2 := box(0.12, 0.12, 0.40, 0.40) // heavy overlap with b1

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Suppress(nil, DefaultIoUThreshold))
	})

	t.Run("single detection unchanged", func(t *testing.T) {
		in := []Detection{{ClassLabel: "chair", Confidence: 0.9, BoundingBox: b1, Quantity: 1}}
		assert.Equal(t, in, Suppress(in, DefaultIoUThreshold))
	})

	t.Run("same class overlapping keeps highest confidence", func(t *testing.T) {
		in := []Detection{
			{ClassLabel: "chair", Confidence: 0.6, BoundingBox: b2},
			{ClassLabel: "chair", Confidence: 0.9, BoundingBox: b1},
		}
		out := Suppress(in, DefaultIoUThreshold)
		assert.Len(t, out, 1)
		assert.Equal(t, 0.9, out[0].Confidence)
	})

	t.Run("different classes never suppressed", func(t *testing.T) {
		in := []Detection{
			{ClassLabel: "chair", Confidence: 0.9, BoundingBox: b1},
			{ClassLabel: "table", Confidence: 0.85, BoundingBox: b1},
		}
		out := Suppress(in, DefaultIoUThreshold)
		assert.Len(t, out, 2)
	})

	t.Run("below threshold overlap keeps both", func(t *testing.T) {
		in := []Detection{
			{ClassLabel: "chair", Confidence: 0.9, BoundingBox: box(0.0, 0.0, 0.2, 0.2)},
			{ClassLabel: "chair", Confidence: 0.8, BoundingBox: box(0.5, 0.5, 0.2, 0.2)},
		}
		out := Suppress(in, DefaultIoUThreshold)
		assert.Len(t, out, 2)
	})

	t.Run("equal confidence resolved by input order", func(t *testing.T) {
		first := Detection{ClassLabel: "lamp", Confidence: 0.7, BoundingBox: b1, Quantity: 1}
		second := Detection{ClassLabel: "lamp", Confidence: 0.7, BoundingBox: b2, Quantity: 2}
		out := Suppress([]Detection{first, second}, DefaultIoUThreshold)
		assert.Len(t, out, 1)
		assert.Equal(t, first, out[0])
	})

	t.Run("input slice not mutated", func(t *testing.T) {
		in := []Detection{
			{ClassLabel: "chair", Confidence: 0.6, BoundingBox: b2},
			{ClassLabel: "chair", Confidence: 0.9, BoundingBox: b1},
		}
		Suppress(in, DefaultIoUThreshold)
		assert.Equal(t, 0.6, in[0].Confidence)
	})
}
