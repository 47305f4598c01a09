package inventory

import (
	"testing"

	"homegraph/domain/detection"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoom(t *testing.T) {
	assert.Equal(t, "kitchen", NormalizeRoom("Kitchen"))
	assert.Equal(t, "living room", NormalizeRoom("  LIVING ROOM "))
	assert.Equal(t, UnknownRoom, NormalizeRoom("spaceship"))
	assert.Equal(t, UnknownRoom, NormalizeRoom(""))
}

func TestIsPerson(t *testing.T) {
	assert.True(t, IsPerson("person"))
	assert.True(t, IsPerson("Woman"))
	assert.False(t, IsPerson("chair"))
}

func TestLineItemFromDetection(t *testing.T) {
	t.Run("known class uses default price", func(t *testing.T) {
		li := LineItemFromDetection(detection.Detection{ClassLabel: "Chair", Quantity: 2})
		assert.Equal(t, "chair ($149.99)", li.Name)
		assert.Equal(t, "chair-149", li.SKU)
		assert.Equal(t, 149.99, li.Price)
		assert.Equal(t, 2, li.Quantity)
	})

	t.Run("unknown class falls back", func(t *testing.T) {
		li := LineItemFromDetection(detection.Detection{ClassLabel: "sink"})
		assert.Equal(t, "sink ($10.00)", li.Name)
		assert.Equal(t, 10.00, li.Price)
		assert.Equal(t, 1, li.Quantity)
	})

	t.Run("multi word class sku", func(t *testing.T) {
		li := LineItemFromDetection(detection.Detection{ClassLabel: "potted plant", Quantity: 1})
		assert.Equal(t, "potted-plant-039", li.SKU)
	})
}

func TestLineItemFromReceipt(t *testing.T) {
	li := LineItemFromReceipt("Desk Lamp", 24.50, 0)
	assert.Equal(t, "desk lamp ($24.50)", li.Name)
	assert.Equal(t, 1, li.Quantity)

	li = LineItemFromReceipt("widget", 0, 3)
	assert.Equal(t, 10.00, li.Price)
	assert.Equal(t, 3, li.Quantity)
}
