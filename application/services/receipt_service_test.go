package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"homegraph/application/ports"
	"homegraph/domain/inventory"
	apperrors "homegraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReceipt(ext *fakeExtractor, led *fakeLedger, repo *fakeRepo) *ReceiptService {
	return NewReceiptService(ext, led, repo, nil, zap.NewNop())
}

func TestIngestReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("empty upload is a validation error", func(t *testing.T) {
		svc := newTestReceipt(&fakeExtractor{}, newFakeLedger(), newFakeRepo())
		_, err := svc.IngestReceipt(ctx, nil)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("extractor failure is fatal", func(t *testing.T) {
		svc := newTestReceipt(&fakeExtractor{err: errors.New("ocr down")}, newFakeLedger(), newFakeRepo())
		_, err := svc.IngestReceipt(ctx, []byte("img"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})

	t.Run("line items land in the unknown room", func(t *testing.T) {
		repo := newFakeRepo()
		ext := &fakeExtractor{lines: []ports.ReceiptLine{
			{Name: "Office Chair", Quantity: 2, Price: 149.99, PurchaseDate: "03/15/2026"},
			{Name: "Desk Lamp", Quantity: 1, Price: 79.99},
		}}
		svc := newTestReceipt(ext, newFakeLedger(), repo)

		res, err := svc.IngestReceipt(ctx, []byte("img"))
		require.NoError(t, err)
		assert.Equal(t, inventory.UnknownRoom, res.Room)
		assert.Equal(t, 2, res.Detections)
		assert.Equal(t, 2, res.Kept)
		require.Len(t, res.Items, 2)

		for _, item := range res.Items {
			assert.Equal(t, IngestStatusAdded, item.Status)
		}
		require.Len(t, repo.items, 2)
		for _, item := range repo.items {
			assert.Equal(t, inventory.UnknownRoom, item.RoomName)
			assert.Nil(t, item.Embedding)
		}

		chair := repo.items["L-1"]
		require.NotNil(t, chair)
		assert.Equal(t, "office chair ($149.99)", chair.Name)
		assert.Equal(t, 2, chair.Quantity)
		require.NotNil(t, chair.PurchaseDate)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *chair.PurchaseDate)
	})

	t.Run("ledger failure records the line and continues", func(t *testing.T) {
		repo := newFakeRepo()
		led := newFakeLedger()
		led.err = errors.New("ledger unreachable")
		ext := &fakeExtractor{lines: []ports.ReceiptLine{
			{Name: "Chair", Quantity: 1, Price: 10},
			{Name: "Lamp", Quantity: 1, Price: 20},
		}}
		svc := newTestReceipt(ext, led, repo)

		res, err := svc.IngestReceipt(ctx, []byte("img"))
		require.NoError(t, err)
		require.Len(t, res.Items, 2)
		for _, item := range res.Items {
			assert.Equal(t, IngestStatusFailed, item.Status)
			assert.NotEmpty(t, item.Error)
		}
		assert.Empty(t, repo.items)
	})

	t.Run("repeat line increments the same item", func(t *testing.T) {
		repo := newFakeRepo()
		ext := &fakeExtractor{lines: []ports.ReceiptLine{
			{Name: "Chair", Quantity: 1, Price: 149.99},
		}}
		svc := newTestReceipt(ext, newFakeLedger(), repo)

		_, err := svc.IngestReceipt(ctx, []byte("img"))
		require.NoError(t, err)
		res, err := svc.IngestReceipt(ctx, []byte("img"))
		require.NoError(t, err)

		assert.Equal(t, "incremented", res.Items[0].Action)
		require.Len(t, repo.items, 1)
		assert.Equal(t, 2, repo.items["L-1"].Quantity)
	})
}

func TestParseReceiptDate(t *testing.T) {
	for _, raw := range []string{"03/15/2026", "2026-03-15", "03-15-2026"} {
		got := parseReceiptDate(raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *got, raw)
	}
	assert.Nil(t, parseReceiptDate(""))
	assert.Nil(t, parseReceiptDate("March 15th"))
}
