package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"homegraph/domain/inventory"
	apperrors "homegraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedItem(repo *fakeRepo, id, name, room string, embedding []float64, qty int, price float64) {
	repo.items[id] = &inventory.Item{
		ItemID:    id,
		Name:      name,
		Price:     price,
		Quantity:  qty,
		RoomName:  room,
		Embedding: embedding,
		AddDate:   time.Now().UTC(),
	}
}

func seedRoom(repo *fakeRepo, name string, embedding []float64) {
	repo.rooms[name] = &inventory.Room{Name: name, Embedding: embedding}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query rejected", func(t *testing.T) {
		svc := NewSearchService(newFakeRepo(), &fakeEmbedder{}, nil, zap.NewNop())
		_, err := svc.Search(ctx, "", 5)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("embedding provider failure surfaces", func(t *testing.T) {
		svc := NewSearchService(newFakeRepo(), &fakeEmbedder{textErr: errors.New("down")}, nil, zap.NewNop())
		_, err := svc.Search(ctx, "red chair", 5)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})

	t.Run("blended score ranks and truncates", func(t *testing.T) {
		repo := newFakeRepo()
		// Query vector (1,0,0); room "kitchen" also (1,0,0).
		seedItem(repo, "A", "chair", "kitchen", []float64{1, 0, 0}, 2, 149.99)   // 0.7*1 + 0.3*1 = 1.0
		seedItem(repo, "B", "lamp", "office", []float64{0, 1, 0}, 1, 79.99)      // 0.7*0 + 0*0.3 = 0 → dropped
		seedItem(repo, "C", "table", "kitchen", []float64{0.5, 0.5, 0}, 1, 299.99) // 0.7*0.707 + 0.3*1 ≈ 0.795
		seedRoom(repo, "kitchen", []float64{1, 0, 0})

		emb := &fakeEmbedder{textVecs: map[string][]float64{"wooden furniture": {1, 0, 0}}}
		svc := NewSearchService(repo, emb, nil, zap.NewNop())

		got, err := svc.Search(ctx, "wooden furniture", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "A", got[0].ItemID)
		assert.Equal(t, "C", got[1].ItemID)
		assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	})

	t.Run("scores at or below threshold never appear", func(t *testing.T) {
		repo := newFakeRepo()
		// itemSim ≈ 0.2857 → combined 0.7*0.2857 = 0.2 exactly; must be dropped.
		seedItem(repo, "edge", "rug", "hallway", []float64{0.2857142857142857, 0.9583148474999099, 0}, 1, 199.99)
		emb := &fakeEmbedder{textVecs: map[string][]float64{"rug": {1, 0, 0}}}
		svc := NewSearchService(repo, emb, nil, zap.NewNop())

		got, err := svc.Search(ctx, "rug", 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("room without embedding contributes no signal", func(t *testing.T) {
		repo := newFakeRepo()
		seedItem(repo, "A", "chair", "garage", []float64{1, 0, 0}, 1, 149.99)
		seedRoom(repo, "garage", nil)
		emb := &fakeEmbedder{textVecs: map[string][]float64{"chair": {1, 0, 0}}}
		svc := NewSearchService(repo, emb, nil, zap.NewNop())

		got, err := svc.Search(ctx, "chair", 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 0.7, got[0].Score, 1e-9)
	})

	t.Run("ties broken by item id", func(t *testing.T) {
		repo := newFakeRepo()
		seedItem(repo, "Z", "vase", "attic", []float64{1, 0, 0}, 1, 29.99)
		seedItem(repo, "A", "vase", "attic", []float64{1, 0, 0}, 1, 29.99)
		emb := &fakeEmbedder{textVecs: map[string][]float64{"vase": {1, 0, 0}}}
		svc := NewSearchService(repo, emb, nil, zap.NewNop())

		got, err := svc.Search(ctx, "vase", 5)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "A", got[0].ItemID)
		assert.Equal(t, "Z", got[1].ItemID)
	})

	t.Run("no matches is empty result not error", func(t *testing.T) {
		svc := NewSearchService(newFakeRepo(), &fakeEmbedder{}, nil, zap.NewNop())
		got, err := svc.Search(ctx, "anything", 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("default limit applied", func(t *testing.T) {
		repo := newFakeRepo()
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			seedItem(repo, id, "chair "+id, "kitchen", []float64{1, 0, 0}, 1, 10)
		}
		emb := &fakeEmbedder{textVecs: map[string][]float64{"chair": {1, 0, 0}}}
		svc := NewSearchService(repo, emb, nil, zap.NewNop())

		got, err := svc.Search(ctx, "chair", 0)
		require.NoError(t, err)
		assert.Len(t, got, DefaultSearchLimit)
	})
}

func TestBlendedScoreExact(t *testing.T) {
	// itemSim 0.9, roomSim 0.5 must blend to exactly 0.78.
	assert.InDelta(t, 0.78, itemWeight*0.9+roomWeight*0.5, 1e-12)
}
