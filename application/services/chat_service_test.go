package services

import (
	"context"
	"errors"
	"testing"

	"homegraph/domain/inventory"
	apperrors "homegraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strptr(s string) *string { return &s }

func TestBuildContext(t *testing.T) {
	t.Run("groups by room in first-encounter order", func(t *testing.T) {
		items := []inventory.RankedItem{
			{ItemID: "1", Name: "chair ($149.99)", Price: 149.99, Quantity: 2, RoomName: "kitchen", Score: 0.9},
			{ItemID: "2", Name: "lamp ($79.99)", Price: 79.99, Quantity: 1, RoomName: "office", Score: 0.8},
			{ItemID: "3", Name: "table ($299.99)", Price: 299.99, Quantity: 1, RoomName: "kitchen", Score: 0.7},
		}

		got := BuildContext(items)
		want := "Room: kitchen\n" +
			"- 2 chair ($149.99) (priced at $149.99 each)\n" +
			"- 1 table ($299.99) (priced at $299.99 each)\n" +
			"\n" +
			"Room: office\n" +
			"- 1 lamp ($79.99) (priced at $79.99 each)\n"
		assert.Equal(t, want, got)
	})

	t.Run("includes descriptions when present", func(t *testing.T) {
		items := []inventory.RankedItem{
			{ItemID: "1", Name: "vase ($29.99)", Price: 29.99, Quantity: 1, RoomName: "hallway",
				Description: strptr("a blue ceramic vase"), Score: 0.9},
		}

		got := BuildContext(items)
		assert.Contains(t, got, "- 1 vase ($29.99) (priced at $29.99 each)\n  a blue ceramic vase\n")
	})

	t.Run("empty input renders empty context", func(t *testing.T) {
		assert.Equal(t, "", BuildContext(nil))
	})
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("passes rendered context to completer", func(t *testing.T) {
		repo := newFakeRepo()
		seedItem(repo, "A", "chair ($149.99)", "kitchen", []float64{1, 0, 0}, 2, 149.99)
		emb := &fakeEmbedder{textVecs: map[string][]float64{"where are my chairs": {1, 0, 0}}}
		completer := &fakeCompleter{answer: "You have 2 chairs in the kitchen."}
		search := NewSearchService(repo, emb, nil, zap.NewNop())
		svc := NewChatService(search, completer, zap.NewNop())

		got, err := svc.Ask(ctx, "where are my chairs", 5)
		require.NoError(t, err)
		assert.Equal(t, "You have 2 chairs in the kitchen.", got.Answer)
		require.Len(t, got.Sources, 1)
		assert.Equal(t, "A", got.Sources[0].ItemID)
		assert.Equal(t, "where are my chairs", completer.lastQuery)
		assert.Contains(t, completer.lastContext, "Room: kitchen")
		assert.Contains(t, completer.lastContext, "- 2 chair ($149.99) (priced at $149.99 each)")
	})

	t.Run("zero matches tells the assistant so", func(t *testing.T) {
		completer := &fakeCompleter{answer: "I could not find anything."}
		search := NewSearchService(newFakeRepo(), &fakeEmbedder{}, nil, zap.NewNop())
		svc := NewChatService(search, completer, zap.NewNop())

		got, err := svc.Ask(ctx, "do I own a kayak", 5)
		require.NoError(t, err)
		assert.Equal(t, "No matching items were found in the inventory.", completer.lastContext)
		assert.Empty(t, got.Sources)
	})

	t.Run("search validation error propagates", func(t *testing.T) {
		search := NewSearchService(newFakeRepo(), &fakeEmbedder{}, nil, zap.NewNop())
		svc := NewChatService(search, &fakeCompleter{}, zap.NewNop())

		_, err := svc.Ask(ctx, "", 5)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("completer failure is an upstream error", func(t *testing.T) {
		search := NewSearchService(newFakeRepo(), &fakeEmbedder{}, nil, zap.NewNop())
		svc := NewChatService(search, &fakeCompleter{err: errors.New("rate limited")}, zap.NewNop())

		_, err := svc.Ask(ctx, "anything", 5)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})
}
