package services

import (
	"context"
	"sort"

	"homegraph/application/ports"
	"homegraph/domain/inventory"
	apperrors "homegraph/pkg/errors"
	"homegraph/pkg/similarity"

	"go.uber.org/zap"
)

// Blended score weights and cutoff. Item identity dominates; room
// context breaks near-ties or surfaces context-only matches.
const (
	itemWeight     = 0.7
	roomWeight     = 0.3
	scoreThreshold = 0.2

	// DefaultSearchLimit bounds result sets when the caller does not
	// specify a limit.
	DefaultSearchLimit = 5
)

// SearchService ranks catalog items against a free-text query with a
// blended item+room embedding similarity. The scan is deliberately
// linear: the blend mixes two embedding spaces that no single
// nearest-neighbor index can jointly rank.
type SearchService struct {
	repo     ports.InventoryRepository
	embedder ports.Embedder
	metrics  ports.MetricsRecorder // optional
	logger   *zap.Logger
}

// NewSearchService creates the semantic search service.
func NewSearchService(
	repo ports.InventoryRepository,
	embedder ports.Embedder,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		repo:     repo,
		embedder: embedder,
		metrics:  metrics,
		logger:   logger,
	}
}

// Search returns at most limit items ranked descending by blended
// score, every one strictly above the score threshold. Zero matches is
// an empty slice, never an error.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]inventory.RankedItem, error) {
	if query == "" {
		return nil, apperrors.NewValidationError("empty query")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, apperrors.NewExternalError("embedding provider", err)
	}

	items, err := s.repo.ListItemsWithEmbeddings(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list embedded items", err)
	}

	rooms, err := s.roomEmbeddings(ctx, items)
	if err != nil {
		// Room context is a secondary signal; rank on item similarity
		// alone rather than failing the search.
		s.logger.Warn("Room lookup failed, ranking without room context", zap.Error(err))
		rooms = map[string]inventory.Room{}
	}

	ranked := make([]inventory.RankedItem, 0, len(items))
	for _, item := range items {
		itemSim := similarity.Cosine(queryVec, item.Embedding)
		roomSim := 0.0
		if room, ok := rooms[item.RoomName]; ok {
			roomSim = similarity.Cosine(queryVec, room.Embedding)
		}

		score := itemWeight*itemSim + roomWeight*roomSim
		if score <= scoreThreshold {
			continue
		}

		ranked = append(ranked, inventory.RankedItem{
			ItemID:      item.ItemID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Quantity:    item.Quantity,
			RoomName:    item.RoomName,
			Score:       score,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if s.metrics != nil {
		s.metrics.CountSearch(ctx, len(ranked))
	}
	s.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("candidates", len(items)),
		zap.Int("results", len(ranked)),
	)

	return ranked, nil
}

// roomEmbeddings batch-fetches the rooms referenced by the candidates.
func (s *SearchService) roomEmbeddings(ctx context.Context, items []inventory.Item) (map[string]inventory.Room, error) {
	seen := make(map[string]bool, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.RoomName == "" || seen[item.RoomName] {
			continue
		}
		seen[item.RoomName] = true
		names = append(names, item.RoomName)
	}
	if len(names) == 0 {
		return map[string]inventory.Room{}, nil
	}
	return s.repo.GetRoomsByName(ctx, names)
}
