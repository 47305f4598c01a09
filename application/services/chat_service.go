package services

import (
	"context"
	"fmt"
	"strings"

	"homegraph/application/ports"
	"homegraph/domain/inventory"
	apperrors "homegraph/pkg/errors"

	"go.uber.org/zap"
)

// ChatService answers natural-language questions about the catalog by
// retrieving ranked items and handing a rendered context to the chat
// completion service. It performs no ranking of its own.
type ChatService struct {
	search    *SearchService
	completer ports.ChatCompleter
	logger    *zap.Logger
}

// NewChatService creates the retrieval-augmented chat service.
func NewChatService(search *SearchService, completer ports.ChatCompleter, logger *zap.Logger) *ChatService {
	return &ChatService{
		search:    search,
		completer: completer,
		logger:    logger,
	}
}

// ChatAnswer is the response to one question.
type ChatAnswer struct {
	Answer  string                 `json:"answer"`
	Sources []inventory.RankedItem `json:"sources"`
}

// Ask retrieves the catalog context for the query and asks the chat
// service. Zero search matches is not an error; the assistant is told
// the catalog had nothing relevant.
func (s *ChatService) Ask(ctx context.Context, query string, limit int) (*ChatAnswer, error) {
	results, err := s.search.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	contextText := BuildContext(results)
	if len(results) == 0 {
		contextText = "No matching items were found in the inventory."
	}

	answer, err := s.completer.Complete(ctx, contextText, query)
	if err != nil {
		return nil, apperrors.NewExternalError("chat service", err)
	}

	s.logger.Debug("Chat answered",
		zap.String("query", query),
		zap.Int("sources", len(results)),
	)

	return &ChatAnswer{Answer: answer, Sources: results}, nil
}

// BuildContext renders ranked items into the textual context the chat
// service consumes. Items are grouped by room in the order rooms first
// appear in the ranked list; each item contributes a quantity/name/
// price line plus its description when present.
func BuildContext(items []inventory.RankedItem) string {
	var b strings.Builder
	var roomOrder []string
	byRoom := make(map[string][]inventory.RankedItem)

	for _, item := range items {
		if _, seen := byRoom[item.RoomName]; !seen {
			roomOrder = append(roomOrder, item.RoomName)
		}
		byRoom[item.RoomName] = append(byRoom[item.RoomName], item)
	}

	for i, room := range roomOrder {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Room: %s\n", room)
		for _, item := range byRoom[room] {
			fmt.Fprintf(&b, "- %d %s (priced at $%.2f each)\n", item.Quantity, item.Name, item.Price)
			if item.Description != nil && *item.Description != "" {
				fmt.Fprintf(&b, "  %s\n", *item.Description)
			}
		}
	}

	return b.String()
}
