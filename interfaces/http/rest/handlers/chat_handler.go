package handlers

import (
	"net/http"

	"homegraph/application/services"
	"homegraph/pkg/auth"
	"homegraph/pkg/common"
	apperrors "homegraph/pkg/errors"
	"homegraph/pkg/utils"

	"go.uber.org/zap"
)

// ChatHandler handles retrieval-augmented chat requests.
type ChatHandler struct {
	chat   *services.ChatService
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

type chatRequest struct {
	Query string `json:"query" validate:"required,min=1,max=2000"`
	Limit int    `json:"limit" validate:"omitempty,gt=0,lte=25"`
}

// Ask answers a natural-language question about the inventory.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		respondError(w, r, h.logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	answer, err := h.chat.Ask(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		h.logger.Debug("Chat question answered",
			zap.String("userID", user.UserID),
			zap.Int("sources", len(answer.Sources)),
		)
	}

	common.RespondJSON(w, http.StatusOK, answer)
}
