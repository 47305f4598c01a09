package handlers

import (
	"net/http"

	"homegraph/application/services"
	"homegraph/pkg/common"
	apperrors "homegraph/pkg/errors"

	"go.uber.org/zap"
)

// PhotoHandler handles photo ingestion requests.
type PhotoHandler struct {
	ingestion *services.IngestionService
	logger    *zap.Logger
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(ingestion *services.IngestionService, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// AnalyzePhoto runs the full ingestion pipeline over one uploaded
// photo and reports the per-item outcomes.
func (h *PhotoHandler) AnalyzePhoto(w http.ResponseWriter, r *http.Request) {
	image, err := readUpload(r)
	if err != nil {
		respondError(w, r, h.logger, apperrors.NewValidationError("unreadable upload"))
		return
	}

	result, err := h.ingestion.AnalyzeImage(r.Context(), image)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
