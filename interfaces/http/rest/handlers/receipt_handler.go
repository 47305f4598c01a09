package handlers

import (
	"net/http"

	"homegraph/application/services"
	"homegraph/pkg/common"
	apperrors "homegraph/pkg/errors"

	"go.uber.org/zap"
)

// ReceiptHandler handles receipt ingestion requests.
type ReceiptHandler struct {
	receipts *services.ReceiptService
	logger   *zap.Logger
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receipts *services.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts: receipts,
		logger:   logger,
	}
}

// IngestReceipt extracts line items from an uploaded receipt image and
// ingests each through the accumulation pipeline.
func (h *ReceiptHandler) IngestReceipt(w http.ResponseWriter, r *http.Request) {
	image, err := readUpload(r)
	if err != nil {
		respondError(w, r, h.logger, apperrors.NewValidationError("unreadable upload"))
		return
	}

	result, err := h.receipts.IngestReceipt(r.Context(), image)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
