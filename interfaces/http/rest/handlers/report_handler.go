package handlers

import (
	"net/http"

	"homegraph/application/ports"
	"homegraph/pkg/common"
	apperrors "homegraph/pkg/errors"

	"go.uber.org/zap"
)

// ReportHandler serves the ledger's inventory valuation report.
type ReportHandler struct {
	ledger ports.Ledger
	logger *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(ledger ports.Ledger, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		ledger: ledger,
		logger: logger,
	}
}

// ValuationReport returns quantity and value per ledger line.
func (h *ReportHandler) ValuationReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.ValuationReport(r.Context())
	if err != nil {
		respondError(w, r, h.logger, apperrors.NewExternalError("ledger", err))
		return
	}

	total := 0.0
	for _, row := range rows {
		total += row.Value
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"rows":        rows,
		"total_value": total,
	})
}
