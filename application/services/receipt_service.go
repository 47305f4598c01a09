package services

import (
	"context"
	"time"

	"homegraph/application/ports"
	"homegraph/domain/inventory"
	apperrors "homegraph/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService routes receipt images through the same accumulation
// contract as photo detections: extract line items, apply each to the
// ledger, then upsert with the room fixed to "unknown".
type ReceiptService struct {
	extractor ports.ReceiptExtractor
	ledger    ports.Ledger
	repo      ports.InventoryRepository
	events    ports.EventPublisher // optional
	logger    *zap.Logger
}

// NewReceiptService creates the receipt ingestion pipeline.
func NewReceiptService(
	extractor ports.ReceiptExtractor,
	ledger ports.Ledger,
	repo ports.InventoryRepository,
	events ports.EventPublisher,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		extractor: extractor,
		ledger:    ledger,
		repo:      repo,
		events:    events,
		logger:    logger,
	}
}

// IngestReceipt extracts and ingests every line item on a receipt.
// Extraction failure aborts the request; per-line failures are recorded
// and processing continues.
func (s *ReceiptService) IngestReceipt(ctx context.Context, imageBytes []byte) (*IngestResult, error) {
	if len(imageBytes) == 0 {
		return nil, apperrors.NewValidationError("empty receipt upload")
	}

	lines, err := s.extractor.ExtractLineItems(ctx, imageBytes)
	if err != nil {
		return nil, apperrors.NewExternalError("receipt extractor", err)
	}

	// Receipts have no suppression stage, so every extracted line is
	// both a detection and a kept one.
	result := &IngestResult{
		Room:       inventory.UnknownRoom,
		Detections: len(lines),
		Kept:       len(lines),
		Items:      make([]ItemIngestResult, 0, len(lines)),
	}

	for _, rl := range lines {
		result.Items = append(result.Items, s.ingestLine(ctx, rl))
	}

	return result, nil
}

func (s *ReceiptService) ingestLine(ctx context.Context, rl ports.ReceiptLine) ItemIngestResult {
	line := inventory.LineItemFromReceipt(rl.Name, rl.Price, rl.Quantity)

	ledgerRes, err := s.ledger.ApplyObservation(ctx, line)
	if err != nil {
		s.logger.Error("Ledger apply failed for receipt line",
			zap.String("item", line.Name),
			zap.Error(err),
		)
		return ItemIngestResult{
			ClassLabel: rl.Name,
			Name:       line.Name,
			Status:     IngestStatusFailed,
			Error:      err.Error(),
		}
	}

	obs := inventory.Observation{
		ItemID:       ledgerRes.ItemID,
		Name:         line.Name,
		SKU:          line.SKU,
		Price:        line.Price,
		Quantity:     line.Quantity,
		AddDate:      time.Now().UTC(),
		PurchaseDate: parseReceiptDate(rl.PurchaseDate),
		Room:         inventory.UnknownRoom,
	}

	if err := s.repo.UpsertLineItem(ctx, obs); err != nil {
		s.logger.Error("Graph upsert failed for receipt line",
			zap.String("itemID", obs.ItemID),
			zap.Error(err),
		)
		return ItemIngestResult{
			ClassLabel: rl.Name,
			Name:       line.Name,
			ItemID:     ledgerRes.ItemID,
			Status:     IngestStatusFailed,
			Error:      err.Error(),
		}
	}

	s.publishLine(ctx, obs)

	return ItemIngestResult{
		ClassLabel: rl.Name,
		Name:       line.Name,
		ItemID:     ledgerRes.ItemID,
		Action:     ledgerRes.Action,
		Quantity:   line.Quantity,
		Price:      line.Price,
		Status:     IngestStatusAdded,
	}
}

func (s *ReceiptService) publishLine(ctx context.Context, obs inventory.Observation) {
	if s.events == nil {
		return
	}
	event := ports.ObservationEvent{
		ObservationID: uuid.New().String(),
		ItemID:        obs.ItemID,
		Name:          obs.Name,
		Room:          obs.Room,
		Quantity:      obs.Quantity,
		Source:        "receipt",
		Price:         obs.Price,
	}
	if err := s.events.PublishObservation(ctx, event); err != nil {
		s.logger.Warn("Observation event publish failed",
			zap.String("itemID", obs.ItemID),
			zap.Error(err),
		)
	}
}

// parseReceiptDate accepts the date formats receipts commonly carry.
func parseReceiptDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"01/02/2006", "2006-01-02", "01-02-2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
