package services

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // registered for uploaded PNG decoding
	"time"

	"homegraph/application/ports"
	"homegraph/domain/detection"
	"homegraph/domain/inventory"
	apperrors "homegraph/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Item ingestion outcomes reported per detection.
const (
	IngestStatusAdded   = "added"
	IngestStatusSkipped = "skipped"
	IngestStatusFailed  = "failed"
)

// ItemIngestResult reports the outcome for one consolidated detection.
// A batch never fails opaquely: every detection gets a row.
type ItemIngestResult struct {
	ClassLabel string  `json:"classLabel"`
	Name       string  `json:"name,omitempty"`
	ItemID     string  `json:"item_id,omitempty"`
	Action     string  `json:"action,omitempty"`
	Quantity   int     `json:"quantity,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
}

// IngestResult is the response for one analyzed photograph.
type IngestResult struct {
	Room       string             `json:"room"`
	Detections int                `json:"detections"`
	Kept       int                `json:"kept"`
	Items      []ItemIngestResult `json:"items"`
}

// IngestionService runs the photo pipeline: detect, consolidate,
// classify the room, then ledger-apply and graph-upsert each kept
// detection strictly in order. Per-detection failures are recorded and
// the pipeline continues; only detector and image-decode failures abort
// the request.
type IngestionService struct {
	detector     ports.ObjectDetector
	classifier   ports.RoomClassifier
	embedder     ports.Embedder
	ledger       ports.Ledger
	repo         ports.InventoryRepository
	events       ports.EventPublisher  // optional
	metrics      ports.MetricsRecorder // optional
	logger       *zap.Logger
	iouThreshold float64
}

// NewIngestionService creates the photo ingestion pipeline. events and
// metrics may be nil when the corresponding feature is disabled.
func NewIngestionService(
	detector ports.ObjectDetector,
	classifier ports.RoomClassifier,
	embedder ports.Embedder,
	ledger ports.Ledger,
	repo ports.InventoryRepository,
	events ports.EventPublisher,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
	iouThreshold float64,
) *IngestionService {
	if iouThreshold <= 0 {
		iouThreshold = detection.DefaultIoUThreshold
	}
	return &IngestionService{
		detector:     detector,
		classifier:   classifier,
		embedder:     embedder,
		ledger:       ledger,
		repo:         repo,
		events:       events,
		metrics:      metrics,
		logger:       logger,
		iouThreshold: iouThreshold,
	}
}

// AnalyzeImage ingests one room photograph.
func (s *IngestionService) AnalyzeImage(ctx context.Context, imageBytes []byte) (*IngestResult, error) {
	if len(imageBytes) == 0 {
		return nil, apperrors.NewValidationError("empty image upload")
	}

	decoded, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable image").WithCause(err)
	}

	raw, err := s.detector.Detect(ctx, imageBytes)
	if err != nil {
		return nil, apperrors.NewExternalError("detector", err)
	}

	kept := detection.Suppress(raw, s.iouThreshold)
	if s.metrics != nil {
		s.metrics.CountDetections(ctx, len(kept), len(raw)-len(kept))
	}
	s.logger.Info("Consolidated detections",
		zap.Int("raw", len(raw)),
		zap.Int("kept", len(kept)),
	)

	room := s.classifyRoom(ctx, imageBytes)

	// One room-level embedding per request. Only the first creation of
	// the room persists it; later matches leave the stored vector alone.
	var roomEmbedding []float64
	if vec, _, err := s.embedder.EmbedImage(ctx, imageBytes); err != nil {
		s.logger.Warn("Room embedding unavailable", zap.String("room", room), zap.Error(err))
	} else {
		roomEmbedding = vec
	}

	result := &IngestResult{
		Room:       room,
		Detections: len(raw),
		Kept:       len(kept),
		Items:      make([]ItemIngestResult, 0, len(kept)),
	}

	// Detections are processed sequentially so quantity accumulation is
	// deterministic within this request and logs stay causally ordered.
	for _, det := range kept {
		result.Items = append(result.Items, s.ingestDetection(ctx, det, decoded, room, roomEmbedding))
	}

	return result, nil
}

// ingestDetection applies one detection to the ledger and the graph.
func (s *IngestionService) ingestDetection(
	ctx context.Context,
	det detection.Detection,
	decoded image.Image,
	room string,
	roomEmbedding []float64,
) ItemIngestResult {
	if inventory.IsPerson(det.ClassLabel) {
		return ItemIngestResult{
			ClassLabel: det.ClassLabel,
			Status:     IngestStatusSkipped,
			Error:      "people are not added to inventory",
		}
	}

	line := inventory.LineItemFromDetection(det)

	ledgerRes, err := s.ledger.ApplyObservation(ctx, line)
	if err != nil {
		s.logger.Error("Ledger apply failed",
			zap.String("item", line.Name),
			zap.Error(err),
		)
		return ItemIngestResult{
			ClassLabel: det.ClassLabel,
			Name:       line.Name,
			Status:     IngestStatusFailed,
			Error:      err.Error(),
		}
	}

	var embedding []float64
	var description *string
	if crop, err := cropDetection(decoded, det.BoundingBox); err != nil {
		s.logger.Warn("Detection crop failed", zap.String("item", line.Name), zap.Error(err))
	} else if vec, desc, err := s.embedder.EmbedImage(ctx, crop); err != nil {
		s.logger.Warn("Item embedding unavailable", zap.String("item", line.Name), zap.Error(err))
	} else {
		embedding = vec
		if desc != "" {
			description = &desc
		}
	}

	confidence := det.Confidence
	obs := inventory.Observation{
		ItemID:        ledgerRes.ItemID,
		Name:          line.Name,
		SKU:           line.SKU,
		Price:         line.Price,
		Quantity:      line.Quantity,
		AddDate:       time.Now().UTC(),
		Room:          room,
		Description:   description,
		Embedding:     embedding,
		RoomEmbedding: roomEmbedding,
		Confidence:    &confidence,
	}

	if err := s.repo.UpsertObservation(ctx, obs); err != nil {
		if s.metrics != nil {
			s.metrics.CountUpsert(ctx, false)
		}
		s.logger.Error("Graph upsert failed",
			zap.String("itemID", obs.ItemID),
			zap.String("room", room),
			zap.Error(err),
		)
		return ItemIngestResult{
			ClassLabel: det.ClassLabel,
			Name:       line.Name,
			ItemID:     ledgerRes.ItemID,
			Status:     IngestStatusFailed,
			Error:      err.Error(),
		}
	}
	if s.metrics != nil {
		s.metrics.CountUpsert(ctx, true)
	}

	s.publishObservation(ctx, obs, "photo")

	return ItemIngestResult{
		ClassLabel: det.ClassLabel,
		Name:       line.Name,
		ItemID:     ledgerRes.ItemID,
		Action:     ledgerRes.Action,
		Quantity:   line.Quantity,
		Price:      line.Price,
		Status:     IngestStatusAdded,
	}
}

// classifyRoom maps the image to a known room, degrading to "unknown".
func (s *IngestionService) classifyRoom(ctx context.Context, imageBytes []byte) string {
	name, err := s.classifier.ClassifyRoom(ctx, imageBytes)
	if err != nil {
		s.logger.Warn("Room classification failed", zap.Error(err))
		return inventory.UnknownRoom
	}
	return inventory.NormalizeRoom(name)
}

func (s *IngestionService) publishObservation(ctx context.Context, obs inventory.Observation, source string) {
	if s.events == nil {
		return
	}
	event := ports.ObservationEvent{
		ObservationID: uuid.New().String(),
		ItemID:        obs.ItemID,
		Name:          obs.Name,
		Room:          obs.Room,
		Quantity:      obs.Quantity,
		Source:        source,
		Price:         obs.Price,
	}
	if err := s.events.PublishObservation(ctx, event); err != nil {
		s.logger.Warn("Observation event publish failed",
			zap.String("itemID", obs.ItemID),
			zap.Error(err),
		)
	}
}

// cropDetection extracts the detection's bounding box from the decoded
// image and re-encodes it as JPEG for the embedding provider. A box
// that degenerates to an empty pixel rectangle falls back to the full
// frame.
func cropDetection(img image.Image, box detection.BoundingBox) ([]byte, error) {
	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	rect := image.Rect(
		bounds.Min.X+int(box.X*w),
		bounds.Min.Y+int(box.Y*h),
		bounds.Min.X+int((box.X+box.Width)*w),
		bounds.Min.Y+int((box.Y+box.Height)*h),
	).Intersect(bounds)
	if rect.Empty() {
		rect = bounds
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}

	cropped := img
	if si, ok := img.(subImager); ok {
		cropped = si.SubImage(rect)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
