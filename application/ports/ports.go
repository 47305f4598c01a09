// Package ports defines the contracts between the ingestion/search
// core and its collaborators. The core owns these interfaces;
// infrastructure provides the implementations.
package ports

import (
	"context"

	"homegraph/domain/detection"
	"homegraph/domain/inventory"
)

// InventoryRepository is the graph store. It exclusively owns creation
// and mutation of items, rooms and located-in edges.
type InventoryRepository interface {
	// UpsertObservation applies one observation as a single atomic
	// transaction: room match-or-create (embedding sticky at first
	// creation), item match-or-create (descriptive fields last-write-
	// wins, quantity accumulated server-side), and located-in edge
	// match-or-create (since fixed, last_updated refreshed).
	UpsertObservation(ctx context.Context, obs inventory.Observation) error

	// UpsertLineItem routes a receipt-sourced observation through the
	// same accumulation contract, with the room forced to "unknown"
	// and no image-derived embedding.
	UpsertLineItem(ctx context.Context, obs inventory.Observation) error

	// ListItemsWithEmbeddings enumerates every catalog item whose
	// embedding is non-null.
	ListItemsWithEmbeddings(ctx context.Context) ([]inventory.Item, error)

	// GetRoomsByName fetches rooms for the given names; absent rooms
	// are simply missing from the result map.
	GetRoomsByName(ctx context.Context, names []string) (map[string]inventory.Room, error)
}

// ObjectDetector runs object detection over a full image and returns
// one unified list of raw detections.
type ObjectDetector interface {
	Detect(ctx context.Context, image []byte) ([]detection.Detection, error)
}

// RoomClassifier maps a room photograph to one of the known room names,
// or "unknown" when no known room fits.
type RoomClassifier interface {
	ClassifyRoom(ctx context.Context, image []byte) (string, error)
}

// Embedder produces fixed-dimensionality embedding vectors for text and
// images. Image embedding also yields the generated description the
// vector was derived from.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
	EmbedImage(ctx context.Context, image []byte) (vector []float64, description string, err error)
}

// LedgerResult is the ledger's answer to an applied observation. The
// assigned ItemID becomes the catalog's natural key.
type LedgerResult struct {
	ItemID string
	Action string // "created" or "incremented"
}

// ValuationRow is one line of the ledger's inventory valuation report.
type ValuationRow struct {
	Item      string  `json:"item"`
	SKU       string  `json:"sku"`
	QtyOnHand float64 `json:"qty_on_hand"`
	UnitPrice float64 `json:"unit_price"`
	Value     float64 `json:"value"`
}

// Ledger is the external accounting system. Duplicate detection on
// name+price happens ledger-side, before the graph's own accumulation.
type Ledger interface {
	ApplyObservation(ctx context.Context, line inventory.LineItem) (LedgerResult, error)
	ValuationReport(ctx context.Context) ([]ValuationRow, error)
}

// ChatCompleter answers a query given the rendered catalog context.
type ChatCompleter interface {
	Complete(ctx context.Context, contextText, query string) (string, error)
}

// ReceiptLine is one structured line item extracted from a receipt.
type ReceiptLine struct {
	Name         string
	Quantity     int
	Price        float64
	PurchaseDate string // as printed on the receipt, may be empty
}

// ReceiptExtractor turns a receipt image into structured line items.
type ReceiptExtractor interface {
	ExtractLineItems(ctx context.Context, image []byte) ([]ReceiptLine, error)
}

// ObservationEvent is emitted after a successful graph upsert.
type ObservationEvent struct {
	ObservationID string  `json:"observation_id"`
	ItemID        string  `json:"item_id"`
	Name          string  `json:"name"`
	Room          string  `json:"room"`
	Quantity      int     `json:"quantity"`
	Source        string  `json:"source"` // "photo" or "receipt"
	Price         float64 `json:"price"`
}

// EventPublisher publishes observation events best-effort; failures are
// logged by callers and never fail the pipeline.
type EventPublisher interface {
	PublishObservation(ctx context.Context, event ObservationEvent) error
}

// MetricsRecorder counts pipeline outcomes. Implementations must be
// safe to call from request goroutines.
type MetricsRecorder interface {
	CountDetections(ctx context.Context, kept, suppressed int)
	CountUpsert(ctx context.Context, succeeded bool)
	CountSearch(ctx context.Context, results int)
}
