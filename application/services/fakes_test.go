package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homegraph/application/ports"
	"homegraph/domain/detection"
	"homegraph/domain/inventory"
)

// fakeRepo is an in-memory InventoryRepository mirroring the store's
// upsert contract, so service tests exercise accumulation, stickiness
// and edge semantics end to end.
type fakeRepo struct {
	items   map[string]*inventory.Item
	rooms   map[string]*inventory.Room
	edges   map[string]*inventory.LocatedIn // key item_id|room
	failAll bool
	upserts int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items: map[string]*inventory.Item{},
		rooms: map[string]*inventory.Room{},
		edges: map[string]*inventory.LocatedIn{},
	}
}

func (r *fakeRepo) UpsertObservation(_ context.Context, obs inventory.Observation) error {
	if r.failAll {
		return errors.New("store unreachable")
	}
	r.upserts++
	now := time.Now().UTC()

	room, ok := r.rooms[obs.Room]
	if !ok {
		room = &inventory.Room{Name: obs.Room, CreatedAt: now}
		if obs.RoomEmbedding != nil {
			room.Embedding = obs.RoomEmbedding
		}
		r.rooms[obs.Room] = room
	}
	// On match the stored embedding is never touched.

	item, ok := r.items[obs.ItemID]
	if !ok {
		item = &inventory.Item{ItemID: obs.ItemID, CreatedAt: now}
		r.items[obs.ItemID] = item
	}
	item.Name = obs.Name
	item.SKU = obs.SKU
	item.Price = obs.Price
	item.Quantity += obs.Quantity
	item.AddDate = obs.AddDate
	item.PurchaseDate = obs.PurchaseDate
	item.Description = obs.Description
	if obs.Embedding != nil {
		item.Embedding = obs.Embedding
	}
	item.Confidence = obs.Confidence
	item.RoomName = obs.Room
	item.UpdatedAt = now

	key := obs.ItemID + "|" + obs.Room
	if edge, ok := r.edges[key]; ok {
		edge.LastUpdated = obs.AddDate
	} else {
		r.edges[key] = &inventory.LocatedIn{
			ItemID:      obs.ItemID,
			RoomName:    obs.Room,
			Since:       obs.AddDate,
			LastUpdated: obs.AddDate,
		}
	}
	return nil
}

func (r *fakeRepo) UpsertLineItem(ctx context.Context, obs inventory.Observation) error {
	obs.Room = inventory.UnknownRoom
	obs.Embedding = nil
	obs.RoomEmbedding = nil
	return r.UpsertObservation(ctx, obs)
}

func (r *fakeRepo) ListItemsWithEmbeddings(context.Context) ([]inventory.Item, error) {
	if r.failAll {
		return nil, errors.New("store unreachable")
	}
	var out []inventory.Item
	for _, item := range r.items {
		if item.Embedding != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetRoomsByName(_ context.Context, names []string) (map[string]inventory.Room, error) {
	out := map[string]inventory.Room{}
	for _, name := range names {
		if room, ok := r.rooms[name]; ok {
			out[name] = *room
		}
	}
	return out, nil
}

type fakeDetector struct {
	detections []detection.Detection
	err        error
}

func (d *fakeDetector) Detect(context.Context, []byte) ([]detection.Detection, error) {
	return d.detections, d.err
}

type fakeClassifier struct {
	room string
	err  error
}

func (c *fakeClassifier) ClassifyRoom(context.Context, []byte) (string, error) {
	return c.room, c.err
}

// fakeEmbedder returns canned vectors: one per EmbedText query and one
// per EmbedImage call.
type fakeEmbedder struct {
	textVecs  map[string][]float64
	imageVec  []float64
	imageDesc string
	textErr   error
	imageErr  error
}

func (e *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float64, error) {
	if e.textErr != nil {
		return nil, e.textErr
	}
	if v, ok := e.textVecs[text]; ok {
		return v, nil
	}
	return []float64{1, 0, 0}, nil
}

func (e *fakeEmbedder) EmbedImage(context.Context, []byte) ([]float64, string, error) {
	if e.imageErr != nil {
		return nil, "", e.imageErr
	}
	return e.imageVec, e.imageDesc, nil
}

// fakeLedger assigns deterministic ids keyed by line name, and
// increments on repeats the way the real ledger deduplicates.
type fakeLedger struct {
	ids     map[string]string
	applied []inventory.LineItem
	err     error
	next    int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{ids: map[string]string{}}
}

func (l *fakeLedger) ApplyObservation(_ context.Context, line inventory.LineItem) (ports.LedgerResult, error) {
	if l.err != nil {
		return ports.LedgerResult{}, l.err
	}
	l.applied = append(l.applied, line)
	if id, ok := l.ids[line.Name]; ok {
		return ports.LedgerResult{ItemID: id, Action: "incremented"}, nil
	}
	l.next++
	id := fmt.Sprintf("L-%d", l.next)
	l.ids[line.Name] = id
	return ports.LedgerResult{ItemID: id, Action: "created"}, nil
}

func (l *fakeLedger) ValuationReport(context.Context) ([]ports.ValuationRow, error) {
	return nil, nil
}

type fakeCompleter struct {
	lastContext string
	lastQuery   string
	answer      string
	err         error
}

func (c *fakeCompleter) Complete(_ context.Context, contextText, query string) (string, error) {
	c.lastContext = contextText
	c.lastQuery = query
	return c.answer, c.err
}

type fakeExtractor struct {
	lines []ports.ReceiptLine
	err   error
}

func (e *fakeExtractor) ExtractLineItems(context.Context, []byte) ([]ports.ReceiptLine, error) {
	return e.lines, e.err
}
