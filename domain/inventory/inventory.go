// Package inventory holds the persistent catalog model: items, rooms
// and the located-in relationship between them. All mutation goes
// through the graph store keyed on natural keys (item_id, room name),
// never through in-memory object references.
package inventory

import (
	"strings"
	"time"
)

// UnknownRoom is the placeholder room name used when the classifier
// cannot map an image to a known room, and for receipt line items that
// carry no location at all. It is a valid room for upsert purposes.
const UnknownRoom = "unknown"

// KnownRooms is the closed set of room names the classifier may return.
// Anything else collapses to UnknownRoom.
var KnownRooms = []string{
	"kitchen",
	"living room",
	"dining room",
	"bedroom",
	"bathroom",
	"office",
	"garage",
	"hallway",
	"basement",
	"attic",
}

// NormalizeRoom case-normalizes a room name and collapses names outside
// the known set to UnknownRoom.
func NormalizeRoom(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range KnownRooms {
		if name == known {
			return known
		}
	}
	return UnknownRoom
}

// Item is a persistent catalog line, uniquely identified by the
// ledger-assigned ItemID. Descriptive fields reflect the most recent
// observation; Quantity is the running total of all observed
// quantities for the key.
type Item struct {
	ItemID       string
	Name         string
	SKU          string
	Price        float64
	Quantity     int
	AddDate      time.Time
	PurchaseDate *time.Time
	Description  *string
	Embedding    []float64
	Confidence   *float64
	RoomName     string // most recently observed room
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room is a persistent node keyed by its case-normalized name. Its
// embedding is fixed at first creation and never refreshed by later
// observations of the same room.
type Room struct {
	Name      string
	Embedding []float64
	CreatedAt time.Time
}

// LocatedIn is the relationship from an item to a room. An item
// reclassified into a new room gains an additional edge; old edges are
// not removed.
type LocatedIn struct {
	ItemID      string
	RoomName    string
	Since       time.Time
	LastUpdated time.Time
}

// Observation is one consolidated sighting of an item, ready for a
// graph upsert. Optional context is modelled as explicitly absent
// (nil) rather than defaulted; every consumer branches on absence.
type Observation struct {
	ItemID        string
	Name          string
	SKU           string
	Price         float64
	Quantity      int // quantity delta to accumulate
	AddDate       time.Time
	PurchaseDate  *time.Time
	Room          string
	Description   *string
	Embedding     []float64 // item embedding, nil when unavailable
	RoomEmbedding []float64 // set only when the room image was embedded
	Confidence    *float64
}

// RankedItem is one semantic search result.
type RankedItem struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	RoomName    string  `json:"room"`
	Score       float64 `json:"score"`
}
