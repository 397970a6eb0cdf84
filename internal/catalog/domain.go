// internal/catalog/domain.go
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Card is one collectible card as issued by the card data provider. Cards
// are seeded by SyncSet and never mutated afterwards; ids are the
// provider's own (e.g. "sv3pt5-27").
type Card struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Rarity     string     `json:"rarity"`
	SetID      string     `json:"set_id"`
	Number     string     `json:"number,omitempty"`
	Artist     string     `json:"artist,omitempty"`
	FlavorText string     `json:"flavor_text,omitempty"`
	Images     CardImages `json:"images"`
}

// CardImages holds the provider's render URLs.
type CardImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// Set is one purchasable card product.
type Set struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Series      string    `json:"series,omitempty"`
	Total       int       `json:"total"`
	ReleaseDate time.Time `json:"release_date"`
}

// SyncResult reports the outcome of a set sync.
type SyncResult struct {
	SetID         string `json:"set_id"`
	Status        string `json:"status"` // "synced" or "already_synced"
	CardsInserted int    `json:"cards_inserted"`
}

// SetSyncedEvent is published when a set is seeded into the catalog.
type SetSyncedEvent struct {
	SyncID        uuid.UUID `json:"sync_id"`
	SetID         string    `json:"set_id"`
	CardsInserted int       `json:"cards_inserted"`
	Forced        bool      `json:"forced"`
}
