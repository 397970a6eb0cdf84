// internal/collection/domain.go
package collection

import (
	"errors"

	"packvault/internal/catalog"
	"packvault/internal/packs"

	"github.com/google/uuid"
)

var (
	ErrEntryNotFound        = errors.New("card not in collection")
	ErrInsufficientQuantity = errors.New("not enough copies to sell")
	ErrFavoriteCapacity     = errors.New("favorite limit reached")
)

// FavoriteLimit caps favorited entries per owner.
const FavoriteLimit = 10

// Entry is one (owner, card) ledger row. Quantity is never stored as 0:
// a sale that would empty the row is rejected instead.
type Entry struct {
	TrainerID  uuid.UUID `json:"trainer_id"`
	CardID     string    `json:"card_id"`
	Quantity   int       `json:"quantity"`
	IsFavorite bool      `json:"is_favorite"`
}

// CollectionCard is the joined view served to callers: the catalog card
// plus the owner's ledger state and the server-side sale value.
type CollectionCard struct {
	catalog.Card
	Quantity   int  `json:"quantity"`
	IsFavorite bool `json:"is_favorite"`
	SellPrice  int  `json:"sell_price"`
}

// PackResult is the outcome of one pack purchase. Cards is the ordered
// 10-slot pack as composed; sentinel slots (an empty catalog) are kept in
// the response for the UI but never persisted.
type PackResult struct {
	PurchaseID uuid.UUID      `json:"purchase_id"`
	SetID      string         `json:"set_id"`
	PackType   packs.Type     `json:"pack_type"`
	Price      int            `json:"price"`
	Cards      []catalog.Card `json:"cards"`
}

// SaleResult reports a completed sale.
type SaleResult struct {
	CardID string `json:"card_id"`
	Sold   int    `json:"sold"`
	Earned int    `json:"earned"`
}

// PackOpenedEvent is published after a pack is merged into the ledger.
type PackOpenedEvent struct {
	PurchaseID uuid.UUID  `json:"purchase_id"`
	TrainerID  uuid.UUID  `json:"trainer_id"`
	SetID      string     `json:"set_id"`
	PackType   packs.Type `json:"pack_type"`
	CardIDs    []string   `json:"card_ids"`
	Price      int        `json:"price"`
}

// CardsSoldEvent is published after a sale credits the wallet.
type CardsSoldEvent struct {
	SaleID    uuid.UUID `json:"sale_id"`
	TrainerID uuid.UUID `json:"trainer_id"`
	CardID    string    `json:"card_id"`
	Sold      int       `json:"sold"`
	Earned    int       `json:"earned"`
}
