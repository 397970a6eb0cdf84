// internal/collection/service.go
package collection

import (
	"context"

	"packvault/internal/catalog"
	"packvault/internal/packs"

	"github.com/google/uuid"
)

// Service defines the interface for the collection ledger service.
type Service interface {
	OpenPack(ctx context.Context, trainerID uuid.UUID, setID string, packType packs.Type) (*PackResult, error)
	MergePack(ctx context.Context, trainerID uuid.UUID, cards []catalog.Card) error
	GetCollection(ctx context.Context, trainerID uuid.UUID) ([]CollectionCard, error)
	Sell(ctx context.Context, trainerID uuid.UUID, cardID string) (*SaleResult, error)
	SellAllDuplicates(ctx context.Context, trainerID uuid.UUID, cardID string) (*SaleResult, error)
	ToggleFavorite(ctx context.Context, trainerID uuid.UUID, cardID string) (bool, error)
}

// CatalogGetter is the slice of the catalog service the ledger needs.
type CatalogGetter interface {
	GetSetCards(ctx context.Context, setID string) ([]catalog.Card, error)
}

// Wallet is the currency collaborator. Debits happen before composition,
// credits after a successful sale; the ledger never caches balances.
type Wallet interface {
	PurchaseDebit(ctx context.Context, trainerID uuid.UUID, amount int) error
	RefundPurchase(ctx context.Context, trainerID uuid.UUID, amount int) error
	Credit(ctx context.Context, trainerID uuid.UUID, amount int, reason string) error
}
