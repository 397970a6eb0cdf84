// internal/collection/implementation.go
package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"packvault/internal/catalog"
	"packvault/internal/packs"
	"packvault/pkg/eventstore"

	"github.com/google/uuid"
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
	catalogSvc CatalogGetter
	wallet     Wallet
}

// NewService creates a new collection ledger service instance.
func NewService(es *eventstore.EventStore, db *sql.DB, catalogSvc CatalogGetter, wallet Wallet) Service {
	return &service{
		eventStore: es,
		db:         db,
		catalogSvc: catalogSvc,
		wallet:     wallet,
	}
}

// OpenPack orchestrates the purchase saga: load the catalog snapshot,
// debit the wallet, compose the pack, merge it into the ledger in one
// transaction. A merge failure after the debit is compensated with a
// refund so coins are never silently lost.
func (s *service) OpenPack(ctx context.Context, trainerID uuid.UUID, setID string, packType packs.Type) (*PackResult, error) {
	price, ok := packs.Price(packType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", packs.ErrUnknownPackType, packType)
	}

	// Step 1: the catalog snapshot, before any money moves.
	cards, err := s.catalogSvc.GetSetCards(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to load set: %w", err)
	}

	// Step 2: for golden packs the guarantee needs the owner's held ids.
	var ownedIDs map[string]bool
	if packType == packs.TypeGolden {
		ownedIDs, err = s.ownedCardIDs(ctx, trainerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load holdings: %w", err)
		}
	}

	// Step 3: debit first. On insufficient funds composition is skipped
	// entirely.
	if err := s.wallet.PurchaseDebit(ctx, trainerID, price); err != nil {
		return nil, err
	}

	compensation := func() {
		log.Printf("compensating failed pack purchase: refunding %d coins to trainer %s", price, trainerID)
		if err := s.wallet.RefundPurchase(ctx, trainerID, price); err != nil {
			log.Printf("failed to compensate pack purchase: %v", err)
		}
	}

	// Step 4: pure composition.
	pack, err := packs.Open(packs.NewRand(), packType, cards, ownedIDs)
	if err != nil {
		compensation()
		return nil, err
	}

	// Step 5: fold the whole pack into the ledger atomically.
	if err := s.MergePack(ctx, trainerID, pack); err != nil {
		compensation()
		return nil, fmt.Errorf("failed to merge pack: %w", err)
	}

	purchaseID := uuid.New()
	cardIDs := make([]string, 0, len(pack))
	for _, c := range pack {
		cardIDs = append(cardIDs, c.ID)
	}

	eventData := PackOpenedEvent{
		PurchaseID: purchaseID,
		TrainerID:  trainerID,
		SetID:      setID,
		PackType:   packType,
		CardIDs:    cardIDs,
		Price:      price,
	}
	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   purchaseID,
		AggregateType: "pack_purchase",
		EventType:     "PackOpened",
		EventData:     jsonData,
		Version:       1,
	}
	if err := s.eventStore.AppendEvents(ctx, purchaseID, "pack_purchase", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	return &PackResult{
		PurchaseID: purchaseID,
		SetID:      setID,
		PackType:   packType,
		Price:      price,
		Cards:      pack,
	}, nil
}

func (s *service) ownedCardIDs(ctx context.Context, trainerID uuid.UUID) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT card_id FROM user_collection WHERE trainer_id = $1
	`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

// MergePack folds a pack into the ledger in one transaction: every card
// row is ensured insert-if-absent, then the (owner, card) quantity is
// upserted. Sentinel slots are skipped, never persisted.
func (s *service) MergePack(ctx context.Context, trainerID uuid.UUID, cards []catalog.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, card := range cards {
		if card.ID == packs.MissingCardID {
			continue
		}

		imagesJSON, err := json.Marshal(card.Images)
		if err != nil {
			return fmt.Errorf("marshal card images: %w", err)
		}

		// Catalog rows are seeded by sync, but a merge must never depend
		// on that ordering; insert-if-absent, never overwrite.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cards (id, name, rarity, set_id, number, artist, flavor_text, images)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, card.ID, card.Name, card.Rarity, card.SetID, card.Number, card.Artist, card.FlavorText, imagesJSON)
		if err != nil {
			return fmt.Errorf("ensure card row %s: %w", card.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_collection (trainer_id, card_id, quantity, is_favorite)
			VALUES ($1, $2, 1, FALSE)
			ON CONFLICT (trainer_id, card_id)
			DO UPDATE SET quantity = user_collection.quantity + 1
		`, trainerID, card.ID)
		if err != nil {
			return fmt.Errorf("upsert ledger entry %s: %w", card.ID, err)
		}
	}

	return tx.Commit()
}

// GetCollection returns an owner's full ledger, favorites first.
func (s *service) GetCollection(ctx context.Context, trainerID uuid.UUID) ([]CollectionCard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.rarity, c.set_id, c.number, c.flavor_text, c.images,
		       uc.quantity, uc.is_favorite
		FROM user_collection uc
		JOIN cards c ON c.id = uc.card_id
		WHERE uc.trainer_id = $1
		ORDER BY uc.is_favorite DESC, c.rarity DESC, c.name ASC
	`, trainerID)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	defer rows.Close()

	collection := []CollectionCard{}
	for rows.Next() {
		var cc CollectionCard
		var imagesJSON []byte
		err := rows.Scan(
			&cc.ID, &cc.Name, &cc.Rarity, &cc.SetID, &cc.Number, &cc.FlavorText, &imagesJSON,
			&cc.Quantity, &cc.IsFavorite,
		)
		if err != nil {
			return nil, fmt.Errorf("scan collection row: %w", err)
		}
		if len(imagesJSON) > 0 {
			json.Unmarshal(imagesJSON, &cc.Images)
		}
		cc.SellPrice = packs.SellPrice(cc.Rarity)
		collection = append(collection, cc)
	}

	return collection, rows.Err()
}

// Sell trades one duplicate copy for coins. The quantity > 1 predicate
// keeps the last copy: a row never drops to zero through a sale.
func (s *service) Sell(ctx context.Context, trainerID uuid.UUID, cardID string) (*SaleResult, error) {
	rarity, _, err := s.entryRarity(ctx, trainerID, cardID)
	if err != nil {
		return nil, err
	}
	price := packs.SellPrice(rarity)

	res, err := s.db.ExecContext(ctx, `
		UPDATE user_collection
		SET quantity = quantity - 1
		WHERE trainer_id = $1 AND card_id = $2 AND quantity > 1
	`, trainerID, cardID)
	if err != nil {
		return nil, fmt.Errorf("decrement entry: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("decrement entry: %w", err)
	}
	if rows == 0 {
		return nil, ErrInsufficientQuantity
	}

	if err := s.wallet.Credit(ctx, trainerID, price, "card_sale"); err != nil {
		// Put the copy back rather than leave the sale half applied.
		log.Printf("compensating failed sale credit for trainer %s card %s", trainerID, cardID)
		if _, rbErr := s.db.ExecContext(ctx, `
			UPDATE user_collection SET quantity = quantity + 1
			WHERE trainer_id = $1 AND card_id = $2
		`, trainerID, cardID); rbErr != nil {
			log.Printf("failed to compensate sale: %v", rbErr)
		}
		return nil, fmt.Errorf("failed to credit sale: %w", err)
	}

	result := &SaleResult{CardID: cardID, Sold: 1, Earned: price}
	s.appendSaleEvent(ctx, trainerID, result)
	return result, nil
}

// SellAllDuplicates reduces an entry to a single copy and credits every
// duplicate at once.
func (s *service) SellAllDuplicates(ctx context.Context, trainerID uuid.UUID, cardID string) (*SaleResult, error) {
	rarity, quantity, err := s.entryRarity(ctx, trainerID, cardID)
	if err != nil {
		return nil, err
	}

	duplicates := quantity - 1
	if duplicates <= 0 {
		return nil, ErrInsufficientQuantity
	}
	earned := duplicates * packs.SellPrice(rarity)

	// The quantity predicate doubles as a compare-and-swap against a
	// concurrent sale or trade on the same row.
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_collection
		SET quantity = 1
		WHERE trainer_id = $1 AND card_id = $2 AND quantity = $3
	`, trainerID, cardID, quantity)
	if err != nil {
		return nil, fmt.Errorf("collapse duplicates: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("collapse duplicates: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("entry for card %s changed concurrently, retry the sale", cardID)
	}

	if err := s.wallet.Credit(ctx, trainerID, earned, "duplicate_sale"); err != nil {
		log.Printf("compensating failed duplicate sale for trainer %s card %s", trainerID, cardID)
		if _, rbErr := s.db.ExecContext(ctx, `
			UPDATE user_collection SET quantity = $3
			WHERE trainer_id = $1 AND card_id = $2 AND quantity = 1
		`, trainerID, cardID, quantity); rbErr != nil {
			log.Printf("failed to compensate duplicate sale: %v", rbErr)
		}
		return nil, fmt.Errorf("failed to credit sale: %w", err)
	}

	result := &SaleResult{CardID: cardID, Sold: duplicates, Earned: earned}
	s.appendSaleEvent(ctx, trainerID, result)
	return result, nil
}

func (s *service) entryRarity(ctx context.Context, trainerID uuid.UUID, cardID string) (string, int, error) {
	var rarity string
	var quantity int
	err := s.db.QueryRowContext(ctx, `
		SELECT c.rarity, uc.quantity
		FROM user_collection uc
		JOIN cards c ON c.id = uc.card_id
		WHERE uc.trainer_id = $1 AND uc.card_id = $2
	`, trainerID, cardID).Scan(&rarity, &quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", 0, ErrEntryNotFound
		}
		return "", 0, fmt.Errorf("query entry: %w", err)
	}
	return rarity, quantity, nil
}

func (s *service) appendSaleEvent(ctx context.Context, trainerID uuid.UUID, result *SaleResult) {
	saleID := uuid.New()
	eventData := CardsSoldEvent{
		SaleID:    saleID,
		TrainerID: trainerID,
		CardID:    result.CardID,
		Sold:      result.Sold,
		Earned:    result.Earned,
	}
	jsonData, err := json.Marshal(eventData)
	if err != nil {
		log.Printf("failed to marshal sale event: %v", err)
		return
	}
	event := eventstore.Event{
		AggregateID:   saleID,
		AggregateType: "card_sale",
		EventType:     "CardsSold",
		EventData:     jsonData,
		Version:       1,
	}
	if err := s.eventStore.AppendEvents(ctx, saleID, "card_sale", 0, []eventstore.Event{event}); err != nil {
		log.Printf("failed to append sale event: %v", err)
	}
}

// ToggleFavorite flips an entry's favorite flag. Activation is capped at
// FavoriteLimit per owner; deactivation is never capacity-limited.
func (s *service) ToggleFavorite(ctx context.Context, trainerID uuid.UUID, cardID string) (bool, error) {
	var current bool
	err := s.db.QueryRowContext(ctx, `
		SELECT is_favorite FROM user_collection
		WHERE trainer_id = $1 AND card_id = $2
	`, trainerID, cardID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrEntryNotFound
		}
		return false, fmt.Errorf("query favorite flag: %w", err)
	}

	if !current {
		var favorites int
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM user_collection
			WHERE trainer_id = $1 AND is_favorite = TRUE
		`, trainerID).Scan(&favorites)
		if err != nil {
			return false, fmt.Errorf("count favorites: %w", err)
		}
		if favorites >= FavoriteLimit {
			return false, ErrFavoriteCapacity
		}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE user_collection
		SET is_favorite = $3
		WHERE trainer_id = $1 AND card_id = $2 AND is_favorite = $4
	`, trainerID, cardID, !current, current)
	if err != nil {
		return false, fmt.Errorf("update favorite flag: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update favorite flag: %w", err)
	}
	if rows == 0 {
		return false, fmt.Errorf("entry for card %s changed concurrently, retry the toggle", cardID)
	}

	return !current, nil
}
