// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"packvault/pkg/eventstore"

	"github.com/google/uuid"
)

var (
	ErrCardNotFound = errors.New("card not found")
	ErrSetNotFound  = errors.New("set not found")
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
	provider   *Provider
}

// NewService creates a new catalog service instance.
func NewService(es *eventstore.EventStore, db *sql.DB, provider *Provider) Service {
	return &service{
		eventStore: es,
		db:         db,
		provider:   provider,
	}
}

// SyncSet seeds one set's cards from the provider. The operation is
// idempotent: a set that already has cards is skipped unless force is set.
// Card rows are insert-if-absent and never overwritten by a re-sync.
func (s *service) SyncSet(ctx context.Context, setID string, force bool) (*SyncResult, error) {
	var existing int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE set_id = $1`, setID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("count existing cards: %w", err)
	}
	if existing > 0 && !force {
		return &SyncResult{SetID: setID, Status: "already_synced"}, nil
	}

	cards, err := s.provider.FetchSetCards(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("fetch set from provider: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("sync set %s: %w", setID, ErrSetNotFound)
	}

	inserted, err := s.insertSetCards(ctx, setID, cards)
	if err != nil {
		return nil, fmt.Errorf("insert set cards: %w", err)
	}

	syncID := uuid.New()
	eventData := SetSyncedEvent{
		SyncID:        syncID,
		SetID:         setID,
		CardsInserted: inserted,
		Forced:        force,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   syncID,
		AggregateType: "set_sync",
		EventType:     "SetSynced",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, syncID, "set_sync", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	return &SyncResult{SetID: setID, Status: "synced", CardsInserted: inserted}, nil
}

func (s *service) insertSetCards(ctx context.Context, setID string, cards []Card) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Set metadata rides along on every provider card; one row suffices.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sets (id, name, series, total, release_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, setID, setID, "", len(cards), time.Now().UTC())
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, card := range cards {
		imagesJSON, err := json.Marshal(card.Images)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO cards (id, name, rarity, set_id, number, artist, flavor_text, images)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, card.ID, card.Name, card.Rarity, setID, card.Number, card.Artist, card.FlavorText, imagesJSON)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	return inserted, tx.Commit()
}

// GetSetCards returns every card of one set.
func (s *service) GetSetCards(ctx context.Context, setID string) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, rarity, set_id, number, artist, flavor_text, images
		FROM cards
		WHERE set_id = $1
		ORDER BY id
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("query set cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate set cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("set %s: %w", setID, ErrSetNotFound)
	}

	return cards, nil
}

// GetCard retrieves a single card by its provider id.
func (s *service) GetCard(ctx context.Context, id string) (*Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, rarity, set_id, number, artist, flavor_text, images
		FROM cards
		WHERE id = $1
	`, id)

	card, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("card %s: %w", id, ErrCardNotFound)
		}
		return nil, fmt.Errorf("query card: %w", err)
	}
	return card, nil
}

// ListSets returns all synced sets, newest release first.
func (s *service) ListSets(ctx context.Context) ([]Set, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, series, total, release_date
		FROM sets
		ORDER BY release_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var sets []Set
	for rows.Next() {
		var set Set
		if err := rows.Scan(&set.ID, &set.Name, &set.Series, &set.Total, &set.ReleaseDate); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (*Card, error) {
	card := &Card{}
	var imagesJSON []byte
	err := row.Scan(
		&card.ID,
		&card.Name,
		&card.Rarity,
		&card.SetID,
		&card.Number,
		&card.Artist,
		&card.FlavorText,
		&imagesJSON,
	)
	if err != nil {
		return nil, err
	}
	if len(imagesJSON) > 0 {
		json.Unmarshal(imagesJSON, &card.Images)
	}
	return card, nil
}
