// internal/trading/implementation.go
package trading

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"packvault/pkg/eventstore"

	"github.com/google/uuid"
)

type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
}

// NewService creates a new trade protocol service instance.
func NewService(es *eventstore.EventStore, db *sql.DB) Service {
	return &service{eventStore: es, db: db}
}

// Propose records a pending one-for-one offer. Holdings are not checked
// here: both sides are revalidated at acceptance time, the only moment
// that matters.
func (s *service) Propose(ctx context.Context, senderID, receiverID uuid.UUID, senderCardID, receiverCardID string) (*Trade, error) {
	if senderID == receiverID {
		return nil, ErrSelfTrade
	}

	trade := &Trade{
		ID:             uuid.New(),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		SenderCardID:   senderCardID,
		ReceiverCardID: receiverCardID,
		Status:         StatusPending,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO trades (id, sender_id, receiver_id, sender_card_id, receiver_card_id, status, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING created_at
	`, trade.ID, trade.SenderID, trade.ReceiverID, trade.SenderCardID, trade.ReceiverCardID, trade.Status).Scan(&trade.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert trade: %w", err)
	}

	s.appendEvent(ctx, trade.ID, "TradeProposed", TradeProposedEvent{
		TradeID:        trade.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		SenderCardID:   senderCardID,
		ReceiverCardID: receiverCardID,
	})

	return trade, nil
}

// Accept settles a pending trade. Both holdings are revalidated; if
// either side no longer holds their card the trade is marked failed and
// neither inventory is touched. On success the status flip and both
// inventory moves commit in one transaction, with the status row acting
// as the compare-and-swap guard against a concurrent resolution.
func (s *service) Accept(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error) {
	trade, err := s.loadPendingForReceiver(ctx, receiverID, tradeID)
	if err != nil {
		return nil, err
	}

	senderHolds, err := s.holdsCard(ctx, trade.SenderID, trade.SenderCardID)
	if err != nil {
		return nil, err
	}
	receiverHolds, err := s.holdsCard(ctx, trade.ReceiverID, trade.ReceiverCardID)
	if err != nil {
		return nil, err
	}
	if !senderHolds || !receiverHolds {
		if markErr := s.markTerminal(ctx, tradeID, StatusFailed); markErr != nil {
			log.Printf("failed to mark trade %s failed: %v", tradeID, markErr)
		}
		s.appendEvent(ctx, tradeID, "TradeResolved", TradeResolvedEvent{TradeID: tradeID, Status: StatusFailed})
		return nil, ErrCardNotHeld
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE trades
		SET status = $2, resolved_at = NOW()
		WHERE id = $1 AND status = $3
	`, tradeID, StatusAccepted, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("resolve trade: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("resolve trade: %w", err)
	}
	if rows == 0 {
		return nil, ErrTradeConcluded
	}

	// Sender gives their card to the receiver, receiver gives theirs
	// back. Trading away a last copy is allowed; the emptied row is
	// removed so quantity zero is never stored.
	if err := transferCard(ctx, tx, trade.SenderID, trade.ReceiverID, trade.SenderCardID); err != nil {
		return nil, err
	}
	if err := transferCard(ctx, tx, trade.ReceiverID, trade.SenderID, trade.ReceiverCardID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit trade: %w", err)
	}

	trade.Status = StatusAccepted
	s.appendEvent(ctx, tradeID, "TradeResolved", TradeResolvedEvent{TradeID: tradeID, Status: StatusAccepted})
	return trade, nil
}

func transferCard(ctx context.Context, tx *sql.Tx, fromID, toID uuid.UUID, cardID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE user_collection
		SET quantity = quantity - 1
		WHERE trainer_id = $1 AND card_id = $2 AND quantity >= 1
	`, fromID, cardID)
	if err != nil {
		return fmt.Errorf("decrement %s for %s: %w", cardID, fromID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement %s for %s: %w", cardID, fromID, err)
	}
	if rows == 0 {
		return ErrCardNotHeld
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM user_collection
		WHERE trainer_id = $1 AND card_id = $2 AND quantity = 0
	`, fromID, cardID)
	if err != nil {
		return fmt.Errorf("prune empty entry %s for %s: %w", cardID, fromID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_collection (trainer_id, card_id, quantity, is_favorite)
		VALUES ($1, $2, 1, FALSE)
		ON CONFLICT (trainer_id, card_id)
		DO UPDATE SET quantity = user_collection.quantity + 1
	`, toID, cardID)
	if err != nil {
		return fmt.Errorf("credit %s to %s: %w", cardID, toID, err)
	}
	return nil
}

// Reject marks a pending trade rejected. Receiver-scoped: nobody else
// can decline an offer.
func (s *service) Reject(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error) {
	trade, err := s.loadPendingForReceiver(ctx, receiverID, tradeID)
	if err != nil {
		return nil, err
	}
	if err := s.markTerminal(ctx, tradeID, StatusRejected); err != nil {
		return nil, err
	}
	trade.Status = StatusRejected
	s.appendEvent(ctx, tradeID, "TradeResolved", TradeResolvedEvent{TradeID: tradeID, Status: StatusRejected})
	return trade, nil
}

func (s *service) loadPendingForReceiver(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error) {
	var trade Trade
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, sender_card_id, receiver_card_id, status, is_read, created_at
		FROM trades
		WHERE id = $1 AND receiver_id = $2 AND status = $3
	`, tradeID, receiverID, StatusPending).Scan(
		&trade.ID, &trade.SenderID, &trade.ReceiverID,
		&trade.SenderCardID, &trade.ReceiverCardID,
		&trade.Status, &trade.IsRead, &trade.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("query trade: %w", err)
	}
	return &trade, nil
}

func (s *service) holdsCard(ctx context.Context, trainerID uuid.UUID, cardID string) (bool, error) {
	var quantity int
	err := s.db.QueryRowContext(ctx, `
		SELECT quantity FROM user_collection
		WHERE trainer_id = $1 AND card_id = $2
	`, trainerID, cardID).Scan(&quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("query holding: %w", err)
	}
	return quantity >= 1, nil
}

func (s *service) markTerminal(ctx context.Context, tradeID uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades
		SET status = $2, resolved_at = NOW()
		WHERE id = $1 AND status = $3
	`, tradeID, status, StatusPending)
	if err != nil {
		return fmt.Errorf("resolve trade: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve trade: %w", err)
	}
	if rows == 0 {
		return ErrTradeConcluded
	}
	return nil
}

// ListPending returns the receiver's open inbox, newest first.
func (s *service) ListPending(ctx context.Context, receiverID uuid.UUID) ([]TradeView, error) {
	return s.listTrades(ctx, `
		WHERE t.receiver_id = $1 AND t.status = 'pending'
	`, receiverID)
}

// ListCompleted returns the sender's resolved trades not yet seen, so
// the UI can notify the proposer of the outcome exactly once.
func (s *service) ListCompleted(ctx context.Context, senderID uuid.UUID) ([]TradeView, error) {
	return s.listTrades(ctx, `
		WHERE t.sender_id = $1 AND t.status <> 'pending' AND t.is_read = FALSE
	`, senderID)
}

func (s *service) listTrades(ctx context.Context, where string, trainerID uuid.UUID) ([]TradeView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.sender_id, t.receiver_id, t.sender_card_id, t.receiver_card_id,
		       t.status, t.is_read, t.created_at, t.resolved_at,
		       st.username, rt.username,
		       sc.name, rc.name, sc.images, rc.images
		FROM trades t
		JOIN trainers st ON st.id = t.sender_id
		JOIN trainers rt ON rt.id = t.receiver_id
		JOIN cards sc ON sc.id = t.sender_card_id
		JOIN cards rc ON rc.id = t.receiver_card_id
	`+where+`
		ORDER BY t.created_at DESC
	`, trainerID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	trades := []TradeView{}
	for rows.Next() {
		var tv TradeView
		var senderImages, receiverImages []byte
		err := rows.Scan(
			&tv.ID, &tv.SenderID, &tv.ReceiverID, &tv.SenderCardID, &tv.ReceiverCardID,
			&tv.Status, &tv.IsRead, &tv.CreatedAt, &tv.ResolvedAt,
			&tv.SenderName, &tv.ReceiverName,
			&tv.SenderCardName, &tv.ReceiverCardName, &senderImages, &receiverImages,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		if len(senderImages) > 0 {
			json.Unmarshal(senderImages, &tv.SenderCardImages)
		}
		if len(receiverImages) > 0 {
			json.Unmarshal(receiverImages, &tv.ReceiverCardImages)
		}
		trades = append(trades, tv)
	}

	return trades, rows.Err()
}

// MarkRead acknowledges a resolved trade's outcome. Sender-scoped, and a
// no-op is an error so a stale id surfaces instead of silently passing.
func (s *service) MarkRead(ctx context.Context, senderID, tradeID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades
		SET is_read = TRUE
		WHERE id = $1 AND sender_id = $2 AND status <> 'pending'
	`, tradeID, senderID)
	if err != nil {
		return fmt.Errorf("mark trade read: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark trade read: %w", err)
	}
	if rows == 0 {
		return ErrTradeNotFound
	}
	return nil
}

func (s *service) appendEvent(ctx context.Context, tradeID uuid.UUID, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal trade event: %v", err)
		return
	}
	version, err := s.eventStore.GetCurrentVersion(ctx, tradeID)
	if err != nil {
		log.Printf("failed to read trade stream version: %v", err)
		return
	}
	event := eventstore.Event{
		AggregateID:   tradeID,
		AggregateType: "trade",
		EventType:     eventType,
		EventData:     jsonData,
		Version:       version + 1,
	}
	if err := s.eventStore.AppendEvents(ctx, tradeID, "trade", version, []eventstore.Event{event}); err != nil {
		log.Printf("failed to append trade event: %v", err)
	}
}
