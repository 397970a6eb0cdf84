// internal/trading/domain.go
package trading

import (
	"errors"
	"time"

	"packvault/internal/catalog"

	"github.com/google/uuid"
)

var (
	ErrTradeNotFound  = errors.New("trade not found or no longer available")
	ErrSelfTrade      = errors.New("cannot trade with yourself")
	ErrCardNotHeld    = errors.New("offered card no longer held")
	ErrTradeConcluded = errors.New("trade already concluded")
)

// Trade statuses. pending is the only live state; accepted, rejected and
// failed are terminal and a trade never leaves a terminal state.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Trade is a one-for-one card swap proposal between two trainers. The
// sender offers SenderCardID and asks for ReceiverCardID; only the
// receiver can accept or reject it.
type Trade struct {
	ID             uuid.UUID  `json:"id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	ReceiverID     uuid.UUID  `json:"receiver_id"`
	SenderCardID   string     `json:"sender_card_id"`
	ReceiverCardID string     `json:"receiver_card_id"`
	Status         string     `json:"status"`
	IsRead         bool       `json:"is_read"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// TradeView decorates a trade with the joined card and trainer details
// the inbox screens render.
type TradeView struct {
	Trade
	SenderName         string             `json:"sender_name"`
	ReceiverName       string             `json:"receiver_name"`
	SenderCardName     string             `json:"sender_card_name"`
	ReceiverCardName   string             `json:"receiver_card_name"`
	SenderCardImages   catalog.CardImages `json:"sender_card_images"`
	ReceiverCardImages catalog.CardImages `json:"receiver_card_images"`
}

// TradeProposedEvent is published when a proposal is created.
type TradeProposedEvent struct {
	TradeID        uuid.UUID `json:"trade_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	SenderCardID   string    `json:"sender_card_id"`
	ReceiverCardID string    `json:"receiver_card_id"`
}

// TradeResolvedEvent is published when a trade reaches a terminal state.
type TradeResolvedEvent struct {
	TradeID uuid.UUID `json:"trade_id"`
	Status  string    `json:"status"`
}
