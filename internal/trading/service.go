// internal/trading/service.go
package trading

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the trade protocol service.
type Service interface {
	Propose(ctx context.Context, senderID, receiverID uuid.UUID, senderCardID, receiverCardID string) (*Trade, error)
	Accept(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error)
	Reject(ctx context.Context, receiverID, tradeID uuid.UUID) (*Trade, error)
	ListPending(ctx context.Context, receiverID uuid.UUID) ([]TradeView, error)
	ListCompleted(ctx context.Context, senderID uuid.UUID) ([]TradeView, error)
	MarkRead(ctx context.Context, senderID, tradeID uuid.UUID) error
}
