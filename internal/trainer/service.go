// internal/trainer/service.go
package trainer

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the trainer service: identity, wallet
// and friendships.
type Service interface {
	Register(ctx context.Context, email, username, password string) (*Trainer, error)
	Authenticate(ctx context.Context, email, password string) (*Trainer, error)
	GetTrainer(ctx context.Context, id uuid.UUID) (*Trainer, error)

	// Wallet boundary. PurchaseDebit atomically checks the balance,
	// subtracts the pack price and bumps the play statistics; it is the
	// only coin mutation a pack purchase performs before composition.
	PurchaseDebit(ctx context.Context, id uuid.UUID, amount int) error
	RefundPurchase(ctx context.Context, id uuid.UUID, amount int) error
	Credit(ctx context.Context, id uuid.UUID, amount int, reason string) error
	GetBalance(ctx context.Context, id uuid.UUID) (int, error)

	SendFriendRequest(ctx context.Context, requesterID, targetID uuid.UUID) (*Friendship, error)
	AcceptFriendRequest(ctx context.Context, friendshipID, callerID uuid.UUID) error
	RemoveFriendship(ctx context.Context, friendshipID, callerID uuid.UUID) error
	ListFriends(ctx context.Context, callerID uuid.UUID) (*FriendsList, error)
}
