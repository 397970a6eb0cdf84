// internal/trainer/domain.go
package trainer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTrainerNotFound    = errors.New("trainer not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSelfFriendship     = errors.New("cannot befriend yourself")
	ErrFriendshipExists   = errors.New("friendship or pending request already exists")
	ErrFriendshipNotFound = errors.New("friendship not found")
)

// StartingCoins is the balance granted to every new trainer.
const StartingCoins = 500

// Trainer is a player account: identity, wallet and play statistics.
type Trainer struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	Username    string    `json:"username"`
	Coins       int       `json:"coins"`
	PacksOpened int       `json:"packs_opened"`
	MoneySpent  int       `json:"money_spent"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Credential stores a trainer's login secret.
type Credential struct {
	TrainerID    uuid.UUID `json:"trainer_id"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
}

// Friendship links two trainers. Unlike trades, requests between the same
// pair are de-duplicated in both directions.
type Friendship struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FriendID  uuid.UUID `json:"friend_id"`
	Status    string    `json:"status"` // "pending" or "accepted"
	CreatedAt time.Time `json:"created_at"`
}

// FriendStats summarises a friend's collection for the ranking view.
type FriendStats struct {
	CollectionValue int `json:"collection_value"`
	TotalCards      int `json:"total_cards"`
	UniqueCards     int `json:"unique_cards"`
	Favorites       int `json:"favorites"`
	PacksOpened     int `json:"packs_opened"`
	MoneySpent      int `json:"money_spent"`
}

// FriendEntry is one row of the friends ranking, the caller included.
type FriendEntry struct {
	FriendshipID uuid.UUID   `json:"friendship_id"`
	TrainerID    uuid.UUID   `json:"trainer_id"`
	Username     string      `json:"username"`
	Stats        FriendStats `json:"stats"`
}

// PendingRequest is an incoming friend request awaiting a decision.
type PendingRequest struct {
	FriendshipID uuid.UUID `json:"friendship_id"`
	RequesterID  uuid.UUID `json:"requester_id"`
	Username     string    `json:"username"`
}

// FriendsList is the full social view for one trainer.
type FriendsList struct {
	Accepted []FriendEntry    `json:"accepted"`
	Pending  []PendingRequest `json:"pending"`
}

// TrainerRegisteredEvent is published when a new trainer registers.
type TrainerRegisteredEvent struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// WalletDebitedEvent is published when a pack purchase debits coins.
type WalletDebitedEvent struct {
	DebitID   uuid.UUID `json:"debit_id"`
	TrainerID uuid.UUID `json:"trainer_id"`
	Amount    int       `json:"amount"`
}

// WalletCreditedEvent is published when a sale or refund credits coins.
type WalletCreditedEvent struct {
	CreditID  uuid.UUID `json:"credit_id"`
	TrainerID uuid.UUID `json:"trainer_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
}
