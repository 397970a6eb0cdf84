// internal/trainer/implementation.go
package trainer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"packvault/internal/packs"
	"packvault/pkg/eventstore"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	eventStore  *eventstore.EventStore
	db          *sql.DB
	rateLimiter *rate.Limiter
}

// NewService creates a new trainer service instance.
func NewService(es *eventstore.EventStore, db *sql.DB) Service {
	return &service{
		eventStore:  es,
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 registrations per minute
	}
}

// Register creates a new trainer with the starting coin balance.
func (s *service) Register(ctx context.Context, email, username, password string) (*Trainer, error) {
	if !s.rateLimiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	id := uuid.New()
	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	eventData := TrainerRegisteredEvent{
		ID:       id,
		Email:    email,
		Username: username,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		AggregateID:   id,
		AggregateType: "trainer",
		EventType:     "TrainerRegistered",
		EventData:     jsonData,
		Version:       1,
	}

	if err := s.eventStore.AppendEvents(ctx, id, "trainer", 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	t := &Trainer{
		ID:       id,
		Email:    email,
		Username: username,
		Coins:    StartingCoins,
		Status:   "active",
		Version:  1,
	}
	credential := &Credential{
		TrainerID:    id,
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	if err := s.insertTrainer(ctx, t, credential); err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	return t, nil
}

func (s *service) insertTrainer(ctx context.Context, t *Trainer, credential *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	trainerQuery := `
		INSERT INTO trainers (id, email, username, coins, status, version)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, trainerQuery, t.ID, t.Email, t.Username, t.Coins, t.Status, t.Version)
	if err != nil {
		return err
	}

	credQuery := `
		INSERT INTO credentials (trainer_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`
	_, err = tx.ExecContext(ctx, credQuery, credential.TrainerID, credential.PasswordHash, credential.Salt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Authenticate verifies a trainer's credentials.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Trainer, error) {
	t, err := s.getTrainerByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	credential, err := s.getCredential(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authentication failed: invalid credentials")
	}

	return t, nil
}

func (s *service) getTrainerByEmail(ctx context.Context, email string) (*Trainer, error) {
	query := `
		SELECT id, email, username, coins, packs_opened, money_spent, status, version
		FROM trainers
		WHERE email = $1
	`
	t := &Trainer{}
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&t.ID, &t.Email, &t.Username, &t.Coins, &t.PacksOpened, &t.MoneySpent, &t.Status, &t.Version,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) getCredential(ctx context.Context, trainerID uuid.UUID) (*Credential, error) {
	query := `
		SELECT trainer_id, password_hash, salt
		FROM credentials
		WHERE trainer_id = $1
	`
	credential := &Credential{}
	err := s.db.QueryRowContext(ctx, query, trainerID).Scan(
		&credential.TrainerID, &credential.PasswordHash, &credential.Salt,
	)
	if err != nil {
		return nil, err
	}
	return credential, nil
}

// GetTrainer retrieves a trainer by id.
func (s *service) GetTrainer(ctx context.Context, id uuid.UUID) (*Trainer, error) {
	query := `
		SELECT id, email, username, coins, packs_opened, money_spent, status, version
		FROM trainers
		WHERE id = $1
	`
	t := &Trainer{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Email, &t.Username, &t.Coins, &t.PacksOpened, &t.MoneySpent, &t.Status, &t.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trainer %s: %w", id, ErrTrainerNotFound)
		}
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}
	return t, nil
}

// PurchaseDebit subtracts a pack price and bumps the play statistics in a
// single conditional update. A zero row count with an existing trainer
// means the balance was short; composition never runs in that case.
func (s *service) PurchaseDebit(ctx context.Context, id uuid.UUID, amount int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trainers
		SET coins = coins - $1,
		    packs_opened = packs_opened + 1,
		    money_spent = money_spent + $1,
		    updated_at = NOW()
		WHERE id = $2 AND coins >= $1
	`, amount, id)
	if err != nil {
		return fmt.Errorf("debit trainer: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit trainer: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetTrainer(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientFunds
	}

	debitID := uuid.New()
	eventData := WalletDebitedEvent{DebitID: debitID, TrainerID: id, Amount: amount}
	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   debitID,
		AggregateType: "wallet_debit",
		EventType:     "WalletDebited",
		EventData:     jsonData,
		Version:       1,
	}
	if err := s.eventStore.AppendEvents(ctx, debitID, "wallet_debit", 0, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// RefundPurchase compensates a failed pack merge: the coins come back and
// the statistics bumped by PurchaseDebit are rolled back.
func (s *service) RefundPurchase(ctx context.Context, id uuid.UUID, amount int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE trainers
		SET coins = coins + $1,
		    packs_opened = packs_opened - 1,
		    money_spent = money_spent - $1,
		    updated_at = NOW()
		WHERE id = $2
	`, amount, id)
	if err != nil {
		return fmt.Errorf("refund trainer: %w", err)
	}
	return nil
}

// Credit adds coins to a trainer's wallet.
func (s *service) Credit(ctx context.Context, id uuid.UUID, amount int, reason string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trainers
		SET coins = coins + $1, updated_at = NOW()
		WHERE id = $2
	`, amount, id)
	if err != nil {
		return fmt.Errorf("credit trainer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit trainer: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("trainer %s: %w", id, ErrTrainerNotFound)
	}

	creditID := uuid.New()
	eventData := WalletCreditedEvent{CreditID: creditID, TrainerID: id, Amount: amount, Reason: reason}
	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	event := eventstore.Event{
		AggregateID:   creditID,
		AggregateType: "wallet_credit",
		EventType:     "WalletCredited",
		EventData:     jsonData,
		Version:       1,
	}
	if err := s.eventStore.AppendEvents(ctx, creditID, "wallet_credit", 0, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// GetBalance returns a trainer's current coin balance.
func (s *service) GetBalance(ctx context.Context, id uuid.UUID) (int, error) {
	var coins int
	err := s.db.QueryRowContext(ctx, `SELECT coins FROM trainers WHERE id = $1`, id).Scan(&coins)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("trainer %s: %w", id, ErrTrainerNotFound)
		}
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return coins, nil
}

// SendFriendRequest inserts a pending friendship. Requests between the
// same pair are de-duplicated in both directions.
func (s *service) SendFriendRequest(ctx context.Context, requesterID, targetID uuid.UUID) (*Friendship, error) {
	if requesterID == targetID {
		return nil, ErrSelfFriendship
	}

	var existing int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM friendships
		WHERE (user_id = $1 AND friend_id = $2)
		   OR (user_id = $2 AND friend_id = $1)
	`, requesterID, targetID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("check existing friendship: %w", err)
	}
	if existing > 0 {
		return nil, ErrFriendshipExists
	}

	f := &Friendship{
		ID:       uuid.New(),
		UserID:   requesterID,
		FriendID: targetID,
		Status:   "pending",
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO friendships (id, user_id, friend_id, status)
		VALUES ($1, $2, $3, $4)
	`, f.ID, f.UserID, f.FriendID, f.Status)
	if err != nil {
		return nil, fmt.Errorf("insert friendship: %w", err)
	}

	return f, nil
}

// AcceptFriendRequest flips a pending request to accepted. Only the
// request's target may accept; anything else is reported as not found.
func (s *service) AcceptFriendRequest(ctx context.Context, friendshipID, callerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE friendships
		SET status = 'accepted'
		WHERE id = $1 AND friend_id = $2 AND status = 'pending'
	`, friendshipID, callerID)
	if err != nil {
		return fmt.Errorf("accept friendship: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("accept friendship: %w", err)
	}
	if rows == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// RemoveFriendship deletes a friendship or rejects a pending request.
// Either side may remove.
func (s *service) RemoveFriendship(ctx context.Context, friendshipID, callerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM friendships
		WHERE id = $1 AND (user_id = $2 OR friend_id = $2)
	`, friendshipID, callerID)
	if err != nil {
		return fmt.Errorf("remove friendship: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove friendship: %w", err)
	}
	if rows == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// ListFriends returns accepted friends plus the caller, ranked by
// collection value, and incoming pending requests.
func (s *service) ListFriends(ctx context.Context, callerID uuid.UUID) (*FriendsList, error) {
	list := &FriendsList{
		Accepted: []FriendEntry{},
		Pending:  []PendingRequest{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id,
		       CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END AS friend_id,
		       COALESCE(t.username, 'Trainer'),
		       COALESCE(t.packs_opened, 0),
		       COALESCE(t.money_spent, 0)
		FROM friendships f
		LEFT JOIN trainers t ON t.id = (CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END)
		WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = 'accepted'
	`, callerID)
	if err != nil {
		return nil, fmt.Errorf("query friendships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry FriendEntry
		if err := rows.Scan(&entry.FriendshipID, &entry.TrainerID, &entry.Username, &entry.Stats.PacksOpened, &entry.Stats.MoneySpent); err != nil {
			return nil, fmt.Errorf("scan friendship: %w", err)
		}
		list.Accepted = append(list.Accepted, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friendships: %w", err)
	}

	// The ranking includes the caller so they can see their own standing.
	self, err := s.GetTrainer(ctx, callerID)
	if err == nil {
		list.Accepted = append(list.Accepted, FriendEntry{
			TrainerID: self.ID,
			Username:  self.Username,
			Stats: FriendStats{
				PacksOpened: self.PacksOpened,
				MoneySpent:  self.MoneySpent,
			},
		})
	}

	for i := range list.Accepted {
		if err := s.fillCollectionStats(ctx, &list.Accepted[i]); err != nil {
			return nil, err
		}
	}

	sort.Slice(list.Accepted, func(i, j int) bool {
		return list.Accepted[i].Stats.CollectionValue > list.Accepted[j].Stats.CollectionValue
	})

	pendingRows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, COALESCE(t.username, 'Trainer')
		FROM friendships f
		LEFT JOIN trainers t ON t.id = f.user_id
		WHERE f.friend_id = $1 AND f.status = 'pending'
	`, callerID)
	if err != nil {
		return nil, fmt.Errorf("query pending requests: %w", err)
	}
	defer pendingRows.Close()

	for pendingRows.Next() {
		var req PendingRequest
		if err := pendingRows.Scan(&req.FriendshipID, &req.RequesterID, &req.Username); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		list.Pending = append(list.Pending, req)
	}

	return list, pendingRows.Err()
}

func (s *service) fillCollectionStats(ctx context.Context, entry *FriendEntry) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uc.quantity, uc.is_favorite, c.rarity
		FROM user_collection uc
		JOIN cards c ON c.id = uc.card_id
		WHERE uc.trainer_id = $1
	`, entry.TrainerID)
	if err != nil {
		return fmt.Errorf("query collection stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var quantity int
		var isFavorite bool
		var rarity string
		if err := rows.Scan(&quantity, &isFavorite, &rarity); err != nil {
			return fmt.Errorf("scan collection stats: %w", err)
		}
		entry.Stats.UniqueCards++
		entry.Stats.TotalCards += quantity
		if isFavorite {
			entry.Stats.Favorites++
		}
		entry.Stats.CollectionValue += packs.SellPrice(rarity) * quantity
	}

	return rows.Err()
}
