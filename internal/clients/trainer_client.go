package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"packvault/internal/trainer"

	"github.com/google/uuid"
)

// TrainerClient calls the trainer service's wallet boundary over HTTP.
type TrainerClient struct {
	baseURL string
}

func NewTrainerClient(baseURL string) *TrainerClient {
	return &TrainerClient{baseURL: baseURL}
}

func (c *TrainerClient) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return http.DefaultClient.Do(req)
}

// PurchaseDebit charges a pack price up front. Insufficient balance is
// surfaced as trainer.ErrInsufficientFunds so the purchase can skip
// composition entirely.
func (c *TrainerClient) PurchaseDebit(ctx context.Context, trainerID uuid.UUID, amount int) error {
	resp, err := c.post(ctx, fmt.Sprintf("/trainers/%s/purchases", trainerID), map[string]int{"amount": amount})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusPaymentRequired:
		return trainer.ErrInsufficientFunds
	case http.StatusNotFound:
		return trainer.ErrTrainerNotFound
	default:
		return fmt.Errorf("trainer service: unexpected status code %d", resp.StatusCode)
	}
}

// RefundPurchase compensates a debit whose pack merge failed.
func (c *TrainerClient) RefundPurchase(ctx context.Context, trainerID uuid.UUID, amount int) error {
	resp, err := c.post(ctx, fmt.Sprintf("/trainers/%s/refunds", trainerID), map[string]int{"amount": amount})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trainer service: unexpected status code %d", resp.StatusCode)
	}
	return nil
}

// Credit adds coins, used by card sales.
func (c *TrainerClient) Credit(ctx context.Context, trainerID uuid.UUID, amount int, reason string) error {
	resp, err := c.post(ctx, fmt.Sprintf("/trainers/%s/credits", trainerID), map[string]interface{}{
		"amount": amount,
		"reason": reason,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return trainer.ErrTrainerNotFound
	default:
		return fmt.Errorf("trainer service: unexpected status code %d", resp.StatusCode)
	}
}

// GetBalance reads a trainer's coin balance.
func (c *TrainerClient) GetBalance(ctx context.Context, trainerID uuid.UUID) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wallet", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Trainer-ID", trainerID.String())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("trainer service: unexpected status code %d", resp.StatusCode)
	}

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	var data struct {
		Coins int `json:"coins"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		return 0, err
	}
	return data.Coins, nil
}
