package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"packvault/internal/catalog"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	ErrorKind string          `json:"error_kind"`
	Message   string          `json:"message"`
}

// CatalogClient calls the catalog service over HTTP.
type CatalogClient struct {
	baseURL string
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{baseURL: baseURL}
}

// GetSetCards fetches the full card list for one set.
func (c *CatalogClient) GetSetCards(ctx context.Context, setID string) ([]catalog.Card, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/sets/%s/cards", c.baseURL, setID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("set %s: %w", setID, catalog.ErrSetNotFound)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return nil, fmt.Errorf("catalog service: unexpected status code %d (%s)", resp.StatusCode, body.Message)
	}

	var cards []catalog.Card
	if err := json.Unmarshal(body.Data, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard fetches a single card by id.
func (c *CatalogClient) GetCard(ctx context.Context, cardID string) (*catalog.Card, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/cards/%s", c.baseURL, cardID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("card %s: %w", cardID, catalog.ErrCardNotFound)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return nil, fmt.Errorf("catalog service: unexpected status code %d (%s)", resp.StatusCode, body.Message)
	}

	var card catalog.Card
	if err := json.Unmarshal(body.Data, &card); err != nil {
		return nil, err
	}
	return &card, nil
}
