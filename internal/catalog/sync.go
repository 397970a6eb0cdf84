// internal/catalog/sync.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrProviderThrottled is returned when the card data provider answers 429.
// The sync is not retried; the caller re-issues the whole operation later.
var ErrProviderThrottled = errors.New("card provider rate limit exceeded")

// Provider fetches set contents from the upstream card data API. The
// provider throttles aggressively, so outbound calls go through a local
// limiter before they ever hit the wire.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewProvider creates a client for the card data API.
func NewProvider(baseURL, apiKey string) *Provider {
	return &Provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

type providerCard struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Rarity     string     `json:"rarity"`
	Number     string     `json:"number"`
	Artist     string     `json:"artist"`
	FlavorText string     `json:"flavorText"`
	Images     CardImages `json:"images"`
	Set        struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Series string `json:"series"`
		Total  int    `json:"total"`
	} `json:"set"`
}

type providerResponse struct {
	Data []providerCard `json:"data"`
}

// FetchSetCards downloads every card of one set.
func (p *Provider) FetchSetCards(ctx context.Context, setID string) ([]Card, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", "set.id:"+setID)
	q.Set("select", "id,name,images,rarity,set,number,artist,flavorText")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/cards?%s", p.baseURL, q.Encode()), nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch set %s: %w", setID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrProviderThrottled
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch set %s: unexpected status code %d", setID, resp.StatusCode)
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	cards := make([]Card, 0, len(body.Data))
	for _, pc := range body.Data {
		rarity := pc.Rarity
		if rarity == "" {
			rarity = "Common"
		}
		cards = append(cards, Card{
			ID:         pc.ID,
			Name:       pc.Name,
			Rarity:     rarity,
			SetID:      pc.Set.ID,
			Number:     pc.Number,
			Artist:     pc.Artist,
			FlavorText: pc.FlavorText,
			Images:     pc.Images,
		})
	}

	return cards, nil
}
