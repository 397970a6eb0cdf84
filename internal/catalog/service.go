// internal/catalog/service.go
package catalog

import (
	"context"
)

// Service defines the interface for the catalog service.
type Service interface {
	SyncSet(ctx context.Context, setID string, force bool) (*SyncResult, error)
	GetSetCards(ctx context.Context, setID string) ([]Card, error)
	GetCard(ctx context.Context, id string) (*Card, error)
	ListSets(ctx context.Context) ([]Set, error)
}
