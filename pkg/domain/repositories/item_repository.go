package repositories

import (
	"context"

	"github.com/vsinha/stockout/pkg/domain/entities"
)

// ItemRepository provides access to inventory items.
// Implementations hand out deep copies; callers mutate a copy and commit it
// with SaveItem.
type ItemRepository interface {
	// GetItem returns entities.ErrItemNotFound for an unknown name
	GetItem(ctx context.Context, name entities.ItemName) (*entities.InventoryItem, error)
	// GetAllItems returns items in registration order
	GetAllItems(ctx context.Context) ([]*entities.InventoryItem, error)
	// CreateItem returns entities.ErrDuplicateItem when the name is taken
	CreateItem(ctx context.Context, item *entities.InventoryItem) error
	// SaveItem inserts or replaces the item with the same name
	SaveItem(ctx context.Context, item *entities.InventoryItem) error
}
