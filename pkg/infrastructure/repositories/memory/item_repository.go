package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/repositories"
)

// ItemRepository provides in-memory item storage
type ItemRepository struct {
	mu       sync.RWMutex
	items    []*entities.InventoryItem
	itemsMap map[entities.ItemName]int
}

// NewItemRepository creates a new in-memory item repository
func NewItemRepository(expectedItems int) *ItemRepository {
	return &ItemRepository{
		items:    make([]*entities.InventoryItem, 0, expectedItems),
		itemsMap: make(map[entities.ItemName]int, expectedItems),
	}
}

// Verify interface compliance
var _ repositories.ItemRepository = (*ItemRepository)(nil)

// LoadItems registers items in order, failing on the first duplicate name
func (r *ItemRepository) LoadItems(ctx context.Context, items []*entities.InventoryItem) error {
	for _, item := range items {
		if err := r.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// CreateItem adds a new item to the repository
func (r *ItemRepository) CreateItem(_ context.Context, item *entities.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.itemsMap[item.Name]; exists {
		return fmt.Errorf("%w: %s", entities.ErrDuplicateItem, item.Name)
	}
	r.itemsMap[item.Name] = len(r.items)
	r.items = append(r.items, item.Clone())
	return nil
}

// SaveItem replaces the stored item with the same name, adding it when absent
func (r *ItemRepository) SaveItem(_ context.Context, item *entities.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.itemsMap[item.Name]; exists {
		r.items[index] = item.Clone()
		return nil
	}
	r.itemsMap[item.Name] = len(r.items)
	r.items = append(r.items, item.Clone())
	return nil
}

// GetItem returns a copy of the item with the given name
func (r *ItemRepository) GetItem(_ context.Context, name entities.ItemName) (*entities.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.itemsMap[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrItemNotFound, name)
	}
	return r.items[index].Clone(), nil
}

// GetAllItems returns copies of all items in registration order
func (r *ItemRepository) GetAllItems(_ context.Context) ([]*entities.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*entities.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item.Clone())
	}
	return items, nil
}
