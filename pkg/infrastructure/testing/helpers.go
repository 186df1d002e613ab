package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/services"
	"github.com/vsinha/stockout/pkg/infrastructure/repositories/memory"
)

// PantryItem describes one fixture item
type PantryItem struct {
	Name     entities.ItemName
	Stock    string
	Rate     string
	Unit     string
	LeadDays int
	// Usage holds observed usage for consecutive days ending the day before asOf
	Usage []string
}

// PantryItems is the household pantry scenario used across tests
var PantryItems = []PantryItem{
	{Name: "rice", Stock: "10", Rate: "1", Unit: "kg", LeadDays: 3, Usage: []string{"1", "1.2", "0.8", "1", "1.1", "0.9", "1"}},
	{Name: "coffee", Stock: "500", Rate: "40", Unit: "g", LeadDays: 5, Usage: []string{"35", "42", "38", "45", "41"}},
	{Name: "milk", Stock: "2", Rate: "0.5", Unit: "l", LeadDays: 1},
	{Name: "eggs", Stock: "0", Rate: "2", Unit: "units", LeadDays: 2},
}

// BuildPantryTestData builds the pantry scenario as of asOf, with seeded
// histories and derived dates computed, and returns preloaded repositories
func BuildPantryTestData(asOf time.Time) (*memory.ItemRepository, *memory.FeedbackLog) {
	itemRepo := memory.NewItemRepository(len(PantryItems))

	items := make([]*entities.InventoryItem, 0, len(PantryItems))
	for _, p := range PantryItems {
		items = append(items, BuildItem(p, asOf))
	}

	if err := itemRepo.LoadItems(context.Background(), items); err != nil {
		panic(err)
	}
	return itemRepo, memory.NewFeedbackLog()
}

// BuildItem materializes a fixture item as of asOf
func BuildItem(p PantryItem, asOf time.Time) *entities.InventoryItem {
	rate := decimal.RequireFromString(p.Rate)
	item, err := entities.NewInventoryItem(p.Name, decimal.RequireFromString(p.Stock), rate, p.Unit, p.LeadDays, asOf)
	if err != nil {
		panic(err)
	}

	item.History = entities.SeedHistory(rate, asOf, 10)
	start := entities.Day(asOf).AddDate(0, 0, -len(p.Usage))
	for i, usage := range p.Usage {
		item.History.Record(start.AddDate(0, 0, i), decimal.RequireFromString(usage))
	}

	services.ApplyDepletion(item, asOf)
	return item
}
