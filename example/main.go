package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/vsinha/stockout/pkg/application/services/inventory"
	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/infrastructure/events"
	"github.com/vsinha/stockout/pkg/infrastructure/forecast"
	"github.com/vsinha/stockout/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Simulated clock so the walkthrough is reproducible
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	eventStore := events.NewInMemoryEventStore(logr.Discard())

	config := inventory.DefaultConfig()
	config.Clock = func() time.Time { return now }
	config.Events = eventStore

	store, err := inventory.NewStoreWithConfig(
		memory.NewItemRepository(4),
		memory.NewFeedbackLog(),
		forecast.NewDefaultHoltAdapter(),
		config,
	)
	if err != nil {
		fmt.Printf("❌ Failed to create store: %v\n", err)
		return
	}

	fmt.Println("🛒 Registering rice: 10 kg, about 1 kg/day, warn 3 days ahead")
	rice, err := store.AddItem(ctx, inventory.AddItemRequest{
		Name:         "rice",
		CurrentStock: decimal.NewFromInt(10),
		UsageRate:    decimal.NewFromInt(1),
		Unit:         "kg",
		LeadDays:     3,
	})
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	printDates(rice.PredictedEmptyDate, rice.AlertDate)

	// A week of real consumption, a little heavier than estimated
	for i := 1; i <= 7; i++ {
		now = now.AddDate(0, 0, 1)
		usage := decimal.NewFromFloat(1.2 + 0.05*float64(i))
		if _, err := store.RecordUsage(ctx, "rice", now, usage); err != nil {
			fmt.Printf("❌ %v\n", err)
			return
		}
	}

	fmt.Println("\n⏰ The alert came too late, twice")
	for i := 0; i < 2; i++ {
		result, err := store.RecordFeedback(ctx, "rice", entities.TooLate, now)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			return
		}
		fmt.Printf("  usage rate now %s kg/day\n", result.Item.UsageRate.StringFixed(3))
		rice = result.Item
	}
	printDates(rice.PredictedEmptyDate, rice.AlertDate)

	fmt.Println("\n🧾 Bought 5 kg")
	rice, err = store.RecordPurchase(ctx, "rice", decimal.NewFromInt(5))
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	printDates(rice.PredictedEmptyDate, rice.AlertDate)

	fmt.Println("\n📈 Forecast for the next week:")
	trajectory, err := store.GetForecastTrajectory(ctx, "rice")
	switch {
	case errors.Is(err, entities.ErrForecastUnavailable):
		fmt.Printf("  ⚠️  %v\n", err)
	case err != nil:
		fmt.Printf("❌ %v\n", err)
		return
	default:
		for _, p := range trajectory.Points[:7] {
			fmt.Printf("  %s  model %s  adjusted %s\n",
				p.Date.Format(entities.DateLayout), p.Predicted.StringFixed(2), p.Adjusted.StringFixed(2))
		}
	}

	all, _ := eventStore.ReadAllEvents(0)
	fmt.Printf("\n🔔 %d events published\n", len(all))
	for _, e := range all {
		if e.Type() != events.UsageRecordedEvent {
			fmt.Printf("  v%-2d %s\n", e.Version(), e.Type())
		}
	}
}

func printDates(empty, alert *time.Time) {
	fmt.Printf("  runs out on %s\n", empty.Format(entities.DateLayout))
	if alert == nil {
		fmt.Println("  reorder alert suppressed until the next update")
		return
	}
	fmt.Printf("  reorder alert on %s\n", alert.Format(entities.DateLayout))
}
