package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/stockout/pkg/application/dto"
	"github.com/vsinha/stockout/pkg/application/services/inventory"
	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/infrastructure/repositories/csv"
)

// runImport registers items and records usage observations from CSV files.
// Items that already exist are skipped unless -replace is given.
func (c *Command) runImport(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("import")
	itemsFile := set.String("items", "", "Path to items CSV file")
	usageFile := set.String("usage", "", "Path to usage observations CSV file")
	replace := set.Bool("replace", false, "Overwrite existing items")
	if err := set.Parse(args); err != nil {
		return err
	}
	if *itemsFile == "" && *usageFile == "" {
		return fmt.Errorf("must specify -items and/or -usage")
	}

	loader := csv.NewLoader()
	var changed []entities.ItemName

	if *itemsFile != "" {
		records, err := loader.LoadItems(*itemsFile)
		if err != nil {
			return fmt.Errorf("error loading items: %w", err)
		}

		added, skipped := 0, 0
		for _, r := range records {
			req := inventory.AddItemRequest{
				Name:         r.Name,
				CurrentStock: r.CurrentStock,
				UsageRate:    r.UsageRate,
				Unit:         r.Unit,
				LeadDays:     r.LeadDays,
			}

			var err error
			if *replace {
				_, err = store.ReplaceItem(ctx, req)
			} else {
				_, err = store.AddItem(ctx, req)
			}
			if errors.Is(err, entities.ErrDuplicateItem) {
				skipped++
				c.printer.Messagef("⏭️  %s already exists, skipped", r.Name)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to import item %s: %w", r.Name, err)
			}
			added++
			changed = append(changed, r.Name)
		}
		c.printer.Messagef("✅ Imported %d items (%d skipped)", added, skipped)
	}

	if *usageFile != "" {
		records, err := loader.LoadUsage(*usageFile)
		if err != nil {
			return fmt.Errorf("error loading usage: %w", err)
		}

		for _, r := range records {
			if _, err := store.RecordUsage(ctx, r.Name, r.Date, r.Usage); err != nil {
				return fmt.Errorf("failed to record usage for %s on %s: %w", r.Name, r.Date.Format(entities.DateLayout), err)
			}
			changed = append(changed, r.Name)
		}
		c.printer.Messagef("✅ Recorded %d usage observations", len(records))
	}

	if !c.printer.JSON() {
		return nil
	}
	return c.printImported(ctx, store, changed)
}

func (c *Command) printImported(ctx context.Context, store *inventory.Store, names []entities.ItemName) error {
	seen := make(map[entities.ItemName]bool, len(names))
	views := make([]dto.ItemView, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		view, err := store.GetItem(ctx, name)
		if err != nil {
			return err
		}
		views = append(views, view)
	}
	return c.printer.Items(views)
}
