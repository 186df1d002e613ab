package commands

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/stockout/pkg/domain/entities"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Items     int       // Number of items to generate
	Days      int       // Days of usage history per item
	OutputDir string    // Output directory for generated files
	Seed      int64     // Random seed for reproducible generation
	End       time.Time // Last day of generated usage history
	Verbose   bool
	Out       io.Writer
}

// GenerateCommand writes an items.csv and usage.csv scenario that the
// import command can load
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

type generatedItem struct {
	name     entities.ItemName
	unit     string
	stock    decimal.Decimal
	rate     decimal.Decimal
	leadDays int
}

var staples = []struct {
	name string
	unit string
}{
	{"rice", "kg"},
	{"flour", "kg"},
	{"coffee", "g"},
	{"milk", "l"},
	{"eggs", "units"},
	{"olive_oil", "l"},
	{"pasta", "kg"},
	{"sugar", "kg"},
	{"detergent", "l"},
	{"toilet_paper", "rolls"},
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Out == nil {
		config.Out = io.Discard
	}
	if config.End.IsZero() {
		config.End = time.Now().UTC()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// Execute generates the scenario files
func (cmd *GenerateCommand) Execute() error {
	if cmd.config.Items <= 0 {
		return fmt.Errorf("-items must be positive, got %d", cmd.config.Items)
	}
	if cmd.config.Days < 0 {
		return fmt.Errorf("-days must not be negative, got %d", cmd.config.Days)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.config.Out, "🔧 Generating scenario with %d items and %d days of usage\n",
			cmd.config.Items, cmd.config.Days)
		fmt.Fprintf(cmd.config.Out, "📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	items := cmd.generateItems()

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.config.Out, "📦 Generating items.csv...")
	}
	if err := cmd.writeItems(items); err != nil {
		return fmt.Errorf("failed to generate items: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.config.Out, "📈 Generating usage.csv...")
	}
	if err := cmd.writeUsage(items); err != nil {
		return fmt.Errorf("failed to generate usage: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.config.Out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) generateItems() []generatedItem {
	items := make([]generatedItem, 0, cmd.config.Items)
	for i := 0; i < cmd.config.Items; i++ {
		staple := staples[i%len(staples)]
		name := staple.name
		if i >= len(staples) {
			name = fmt.Sprintf("%s_%d", staple.name, i/len(staples)+1)
		}

		// 0.2 to 3.0 units per day, 1 to 30 days of stock
		rate := decimal.New(int64(2+cmd.rand.Intn(29)), -1)
		stock := rate.Mul(decimal.NewFromInt(int64(1 + cmd.rand.Intn(30))))

		items = append(items, generatedItem{
			name:     entities.ItemName(name),
			unit:     staple.unit,
			stock:    stock,
			rate:     rate,
			leadDays: 1 + cmd.rand.Intn(7),
		})
	}
	return items
}

func (cmd *GenerateCommand) writeItems(items []generatedItem) error {
	filePath := filepath.Join(cmd.config.OutputDir, "items.csv")
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "name,current_stock,usage_rate,unit,lead_days")
	for _, item := range items {
		fmt.Fprintf(file, "%s,%s,%s,%s,%d\n",
			item.name, item.stock, item.rate, item.unit, item.leadDays)
	}
	return nil
}

// writeUsage emits one observation per item per day with +/-30% noise
// around the item's rate
func (cmd *GenerateCommand) writeUsage(items []generatedItem) error {
	filePath := filepath.Join(cmd.config.OutputDir, "usage.csv")
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "name,date,usage")
	end := entities.Day(cmd.config.End)
	for _, item := range items {
		for d := cmd.config.Days; d >= 1; d-- {
			date := end.AddDate(0, 0, -d)
			noise := decimal.NewFromFloat(0.7 + 0.6*cmd.rand.Float64())
			usage := item.rate.Mul(noise).Round(2)
			fmt.Fprintf(file, "%s,%s,%s\n", item.name, date.Format(entities.DateLayout), usage)
		}
	}
	return nil
}
