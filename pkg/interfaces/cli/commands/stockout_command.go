package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/vsinha/stockout/pkg/application/services/inventory"
	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/services"
	"github.com/vsinha/stockout/pkg/infrastructure/events"
	"github.com/vsinha/stockout/pkg/infrastructure/forecast"
	"github.com/vsinha/stockout/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/stockout/pkg/interfaces/cli/output"
)

// Config holds configuration for the stockout command
type Config struct {
	DBPath          string
	Format          string
	Verbose         bool
	Strategy        string
	ForecastTimeout time.Duration
	// Args holds the subcommand followed by its flags
	Args   []string
	Out    io.Writer
	Logger logr.Logger
	Clock  func() time.Time
}

// Command dispatches stockout subcommands against a SQLite-backed store
type Command struct {
	config  Config
	printer *output.Printer
	events  *events.InMemoryEventStore
}

type subcommand func(c *Command, ctx context.Context, store *inventory.Store, args []string) error

var subcommands = map[string]subcommand{
	"add":      (*Command).runAdd,
	"purchase": (*Command).runPurchase,
	"feedback": (*Command).runFeedback,
	"usage":    (*Command).runUsage,
	"list":     (*Command).runList,
	"show":     (*Command).runShow,
	"log":      (*Command).runLog,
	"import":   (*Command).runImport,
}

// NewCommand creates a new stockout command with the given configuration
func NewCommand(config Config) *Command {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.Format == "" {
		config.Format = "text"
	}
	return &Command{config: config}
}

// Execute runs the configured subcommand
func (c *Command) Execute(ctx context.Context) error {
	if len(c.config.Args) == 0 || isHelp(c.config.Args[0]) {
		c.showHelp()
		return nil
	}

	name, args := c.config.Args[0], c.config.Args[1:]
	if name == "generate" {
		return c.runGenerate(args)
	}
	run, ok := subcommands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (run with -help for usage)", name)
	}

	printer, err := output.NewPrinter(output.Config{Format: c.config.Format, Writer: c.config.Out})
	if err != nil {
		return err
	}
	c.printer = printer

	db, err := sqlite.Open(c.config.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := c.newStore(db)
	if err != nil {
		return err
	}

	if err := run(c, ctx, store, args); err != nil {
		return err
	}

	if c.config.Verbose {
		c.printEvents()
	}
	return nil
}

func (c *Command) newStore(db *sqlite.DB) (*inventory.Store, error) {
	strategy, err := services.ParseAdjustmentStrategy(c.config.Strategy)
	if err != nil {
		return nil, err
	}

	c.events = events.NewInMemoryEventStore(c.config.Logger)
	c.events.Subscribe(events.HandlerFunc(c.announceAlert), events.PurchaseRecordedEvent, events.AlertSuppressedEvent)

	config := inventory.DefaultConfig()
	config.Strategy = strategy
	config.Logger = c.config.Logger
	config.Events = c.events
	if c.config.Clock != nil {
		config.Clock = c.config.Clock
	}
	if c.config.ForecastTimeout > 0 {
		config.ForecastTimeout = c.config.ForecastTimeout
	}

	return inventory.NewStoreWithConfig(db.Items(), db.FeedbackLog(), forecast.NewDefaultHoltAdapter(), config)
}

func (c *Command) now() time.Time {
	if c.config.Clock != nil {
		return c.config.Clock()
	}
	return time.Now().UTC()
}

func (c *Command) runAdd(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("add")
	name := set.String("name", "", "Item name")
	stock := set.String("stock", "0", "Current stock")
	rate := set.String("rate", "", "Estimated usage per day")
	unit := set.String("unit", "units", "Unit label")
	lead := set.Int("lead", 3, "Days of warning before the item runs out")
	replace := set.Bool("replace", false, "Overwrite an existing item with the same name")
	if err := set.Parse(args); err != nil {
		return err
	}

	req, err := addRequest(*name, *stock, *rate, *unit, *lead)
	if err != nil {
		return err
	}

	add := store.AddItem
	if *replace {
		add = store.ReplaceItem
	}
	view, err := add(ctx, req)
	if err != nil {
		return err
	}
	return c.printer.Item(view)
}

func (c *Command) runPurchase(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("purchase")
	name := set.String("name", "", "Item name")
	qty := set.String("qty", "", "Quantity bought")
	if err := set.Parse(args); err != nil {
		return err
	}

	quantity, err := parseDecimal("qty", *qty)
	if err != nil {
		return err
	}
	view, err := store.RecordPurchase(ctx, entities.ItemName(*name), quantity)
	if err != nil {
		return err
	}
	return c.printer.Item(view)
}

func (c *Command) runFeedback(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("feedback")
	name := set.String("name", "", "Item name")
	kindFlag := set.String("kind", "", "too_early or too_late")
	dateFlag := set.String("date", "", "Date of the feedback (YYYY-MM-DD, default today)")
	if err := set.Parse(args); err != nil {
		return err
	}

	kind, err := entities.ParseFeedbackKind(*kindFlag)
	if err != nil {
		return err
	}
	date, err := c.parseDateOrToday(*dateFlag)
	if err != nil {
		return err
	}

	result, err := store.RecordFeedback(ctx, entities.ItemName(*name), kind, date)
	if err != nil {
		return err
	}
	return c.printer.Feedback(result)
}

func (c *Command) runUsage(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("usage")
	name := set.String("name", "", "Item name")
	dateFlag := set.String("date", "", "Day of the observation (YYYY-MM-DD, default today)")
	usageFlag := set.String("usage", "", "Amount used that day")
	if err := set.Parse(args); err != nil {
		return err
	}

	date, err := c.parseDateOrToday(*dateFlag)
	if err != nil {
		return err
	}
	usage, err := parseDecimal("usage", *usageFlag)
	if err != nil {
		return err
	}

	view, err := store.RecordUsage(ctx, entities.ItemName(*name), date, usage)
	if err != nil {
		return err
	}
	return c.printer.Item(view)
}

func (c *Command) runList(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("list")
	if err := set.Parse(args); err != nil {
		return err
	}

	views, err := store.ListItems(ctx)
	if err != nil {
		return err
	}
	return c.printer.Items(views)
}

func (c *Command) runShow(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("show")
	name := set.String("name", "", "Item name")
	if err := set.Parse(args); err != nil {
		return err
	}

	view, err := store.GetItem(ctx, entities.ItemName(*name))
	if err != nil {
		return err
	}
	if err := c.printer.Item(view); err != nil {
		return err
	}

	trajectory, err := store.GetForecastTrajectory(ctx, view.Name)
	if errors.Is(err, entities.ErrForecastUnavailable) {
		c.printer.Messagef("\n⚠️  %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	c.printer.Messagef("")
	return c.printer.Trajectory(trajectory)
}

func (c *Command) runLog(ctx context.Context, store *inventory.Store, args []string) error {
	set := newFlagSet("log")
	name := set.String("name", "", "Only show feedback for this item")
	if err := set.Parse(args); err != nil {
		return err
	}

	records, err := store.FeedbackLog(ctx, entities.ItemName(*name))
	if err != nil {
		return err
	}
	return c.printer.FeedbackLog(records)
}

func (c *Command) runGenerate(args []string) error {
	set := newFlagSet("generate")
	items := set.Int("items", 10, "Number of items to generate")
	days := set.Int("days", 14, "Days of usage history per item")
	dir := set.String("output", "", "Output directory for generated files")
	seed := set.Int64("seed", 0, "Random seed for reproducible generation")
	if err := set.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("-output is required")
	}

	return NewGenerateCommand(GenerateConfig{
		Items:     *items,
		Days:      *days,
		OutputDir: *dir,
		Seed:      *seed,
		End:       c.now(),
		Verbose:   c.config.Verbose,
		Out:       c.config.Out,
	}).Execute()
}

func (c *Command) parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		return entities.Day(c.now()), nil
	}
	date, err := entities.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return date, nil
}

// announceAlert reports reorder-alert changes caused by a purchase
func (c *Command) announceAlert(e events.Event) error {
	switch data := e.Data().(type) {
	case events.AlertSuppressed:
		c.printer.Messagef("🔕 Reorder alert for %s cleared (was %s, now empty on %s)",
			data.Name, data.PreviousAlert.Format(entities.DateLayout), data.EmptyDate.Format(entities.DateLayout))
	case events.PurchaseRecorded:
		if data.AlertDate != nil {
			c.printer.Messagef("🔔 Reorder alert for %s set for %s", data.Name, data.AlertDate.Format(entities.DateLayout))
		}
	default:
		return fmt.Errorf("unexpected payload %T for %s", e.Data(), e.Type())
	}
	return nil
}

func (c *Command) printEvents() {
	all, err := c.events.ReadAllEvents(0)
	if err != nil || c.printer.JSON() {
		return
	}
	for _, e := range all {
		c.printer.Messagef("🔔 %s %s", e.Type(), e.StreamID())
	}
}

// showHelp displays the help message
func (c *Command) showHelp() {
	names := []string{"generate"}
	for name := range subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(c.config.Out, `stockout - depletion forecasts and reorder alerts for household stock

USAGE:
    stockout [global options] <command> [command options]

COMMANDS: %s

GLOBAL OPTIONS:
    -db <path>          SQLite database file (default: $STOCKOUT_DB or stockout.db)
    -format <fmt>       Output format: text, json (default: text)
    -strategy <name>    Feedback strategy: proportional, fixed (default: proportional)
    -verbose            Enable verbose output
    -help               Show this help message

COMMAND OPTIONS:
    add       -name <item> -stock <qty> -rate <per day> [-unit <label>] [-lead <days>] [-replace]
    purchase  -name <item> -qty <qty>
    feedback  -name <item> -kind too_early|too_late [-date YYYY-MM-DD]
    usage     -name <item> -usage <qty> [-date YYYY-MM-DD]
    list
    show      -name <item>
    log       [-name <item>]
    import    [-items <file>] [-usage <file>] [-replace]
    generate  -output <dir> [-items <n>] [-days <n>] [-seed <n>]

CSV FILE FORMATS:

items.csv:
    name,current_stock,usage_rate,unit,lead_days
    rice,10,1,kg,3

usage.csv:
    name,date,usage
    rice,2026-10-01,1.5

EXAMPLES:
    stockout add -name rice -stock 10 -rate 1 -unit kg -lead 3
    stockout purchase -name rice -qty 5
    stockout feedback -name rice -kind too_late
    stockout show -name rice -format json
    stockout generate -output ./scenario -items 20 -seed 42
`, strings.Join(names, ", "))
}

func newFlagSet(name string) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(io.Discard)
	return set
}

func isHelp(arg string) bool {
	switch arg {
	case "help", "-help", "--help", "-h":
		return true
	}
	return false
}

func parseDecimal(flagName, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, fmt.Errorf("-%s is required", flagName)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid -%s %q: %w", flagName, value, err)
	}
	return d, nil
}

func addRequest(name, stock, rate, unit string, leadDays int) (inventory.AddItemRequest, error) {
	currentStock, err := parseDecimal("stock", stock)
	if err != nil {
		return inventory.AddItemRequest{}, err
	}
	usageRate, err := parseDecimal("rate", rate)
	if err != nil {
		return inventory.AddItemRequest{}, err
	}
	return inventory.AddItemRequest{
		Name:         entities.ItemName(strings.TrimSpace(name)),
		CurrentStock: currentStock,
		UsageRate:    usageRate,
		Unit:         unit,
		LeadDays:     leadDays,
	}, nil
}
