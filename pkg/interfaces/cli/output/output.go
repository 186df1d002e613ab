package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vsinha/stockout/pkg/application/dto"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format string
	Writer io.Writer
}

// Printer renders store results as text or JSON
type Printer struct {
	format string
	w      io.Writer
}

// NewPrinter creates a printer for the configured format
func NewPrinter(config Config) (*Printer, error) {
	switch config.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unsupported output format: %s", config.Format)
	}
	return &Printer{format: config.Format, w: config.Writer}, nil
}

// JSON reports whether the printer emits JSON
func (p *Printer) JSON() bool {
	return p.format == "json"
}

// Item prints one item
func (p *Printer) Item(view dto.ItemView) error {
	if p.JSON() {
		return p.writeJSON(view)
	}
	p.printItem(view)
	return nil
}

// Items prints a summary table of items
func (p *Printer) Items(views []dto.ItemView) error {
	if p.JSON() {
		return p.writeJSON(views)
	}

	if len(views) == 0 {
		fmt.Fprintln(p.w, "No items registered.")
		return nil
	}

	fmt.Fprintf(p.w, "📦 Inventory (%d items)\n", len(views))
	fmt.Fprintf(p.w, "%-20s %-12s %-10s %-9s %-12s %-12s\n",
		"Name", "Stock", "Rate/day", "Days Left", "Empty Date", "Alert Date")
	fmt.Fprintf(p.w, "%-20s %-12s %-10s %-9s %-12s %-12s\n",
		"--------------------", "------------", "----------", "---------", "------------", "------------")

	for _, v := range views {
		fmt.Fprintf(p.w, "%-20s %-12s %-10s %-9d %-12s %-12s\n",
			v.Name,
			v.CurrentStock.String()+" "+v.Unit,
			v.UsageRate.StringFixed(2),
			v.DaysLeft,
			formatDate(v.PredictedEmptyDate),
			formatAlert(v),
		)
	}
	return nil
}

// Feedback prints the outcome of a feedback submission
func (p *Printer) Feedback(result dto.FeedbackResult) error {
	if p.JSON() {
		return p.writeJSON(result)
	}

	r := result.Record
	fmt.Fprintf(p.w, "📝 Feedback %s recorded for %s: usage rate %s → %s/day\n",
		r.Kind, r.ItemName, r.ResultingUsageRate.Sub(r.Delta).StringFixed(3), r.ResultingUsageRate.StringFixed(3))
	p.printItem(result.Item)
	return nil
}

// FeedbackLog prints audit records
func (p *Printer) FeedbackLog(records []entities.FeedbackRecord) error {
	if p.JSON() {
		return p.writeJSON(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(p.w, "No feedback recorded.")
		return nil
	}

	fmt.Fprintf(p.w, "%-12s %-20s %-10s %-10s %-10s\n", "Date", "Item", "Kind", "Delta", "Rate")
	fmt.Fprintf(p.w, "%-12s %-20s %-10s %-10s %-10s\n",
		"------------", "--------------------", "----------", "----------", "----------")
	for _, r := range records {
		fmt.Fprintf(p.w, "%-12s %-20s %-10s %-10s %-10s\n",
			r.Date.Format(entities.DateLayout),
			r.ItemName,
			r.Kind,
			r.Delta.StringFixed(3),
			r.ResultingUsageRate.StringFixed(3))
	}
	return nil
}

// Trajectory prints a forecast trajectory and the usage-rate history
func (p *Printer) Trajectory(t dto.Trajectory) error {
	if p.JSON() {
		return p.writeJSON(t)
	}

	fmt.Fprintf(p.w, "📈 Forecast for %s (%d days, current rate %s %s/day)\n",
		t.Name, len(t.Points), t.UsageRate.StringFixed(2), t.Unit)
	fmt.Fprintf(p.w, "%-12s %-10s %-10s\n", "Date", "Predicted", "Adjusted")
	fmt.Fprintf(p.w, "%-12s %-10s %-10s\n", "------------", "----------", "----------")
	for _, pt := range t.Points {
		fmt.Fprintf(p.w, "%-12s %-10s %-10s\n",
			pt.Date.Format(entities.DateLayout),
			pt.Predicted.StringFixed(2),
			pt.Adjusted.StringFixed(2))
	}

	if len(t.RateHistory) > 0 {
		fmt.Fprintf(p.w, "\n🔧 Usage rate adjustments:\n")
		for _, rp := range t.RateHistory {
			fmt.Fprintf(p.w, "  %s  %-9s %s\n", rp.Date.Format(entities.DateLayout), rp.Kind, rp.UsageRate.StringFixed(3))
		}
	}
	return nil
}

// Messagef prints an informational line in text mode only
func (p *Printer) Messagef(format string, args ...any) {
	if p.JSON() {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) printItem(v dto.ItemView) {
	fmt.Fprintf(p.w, "📦 %s\n", v.Name)
	fmt.Fprintf(p.w, "  Stock:       %s %s\n", v.CurrentStock.String(), v.Unit)
	fmt.Fprintf(p.w, "  Usage rate:  %s %s/day\n", v.UsageRate.StringFixed(3), v.Unit)
	fmt.Fprintf(p.w, "  Lead time:   %d days\n", v.LeadDays)
	fmt.Fprintf(p.w, "  Days left:   %d\n", v.DaysLeft)
	fmt.Fprintf(p.w, "  Empty on:    %s\n", formatDate(v.PredictedEmptyDate))
	fmt.Fprintf(p.w, "  Alert on:    %s\n", formatAlert(v))
	fmt.Fprintf(p.w, "  Updated:     %s\n", v.LastUpdate.Format(entities.DateLayout))
	if v.FeedbackCount > 0 {
		fmt.Fprintf(p.w, "  Feedback:    %d total (%d too early, %d too late)\n",
			v.FeedbackCount, v.TooEarlyCount, v.TooLateCount)
	}
}

func (p *Printer) writeJSON(v any) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(entities.DateLayout)
}

func formatAlert(v dto.ItemView) string {
	if v.AlertSuppressed {
		return "suppressed"
	}
	return formatDate(v.AlertDate)
}
