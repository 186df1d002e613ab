package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemName represents the unique key of a tracked stock item
type ItemName string

// InventoryItem is the aggregate root for one stock item: its stock, the
// online-adjusted usage rate, its consumption history and the depletion
// predictions derived from them
type InventoryItem struct {
	Name         ItemName
	CurrentStock decimal.Decimal
	UsageRate    decimal.Decimal
	Unit         string
	LeadDays     int
	LastUpdate   time.Time
	CreatedAt    time.Time
	History      ConsumptionHistory

	// Derived; nil AlertDate means the alert is suppressed for this cycle
	PredictedEmptyDate *time.Time
	AlertDate          *time.Time

	TooEarlyCount int
	TooLateCount  int
	FeedbackCount int
}

// NewInventoryItem creates a validated InventoryItem. Derived dates are left
// empty for the caller to compute.
func NewInventoryItem(
	name ItemName,
	currentStock decimal.Decimal,
	usageRate decimal.Decimal,
	unit string,
	leadDays int,
	now time.Time,
) (*InventoryItem, error) {
	if strings.TrimSpace(string(name)) == "" {
		return nil, fmt.Errorf("%w: item name cannot be empty", ErrInvalidItem)
	}
	if currentStock.IsNegative() {
		return nil, fmt.Errorf("%w: current stock cannot be negative, got %s", ErrInvalidItem, currentStock)
	}
	if !usageRate.IsPositive() {
		return nil, fmt.Errorf("%w: usage rate must be positive, got %s", ErrInvalidItem, usageRate)
	}
	if leadDays < 0 {
		return nil, fmt.Errorf("%w: lead days cannot be negative, got %d", ErrInvalidItem, leadDays)
	}

	return &InventoryItem{
		Name:         name,
		CurrentStock: currentStock,
		UsageRate:    usageRate,
		Unit:         unit,
		LeadDays:     leadDays,
		LastUpdate:   Day(now),
		CreatedAt:    now,
	}, nil
}

// AlertSuppressed reports whether the reorder alert is currently switched off
func (i *InventoryItem) AlertSuppressed() bool {
	return i.AlertDate == nil
}

// CountFeedback bumps the per-kind and total feedback counters
func (i *InventoryItem) CountFeedback(kind FeedbackKind) {
	switch kind {
	case TooEarly:
		i.TooEarlyCount++
	case TooLate:
		i.TooLateCount++
	}
	i.FeedbackCount++
}

// Clone returns a deep copy that shares no mutable state with i
func (i *InventoryItem) Clone() *InventoryItem {
	c := *i
	c.History = i.History.Clone()
	c.PredictedEmptyDate = copyTime(i.PredictedEmptyDate)
	c.AlertDate = copyTime(i.AlertDate)
	return &c
}
