package events

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

const (
	ItemRegisteredEvent = "item.registered"
	ItemReplacedEvent   = "item.replaced"

	PurchaseRecordedEvent = "purchase.recorded"
	AlertSuppressedEvent  = "alert.suppressed"

	FeedbackRecordedEvent = "feedback.recorded"
	UsageRecordedEvent    = "usage.recorded"
)

// StreamForItem names the event stream of one item
func StreamForItem(name entities.ItemName) string {
	return "item-" + string(name)
}

type ItemRegistered struct {
	Name         entities.ItemName `json:"name"`
	CurrentStock decimal.Decimal   `json:"current_stock"`
	UsageRate    decimal.Decimal   `json:"usage_rate"`
	LeadDays     int               `json:"lead_days"`
	EmptyDate    time.Time         `json:"empty_date"`
	AlertDate    time.Time         `json:"alert_date"`
}

type PurchaseRecorded struct {
	Name         entities.ItemName `json:"name"`
	Quantity     decimal.Decimal   `json:"quantity"`
	CurrentStock decimal.Decimal   `json:"current_stock"`
	EmptyDate    time.Time         `json:"empty_date"`
	AlertDate    *time.Time        `json:"alert_date,omitempty"`
}

type AlertSuppressed struct {
	Name          entities.ItemName `json:"name"`
	PreviousAlert time.Time         `json:"previous_alert"`
	EmptyDate     time.Time         `json:"empty_date"`
}

type FeedbackRecorded struct {
	Record entities.FeedbackRecord `json:"record"`
}

type UsageRecorded struct {
	Name     entities.ItemName `json:"name"`
	Date     time.Time         `json:"date"`
	Usage    decimal.Decimal   `json:"usage"`
	Replaced bool              `json:"replaced"`
}
