package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/services"
)

// ItemView is a read-only snapshot of an inventory item handed to callers
type ItemView struct {
	Name               entities.ItemName      `json:"name"`
	CurrentStock       decimal.Decimal        `json:"current_stock"`
	UsageRate          decimal.Decimal        `json:"usage_rate"`
	Unit               string                 `json:"unit"`
	LeadDays           int                    `json:"lead_days"`
	LastUpdate         time.Time              `json:"last_update"`
	CreatedAt          time.Time              `json:"created_at"`
	DaysLeft           int                    `json:"days_left"`
	PredictedEmptyDate *time.Time             `json:"predicted_empty_date,omitempty"`
	AlertDate          *time.Time             `json:"alert_date,omitempty"`
	AlertSuppressed    bool                   `json:"alert_suppressed"`
	TooEarlyCount      int                    `json:"too_early_count"`
	TooLateCount       int                    `json:"too_late_count"`
	FeedbackCount      int                    `json:"feedback_count"`
	History            []entities.Observation `json:"history"`
}

// NewItemView snapshots item. The item is not retained.
func NewItemView(item *entities.InventoryItem) ItemView {
	c := item.Clone()
	return ItemView{
		Name:               c.Name,
		CurrentStock:       c.CurrentStock,
		UsageRate:          c.UsageRate,
		Unit:               c.Unit,
		LeadDays:           c.LeadDays,
		LastUpdate:         c.LastUpdate,
		CreatedAt:          c.CreatedAt,
		DaysLeft:           services.ComputeDepletion(c.CurrentStock, c.UsageRate, c.LeadDays, c.LastUpdate).DaysLeft,
		PredictedEmptyDate: c.PredictedEmptyDate,
		AlertDate:          c.AlertDate,
		AlertSuppressed:    c.AlertSuppressed(),
		TooEarlyCount:      c.TooEarlyCount,
		TooLateCount:       c.TooLateCount,
		FeedbackCount:      c.FeedbackCount,
		History:            c.History.Observations(),
	}
}

// FeedbackResult is the outcome of one feedback submission
type FeedbackResult struct {
	Item   ItemView                `json:"item"`
	Record entities.FeedbackRecord `json:"record"`
}
