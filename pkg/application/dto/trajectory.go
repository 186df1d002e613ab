package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

// Trajectory is the display-only forecast for one item
type Trajectory struct {
	Name        entities.ItemName `json:"name"`
	Unit        string            `json:"unit"`
	UsageRate   decimal.Decimal   `json:"usage_rate"`
	Points      []TrajectoryPoint `json:"points"`
	RateHistory []RatePoint       `json:"rate_history"`
}

// TrajectoryPoint pairs the model's raw prediction with the prediction
// rescaled so its mean matches the item's current usage rate
type TrajectoryPoint struct {
	Date      time.Time       `json:"date"`
	Predicted decimal.Decimal `json:"predicted"`
	Adjusted  decimal.Decimal `json:"adjusted"`
}

// RatePoint is the usage rate that resulted from one feedback adjustment
type RatePoint struct {
	Date      time.Time             `json:"date"`
	UsageRate decimal.Decimal       `json:"usage_rate"`
	Kind      entities.FeedbackKind `json:"kind"`
}
