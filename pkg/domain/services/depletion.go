package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

// MaxHorizonDays caps how far ahead a depletion date is projected (100 years)
const MaxHorizonDays = 36500

var maxHorizon = decimal.NewFromInt(MaxHorizonDays)

// Depletion holds the derived dates for one stock level and usage rate
type Depletion struct {
	DaysLeft  int
	EmptyDate time.Time
	AlertDate time.Time
}

// ComputeDepletion projects when currentStock runs out at usageRate units per
// day counted from asOf's calendar day, and when the reorder alert should fire
// leadDays before that. Days left are floored to whole days. A non-positive
// rate never depletes and is projected to the horizon.
func ComputeDepletion(currentStock, usageRate decimal.Decimal, leadDays int, asOf time.Time) Depletion {
	daysLeft := 0
	switch {
	case !currentStock.IsPositive():
		daysLeft = 0
	case !usageRate.IsPositive():
		daysLeft = MaxHorizonDays
	default:
		days := currentStock.Div(usageRate).Floor()
		if days.GreaterThan(maxHorizon) {
			daysLeft = MaxHorizonDays
		} else {
			daysLeft = int(days.IntPart())
		}
	}

	emptyDate := entities.Day(asOf).AddDate(0, 0, daysLeft)
	return Depletion{
		DaysLeft:  daysLeft,
		EmptyDate: emptyDate,
		AlertDate: emptyDate.AddDate(0, 0, -leadDays),
	}
}

// ApplyDepletion recomputes item's derived dates as of asOf
func ApplyDepletion(item *entities.InventoryItem, asOf time.Time) Depletion {
	d := ComputeDepletion(item.CurrentStock, item.UsageRate, item.LeadDays, asOf)
	empty, alert := d.EmptyDate, d.AlertDate
	item.PredictedEmptyDate = &empty
	item.AlertDate = &alert
	return d
}
