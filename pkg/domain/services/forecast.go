package services

import (
	"context"

	"github.com/vsinha/stockout/pkg/domain/entities"
)

// MinForecastHistory is the fewest observations a forecast model accepts
const MinForecastHistory = 2

// ForecastModel is an opaque fitted model owned by a ForecastAdapter
type ForecastModel any

// ForecastAdapter fits a time-series model to a usage history and predicts
// future daily usage from it. Predictions are for display only and never
// feed depletion math.
type ForecastAdapter interface {
	// Fit returns entities.ErrInsufficientHistory when history holds fewer
	// than MinForecastHistory observations.
	Fit(ctx context.Context, history []entities.Observation) (ForecastModel, error)
	// PredictFuture returns one prediction per day for the horizonDays days
	// following the last fitted observation.
	PredictFuture(model ForecastModel, horizonDays int) []entities.Observation
}
