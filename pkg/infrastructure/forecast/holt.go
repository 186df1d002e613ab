package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/services"
)

const (
	DefaultAlpha = 0.5
	DefaultBeta  = 0.3

	predictionPlaces = 4
)

// HoltAdapter forecasts daily usage with Holt's linear trend (double
// exponential smoothing). Days missing from the history are treated as
// unobserved: level and trend are carried forward without a correction.
type HoltAdapter struct {
	alpha float64
	beta  float64
}

type holtModel struct {
	level float64
	trend float64
	last  time.Time
}

// Verify interface compliance
var _ services.ForecastAdapter = (*HoltAdapter)(nil)

// NewHoltAdapter creates an adapter with level smoothing alpha and trend
// smoothing beta, both in (0, 1]
func NewHoltAdapter(alpha, beta float64) (*HoltAdapter, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("alpha must be in (0, 1], got %v", alpha)
	}
	if !(beta > 0 && beta <= 1) {
		return nil, fmt.Errorf("beta must be in (0, 1], got %v", beta)
	}
	return &HoltAdapter{alpha: alpha, beta: beta}, nil
}

// NewDefaultHoltAdapter creates an adapter with DefaultAlpha and DefaultBeta
func NewDefaultHoltAdapter() *HoltAdapter {
	return &HoltAdapter{alpha: DefaultAlpha, beta: DefaultBeta}
}

// Fit smooths the history into a level and a per-day trend
func (a *HoltAdapter) Fit(ctx context.Context, history []entities.Observation) (services.ForecastModel, error) {
	if len(history) < services.MinForecastHistory {
		return nil, fmt.Errorf("%w: need %d observations, got %d",
			entities.ErrInsufficientHistory, services.MinForecastHistory, len(history))
	}

	first, second := history[0], history[1]
	gap := daysBetween(first.Date, second.Date)
	if gap < 1 {
		return nil, fmt.Errorf("history is not in increasing date order at %s", second.Date.Format(entities.DateLayout))
	}

	m := &holtModel{
		level: first.Usage.InexactFloat64(),
		trend: (second.Usage.InexactFloat64() - first.Usage.InexactFloat64()) / float64(gap),
		last:  entities.Day(first.Date),
	}

	for _, obs := range history[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		day := entities.Day(obs.Date)
		steps := daysBetween(m.last, day)
		if steps < 1 {
			return nil, fmt.Errorf("history is not in increasing date order at %s", day.Format(entities.DateLayout))
		}

		// Unobserved days in between advance on the current trend
		m.level += float64(steps-1) * m.trend

		forecast := m.level + m.trend
		level := a.alpha*obs.Usage.InexactFloat64() + (1-a.alpha)*forecast
		m.trend = a.beta*(level-m.level) + (1-a.beta)*m.trend
		m.level = level
		m.last = day
	}

	return m, nil
}

// PredictFuture projects one non-negative usage value per day after the
// last fitted observation. It returns nil for a model it did not fit.
func (a *HoltAdapter) PredictFuture(model services.ForecastModel, horizonDays int) []entities.Observation {
	m, ok := model.(*holtModel)
	if !ok || horizonDays <= 0 {
		return nil
	}

	predictions := make([]entities.Observation, 0, horizonDays)
	for k := 1; k <= horizonDays; k++ {
		value := math.Max(0, m.level+float64(k)*m.trend)
		predictions = append(predictions, entities.Observation{
			Date:  m.last.AddDate(0, 0, k),
			Usage: decimal.NewFromFloat(value).Round(predictionPlaces),
		})
	}
	return predictions
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(entities.Day(to).Sub(entities.Day(from)).Hours() / 24))
}
