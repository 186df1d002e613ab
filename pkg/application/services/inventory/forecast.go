package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vsinha/stockout/pkg/application/dto"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

const trajectoryPlaces = 4

type forecastResult struct {
	predictions []entities.Observation
	err         error
}

// GetForecastTrajectory fits the configured forecast model to the item's
// consumption history and returns the predicted usage for the configured
// horizon, alongside the usage-rate history produced by feedback. Any model
// failure or timeout is reported as entities.ErrForecastUnavailable and never
// affects stored state.
func (s *Store) GetForecastTrajectory(ctx context.Context, name entities.ItemName) (dto.Trajectory, error) {
	ctx, span := s.startSpan(ctx, "GetForecastTrajectory", name)
	defer span.End()

	item, records, err := s.snapshot(ctx, name)
	if err != nil {
		return dto.Trajectory{}, fail(span, err)
	}

	predictions, err := s.predict(ctx, item.History.Observations())
	if err != nil {
		s.metrics.forecastFailures.Add(ctx, 1)
		s.logger.V(1).Info("forecast unavailable", "item", name, "reason", err.Error())
		return dto.Trajectory{}, fail(span, fmt.Errorf("%w: %s: %w", entities.ErrForecastUnavailable, name, err))
	}
	span.SetAttributes(attribute.Int("forecast.points", len(predictions)))

	trajectory := dto.Trajectory{
		Name:        item.Name,
		Unit:        item.Unit,
		UsageRate:   item.UsageRate,
		Points:      adjustPredictions(predictions, item.UsageRate),
		RateHistory: make([]dto.RatePoint, 0, len(records)),
	}
	for _, r := range records {
		trajectory.RateHistory = append(trajectory.RateHistory, dto.RatePoint{
			Date:      r.Date,
			UsageRate: r.ResultingUsageRate,
			Kind:      r.Kind,
		})
	}
	return trajectory, nil
}

// snapshot copies the item and its feedback records under the item lock so
// the slow forecast call runs without holding it
func (s *Store) snapshot(ctx context.Context, name entities.ItemName) (*entities.InventoryItem, []entities.FeedbackRecord, error) {
	unlock, err := s.lockItem(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	item, err := s.items.GetItem(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.feedback.Records(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return item, records, nil
}

func (s *Store) predict(ctx context.Context, history []entities.Observation) ([]entities.Observation, error) {
	if s.forecaster == nil {
		return nil, fmt.Errorf("no forecast model configured")
	}

	if s.config.ForecastTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ForecastTimeout)
		defer cancel()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("forecast throttled: %w", err)
	}

	done := make(chan forecastResult, 1)
	go func() {
		model, err := s.forecaster.Fit(ctx, history)
		if err != nil {
			done <- forecastResult{err: err}
			return
		}
		done <- forecastResult{predictions: s.forecaster.PredictFuture(model, s.config.ForecastHorizonDays)}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if len(res.predictions) == 0 {
			return nil, fmt.Errorf("forecast model returned no predictions")
		}
		return res.predictions, nil
	}
}

// adjustPredictions rescales the raw series so its mean equals usageRate.
// A series with a non-positive mean is replaced by the flat usage rate.
func adjustPredictions(predictions []entities.Observation, usageRate decimal.Decimal) []dto.TrajectoryPoint {
	sum := decimal.Zero
	for _, p := range predictions {
		sum = sum.Add(p.Usage)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(predictions))))

	points := make([]dto.TrajectoryPoint, 0, len(predictions))
	for _, p := range predictions {
		adjusted := usageRate
		if mean.IsPositive() {
			adjusted = p.Usage.Mul(usageRate).Div(mean).Round(trajectoryPlaces)
		}
		points = append(points, dto.TrajectoryPoint{
			Date:      p.Date,
			Predicted: p.Usage,
			Adjusted:  adjusted,
		})
	}
	return points
}
