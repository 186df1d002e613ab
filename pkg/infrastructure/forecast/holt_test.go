package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

var start = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func series(values ...float64) []entities.Observation {
	out := make([]entities.Observation, len(values))
	for i, v := range values {
		out[i] = entities.Observation{Date: start.AddDate(0, 0, i), Usage: decimal.NewFromFloat(v)}
	}
	return out
}

func TestHoltAdapter_ConstantSeries(t *testing.T) {
	adapter := NewDefaultHoltAdapter()

	model, err := adapter.Fit(context.Background(), series(2, 2, 2, 2, 2, 2, 2, 2, 2, 2))
	require.NoError(t, err)

	predictions := adapter.PredictFuture(model, 30)
	require.Len(t, predictions, 30)
	assert.True(t, predictions[0].Date.Equal(start.AddDate(0, 0, 10)))
	assert.True(t, predictions[29].Date.Equal(start.AddDate(0, 0, 39)))
	for _, p := range predictions {
		assert.True(t, p.Usage.Equal(decimal.NewFromInt(2)), "got %s on %s", p.Usage, p.Date)
	}
}

func TestHoltAdapter_LinearTrend(t *testing.T) {
	adapter := NewDefaultHoltAdapter()

	model, err := adapter.Fit(context.Background(), series(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)

	predictions := adapter.PredictFuture(model, 3)
	require.Len(t, predictions, 3)
	assert.True(t, predictions[0].Usage.Equal(decimal.NewFromInt(7)), "got %s", predictions[0].Usage)
	assert.True(t, predictions[2].Usage.Equal(decimal.NewFromInt(9)), "got %s", predictions[2].Usage)
}

func TestHoltAdapter_NeverPredictsNegativeUsage(t *testing.T) {
	adapter := NewDefaultHoltAdapter()

	model, err := adapter.Fit(context.Background(), series(10, 8, 6, 4, 2))
	require.NoError(t, err)

	for _, p := range adapter.PredictFuture(model, 10) {
		assert.False(t, p.Usage.IsNegative(), "got %s", p.Usage)
	}
}

func TestHoltAdapter_GapsAdvanceOnTrend(t *testing.T) {
	adapter := NewDefaultHoltAdapter()
	history := []entities.Observation{
		{Date: start, Usage: decimal.NewFromInt(1)},
		{Date: start.AddDate(0, 0, 1), Usage: decimal.NewFromInt(2)},
		{Date: start.AddDate(0, 0, 4), Usage: decimal.NewFromInt(5)},
	}

	model, err := adapter.Fit(context.Background(), history)
	require.NoError(t, err)

	predictions := adapter.PredictFuture(model, 1)
	require.Len(t, predictions, 1)
	assert.True(t, predictions[0].Date.Equal(start.AddDate(0, 0, 5)))
	assert.True(t, predictions[0].Usage.Equal(decimal.NewFromInt(6)), "got %s", predictions[0].Usage)
}

func TestHoltAdapter_InsufficientHistory(t *testing.T) {
	_, err := NewDefaultHoltAdapter().Fit(context.Background(), series(3))
	assert.True(t, errors.Is(err, entities.ErrInsufficientHistory))
}

func TestHoltAdapter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultHoltAdapter().Fit(ctx, series(1, 2, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHoltAdapter_ForeignModel(t *testing.T) {
	assert.Nil(t, NewDefaultHoltAdapter().PredictFuture("not a model", 5))
}

func TestNewHoltAdapter_Validation(t *testing.T) {
	_, err := NewHoltAdapter(0, 0.5)
	assert.Error(t, err)
	_, err = NewHoltAdapter(0.5, 1.5)
	assert.Error(t, err)
	_, err = NewHoltAdapter(1, 1)
	assert.NoError(t, err)
}
