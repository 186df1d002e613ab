package inventory

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"github.com/vsinha/stockout/pkg/domain/services"
	"github.com/vsinha/stockout/pkg/infrastructure/events"
	"golang.org/x/time/rate"
)

// Config holds configuration for the inventory store
type Config struct {
	// FloorRate is the lowest usage rate an item may carry (units/day)
	FloorRate decimal.Decimal
	// StepFraction is the proportional feedback step
	StepFraction decimal.Decimal
	// FixedStep is the absolute feedback step for the fixed strategy
	FixedStep decimal.Decimal
	Strategy  services.AdjustmentStrategy

	// HistorySeedDays is the number of synthetic observations a new item starts with
	HistorySeedDays int

	ForecastHorizonDays int
	// ForecastTimeout bounds a single fit and predict call (0 = no timeout)
	ForecastTimeout time.Duration
	// ForecastRateLimit throttles forecast calls; 0 disables throttling
	ForecastRateLimit rate.Limit
	ForecastBurst     int

	Clock  func() time.Time
	Logger logr.Logger
	// Events receives domain events after each committed mutation (optional)
	Events events.EventStore
	// MeterProvider receives the store counters; nil uses the global provider
	MeterProvider metric.MeterProvider
}

// DefaultConfig returns the standard store configuration
func DefaultConfig() Config {
	policy := services.DefaultFeedbackPolicy()
	return Config{
		FloorRate:           policy.FloorRate,
		StepFraction:        policy.StepFraction,
		FixedStep:           policy.FixedStep,
		Strategy:            policy.Strategy,
		HistorySeedDays:     10,
		ForecastHorizonDays: 30,
		ForecastTimeout:     5 * time.Second,
		ForecastRateLimit:   rate.Limit(2),
		ForecastBurst:       4,
		Clock:               func() time.Time { return time.Now().UTC() },
		Logger:              logr.Discard(),
	}
}

// FeedbackPolicy extracts the adjuster policy from the config
func (c Config) FeedbackPolicy() services.FeedbackPolicy {
	return services.FeedbackPolicy{
		Strategy:     c.Strategy,
		StepFraction: c.StepFraction,
		FixedStep:    c.FixedStep,
		FloorRate:    c.FloorRate,
	}
}

func (c Config) validate() error {
	if c.HistorySeedDays < 1 {
		return fmt.Errorf("history seed days must be at least 1, got %d", c.HistorySeedDays)
	}
	if c.ForecastHorizonDays < 1 {
		return fmt.Errorf("forecast horizon must be at least 1 day, got %d", c.ForecastHorizonDays)
	}
	if c.ForecastTimeout < 0 {
		return fmt.Errorf("forecast timeout cannot be negative, got %s", c.ForecastTimeout)
	}
	return c.FeedbackPolicy().Validate()
}

func (c Config) limiter() *rate.Limiter {
	if c.ForecastRateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := c.ForecastBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(c.ForecastRateLimit, burst)
}
