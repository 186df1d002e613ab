package inventory

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/vsinha/stockout/pkg/domain/entities"
)

const instrumentationName = "github.com/vsinha/stockout/inventory"

type instruments struct {
	feedback         metric.Int64Counter
	purchases        metric.Int64Counter
	forecastFailures metric.Int64Counter
}

func newInstruments(provider metric.MeterProvider) instruments {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(instrumentationName)
	return instruments{
		feedback:         counter(meter, "stockout.feedback", "Feedback submissions applied"),
		purchases:        counter(meter, "stockout.purchases", "Purchases recorded"),
		forecastFailures: counter(meter, "stockout.forecast.failures", "Forecast requests that returned no trajectory"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func (s *Store) startSpan(ctx context.Context, op string, name entities.ItemName) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "inventory."+op,
		trace.WithAttributes(attribute.String("item.name", string(name))),
	)
}

// fail marks span as errored and returns err unchanged
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
