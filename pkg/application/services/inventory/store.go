package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/vsinha/stockout/pkg/application/dto"
	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/repositories"
	"github.com/vsinha/stockout/pkg/domain/services"
	"github.com/vsinha/stockout/pkg/infrastructure/events"
)

// AddItemRequest describes an item registration
type AddItemRequest struct {
	Name         entities.ItemName
	CurrentStock decimal.Decimal
	UsageRate    decimal.Decimal
	Unit         string
	LeadDays     int
}

// Store owns all inventory items and orchestrates purchases, feedback and
// usage observations. Mutating operations on the same item are serialized;
// operations on different items run concurrently. Callers only ever receive
// copies of stored state.
type Store struct {
	config     Config
	items      repositories.ItemRepository
	feedback   repositories.FeedbackLog
	forecaster services.ForecastAdapter
	adjuster   *services.FeedbackAdjuster
	limiter    *rate.Limiter
	logger     logr.Logger
	tracer     trace.Tracer
	metrics    instruments

	locks sync.Map // entities.ItemName -> *sync.Mutex
}

// NewStore creates a store with the default configuration. forecaster may be
// nil, in which case forecast trajectories are unavailable.
func NewStore(
	items repositories.ItemRepository,
	feedback repositories.FeedbackLog,
	forecaster services.ForecastAdapter,
) (*Store, error) {
	return NewStoreWithConfig(items, feedback, forecaster, DefaultConfig())
}

// NewStoreWithConfig creates a store with custom configuration
func NewStoreWithConfig(
	items repositories.ItemRepository,
	feedback repositories.FeedbackLog,
	forecaster services.ForecastAdapter,
	config Config,
) (*Store, error) {
	if items == nil || feedback == nil {
		return nil, fmt.Errorf("item repository and feedback log are required")
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid inventory config: %w", err)
	}
	adjuster, err := services.NewFeedbackAdjuster(config.FeedbackPolicy())
	if err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = DefaultConfig().Clock
	}

	return &Store{
		config:     config,
		items:      items,
		feedback:   feedback,
		forecaster: forecaster,
		adjuster:   adjuster,
		limiter:    config.limiter(),
		logger:     config.Logger.WithName("inventory"),
		tracer:     otel.Tracer(instrumentationName),
		metrics:    newInstruments(config.MeterProvider),
	}, nil
}

// Config returns the store configuration
func (s *Store) Config() Config {
	return s.config
}

// AddItem registers a new item. Registering a name that already exists fails
// with entities.ErrDuplicateItem; use ReplaceItem to overwrite.
func (s *Store) AddItem(ctx context.Context, req AddItemRequest) (dto.ItemView, error) {
	ctx, span := s.startSpan(ctx, "AddItem", req.Name)
	defer span.End()

	item, err := s.newItem(req)
	if err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	unlock := s.lock(req.Name)
	defer unlock()

	if err := s.items.CreateItem(ctx, item); err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	s.logger.V(1).Info("item registered", "item", item.Name, "stock", item.CurrentStock.String(), "rate", item.UsageRate.String())
	s.publish(item.Name, events.ItemRegisteredEvent, registeredEvent(item))
	return dto.NewItemView(item), nil
}

// ReplaceItem registers req, overwriting any item with the same name. The
// replaced item's feedback counters are reset; its audit records remain in
// the feedback log.
func (s *Store) ReplaceItem(ctx context.Context, req AddItemRequest) (dto.ItemView, error) {
	ctx, span := s.startSpan(ctx, "ReplaceItem", req.Name)
	defer span.End()

	item, err := s.newItem(req)
	if err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	unlock := s.lock(req.Name)
	defer unlock()

	if err := s.items.SaveItem(ctx, item); err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	s.logger.V(1).Info("item replaced", "item", item.Name)
	s.publish(item.Name, events.ItemReplacedEvent, registeredEvent(item))
	return dto.NewItemView(item), nil
}

// RecordPurchase adds quantity to the item's stock and recomputes its
// depletion. When the new empty date lies after the stored alert date the
// alert is suppressed for this cycle; a suppressed alert is re-established
// by the next recompute.
func (s *Store) RecordPurchase(ctx context.Context, name entities.ItemName, quantity decimal.Decimal) (dto.ItemView, error) {
	ctx, span := s.startSpan(ctx, "RecordPurchase", name)
	defer span.End()

	if !quantity.IsPositive() {
		return dto.ItemView{}, fail(span, fmt.Errorf("%w: purchase quantity must be positive, got %s", entities.ErrInvalidQuantity, quantity))
	}

	unlock, err := s.lockItem(ctx, name)
	if err != nil {
		return dto.ItemView{}, fail(span, err)
	}
	defer unlock()

	item, err := s.items.GetItem(ctx, name)
	if err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	now := s.config.Clock()
	previousAlert := item.AlertDate

	item.CurrentStock = item.CurrentStock.Add(quantity)
	item.LastUpdate = entities.Day(now)
	d := services.ApplyDepletion(item, now)

	suppressed := previousAlert != nil && d.EmptyDate.After(*previousAlert)
	if suppressed {
		item.AlertDate = nil
	}

	if err := s.items.SaveItem(ctx, item); err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	s.metrics.purchases.Add(ctx, 1)
	span.SetAttributes(attribute.Bool("alert.suppressed", suppressed))
	s.logger.V(1).Info("purchase recorded", "item", name, "quantity", quantity.String(), "stock", item.CurrentStock.String(), "alertSuppressed", suppressed)

	s.publish(name, events.PurchaseRecordedEvent, events.PurchaseRecorded{
		Name:         name,
		Quantity:     quantity,
		CurrentStock: item.CurrentStock,
		EmptyDate:    d.EmptyDate,
		AlertDate:    item.AlertDate,
	})
	if suppressed {
		s.publish(name, events.AlertSuppressedEvent, events.AlertSuppressed{
			Name:          name,
			PreviousAlert: *previousAlert,
			EmptyDate:     d.EmptyDate,
		})
	}
	return dto.NewItemView(item), nil
}

// RecordFeedback adjusts the item's usage rate from a too-early or too-late
// signal, recomputes its depletion and appends the audit record
func (s *Store) RecordFeedback(
	ctx context.Context,
	name entities.ItemName,
	kind entities.FeedbackKind,
	feedbackDate time.Time,
) (dto.FeedbackResult, error) {
	ctx, span := s.startSpan(ctx, "RecordFeedback", name)
	defer span.End()
	span.SetAttributes(attribute.String("feedback.kind", string(kind)))

	if !kind.Valid() {
		return dto.FeedbackResult{}, fail(span, fmt.Errorf("%w: %q", entities.ErrInvalidFeedbackKind, string(kind)))
	}

	unlock, err := s.lockItem(ctx, name)
	if err != nil {
		return dto.FeedbackResult{}, fail(span, err)
	}
	defer unlock()

	item, err := s.items.GetItem(ctx, name)
	if err != nil {
		return dto.FeedbackResult{}, fail(span, err)
	}
	previous := item.Clone()

	now := s.config.Clock()
	record, err := s.adjuster.ApplyFeedback(item, kind, feedbackDate, now)
	if err != nil {
		return dto.FeedbackResult{}, fail(span, err)
	}
	item.LastUpdate = entities.Day(now)
	services.ApplyDepletion(item, now)

	if err := s.items.SaveItem(ctx, item); err != nil {
		return dto.FeedbackResult{}, fail(span, err)
	}
	if err := s.feedback.Append(ctx, record); err != nil {
		return dto.FeedbackResult{}, fail(span, s.compensate(ctx, previous, fmt.Errorf("failed to append feedback record: %w", err)))
	}

	s.metrics.feedback.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
	s.logger.V(1).Info("feedback recorded", "item", name, "kind", kind, "rate", item.UsageRate.String(), "delta", record.Delta.String())
	s.publish(name, events.FeedbackRecordedEvent, events.FeedbackRecorded{Record: record})

	return dto.FeedbackResult{Item: dto.NewItemView(item), Record: record}, nil
}

// RecordUsage upserts the observed usage for date in the item's consumption
// history. Stock and usage rate are left as they are.
func (s *Store) RecordUsage(ctx context.Context, name entities.ItemName, date time.Time, usage decimal.Decimal) (dto.ItemView, error) {
	ctx, span := s.startSpan(ctx, "RecordUsage", name)
	defer span.End()

	if usage.IsNegative() {
		return dto.ItemView{}, fail(span, fmt.Errorf("%w: usage cannot be negative, got %s", entities.ErrInvalidQuantity, usage))
	}

	unlock, err := s.lockItem(ctx, name)
	if err != nil {
		return dto.ItemView{}, fail(span, err)
	}
	defer unlock()

	item, err := s.items.GetItem(ctx, name)
	if err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	now := s.config.Clock()
	replaced := item.History.Record(date, usage)
	item.LastUpdate = entities.Day(now)
	services.ApplyDepletion(item, now)

	if err := s.items.SaveItem(ctx, item); err != nil {
		return dto.ItemView{}, fail(span, err)
	}

	s.logger.V(1).Info("usage recorded", "item", name, "date", entities.Day(date).Format(entities.DateLayout), "usage", usage.String(), "replaced", replaced)
	s.publish(name, events.UsageRecordedEvent, events.UsageRecorded{
		Name:     name,
		Date:     entities.Day(date),
		Usage:    usage,
		Replaced: replaced,
	})
	return dto.NewItemView(item), nil
}

// GetItem returns a snapshot of the named item
func (s *Store) GetItem(ctx context.Context, name entities.ItemName) (dto.ItemView, error) {
	unlock, err := s.lockItem(ctx, name)
	if err != nil {
		return dto.ItemView{}, err
	}
	defer unlock()

	item, err := s.items.GetItem(ctx, name)
	if err != nil {
		return dto.ItemView{}, err
	}
	return dto.NewItemView(item), nil
}

// ListItems returns snapshots of all items in registration order. Each
// snapshot is read under its item's lock, so a mutation still in flight is
// never visible.
func (s *Store) ListItems(ctx context.Context) ([]dto.ItemView, error) {
	items, err := s.items.GetAllItems(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]dto.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.GetItem(ctx, item.Name)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// FeedbackLog returns the audit records for name in append order, or the
// whole log when name is empty
func (s *Store) FeedbackLog(ctx context.Context, name entities.ItemName) ([]entities.FeedbackRecord, error) {
	if name == "" {
		return s.feedback.Records(ctx, "")
	}

	unlock, err := s.lockItem(ctx, name)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.feedback.Records(ctx, name)
}

func (s *Store) newItem(req AddItemRequest) (*entities.InventoryItem, error) {
	now := s.config.Clock()
	item, err := entities.NewInventoryItem(req.Name, req.CurrentStock, req.UsageRate, req.Unit, req.LeadDays, now)
	if err != nil {
		return nil, err
	}
	item.UsageRate = s.adjuster.ClampRate(item.UsageRate)
	item.History = entities.SeedHistory(item.UsageRate, now, s.config.HistorySeedDays)
	services.ApplyDepletion(item, now)
	return item, nil
}

// compensate restores previous after a partially applied mutation and
// returns cause, joined with any failure to restore
func (s *Store) compensate(ctx context.Context, previous *entities.InventoryItem, cause error) error {
	if err := s.items.SaveItem(context.WithoutCancel(ctx), previous); err != nil {
		s.logger.Error(err, "failed to restore item after partial update", "item", previous.Name)
		return errors.Join(cause, fmt.Errorf("failed to restore %s: %w", previous.Name, err))
	}
	s.logger.Info("restored item after partial update", "item", previous.Name, "cause", cause.Error())
	return cause
}

// lockItem locks an existing item. Unknown names fail with ErrItemNotFound
// without allocating a mutex.
func (s *Store) lockItem(ctx context.Context, name entities.ItemName) (func(), error) {
	if _, ok := s.locks.Load(name); !ok {
		if _, err := s.items.GetItem(ctx, name); err != nil {
			return nil, err
		}
	}
	return s.lock(name), nil
}

func (s *Store) lock(name entities.ItemName) func() {
	v, _ := s.locks.LoadOrStore(name, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Store) publish(name entities.ItemName, eventType string, data interface{}) {
	if s.config.Events == nil {
		return
	}
	stream := events.StreamForItem(name)
	if err := s.config.Events.AppendEvent(stream, events.NewEventAt(eventType, stream, data, s.config.Clock())); err != nil {
		s.logger.Error(err, "failed to publish event", "type", eventType, "item", name)
	}
}

func registeredEvent(item *entities.InventoryItem) events.ItemRegistered {
	e := events.ItemRegistered{
		Name:         item.Name,
		CurrentStock: item.CurrentStock,
		UsageRate:    item.UsageRate,
		LeadDays:     item.LeadDays,
	}
	if item.PredictedEmptyDate != nil {
		e.EmptyDate = *item.PredictedEmptyDate
	}
	if item.AlertDate != nil {
		e.AlertDate = *item.AlertDate
	}
	return e
}
