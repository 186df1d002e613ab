package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

// AdjustmentStrategy selects how a feedback signal moves the usage rate
type AdjustmentStrategy int

const (
	// ProportionalStep moves the rate by StepFraction of its current value
	ProportionalStep AdjustmentStrategy = iota
	// FixedStep moves the rate by a constant FixedStep amount
	FixedStep
)

// String method for AdjustmentStrategy enum
func (s AdjustmentStrategy) String() string {
	switch s {
	case ProportionalStep:
		return "proportional"
	case FixedStep:
		return "fixed"
	default:
		return "Unknown"
	}
}

// ParseAdjustmentStrategy maps a strategy name to its value
func ParseAdjustmentStrategy(s string) (AdjustmentStrategy, error) {
	switch s {
	case "proportional", "":
		return ProportionalStep, nil
	case "fixed":
		return FixedStep, nil
	default:
		return 0, fmt.Errorf("unknown adjustment strategy: %s", s)
	}
}

// FeedbackPolicy configures the feedback adjuster
type FeedbackPolicy struct {
	Strategy     AdjustmentStrategy
	StepFraction decimal.Decimal
	FixedStep    decimal.Decimal
	FloorRate    decimal.Decimal
}

// DefaultFeedbackPolicy is a 10% proportional step with a 0.1 unit/day floor
func DefaultFeedbackPolicy() FeedbackPolicy {
	return FeedbackPolicy{
		Strategy:     ProportionalStep,
		StepFraction: decimal.NewFromFloat(0.1),
		FixedStep:    decimal.NewFromFloat(0.1),
		FloorRate:    decimal.NewFromFloat(0.1),
	}
}

// Validate checks the policy parameters
func (p FeedbackPolicy) Validate() error {
	if !p.FloorRate.IsPositive() {
		return fmt.Errorf("floor rate must be positive, got %s", p.FloorRate)
	}
	switch p.Strategy {
	case ProportionalStep:
		if !p.StepFraction.IsPositive() || p.StepFraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("step fraction must be in (0, 1), got %s", p.StepFraction)
		}
	case FixedStep:
		if !p.FixedStep.IsPositive() {
			return fmt.Errorf("fixed step must be positive, got %s", p.FixedStep)
		}
	default:
		return fmt.Errorf("unknown adjustment strategy: %d", p.Strategy)
	}
	return nil
}

// FeedbackAdjuster turns too-early/too-late signals into usage-rate updates
type FeedbackAdjuster struct {
	policy FeedbackPolicy
}

// NewFeedbackAdjuster creates an adjuster for a validated policy
func NewFeedbackAdjuster(policy FeedbackPolicy) (*FeedbackAdjuster, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &FeedbackAdjuster{policy: policy}, nil
}

// Policy returns the adjuster's policy
func (a *FeedbackAdjuster) Policy() FeedbackPolicy {
	return a.policy
}

// ClampRate raises rate to the floor when it falls below it
func (a *FeedbackAdjuster) ClampRate(rate decimal.Decimal) decimal.Decimal {
	return decimal.Max(a.policy.FloorRate, rate)
}

// Adjust computes the signed delta for kind and the resulting floor-clamped rate
func (a *FeedbackAdjuster) Adjust(kind entities.FeedbackKind, usageRate decimal.Decimal) (newRate, delta decimal.Decimal, err error) {
	if !kind.Valid() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %q", entities.ErrInvalidFeedbackKind, string(kind))
	}

	step := a.policy.FixedStep
	if a.policy.Strategy == ProportionalStep {
		step = usageRate.Mul(a.policy.StepFraction)
	}
	delta = step.Mul(decimal.NewFromInt(kind.Sign()))

	return a.ClampRate(usageRate.Add(delta)), delta, nil
}

// ApplyFeedback updates item's usage rate and feedback counters and returns
// the audit record describing the change. The feedback date is recorded as
// given, even when it lies after the item's last update. Derived dates are
// not refreshed here. Nothing on item changes when an error is returned.
func (a *FeedbackAdjuster) ApplyFeedback(
	item *entities.InventoryItem,
	kind entities.FeedbackKind,
	feedbackDate time.Time,
	recordedAt time.Time,
) (entities.FeedbackRecord, error) {
	newRate, delta, err := a.Adjust(kind, item.UsageRate)
	if err != nil {
		return entities.FeedbackRecord{}, err
	}

	item.UsageRate = newRate
	item.CountFeedback(kind)

	return entities.FeedbackRecord{
		ID:                 uuid.New(),
		ItemName:           item.Name,
		Date:               feedbackDate,
		ResultingUsageRate: newRate,
		Kind:               kind,
		Delta:              delta,
		RecordedAt:         recordedAt,
	}, nil
}
