package repositories

import (
	"context"

	"github.com/vsinha/stockout/pkg/domain/entities"
)

// FeedbackLog is the append-only audit trail of feedback adjustments shared
// by all items
type FeedbackLog interface {
	Append(ctx context.Context, record entities.FeedbackRecord) error
	// Records returns records in append order, filtered to name unless it is empty
	Records(ctx context.Context, name entities.ItemName) ([]entities.FeedbackRecord, error)
	Count(ctx context.Context) (int, error)
}
