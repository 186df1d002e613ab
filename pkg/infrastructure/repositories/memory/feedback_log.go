package memory

import (
	"context"
	"sync"

	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/repositories"
)

// FeedbackLog provides an in-memory append-only feedback audit log
type FeedbackLog struct {
	mu      sync.RWMutex
	records []entities.FeedbackRecord
}

// NewFeedbackLog creates a new in-memory feedback log
func NewFeedbackLog() *FeedbackLog {
	return &FeedbackLog{
		records: []entities.FeedbackRecord{},
	}
}

// Verify interface compliance
var _ repositories.FeedbackLog = (*FeedbackLog)(nil)

// Append adds a record to the end of the log
func (l *FeedbackLog) Append(_ context.Context, record entities.FeedbackRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

// Records returns the records for name, or every record when name is empty
func (l *FeedbackLog) Records(_ context.Context, name entities.ItemName) ([]entities.FeedbackRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := make([]entities.FeedbackRecord, 0, len(l.records))
	for _, record := range l.records {
		if name == "" || record.ItemName == name {
			records = append(records, record)
		}
	}
	return records, nil
}

// Count returns the total number of records
func (l *FeedbackLog) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records), nil
}
