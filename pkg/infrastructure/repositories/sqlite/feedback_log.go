package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/repositories"
)

// FeedbackLog stores feedback records in the append-only feedback table
type FeedbackLog struct {
	db *sql.DB
}

// Verify interface compliance
var _ repositories.FeedbackLog = (*FeedbackLog)(nil)

// Append inserts record after every existing record
func (l *FeedbackLog) Append(ctx context.Context, record entities.FeedbackRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO feedback (id, item_name, date, resulting_usage_rate, kind, delta, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(),
		string(record.ItemName),
		formatTime(record.Date),
		record.ResultingUsageRate,
		string(record.Kind),
		record.Delta,
		formatTime(record.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append feedback %s: %w", record.ID, err)
	}
	return nil
}

// Records returns records for name in append order, or all when name is empty
func (l *FeedbackLog) Records(ctx context.Context, name entities.ItemName) ([]entities.FeedbackRecord, error) {
	query := `SELECT id, item_name, date, resulting_usage_rate, kind, delta, recorded_at FROM feedback`
	var args []any
	if name != "" {
		query += ` WHERE item_name = ?`
		args = append(args, string(name))
	}
	query += ` ORDER BY seq`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	records := []entities.FeedbackRecord{}
	for rows.Next() {
		var (
			record             entities.FeedbackRecord
			id, itemName, kind string
			date, recordedAt   string
		)
		if err := rows.Scan(&id, &itemName, &date, &record.ResultingUsageRate, &kind, &record.Delta, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if record.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid feedback id %q: %w", id, err)
		}
		if record.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("invalid feedback date %q: %w", date, err)
		}
		if record.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("invalid feedback timestamp %q: %w", recordedAt, err)
		}
		record.ItemName = entities.ItemName(itemName)
		record.Kind = entities.FeedbackKind(kind)
		records = append(records, record)
	}
	return records, rows.Err()
}

// Count returns the number of stored records
func (l *FeedbackLog) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}
