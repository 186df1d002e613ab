package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vsinha/stockout/pkg/domain/entities"
	"github.com/vsinha/stockout/pkg/domain/repositories"
)

const itemColumns = `name, current_stock, usage_rate, unit, lead_days, last_update, created_at,
	predicted_empty_date, alert_date, counters, history`

// ItemRepository stores items in the items table with the consumption
// history and feedback counters encoded as msgpack blobs
type ItemRepository struct {
	db *sql.DB
}

// Verify interface compliance
var _ repositories.ItemRepository = (*ItemRepository)(nil)

// CreateItem inserts a new item
func (r *ItemRepository) CreateItem(ctx context.Context, item *entities.InventoryItem) error {
	args, err := itemArgs(item)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %s", entities.ErrDuplicateItem, item.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert item %s: %w", item.Name, err)
	}
	return nil
}

// SaveItem upserts the item, keeping its registration position
func (r *ItemRepository) SaveItem(ctx context.Context, item *entities.InventoryItem) error {
	args, err := itemArgs(item)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			current_stock = excluded.current_stock,
			usage_rate = excluded.usage_rate,
			unit = excluded.unit,
			lead_days = excluded.lead_days,
			last_update = excluded.last_update,
			created_at = excluded.created_at,
			predicted_empty_date = excluded.predicted_empty_date,
			alert_date = excluded.alert_date,
			counters = excluded.counters,
			history = excluded.history`, args...)
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.Name, err)
	}
	return nil
}

// GetItem loads the item with the given name
func (r *ItemRepository) GetItem(ctx context.Context, name entities.ItemName) (*entities.InventoryItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE name = ?`, string(name))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", entities.ErrItemNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", name, err)
	}
	return item, nil
}

// GetAllItems loads every item in registration order
func (r *ItemRepository) GetAllItems(ctx context.Context) ([]*entities.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*entities.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func itemArgs(item *entities.InventoryItem) ([]any, error) {
	counters, err := encodeCounters(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode counters for %s: %w", item.Name, err)
	}
	history, err := encodeHistory(item.History)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history for %s: %w", item.Name, err)
	}
	return []any{
		string(item.Name),
		item.CurrentStock,
		item.UsageRate,
		item.Unit,
		item.LeadDays,
		formatTime(item.LastUpdate),
		formatTime(item.CreatedAt),
		formatOptionalTime(item.PredictedEmptyDate),
		formatOptionalTime(item.AlertDate),
		counters,
		history,
	}, nil
}

func scanItem(row rowScanner) (*entities.InventoryItem, error) {
	var (
		item                  entities.InventoryItem
		name                  string
		lastUpdate, createdAt string
		emptyDate, alertDate  sql.NullString
		counters, history     []byte
	)
	if err := row.Scan(
		&name,
		&item.CurrentStock,
		&item.UsageRate,
		&item.Unit,
		&item.LeadDays,
		&lastUpdate,
		&createdAt,
		&emptyDate,
		&alertDate,
		&counters,
		&history,
	); err != nil {
		return nil, err
	}
	item.Name = entities.ItemName(name)

	var err error
	if item.LastUpdate, err = parseTime(lastUpdate); err != nil {
		return nil, fmt.Errorf("invalid last_update for %s: %w", name, err)
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at for %s: %w", name, err)
	}
	if item.PredictedEmptyDate, err = parseOptionalTime(emptyDate); err != nil {
		return nil, fmt.Errorf("invalid predicted_empty_date for %s: %w", name, err)
	}
	if item.AlertDate, err = parseOptionalTime(alertDate); err != nil {
		return nil, fmt.Errorf("invalid alert_date for %s: %w", name, err)
	}
	if err := decodeCounters(counters, &item); err != nil {
		return nil, err
	}
	if item.History, err = decodeHistory(history); err != nil {
		return nil, err
	}
	return &item, nil
}
