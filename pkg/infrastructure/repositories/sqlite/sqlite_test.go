package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

var testNow = time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "stockout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestItem(t *testing.T, name entities.ItemName) *entities.InventoryItem {
	t.Helper()
	item, err := entities.NewInventoryItem(name, decimal.RequireFromString("12.5"), decimal.RequireFromString("1.25"), "kg", 3, testNow)
	require.NoError(t, err)
	item.History = entities.SeedHistory(item.UsageRate, testNow, 10)
	item.History.Record(testNow, decimal.RequireFromString("2.75"))
	empty := entities.Day(testNow).AddDate(0, 0, 10)
	alert := empty.AddDate(0, 0, -3)
	item.PredictedEmptyDate = &empty
	item.AlertDate = &alert
	item.CountFeedback(entities.TooLate)
	return item
}

func TestItemRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Items()

	item := newTestItem(t, "flour")
	require.NoError(t, repo.CreateItem(ctx, item))

	loaded, err := repo.GetItem(ctx, "flour")
	require.NoError(t, err)

	assert.Equal(t, item.Name, loaded.Name)
	assert.True(t, item.CurrentStock.Equal(loaded.CurrentStock))
	assert.True(t, item.UsageRate.Equal(loaded.UsageRate))
	assert.Equal(t, "kg", loaded.Unit)
	assert.Equal(t, 3, loaded.LeadDays)
	assert.True(t, item.LastUpdate.Equal(loaded.LastUpdate))
	assert.True(t, item.CreatedAt.Equal(loaded.CreatedAt))
	require.NotNil(t, loaded.PredictedEmptyDate)
	require.NotNil(t, loaded.AlertDate)
	assert.True(t, item.PredictedEmptyDate.Equal(*loaded.PredictedEmptyDate))
	assert.True(t, item.AlertDate.Equal(*loaded.AlertDate))
	assert.Equal(t, 1, loaded.TooLateCount)
	assert.Equal(t, 1, loaded.FeedbackCount)

	want, got := item.History.Observations(), loaded.History.Observations()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Date.Equal(got[i].Date), "date %d", i)
		assert.True(t, want[i].Usage.Equal(got[i].Usage), "usage %d", i)
	}
}

func TestItemRepository_SuppressedAlertRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Items()

	item := newTestItem(t, "flour")
	item.AlertDate = nil
	require.NoError(t, repo.SaveItem(ctx, item))

	loaded, err := repo.GetItem(ctx, "flour")
	require.NoError(t, err)
	assert.True(t, loaded.AlertSuppressed())
	assert.NotNil(t, loaded.PredictedEmptyDate)
}

func TestItemRepository_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Items()

	require.NoError(t, repo.CreateItem(ctx, newTestItem(t, "flour")))
	err := repo.CreateItem(ctx, newTestItem(t, "flour"))
	assert.ErrorIs(t, err, entities.ErrDuplicateItem)
}

func TestItemRepository_NotFound(t *testing.T) {
	_, err := openTestDB(t).Items().GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrItemNotFound)
}

func TestItemRepository_SaveKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Items()

	for _, name := range []entities.ItemName{"flour", "sugar", "salt"} {
		require.NoError(t, repo.CreateItem(ctx, newTestItem(t, name)))
	}

	sugar, err := repo.GetItem(ctx, "sugar")
	require.NoError(t, err)
	sugar.CurrentStock = decimal.NewFromInt(99)
	require.NoError(t, repo.SaveItem(ctx, sugar))

	items, err := repo.GetAllItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, entities.ItemName("flour"), items[0].Name)
	assert.Equal(t, entities.ItemName("sugar"), items[1].Name)
	assert.Equal(t, entities.ItemName("salt"), items[2].Name)
	assert.True(t, items[1].CurrentStock.Equal(decimal.NewFromInt(99)))
}

func TestFeedbackLog_AppendOrder(t *testing.T) {
	ctx := context.Background()
	log := openTestDB(t).FeedbackLog()

	var ids []uuid.UUID
	for i, name := range []entities.ItemName{"flour", "sugar", "flour"} {
		record := entities.FeedbackRecord{
			ID:                 uuid.New(),
			ItemName:           name,
			Date:               entities.Day(testNow).AddDate(0, 0, i),
			ResultingUsageRate: decimal.RequireFromString("1.1"),
			Kind:               entities.TooLate,
			Delta:              decimal.RequireFromString("0.1"),
			RecordedAt:         testNow,
		}
		ids = append(ids, record.ID)
		require.NoError(t, log.Append(ctx, record))
	}

	count, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	flour, err := log.Records(ctx, "flour")
	require.NoError(t, err)
	require.Len(t, flour, 2)
	assert.Equal(t, ids[0], flour[0].ID)
	assert.Equal(t, ids[2], flour[1].ID)
	assert.Equal(t, entities.TooLate, flour[0].Kind)
	assert.True(t, flour[0].Delta.Equal(decimal.RequireFromString("0.1")))

	all, err := log.Records(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stockout.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Items().CreateItem(ctx, newTestItem(t, "flour")))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	items, err := db.Items().GetAllItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
