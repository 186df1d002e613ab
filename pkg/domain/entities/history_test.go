package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func TestSeedHistory(t *testing.T) {
	end := time.Date(2026, 1, 10, 18, 30, 0, 0, time.UTC)
	h := SeedHistory(decimal.NewFromInt(2), end, 10)

	if h.Len() != 10 {
		t.Fatalf("Expected 10 observations, got %d", h.Len())
	}
	obs := h.Observations()
	if !obs[0].Date.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected first day 2026-01-01, got %v", obs[0].Date)
	}
	if !obs[9].Date.Equal(Day(end)) {
		t.Errorf("Expected last day %v, got %v", Day(end), obs[9].Date)
	}
	for _, o := range obs {
		if !o.Usage.Equal(decimal.NewFromInt(2)) {
			t.Errorf("Expected seeded usage 2, got %s on %v", o.Usage, o.Date)
		}
	}
}

func TestSeedHistory_AtLeastOneDay(t *testing.T) {
	h := SeedHistory(decimal.NewFromInt(1), time.Now(), 0)
	if h.Len() != 1 {
		t.Errorf("Expected a single seeded observation, got %d", h.Len())
	}
}

func TestConsumptionHistory_RecordOverwritesSameDay(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	h := SeedHistory(decimal.NewFromInt(1), day, 3)

	replaced := h.Record(day.Add(13*time.Hour), decimal.NewFromInt(4))
	if !replaced {
		t.Error("Expected observation for an existing day to be replaced")
	}
	if h.Len() != 3 {
		t.Errorf("Expected length to stay 3, got %d", h.Len())
	}
	last, _ := h.Last()
	if !last.Usage.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected overwritten usage 4, got %s", last.Usage)
	}
}

func TestConsumptionHistory_RecordOverwritesSameDayInOtherZone(t *testing.T) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	h := SeedHistory(decimal.NewFromInt(1), day, 3)

	tokyo := time.FixedZone("JST", 9*60*60)
	replaced := h.Record(time.Date(2026, 10, 18, 20, 0, 0, 0, tokyo), decimal.NewFromInt(2))
	if !replaced {
		t.Error("Expected the same calendar day in another zone to replace the observation")
	}
	if h.Len() != 3 {
		t.Fatalf("Expected length to stay 3, got %d", h.Len())
	}
	last, _ := h.Last()
	if last.Date.Location() != time.UTC || !last.Date.Equal(day) {
		t.Errorf("Expected last day %v in UTC, got %v", day, last.Date)
	}
}

func TestDay_UsesCalendarDayOfInput(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2026-10-18 01:00 in Tokyo is still 2026-10-17 in UTC
	got := Day(time.Date(2026, 10, 18, 1, 0, 0, 0, tokyo))
	want := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if !SameDay(got, time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)) {
		t.Error("Expected both instants to fall on 2026-10-18")
	}
}

func TestConsumptionHistory_RecordKeepsOrder(t *testing.T) {
	base := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	var h ConsumptionHistory
	h.Record(base.AddDate(0, 0, 5), decimal.NewFromInt(5))
	h.Record(base, decimal.NewFromInt(0))
	h.Record(base.AddDate(0, 0, 2), decimal.NewFromInt(2))
	h.Record(base.AddDate(0, 0, 9), decimal.NewFromInt(9))

	obs := h.Observations()
	want := []int{0, 2, 5, 9}
	if len(obs) != len(want) {
		t.Fatalf("Expected %d observations, got %d", len(want), len(obs))
	}
	for i, w := range want {
		if !obs[i].Date.Equal(base.AddDate(0, 0, w)) {
			t.Errorf("Position %d: expected day +%d, got %v", i, w, obs[i].Date)
		}
	}
}

func TestConsumptionHistory_Mean(t *testing.T) {
	var empty ConsumptionHistory
	if !empty.Mean().IsZero() {
		t.Errorf("Expected zero mean for empty history, got %s", empty.Mean())
	}

	h := NewConsumptionHistory([]Observation{
		{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Usage: decimal.NewFromInt(1)},
		{Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Usage: decimal.NewFromInt(3)},
	})
	if !h.Mean().Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected mean 2, got %s", h.Mean())
	}
}

func TestConsumptionHistory_StrictlyIncreasingProperty(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rapid.Check(t, func(t *rapid.T) {
		offsets := rapid.SliceOf(rapid.IntRange(0, 60)).Draw(t, "offsets")
		var h ConsumptionHistory
		distinct := map[int]bool{}
		for i, off := range offsets {
			hour := rapid.IntRange(0, 23).Draw(t, "hour")
			h.Record(base.AddDate(0, 0, off).Add(time.Duration(hour)*time.Hour), decimal.NewFromInt(int64(i)))
			distinct[off] = true
		}

		if h.Len() != len(distinct) {
			t.Fatalf("expected %d distinct days, got %d", len(distinct), h.Len())
		}
		obs := h.Observations()
		for i := 1; i < len(obs); i++ {
			if !obs[i-1].Date.Before(obs[i].Date) {
				t.Fatalf("dates not strictly increasing at %d: %v then %v", i, obs[i-1].Date, obs[i].Date)
			}
		}
	})
}
