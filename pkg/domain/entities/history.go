package entities

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Observation is the usage recorded for one calendar day
type Observation struct {
	Date  time.Time
	Usage decimal.Decimal
}

// ConsumptionHistory is a day-granular usage series kept in strictly
// increasing date order. Recording an observation for a day that is already
// present replaces it in place.
type ConsumptionHistory struct {
	observations []Observation
}

// NewConsumptionHistory builds a history from unordered observations. When
// the input holds several observations for the same day the last one wins.
func NewConsumptionHistory(observations []Observation) ConsumptionHistory {
	var h ConsumptionHistory
	for _, obs := range observations {
		h.Record(obs.Date, obs.Usage)
	}
	return h
}

// SeedHistory creates days synthetic observations of rate ending on end (inclusive)
func SeedHistory(rate decimal.Decimal, end time.Time, days int) ConsumptionHistory {
	if days < 1 {
		days = 1
	}
	last := Day(end)
	observations := make([]Observation, 0, days)
	for i := days - 1; i >= 0; i-- {
		observations = append(observations, Observation{
			Date:  last.AddDate(0, 0, -i),
			Usage: rate,
		})
	}
	return ConsumptionHistory{observations: observations}
}

// Record upserts the observation for date's day and reports whether an
// existing observation was replaced
func (h *ConsumptionHistory) Record(date time.Time, usage decimal.Decimal) bool {
	day := Day(date)
	i := sort.Search(len(h.observations), func(i int) bool {
		return !h.observations[i].Date.Before(day)
	})
	if i < len(h.observations) && h.observations[i].Date.Equal(day) {
		h.observations[i].Usage = usage
		return true
	}

	h.observations = append(h.observations, Observation{})
	copy(h.observations[i+1:], h.observations[i:])
	h.observations[i] = Observation{Date: day, Usage: usage}
	return false
}

// Len returns the number of recorded days
func (h ConsumptionHistory) Len() int {
	return len(h.observations)
}

// Observations returns a copy of the series in date order
func (h ConsumptionHistory) Observations() []Observation {
	out := make([]Observation, len(h.observations))
	copy(out, h.observations)
	return out
}

// Last returns the most recent observation
func (h ConsumptionHistory) Last() (Observation, bool) {
	if len(h.observations) == 0 {
		return Observation{}, false
	}
	return h.observations[len(h.observations)-1], true
}

// Mean returns the average daily usage, zero for an empty history
func (h ConsumptionHistory) Mean() decimal.Decimal {
	if len(h.observations) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, obs := range h.observations {
		sum = sum.Add(obs.Usage)
	}
	return sum.Div(decimal.NewFromInt(int64(len(h.observations))))
}

// Clone returns an independent copy
func (h ConsumptionHistory) Clone() ConsumptionHistory {
	return ConsumptionHistory{observations: h.Observations()}
}
