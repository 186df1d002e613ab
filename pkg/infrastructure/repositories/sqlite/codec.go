package sqlite

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

type observationRecord struct {
	Date  string `msgpack:"date"`
	Usage string `msgpack:"usage"`
}

type historyRecord struct {
	Observations []observationRecord `msgpack:"observations"`
}

type countersRecord struct {
	TooEarly int `msgpack:"too_early,omitempty"`
	TooLate  int `msgpack:"too_late,omitempty"`
	Total    int `msgpack:"total,omitempty"`
}

func encodeHistory(h entities.ConsumptionHistory) ([]byte, error) {
	observations := h.Observations()
	rec := historyRecord{Observations: make([]observationRecord, 0, len(observations))}
	for _, obs := range observations {
		rec.Observations = append(rec.Observations, observationRecord{
			Date:  obs.Date.Format(entities.DateLayout),
			Usage: obs.Usage.String(),
		})
	}
	return msgpack.Marshal(&rec)
}

func decodeHistory(data []byte) (entities.ConsumptionHistory, error) {
	var rec historyRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return entities.ConsumptionHistory{}, fmt.Errorf("failed to decode history: %w", err)
	}
	observations := make([]entities.Observation, 0, len(rec.Observations))
	for _, o := range rec.Observations {
		usage, err := decimal.NewFromString(o.Usage)
		if err != nil {
			return entities.ConsumptionHistory{}, fmt.Errorf("invalid usage %q in history: %w", o.Usage, err)
		}
		date, err := entities.ParseDate(o.Date)
		if err != nil {
			return entities.ConsumptionHistory{}, fmt.Errorf("invalid date %q in history: %w", o.Date, err)
		}
		observations = append(observations, entities.Observation{
			Date:  date,
			Usage: usage,
		})
	}
	return entities.NewConsumptionHistory(observations), nil
}

func encodeCounters(item *entities.InventoryItem) ([]byte, error) {
	return msgpack.Marshal(&countersRecord{
		TooEarly: item.TooEarlyCount,
		TooLate:  item.TooLateCount,
		Total:    item.FeedbackCount,
	})
}

func decodeCounters(data []byte, item *entities.InventoryItem) error {
	var rec countersRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to decode counters: %w", err)
	}
	item.TooEarlyCount = rec.TooEarly
	item.TooLateCount = rec.TooLate
	item.FeedbackCount = rec.Total
	return nil
}
