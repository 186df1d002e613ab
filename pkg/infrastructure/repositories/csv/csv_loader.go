package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/stockout/pkg/domain/entities"
)

var (
	itemsHeader = []string{"name", "current_stock", "usage_rate", "unit", "lead_days"}
	usageHeader = []string{"name", "date", "usage"}
)

// ItemRecord is one row of an items CSV file
type ItemRecord struct {
	Name         entities.ItemName
	CurrentStock decimal.Decimal
	UsageRate    decimal.Decimal
	Unit         string
	LeadDays     int
}

// UsageRecord is one row of a usage observations CSV file
type UsageRecord struct {
	Name  entities.ItemName
	Date  time.Time
	Usage decimal.Decimal
}

// Loader handles loading inventory data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadItems loads item registrations from a CSV file
func (l *Loader) LoadItems(filename string) ([]ItemRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open items file %s: %w", filename, err)
	}
	defer file.Close()
	return l.ReadItems(file)
}

// ReadItems parses item registrations from r
func (l *Loader) ReadItems(r io.Reader) ([]ItemRecord, error) {
	rows, err := readTable(r, "items", itemsHeader)
	if err != nil {
		return nil, err
	}

	items := make([]ItemRecord, 0, len(rows))
	for i, row := range rows {
		item, err := parseItem(row)
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: %w", i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadUsage loads daily usage observations from a CSV file
func (l *Loader) LoadUsage(filename string) ([]UsageRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage file %s: %w", filename, err)
	}
	defer file.Close()
	return l.ReadUsage(file)
}

// ReadUsage parses daily usage observations from r
func (l *Loader) ReadUsage(r io.Reader) ([]UsageRecord, error) {
	rows, err := readTable(r, "usage", usageHeader)
	if err != nil {
		return nil, err
	}

	usage := make([]UsageRecord, 0, len(rows))
	for i, row := range rows {
		record, err := parseUsage(row)
		if err != nil {
			return nil, fmt.Errorf("usage CSV row %d: %w", i+2, err)
		}
		usage = append(usage, record)
	}
	return usage, nil
}

// Helper functions for parsing CSV records

func readTable(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseItem(record []string) (ItemRecord, error) {
	name := entities.ItemName(strings.TrimSpace(record[0]))
	if name == "" {
		return ItemRecord{}, fmt.Errorf("name cannot be empty")
	}

	currentStock, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return ItemRecord{}, fmt.Errorf("invalid current_stock: %s", record[1])
	}

	usageRate, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return ItemRecord{}, fmt.Errorf("invalid usage_rate: %s", record[2])
	}

	leadDays, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return ItemRecord{}, fmt.Errorf("invalid lead_days: %s", record[4])
	}

	return ItemRecord{
		Name:         name,
		CurrentStock: currentStock,
		UsageRate:    usageRate,
		Unit:         strings.TrimSpace(record[3]),
		LeadDays:     leadDays,
	}, nil
}

func parseUsage(record []string) (UsageRecord, error) {
	name := entities.ItemName(strings.TrimSpace(record[0]))
	if name == "" {
		return UsageRecord{}, fmt.Errorf("name cannot be empty")
	}

	date, err := entities.ParseDate(strings.TrimSpace(record[1]))
	if err != nil {
		return UsageRecord{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", record[1])
	}

	usage, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return UsageRecord{}, fmt.Errorf("invalid usage: %s", record[2])
	}

	return UsageRecord{Name: name, Date: date, Usage: usage}, nil
}
