package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoader_ReadItems(t *testing.T) {
	input := `name,current_stock,usage_rate,unit,lead_days
rice,10,1,kg,3
Dish Soap , 2.5 , 0.25 , bottle , 0
`
	items, err := NewLoader().ReadItems(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to read items: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	if items[0].Name != "rice" || items[0].LeadDays != 3 || items[0].Unit != "kg" {
		t.Errorf("Unexpected first item: %+v", items[0])
	}
	if items[1].Name != "Dish Soap" {
		t.Errorf("Expected trimmed name 'Dish Soap', got %q", items[1].Name)
	}
	if !items[1].CurrentStock.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected stock 2.5, got %s", items[1].CurrentStock)
	}
	if !items[1].UsageRate.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("Expected rate 0.25, got %s", items[1].UsageRate)
	}
}

func TestLoader_ReadItems_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"header only", "name,current_stock,usage_rate,unit,lead_days\n", "at least one data row"},
		{"wrong header", "part,current_stock,usage_rate,unit,lead_days\nrice,1,1,kg,1\n", "header mismatch"},
		{"bad stock", "name,current_stock,usage_rate,unit,lead_days\nrice,lots,1,kg,1\n", "row 2: invalid current_stock"},
		{"bad lead days", "name,current_stock,usage_rate,unit,lead_days\nrice,1,1,kg,soon\n", "invalid lead_days"},
		{"empty name", "name,current_stock,usage_rate,unit,lead_days\n ,1,1,kg,1\n", "name cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().ReadItems(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("Expected error containing %q, got none", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoader_LoadUsage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")
	content := "name,date,usage\nrice,2026-10-01,1.5\nrice,2026-10-02,0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	usage, err := NewLoader().LoadUsage(path)
	if err != nil {
		t.Fatalf("Failed to load usage: %v", err)
	}

	if len(usage) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(usage))
	}

	expectedDate := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	if !usage[0].Date.Equal(expectedDate) {
		t.Errorf("Expected date %v, got %v", expectedDate, usage[0].Date)
	}
	if !usage[0].Usage.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("Expected usage 1.5, got %s", usage[0].Usage)
	}
	if !usage[1].Usage.IsZero() {
		t.Errorf("Expected zero usage, got %s", usage[1].Usage)
	}
}

func TestLoader_LoadUsage_BadDate(t *testing.T) {
	_, err := NewLoader().ReadUsage(strings.NewReader("name,date,usage\nrice,10/01/2026,1\n"))
	if err == nil || !strings.Contains(err.Error(), "expected YYYY-MM-DD") {
		t.Errorf("Expected date format error, got: %v", err)
	}
}

func TestLoader_LoadItems_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadItems(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil || !strings.Contains(err.Error(), "failed to open items file") {
		t.Errorf("Expected open error, got: %v", err)
	}
}
