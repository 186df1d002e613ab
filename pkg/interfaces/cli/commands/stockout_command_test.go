package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/stockout/pkg/domain/entities"
)

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, dbPath: filepath.Join(t.TempDir(), "stockout.db")}
}

func (h *harness) run(format string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := NewCommand(Config{
		DBPath: h.dbPath,
		Format: format,
		Args:   args,
		Out:    &out,
		Clock:  func() time.Time { return testNow },
	})
	err := cmd.Execute(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("text", args...)
	if err != nil {
		h.t.Fatalf("Command %v failed: %v", args, err)
	}
	return out
}

func TestCommand_AddPurchaseFeedback(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "-name", "rice", "-stock", "10", "-rate", "1", "-unit", "kg", "-lead", "3")
	for _, want := range []string{"rice", "Empty on:    2026-10-28", "Alert on:    2026-10-25"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected add output to contain %q, got:\n%s", want, out)
		}
	}

	if _, err := h.run("text", "add", "-name", "rice", "-stock", "1", "-rate", "1"); !errors.Is(err, entities.ErrDuplicateItem) {
		t.Errorf("Expected ErrDuplicateItem, got %v", err)
	}

	out = h.mustRun("feedback", "-name", "rice", "-kind", "late")
	if !strings.Contains(out, "1.100") || !strings.Contains(out, "Empty on:    2026-10-27") {
		t.Errorf("Expected feedback to raise the rate to 1.1, got:\n%s", out)
	}

	out = h.mustRun("purchase", "-name", "rice", "-qty", "5")
	if !strings.Contains(out, "Alert on:    suppressed") {
		t.Errorf("Expected alert to be suppressed after purchase, got:\n%s", out)
	}
	if !strings.Contains(out, "Reorder alert for rice cleared (was 2026-10-24, now empty on 2026-10-31)") {
		t.Errorf("Expected alert-cleared notice, got:\n%s", out)
	}

	out = h.mustRun("purchase", "-name", "rice", "-qty", "1")
	if !strings.Contains(out, "Reorder alert for rice set for 2026-10-29") {
		t.Errorf("Expected alert to be re-established by the next purchase, got:\n%s", out)
	}

	out = h.mustRun("log")
	if !strings.Contains(out, "too_late") {
		t.Errorf("Expected feedback log entry, got:\n%s", out)
	}
}

func TestCommand_ShowJSON(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "-name", "coffee", "-stock", "30", "-rate", "2", "-unit", "cups")

	out, err := h.run("json", "show", "-name", "coffee")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	decoder := json.NewDecoder(strings.NewReader(out))
	var item map[string]any
	if err := decoder.Decode(&item); err != nil {
		t.Fatalf("Expected item JSON, got error %v:\n%s", err, out)
	}
	if item["days_left"] != float64(15) {
		t.Errorf("Expected 15 days left, got %v", item["days_left"])
	}

	var trajectory map[string]any
	if err := decoder.Decode(&trajectory); err != nil {
		t.Fatalf("Expected trajectory JSON, got error %v:\n%s", err, out)
	}
	points, ok := trajectory["points"].([]any)
	if !ok || len(points) != 30 {
		t.Errorf("Expected 30 trajectory points, got %v", trajectory["points"])
	}
}

func TestCommand_Import(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "items.csv")
	usagePath := filepath.Join(dir, "usage.csv")
	writeFile(t, itemsPath, "name,current_stock,usage_rate,unit,lead_days\nrice,10,1,kg,3\ntea,50,2,bags,5\n")
	writeFile(t, usagePath, "name,date,usage\nrice,2026-10-17,4\n")

	out := h.mustRun("import", "-items", itemsPath, "-usage", usagePath)
	if !strings.Contains(out, "Imported 2 items (0 skipped)") || !strings.Contains(out, "Recorded 1 usage observations") {
		t.Errorf("Unexpected import output:\n%s", out)
	}

	out = h.mustRun("import", "-items", itemsPath)
	if !strings.Contains(out, "Imported 0 items (2 skipped)") {
		t.Errorf("Expected duplicates to be skipped, got:\n%s", out)
	}

	out = h.mustRun("list")
	if !strings.Contains(out, "Inventory (2 items)") || !strings.Contains(out, "tea") {
		t.Errorf("Unexpected list output:\n%s", out)
	}
}

func TestCommand_GenerateThenImport(t *testing.T) {
	h := newHarness(t)
	dir := filepath.Join(t.TempDir(), "scenario")

	h.mustRun("generate", "-output", dir, "-items", "12", "-days", "5", "-seed", "42")

	items, err := os.ReadFile(filepath.Join(dir, "items.csv"))
	if err != nil {
		t.Fatalf("Expected items.csv: %v", err)
	}
	if lines := strings.Count(string(items), "\n"); lines != 13 {
		t.Errorf("Expected header plus 12 items, got %d lines", lines)
	}
	if !strings.Contains(string(items), "rice_2,") {
		t.Errorf("Expected repeated staples to get a suffix, got:\n%s", items)
	}

	out := h.mustRun("import", "-items", filepath.Join(dir, "items.csv"), "-usage", filepath.Join(dir, "usage.csv"))
	if !strings.Contains(out, "Imported 12 items (0 skipped)") || !strings.Contains(out, "Recorded 60 usage observations") {
		t.Errorf("Unexpected import output:\n%s", out)
	}

	if _, err := h.run("text", "generate", "-items", "3"); err == nil || !strings.Contains(err.Error(), "-output is required") {
		t.Errorf("Expected missing output error, got %v", err)
	}
}

func TestGenerateCommand_Reproducible(t *testing.T) {
	generate := func(dir string) string {
		err := NewGenerateCommand(GenerateConfig{Items: 4, Days: 3, OutputDir: dir, Seed: 7, End: testNow}).Execute()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		usage, err := os.ReadFile(filepath.Join(dir, "usage.csv"))
		if err != nil {
			t.Fatalf("Expected usage.csv: %v", err)
		}
		return string(usage)
	}

	first := generate(t.TempDir())
	second := generate(t.TempDir())
	if first != second {
		t.Errorf("Expected identical output for the same seed")
	}
	if !strings.Contains(first, "rice,2026-10-15,") || !strings.Contains(first, "rice,2026-10-17,") {
		t.Errorf("Expected history ending the day before %s, got:\n%s", testNow.Format("2006-01-02"), first)
	}
	if strings.Contains(first, "2026-10-18") {
		t.Errorf("Expected no observation on the end day, got:\n%s", first)
	}

	if err := NewGenerateCommand(GenerateConfig{OutputDir: t.TempDir()}).Execute(); err == nil {
		t.Error("Expected error for zero items")
	}
}

func TestCommand_Errors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown item", []string{"purchase", "-name", "ghost", "-qty", "1"}, entities.ErrItemNotFound},
		{"bad kind", []string{"feedback", "-name", "rice", "-kind", "sideways"}, entities.ErrInvalidFeedbackKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run("text", tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := h.run("text", "purchase", "-name", "rice"); err == nil || !strings.Contains(err.Error(), "-qty is required") {
		t.Errorf("Expected missing quantity error, got %v", err)
	}
	if _, err := h.run("text", "explode"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Expected unknown command error, got %v", err)
	}
}

func TestCommand_Help(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun()
	if !strings.Contains(out, "USAGE:") || !strings.Contains(out, "add, feedback, generate, import, list, log, purchase, show, usage") {
		t.Errorf("Unexpected help output:\n%s", out)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
