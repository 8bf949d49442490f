// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/collections"
	"dikecontrol/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestSector creates a sector record with the given id and name.
func CreateTestSector(t *testing.T, app *pocketbase.PocketBase, id, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("sectors")
	if err != nil {
		t.Fatalf("failed to find sectors collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("id", id)
	record.Set("name", name)
	record.Set("sort_order", 0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test sector: %v", err)
	}

	return record
}

// CreateTestDike creates a dike record in the given sector and returns it.
func CreateTestDike(t *testing.T, app *pocketbase.PocketBase, d services.Dike) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("dikes")
	if err != nil {
		t.Fatalf("failed to find dikes collection: %v", err)
	}

	record := core.NewRecord(col)
	if d.ID != "" {
		record.Set("id", d.ID)
	}
	services.ApplyDikeToRecord(record, d)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test dike: %v", err)
	}

	return record
}

// CreateTestMeasurement creates a measurement record from the given entry.
func CreateTestMeasurement(t *testing.T, app *pocketbase.PocketBase, m services.Measurement) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("measurements")
	if err != nil {
		t.Fatalf("failed to find measurements collection: %v", err)
	}

	record := core.NewRecord(col)
	if m.ID != "" {
		record.Set("id", m.ID)
	}
	if err := services.ApplyMeasurementToRecord(record, m); err != nil {
		t.Fatalf("failed to encode test measurement: %v", err)
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test measurement: %v", err)
	}

	return record
}

// CreateTestProgressEntry creates a progress entry record.
func CreateTestProgressEntry(t *testing.T, app *pocketbase.PocketBase, e services.ProgressEntry) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("progress_entries")
	if err != nil {
		t.Fatalf("failed to find progress_entries collection: %v", err)
	}

	record := core.NewRecord(col)
	if e.ID != "" {
		record.Set("id", e.ID)
	}
	services.ApplyProgressEntryToRecord(record, e)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test progress entry: %v", err)
	}

	return record
}

// SaveTestBudget stores a budget for the given owner, failing the test on error.
func SaveTestBudget(t *testing.T, app *pocketbase.PocketBase, ownerType, ownerID string, budget []services.BudgetSection) {
	t.Helper()

	if err := services.SaveBudget(app, ownerType, ownerID, budget); err != nil {
		t.Fatalf("failed to save test budget: %v", err)
	}
}

// CreateTestCustomColumn creates a custom column record with the given name.
func CreateTestCustomColumn(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("custom_columns")
	if err != nil {
		t.Fatalf("failed to find custom_columns collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("sort_order", 0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test custom column: %v", err)
	}

	return record
}

// DecodeJSON unmarshals a response body into out, failing the test on error.
func DecodeJSON(t *testing.T, body []byte, out any) {
	t.Helper()

	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("failed to decode JSON response: %v\nbody (first 500 chars): %s", err, truncate(string(body), 500))
	}
}

// AssertJSONContains checks that body contains all specified fragments.
func AssertJSONContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected response to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
