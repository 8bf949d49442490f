package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dikecontrol/services"
	"dikecontrol/testhelpers"
)

func TestHandleDescriptiveReport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{
		ID: "D1", SectorID: "S1", Name: "DIPR_001",
		ProgInicioDique: "0+000", ProgFinDique: "0+100", TotalML: 100,
	})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M1", DikeID: "D1", PK: "0+000", Distancia: 10, Carguio: 1,
		Item403AContractual: 2,
	})
	testhelpers.CreateTestProgressEntry(t, app, services.ProgressEntry{
		ID: "P1", DikeID: "D1", Date: "2024-08-15",
		ProgInicio: "0+000", ProgFin: "0+050", Longitud: 50,
		Partida: "404.A ENROCADO Y ACOMODO", Capa: "Capa Única",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/descriptive", nil)
	rec := httptest.NewRecorder()
	if err := HandleDescriptiveReport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Sectors       []services.SectorReport `json:"sectors"`
		MatrixColumns []json.RawMessage       `json:"matrixColumns"`
		Matrix        json.RawMessage         `json:"matrix"`
		Monthly       json.RawMessage         `json:"monthly"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)

	if len(resp.Sectors) != 1 {
		t.Fatalf("expected 1 sector report, got %d", len(resp.Sectors))
	}
	fin := resp.Sectors[0].Financials
	// 403.A: 100 m3 x S/.10 + 404.A: 50 m3 x S/.40 contractual; 2 m3/m x 10 m executed.
	if fin.Contractual != 3000 {
		t.Errorf("expected contractual 3000, got %v", fin.Contractual)
	}
	if fin.Executed != 200 {
		t.Errorf("expected executed 200, got %v", fin.Executed)
	}
	if fin.Balance != 2800 {
		t.Errorf("expected balance 2800, got %v", fin.Balance)
	}
	if len(resp.MatrixColumns) != 15 {
		t.Errorf("expected 15 matrix columns, got %d", len(resp.MatrixColumns))
	}
	testhelpers.AssertJSONContains(t, rec.Body.String(),
		`"overruns"`, `"volumeSummary"`, `"monthlyDetailed"`)
}

func TestHandleSummaryReport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{
		ID: "D1", SectorID: "S1", Name: "DIPR_001",
		ProgInicioDique: "0+000", ProgFinDique: "0+100", TotalML: 100,
	})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M1", DikeID: "D1", PK: "0+000", Distancia: 10, Carguio: 1,
		Item403AContractual: 2,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil)
	rec := httptest.NewRecorder()
	if err := HandleSummaryReport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Sectors []struct {
			Sector    services.Sector    `json:"sector"`
			Waterfall services.Waterfall `json:"waterfall"`
		} `json:"sectors"`
		ContractualTotal float64            `json:"contractualTotal"`
		ExecutedTotal    float64            `json:"executedTotal"`
		ExecutedOverall  services.Waterfall `json:"executedOverall"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)

	if len(resp.Sectors) != 1 {
		t.Fatalf("expected 1 sector summary, got %d", len(resp.Sectors))
	}
	// Per-sector waterfall runs on the selected contractual direct cost.
	if resp.Sectors[0].Waterfall.DirectCost != 3000 {
		t.Errorf("sector Waterfall.DirectCost = %v, want 3000", resp.Sectors[0].Waterfall.DirectCost)
	}
	if resp.ContractualTotal != 3000 {
		t.Errorf("expected contractual total 3000, got %v", resp.ContractualTotal)
	}
	if resp.ExecutedTotal != 200 {
		t.Errorf("expected executed total 200, got %v", resp.ExecutedTotal)
	}
	if resp.ExecutedOverall.DirectCost != 200 {
		t.Errorf("expected executed waterfall direct cost 200, got %v", resp.ExecutedOverall.DirectCost)
	}
	if resp.ExecutedOverall.TotalWithTax <= resp.ExecutedOverall.DirectCost {
		t.Errorf("expected tax-inclusive total above direct cost, got %v", resp.ExecutedOverall.TotalWithTax)
	}
}

func TestHandleScheduleGrid(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{
		ID: "D1", SectorID: "S1", Name: "DIPR_001",
		ProgInicioDique: "0+000", ProgFinDique: "0+250", TotalML: 250,
	})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())
	testhelpers.CreateTestProgressEntry(t, app, services.ProgressEntry{
		ID: "P1", DikeID: "D1", Date: "2024-08-15",
		ProgInicio: "0+000", ProgFin: "0+120", Longitud: 120,
		Partida: "403.A CONFORMACIÓN Y COMPACTACIÓN DE DIQUE",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/dikes/D1/schedule", nil)
	req.SetPathValue("id", "D1")
	rec := httptest.NewRecorder()
	if err := HandleScheduleGrid(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var grid services.ScheduleGrid
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &grid)

	// Default 100 m resolution over 250 m.
	if len(grid.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(grid.Columns))
	}
	if len(grid.Partidas) != 2 {
		t.Fatalf("expected 2 partida rows, got %d", len(grid.Partidas))
	}
	covered := grid.Coverage["403.A"]
	if len(covered) != 3 || !covered[0] || !covered[1] || covered[2] {
		t.Errorf("expected 403.A coverage [true true false], got %v", covered)
	}
	idle := grid.Coverage["404.A"]
	for i, c := range idle {
		if c {
			t.Errorf("expected no 404.A coverage, column %d is covered", i)
		}
	}
}

func TestHandleScheduleGrid_CustomResolution(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{
		ID: "D1", SectorID: "S1", Name: "DIPR_001",
		ProgInicioDique: "0+000", ProgFinDique: "0+250", TotalML: 250,
	})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())

	req := httptest.NewRequest(http.MethodGet, "/api/dikes/D1/schedule?resolution=50", nil)
	req.SetPathValue("id", "D1")
	rec := httptest.NewRecorder()
	if err := HandleScheduleGrid(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var grid services.ScheduleGrid
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &grid)
	if len(grid.Columns) != 5 {
		t.Fatalf("expected 5 columns at 50 m resolution, got %d", len(grid.Columns))
	}
}

func TestHandleScheduleGrid_UnknownDike(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dikes/MISSING/schedule", nil)
	req.SetPathValue("id", "MISSING")
	rec := httptest.NewRecorder()
	if err := HandleScheduleGrid(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleIntegrityReport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{
		ID: "D1", SectorID: "S1", Name: "DIPR_001",
		ProgInicioDique: "0+000", ProgFinDique: "0+100", TotalML: 100,
	})
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M1", DikeID: "D1", PK: "0+000",
	})
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M2", DikeID: "GHOST", PK: "0+020",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/integrity", nil)
	rec := httptest.NewRecorder()
	if err := HandleIntegrityReport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report services.IntegrityReport
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &report)
	if report.OrphanCount != 1 {
		t.Fatalf("expected 1 orphan, got %d", report.OrphanCount)
	}
	if report.OrphanMeasurements[0] != "M2" {
		t.Errorf("expected orphan M2, got %q", report.OrphanMeasurements[0])
	}
	if report.HealthScore != 96 {
		t.Errorf("expected health score 96, got %d", report.HealthScore)
	}
}

func TestHandleIntegrityRepair_RequiresConfirm(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/integrity/repair", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	if err := HandleIntegrityRepair(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "confirm=true") {
		t.Errorf("expected confirm hint in response, got %q", rec.Body.String())
	}
}

func TestHandleIntegrityRepair(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{
		ID: "D1", SectorID: "S1", Name: "DIPR_001",
		ProgInicioDique: "0+000", ProgFinDique: "0+100", TotalML: 100,
	})
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M1", DikeID: "D1", PK: "0+000",
	})
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M2", DikeID: "GHOST", PK: "0+020",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/integrity/repair", strings.NewReader(`{"confirm":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	if err := HandleIntegrityRepair(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Removed int `json:"removed"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Removed != 1 {
		t.Fatalf("expected 1 removed, got %d", resp.Removed)
	}
	if _, err := app.FindRecordById("measurements", "M2"); err == nil {
		t.Error("expected orphan M2 to be deleted")
	}
	if _, err := app.FindRecordById("measurements", "M1"); err != nil {
		t.Errorf("expected M1 to survive repair: %v", err)
	}
}

func TestHandleBulkExercise_RequiresConfirm(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/exercise", strings.NewReader(`{"confirm":false}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	if err := HandleBulkExercise(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleBulkExercise(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{
		ID: "D1", SectorID: "S1", Name: "DIPR_001",
		ProgInicioDique: "0+000", ProgFinDique: "0+100", TotalML: 100,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/exercise", strings.NewReader(`{"confirm":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	if err := HandleBulkExercise(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Measurements    int `json:"measurements"`
		ProgressEntries int `json:"progressEntries"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	// 100 m at 50 m steps: chainages 0, 50, 100.
	if resp.Measurements != 3 {
		t.Errorf("expected 3 generated measurements, got %d", resp.Measurements)
	}
	if resp.ProgressEntries != 8 {
		t.Errorf("expected 8 generated progress entries, got %d", resp.ProgressEntries)
	}

	rows, err := services.MeasurementsForDike(app, "D1")
	if err != nil {
		t.Fatalf("failed to load measurements: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 stored rows, got %d", len(rows))
	}
	if !strings.HasPrefix(rows[0].ID, "EXERCISE_M_") {
		t.Errorf("expected exercise id prefix, got %q", rows[0].ID)
	}
}
