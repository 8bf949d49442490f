package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dikecontrol/services"
	"dikecontrol/testhelpers"
)

func testBudgetTree() []services.BudgetSection {
	return []services.BudgetSection{{
		ID: "B", Name: "OBRAS DE PROTECCION",
		Groups: []services.BudgetGroup{{
			ID: "B1", Code: "400", Name: "MOVIMIENTO DE TIERRAS",
			Items: []services.BudgetItem{
				{ID: "i1", Code: "403.A", Description: "CONFORMACION", Unit: "m3", Metrado: 100, Price: 10},
				{ID: "i2", Code: "404.A", Description: "ENROCADO", Unit: "m3", Metrado: 50, Price: 40},
			},
		}},
	}}
}

func TestHandleBudgetGet_DikeFallsBackToSector(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI"})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())

	handler := HandleBudgetGet(app)
	req := httptest.NewRequest(http.MethodGet, "/api/budget/dike/D1", nil)
	req.SetPathValue("ownerType", "dike")
	req.SetPathValue("ownerId", "D1")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Budget []services.BudgetSection `json:"budget"`
		Source string                   `json:"source"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Source != "sector" {
		t.Errorf("source = %q, want sector", resp.Source)
	}
	if len(resp.Budget) != 1 || resp.Budget[0].Groups[0].Items[0].Code != "403.A" {
		t.Errorf("budget = %+v", resp.Budget)
	}
}

func TestHandleBudgetGet_DikeOverrideWins(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI"})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())

	override := testBudgetTree()
	override[0].Groups[0].Items[0].Metrado = 999
	testhelpers.SaveTestBudget(t, app, "dike", "D1", override)

	handler := HandleBudgetGet(app)
	req := httptest.NewRequest(http.MethodGet, "/api/budget/dike/D1", nil)
	req.SetPathValue("ownerType", "dike")
	req.SetPathValue("ownerId", "D1")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Budget []services.BudgetSection `json:"budget"`
		Source string                   `json:"source"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Source != "dike" {
		t.Errorf("source = %q, want dike", resp.Source)
	}
	if resp.Budget[0].Groups[0].Items[0].Metrado != 999 {
		t.Errorf("override metrado = %v", resp.Budget[0].Groups[0].Items[0].Metrado)
	}
}

func TestHandleBudgetGet_InvalidOwner(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleBudgetGet(app)
	req := httptest.NewRequest(http.MethodGet, "/api/budget/project/X", nil)
	req.SetPathValue("ownerType", "project")
	req.SetPathValue("ownerId", "X")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleBudgetDelete_DropsDikeOverride(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI"})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())
	testhelpers.SaveTestBudget(t, app, "dike", "D1", testBudgetTree())

	handler := HandleBudgetDelete(app)
	req := httptest.NewRequest(http.MethodDelete, "/api/budget/dike/D1", nil)
	req.SetPathValue("ownerType", "dike")
	req.SetPathValue("ownerId", "D1")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// the sector budget applies again
	get := HandleBudgetGet(app)
	req = httptest.NewRequest(http.MethodGet, "/api/budget/dike/D1", nil)
	req.SetPathValue("ownerType", "dike")
	req.SetPathValue("ownerId", "D1")
	rec = httptest.NewRecorder()
	if err := get(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	testhelpers.AssertJSONContains(t, rec.Body.String(), `"source":"sector"`)
}

func TestHandleBudgetAnnotated(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI"})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M1", DikeID: "D1", PK: "0+010", Distancia: 10, TipoTerreno: "B1", Carguio: 1,
		Item403AContractual: 2,
	})

	handler := HandleBudgetAnnotated(app)
	req := httptest.NewRequest(http.MethodGet, "/api/budget/sector/S1/annotated", nil)
	req.SetPathValue("ownerType", "sector")
	req.SetPathValue("ownerId", "S1")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Budget    services.AnnotatedBudget `json:"budget"`
		Waterfall services.Waterfall       `json:"waterfall"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	item := resp.Budget.Sections[0].Groups[0].Items[0]
	if item.ExecutedQty != 20 {
		t.Errorf("ExecutedQty = %v, want 20", item.ExecutedQty)
	}
	// executed cost 20 qty * 10 price
	if resp.Budget.Totals.Executed != 200 {
		t.Errorf("Totals.Executed = %v", resp.Budget.Totals.Executed)
	}
	// The waterfall always starts from the selected contractual direct
	// cost, never the executed cost.
	if resp.Waterfall.DirectCost != 3000 {
		t.Errorf("Waterfall.DirectCost = %v, want 3000", resp.Waterfall.DirectCost)
	}
}

func TestHandleBudgetItemToggle(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())

	handler := HandleBudgetItemToggle(app)
	toggle := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/budget/sector/S1/items/i1/toggle", nil)
		req.SetPathValue("ownerType", "sector")
		req.SetPathValue("ownerId", "S1")
		req.SetPathValue("itemId", "i1")
		rec := httptest.NewRecorder()
		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec
	}

	if rec := toggle(); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	budget, err := services.LoadBudget(app, "sector", "S1")
	if err != nil {
		t.Fatal(err)
	}
	if budget[0].Groups[0].Items[0].IsSelected() {
		t.Error("item still selected after toggle")
	}

	toggle()
	budget, err = services.LoadBudget(app, "sector", "S1")
	if err != nil {
		t.Fatal(err)
	}
	if !budget[0].Groups[0].Items[0].IsSelected() {
		t.Error("item not reselected after second toggle")
	}
}

func TestHandleBudgetItemPatch_CreatesDikeOverride(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI"})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())

	handler := HandleBudgetItemPatch(app)
	req := httptest.NewRequest(http.MethodPatch, "/api/budget/dike/D1/items/i1",
		strings.NewReader(`{"metrado":250}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("ownerType", "dike")
	req.SetPathValue("ownerId", "D1")
	req.SetPathValue("itemId", "i1")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// the patch cloned the sector budget into a dike override
	dikeBudget, err := services.LoadBudget(app, "dike", "D1")
	if err != nil {
		t.Fatal(err)
	}
	if len(dikeBudget) == 0 || dikeBudget[0].Groups[0].Items[0].Metrado != 250 {
		t.Errorf("dike override = %+v", dikeBudget)
	}
	// the sector template stays untouched
	sectorBudget, err := services.LoadBudget(app, "sector", "S1")
	if err != nil {
		t.Fatal(err)
	}
	if sectorBudget[0].Groups[0].Items[0].Metrado != 100 {
		t.Errorf("sector metrado = %v, want 100", sectorBudget[0].Groups[0].Items[0].Metrado)
	}
}

func TestHandleBudgetConsolidated(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.CreateTestSector(t, app, "S2", "SECHIN")
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())
	second := testBudgetTree()
	second[0].Groups[0].Items[0].Metrado = 40
	testhelpers.SaveTestBudget(t, app, "sector", "S2", second)

	handler := HandleBudgetConsolidated(app)
	req := httptest.NewRequest(http.MethodGet, "/api/budget/consolidated", nil)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Budget []services.BudgetSection `json:"budget"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if got := resp.Budget[0].Groups[0].Items[0].Metrado; got != 140 {
		t.Errorf("consolidated metrado = %v, want 140", got)
	}
}

func TestHandleBudgetConsolidated_Annotated(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.CreateTestSector(t, app, "S2", "SECHIN")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI"})
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())
	second := testBudgetTree()
	second[0].Groups[0].Items[0].Metrado = 40
	second[0].Groups[0].Items[1].Metrado = 50
	testhelpers.SaveTestBudget(t, app, "sector", "S2", second)
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{
		ID: "M1", DikeID: "D1", PK: "0+010", Distancia: 10, TipoTerreno: "B1", Carguio: 1,
		Item403AContractual: 2,
	})

	handler := HandleBudgetConsolidated(app)
	req := httptest.NewRequest(http.MethodGet, "/api/budget/consolidated?annotated=1", nil)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Budget    services.AnnotatedBudget `json:"budget"`
		Waterfall services.Waterfall       `json:"waterfall"`
	}
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Budget.Totals.Executed != 200 {
		t.Errorf("Totals.Executed = %v, want 200", resp.Budget.Totals.Executed)
	}
	// merged direct cost: (100+40)*10 + (50+50)*40
	if resp.Waterfall.DirectCost != 5400 {
		t.Errorf("Waterfall.DirectCost = %v, want 5400", resp.Waterfall.DirectCost)
	}
}

func TestHandleWaterfall(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "CASMA")
	testhelpers.SaveTestBudget(t, app, "sector", "S1", testBudgetTree())

	handler := HandleWaterfall(app)
	req := httptest.NewRequest(http.MethodGet, "/api/budget/sector/S1/waterfall", nil)
	req.SetPathValue("ownerType", "sector")
	req.SetPathValue("ownerId", "S1")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var w services.Waterfall
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &w)
	// direct cost 100*10 + 50*40 = 3000
	if w.DirectCost != 3000 {
		t.Errorf("DirectCost = %v", w.DirectCost)
	}
	if w.TotalWithTax <= w.DirectCost {
		t.Errorf("TotalWithTax = %v, should exceed direct cost", w.TotalWithTax)
	}
}
