package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dikecontrol/testhelpers"
)

func TestHandleCustomColumnCreateAndList(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	create := HandleCustomColumnCreate(app)
	req := httptest.NewRequest(http.MethodPost, "/api/custom-columns", strings.NewReader(`{"name":"402.B_R"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	if err := create(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.AssertJSONContains(t, rec.Body.String(), "402.B_R")

	list := HandleCustomColumnList(app)
	req = httptest.NewRequest(http.MethodGet, "/api/custom-columns", nil)
	rec = httptest.NewRecorder()
	if err := list(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var names []string
	testhelpers.DecodeJSON(t, rec.Body.Bytes(), &names)
	if len(names) != 1 || names[0] != "402.B_R" {
		t.Errorf("names = %v", names)
	}
}

func TestHandleCustomColumnCreate_Duplicate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCustomColumn(t, app, "402.B_R")

	handler := HandleCustomColumnCreate(app)
	req := httptest.NewRequest(http.MethodPost, "/api/custom-columns", strings.NewReader(`{"name":"402.B_R"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandleCustomColumnDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := testhelpers.CreateTestCustomColumn(t, app, "402.B_R")

	handler := HandleCustomColumnDelete(app)
	req := httptest.NewRequest(http.MethodDelete, "/api/custom-columns/"+record.Id, nil)
	req.SetPathValue("id", record.Id)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, err := app.FindRecordById("custom_columns", record.Id); err == nil {
		t.Error("column still present")
	}
}
