package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

// HandleCustomColumnList returns the user-defined sheet columns in order.
func HandleCustomColumnList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		names, err := services.LoadCustomColumns(app)
		if err != nil {
			log.Printf("custom_column_list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load custom columns")
		}
		return e.JSON(http.StatusOK, names)
	}
}

// HandleCustomColumnCreate adds a sheet column. Column names double as the
// partida codes the quantity mapping checks, so duplicates are refused.
func HandleCustomColumnCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if req.Name == "" {
			return e.String(http.StatusBadRequest, "Missing column name")
		}

		existing, err := services.LoadCustomColumns(app)
		if err != nil {
			log.Printf("custom_column_create: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load custom columns")
		}
		for _, name := range existing {
			if name == req.Name {
				return e.JSON(http.StatusConflict, map[string]any{
					"error": "Column already exists",
				})
			}
		}

		col, err := app.FindCollectionByNameOrId("custom_columns")
		if err != nil {
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		record := core.NewRecord(col)
		record.Set("name", req.Name)
		record.Set("sort_order", len(existing))

		if err := app.Save(record); err != nil {
			log.Printf("custom_column_create: %v", err)
			return e.String(http.StatusBadRequest, "Failed to save custom column")
		}

		return e.JSON(http.StatusOK, map[string]any{"id": record.Id, "name": req.Name})
	}
}

// HandleCustomColumnDelete removes a column definition. Values already
// stored in measurement rows stay in place; they simply stop rendering.
func HandleCustomColumnDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		colID := e.Request.PathValue("id")
		if colID == "" {
			return e.String(http.StatusBadRequest, "Missing column ID")
		}

		record, err := app.FindRecordById("custom_columns", colID)
		if err != nil {
			return e.String(http.StatusNotFound, "Custom column not found")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("custom_column_delete: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to delete custom column")
		}

		return e.JSON(http.StatusOK, map[string]any{"deleted": colID})
	}
}
