package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

// HandleSectorList returns all sectors in display order.
func HandleSectorList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectors, err := services.LoadSectors(app)
		if err != nil {
			log.Printf("sector_list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load sectors")
		}
		return e.JSON(http.StatusOK, sectors)
	}
}

// HandleSectorCreate creates a sector. The client may supply its own id so
// backups restore with stable references.
func HandleSectorCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			SortOrder int    `json:"sortOrder"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if req.Name == "" {
			return e.String(http.StatusBadRequest, "Missing sector name")
		}

		col, err := app.FindCollectionByNameOrId("sectors")
		if err != nil {
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(col)
		if req.ID != "" {
			record.Set("id", req.ID)
		}
		record.Set("name", req.Name)
		record.Set("sort_order", req.SortOrder)

		if err := app.Save(record); err != nil {
			log.Printf("sector_create: %v", err)
			return e.String(http.StatusBadRequest, "Failed to save sector")
		}

		return e.JSON(http.StatusOK, services.SectorFromRecord(record))
	}
}

// HandleSectorUpdate renames a sector or changes its position.
func HandleSectorUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectorID := e.Request.PathValue("id")
		if sectorID == "" {
			return e.String(http.StatusBadRequest, "Missing sector ID")
		}

		record, err := app.FindRecordById("sectors", sectorID)
		if err != nil {
			return e.String(http.StatusNotFound, "Sector not found")
		}

		var req struct {
			Name      *string `json:"name"`
			SortOrder *int    `json:"sortOrder"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if req.Name != nil {
			record.Set("name", *req.Name)
		}
		if req.SortOrder != nil {
			record.Set("sort_order", *req.SortOrder)
		}

		if err := app.Save(record); err != nil {
			log.Printf("sector_update: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to save sector")
		}

		return e.JSON(http.StatusOK, services.SectorFromRecord(record))
	}
}

// HandleSectorDelete removes a sector. Deletion is refused while dikes still
// reference it; the caller must move or delete those dikes first.
func HandleSectorDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectorID := e.Request.PathValue("id")
		if sectorID == "" {
			return e.String(http.StatusBadRequest, "Missing sector ID")
		}

		record, err := app.FindRecordById("sectors", sectorID)
		if err != nil {
			return e.String(http.StatusNotFound, "Sector not found")
		}

		dikes, err := app.FindRecordsByFilter("dikes", "sector = {:sector}", "", 1, 0,
			map[string]any{"sector": sectorID})
		if err == nil && len(dikes) > 0 {
			return e.JSON(http.StatusConflict, map[string]any{
				"error": "Sector still has dikes assigned",
			})
		}

		if err := services.DeleteBudget(app, "sector", sectorID); err != nil {
			log.Printf("sector_delete: budget cleanup: %v", err)
		}
		if err := app.Delete(record); err != nil {
			log.Printf("sector_delete: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to delete sector")
		}

		return e.JSON(http.StatusOK, map[string]any{"deleted": sectorID})
	}
}
