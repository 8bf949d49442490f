package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

// HandleDikeList returns all dikes, optionally filtered by sector.
func HandleDikeList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikes, err := services.LoadDikes(app)
		if err != nil {
			log.Printf("dike_list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load dikes")
		}

		if sectorID := e.Request.URL.Query().Get("sector"); sectorID != "" {
			filtered := make([]services.Dike, 0, len(dikes))
			for _, d := range dikes {
				if d.SectorID == sectorID {
					filtered = append(filtered, d)
				}
			}
			dikes = filtered
		}

		return e.JSON(http.StatusOK, dikes)
	}
}

// HandleDikeCreate creates a dike in a sector. Configuration problems
// (duplicate names, chainage divergence) do not block the save; they come
// back as warnings so the client can surface them.
func HandleDikeCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var d services.Dike
		if err := e.BindBody(&d); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if d.Name == "" || d.SectorID == "" {
			return e.String(http.StatusBadRequest, "Missing dike name or sector")
		}
		if _, err := app.FindRecordById("sectors", d.SectorID); err != nil {
			return e.String(http.StatusNotFound, "Sector not found")
		}

		col, err := app.FindCollectionByNameOrId("dikes")
		if err != nil {
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(col)
		if d.ID != "" {
			record.Set("id", d.ID)
		}
		services.ApplyDikeToRecord(record, d)

		if err := app.Save(record); err != nil {
			log.Printf("dike_create: %v", err)
			return e.String(http.StatusBadRequest, "Failed to save dike")
		}

		saved := services.DikeFromRecord(record)
		all, err := services.LoadDikes(app)
		if err != nil {
			all = []services.Dike{saved}
		}

		return e.JSON(http.StatusOK, map[string]any{
			"dike":     saved,
			"warnings": services.ValidateDike(saved, all),
		})
	}
}

// HandleDikeUpdate applies partial changes to a dike.
func HandleDikeUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}

		record, err := app.FindRecordById("dikes", dikeID)
		if err != nil {
			return e.String(http.StatusNotFound, "Dike not found")
		}

		d := services.DikeFromRecord(record)
		if err := e.BindBody(&d); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		d.ID = dikeID
		if d.SectorID != record.GetString("sector") {
			if _, err := app.FindRecordById("sectors", d.SectorID); err != nil {
				return e.String(http.StatusNotFound, "Sector not found")
			}
		}
		services.ApplyDikeToRecord(record, d)

		if err := app.Save(record); err != nil {
			log.Printf("dike_update: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to save dike")
		}

		all, err := services.LoadDikes(app)
		if err != nil {
			all = []services.Dike{d}
		}

		return e.JSON(http.StatusOK, map[string]any{
			"dike":     d,
			"warnings": services.ValidateDike(d, all),
		})
	}
}

// HandleDikeDelete removes a dike. When measurement or progress rows still
// reference it the delete is refused unless ?force=1 is set, in which case
// those rows are removed too. Without the force cascade the rows would be
// left orphaned.
func HandleDikeDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}

		record, err := app.FindRecordById("dikes", dikeID)
		if err != nil {
			return e.String(http.StatusNotFound, "Dike not found")
		}

		force := e.Request.URL.Query().Get("force") == "1"

		params := map[string]any{"dike": dikeID}
		rows, err := app.FindRecordsByFilter("measurements", "dike_id = {:dike}", "", 0, 0, params)
		if err != nil {
			rows = nil
		}
		entries, err := app.FindRecordsByFilter("progress_entries", "dike_id = {:dike}", "", 0, 0, params)
		if err != nil {
			entries = nil
		}

		if (len(rows) > 0 || len(entries) > 0) && !force {
			return e.JSON(http.StatusConflict, map[string]any{
				"error":           "Dike still has data; repeat with force=1 to delete it",
				"measurements":    len(rows),
				"progressEntries": len(entries),
			})
		}

		for _, r := range rows {
			if err := app.Delete(r); err != nil {
				return e.String(http.StatusInternalServerError, "Failed to delete measurements")
			}
		}
		for _, r := range entries {
			if err := app.Delete(r); err != nil {
				return e.String(http.StatusInternalServerError, "Failed to delete progress entries")
			}
		}
		if err := services.DeleteBudget(app, "dike", dikeID); err != nil {
			log.Printf("dike_delete: budget cleanup: %v", err)
		}
		if err := app.Delete(record); err != nil {
			log.Printf("dike_delete: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to delete dike")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"deleted":         dikeID,
			"measurements":    len(rows),
			"progressEntries": len(entries),
		})
	}
}
