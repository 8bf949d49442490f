package handlers

import (
	"log"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

// HandleProgressList returns progress entries ordered by date, optionally
// filtered by dike.
func HandleProgressList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entries, err := services.LoadProgressEntries(app)
		if err != nil {
			log.Printf("progress_list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load progress entries")
		}

		if dikeID := e.Request.URL.Query().Get("dike"); dikeID != "" {
			filtered := make([]services.ProgressEntry, 0, len(entries))
			for _, entry := range entries {
				if entry.DikeID == dikeID {
					filtered = append(filtered, entry)
				}
			}
			entries = filtered
		}

		return e.JSON(http.StatusOK, entries)
	}
}

// HandleProgressCreate records a daily progress interval. When longitud is
// omitted it is derived from the chainage interval; when it is supplied and
// diverges from that interval by more than 1% the response flags it so the
// client can ask for confirmation. The entry is saved either way.
func HandleProgressCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req struct {
			services.ProgressEntry
			Longitud *float64 `json:"longitud"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}

		entry := req.ProgressEntry
		if entry.DikeID == "" || entry.Date == "" {
			return e.String(http.StatusBadRequest, "Missing dike or date")
		}
		if _, err := app.FindRecordById("dikes", entry.DikeID); err != nil {
			return e.String(http.StatusNotFound, "Dike not found")
		}

		interval := services.PKDelta(entry.ProgInicio, entry.ProgFin)
		divergent := false
		if req.Longitud != nil {
			entry.Longitud = *req.Longitud
			if interval > 0 && math.Abs(entry.Longitud-interval)/interval > 0.01 {
				divergent = true
			}
		} else {
			entry.Longitud = interval
		}
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}

		col, err := app.FindCollectionByNameOrId("progress_entries")
		if err != nil {
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		record := core.NewRecord(col)
		record.Set("id", entry.ID)
		services.ApplyProgressEntryToRecord(record, entry)

		if err := app.Save(record); err != nil {
			log.Printf("progress_create: %v", err)
			return e.String(http.StatusBadRequest, "Failed to save progress entry")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"entry":          entry,
			"intervalLength": interval,
			"divergent":      divergent,
		})
	}
}

// HandleProgressUpdate applies partial changes to a progress entry.
func HandleProgressUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entryID := e.Request.PathValue("id")
		if entryID == "" {
			return e.String(http.StatusBadRequest, "Missing entry ID")
		}

		record, err := app.FindRecordById("progress_entries", entryID)
		if err != nil {
			return e.String(http.StatusNotFound, "Progress entry not found")
		}

		entry := services.ProgressEntryFromRecord(record)
		if err := e.BindBody(&entry); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		entry.ID = entryID
		services.ApplyProgressEntryToRecord(record, entry)

		if err := app.Save(record); err != nil {
			log.Printf("progress_update: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to save progress entry")
		}

		return e.JSON(http.StatusOK, entry)
	}
}

// HandleProgressDelete removes a progress entry.
func HandleProgressDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entryID := e.Request.PathValue("id")
		if entryID == "" {
			return e.String(http.StatusBadRequest, "Missing entry ID")
		}

		record, err := app.FindRecordById("progress_entries", entryID)
		if err != nil {
			return e.String(http.StatusNotFound, "Progress entry not found")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("progress_delete: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to delete progress entry")
		}

		return e.JSON(http.StatusOK, map[string]any{"deleted": entryID})
	}
}
