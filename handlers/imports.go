package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

// HandleMeasurementValidate parses an uploaded measurement sheet and
// reports per-row validation results. Nothing is persisted.
func HandleMeasurementValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}

		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return e.String(http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.String(http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ValidateMeasurementFile(app, file, header.Filename, dikeID)
		if err != nil {
			log.Printf("measurement_validate: %v", err)
			return e.String(http.StatusBadRequest, err.Error())
		}

		return e.JSON(http.StatusOK, result)
	}
}

// HandleMeasurementImportCommit validates the uploaded file again and, when
// every row passes, replaces the dike's sheet with the parsed rows. The
// file travels with both requests so there is no server-side draft state.
func HandleMeasurementImportCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}

		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return e.String(http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.String(http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ValidateMeasurementFile(app, file, header.Filename, dikeID)
		if err != nil {
			log.Printf("measurement_commit: %v", err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		if result.ErrorRows > 0 {
			return e.JSON(http.StatusUnprocessableEntity, result)
		}

		count, err := services.CommitMeasurementImport(app, dikeID, result.ParsedRows)
		if err != nil {
			log.Printf("measurement_commit: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to import measurements")
		}

		return e.JSON(http.StatusOK, map[string]any{"imported": count})
	}
}

// HandleBackupRestore replaces the whole project with the posted backup
// JSON. Record ids are restored verbatim so cross-references keep working.
func HandleBackupRestore(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		body, err := io.ReadAll(io.LimitReader(e.Request.Body, 50<<20))
		if err != nil {
			return e.String(http.StatusBadRequest, "Failed to read request body")
		}

		backup, err := services.ParseBackup(body)
		if err != nil {
			log.Printf("backup_restore: %v", err)
			return e.String(http.StatusBadRequest, "Invalid backup file")
		}

		if err := services.RestoreBackup(app, backup); err != nil {
			log.Printf("backup_restore: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to restore backup")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"sectors":         len(backup.Sectors),
			"dikes":           len(backup.Dikes),
			"measurements":    len(backup.Measurements),
			"progressEntries": len(backup.ProgressEntries),
		})
	}
}
