package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"dikecontrol/services"
)

// HandleMeasurementList returns a dike's measurement rows in sheet order.
func HandleMeasurementList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}
		if _, err := app.FindRecordById("dikes", dikeID); err != nil {
			return e.String(http.StatusNotFound, "Dike not found")
		}

		rows, err := services.MeasurementsForDike(app, dikeID)
		if err != nil {
			log.Printf("measurement_list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load measurements")
		}
		return e.JSON(http.StatusOK, rows)
	}
}

// HandleMeasurementCreate appends a row to a dike's sheet. The pk must be a
// valid chainage and unique within the dike; when distancia is omitted it is
// derived from the previous row's pk.
func HandleMeasurementCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}
		if _, err := app.FindRecordById("dikes", dikeID); err != nil {
			return e.String(http.StatusNotFound, "Dike not found")
		}

		var req struct {
			services.Measurement
			Distancia *float64 `json:"distancia"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}

		m := req.Measurement
		m.DikeID = dikeID
		if !services.IsValidPK(m.PK) {
			return e.String(http.StatusBadRequest, "Invalid progresiva format")
		}

		existing, err := services.MeasurementsForDike(app, dikeID)
		if err != nil {
			log.Printf("measurement_create: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load measurements")
		}
		for _, row := range existing {
			if row.PK == m.PK {
				return e.JSON(http.StatusConflict, map[string]any{
					"error": "A row with this progresiva already exists",
				})
			}
		}

		if req.Distancia != nil {
			m.Distancia = *req.Distancia
		} else if len(existing) > 0 {
			m.Distancia = services.PKDelta(existing[len(existing)-1].PK, m.PK)
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Carguio == 0 {
			m.Carguio = 1
		}

		col, err := app.FindCollectionByNameOrId("measurements")
		if err != nil {
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		record := core.NewRecord(col)
		record.Set("id", m.ID)
		if err := services.ApplyMeasurementToRecord(record, m); err != nil {
			log.Printf("measurement_create: %v", err)
			return e.String(http.StatusBadRequest, "Failed to encode measurement")
		}
		record.Set("sort_order", len(existing))

		if err := app.Save(record); err != nil {
			log.Printf("measurement_create: %v", err)
			return e.String(http.StatusBadRequest, "Failed to save measurement")
		}

		return e.JSON(http.StatusOK, m)
	}
}

// HandleMeasurementBulkReplace swaps a dike's entire sheet for the posted
// rows. This is the grid's save path: the client owns row order and ids.
func HandleMeasurementBulkReplace(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}
		if _, err := app.FindRecordById("dikes", dikeID); err != nil {
			return e.String(http.StatusNotFound, "Dike not found")
		}

		var rows []services.Measurement
		if err := e.BindBody(&rows); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		for i := range rows {
			rows[i].DikeID = dikeID
			if !services.IsValidPK(rows[i].PK) {
				return e.String(http.StatusBadRequest, "Invalid progresiva format")
			}
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}

		count, err := services.CommitMeasurementImport(app, dikeID, rows)
		if err != nil {
			log.Printf("measurement_bulk: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to replace measurements")
		}

		return e.JSON(http.StatusOK, map[string]any{"saved": count})
	}
}

// HandleMeasurementPatch updates a single cell or row attribute. Numeric
// cells are addressed by column id, the same ids the sheet exports use.
func HandleMeasurementPatch(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rowID := e.Request.PathValue("id")
		if rowID == "" {
			return e.String(http.StatusBadRequest, "Missing measurement ID")
		}

		record, err := app.FindRecordById("measurements", rowID)
		if err != nil {
			return e.String(http.StatusNotFound, "Measurement not found")
		}

		var req struct {
			Column string `json:"column"`
			Value  any    `json:"value"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if req.Column == "" {
			return e.String(http.StatusBadRequest, "Missing column")
		}

		m := services.MeasurementFromRecord(record)
		switch req.Column {
		case "pk":
			pk := cast.ToString(req.Value)
			if !services.IsValidPK(pk) {
				return e.String(http.StatusBadRequest, "Invalid progresiva format")
			}
			m.PK = pk
		case "distancia":
			m.Distancia = cast.ToFloat64(req.Value)
		case "tipoTerreno":
			m.TipoTerreno = cast.ToString(req.Value)
		case "tipoEnrocado":
			m.TipoEnrocado = cast.ToString(req.Value)
		case "intervencion":
			m.Intervencion = cast.ToString(req.Value)
		default:
			custom, err := services.LoadCustomColumns(app)
			if err != nil {
				custom = nil
			}
			var target *services.Column
			for _, c := range services.SheetColumns(custom) {
				if c.ID == req.Column {
					target = &c
					break
				}
			}
			if target == nil || !services.SetCellValue(&m, *target, cast.ToFloat64(req.Value)) {
				return e.String(http.StatusBadRequest, "Unknown column")
			}
		}

		if err := services.ApplyMeasurementToRecord(record, m); err != nil {
			log.Printf("measurement_patch: %v", err)
			return e.String(http.StatusBadRequest, "Failed to encode measurement")
		}
		if err := app.Save(record); err != nil {
			log.Printf("measurement_patch: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to save measurement")
		}

		return e.JSON(http.StatusOK, m)
	}
}

// HandleMeasurementDelete removes a single row.
func HandleMeasurementDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rowID := e.Request.PathValue("id")
		if rowID == "" {
			return e.String(http.StatusBadRequest, "Missing measurement ID")
		}

		record, err := app.FindRecordById("measurements", rowID)
		if err != nil {
			return e.String(http.StatusNotFound, "Measurement not found")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("measurement_delete: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to delete measurement")
		}

		return e.JSON(http.StatusOK, map[string]any{"deleted": rowID})
	}
}
