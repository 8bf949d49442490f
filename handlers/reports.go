package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"dikecontrol/services"
)

// loadReportInputs gathers the record sets every report variant needs.
func loadReportInputs(app *pocketbase.PocketBase) (
	[]services.Sector, []services.Dike, []services.Measurement,
	[]services.ProgressEntry, map[string][]services.BudgetSection, error,
) {
	sectors, err := services.LoadSectors(app)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	dikes, err := services.LoadDikes(app)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	rows, err := services.LoadMeasurements(app)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	entries, err := services.LoadProgressEntries(app)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	budgets, err := services.LoadBudgetsByOwnerType(app, "sector")
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return sectors, dikes, rows, entries, budgets, nil
}

// HandleDescriptiveReport assembles the full works report: per-sector
// financials and dike details, overruns, volume summaries, the quantity
// matrix, and the monthly valuation series.
func HandleDescriptiveReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectors, dikes, rows, entries, budgets, err := loadReportInputs(app)
		if err != nil {
			log.Printf("report_descriptive: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load report data")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"sectors":         services.BuildSectorReports(sectors, dikes, rows, entries, budgets),
			"overruns":        services.FindOverruns(sectors, dikes, rows, budgets),
			"volumeSummary":   services.ProgressVolumeSummary(dikes, entries, budgets),
			"matrixColumns":   services.MatrixColumns(),
			"matrix":          services.BuildQuantityMatrix(sectors, dikes, rows),
			"monthly":         services.MonthlyValuation(entries, dikes, budgets),
			"monthlyDetailed": services.DetailedMonthlyValuation(entries, dikes, budgets),
		})
	}
}

// HandleSummaryReport returns the per-sector annotated budget trees plus
// the financial cards derived from them.
func HandleSummaryReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectors, dikes, rows, _, budgets, err := loadReportInputs(app)
		if err != nil {
			log.Printf("report_summary: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load report data")
		}

		member := make(map[string]string, len(dikes))
		for _, d := range dikes {
			member[d.ID] = d.SectorID
		}

		type sectorSummary struct {
			Sector    services.Sector          `json:"sector"`
			Budget    services.AnnotatedBudget `json:"budget"`
			Waterfall services.Waterfall       `json:"waterfall"`
		}

		summaries := make([]sectorSummary, 0, len(sectors))
		var totalDirect, totalExecuted float64
		for _, s := range sectors {
			sectorRows := make([]services.Measurement, 0, len(rows))
			for _, m := range rows {
				if member[m.DikeID] == s.ID {
					sectorRows = append(sectorRows, m)
				}
			}
			annotated := services.AnnotateBudget(budgets[s.ID], sectorRows)
			totalDirect += annotated.Totals.Contractual
			totalExecuted += annotated.Totals.Executed
			summaries = append(summaries, sectorSummary{
				Sector:    s,
				Budget:    annotated,
				Waterfall: services.ApplyWaterfall(annotated.Totals.Contractual, services.DefaultWaterfallConfig()),
			})
		}

		return e.JSON(http.StatusOK, map[string]any{
			"sectors":            summaries,
			"contractualTotal":   totalDirect,
			"executedTotal":      totalExecuted,
			"contractualOverall": services.ApplyWaterfall(totalDirect, services.DefaultWaterfallConfig()),
			"executedOverall":    services.ApplyWaterfall(totalExecuted, services.DefaultWaterfallConfig()),
		})
	}
}

// HandleScheduleGrid returns a dike's linear-schedule coverage grid. The
// column resolution defaults to 100 m and can be set with ?resolution=.
func HandleScheduleGrid(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}

		record, err := app.FindRecordById("dikes", dikeID)
		if err != nil {
			return e.String(http.StatusNotFound, "Dike not found")
		}
		dike := services.DikeFromRecord(record)

		resolution := 100.0
		if raw := e.Request.URL.Query().Get("resolution"); raw != "" {
			if v := cast.ToFloat64(raw); v > 0 {
				resolution = v
			}
		}

		budget, _, err := effectiveBudget(app, "dike", dikeID)
		if err != nil {
			log.Printf("schedule_grid: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load budget")
		}
		entries, err := services.LoadProgressEntries(app)
		if err != nil {
			log.Printf("schedule_grid: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load progress entries")
		}

		return e.JSON(http.StatusOK, services.BuildScheduleGrid(dike, budget, entries, resolution))
	}
}

// HandleIntegrityReport returns the data-health snapshot: orphan rows,
// per-dike configuration issues, and the derived score.
func HandleIntegrityReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikes, err := services.LoadDikes(app)
		if err != nil {
			log.Printf("integrity_report: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load dikes")
		}
		rows, err := services.LoadMeasurements(app)
		if err != nil {
			log.Printf("integrity_report: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load measurements")
		}

		return e.JSON(http.StatusOK, services.BuildIntegrityReport(dikes, rows))
	}
}

// HandleIntegrityRepair deletes orphan measurement rows. Destructive, so
// the client must opt in explicitly with confirm=true.
func HandleIntegrityRepair(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req struct {
			Confirm bool `json:"confirm"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if !req.Confirm {
			return e.String(http.StatusBadRequest, "Repair requires confirm=true")
		}

		dikes, err := services.LoadDikes(app)
		if err != nil {
			log.Printf("integrity_repair: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load dikes")
		}
		rows, err := services.LoadMeasurements(app)
		if err != nil {
			log.Printf("integrity_repair: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load measurements")
		}

		orphans := services.FindOrphanMeasurements(dikes, rows)
		for _, id := range orphans {
			record, err := app.FindRecordById("measurements", id)
			if err != nil {
				continue
			}
			if err := app.Delete(record); err != nil {
				log.Printf("integrity_repair: delete %s: %v", id, err)
				return e.String(http.StatusInternalServerError, "Failed to delete orphan measurements")
			}
		}

		return e.JSON(http.StatusOK, map[string]any{"removed": len(orphans)})
	}
}

// HandleBulkExercise replaces all measurement and progress history with
// synthetic rows every 50 m along every dike.
func HandleBulkExercise(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req struct {
			Confirm bool `json:"confirm"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if !req.Confirm {
			return e.String(http.StatusBadRequest, "Bulk exercise requires confirm=true")
		}

		measurements, progress, err := services.RunBulkExercise(app)
		if err != nil {
			log.Printf("bulk_exercise: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate exercise data")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"measurements":    measurements,
			"progressEntries": progress,
		})
	}
}
