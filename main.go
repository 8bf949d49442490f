package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/collections"
	"dikecontrol/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateSectorBudgets(app); err != nil {
			log.Printf("Warning: budget migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Sector CRUD ──────────────────────────────────────────
		se.Router.GET("/api/sectors", handlers.HandleSectorList(app))
		se.Router.POST("/api/sectors", handlers.HandleSectorCreate(app))
		se.Router.PATCH("/api/sectors/{id}", handlers.HandleSectorUpdate(app))
		se.Router.DELETE("/api/sectors/{id}", handlers.HandleSectorDelete(app))

		// ── Dike CRUD ────────────────────────────────────────────
		se.Router.GET("/api/dikes", handlers.HandleDikeList(app))
		se.Router.POST("/api/dikes", handlers.HandleDikeCreate(app))
		se.Router.PATCH("/api/dikes/{id}", handlers.HandleDikeUpdate(app))
		se.Router.DELETE("/api/dikes/{id}", handlers.HandleDikeDelete(app))

		// ── Measurement sheet ────────────────────────────────────
		se.Router.GET("/api/dikes/{id}/measurements", handlers.HandleMeasurementList(app))
		se.Router.POST("/api/dikes/{id}/measurements", handlers.HandleMeasurementCreate(app))
		se.Router.PUT("/api/dikes/{id}/measurements", handlers.HandleMeasurementBulkReplace(app))
		se.Router.PATCH("/api/measurements/{id}", handlers.HandleMeasurementPatch(app))
		se.Router.DELETE("/api/measurements/{id}", handlers.HandleMeasurementDelete(app))

		// ── Daily progress ───────────────────────────────────────
		se.Router.GET("/api/progress", handlers.HandleProgressList(app))
		se.Router.POST("/api/progress", handlers.HandleProgressCreate(app))
		se.Router.PATCH("/api/progress/{id}", handlers.HandleProgressUpdate(app))
		se.Router.DELETE("/api/progress/{id}", handlers.HandleProgressDelete(app))

		// ── Custom sheet columns ─────────────────────────────────
		se.Router.GET("/api/custom-columns", handlers.HandleCustomColumnList(app))
		se.Router.POST("/api/custom-columns", handlers.HandleCustomColumnCreate(app))
		se.Router.DELETE("/api/custom-columns/{id}", handlers.HandleCustomColumnDelete(app))

		// ── Budgets (consolidated route before {ownerType} to avoid
		//    matching "consolidated" as an owner type) ─────────────
		se.Router.GET("/api/budget/consolidated", handlers.HandleBudgetConsolidated(app))
		se.Router.GET("/api/budget/{ownerType}/{ownerId}", handlers.HandleBudgetGet(app))
		se.Router.PUT("/api/budget/{ownerType}/{ownerId}", handlers.HandleBudgetSave(app))
		se.Router.DELETE("/api/budget/{ownerType}/{ownerId}", handlers.HandleBudgetDelete(app))
		se.Router.GET("/api/budget/{ownerType}/{ownerId}/annotated", handlers.HandleBudgetAnnotated(app))
		se.Router.GET("/api/budget/{ownerType}/{ownerId}/waterfall", handlers.HandleWaterfall(app))
		se.Router.PATCH("/api/budget/{ownerType}/{ownerId}/items/{itemId}", handlers.HandleBudgetItemPatch(app))
		se.Router.POST("/api/budget/{ownerType}/{ownerId}/items/{itemId}/toggle", handlers.HandleBudgetItemToggle(app))

		// ── Reports ──────────────────────────────────────────────
		se.Router.GET("/api/reports/descriptive", handlers.HandleDescriptiveReport(app))
		se.Router.GET("/api/reports/summary", handlers.HandleSummaryReport(app))
		se.Router.GET("/api/dikes/{id}/schedule", handlers.HandleScheduleGrid(app))

		// ── Exports ──────────────────────────────────────────────
		se.Router.GET("/api/dikes/{id}/export/excel", handlers.HandleMeasurementExportExcel(app))
		se.Router.GET("/api/dikes/{id}/export/csv", handlers.HandleMeasurementExportCSV(app))
		se.Router.GET("/api/sectors/{id}/export/budget", handlers.HandleBudgetExportExcel(app))
		se.Router.GET("/api/reports/valuation/pdf", handlers.HandleValuationExportPDF(app))
		se.Router.GET("/api/backup", handlers.HandleBackupDownload(app))

		// ── Imports ──────────────────────────────────────────────
		se.Router.POST("/api/dikes/{id}/import", handlers.HandleMeasurementValidate(app))
		se.Router.POST("/api/dikes/{id}/import/commit", handlers.HandleMeasurementImportCommit(app))
		se.Router.POST("/api/backup/restore", handlers.HandleBackupRestore(app))

		// ── Data health ──────────────────────────────────────────
		se.Router.GET("/api/integrity", handlers.HandleIntegrityReport(app))
		se.Router.POST("/api/integrity/repair", handlers.HandleIntegrityRepair(app))
		se.Router.POST("/api/exercise", handlers.HandleBulkExercise(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
