package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// HandleMeasurementExportExcel downloads a dike's sheet as an Excel file.
func HandleMeasurementExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}

		data, err := services.BuildMeasurementSheet(app, dikeID)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusNotFound, "Dike not found")
		}

		xlsxBytes, err := services.GenerateMeasurementExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Metrados_%s_%s.xlsx", sanitizeFilename(data.Dike.Name), time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleMeasurementExportCSV downloads a dike's sheet as CSV, or as TSV
// with ?format=tsv for clipboard-friendly pasting.
func HandleMeasurementExportCSV(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dikeID := e.Request.PathValue("id")
		if dikeID == "" {
			return e.String(http.StatusBadRequest, "Missing dike ID")
		}

		data, err := services.BuildMeasurementSheet(app, dikeID)
		if err != nil {
			log.Printf("export_csv: %v", err)
			return e.String(http.StatusNotFound, "Dike not found")
		}

		date := time.Now().Format("2006-01-02")
		if e.Request.URL.Query().Get("format") == "tsv" {
			filename := fmt.Sprintf("Metrados_%s_%s.tsv", sanitizeFilename(data.Dike.Name), date)
			e.Response.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
			e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
			e.Response.Write(services.GenerateMeasurementTSV(data))
			return nil
		}

		csvBytes, err := services.GenerateMeasurementCSV(data)
		if err != nil {
			log.Printf("export_csv: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate CSV file")
		}

		filename := fmt.Sprintf("Metrados_%s_%s.csv", sanitizeFilename(data.Dike.Name), date)
		e.Response.Header().Set("Content-Type", "text/csv; charset=utf-8")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(csvBytes)
		return nil
	}
}

// HandleBudgetExportExcel downloads a sector's annotated budget as Excel.
func HandleBudgetExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectorID := e.Request.PathValue("id")
		if sectorID == "" {
			return e.String(http.StatusBadRequest, "Missing sector ID")
		}

		data, err := services.BuildBudgetExport(app, sectorID)
		if err != nil {
			log.Printf("budget_export: %v", err)
			return e.String(http.StatusNotFound, "Sector not found")
		}

		xlsxBytes, err := services.GenerateBudgetExcel(data)
		if err != nil {
			log.Printf("budget_export: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Presupuesto_%s_%s.xlsx", sanitizeFilename(data.OwnerName), time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleValuationExportPDF downloads the valuation report as PDF.
func HandleValuationExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildValuationReport(app)
		if err != nil {
			log.Printf("valuation_export: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to build valuation report")
		}

		pdfBytes, err := services.GenerateValuationPDF(data)
		if err != nil {
			log.Printf("valuation_export: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("Valorizacion_%s.pdf", time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// HandleBackupDownload downloads the whole project as a JSON backup.
func HandleBackupDownload(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		backup, err := services.BuildBackup(app)
		if err != nil {
			log.Printf("backup_download: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to build backup")
		}

		payload, err := json.MarshalIndent(backup, "", "  ")
		if err != nil {
			log.Printf("backup_download: marshal: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to encode backup")
		}

		filename := fmt.Sprintf("Respaldo_Obra_%s.json", time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/json")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(payload)
		return nil
	}
}
