package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
)

// MeasurementSheetData holds everything a measurement sheet export needs:
// the dike, the resolved column set and the rows in sheet order.
type MeasurementSheetData struct {
	Dike        Dike
	SectorName  string
	Columns     []Column
	Rows        []Measurement
	GeneratedAt string
}

// BuildMeasurementSheet assembles the export payload for one dike.
func BuildMeasurementSheet(app *pocketbase.PocketBase, dikeID string) (*MeasurementSheetData, error) {
	dikeRecord, err := app.FindRecordById("dikes", dikeID)
	if err != nil {
		return nil, fmt.Errorf("find dike %s: %w", dikeID, err)
	}
	dike := DikeFromRecord(dikeRecord)

	sectorName := ""
	if sectorRecord, err := app.FindRecordById("sectors", dike.SectorID); err == nil {
		sectorName = sectorRecord.GetString("name")
	}

	custom, err := LoadCustomColumns(app)
	if err != nil {
		return nil, err
	}
	rows, err := MeasurementsForDike(app, dikeID)
	if err != nil {
		return nil, err
	}

	return &MeasurementSheetData{
		Dike:        dike,
		SectorName:  sectorName,
		Columns:     SheetColumns(custom),
		Rows:        rows,
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
	}, nil
}

// BudgetExportData holds an owner's annotated budget plus its waterfall.
type BudgetExportData struct {
	OwnerName   string
	Budget      AnnotatedBudget
	Waterfall   Waterfall
	GeneratedAt string
}

// BuildBudgetExport assembles the budget export for one sector: the
// annotated tree over that sector's measurements and the cost waterfall
// on the selected direct cost.
func BuildBudgetExport(app *pocketbase.PocketBase, sectorID string) (*BudgetExportData, error) {
	sectorRecord, err := app.FindRecordById("sectors", sectorID)
	if err != nil {
		return nil, fmt.Errorf("find sector %s: %w", sectorID, err)
	}

	budget, err := LoadBudget(app, "sector", sectorID)
	if err != nil {
		return nil, err
	}
	dikes, err := LoadDikes(app)
	if err != nil {
		return nil, err
	}
	rows, err := LoadMeasurements(app)
	if err != nil {
		return nil, err
	}
	sectorRows := rowsOfDikes(rows, dikesOfSector(dikes, sectorID))

	return &BudgetExportData{
		OwnerName:   sectorRecord.GetString("name"),
		Budget:      AnnotateBudget(budget, sectorRows),
		Waterfall:   ApplyWaterfall(DirectCost(budget), DefaultWaterfallConfig()),
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
	}, nil
}

// ValuationReportData feeds the valuation PDF: per-sector financials and
// the monthly estimates.
type ValuationReportData struct {
	Reports     []SectorReport
	Monthly     MonthlyValuationResult
	Waterfall   Waterfall
	GeneratedAt string
}

// BuildValuationReport assembles the project-wide valuation report.
func BuildValuationReport(app *pocketbase.PocketBase) (*ValuationReportData, error) {
	sectors, err := LoadSectors(app)
	if err != nil {
		return nil, err
	}
	dikes, err := LoadDikes(app)
	if err != nil {
		return nil, err
	}
	rows, err := LoadMeasurements(app)
	if err != nil {
		return nil, err
	}
	entries, err := LoadProgressEntries(app)
	if err != nil {
		return nil, err
	}
	budgetBySector, err := LoadBudgetsByOwnerType(app, "sector")
	if err != nil {
		return nil, err
	}

	var totalDirect float64
	for _, budget := range budgetBySector {
		totalDirect += DirectCost(budget)
	}

	return &ValuationReportData{
		Reports:     BuildSectorReports(sectors, dikes, rows, entries, budgetBySector),
		Monthly:     MonthlyValuation(entries, dikes, budgetBySector),
		Waterfall:   ApplyWaterfall(totalDirect, DefaultWaterfallConfig()),
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
	}, nil
}
