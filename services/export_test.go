package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sheetData() *MeasurementSheetData {
	return &MeasurementSheetData{
		Dike:       Dike{ID: "D1", Name: "DIPR_001_MI", TotalML: 100},
		SectorName: "SECTOR CASMA",
		Columns: []Column{
			{ID: "pk", Label: "PK"},
			{ID: "distancia", Label: "DIST."},
			{ID: "item403A_Contractual", Label: "CONT."},
			{ID: "MI COLUMNA", Label: "MI COLUMNA", Custom: true},
		},
		Rows: []Measurement{
			{ID: "m1", DikeID: "D1", PK: "0+000", Distancia: 0, Item403AContractual: 1.5},
			{ID: "m2", DikeID: "D1", PK: "0+020", Distancia: 20,
				Extra: map[string]any{"MI COLUMNA": 2.5}},
		},
		GeneratedAt: "2024-09-01 10:00",
	}
}

func TestGenerateMeasurementCSV(t *testing.T) {
	out, err := GenerateMeasurementCSV(sheetData())
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "\uFEFF") {
		t.Error("missing UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF")), "\n")
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0] != "PK,DIST.,CONT.,MI COLUMNA" {
		t.Errorf("header = %q", lines[0])
	}
	// zero numeric cells render blank
	if lines[1] != "0+000,,1.5," {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "0+020,20,,2.5" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestGenerateMeasurementTSV(t *testing.T) {
	out := GenerateMeasurementTSV(sheetData())
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0] != "PK\tDIST.\tCONT.\tMI COLUMNA" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "0+020\t20\t\t2.5" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestGenerateMeasurementExcel(t *testing.T) {
	data := sheetData()
	out, err := GenerateMeasurementExcel(data)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != "DIPR_001_MI" {
		t.Errorf("sheet name = %q", sheet)
	}
	title, _ := f.GetCellValue(sheet, "A1")
	if title != "METRADOS DIPR_001_MI" {
		t.Errorf("A1 = %q", title)
	}
	header, _ := f.GetCellValue(sheet, "A5")
	if header != "PK" {
		t.Errorf("A5 = %q", header)
	}
	pk, _ := f.GetCellValue(sheet, "A6")
	if pk != "0+000" {
		t.Errorf("A6 = %q", pk)
	}
	custom, _ := f.GetCellValue(sheet, "D7")
	if custom != "2.5" {
		t.Errorf("D7 = %q", custom)
	}
}

func TestGenerateBudgetExcel(t *testing.T) {
	budget := []BudgetSection{{
		ID: "B", Name: "OBRAS DE PROTECCION",
		Groups: []BudgetGroup{{
			ID: "B1", Code: "400", Name: "MOVIMIENTO DE TIERRAS",
			Items: []BudgetItem{
				{ID: "i1", Code: "403.A", Description: "CONFORMACION", Unit: "m3", Metrado: 100, Price: 10},
			},
		}},
	}}
	data := &BudgetExportData{
		OwnerName:   "SECTOR CASMA",
		Budget:      AnnotateBudget(budget, nil),
		Waterfall:   ApplyWaterfall(DirectCost(budget), DefaultWaterfallConfig()),
		GeneratedAt: "2024-09-01 10:00",
	}

	out, err := GenerateBudgetExcel(data)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	title, _ := f.GetCellValue("Presupuesto", "A1")
	if title != "PRESUPUESTO SECTOR CASMA" {
		t.Errorf("A1 = %q", title)
	}
	header, _ := f.GetCellValue("Presupuesto", "B4")
	if header != "Descripción" {
		t.Errorf("B4 = %q", header)
	}
	itemCode, _ := f.GetCellValue("Presupuesto", "A7")
	if itemCode != "403.A" {
		t.Errorf("A7 = %q, want the item row below section and group", itemCode)
	}
}

func TestGenerateValuationPDF(t *testing.T) {
	data := &ValuationReportData{
		Reports: []SectorReport{{
			Sector: Sector{ID: "S1", Name: "SECTOR CASMA"},
			DikeDetails: []DikeDetail{{
				Dike:           Dike{ID: "D1", Name: "DIPR_001_MI", TotalML: 100},
				ExecutedLength: 25,
				ProgressPct:    25,
				StartDate:      "2024-08-15",
				EndDate:        "2024-08-31",
			}},
			Financials: SectorFinancials{Contractual: 1000, Executed: 250, Balance: 750, Progress: 25},
		}},
		Monthly: MonthlyValuationResult{
			Months: []string{"2024-08"},
			Data:   map[string]map[string]float64{"2024-08": {"S1": 250}},
		},
		Waterfall:   ApplyWaterfall(1000, DefaultWaterfallConfig()),
		GeneratedAt: "2024-09-01 10:00",
	}

	out, err := GenerateValuationPDF(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 {
		t.Fatal("empty PDF output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header: % x", out[:8])
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"-0+004.190", "'-0+004.190"},
		{"@cmd", "'@cmd"},
		{"normal", "normal"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatLength(t *testing.T) {
	if got := formatLength(100); got != "100" {
		t.Errorf("formatLength(100) = %q", got)
	}
	if got := formatLength(5068.48); got != "5068.48" {
		t.Errorf("formatLength(5068.48) = %q", got)
	}
}
