package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateMeasurementExcel creates an Excel workbook with one dike's
// measurement sheet and returns the file contents as a byte slice.
func GenerateMeasurementExcel(data *MeasurementSheetData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names cap at 31 chars.
	sheetName := data.Dike.Name
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Metrados"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(data.Columns))
	if err != nil {
		return nil, fmt.Errorf("resolve last column: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 10},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	// Rows 1-3: dike header.
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("METRADOS "+data.Dike.Name))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if data.SectorName != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge sector: %w", err)
		}
		f.SetCellValue(sheetName, "A2", sanitizeExcelCell(data.SectorName))
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Generado: "+data.GeneratedAt)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// Row 5: column headers.
	for i, col := range data.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("resolve column %d: %w", i, err)
		}
		f.SetCellValue(sheetName, name+"5", sanitizeExcelCell(col.Label))
		if err := f.SetColWidth(sheetName, name, name, 11); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", name, err)
		}
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// Data rows from row 6.
	row := 6
	for _, m := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)
		for i, col := range data.Columns {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, fmt.Errorf("resolve column %d: %w", i, err)
			}
			switch v := CellValue(m, col).(type) {
			case string:
				f.SetCellValue(sheetName, name+rowStr, sanitizeExcelCell(v))
			default:
				f.SetCellValue(sheetName, name+rowStr, v)
			}
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, cellStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateBudgetExcel creates an Excel file with an owner's annotated
// budget tree followed by the cost waterfall.
func GenerateBudgetExcel(data *BudgetExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Presupuesto"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	lastCol := columns[len(columns)-1]

	widths := []float64{12, 46, 8, 12, 12, 12, 12, 14, 14}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}

	groupStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create group style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("PRESUPUESTO "+data.OwnerName))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A2", "Generado: "+data.GeneratedAt)

	headers := []string{"Partida", "Descripción", "Und", "Metrado", "Ejecutado", "Saldo", "Avance %", "P.U.", "Parcial"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s4", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A4", lastCol+"4", headerStyle)

	row := 5
	writeRow := func(style int, values ...any) {
		rowStr := fmt.Sprintf("%d", row)
		for i, v := range values {
			if i >= len(columns) {
				break
			}
			if s, ok := v.(string); ok {
				v = sanitizeExcelCell(s)
			}
			f.SetCellValue(sheetName, columns[i]+rowStr, v)
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)
		row++
	}

	for _, section := range data.Budget.Sections {
		writeRow(sectionStyle, "", section.Name, "", "", "", "", "", "", FormatPEN(section.Totals.Contractual))
		for _, group := range section.Groups {
			writeRow(groupStyle, group.Code, group.Name, "", "", "", "", "", "", FormatPEN(group.Totals.Contractual))
			for _, item := range group.Items {
				writeRow(itemStyle,
					item.Code,
					item.Description,
					item.Unit,
					item.Metrado,
					item.ExecutedQty,
					item.BalanceQty,
					fmt.Sprintf("%.1f%%", item.Percentage),
					item.Price,
					FormatPEN(item.ContractualCost),
				)
			}
		}
	}

	// Waterfall block.
	row++
	w := data.Waterfall
	lines := []struct {
		label string
		value float64
	}{
		{"Costo Directo:", w.DirectCost},
		{"Gastos Generales (14.46%):", w.Overhead},
		{"Utilidad (10.00%):", w.Profit},
		{"Subtotal:", w.Subtotal},
		{"Gastos de Gestión:", w.Management},
		{"Buena Vecindad:", w.NeighborRelations},
		{"Áreas Auxiliares:", w.AuxiliaryAreas},
		{"Derecho de Cantera:", w.QuarryRights},
		{"Costo Determinado:", w.DeterminedCost},
		{"Tarifa/Fee (9.25%):", w.Fee},
		{"Total sin IGV:", w.TotalBeforeTax},
		{"IGV (18%):", w.Tax},
		{"TOTAL CON IGV:", w.TotalWithTax},
	}
	for _, line := range lines {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "G"+rowStr, line.label)
		f.SetCellStyle(sheetName, "G"+rowStr, "G"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "I"+rowStr, FormatPEN(line.value))
		f.SetCellStyle(sheetName, "I"+rowStr, "I"+rowStr, summaryValueStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
