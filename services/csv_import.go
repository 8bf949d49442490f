package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// Measurement sheet import: field engineers upload the same CSV/TSV/Excel
// sheets the exports produce (or hand-built ones with matching headers).
// The flow is validate first, commit second: a validation call parses and
// reports problems without touching storage, then an explicit commit call
// replaces the dike's rows.

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is returned after parsing and validating an uploaded file.
type ValidationResult struct {
	TotalRows  int               `json:"total_rows"`
	ValidRows  int               `json:"valid_rows"`
	ErrorRows  int               `json:"error_rows"`
	Errors     []ValidationError `json:"errors"`
	ParsedRows []Measurement     `json:"-"`
	FileName   string            `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows. A leading
// UTF-8 BOM (our own CSV exports carry one) is stripped.
func parseCSV(file io.Reader, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse file: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	headers := allRows[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}
	return headers, allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file multipart.File) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	// Excel exports carry a 3-row title block before the header; skip any
	// leading rows until one matches a known column.
	known := headerLookup(SheetColumns(nil))
	for i, row := range rows {
		for _, cell := range row {
			if _, ok := known[normalizeHeader(cell)]; ok {
				if len(rows) <= i+1 {
					return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
				}
				return row, rows[i+1:], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("no recognizable header row found")
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// headerLookup maps normalized ids and labels to columns. Ids win over
// labels; several labels repeat across groups ("CONT.", "T1"), so
// label-based matches only bind their first column, same as the grid's
// paste handling.
func headerLookup(cols []Column) map[string]Column {
	lookup := make(map[string]Column, len(cols)*2)
	for _, c := range cols {
		key := normalizeHeader(c.Label)
		if _, exists := lookup[key]; !exists {
			lookup[key] = c
		}
	}
	for _, c := range cols {
		lookup[normalizeHeader(c.ID)] = c
	}
	return lookup
}

// ValidateMeasurementFile parses and validates an uploaded measurement
// sheet for one dike. Nothing is persisted.
func ValidateMeasurementFile(
	app *pocketbase.PocketBase,
	file multipart.File,
	fileName string,
	dikeID string,
) (*ValidationResult, error) {
	if _, err := app.FindRecordById("dikes", dikeID); err != nil {
		return nil, fmt.Errorf("find dike %s: %w", dikeID, err)
	}

	custom, err := LoadCustomColumns(app)
	if err != nil {
		return nil, err
	}
	columns := SheetColumns(custom)

	var headers []string
	var dataRows [][]string

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file, ',')
	case strings.HasSuffix(lowerName, ".tsv") || strings.HasSuffix(lowerName, ".txt"):
		headers, dataRows, err = parseCSV(file, '\t')
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv, .tsv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	lookup := headerLookup(columns)
	mapped := make([]*Column, len(headers))
	for i, h := range headers {
		if col, ok := lookup[normalizeHeader(h)]; ok {
			c := col
			mapped[i] = &c
		}
	}

	result := &ValidationResult{
		TotalRows:  len(dataRows),
		FileName:   fileName,
		ParsedRows: make([]Measurement, 0, len(dataRows)),
	}

	var prevPK string
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		var rowErrors []ValidationError

		m := Measurement{
			ID:     uuid.NewString(),
			DikeID: dikeID,
			// Imported rows count as executed unless the sheet says
			// otherwise, matching the grid's bulk-load behavior.
			Carguio: 1,
		}
		sawDistancia := false

		for colIdx, col := range mapped {
			if col == nil || colIdx >= len(row) {
				continue
			}
			raw := strings.TrimSpace(row[colIdx])
			if raw == "" {
				continue
			}
			switch col.ID {
			case "pk":
				m.PK = raw
				if !IsValidPK(raw) {
					rowErrors = append(rowErrors, ValidationError{
						Row:     rowNum,
						Field:   "PK",
						Message: fmt.Sprintf("%q is not a valid chainage (expected km+meters or plain meters)", raw),
					})
				}
			case "tipoTerreno":
				value := strings.ToUpper(raw)
				if value != "B1" && value != "B2" && value != "NORMAL" {
					rowErrors = append(rowErrors, ValidationError{
						Row:     rowNum,
						Field:   "TIPO",
						Message: fmt.Sprintf("%q is not a known terrain type (B1, B2, NORMAL)", raw),
					})
				} else {
					m.TipoTerreno = value
				}
			case "tipoEnrocado":
				m.TipoEnrocado = raw
			case "intervencion":
				m.Intervencion = raw
			case "distancia":
				m.Distancia = cast.ToFloat64(normalizeNumber(raw))
				sawDistancia = true
			default:
				SetCellValue(&m, *col, cast.ToFloat64(normalizeNumber(raw)))
			}
		}

		if !sawDistancia && m.PK != "" && prevPK != "" {
			m.Distancia = PKDelta(prevPK, m.PK)
		}
		if m.PK != "" {
			prevPK = m.PK
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
		}
		result.ParsedRows = append(result.ParsedRows, m)
	}

	errorRowSet := make(map[int]bool)
	for _, e := range result.Errors {
		errorRowSet[e.Row] = true
	}
	result.ErrorRows = len(errorRowSet)
	result.ValidRows = result.TotalRows - result.ErrorRows

	return result, nil
}

// normalizeNumber strips thousands separators so "1,234.50" coerces
// cleanly.
func normalizeNumber(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// CommitMeasurementImport replaces one dike's measurement rows with the
// parsed import rows.
func CommitMeasurementImport(app *pocketbase.PocketBase, dikeID string, rows []Measurement) (int, error) {
	existing, err := app.FindRecordsByFilter(
		"measurements",
		"dike_id = {:dikeId}",
		"", 0, 0,
		map[string]any{"dikeId": dikeID},
	)
	if err != nil {
		return 0, fmt.Errorf("find measurements for dike %s: %w", dikeID, err)
	}
	for _, r := range existing {
		if err := app.Delete(r); err != nil {
			return 0, fmt.Errorf("delete measurement %s: %w", r.Id, err)
		}
	}

	col, err := app.FindCollectionByNameOrId("measurements")
	if err != nil {
		return 0, fmt.Errorf("find measurements: %w", err)
	}
	for i, m := range rows {
		m.DikeID = dikeID
		rec := core.NewRecord(col)
		rec.Set("id", m.ID)
		if err := ApplyMeasurementToRecord(rec, m); err != nil {
			return i, err
		}
		rec.Set("sort_order", i)
		if err := app.Save(rec); err != nil {
			return i, fmt.Errorf("save imported measurement row %d: %w", i+1, err)
		}
	}
	return len(rows), nil
}
