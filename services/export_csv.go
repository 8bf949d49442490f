package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// GenerateMeasurementCSV renders one dike's measurement sheet as CSV. The
// output starts with a UTF-8 BOM so Excel opens the Spanish headers
// correctly, which is how field engineers consume these files.
func GenerateMeasurementCSV(data *MeasurementSheetData) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(data.Columns))
	for _, col := range data.Columns {
		header = append(header, col.Label)
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range data.Rows {
		record := make([]string, 0, len(data.Columns))
		for _, col := range data.Columns {
			record = append(record, cellString(m, col))
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateMeasurementTSV renders the sheet tab-separated, the shape the
// grid's clipboard paste understands.
func GenerateMeasurementTSV(data *MeasurementSheetData) []byte {
	var buf bytes.Buffer
	for i, col := range data.Columns {
		if i > 0 {
			buf.WriteByte('\t')
		}
		buf.WriteString(col.Label)
	}
	buf.WriteByte('\n')

	for _, m := range data.Rows {
		for i, col := range data.Columns {
			if i > 0 {
				buf.WriteByte('\t')
			}
			buf.WriteString(cellString(m, col))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func cellString(m Measurement, col Column) string {
	switch v := CellValue(m, col).(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
