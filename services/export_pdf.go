package services

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateValuationPDF creates the valuation report PDF using maroto/v2:
// per-sector financials with dike progress, the monthly valuation
// estimates and the cost waterfall. Returns the raw PDF bytes.
func GenerateValuationPDF(data *ValuationReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addValuationHeader(m, data)
	addSectorFinancialsTable(m, data.Reports)

	for _, report := range data.Reports {
		addDikeProgressTable(m, report)
	}

	addMonthlyValuationTable(m, data)
	addWaterfallSummary(m, data.Waterfall)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addValuationHeader(m core.Maroto, data *ValuationReportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("INFORME DE VALORIZACIÓN Y AVANCE DE OBRA", props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Generado: %s", data.GeneratedAt), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)
	m.AddRows(row.New(4))
}

func tableHeaderText() props.Text {
	return props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
}

func tableHeaderCell() *props.Cell {
	return &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
}

func addSectorFinancialsTable(m core.Maroto, reports []SectorReport) {
	headerText := tableHeaderText()
	headerCell := tableHeaderCell()

	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(text.New("Sector", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Contractual", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Ejecutado", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Saldo", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Avance", headerText)).WithStyle(headerCell),
		),
	)

	baseText := props.Text{Size: 8, Align: align.Left}
	rightText := props.Text{Size: 8, Align: align.Right}

	for _, report := range reports {
		fin := report.Financials
		m.AddRows(
			row.New(7).Add(
				col.New(4).Add(text.New(report.Sector.Name, baseText)),
				col.New(2).Add(text.New(FormatPEN(fin.Contractual), rightText)),
				col.New(2).Add(text.New(FormatPEN(fin.Executed), rightText)),
				col.New(2).Add(text.New(FormatPEN(fin.Balance), rightText)),
				col.New(2).Add(text.New(fmt.Sprintf("%.2f%%", fin.Progress), rightText)),
			),
		)
	}
	m.AddRows(row.New(6))
}

func addDikeProgressTable(m core.Maroto, report SectorReport) {
	m.AddRows(
		row.New(9).Add(
			col.New(12).Add(
				text.New(report.Sector.Name, props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)

	headerText := tableHeaderText()
	headerCell := tableHeaderCell()

	m.AddRows(
		row.New(7).Add(
			col.New(3).Add(text.New("Dique", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Total ML", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Ejecutado ML", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Avance", headerText)).WithStyle(headerCell),
			col.New(3).Add(text.New("Periodo", headerText)).WithStyle(headerCell),
		),
	)

	baseText := props.Text{Size: 7, Align: align.Left}
	rightText := props.Text{Size: 7, Align: align.Right}

	for _, d := range report.DikeDetails {
		period := "-"
		if d.StartDate != "" {
			period = d.StartDate + " a " + d.EndDate
		}
		m.AddRows(
			row.New(6).Add(
				col.New(3).Add(text.New(d.Dike.Name, baseText)),
				col.New(2).Add(text.New(formatLength(d.Dike.TotalML), rightText)),
				col.New(2).Add(text.New(formatLength(d.ExecutedLength), rightText)),
				col.New(2).Add(text.New(fmt.Sprintf("%.2f%%", d.ProgressPct), rightText)),
				col.New(3).Add(text.New(period, baseText)),
			),
		)
	}
	m.AddRows(row.New(4))
}

func addMonthlyValuationTable(m core.Maroto, data *ValuationReportData) {
	if len(data.Monthly.Months) == 0 {
		return
	}

	m.AddRows(
		row.New(9).Add(
			col.New(12).Add(
				text.New("Valorización Mensual Estimada", props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)

	headerText := tableHeaderText()
	headerCell := tableHeaderCell()
	rightText := props.Text{Size: 8, Align: align.Right}
	baseText := props.Text{Size: 8, Align: align.Left}

	m.AddRows(
		row.New(7).Add(
			col.New(4).Add(text.New("Mes", headerText)).WithStyle(headerCell),
			col.New(8).Add(text.New("Total Estimado", headerText)).WithStyle(headerCell),
		),
	)

	for _, month := range data.Monthly.Months {
		var total float64
		for _, v := range data.Monthly.Data[month] {
			total += v
		}
		m.AddRows(
			row.New(6).Add(
				col.New(4).Add(text.New(month, baseText)),
				col.New(8).Add(text.New(FormatPEN(total), rightText)),
			),
		)
	}
	m.AddRows(row.New(4))
}

func addWaterfallSummary(m core.Maroto, w Waterfall) {
	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	labelStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	valueStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct {
		label string
		value float64
	}{
		{"Costo Directo", w.DirectCost},
		{"Gastos Generales (14.46%)", w.Overhead},
		{"Utilidad (10.00%)", w.Profit},
		{"Costo Determinado", w.DeterminedCost},
		{"Tarifa/Fee (9.25%)", w.Fee},
		{"IGV (18%)", w.Tax},
		{"TOTAL CON IGV", w.TotalWithTax},
	}

	m.AddRows(row.New(6))
	for _, line := range lines {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(line.label, labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(FormatPEN(line.value), valueStyle)).WithStyle(summaryCell),
			),
		)
	}
}

// formatLength renders linear meters: whole numbers without decimals,
// fractional values with 2 decimal places.
func formatLength(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
