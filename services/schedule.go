package services

import "strings"

// Linear schedule grid: a dike's chainage span sliced into fixed-width
// intervals, with per-partida coverage derived from progress entries.

// GridColumn is one chainage interval of the schedule grid.
type GridColumn struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// GridColumns slices a dike's river-defense span into resolution-wide
// intervals. The dike end falls back to start plus total_ml when the end
// chainage is not configured, and a reversed start/end is normalized.
func GridColumns(dike Dike, resolution float64) []GridColumn {
	if resolution <= 0 {
		return nil
	}
	start := ParsePK(dike.ProgInicioDique)
	end := start + dike.TotalML
	if dike.ProgFinDique != "" {
		end = ParsePK(dike.ProgFinDique)
	}
	if end < start {
		start, end = end, start
	}

	var cols []GridColumn
	for current := start; current < end; current += resolution {
		colEnd := current + resolution
		if colEnd > end {
			colEnd = end
		}
		cols = append(cols, GridColumn{Start: current, End: colEnd, Label: FormatPK(current)})
	}
	return cols
}

// IntervalCovered reports whether any progress entry for the dike and
// partida overlaps the open interval (startM, endM). The partida match is
// a prefix match so "404.A ENROCADO..." labels hit the "404.A" row.
func IntervalCovered(entries []ProgressEntry, dikeID, partidaCode string, startM, endM float64) bool {
	for _, e := range entries {
		if e.DikeID != dikeID || !strings.HasPrefix(e.Partida, partidaCode) {
			continue
		}
		lo := ParsePK(e.ProgInicio)
		hi := ParsePK(e.ProgFin)
		if hi < lo {
			lo, hi = hi, lo
		}
		if lo < endM && hi > startM {
			return true
		}
	}
	return false
}

// SchedulePartida is one row of the schedule grid.
type SchedulePartida struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	GroupID     string `json:"groupId"`
	GroupName   string `json:"groupName"`
}

// FlattenPartidas lists every budget item as a schedule row, keeping its
// group for filtering.
func FlattenPartidas(budget []BudgetSection) []SchedulePartida {
	var out []SchedulePartida
	for _, section := range budget {
		for _, group := range section.Groups {
			for _, item := range group.Items {
				out = append(out, SchedulePartida{
					Code:        item.Code,
					Description: item.Description,
					Unit:        item.Unit,
					GroupID:     group.ID,
					GroupName:   group.Name,
				})
			}
		}
	}
	return out
}

// ScheduleGrid is the full grid payload for one dike.
type ScheduleGrid struct {
	Dike     Dike              `json:"dike"`
	Columns  []GridColumn      `json:"columns"`
	Partidas []SchedulePartida `json:"partidas"`
	Coverage map[string][]bool `json:"coverage"`
}

// BuildScheduleGrid assembles the grid: columns from the dike span, rows
// from the budget, and a coverage bitmap per partida code.
func BuildScheduleGrid(dike Dike, budget []BudgetSection, entries []ProgressEntry, resolution float64) ScheduleGrid {
	grid := ScheduleGrid{
		Dike:     dike,
		Columns:  GridColumns(dike, resolution),
		Partidas: FlattenPartidas(budget),
		Coverage: map[string][]bool{},
	}
	for _, p := range grid.Partidas {
		if _, ok := grid.Coverage[p.Code]; ok {
			continue
		}
		cells := make([]bool, len(grid.Columns))
		for i, col := range grid.Columns {
			cells[i] = IntervalCovered(entries, dike.ID, p.Code, col.Start, col.End)
		}
		grid.Coverage[p.Code] = cells
	}
	return grid
}
