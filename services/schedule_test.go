package services

import "testing"

func TestGridColumns(t *testing.T) {
	dike := Dike{ProgInicioDique: "0+000", ProgFinDique: "0+250", TotalML: 250}

	cols := GridColumns(dike, 100)
	if len(cols) != 3 {
		t.Fatalf("len(cols) = %d, want 3", len(cols))
	}
	if cols[0].Start != 0 || cols[0].End != 100 {
		t.Errorf("cols[0] = %+v", cols[0])
	}
	if cols[2].Start != 200 || cols[2].End != 250 {
		t.Errorf("last column not clamped: %+v", cols[2])
	}
	if cols[1].Label != FormatPK(100) {
		t.Errorf("cols[1].Label = %q", cols[1].Label)
	}
}

func TestGridColumns_FallbackToTotalML(t *testing.T) {
	dike := Dike{ProgInicioDique: "1+000", TotalML: 150}
	cols := GridColumns(dike, 100)
	if len(cols) != 2 {
		t.Fatalf("len(cols) = %d, want 2", len(cols))
	}
	if cols[1].End != 1150 {
		t.Errorf("cols[1].End = %v, want 1150", cols[1].End)
	}
}

func TestGridColumns_ReversedSpan(t *testing.T) {
	dike := Dike{ProgInicioDique: "0+200", ProgFinDique: "0+000"}
	cols := GridColumns(dike, 100)
	if len(cols) != 2 || cols[0].Start != 0 {
		t.Errorf("reversed span not normalized: %+v", cols)
	}
}

func TestGridColumns_BadResolution(t *testing.T) {
	dike := Dike{ProgInicioDique: "0+000", ProgFinDique: "0+100"}
	if cols := GridColumns(dike, 0); cols != nil {
		t.Errorf("resolution 0 should yield nil, got %v", cols)
	}
}

func TestIntervalCovered(t *testing.T) {
	entries := []ProgressEntry{
		{DikeID: "D1", Partida: "404.A ENROCADO Y ACOMODO", ProgInicio: "0+050", ProgFin: "0+150"},
		{DikeID: "D2", Partida: "404.A ENROCADO Y ACOMODO", ProgInicio: "0+300", ProgFin: "0+400"},
	}

	tests := []struct {
		name    string
		dikeID  string
		code    string
		lo, hi  float64
		covered bool
	}{
		{"overlap left edge", "D1", "404.A", 0, 100, true},
		{"inside entry", "D1", "404.A", 60, 140, true},
		{"before entry", "D1", "404.A", 0, 50, false},
		{"after entry", "D1", "404.A", 150, 200, false},
		{"other dike ignored", "D1", "404.A", 300, 400, false},
		{"wrong partida", "D1", "403.A", 60, 140, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntervalCovered(entries, tt.dikeID, tt.code, tt.lo, tt.hi)
			if got != tt.covered {
				t.Errorf("IntervalCovered = %v, want %v", got, tt.covered)
			}
		})
	}
}

func TestIntervalCovered_ReversedEntry(t *testing.T) {
	entries := []ProgressEntry{
		{DikeID: "D1", Partida: "404.A", ProgInicio: "0+150", ProgFin: "0+050"},
	}
	if !IntervalCovered(entries, "D1", "404.A", 60, 140) {
		t.Error("reversed entry chainages should still cover")
	}
}

func TestFlattenPartidas(t *testing.T) {
	budget := []BudgetSection{{
		ID: "B",
		Groups: []BudgetGroup{
			{ID: "B1", Name: "OBRAS PROVISIONALES", Items: []BudgetItem{
				{ID: "i1", Code: "403.A", Description: "MATERIAL PARA RELLENO", Unit: "m3"},
				{ID: "i2", Code: "404.A", Description: "ENROCADO", Unit: "m3"},
			}},
			{ID: "B2", Name: "REPOSICION", Items: []BudgetItem{
				{ID: "i3", Code: "404.A_R", Description: "ENROCADO REP", Unit: "m3"},
			}},
		},
	}}

	rows := FlattenPartidas(budget)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0].Code != "403.A" || rows[0].GroupID != "B1" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[2].GroupName != "REPOSICION" {
		t.Errorf("rows[2].GroupName = %q", rows[2].GroupName)
	}
}

func TestBuildScheduleGrid(t *testing.T) {
	dike := Dike{ID: "D1", ProgInicioDique: "0+000", ProgFinDique: "0+200", TotalML: 200}
	budget := []BudgetSection{{
		ID: "B",
		Groups: []BudgetGroup{{ID: "B1", Items: []BudgetItem{
			{ID: "i1", Code: "404.A", Unit: "m3"},
		}}},
	}}
	entries := []ProgressEntry{
		{DikeID: "D1", Partida: "404.A ENROCADO", ProgInicio: "0+000", ProgFin: "0+100"},
	}

	grid := BuildScheduleGrid(dike, budget, entries, 100)
	if len(grid.Columns) != 2 {
		t.Fatalf("len(Columns) = %d, want 2", len(grid.Columns))
	}
	cells, ok := grid.Coverage["404.A"]
	if !ok {
		t.Fatal("coverage row for 404.A missing")
	}
	if !cells[0] || cells[1] {
		t.Errorf("coverage = %v, want [true false]", cells)
	}
}
