package services

import (
	"reflect"
	"testing"
)

func sectorBudget(metrado float64) []BudgetSection {
	return []BudgetSection{
		{
			ID:   "B",
			Name: "B - CONSTRUCCIÓN",
			Groups: []BudgetGroup{
				{
					ID: "B1", Code: "B1", Name: "DIQUE NUEVO",
					Items: []BudgetItem{
						{ID: "403.A", Code: "403.A", Description: "CONFORMACIÓN", Unit: "m3", Metrado: metrado, Price: 14.26},
					},
				},
			},
		},
	}
}

func TestConsolidateBudgets(t *testing.T) {
	bySector := map[string][]BudgetSection{
		"CASMA":  sectorBudget(100),
		"SECHIN": sectorBudget(250),
	}
	order := []string{"CASMA", "SECHIN"}

	merged := ConsolidateBudgets(order, bySector)
	if len(merged) != 1 {
		t.Fatalf("expected 1 section, got %d", len(merged))
	}
	item := merged[0].Groups[0].Items[0]
	if item.Metrado != 350 {
		t.Errorf("Metrado = %v, want 350", item.Metrado)
	}
	// Prices and descriptions come from the template sector.
	if item.Price != 14.26 || item.Description != "CONFORMACIÓN" {
		t.Errorf("template fields lost: %+v", item)
	}
}

func TestConsolidateBudgets_Deterministic(t *testing.T) {
	bySector := map[string][]BudgetSection{
		"A": sectorBudget(1),
		"B": sectorBudget(2),
		"C": sectorBudget(4),
	}
	order := []string{"A", "B", "C"}

	first := ConsolidateBudgets(order, bySector)
	for i := 0; i < 10; i++ {
		if got := ConsolidateBudgets(order, bySector); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestConsolidateBudgets_SkipsEmptyTemplate(t *testing.T) {
	bySector := map[string][]BudgetSection{
		"EMPTY": {},
		"FULL":  sectorBudget(42),
	}
	merged := ConsolidateBudgets([]string{"EMPTY", "FULL"}, bySector)
	if len(merged) != 1 {
		t.Fatalf("expected the first non-empty budget to provide the template")
	}
	if got := merged[0].Groups[0].Items[0].Metrado; got != 42 {
		t.Errorf("Metrado = %v, want 42", got)
	}
}

func TestConsolidateBudgets_NoBudgets(t *testing.T) {
	if got := ConsolidateBudgets([]string{"A"}, map[string][]BudgetSection{}); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestConsolidateBudgets_DoesNotMutateInput(t *testing.T) {
	bySector := map[string][]BudgetSection{
		"CASMA":  sectorBudget(100),
		"SECHIN": sectorBudget(250),
	}
	ConsolidateBudgets([]string{"CASMA", "SECHIN"}, bySector)
	if got := bySector["CASMA"][0].Groups[0].Items[0].Metrado; got != 100 {
		t.Errorf("input budget mutated: Metrado = %v, want 100", got)
	}
}
