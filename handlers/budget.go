package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

func validOwnerType(t string) bool {
	return t == "sector" || t == "dike"
}

// effectiveBudget resolves the budget that applies to an owner. A dike
// without a budget of its own falls back to its sector's; the returned
// source says which one won.
func effectiveBudget(app *pocketbase.PocketBase, ownerType, ownerID string) ([]services.BudgetSection, string, error) {
	budget, err := services.LoadBudget(app, ownerType, ownerID)
	if err != nil {
		return nil, "", err
	}
	if len(budget) > 0 || ownerType != "dike" {
		return budget, ownerType, nil
	}

	dike, err := app.FindRecordById("dikes", ownerID)
	if err != nil {
		return nil, "", err
	}
	budget, err = services.LoadBudget(app, "sector", dike.GetString("sector"))
	if err != nil {
		return nil, "", err
	}
	return budget, "sector", nil
}

// rowsForOwner gathers the measurement rows that feed an owner's rollup:
// the dike's own rows, or every row of the sector's dikes.
func rowsForOwner(app *pocketbase.PocketBase, ownerType, ownerID string) ([]services.Measurement, error) {
	if ownerType == "dike" {
		return services.MeasurementsForDike(app, ownerID)
	}

	dikes, err := services.LoadDikes(app)
	if err != nil {
		return nil, err
	}
	member := make(map[string]bool)
	for _, d := range dikes {
		if d.SectorID == ownerID {
			member[d.ID] = true
		}
	}

	all, err := services.LoadMeasurements(app)
	if err != nil {
		return nil, err
	}
	rows := make([]services.Measurement, 0, len(all))
	for _, m := range all {
		if member[m.DikeID] {
			rows = append(rows, m)
		}
	}
	return rows, nil
}

// HandleBudgetGet returns the raw budget tree for an owner. Dike requests
// are override-aware: with no dike budget stored, the sector's is returned
// and flagged as such.
func HandleBudgetGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ownerType := e.Request.PathValue("ownerType")
		ownerID := e.Request.PathValue("ownerId")
		if !validOwnerType(ownerType) || ownerID == "" {
			return e.String(http.StatusBadRequest, "Invalid budget owner")
		}

		budget, source, err := effectiveBudget(app, ownerType, ownerID)
		if err != nil {
			log.Printf("budget_get: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load budget")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"budget": budget,
			"source": source,
		})
	}
}

// HandleBudgetSave replaces an owner's budget tree wholesale. Saving under
// a dike creates that dike's override.
func HandleBudgetSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ownerType := e.Request.PathValue("ownerType")
		ownerID := e.Request.PathValue("ownerId")
		if !validOwnerType(ownerType) || ownerID == "" {
			return e.String(http.StatusBadRequest, "Invalid budget owner")
		}

		var budget []services.BudgetSection
		if err := e.BindBody(&budget); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}

		if err := services.SaveBudget(app, ownerType, ownerID, budget); err != nil {
			log.Printf("budget_save: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to save budget")
		}

		return e.JSON(http.StatusOK, map[string]any{"saved": ownerID})
	}
}

// HandleBudgetDelete removes an owner's stored budget. For a dike this
// drops the override so the sector budget applies again.
func HandleBudgetDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ownerType := e.Request.PathValue("ownerType")
		ownerID := e.Request.PathValue("ownerId")
		if !validOwnerType(ownerType) || ownerID == "" {
			return e.String(http.StatusBadRequest, "Invalid budget owner")
		}

		if err := services.DeleteBudget(app, ownerType, ownerID); err != nil {
			log.Printf("budget_delete: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to delete budget")
		}

		return e.JSON(http.StatusOK, map[string]any{"deleted": ownerID})
	}
}

// HandleBudgetAnnotated returns an owner's budget with executed quantities,
// balances, and cost rollups folded in from the measurement rows.
func HandleBudgetAnnotated(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ownerType := e.Request.PathValue("ownerType")
		ownerID := e.Request.PathValue("ownerId")
		if !validOwnerType(ownerType) || ownerID == "" {
			return e.String(http.StatusBadRequest, "Invalid budget owner")
		}

		budget, source, err := effectiveBudget(app, ownerType, ownerID)
		if err != nil {
			log.Printf("budget_annotated: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load budget")
		}
		rows, err := rowsForOwner(app, ownerType, ownerID)
		if err != nil {
			log.Printf("budget_annotated: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load measurements")
		}

		annotated := services.AnnotateBudget(budget, rows)
		return e.JSON(http.StatusOK, map[string]any{
			"budget":    annotated,
			"source":    source,
			"waterfall": services.ApplyWaterfall(annotated.Totals.Contractual, services.DefaultWaterfallConfig()),
		})
	}
}

// HandleBudgetConsolidated merges every sector budget into one tree,
// summing metrados over the shared item structure. With ?annotated=1 the
// merged tree is rolled up against all measurement rows.
func HandleBudgetConsolidated(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectors, err := services.LoadSectors(app)
		if err != nil {
			log.Printf("budget_consolidated: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load sectors")
		}
		bySector, err := services.LoadBudgetsByOwnerType(app, "sector")
		if err != nil {
			log.Printf("budget_consolidated: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load budgets")
		}

		order := make([]string, 0, len(sectors))
		for _, s := range sectors {
			order = append(order, s.ID)
		}
		merged := services.ConsolidateBudgets(order, bySector)

		if e.Request.URL.Query().Get("annotated") != "1" {
			return e.JSON(http.StatusOK, map[string]any{"budget": merged})
		}

		rows, err := services.LoadMeasurements(app)
		if err != nil {
			log.Printf("budget_consolidated: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load measurements")
		}
		annotated := services.AnnotateBudget(merged, rows)
		return e.JSON(http.StatusOK, map[string]any{
			"budget":    annotated,
			"waterfall": services.ApplyWaterfall(annotated.Totals.Contractual, services.DefaultWaterfallConfig()),
		})
	}
}

// HandleBudgetItemPatch edits one item's fields. Patching through a dike
// that has no override clones the effective budget into one first, so the
// sector template stays untouched.
func HandleBudgetItemPatch(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ownerType := e.Request.PathValue("ownerType")
		ownerID := e.Request.PathValue("ownerId")
		itemID := e.Request.PathValue("itemId")
		if !validOwnerType(ownerType) || ownerID == "" || itemID == "" {
			return e.String(http.StatusBadRequest, "Invalid budget item reference")
		}

		var req struct {
			Description *string  `json:"description"`
			Unit        *string  `json:"unit"`
			Metrado     *float64 `json:"metrado"`
			Price       *float64 `json:"price"`
			Selected    *bool    `json:"selected"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}

		budget, _, err := effectiveBudget(app, ownerType, ownerID)
		if err != nil {
			log.Printf("budget_item_patch: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load budget")
		}

		var patched *services.BudgetItem
		for si := range budget {
			for gi := range budget[si].Groups {
				for ii := range budget[si].Groups[gi].Items {
					item := &budget[si].Groups[gi].Items[ii]
					if item.ID != itemID {
						continue
					}
					if req.Description != nil {
						item.Description = *req.Description
					}
					if req.Unit != nil {
						item.Unit = *req.Unit
					}
					if req.Metrado != nil {
						item.Metrado = *req.Metrado
					}
					if req.Price != nil {
						item.Price = *req.Price
					}
					if req.Selected != nil {
						item.Selected = req.Selected
					}
					patched = item
				}
			}
		}
		if patched == nil {
			return e.String(http.StatusNotFound, "Budget item not found")
		}

		if err := services.SaveBudget(app, ownerType, ownerID, budget); err != nil {
			log.Printf("budget_item_patch: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to save budget")
		}

		return e.JSON(http.StatusOK, *patched)
	}
}

// HandleBudgetItemToggle flips an item's selected flag in and out of the
// cost rollups.
func HandleBudgetItemToggle(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ownerType := e.Request.PathValue("ownerType")
		ownerID := e.Request.PathValue("ownerId")
		itemID := e.Request.PathValue("itemId")
		if !validOwnerType(ownerType) || ownerID == "" || itemID == "" {
			return e.String(http.StatusBadRequest, "Invalid budget item reference")
		}

		budget, _, err := effectiveBudget(app, ownerType, ownerID)
		if err != nil {
			log.Printf("budget_item_toggle: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load budget")
		}

		var toggled *services.BudgetItem
		for si := range budget {
			for gi := range budget[si].Groups {
				for ii := range budget[si].Groups[gi].Items {
					item := &budget[si].Groups[gi].Items[ii]
					if item.ID != itemID {
						continue
					}
					next := !item.IsSelected()
					item.Selected = &next
					toggled = item
				}
			}
		}
		if toggled == nil {
			return e.String(http.StatusNotFound, "Budget item not found")
		}

		if err := services.SaveBudget(app, ownerType, ownerID, budget); err != nil {
			log.Printf("budget_item_toggle: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to save budget")
		}

		return e.JSON(http.StatusOK, *toggled)
	}
}

// HandleWaterfall returns the indirect-cost waterfall over an owner's
// contractual direct cost.
func HandleWaterfall(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ownerType := e.Request.PathValue("ownerType")
		ownerID := e.Request.PathValue("ownerId")
		if !validOwnerType(ownerType) || ownerID == "" {
			return e.String(http.StatusBadRequest, "Invalid budget owner")
		}

		budget, _, err := effectiveBudget(app, ownerType, ownerID)
		if err != nil {
			log.Printf("waterfall: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load budget")
		}

		direct := services.DirectCost(budget)
		return e.JSON(http.StatusOK, services.ApplyWaterfall(direct, services.DefaultWaterfallConfig()))
	}
}
