package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"

	"dikecontrol/services"
)

// MigrateSectorBudgets creates a budget from the contractual template for
// every sector that is missing one. Older backups carried budgets only for
// sectors that had been edited; this fills the gaps so rollups always see a
// full set. Safe to call on every startup -- returns early if nothing to
// migrate.
func MigrateSectorBudgets(app *pocketbase.PocketBase) error {
	sectors, err := services.LoadSectors(app)
	if err != nil {
		return fmt.Errorf("migrate: could not query sectors: %w", err)
	}

	owned, err := services.BudgetOwnerIDs(app, "sector")
	if err != nil {
		return fmt.Errorf("migrate: could not query budget owners: %w", err)
	}
	ownedSet := make(map[string]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}

	missing := 0
	for _, s := range sectors {
		if ownedSet[s.ID] {
			continue
		}
		if err := services.SaveBudget(app, "sector", s.ID, InitialBudget()); err != nil {
			log.Printf("migrate: failed to create budget for sector %s: %v\n", s.ID, err)
			continue
		}
		missing++
	}

	if missing > 0 {
		log.Printf("migrate: created template budgets for %d sector(s)\n", missing)
	}
	return nil
}
