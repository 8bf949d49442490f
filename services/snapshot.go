package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Full-project snapshot, the interchange format shared with the field
// spreadsheets and older exports. The shape is fixed; every key below is
// load-bearing for files already in circulation.

// ProjectBackup is the snapshot document. Timestamp is Unix milliseconds,
// as the original files carry it.
type ProjectBackup struct {
	Sectors         []Sector                   `json:"sectors"`
	Dikes           []Dike                     `json:"dikes"`
	Measurements    []Measurement              `json:"measurements"`
	ProgressEntries []ProgressEntry            `json:"progressEntries"`
	CustomColumns   []string                   `json:"customColumns"`
	BudgetBySector  map[string][]BudgetSection `json:"budgetBySector"`
	BudgetByDike    map[string][]BudgetSection `json:"budgetByDike"`
	StoragePath     string                     `json:"storagePath,omitempty"`
	Timestamp       int64                      `json:"timestamp"`
}

const storagePathKey = "storagePath"

// BuildBackup assembles a snapshot of the whole project state.
func BuildBackup(app *pocketbase.PocketBase) (*ProjectBackup, error) {
	sectors, err := LoadSectors(app)
	if err != nil {
		return nil, err
	}
	dikes, err := LoadDikes(app)
	if err != nil {
		return nil, err
	}
	measurements, err := LoadMeasurements(app)
	if err != nil {
		return nil, err
	}
	entries, err := LoadProgressEntries(app)
	if err != nil {
		return nil, err
	}
	columns, err := LoadCustomColumns(app)
	if err != nil {
		return nil, err
	}
	budgetBySector, err := LoadBudgetsByOwnerType(app, "sector")
	if err != nil {
		return nil, err
	}
	budgetByDike, err := LoadBudgetsByOwnerType(app, "dike")
	if err != nil {
		return nil, err
	}

	return &ProjectBackup{
		Sectors:         sectors,
		Dikes:           dikes,
		Measurements:    measurements,
		ProgressEntries: entries,
		CustomColumns:   columns,
		BudgetBySector:  budgetBySector,
		BudgetByDike:    budgetByDike,
		StoragePath:     GetSetting(app, storagePathKey),
		Timestamp:       time.Now().UnixMilli(),
	}, nil
}

// ParseBackup decodes a snapshot document.
func ParseBackup(data []byte) (*ProjectBackup, error) {
	var backup ProjectBackup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if backup.Dikes == nil && backup.Measurements == nil {
		return nil, fmt.Errorf("parse backup: no dikes or measurements present")
	}
	return &backup, nil
}

// RestoreBackup replaces the whole project state with the snapshot's,
// last writer wins. Record ids are restored verbatim so cross references
// and later snapshots stay stable.
func RestoreBackup(app *pocketbase.PocketBase, backup *ProjectBackup) error {
	for _, name := range []string{"progress_entries", "measurements", "dikes", "sectors", "custom_columns"} {
		if err := clearCollection(app, name); err != nil {
			return err
		}
	}
	for _, ownerType := range []string{"sector", "dike"} {
		owners, err := BudgetOwnerIDs(app, ownerType)
		if err != nil {
			return err
		}
		for _, id := range owners {
			if err := DeleteBudget(app, ownerType, id); err != nil {
				return err
			}
		}
	}

	sectorsCol, err := app.FindCollectionByNameOrId("sectors")
	if err != nil {
		return fmt.Errorf("find sectors: %w", err)
	}
	for i, s := range backup.Sectors {
		rec := core.NewRecord(sectorsCol)
		rec.Set("id", s.ID)
		rec.Set("name", s.Name)
		rec.Set("sort_order", i)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("restore sector %s: %w", s.ID, err)
		}
	}

	dikesCol, err := app.FindCollectionByNameOrId("dikes")
	if err != nil {
		return fmt.Errorf("find dikes: %w", err)
	}
	for i, d := range backup.Dikes {
		rec := core.NewRecord(dikesCol)
		rec.Set("id", d.ID)
		ApplyDikeToRecord(rec, d)
		rec.Set("sort_order", i)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("restore dike %s: %w", d.ID, err)
		}
	}

	measurementsCol, err := app.FindCollectionByNameOrId("measurements")
	if err != nil {
		return fmt.Errorf("find measurements: %w", err)
	}
	for i, m := range backup.Measurements {
		rec := core.NewRecord(measurementsCol)
		rec.Set("id", m.ID)
		if err := ApplyMeasurementToRecord(rec, m); err != nil {
			return err
		}
		rec.Set("sort_order", i)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("restore measurement %s: %w", m.ID, err)
		}
	}

	entriesCol, err := app.FindCollectionByNameOrId("progress_entries")
	if err != nil {
		return fmt.Errorf("find progress_entries: %w", err)
	}
	for _, e := range backup.ProgressEntries {
		rec := core.NewRecord(entriesCol)
		rec.Set("id", e.ID)
		ApplyProgressEntryToRecord(rec, e)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("restore progress entry %s: %w", e.ID, err)
		}
	}

	columnsCol, err := app.FindCollectionByNameOrId("custom_columns")
	if err != nil {
		return fmt.Errorf("find custom_columns: %w", err)
	}
	for i, name := range backup.CustomColumns {
		rec := core.NewRecord(columnsCol)
		rec.Set("name", name)
		rec.Set("sort_order", i)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("restore custom column %s: %w", name, err)
		}
	}

	for id, budget := range backup.BudgetBySector {
		if err := SaveBudget(app, "sector", id, budget); err != nil {
			return err
		}
	}
	for id, budget := range backup.BudgetByDike {
		if err := SaveBudget(app, "dike", id, budget); err != nil {
			return err
		}
	}

	if backup.StoragePath != "" {
		if err := SetSetting(app, storagePathKey, backup.StoragePath); err != nil {
			return err
		}
	}
	return nil
}

func clearCollection(app *pocketbase.PocketBase, name string) error {
	records, err := app.FindRecordsByFilter(name, allRecords, "", 0, 0)
	if err != nil {
		return fmt.Errorf("list %s: %w", name, err)
	}
	for _, r := range records {
		if err := app.Delete(r); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}
