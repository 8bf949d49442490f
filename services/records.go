package services

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Conversion between PocketBase records and the plain domain structs the
// calculation services run on. All loaders return storage order
// (sort_order ascending), which is what consolidation and reports key on.

const allRecords = "id != ''"

// SectorFromRecord maps a sectors record.
func SectorFromRecord(r *core.Record) Sector {
	return Sector{ID: r.Id, Name: r.GetString("name")}
}

// LoadSectors returns every sector in storage order.
func LoadSectors(app *pocketbase.PocketBase) ([]Sector, error) {
	records, err := app.FindRecordsByFilter("sectors", allRecords, "+sort_order", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load sectors: %w", err)
	}
	out := make([]Sector, 0, len(records))
	for _, r := range records {
		out = append(out, SectorFromRecord(r))
	}
	return out, nil
}

// DikeFromRecord maps a dikes record.
func DikeFromRecord(r *core.Record) Dike {
	return Dike{
		ID:              r.Id,
		SectorID:        r.GetString("sector"),
		Name:            r.GetString("name"),
		ProgInicioRio:   r.GetString("prog_inicio_rio"),
		ProgFinRio:      r.GetString("prog_fin_rio"),
		ProgInicioDique: r.GetString("prog_inicio_dique"),
		ProgFinDique:    r.GetString("prog_fin_dique"),
		TotalML:         r.GetFloat("total_ml"),
		Notes:           r.GetString("notes"),
	}
}

// ApplyDikeToRecord writes a dike's fields back onto a record. The id is
// left alone; PocketBase fills it on create.
func ApplyDikeToRecord(rec *core.Record, d Dike) {
	rec.Set("sector", d.SectorID)
	rec.Set("name", d.Name)
	rec.Set("prog_inicio_rio", d.ProgInicioRio)
	rec.Set("prog_fin_rio", d.ProgFinRio)
	rec.Set("prog_inicio_dique", d.ProgInicioDique)
	rec.Set("prog_fin_dique", d.ProgFinDique)
	rec.Set("total_ml", d.TotalML)
	rec.Set("notes", d.Notes)
}

// LoadDikes returns every dike in storage order.
func LoadDikes(app *pocketbase.PocketBase) ([]Dike, error) {
	records, err := app.FindRecordsByFilter("dikes", allRecords, "+sort_order", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load dikes: %w", err)
	}
	out := make([]Dike, 0, len(records))
	for _, r := range records {
		out = append(out, DikeFromRecord(r))
	}
	return out, nil
}

// measurementColumnKeys are the flat JSON keys that live in dedicated
// record columns rather than in the values blob.
var measurementColumnKeys = []string{
	"id", "dikeId", "pk", "distancia",
	"tipoTerreno", "tipoEnrocado", "intervencion", "item501A_Carguio",
}

// MeasurementFromRecord rebuilds a Measurement from a record: the values
// JSON blob carries every numeric cell, the dedicated columns override it.
func MeasurementFromRecord(r *core.Record) Measurement {
	flat := map[string]any{}
	if raw := r.GetString("values"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &flat); err != nil {
			flat = map[string]any{}
		}
	}
	flat["id"] = r.Id
	flat["dikeId"] = r.GetString("dike_id")
	flat["pk"] = r.GetString("pk")
	flat["distancia"] = r.GetFloat("distancia")
	flat["tipoTerreno"] = r.GetString("tipo_terreno")
	flat["tipoEnrocado"] = r.GetString("tipo_enrocado")
	flat["intervencion"] = r.GetString("intervencion")
	flat["item501A_Carguio"] = r.GetFloat("carguio")

	var m Measurement
	data, err := json.Marshal(flat)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(data, &m)
	return m
}

// ApplyMeasurementToRecord writes a Measurement onto a record, splitting
// the dedicated columns out of the flat JSON shape.
func ApplyMeasurementToRecord(rec *core.Record, m Measurement) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode measurement: %w", err)
	}
	flat := map[string]any{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode measurement: %w", err)
	}
	for _, key := range measurementColumnKeys {
		delete(flat, key)
	}
	values, err := json.Marshal(flat)
	if err != nil {
		return fmt.Errorf("encode measurement values: %w", err)
	}

	rec.Set("dike_id", m.DikeID)
	rec.Set("pk", m.PK)
	rec.Set("distancia", m.Distancia)
	rec.Set("tipo_terreno", m.TipoTerreno)
	rec.Set("tipo_enrocado", m.TipoEnrocado)
	rec.Set("intervencion", m.Intervencion)
	rec.Set("carguio", m.Carguio)
	rec.Set("values", string(values))
	return nil
}

// LoadMeasurements returns every measurement in storage order.
func LoadMeasurements(app *pocketbase.PocketBase) ([]Measurement, error) {
	records, err := app.FindRecordsByFilter("measurements", allRecords, "+sort_order", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load measurements: %w", err)
	}
	out := make([]Measurement, 0, len(records))
	for _, r := range records {
		out = append(out, MeasurementFromRecord(r))
	}
	return out, nil
}

// MeasurementsForDike returns one dike's sheet rows in storage order.
func MeasurementsForDike(app *pocketbase.PocketBase, dikeID string) ([]Measurement, error) {
	records, err := app.FindRecordsByFilter(
		"measurements",
		"dike_id = {:dikeId}",
		"+sort_order", 0, 0,
		map[string]any{"dikeId": dikeID},
	)
	if err != nil {
		return nil, fmt.Errorf("load measurements for dike %s: %w", dikeID, err)
	}
	out := make([]Measurement, 0, len(records))
	for _, r := range records {
		out = append(out, MeasurementFromRecord(r))
	}
	return out, nil
}

// ProgressEntryFromRecord maps a progress_entries record.
func ProgressEntryFromRecord(r *core.Record) ProgressEntry {
	return ProgressEntry{
		ID:            r.Id,
		Date:          r.GetString("date"),
		DikeID:        r.GetString("dike_id"),
		ProgInicio:    r.GetString("prog_inicio"),
		ProgFin:       r.GetString("prog_fin"),
		Longitud:      r.GetFloat("longitud"),
		TipoTerreno:   r.GetString("tipo_terreno"),
		TipoEnrocado:  r.GetString("tipo_enrocado"),
		Partida:       r.GetString("partida"),
		Capa:          r.GetString("capa"),
		Observaciones: r.GetString("observaciones"),
	}
}

// ApplyProgressEntryToRecord writes a progress entry onto a record.
func ApplyProgressEntryToRecord(rec *core.Record, e ProgressEntry) {
	rec.Set("date", e.Date)
	rec.Set("dike_id", e.DikeID)
	rec.Set("prog_inicio", e.ProgInicio)
	rec.Set("prog_fin", e.ProgFin)
	rec.Set("longitud", e.Longitud)
	rec.Set("tipo_terreno", e.TipoTerreno)
	rec.Set("tipo_enrocado", e.TipoEnrocado)
	rec.Set("partida", e.Partida)
	rec.Set("capa", e.Capa)
	rec.Set("observaciones", e.Observaciones)
}

// LoadProgressEntries returns the whole progress history, oldest date
// first.
func LoadProgressEntries(app *pocketbase.PocketBase) ([]ProgressEntry, error) {
	records, err := app.FindRecordsByFilter("progress_entries", allRecords, "+date", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load progress entries: %w", err)
	}
	out := make([]ProgressEntry, 0, len(records))
	for _, r := range records {
		out = append(out, ProgressEntryFromRecord(r))
	}
	return out, nil
}

// LoadCustomColumns returns the extra measurement column names in storage
// order.
func LoadCustomColumns(app *pocketbase.PocketBase) ([]string, error) {
	records, err := app.FindRecordsByFilter("custom_columns", allRecords, "+sort_order", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load custom columns: %w", err)
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.GetString("name"))
	}
	return out, nil
}

// LoadBudget reconstructs the budget tree of one owner (a sector or a
// dike override).
func LoadBudget(app *pocketbase.PocketBase, ownerType, ownerID string) ([]BudgetSection, error) {
	sectionRecords, err := app.FindRecordsByFilter(
		"budget_sections",
		"owner_type = {:ownerType} && owner_id = {:ownerId}",
		"+sort_order", 0, 0,
		map[string]any{"ownerType": ownerType, "ownerId": ownerID},
	)
	if err != nil {
		return nil, fmt.Errorf("load budget sections for %s %s: %w", ownerType, ownerID, err)
	}

	var budget []BudgetSection
	for _, sr := range sectionRecords {
		section := BudgetSection{
			ID:   sr.GetString("section_id"),
			Name: sr.GetString("name"),
		}
		groupRecords, err := app.FindRecordsByFilter(
			"budget_groups",
			"section = {:section}",
			"+sort_order", 0, 0,
			map[string]any{"section": sr.Id},
		)
		if err != nil {
			return nil, fmt.Errorf("load budget groups: %w", err)
		}
		for _, gr := range groupRecords {
			group := BudgetGroup{
				ID:   gr.GetString("group_id"),
				Code: gr.GetString("code"),
				Name: gr.GetString("name"),
			}
			itemRecords, err := app.FindRecordsByFilter(
				"budget_items",
				"group = {:group}",
				"+sort_order", 0, 0,
				map[string]any{"group": gr.Id},
			)
			if err != nil {
				return nil, fmt.Errorf("load budget items: %w", err)
			}
			for _, ir := range itemRecords {
				item := BudgetItem{
					ID:          ir.GetString("item_id"),
					Code:        ir.GetString("code"),
					Description: ir.GetString("description"),
					Unit:        ir.GetString("unit"),
					Metrado:     ir.GetFloat("metrado"),
					Price:       ir.GetFloat("price"),
				}
				if ir.GetBool("deselected") {
					deselected := false
					item.Selected = &deselected
				}
				group.Items = append(group.Items, item)
			}
			section.Groups = append(section.Groups, group)
		}
		budget = append(budget, section)
	}
	return budget, nil
}

// SaveBudget replaces one owner's budget tree wholesale. The SPA always
// wrote the full tree, so partial merges are not needed here; item-level
// edits go through UpdateBudgetItem.
func SaveBudget(app *pocketbase.PocketBase, ownerType, ownerID string, budget []BudgetSection) error {
	if err := DeleteBudget(app, ownerType, ownerID); err != nil {
		return err
	}

	sectionsCol, err := app.FindCollectionByNameOrId("budget_sections")
	if err != nil {
		return fmt.Errorf("find budget_sections: %w", err)
	}
	groupsCol, err := app.FindCollectionByNameOrId("budget_groups")
	if err != nil {
		return fmt.Errorf("find budget_groups: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("budget_items")
	if err != nil {
		return fmt.Errorf("find budget_items: %w", err)
	}

	for si, section := range budget {
		sr := core.NewRecord(sectionsCol)
		sr.Set("owner_type", ownerType)
		sr.Set("owner_id", ownerID)
		sr.Set("section_id", section.ID)
		sr.Set("name", section.Name)
		sr.Set("sort_order", si)
		if err := app.Save(sr); err != nil {
			return fmt.Errorf("save budget section %s: %w", section.ID, err)
		}
		for gi, group := range section.Groups {
			gr := core.NewRecord(groupsCol)
			gr.Set("section", sr.Id)
			gr.Set("group_id", group.ID)
			gr.Set("code", group.Code)
			gr.Set("name", group.Name)
			gr.Set("sort_order", gi)
			if err := app.Save(gr); err != nil {
				return fmt.Errorf("save budget group %s: %w", group.ID, err)
			}
			for ii, item := range group.Items {
				ir := core.NewRecord(itemsCol)
				ir.Set("group", gr.Id)
				ir.Set("item_id", item.ID)
				ir.Set("code", item.Code)
				ir.Set("description", item.Description)
				ir.Set("unit", item.Unit)
				ir.Set("metrado", item.Metrado)
				ir.Set("price", item.Price)
				ir.Set("deselected", !item.IsSelected())
				ir.Set("sort_order", ii)
				if err := app.Save(ir); err != nil {
					return fmt.Errorf("save budget item %s: %w", item.Code, err)
				}
			}
		}
	}
	return nil
}

// DeleteBudget removes one owner's budget tree. Groups and items follow
// via cascade.
func DeleteBudget(app *pocketbase.PocketBase, ownerType, ownerID string) error {
	records, err := app.FindRecordsByFilter(
		"budget_sections",
		"owner_type = {:ownerType} && owner_id = {:ownerId}",
		"", 0, 0,
		map[string]any{"ownerType": ownerType, "ownerId": ownerID},
	)
	if err != nil {
		return fmt.Errorf("find budget sections for %s %s: %w", ownerType, ownerID, err)
	}
	for _, r := range records {
		if err := app.Delete(r); err != nil {
			return fmt.Errorf("delete budget section %s: %w", r.Id, err)
		}
	}
	return nil
}

// BudgetOwnerIDs lists the distinct owners of a given type that have a
// stored budget.
func BudgetOwnerIDs(app *pocketbase.PocketBase, ownerType string) ([]string, error) {
	records, err := app.FindRecordsByFilter(
		"budget_sections",
		"owner_type = {:ownerType}",
		"+sort_order", 0, 0,
		map[string]any{"ownerType": ownerType},
	)
	if err != nil {
		return nil, fmt.Errorf("list budget owners: %w", err)
	}
	seen := map[string]struct{}{}
	var out []string
	for _, r := range records {
		id := r.GetString("owner_id")
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

// LoadBudgetsByOwnerType loads every budget of one owner type keyed by
// owner id.
func LoadBudgetsByOwnerType(app *pocketbase.PocketBase, ownerType string) (map[string][]BudgetSection, error) {
	owners, err := BudgetOwnerIDs(app, ownerType)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]BudgetSection, len(owners))
	for _, id := range owners {
		budget, err := LoadBudget(app, ownerType, id)
		if err != nil {
			return nil, err
		}
		out[id] = budget
	}
	return out, nil
}

// GetSetting reads a settings value, returning "" when unset.
func GetSetting(app *pocketbase.PocketBase, key string) string {
	record, err := app.FindFirstRecordByFilter(
		"settings",
		"key = {:key}",
		map[string]any{"key": key},
	)
	if err != nil {
		return ""
	}
	return record.GetString("value")
}

// SetSetting upserts a settings value.
func SetSetting(app *pocketbase.PocketBase, key, value string) error {
	record, err := app.FindFirstRecordByFilter(
		"settings",
		"key = {:key}",
		map[string]any{"key": key},
	)
	if err != nil {
		col, err := app.FindCollectionByNameOrId("settings")
		if err != nil {
			return fmt.Errorf("find settings: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("key", key)
	}
	record.Set("value", value)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
