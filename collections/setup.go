package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the sectors, dikes, measurements,
// progress_entries, budget tree, custom_columns and settings collections
// exist.
//
// The dike reference on measurements and progress entries is a plain text
// field, not a relation: deleting a dike must be able to leave orphaned
// rows behind so the integrity report can surface them, and their removal
// stays an explicit repair action.
func Setup(app *pocketbase.PocketBase) {
	sectors := ensureCollection(app, "sectors", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "dikes", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name: "sector",
			// No cascade: a sector cannot be deleted while dikes still
			// reference it, the delete handler refuses first.
			Required:     true,
			CollectionId: sectors.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.TextField{Name: "prog_inicio_rio", Required: false})
		c.Fields.Add(&core.TextField{Name: "prog_fin_rio", Required: false})
		c.Fields.Add(&core.TextField{Name: "prog_inicio_dique", Required: false})
		c.Fields.Add(&core.TextField{Name: "prog_fin_dique", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_ml", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
	})

	ensureCollection(app, "measurements", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "dike_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.TextField{Name: "pk", Required: false})
		c.Fields.Add(&core.NumberField{Name: "distancia", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "tipo_terreno",
			Required:  false,
			Values:    []string{"B1", "B2", "NORMAL"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "tipo_enrocado", Required: false})
		c.Fields.Add(&core.TextField{Name: "intervencion", Required: false})
		// Every numeric sheet cell, fixed and custom, lives in one JSON
		// blob shaped exactly like the snapshot object.
		c.Fields.Add(&core.JSONField{Name: "values", Required: false, MaxSize: 1 << 20})
		c.Fields.Add(&core.NumberField{Name: "carguio", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "progress_entries", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "dike_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "date", Required: true})
		c.Fields.Add(&core.TextField{Name: "prog_inicio", Required: false})
		c.Fields.Add(&core.TextField{Name: "prog_fin", Required: false})
		c.Fields.Add(&core.NumberField{Name: "longitud", Required: false})
		c.Fields.Add(&core.TextField{Name: "tipo_terreno", Required: false})
		c.Fields.Add(&core.TextField{Name: "tipo_enrocado", Required: false})
		c.Fields.Add(&core.TextField{Name: "partida", Required: false})
		c.Fields.Add(&core.TextField{Name: "capa", Required: false})
		c.Fields.Add(&core.TextField{Name: "observaciones", Required: false})
	})

	budgetSections := ensureCollection(app, "budget_sections", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "owner_type",
			Required:  true,
			Values:    []string{"sector", "dike"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "owner_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "section_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
	})

	budgetGroups := ensureCollection(app, "budget_groups", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "section",
			Required:      true,
			CollectionId:  budgetSections.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "group_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
	})

	ensureCollection(app, "budget_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "group",
			Required:      true,
			CollectionId:  budgetGroups.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "item_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.NumberField{Name: "metrado", Required: false})
		c.Fields.Add(&core.NumberField{Name: "price", Required: false})
		// Items default to selected; only an explicit opt-out is stored.
		c.Fields.Add(&core.BoolField{Name: "deselected"})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
	})

	ensureCollection(app, "custom_columns", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
	})

	ensureCollection(app, "settings", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "key", Required: true})
		c.Fields.Add(&core.TextField{Name: "value", Required: false})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)

	// Record ids come from the client (dike codes like "DIPR_001_MI",
	// measurement ids minted by the grid) and must survive backup round
	// trips unchanged, so the default 15-char lowercase id constraint is
	// relaxed. Records created without an id still get a generated one.
	if idField, ok := collection.Fields.GetByName("id").(*core.TextField); ok {
		idField.Min = 1
		idField.Max = 128
		idField.Pattern = `^[^\s]+$`
	}

	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
