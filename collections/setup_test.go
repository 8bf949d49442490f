package collections_test

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/collections"
	"dikecontrol/testhelpers"
)

// NewTestApp already runs collections.Setup, so these tests exercise the
// schema it leaves behind and the re-run path.

func TestSetup_CreatesAllCollections(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	names := []string{
		"sectors",
		"dikes",
		"measurements",
		"progress_entries",
		"budget_sections",
		"budget_groups",
		"budget_items",
		"custom_columns",
		"settings",
	}
	for _, name := range names {
		if _, err := app.FindCollectionByNameOrId(name); err != nil {
			t.Errorf("expected collection %q to exist: %v", name, err)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	// A second run must reuse the existing collections instead of failing.
	collections.Setup(app)

	col, err := app.FindCollectionByNameOrId("measurements")
	if err != nil {
		t.Fatalf("measurements collection missing after re-run: %v", err)
	}
	if col.Fields.GetByName("values") == nil {
		t.Error("expected values field to survive a re-run")
	}
}

func TestSetup_DikeSectorRelationDoesNotCascade(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	col, err := app.FindCollectionByNameOrId("dikes")
	if err != nil {
		t.Fatalf("dikes collection missing: %v", err)
	}
	field, ok := col.Fields.GetByName("sector").(*core.RelationField)
	if !ok {
		t.Fatal("expected sector to be a relation field")
	}
	// Sector deletion is refused while dikes reference it; the schema
	// must not silently cascade instead.
	if field.CascadeDelete {
		t.Error("expected sector relation to not cascade delete")
	}
}

func TestSetup_AllowsClientRecordIDs(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	// Dike codes and grid-minted ids do not fit PocketBase's default
	// 15-char lowercase id shape; the schema must accept them.
	testhelpers.CreateTestSector(t, app, "CASMA", "SECTOR CASMA")

	record, err := app.FindRecordById("sectors", "CASMA")
	if err != nil {
		t.Fatalf("expected record with client-supplied id: %v", err)
	}
	if record.GetString("name") != "SECTOR CASMA" {
		t.Errorf("unexpected name %q", record.GetString("name"))
	}
}
