package services_test

import (
	"bytes"
	"mime/multipart"
	"testing"

	"dikecontrol/services"
	"dikecontrol/testhelpers"
)

// bytesFile adapts an in-memory byte slice to multipart.File.
type bytesFile struct {
	*bytes.Reader
}

func (bytesFile) Close() error { return nil }

func newBytesFile(data string) multipart.File {
	return bytesFile{bytes.NewReader([]byte(data))}
}

func TestValidateMeasurementFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI", TotalML: 100})

	csvData := "PK,DIST.,TIPO,CONT.\n" +
		"0+000,0,B1,1.5\n" +
		"0+020,,B1,2.5\n" +
		"garbage,10,XX,1\n"

	result, err := services.ValidateMeasurementFile(app, newBytesFile(csvData), "metrados.csv", "D1")
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalRows != 3 {
		t.Errorf("TotalRows = %d", result.TotalRows)
	}
	if result.ErrorRows != 1 || result.ValidRows != 2 {
		t.Errorf("ErrorRows = %d, ValidRows = %d, errors: %+v", result.ErrorRows, result.ValidRows, result.Errors)
	}
	// row 4 carries both a chainage and a terrain error
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %+v", result.Errors)
	}
	for _, e := range result.Errors {
		if e.Row != 4 {
			t.Errorf("error on row %d, want 4", e.Row)
		}
	}
	if len(result.ParsedRows) != 3 {
		t.Fatalf("ParsedRows = %d", len(result.ParsedRows))
	}
	// second row had no distancia: derived from the previous PK
	if got := result.ParsedRows[1].Distancia; got != 20 {
		t.Errorf("derived distancia = %v, want 20", got)
	}
	if result.ParsedRows[1].Item403AContractual != 2.5 {
		t.Errorf("CONT. column = %v", result.ParsedRows[1].Item403AContractual)
	}
	for _, m := range result.ParsedRows {
		if m.DikeID != "D1" || m.Carguio != 1 {
			t.Errorf("row defaults = %+v", m)
		}
	}
}

func TestValidateMeasurementFile_UnknownDike(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := services.ValidateMeasurementFile(app, newBytesFile("pk\n0+000\n"), "x.csv", "NOPE"); err == nil {
		t.Error("unknown dike accepted")
	}
}

func TestValidateMeasurementFile_UnsupportedFormat(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "A")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "X"})
	if _, err := services.ValidateMeasurementFile(app, newBytesFile("whatever"), "sheet.pdf", "D1"); err == nil {
		t.Error("unsupported extension accepted")
	}
}

func TestCommitMeasurementImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSector(t, app, "S1", "SECTOR CASMA")
	testhelpers.CreateTestDike(t, app, services.Dike{ID: "D1", SectorID: "S1", Name: "DIPR_001_MI", TotalML: 100})
	testhelpers.CreateTestMeasurement(t, app, services.Measurement{ID: "OLD", DikeID: "D1", PK: "9+999", Carguio: 1})

	rows := []services.Measurement{
		{ID: "N1", DikeID: "D1", PK: "0+000", Distancia: 0, TipoTerreno: "B1", Carguio: 1},
		{ID: "N2", DikeID: "D1", PK: "0+020", Distancia: 20, TipoTerreno: "B1", Carguio: 1, Item403AContractual: 2},
	}
	count, err := services.CommitMeasurementImport(app, "D1", rows)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d", count)
	}

	stored, err := services.MeasurementsForDike(app, "D1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored = %+v", stored)
	}
	if stored[0].ID != "N1" || stored[1].ID != "N2" {
		t.Errorf("old rows not replaced: %+v", stored)
	}
	if stored[1].Item403AContractual != 2 {
		t.Errorf("stored[1] = %+v", stored[1])
	}
}
