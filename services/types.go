// Package services holds the pure domain logic of the dike construction
// control system: chainage arithmetic, executed-quantity aggregation,
// budget roll-ups and the import/export builders on top of them.
//
// Everything in this package that computes (as opposed to reading or
// writing records) is a pure function of its inputs. Malformed input never
// causes an error: unparseable numbers count as 0, unknown item codes
// contribute 0, missing rows contribute 0. Partial data is the normal
// state of a quantity sheet, not a failure.
package services

// Sector is a named geographic/administrative grouping of dikes. Each
// sector owns its own contractual budget.
type Sector struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dike describes one linear structure. The four chainage strings locate it
// against the river axis and its own axis; TotalML is the total linear
// length in meters, stored redundantly and editable independently of the
// dike-reach chainages (see ValidateDike).
type Dike struct {
	ID              string  `json:"id"`
	SectorID        string  `json:"sectorId"`
	Name            string  `json:"name"`
	ProgInicioRio   string  `json:"progInicioRio"`
	ProgFinRio      string  `json:"progFinRio"`
	ProgInicioDique string  `json:"progInicioDique"`
	ProgFinDique    string  `json:"progFinDique"`
	TotalML         float64 `json:"totalML"`
	Notes           string  `json:"notes,omitempty"`
}

// ProgressEntry is one interval of day-to-day field progress, maintained
// independently of the measurement sheet.
type ProgressEntry struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	DikeID        string  `json:"dikeId"`
	ProgInicio    string  `json:"progInicio"`
	ProgFin       string  `json:"progFin"`
	Longitud      float64 `json:"longitud"`
	TipoTerreno   string  `json:"tipoTerreno"`
	TipoEnrocado  string  `json:"tipoEnrocado"`
	Partida       string  `json:"partida"`
	Capa          string  `json:"capa"`
	Observaciones string  `json:"observaciones"`
}

// BudgetItem is one contractual budget line. Selected is a tri-state: nil
// or true means the item participates in every roll-up sum, false excludes
// it without deleting it.
type BudgetItem struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Metrado     float64 `json:"metrado"`
	Price       float64 `json:"price"`
	Selected    *bool   `json:"selected,omitempty"`
}

// IsSelected reports whether the item counts toward aggregate totals.
// Absent means selected.
func (i BudgetItem) IsSelected() bool {
	return i.Selected == nil || *i.Selected
}

// BudgetGroup is an ordered run of items under a group code ("100", "B1", ...).
type BudgetGroup struct {
	ID    string       `json:"id"`
	Code  string       `json:"code"`
	Name  string       `json:"name"`
	Items []BudgetItem `json:"items"`
}

// BudgetSection is the top level of the budget tree ("A", "B", "C1", ...).
type BudgetSection struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Groups []BudgetGroup `json:"groups"`
}
