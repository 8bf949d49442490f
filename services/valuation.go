package services

import (
	"sort"
	"strings"
	"time"
)

// Valuation and progress reporting: sector financial roll-ups, per-dike
// progress, estimated volumes from budget-derived factors, and monthly
// valuation estimates keyed YYYY-MM.

// DikeDetail is one dike's line in the descriptive report.
type DikeDetail struct {
	Dike           Dike    `json:"dike"`
	ExecutedLength float64 `json:"executedLength"`
	ProgressPct    float64 `json:"progressPct"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
}

// SectorFinancials is the contractual-vs-executed money summary of one
// sector. Unlike the budget panel the descriptive report always counts
// every item, deselected or not, because it mirrors the contract.
type SectorFinancials struct {
	Contractual float64 `json:"contractual"`
	Executed    float64 `json:"executed"`
	Balance     float64 `json:"balance"`
	Progress    float64 `json:"progress"`
}

// SectorReport groups one sector's financials with its dike details.
type SectorReport struct {
	Sector      Sector           `json:"sector"`
	DikeDetails []DikeDetail     `json:"dikeDetails"`
	Financials  SectorFinancials `json:"financials"`
}

// BuildSectorReports computes the descriptive report body for every
// sector, in the given sector order.
func BuildSectorReports(sectors []Sector, dikes []Dike, rows []Measurement, entries []ProgressEntry, budgetBySector map[string][]BudgetSection) []SectorReport {
	out := make([]SectorReport, 0, len(sectors))
	for _, sector := range sectors {
		sectorDikes := dikesOfSector(dikes, sector.ID)
		sectorRows := rowsOfDikes(rows, sectorDikes)

		var fin SectorFinancials
		for _, section := range budgetBySector[sector.ID] {
			for _, group := range section.Groups {
				for _, item := range group.Items {
					fin.Contractual += item.Metrado * item.Price
					fin.Executed += ExecutedQuantity(item.Code, sectorRows) * item.Price
				}
			}
		}
		fin.Balance = fin.Contractual - fin.Executed
		if fin.Contractual > 0 {
			fin.Progress = fin.Executed / fin.Contractual * 100
		}

		details := make([]DikeDetail, 0, len(sectorDikes))
		for _, dike := range sectorDikes {
			var executed float64
			for _, m := range rows {
				if m.DikeID == dike.ID && m.Carguio == 1 {
					executed += m.Distancia
				}
			}
			d := DikeDetail{Dike: dike, ExecutedLength: executed}
			if dike.TotalML > 0 {
				d.ProgressPct = executed / dike.TotalML * 100
			}
			d.StartDate, d.EndDate = dateRange(entries, dike.ID)
			details = append(details, d)
		}

		out = append(out, SectorReport{Sector: sector, DikeDetails: details, Financials: fin})
	}
	return out
}

func dikesOfSector(dikes []Dike, sectorID string) []Dike {
	var out []Dike
	for _, d := range dikes {
		if d.SectorID == sectorID {
			out = append(out, d)
		}
	}
	return out
}

func rowsOfDikes(rows []Measurement, dikes []Dike) []Measurement {
	ids := make(map[string]struct{}, len(dikes))
	for _, d := range dikes {
		ids[d.ID] = struct{}{}
	}
	var out []Measurement
	for _, m := range rows {
		if _, ok := ids[m.DikeID]; ok {
			out = append(out, m)
		}
	}
	return out
}

func dateRange(entries []ProgressEntry, dikeID string) (first, last string) {
	for _, e := range entries {
		if e.DikeID != dikeID || e.Date == "" {
			continue
		}
		if first == "" || e.Date < first {
			first = e.Date
		}
		if last == "" || e.Date > last {
			last = e.Date
		}
	}
	return first, last
}

// monthKey reduces an ISO date to YYYY-MM. Anything unparseable keys
// under "" and is dropped by the callers.
func monthKey(date string) string {
	if len(date) >= 7 && date[4] == '-' {
		return date[:7]
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.Format("2006-01")
	}
	return ""
}

// MonthlyValuationResult maps YYYY-MM to per-sector estimated value, with
// the months in ascending order.
type MonthlyValuationResult struct {
	Months []string                      `json:"months"`
	Data   map[string]map[string]float64 `json:"data"`
}

// MonthlyValuation estimates a value per progress entry as its length
// times the sector's average budget cost per linear meter, then buckets by
// month and sector.
func MonthlyValuation(entries []ProgressEntry, dikes []Dike, budgetBySector map[string][]BudgetSection) MonthlyValuationResult {
	res := MonthlyValuationResult{Data: map[string]map[string]float64{}}
	months := map[string]struct{}{}

	for _, entry := range entries {
		month := monthKey(entry.Date)
		if month == "" {
			continue
		}
		months[month] = struct{}{}

		dike := findDike(dikes, entry.DikeID)
		if dike == nil {
			continue
		}
		budget := budgetBySector[dike.SectorID]
		var value float64
		if len(budget) > 0 {
			total := DirectCostAllItems(budget)
			sectorML := sectorTotalML(dikes, dike.SectorID)
			if sectorML > 0 {
				value = entry.Longitud * (total / sectorML)
			}
		}
		addMonthly(res.Data, month, dike.SectorID, value)
	}

	res.Months = sortedKeys(months)
	return res
}

// DetailedMonthlyValuation values each entry by its partida's own budget
// line: length times price times contractual metrado over the sector's
// total linear meters.
func DetailedMonthlyValuation(entries []ProgressEntry, dikes []Dike, budgetBySector map[string][]BudgetSection) MonthlyValuationResult {
	res := MonthlyValuationResult{Data: map[string]map[string]float64{}}
	months := map[string]struct{}{}

	for _, entry := range entries {
		month := monthKey(entry.Date)
		if month == "" {
			continue
		}
		months[month] = struct{}{}

		dike := findDike(dikes, entry.DikeID)
		if dike == nil {
			continue
		}
		code := PartidaCode(entry.Partida)
		sectorML := sectorTotalML(dikes, dike.SectorID)
		if sectorML == 0 {
			sectorML = 1
		}

		var value float64
		for _, section := range budgetBySector[dike.SectorID] {
			for _, group := range section.Groups {
				for _, item := range group.Items {
					if strings.TrimSpace(item.Code) == code {
						value = entry.Longitud * (item.Price * item.Metrado / sectorML)
					}
				}
			}
		}
		addMonthly(res.Data, month, dike.SectorID, value)
	}

	res.Months = sortedKeys(months)
	return res
}

// PartidaCode extracts the budget code from a progress entry's partida
// label ("404.A ENROCADO ..." -> "404.A").
func PartidaCode(partida string) string {
	code, _, _ := strings.Cut(strings.TrimSpace(partida), " ")
	return strings.TrimSpace(code)
}

// DirectCostAllItems is the contractual cost ignoring the selected flag,
// which is what the valuation estimate and the descriptive report use.
func DirectCostAllItems(budget []BudgetSection) float64 {
	var total float64
	for _, section := range budget {
		for _, group := range section.Groups {
			for _, item := range group.Items {
				total += item.Metrado * item.Price
			}
		}
	}
	return total
}

func sectorTotalML(dikes []Dike, sectorID string) float64 {
	var total float64
	for _, d := range dikes {
		if d.SectorID == sectorID {
			total += d.TotalML
		}
	}
	return total
}

func findDike(dikes []Dike, id string) *Dike {
	for i := range dikes {
		if dikes[i].ID == id {
			return &dikes[i]
		}
	}
	return nil
}

func addMonthly(data map[string]map[string]float64, month, sectorID string, value float64) {
	if data[month] == nil {
		data[month] = map[string]float64{}
	}
	data[month][sectorID] += value
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OverrunItem is a budget line executed beyond its contractual metrado.
type OverrunItem struct {
	Sector      string  `json:"sector"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Contract    float64 `json:"contract"`
	Executed    float64 `json:"executed"`
	Excess      float64 `json:"excess"`
}

// FindOverruns lists the items whose executed quantity exceeds the
// contractual metrado, across all sectors. Items with zero contractual
// metrado are skipped; those are additions, not overruns.
func FindOverruns(sectors []Sector, dikes []Dike, rows []Measurement, budgetBySector map[string][]BudgetSection) []OverrunItem {
	var out []OverrunItem
	for _, sector := range sectors {
		budget := budgetBySector[sector.ID]
		if budget == nil {
			continue
		}
		sectorRows := rowsOfDikes(rows, dikesOfSector(dikes, sector.ID))
		for _, section := range budget {
			for _, group := range section.Groups {
				for _, item := range group.Items {
					executed := ExecutedQuantity(item.Code, sectorRows)
					if executed > item.Metrado && item.Metrado > 0 {
						out = append(out, OverrunItem{
							Sector:      sector.Name,
							Code:        item.Code,
							Description: item.Description,
							Contract:    item.Metrado,
							Executed:    executed,
							Excess:      executed - item.Metrado,
						})
					}
				}
			}
		}
	}
	return out
}

// VolumeFactors convert a linear meter of advance into estimated cubic
// meters, per specialty, derived from the sector budget.
type VolumeFactors struct {
	Excavation float64 `json:"excavation"`
	Riprap     float64 `json:"riprap"`
	Fill       float64 `json:"fill"`
}

// SectorVolumeFactors computes the budget volume per sector linear meter
// for the excavation (402.B/402.E), riprap (404*) and fill (413*/412*)
// groupings.
func SectorVolumeFactors(sectorID string, dikes []Dike, budget []BudgetSection) VolumeFactors {
	if len(budget) == 0 {
		return VolumeFactors{}
	}
	sectorML := sectorTotalML(dikes, sectorID)
	if sectorML == 0 {
		sectorML = 1
	}
	var f VolumeFactors
	for _, section := range budget {
		for _, group := range section.Groups {
			for _, item := range group.Items {
				if strings.Contains(item.Code, "402.B") || strings.Contains(item.Code, "402.E") {
					f.Excavation += item.Metrado
				}
				if strings.Contains(item.Code, "404") {
					f.Riprap += item.Metrado
				}
				if strings.Contains(item.Code, "413") || strings.Contains(item.Code, "412") {
					f.Fill += item.Metrado
				}
			}
		}
	}
	f.Excavation /= sectorML
	f.Riprap /= sectorML
	f.Fill /= sectorML
	return f
}

// SpecialtyStat pairs linear advance with its estimated volume.
type SpecialtyStat struct {
	ML float64 `json:"ml"`
	M3 float64 `json:"m3"`
}

// DikeVolumeSummary is one dike's progress by specialty.
type DikeVolumeSummary struct {
	Dike       Dike          `json:"dike"`
	Excavation SpecialtyStat `json:"excavacion"`
	Riprap     SpecialtyStat `json:"enrocado"`
	Fill       SpecialtyStat `json:"relleno"`
}

// ProgressVolumeSummary estimates executed volumes per dike from progress
// entries and the sector volume factors. Dikes without any matching
// activity are omitted.
func ProgressVolumeSummary(dikes []Dike, entries []ProgressEntry, budgetBySector map[string][]BudgetSection) []DikeVolumeSummary {
	var out []DikeVolumeSummary
	for _, dike := range dikes {
		factors := SectorVolumeFactors(dike.SectorID, dikes, budgetBySector[dike.SectorID])
		s := DikeVolumeSummary{Dike: dike}
		for _, e := range entries {
			if e.DikeID != dike.ID {
				continue
			}
			switch {
			case strings.Contains(e.Partida, "402.B") || strings.Contains(e.Partida, "402.E"):
				s.Excavation.ML += e.Longitud
				s.Excavation.M3 += e.Longitud * factors.Excavation
			case strings.Contains(e.Partida, "404"):
				s.Riprap.ML += e.Longitud
				s.Riprap.M3 += e.Longitud * factors.Riprap
			case strings.Contains(e.Partida, "413") || strings.Contains(e.Partida, "412"):
				s.Fill.ML += e.Longitud
				s.Fill.M3 += e.Longitud * factors.Fill
			}
		}
		if s.Excavation.ML+s.Riprap.ML+s.Fill.ML > 0 {
			out = append(out, s)
		}
	}
	return out
}

// DikeExecutedLength derives the physically executed length of a dike
// from its progress history: per-partida lengths are summed and the best
// of the leading earthwork partidas wins, so stacked partidas over the
// same stretch are not double counted.
func DikeExecutedLength(entries []ProgressEntry, dikeID string) float64 {
	sums := map[string]float64{}
	for _, e := range entries {
		if e.DikeID == dikeID {
			sums[PartidaCode(e.Partida)] += e.Longitud
		}
	}
	executed := sums["403.A"]
	for _, code := range []string{"404.A", "404.B", "402.B"} {
		if sums[code] > executed {
			executed = sums[code]
		}
	}
	return executed
}

// MatrixColumn defines one column of the detailed quantity matrix.
type MatrixColumn struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Unit  string   `json:"unit"`
	Codes []string `json:"codes"`
}

// MatrixColumns is the fixed column set of the detailed quantity matrix.
func MatrixColumns() []MatrixColumn {
	return []MatrixColumn{
		{Key: "desbroce", Label: "DESBROCE (401.A)", Unit: "ha", Codes: []string{"401.A"}},
		{Key: "exc_masiva", Label: "EXC. MASIVA (402.B)", Unit: "m3", Codes: []string{"402.B"}},
		{Key: "exc_una", Label: "EXC. UÑA (402.E)", Unit: "m3", Codes: []string{"402.E"}},
		{Key: "conformacion", Label: "CONFORMACIÓN (403.A)", Unit: "m3", Codes: []string{"403.A"}},
		{Key: "enr_talud", Label: "ENR. TALUD (404)", Unit: "m3", Codes: []string{"404.A", "404.B", "404.G"}},
		{Key: "enr_una", Label: "ENR. UÑA (404)", Unit: "m3", Codes: []string{"404.D", "404.E", "404.F", "404.H"}},
		{Key: "perfilado", Label: "PERFILADO (406.A)", Unit: "m2", Codes: []string{"406.A"}},
		{Key: "geotextil", Label: "GEOTEXTIL (409.A)", Unit: "m2", Codes: []string{"409.A", "409.B"}},
		{Key: "geocelda", Label: "GEOCELDA (414.A)", Unit: "m2", Codes: []string{"414.A"}},
		{Key: "fundacion", Label: "FUNDACIÓN (416.A)", Unit: "m2", Codes: []string{"416.A", "416.B"}},
		{Key: "relleno", Label: "RELLENO (413.A)", Unit: "m3", Codes: []string{"413.A"}},
		{Key: "rec_roca", Label: "REC. ROCA", Unit: "m3", Codes: []string{"417.A"}},
		{Key: "afirmado", Label: "AFIRMADO (412.A)", Unit: "m3", Codes: []string{"412.A"}},
		{Key: "zanja", Label: "ZANJA (408.A)", Unit: "ml", Codes: []string{"408.A"}},
		{Key: "gavion", Label: "GAVIÓN (415.A)", Unit: "m3", Codes: []string{"415.A"}},
	}
}

// MatrixRow is one dike's executed quantities keyed by column key.
type MatrixRow struct {
	Sector  string             `json:"sector"`
	Dike    string             `json:"dike"`
	TotalML float64            `json:"total_ml"`
	Values  map[string]float64 `json:"values"`
}

// BuildQuantityMatrix computes the detailed executed-quantity matrix, one
// row per dike in sector order. The rock-recovery column adds the raw
// corteRoca field on top of the 417.A mapping since that field has no
// budget code of its own.
func BuildQuantityMatrix(sectors []Sector, dikes []Dike, rows []Measurement) []MatrixRow {
	columns := MatrixColumns()
	var out []MatrixRow
	for _, sector := range sectors {
		for _, dike := range dikesOfSector(dikes, sector.ID) {
			var dikeRows []Measurement
			for _, m := range rows {
				if m.DikeID == dike.ID {
					dikeRows = append(dikeRows, m)
				}
			}
			row := MatrixRow{
				Sector:  sector.Name,
				Dike:    dike.Name,
				TotalML: dike.TotalML,
				Values:  make(map[string]float64, len(columns)),
			}
			for _, col := range columns {
				var total float64
				for _, code := range col.Codes {
					total += ExecutedQuantity(code, dikeRows)
				}
				if col.Key == "rec_roca" {
					for _, m := range dikeRows {
						if m.Carguio == 1 {
							total += m.CorteRocaRecuperacion * m.Distancia
						}
					}
				}
				row.Values[col.Key] = total
			}
			out = append(out, row)
		}
	}
	return out
}
