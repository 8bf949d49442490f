package services

import "strings"

// Quantity mapping: which measurement fields feed a budget item code, and
// which rows are eligible for it. This table is the backbone of every
// physical and financial report in the system; the four panels of the
// legacy tool each carried their own copy of it, here it exists once.

// reinforcementCodes are the budget codes that belong to the B2
// ("refuerzo en diques existentes") scope even without an explicit _R
// suffix.
var reinforcementCodes = map[string]struct{}{
	"404.G": {},
	"404.H": {},
	"415.A": {},
	"416.B": {},
	"417.A": {},
}

// IsReinforcementCode reports whether a budget code belongs to the
// B2/reinforcement scope. Every other code is B1/new-dike work.
func IsReinforcementCode(code string) bool {
	raw := strings.TrimSpace(code)
	if strings.HasSuffix(raw, "_R") {
		return true
	}
	_, ok := reinforcementCodes[raw]
	return ok
}

// RowEligible reports whether a measurement row can contribute to a code:
// B2 codes take only tipoTerreno "B2" rows; B1 codes take "B1", empty, or
// the legacy "NORMAL" classification. Rows with any other classification
// contribute nothing to either scope.
func RowEligible(code string, m Measurement) bool {
	if IsReinforcementCode(code) {
		return m.TipoTerreno == "B2"
	}
	return m.TipoTerreno == "B1" || m.TipoTerreno == "" || m.TipoTerreno == "NORMAL"
}

// MappedValue returns the per-meter rate a row carries for a budget code.
// A custom column literally named after the (unstripped) code wins over
// the fixed table; otherwise the code is stripped of its scope suffix and
// dispatched through the fixed field mapping. Unknown codes map to 0.
func MappedValue(code string, m Measurement) float64 {
	raw := strings.TrimSpace(code)
	if v, ok := m.ExtraValue(raw); ok {
		return v
	}

	base, _, _ := strings.Cut(raw, "_")
	switch strings.TrimSpace(base) {
	case "402.B":
		return m.Item402BContractual + m.Item402BRep + m.Item402BFund
	case "402.C":
		return 0 // not tracked on the sheet
	case "402.E":
		return m.Item402ENivelFreatico + m.Item402ENivelFreaticoMM
	case "403.A":
		return m.Item403AContractual + m.Item403ARep + m.Item403AFund
	case "404.A":
		return m.Item404TaludT1 + m.Item404TaludT1MM
	case "404.B":
		return m.Item404TaludT2 + m.Item404TaludT2MM
	case "404.G":
		return m.Item404TaludT1 + m.Item404TaludT1MM + m.Item404TaludT2 + m.Item404TaludT2MM
	case "404.D", "404.F":
		return m.Item404UnaT1 + m.Item404UnaT1MM
	case "404.E":
		return m.Item404UnaT2 + m.Item404UnaT2MM
	case "404.H":
		return m.Item404UnaT1 + m.Item404UnaT1MM + m.Item404UnaT2 + m.Item404UnaT2MM
	case "405.A":
		return m.Item405ADescolmatacion + m.Item405ADescolmatacionMM
	case "413.A":
		return m.Item413AContractual + m.Item413AMM
	case "412.A":
		return m.Item412AAfirmado
	case "406.A":
		return m.Item406APerfilado
	case "409.A":
		return m.Item409AGeotextil
	case "416.A", "416.B":
		return m.Item416AFundacion
	case "408.A":
		return m.Item408AZanja
	case "415.A":
		return m.Gavion
	default:
		return 0
	}
}

// ExecutedQuantity aggregates the executed quantity for a budget code over
// a set of measurement rows: for every row flagged executed (carguio == 1)
// and eligible for the code, rate x distancia, summed. Zero and negative
// distances are summed as-is; a zero-length boundary point is valid data.
func ExecutedQuantity(code string, rows []Measurement) float64 {
	var total float64
	for _, m := range rows {
		if m.Carguio != 1 {
			continue
		}
		if !RowEligible(code, m) {
			continue
		}
		total += MappedValue(code, m) * m.Distancia
	}
	return total
}
