package services

// Column registry for the measurement sheet. Exports and imports agree on
// these ids, so header matching works across Excel, CSV and TSV files.

// Column is one sheet column: the id doubles as the flat JSON key.
type Column struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Custom bool   `json:"custom,omitempty"`
}

// FixedColumns returns the built-in sheet columns in grid order.
func FixedColumns() []Column {
	return []Column{
		{ID: "pk", Label: "PK"},
		{ID: "distancia", Label: "DIST."},
		{ID: "tipoTerreno", Label: "TIPO"},
		{ID: "tipoEnrocado", Label: "TIPO ENR."},
		{ID: "intervencion", Label: "INTERVENCION"},
		{ID: "item403A_Contractual", Label: "CONT."},
		{ID: "item403A_Rep", Label: "REP."},
		{ID: "item403A_Fund", Label: "FUND."},
		{ID: "corteRoca_Recuperacion", Label: "CORTE RECUP."},
		{ID: "item402B_Contractual", Label: "CONT."},
		{ID: "item402B_Rep", Label: "REP."},
		{ID: "item402B_Fund", Label: "FUND."},
		{ID: "item402E_NivelFreatico", Label: "N.F."},
		{ID: "item402E_NivelFreatico_MM", Label: "M.M."},
		{ID: "item405A_Descolmatacion", Label: "NORM."},
		{ID: "item405A_Descolmatacion_MM", Label: "M.M."},
		{ID: "item404_Talud_T1", Label: "T1"},
		{ID: "item404_Talud_T2", Label: "T2"},
		{ID: "item404_Talud_T1_MM", Label: "T1 MM"},
		{ID: "item404_Talud_T2_MM", Label: "T2 MM"},
		{ID: "item404_Una_T1", Label: "T1"},
		{ID: "item404_Una_T2", Label: "T2"},
		{ID: "item404_Una_T1_MM", Label: "T1 MM"},
		{ID: "item404_Una_T2_MM", Label: "T2 MM"},
		{ID: "item413A_Contractual", Label: "CONT."},
		{ID: "item413A_MM", Label: "M.M."},
		{ID: "item412A_Afirmado", Label: "412.A AFIRM."},
		{ID: "item406A_Perfilado", Label: "406.A PERF."},
		{ID: "item409A_Geotextil", Label: "409.A GEOTEX."},
		{ID: "item416A_Fundacion", Label: "416.A FUND."},
		{ID: "item414A_Geoceldas", Label: "414.A GEOCEL."},
		{ID: "item408A_Zanja", Label: "408.A ZANJA"},
		{ID: "gavion", Label: "GAVION"},
		{ID: "item501A_Carguio", Label: "EJEC."},
	}
}

// SheetColumns returns the fixed columns followed by the project's custom
// columns.
func SheetColumns(custom []string) []Column {
	cols := FixedColumns()
	for _, name := range custom {
		cols = append(cols, Column{ID: name, Label: name, Custom: true})
	}
	return cols
}

// CellValue resolves a column's value on a row as a display string or
// number, in the flat JSON shape.
func CellValue(m Measurement, col Column) any {
	switch col.ID {
	case "pk":
		return m.PK
	case "distancia":
		return m.Distancia
	case "tipoTerreno":
		return m.TipoTerreno
	case "tipoEnrocado":
		return m.TipoEnrocado
	case "intervencion":
		return m.Intervencion
	case "item501A_Carguio":
		return m.Carguio
	}
	if col.Custom {
		if v, ok := m.ExtraValue(col.ID); ok {
			return v
		}
		return 0.0
	}
	return fixedNumericValue(m, col.ID)
}

// fixedNumericValue reads one of the fixed numeric cells by its flat key.
func fixedNumericValue(m Measurement, key string) float64 {
	switch key {
	case "item403A_Contractual":
		return m.Item403AContractual
	case "item403A_Rep":
		return m.Item403ARep
	case "item403A_Fund":
		return m.Item403AFund
	case "corteRoca_Recuperacion":
		return m.CorteRocaRecuperacion
	case "item402B_Contractual":
		return m.Item402BContractual
	case "item402B_Rep":
		return m.Item402BRep
	case "item402B_Fund":
		return m.Item402BFund
	case "item402E_NivelFreatico":
		return m.Item402ENivelFreatico
	case "item402E_NivelFreatico_MM":
		return m.Item402ENivelFreaticoMM
	case "item405A_Descolmatacion":
		return m.Item405ADescolmatacion
	case "item405A_Descolmatacion_MM":
		return m.Item405ADescolmatacionMM
	case "item404_Talud_T1":
		return m.Item404TaludT1
	case "item404_Talud_T2":
		return m.Item404TaludT2
	case "item404_Talud_T1_MM":
		return m.Item404TaludT1MM
	case "item404_Talud_T2_MM":
		return m.Item404TaludT2MM
	case "item404_Una_T1":
		return m.Item404UnaT1
	case "item404_Una_T2":
		return m.Item404UnaT2
	case "item404_Una_T1_MM":
		return m.Item404UnaT1MM
	case "item404_Una_T2_MM":
		return m.Item404UnaT2MM
	case "item413A_Contractual":
		return m.Item413AContractual
	case "item413A_MM":
		return m.Item413AMM
	case "item412A_Afirmado":
		return m.Item412AAfirmado
	case "item406A_Perfilado":
		return m.Item406APerfilado
	case "item409A_Geotextil":
		return m.Item409AGeotextil
	case "item416A_Fundacion":
		return m.Item416AFundacion
	case "item414A_Geoceldas":
		return m.Item414AGeoceldas
	case "item408A_Zanja":
		return m.Item408AZanja
	case "gavion":
		return m.Gavion
	default:
		return 0
	}
}

// SetCellValue writes one numeric cell on a row by column id. Custom
// column values land in Extra. Non-numeric columns (pk, tipo fields) are
// set by the import code directly and return false here.
func SetCellValue(m *Measurement, col Column, value float64) bool {
	if col.Custom {
		if m.Extra == nil {
			m.Extra = map[string]any{}
		}
		m.Extra[col.ID] = value
		return true
	}
	switch col.ID {
	case "distancia":
		m.Distancia = value
	case "item501A_Carguio":
		m.Carguio = value
	case "item403A_Contractual":
		m.Item403AContractual = value
	case "item403A_Rep":
		m.Item403ARep = value
	case "item403A_Fund":
		m.Item403AFund = value
	case "corteRoca_Recuperacion":
		m.CorteRocaRecuperacion = value
	case "item402B_Contractual":
		m.Item402BContractual = value
	case "item402B_Rep":
		m.Item402BRep = value
	case "item402B_Fund":
		m.Item402BFund = value
	case "item402E_NivelFreatico":
		m.Item402ENivelFreatico = value
	case "item402E_NivelFreatico_MM":
		m.Item402ENivelFreaticoMM = value
	case "item405A_Descolmatacion":
		m.Item405ADescolmatacion = value
	case "item405A_Descolmatacion_MM":
		m.Item405ADescolmatacionMM = value
	case "item404_Talud_T1":
		m.Item404TaludT1 = value
	case "item404_Talud_T2":
		m.Item404TaludT2 = value
	case "item404_Talud_T1_MM":
		m.Item404TaludT1MM = value
	case "item404_Talud_T2_MM":
		m.Item404TaludT2MM = value
	case "item404_Una_T1":
		m.Item404UnaT1 = value
	case "item404_Una_T2":
		m.Item404UnaT2 = value
	case "item404_Una_T1_MM":
		m.Item404UnaT1MM = value
	case "item404_Una_T2_MM":
		m.Item404UnaT2MM = value
	case "item413A_Contractual":
		m.Item413AContractual = value
	case "item413A_MM":
		m.Item413AMM = value
	case "item412A_Afirmado":
		m.Item412AAfirmado = value
	case "item406A_Perfilado":
		m.Item406APerfilado = value
	case "item409A_Geotextil":
		m.Item409AGeotextil = value
	case "item416A_Fundacion":
		m.Item416AFundacion = value
	case "item414A_Geoceldas":
		m.Item414AGeoceldas = value
	case "item408A_Zanja":
		m.Item408AZanja = value
	case "gavion":
		m.Gavion = value
	default:
		return false
	}
	return true
}
