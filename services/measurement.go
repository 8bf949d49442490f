package services

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/spf13/cast"
)

// Measurement is one row of the quantity sheet: a chainage point on a dike
// plus the per-meter rate of every tracked construction activity at that
// point. The fixed rate fields mirror the sheet's contractual columns;
// project-specific custom columns live in Extra and are flattened into the
// same JSON object so exported backups keep the original flat row shape.
//
// A row participates in aggregation only while Carguio == 1.
type Measurement struct {
	ID           string  `json:"id"`
	DikeID       string  `json:"dikeId"`
	PK           string  `json:"pk"`
	Distancia    float64 `json:"distancia"`
	TipoTerreno  string  `json:"tipoTerreno"`
	TipoEnrocado string  `json:"tipoEnrocado"`
	Intervencion string  `json:"intervencion"`

	// 403.A conformacion y compactacion de dique
	Item403AContractual float64 `json:"item403A_Contractual"`
	Item403ARep         float64 `json:"item403A_Rep"`
	Item403AFund        float64 `json:"item403A_Fund"`

	// corte posterior, recuperacion de roca
	CorteRocaRecuperacion float64 `json:"corteRoca_Recuperacion"`

	// 402.B excavacion masiva
	Item402BContractual float64 `json:"item402B_Contractual"`
	Item402BRep         float64 `json:"item402B_Rep"`
	Item402BFund        float64 `json:"item402B_Fund"`

	// 402.E excavacion de una con nivel freatico
	Item402ENivelFreatico   float64 `json:"item402E_NivelFreatico"`
	Item402ENivelFreaticoMM float64 `json:"item402E_NivelFreatico_MM"`

	// 405.A descolmatacion
	Item405ADescolmatacion   float64 `json:"item405A_Descolmatacion"`
	Item405ADescolmatacionMM float64 `json:"item405A_Descolmatacion_MM"`

	// 404.A/B enrocado de talud
	Item404TaludT1   float64 `json:"item404_Talud_T1"`
	Item404TaludT2   float64 `json:"item404_Talud_T2"`
	Item404TaludT1MM float64 `json:"item404_Talud_T1_MM"`
	Item404TaludT2MM float64 `json:"item404_Talud_T2_MM"`

	// 404.D/E enrocado de una
	Item404UnaT1   float64 `json:"item404_Una_T1"`
	Item404UnaT2   float64 `json:"item404_Una_T2"`
	Item404UnaT1MM float64 `json:"item404_Una_T1_MM"`
	Item404UnaT2MM float64 `json:"item404_Una_T2_MM"`

	// 413.A relleno
	Item413AContractual float64 `json:"item413A_Contractual"`
	Item413AMM          float64 `json:"item413A_MM"`

	// varios
	Item412AAfirmado  float64 `json:"item412A_Afirmado"`
	Item406APerfilado float64 `json:"item406A_Perfilado"`
	Item409AGeotextil float64 `json:"item409A_Geotextil"`
	Item416AFundacion float64 `json:"item416A_Fundacion"`
	Item408AZanja     float64 `json:"item408A_Zanja"`
	Item414AGeoceldas float64 `json:"item414A_Geoceldas"`
	Gavion            float64 `json:"gavion"`

	// 501.A executed flag: 1 counts the row, anything else excludes it
	Carguio float64 `json:"item501A_Carguio"`

	// Extra holds custom-column values keyed by column name. Flattened
	// into the row object on (un)marshal; never nested in the JSON.
	Extra map[string]any `json:"-"`
}

// measurementAlias avoids recursing into the custom marshalers.
type measurementAlias Measurement

var (
	fixedKeysOnce sync.Once
	fixedKeys     map[string]struct{}
)

// fixedMeasurementKeys returns the set of JSON keys owned by the fixed
// struct fields, built once from the struct tags.
func fixedMeasurementKeys() map[string]struct{} {
	fixedKeysOnce.Do(func() {
		fixedKeys = make(map[string]struct{})
		t := reflect.TypeOf(Measurement{})
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			for j := 0; j < len(tag); j++ {
				if tag[j] == ',' {
					tag = tag[:j]
					break
				}
			}
			fixedKeys[tag] = struct{}{}
		}
	})
	return fixedKeys
}

// MarshalJSON flattens Extra into the row object. Fixed fields win on key
// collision.
func (m Measurement) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(measurementAlias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return base, nil
	}

	var flat map[string]any
	if err := json.Unmarshal(base, &flat); err != nil {
		return nil, err
	}
	fixed := fixedMeasurementKeys()
	for k, v := range m.Extra {
		if _, taken := fixed[k]; taken {
			continue
		}
		flat[k] = v
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits the flat row object back into fixed fields and
// Extra, so snapshots with custom columns round-trip losslessly.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var alias measurementAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	fixed := fixedMeasurementKeys()
	var extra map[string]any
	for k, v := range flat {
		if _, ok := fixed[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}

	*m = Measurement(alias)
	m.Extra = extra
	return nil
}

// ExtraValue returns the numeric value of a custom column plus whether the
// column is present at all. Non-numeric values coerce to 0 by policy.
func (m Measurement) ExtraValue(key string) (float64, bool) {
	v, ok := m.Extra[key]
	if !ok {
		return 0, false
	}
	return cast.ToFloat64(v), true
}
