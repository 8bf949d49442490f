package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Bulk exercise generator: fills every dike with synthetic measurement
// points every 50 m plus an 8-day progress history, so training sessions
// and load checks can exercise the panels with realistic volumes. It
// replaces the whole measurement sheet and progress history.

const (
	exerciseStep           = 50.0
	exerciseProgressPoints = 8
)

// ExerciseData is the generated replacement state.
type ExerciseData struct {
	Measurements    []Measurement
	ProgressEntries []ProgressEntry
}

// GenerateExerciseData builds synthetic rows for the given dikes. The rng
// is injected so tests run deterministic.
func GenerateExerciseData(dikes []Dike, now time.Time, rng *rand.Rand) ExerciseData {
	var data ExerciseData

	for _, dike := range dikes {
		startM := ParsePK(dike.ProgInicioDique)
		endM := ParsePK(dike.ProgFinDique)
		totalLength := math.Abs(endM - startM)
		if totalLength <= 0 {
			continue
		}

		points := int(math.Ceil(totalLength / exerciseStep))
		direction := 1.0
		if endM < startM {
			direction = -1.0
		}

		for i := 0; i <= points; i++ {
			currentM := startM + float64(i)*exerciseStep*direction
			if (direction == 1 && currentM > endM) || (direction == -1 && currentM < endM) {
				currentM = endM
			}

			var dist float64
			if i > 0 {
				prevM := startM + float64(i-1)*exerciseStep*direction
				dist = round2(math.Abs(currentM - prevM))
				if dist == 0 {
					continue
				}
			}

			isB2 := rng.Float64() > 0.7
			terrain := "B1"
			if isB2 {
				terrain = "B2"
			}
			enrocado := "TIPO 1"
			if rng.Float64() > 0.5 {
				enrocado = "TIPO 2"
			}
			gavion := 0.0
			if isB2 {
				gavion = round2(rng.Float64() * 5)
			}

			data.Measurements = append(data.Measurements, Measurement{
				ID:                    fmt.Sprintf("EXERCISE_M_%s_%d", dike.ID, i),
				DikeID:                dike.ID,
				PK:                    FormatPK(currentM),
				Distancia:             dist,
				TipoTerreno:           terrain,
				TipoEnrocado:          enrocado,
				Intervencion:          "LLENADO DE EJERCICIO AUTOMÁTICO",
				Carguio:               1,
				Item403AContractual:   round2(rng.Float64()*2.5 + 1.2),
				CorteRocaRecuperacion: round2(rng.Float64() * 4),
				Item402BContractual:   round2(rng.Float64() * 1.8),
				Item402ENivelFreatico: round2(rng.Float64()*6 + 3),
				Item404TaludT1:        round2(rng.Float64()*4 + 4),
				Item404UnaT1:          round2(rng.Float64()*3 + 3),
				Item413AContractual:   round2(rng.Float64() * 2.2),
				Item412AAfirmado:      0.62,
				Item406APerfilado:     1.5,
				Item409AGeotextil:     12.5,
				Gavion:                gavion,
			})

			if currentM == endM {
				break
			}
		}

		subStep := totalLength / exerciseProgressPoints
		for j := 0; j < exerciseProgressPoints; j++ {
			progressStart := startM + float64(j)*subStep*direction
			progressEnd := startM + float64(j+1)*subStep*direction
			entryDate := now.AddDate(0, 0, -(exerciseProgressPoints - j))

			terrain := "B1"
			if rng.Float64() > 0.8 {
				terrain = "B2"
			}

			data.ProgressEntries = append(data.ProgressEntries, ProgressEntry{
				ID:            fmt.Sprintf("EXERCISE_P_%s_%d", dike.ID, j),
				Date:          entryDate.Format("2006-01-02"),
				DikeID:        dike.ID,
				ProgInicio:    FormatPK(progressStart),
				ProgFin:       FormatPK(progressEnd),
				Longitud:      round2(subStep),
				TipoTerreno:   terrain,
				TipoEnrocado:  "TIPO 2",
				Partida:       "404.A ENROCADO Y ACOMODO",
				Capa:          "Capa Única",
				Observaciones: "Avance generado en ejercicio masivo",
			})
		}
	}
	return data
}

// RunBulkExercise replaces all measurements and progress entries with
// generated exercise data and reports the row counts.
func RunBulkExercise(app *pocketbase.PocketBase) (measurements, progress int, err error) {
	dikes, err := LoadDikes(app)
	if err != nil {
		return 0, 0, err
	}

	data := GenerateExerciseData(dikes, time.Now(), rand.New(rand.NewSource(time.Now().UnixNano())))

	for _, name := range []string{"measurements", "progress_entries"} {
		if err := clearCollection(app, name); err != nil {
			return 0, 0, err
		}
	}

	measurementsCol, err := app.FindCollectionByNameOrId("measurements")
	if err != nil {
		return 0, 0, fmt.Errorf("find measurements: %w", err)
	}
	for i, m := range data.Measurements {
		rec := core.NewRecord(measurementsCol)
		rec.Set("id", m.ID)
		if err := ApplyMeasurementToRecord(rec, m); err != nil {
			return 0, 0, err
		}
		rec.Set("sort_order", i)
		if err := app.Save(rec); err != nil {
			return 0, 0, fmt.Errorf("save exercise measurement: %w", err)
		}
	}

	entriesCol, err := app.FindCollectionByNameOrId("progress_entries")
	if err != nil {
		return 0, 0, fmt.Errorf("find progress_entries: %w", err)
	}
	for _, e := range data.ProgressEntries {
		rec := core.NewRecord(entriesCol)
		rec.Set("id", e.ID)
		ApplyProgressEntryToRecord(rec, e)
		if err := app.Save(rec); err != nil {
			return 0, 0, fmt.Errorf("save exercise progress entry: %w", err)
		}
	}

	return len(data.Measurements), len(data.ProgressEntries), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
