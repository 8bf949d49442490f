package services

import (
	"fmt"
	"math"
)

// Data integrity checks. Everything here only reports; repairs are a
// separate, explicitly invoked operation so a diagnostic pass never
// mutates project data.

// TotalMLTolerance is how far (in meters) a dike's declared length may
// diverge from its chainage-derived length before it is flagged.
const TotalMLTolerance = 1.0

// FindOrphanMeasurements returns the ids of measurements whose dike no
// longer exists.
func FindOrphanMeasurements(dikes []Dike, rows []Measurement) []string {
	known := make(map[string]struct{}, len(dikes))
	for _, d := range dikes {
		known[d.ID] = struct{}{}
	}
	var orphans []string
	for _, m := range rows {
		if _, ok := known[m.DikeID]; !ok {
			orphans = append(orphans, m.ID)
		}
	}
	return orphans
}

// ValidateDike reports configuration problems of one dike against the
// whole dike set: duplicate id or name, non-positive declared length, and
// declared length diverging from the chainage span beyond tolerance. The
// declared total always wins for calculations; divergence is only warned.
func ValidateDike(dike Dike, all []Dike) []string {
	var errs []string

	idDupes, nameDupes := 0, 0
	for _, d := range all {
		if d.ID == dike.ID {
			idDupes++
		}
		if d.Name == dike.Name {
			nameDupes++
		}
	}
	if idDupes > 1 {
		errs = append(errs, "duplicate dike id")
	}
	if nameDupes > 1 {
		errs = append(errs, "duplicate dike name")
	}

	calcLen := PKDelta(dike.ProgInicioDique, dike.ProgFinDique)
	if dike.TotalML <= 0 {
		errs = append(errs, "total length is zero or negative")
	} else if math.Abs(calcLen-dike.TotalML) > TotalMLTolerance {
		errs = append(errs, fmt.Sprintf("declared length %.2f diverges from chainage span %.2f", dike.TotalML, calcLen))
	}
	return errs
}

// DikeIssue pairs a dike with its validation findings.
type DikeIssue struct {
	DikeID   string   `json:"dikeId"`
	DikeName string   `json:"dikeName"`
	Errors   []string `json:"errors"`
}

// IntegrityReport is the project-wide diagnostic summary.
type IntegrityReport struct {
	OrphanMeasurements []string    `json:"orphanMeasurements"`
	OrphanCount        int         `json:"orphanCount"`
	DikeIssues         []DikeIssue `json:"dikeIssues"`
	HealthScore        int         `json:"healthScore"`
}

// BuildIntegrityReport runs every check. The health score starts at 100
// and loses 4 points per orphan, capped at 5 orphans, mirroring the
// stability dashboard's scoring.
func BuildIntegrityReport(dikes []Dike, rows []Measurement) IntegrityReport {
	report := IntegrityReport{
		OrphanMeasurements: FindOrphanMeasurements(dikes, rows),
	}
	report.OrphanCount = len(report.OrphanMeasurements)

	for _, d := range dikes {
		if errs := ValidateDike(d, dikes); len(errs) > 0 {
			report.DikeIssues = append(report.DikeIssues, DikeIssue{
				DikeID:   d.ID,
				DikeName: d.Name,
				Errors:   errs,
			})
		}
	}

	score := 100
	if report.OrphanCount > 0 {
		penalty := report.OrphanCount
		if penalty > 5 {
			penalty = 5
		}
		score -= penalty * 4
	}
	if score < 0 {
		score = 0
	}
	report.HealthScore = score
	return report
}

// RemoveOrphanMeasurements filters out rows whose dike is gone and
// returns the removed count. This is the repair path behind the explicit
// "repair now" action.
func RemoveOrphanMeasurements(dikes []Dike, rows []Measurement) ([]Measurement, int) {
	known := make(map[string]struct{}, len(dikes))
	for _, d := range dikes {
		known[d.ID] = struct{}{}
	}
	kept := rows[:0:0]
	removed := 0
	for _, m := range rows {
		if _, ok := known[m.DikeID]; ok {
			kept = append(kept, m)
		} else {
			removed++
		}
	}
	return kept, removed
}
