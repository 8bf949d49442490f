package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Chainage ("progresiva") notation: "<km>+<meters>", e.g. "2+700.00" for
// 2700 m. Parsing is best-effort and never fails; a quantity sheet full of
// half-typed cells must still compute.

var pkPattern = regexp.MustCompile(`^(\d+\s*\+\s*\d+(\.\d+)?|\d+(\.\d+)?)$`)

// ParsePK converts a chainage string to meters. Strings without "+" are
// read as plain meter values. Whitespace and thousands separators are
// tolerated; anything unparseable yields 0.
func ParsePK(pk string) float64 {
	clean := strings.NewReplacer(" ", "", "\t", "", ",", "").Replace(pk)
	if clean == "" {
		return 0
	}
	if km, m, found := strings.Cut(clean, "+"); found {
		return parseMeters(km)*1000 + parseMeters(m)
	}
	return parseMeters(clean)
}

func parseMeters(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatPK converts meters back to chainage notation. The meters segment
// is always zero-padded to 6 characters with 2 decimals ("0+050.00",
// "2+700.00"); this is the single padding convention used project-wide.
func FormatPK(meters float64) string {
	km := math.Floor(meters / 1000)
	rem := meters - km*1000
	return fmt.Sprintf("%.0f+%06.2f", km, rem)
}

// IsValidPK reports whether a string is acceptable chainage input: empty,
// "km+meters", or a bare decimal number.
func IsValidPK(pk string) bool {
	trimmed := strings.TrimSpace(pk)
	if trimmed == "" {
		return true
	}
	return pkPattern.MatchString(trimmed)
}

// PKDelta returns the absolute distance in meters between two chainages.
func PKDelta(a, b string) float64 {
	return math.Abs(ParsePK(b) - ParsePK(a))
}
