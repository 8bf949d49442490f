package services

import (
	"fmt"
	"strings"
)

// FormatPEN formats a float64 amount into Peruvian Sol notation with
// comma thousands grouping (e.g., S/. 1,234,567.89). The result always
// includes exactly 2 decimal places; rounding happens only here, never in
// the calculations that feed it.
func FormatPEN(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	formatted := applyThousandsGrouping(parts[0])

	result := "S/. " + formatted + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatQty formats a quantity with comma thousands grouping and 2
// decimal places, without a currency prefix.
func FormatQty(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)

	result := applyThousandsGrouping(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// applyThousandsGrouping inserts commas into an integer string every 3
// digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "," + result
		remaining = remaining[:len(remaining)-3]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}
	return result
}
