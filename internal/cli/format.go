// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatUSD formats a dollar amount with comma separators.
// Whole amounts drop the cents: 5000 -> "$5,000", 12.5 -> "$12.50".
func FormatUSD(v float64) string {
	if v < 0 {
		return "-" + FormatUSD(-v)
	}
	cents := int64(math.Round(v * 100))
	whole, frac := cents/100, cents%100
	if frac == 0 {
		return "$" + FormatNumber(whole)
	}
	return fmt.Sprintf("$%s.%02d", FormatNumber(whole), frac)
}

// FormatSignedUSD formats a delta with an explicit sign.
func FormatSignedUSD(v float64) string {
	if v >= 0 {
		return "+" + FormatUSD(v)
	}
	return FormatUSD(v)
}

// FormatDays formats a day count: 1 -> "1 day", 7 -> "7 days".
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// FormatTravelers formats a traveler count.
func FormatTravelers(n int) string {
	if n == 1 {
		return "1 traveler"
	}
	return fmt.Sprintf("%d travelers", n)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
