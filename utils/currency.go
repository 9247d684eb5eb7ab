package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrencyVND formats an amount as Vietnamese dong. Dong has no minor
// unit, so the amount is rounded to the nearest whole dong.
// Example: 135000 -> "135.000 VND"
func FormatCurrencyVND(amount float64) string {
	rounded := math.Round(amount)
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	digits := fmt.Sprintf("%.0f", rounded)

	// Tambahkan pemisah ribuan
	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{digits[start:i]}, groups...)
	}

	result := strings.Join(groups, ".") + " VND"
	if negative {
		return "-" + result
	}
	return result
}
