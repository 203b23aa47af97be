// Package format renders prices, quantities and amounts for display.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositive(math.Abs(amount), 2)
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Number returns value with thousands separators and exactly places
// decimals (e.g., "-67,719.9").
func Number(value float64, places int) string {
	sign := ""
	if value < 0 {
		sign = "-"
	}
	return sign + formatPositive(math.Abs(value), places)
}

// Percent renders a ratio as a percentage with two decimals (0.0123 -> "1.23%").
func Percent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 2, 64) + "%"
}

func formatPositive(value float64, places int) string {
	if places < 0 {
		places = 0
	}
	formatted := strconv.FormatFloat(value, 'f', places, 64)
	intPart, decPart, hasDec := strings.Cut(formatted, ".")

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if !hasDec {
		return intPart
	}
	return intPart + "." + decPart
}
