// Package mathutil provides fixed-precision rounding helpers.
package mathutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/shopspring/decimal"
)

// ToFixed rounds value to the given number of decimal places, half away from zero.
func ToFixed(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(value).Round(int32(places)).InexactFloat64()
}

// ParsePlaces converts a fixed-point format specifier such as "%.3f" into
// the number of decimal places. A bare integer ("3") is also accepted.
func ParsePlaces(format string) (int, error) {
	trimmed := strings.TrimSpace(format)
	if trimmed == "" {
		return 0, fmt.Errorf("empty precision format")
	}

	digits := trimmed
	if strings.HasPrefix(trimmed, "%") {
		if !strings.HasPrefix(trimmed, "%.") || !strings.HasSuffix(trimmed, "f") {
			return 0, fmt.Errorf("invalid precision format %q: expected %%.Nf", format)
		}
		digits = strings.TrimSuffix(strings.TrimPrefix(trimmed, "%."), "f")
	}

	places, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid precision format %q: %w", format, err)
	}
	if places < 0 {
		return 0, fmt.Errorf("invalid precision format %q: negative places", format)
	}
	return places, nil
}

// Tick returns the smallest increment representable at places decimals.
func Tick(places int) float64 {
	return math.Pow10(-places)
}

// Truncate drops digits beyond places, rounding toward zero.
func Truncate(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(value).Truncate(int32(places)).InexactFloat64()
}

// IsZero reports whether a quantity or amount is zero up to float noise.
func IsZero(value float64) bool {
	return math.Abs(value) <= constants.FloatTolerance
}

// SamePrice reports whether a and b differ by less than half a tick at places.
func SamePrice(a, b float64, places int) bool {
	return math.Abs(a-b) < Tick(places)/2
}
