package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "$0.00"},
		{12.5, "$12.50"},
		{1234.567, "$1,234.57"},
		{-1234567.891, "-$1,234,567.89"},
		{999.999, "$1,000.00"},
	}
	for _, tt := range tests {
		if got := Currency(tt.amount); got != tt.expected {
			t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		value    float64
		places   int
		expected string
	}{
		{67719.9, 1, "67,719.9"},
		{67800, 1, "67,800.0"},
		{2.494, 3, "2.494"},
		{-1500, 0, "-1,500"},
		{123, -1, "123"},
		{0.00012, 6, "0.000120"},
	}
	for _, tt := range tests {
		if got := Number(tt.value, tt.places); got != tt.expected {
			t.Errorf("Number(%v, %d) = %q, expected %q", tt.value, tt.places, got, tt.expected)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.0123); got != "1.23%" {
		t.Errorf("Percent(0.0123) = %q", got)
	}
}
