package mathutil

import (
	"math"
	"testing"
)

func TestToFixed(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		places   int
		expected float64
	}{
		{"Round up at midpoint", 1.235, 2, 1.24},
		{"Round down below midpoint", 1.234, 2, 1.23},
		{"Three places", 0.12345, 3, 0.123},
		{"Zero places", 67812.6, 0, 67813},
		{"Price at one place", 67639.94, 1, 67639.9},
		{"Negative number", -1.235, 2, -1.24},
		{"Zero", 0.0, 3, 0.0},
		{"Negative places treated as zero", 2.6, -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToFixed(tt.input, tt.places)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ToFixed(%v, %d) = %v, expected %v", tt.input, tt.places, result, tt.expected)
			}
		})
	}
}

func TestToFixedNonFinite(t *testing.T) {
	if !math.IsInf(ToFixed(math.Inf(1), 2), 1) {
		t.Fatal("expected +Inf to pass through")
	}
	if !math.IsNaN(ToFixed(math.NaN(), 2)) {
		t.Fatal("expected NaN to pass through")
	}
}

func TestParsePlaces(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expected  int
		expectErr bool
	}{
		{"Three places", "%.3f", 3, false},
		{"Zero places", "%.0f", 0, false},
		{"Bare integer", "2", 2, false},
		{"Surrounding spaces", " %.1f ", 1, false},
		{"Empty", "", 0, true},
		{"Wrong verb", "%.3d", 0, true},
		{"Missing dot", "%3f", 0, true},
		{"Not a number", "%.xf", 0, true},
		{"Negative", "-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			places, err := ParsePlaces(tt.format)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d", tt.format, places)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlaces(%q) error = %v", tt.format, err)
			}
			if places != tt.expected {
				t.Errorf("ParsePlaces(%q) = %d, expected %d", tt.format, places, tt.expected)
			}
		})
	}
}

func TestTick(t *testing.T) {
	if Tick(0) != 1 {
		t.Errorf("Tick(0) = %v, expected 1", Tick(0))
	}
	if math.Abs(Tick(2)-0.01) > 1e-12 {
		t.Errorf("Tick(2) = %v, expected 0.01", Tick(2))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		value    float64
		places   int
		expected float64
	}{
		{1.239, 2, 1.23},
		{1.999, 0, 1},
		{-1.239, 2, -1.23},
		{0.1 + 0.2, 1, 0.3},
		{5, -1, 5},
	}
	for _, tt := range tests {
		if got := Truncate(tt.value, tt.places); got != tt.expected {
			t.Errorf("Truncate(%v, %d) = %v, expected %v", tt.value, tt.places, got, tt.expected)
		}
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero(0) || !IsZero(1e-12) || IsZero(0.001) {
		t.Fatal("IsZero returned unexpected results")
	}
}

func TestSamePrice(t *testing.T) {
	tests := []struct {
		a, b     float64
		places   int
		expected bool
	}{
		{104.88, 104.88, 2, true},
		{0.1 + 0.2, 0.3, 2, true},
		{104.88, 104.89, 2, false},
		{67800, 67800.4, 0, true},
		{67800, 67800.6, 0, false},
	}
	for _, tt := range tests {
		if got := SamePrice(tt.a, tt.b, tt.places); got != tt.expected {
			t.Errorf("SamePrice(%v, %v, %d) = %v, expected %v", tt.a, tt.b, tt.places, got, tt.expected)
		}
	}
}
