package trade

import (
	"math"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input     string
		expected  Kind
		expectErr bool
	}{
		{"long", Long, false},
		{"SHORT", Short, false},
		{" Long ", Long, false},
		{"flat", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) error = %v", tt.input, err)
			}
			if kind != tt.expected {
				t.Errorf("ParseKind(%q) = %q, expected %q", tt.input, kind, tt.expected)
			}
		})
	}
}

func TestPnLAndClosePrice(t *testing.T) {
	tests := []struct {
		name  string
		entry float64
		close float64
		qty   float64
		kind  Kind
		pnl   float64
	}{
		{"Long profit", 100, 110, 2, Long, 20},
		{"Long loss", 100, 95, 2, Long, -10},
		{"Short profit", 100, 90, 3, Short, 30},
		{"Short loss", 100, 104, 3, Short, -12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PnL(tt.entry, tt.close, tt.qty, tt.kind)
			if math.Abs(got-tt.pnl) > 1e-9 {
				t.Fatalf("PnL() = %v, expected %v", got, tt.pnl)
			}
			closePrice := ClosePrice(tt.entry, tt.pnl, tt.qty, tt.kind)
			if math.Abs(closePrice-tt.close) > 1e-9 {
				t.Fatalf("ClosePrice() = %v, expected %v", closePrice, tt.close)
			}
		})
	}

	if ClosePrice(100, 10, 0, Long) != 0 {
		t.Fatal("expected zero close price for zero quantity")
	}
}

func TestFurther(t *testing.T) {
	if !Long.Further(101, 100) || Long.Further(99, 100) {
		t.Fatal("unexpected long direction")
	}
	if !Short.Further(99, 100) || Short.Further(101, 100) {
		t.Fatal("unexpected short direction")
	}
}

func TestPositionSize(t *testing.T) {
	tests := []struct {
		name     string
		entry    float64
		stop     float64
		budget   float64
		places   int
		expected float64
	}{
		{"Forty dollar gap", 67800, 67760, 100, 3, 2.5},
		{"Short side", 100, 104, 10, 2, 2.5},
		{"Rounded", 100, 97, 10, 3, 3.333},
		{"Degenerate", 100, 100, 10, 3, 0},
		{"Zero entry", 0, 10, 10, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionSize(tt.entry, tt.stop, tt.budget, tt.places)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("PositionSize() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPositionSizeWithin(t *testing.T) {
	tests := []struct {
		name     string
		entry    float64
		stop     float64
		budget   float64
		places   int
		expected float64
	}{
		{"Exact", 67800, 67760, 100, 3, 2.5},
		{"Rounds down where PositionSize rounds up", 100, 97, 20, 3, 6.666},
		{"Short side", 100, 103, 20, 2, 6.66},
		{"Degenerate", 100, 100, 10, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionSizeWithin(tt.entry, tt.stop, tt.budget, tt.places)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("PositionSizeWithin() = %v, expected %v", got, tt.expected)
			}
			if loss := math.Abs(PnL(tt.entry, tt.stop, got, Long)); loss > tt.budget+1e-9 {
				t.Errorf("loss %v exceeds budget %v", loss, tt.budget)
			}
		})
	}
}

func TestAverage(t *testing.T) {
	avg := Average([]Order{
		{Price: 100, Quantity: 1},
		{Price: 90, Quantity: 3},
	}, 2, 3)
	if math.Abs(avg.Price-92.5) > 1e-9 {
		t.Errorf("expected average price 92.5, got %v", avg.Price)
	}
	if math.Abs(avg.Quantity-4) > 1e-9 {
		t.Errorf("expected quantity 4, got %v", avg.Quantity)
	}

	if empty := Average(nil, 2, 3); empty.Price != 0 || empty.Quantity != 0 {
		t.Errorf("expected zero average for no orders, got %+v", empty)
	}
}
