package margin

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

func TestFlatRateEstimateLiquidation(t *testing.T) {
	tests := []struct {
		name        string
		rate        float64
		balance     float64
		long        Position
		short       Position
		price       float64
		maintenance float64
	}{
		{"Long", 0.005, 100, Position{Entry: 1000, Size: 1}, Position{}, 900 / 0.995, 5},
		{"Short", 0.005, 100, Position{}, Position{Entry: 1000, Size: 1}, 1100 / 1.005, 5},
		{"Fully hedged without maintenance", 0, 100, Position{Entry: 1000, Size: 1}, Position{Entry: 1000, Size: 1}, 0, 0},
		{"Overcollateralized long clamps to zero", 0.005, 2000, Position{Entry: 1000, Size: 1}, Position{}, 0, 5},
		{"Empty account", 0.005, 100, Position{}, Position{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := FlatRate{MaintenanceRate: tt.rate}.EstimateLiquidation(tt.balance, tt.long, tt.short)
			if err != nil {
				t.Fatalf("EstimateLiquidation() error = %v", err)
			}
			if math.Abs(est.LiquidationPrice-tt.price) > 1e-9 {
				t.Errorf("liquidation price %v, expected %v", est.LiquidationPrice, tt.price)
			}
			if math.Abs(est.Maintenance-tt.maintenance) > 1e-9 {
				t.Errorf("maintenance %v, expected %v", est.Maintenance, tt.maintenance)
			}
		})
	}
}

func TestFlatRateRejectsInvalidInput(t *testing.T) {
	if _, err := (FlatRate{MaintenanceRate: 1}).EstimateLiquidation(100, Position{}, Position{}); err == nil {
		t.Error("expected error for maintenance rate of 1")
	}
	if _, err := (FlatRate{MaintenanceRate: 0.01}).EstimateLiquidation(100, Position{Size: -1}, Position{}); err == nil {
		t.Error("expected error for negative size")
	}
}

func projected(kind trade.Kind, stop float64) []ladder.AveragedRung {
	return []ladder.AveragedRung{
		{Rung: ladder.Rung{Kind: kind, Entry: 1000, Stop: stop, Quantity: 1}, AvgEntry: 1000, AvgSize: 1, Projected: true},
	}
}

func TestCheckLadder(t *testing.T) {
	est := FlatRate{MaintenanceRate: 0.005}

	tests := []struct {
		name      string
		kind      trade.Kind
		stop      float64
		expectErr bool
	}{
		{"Long stop above liquidation", trade.Long, 950, false},
		{"Long stop below liquidation", trade.Long, 900, true},
		{"Short stop below liquidation", trade.Short, 1050, false},
		{"Short stop above liquidation", trade.Short, 1100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimate, err := CheckLadder(est, 100, Position{}, projected(tt.kind, tt.stop))
			if tt.expectErr {
				if !errors.Is(err, ErrLiquidationBeforeStop) {
					t.Fatalf("expected ErrLiquidationBeforeStop, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("CheckLadder() error = %v", err)
			}
			if estimate.LiquidationPrice <= 0 {
				t.Errorf("expected a liquidation price, got %v", estimate.LiquidationPrice)
			}
		})
	}
}

func TestCheckLadderBlendsExistingPosition(t *testing.T) {
	est := FlatRate{MaintenanceRate: 0.005}
	// One unit held at 1000 plus one laddered unit at 1000 liquidates near 954.77.
	expected := (2000 - 100) / (2 * 0.995)

	tests := []struct {
		name      string
		stop      float64
		expectErr bool
	}{
		{"Stop above blended liquidation", 960, false},
		{"Stop below blended liquidation", 800, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimate, err := CheckLadder(est, 100, Position{Entry: 1000, Size: 1}, projected(trade.Long, tt.stop))
			if tt.expectErr {
				if !errors.Is(err, ErrLiquidationBeforeStop) {
					t.Fatalf("expected ErrLiquidationBeforeStop, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("CheckLadder() error = %v", err)
			}
			if math.Abs(estimate.LiquidationPrice-expected) > 1e-6 {
				t.Errorf("liquidation price %v, expected %v", estimate.LiquidationPrice, expected)
			}
		})
	}
}

func TestCheckLadderRequiresProjection(t *testing.T) {
	rungs := []ladder.AveragedRung{{Rung: ladder.Rung{Kind: trade.Long, Entry: 1000, Stop: 900}}}
	if _, err := CheckLadder(FlatRate{MaintenanceRate: 0.005}, 100, Position{}, rungs); err == nil {
		t.Fatal("expected error for a ladder without projections")
	}
}
