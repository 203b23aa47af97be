package ladder

import (
	"math"
	"testing"

	"github.com/iwvelando/risk-ladder/pkg/trade"
)

func quantities(rungs []Rung) []float64 {
	out := make([]float64, len(rungs))
	for i, r := range rungs {
		out[i] = r.Quantity
	}
	return out
}

func rungsWithQuantities(qs ...float64) []Rung {
	rungs := make([]Rung, len(qs))
	for i, q := range qs {
		entry := 100 - float64(i)
		rungs[i] = Rung{
			Index:        i,
			Kind:         trade.Long,
			Entry:        entry,
			Stop:         entry - 1,
			Quantity:     q,
			Risk:         q,
			SellPrice:    entry + 5,
			Constituents: 1,
		}
	}
	return rungs
}

func TestGroupByMinimum(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		minimum  float64
		expected [][]float64
	}{
		{"Tail folds into last group", []float64{3, 7, 2, 5}, 10, [][]float64{{3, 7, 2, 5}}},
		{"Two groups", []float64{6, 5, 4, 6}, 10, [][]float64{{6, 5}, {4, 6}}},
		{"Exact pair", []float64{6, 5}, 10, [][]float64{{6, 5}}},
		{"Never reaches minimum", []float64{1, 2}, 10, nil},
		{"Empty", nil, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := GroupByMinimum(rungsWithQuantities(tt.input...), tt.minimum)
			if len(groups) != len(tt.expected) {
				t.Fatalf("expected %d groups, got %d", len(tt.expected), len(groups))
			}
			for i, group := range groups {
				got := quantities(group)
				if len(got) != len(tt.expected[i]) {
					t.Fatalf("group %d: expected %v, got %v", i, tt.expected[i], got)
				}
				for j := range got {
					if got[j] != tt.expected[i][j] {
						t.Fatalf("group %d: expected %v, got %v", i, tt.expected[i], got)
					}
				}
			}
		})
	}
}

func TestConsolidateKeepsLargeRungs(t *testing.T) {
	conf := testConfig()
	conf.MinimumSize = 2
	b := NewBuilder(nil, conf)

	out := b.consolidate(rungsWithQuantities(6, 1, 1, 6))
	got := quantities(out)
	expected := []float64{6, 2, 6}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}

	merged := out[1]
	if merged.Constituents != 2 {
		t.Errorf("expected 2 constituents, got %d", merged.Constituents)
	}
	if merged.Entry != 98.5 {
		t.Errorf("expected merged entry 98.5, got %v", merged.Entry)
	}
	if merged.Stop != 97 {
		t.Errorf("expected merged stop at the deepest constituent stop 97, got %v", merged.Stop)
	}
	if merged.Risk != 2 {
		t.Errorf("expected summed risk 2, got %v", merged.Risk)
	}
	// Merged price 98.5 against the first constituent's sell price 104.
	if merged.PnL != 11 {
		t.Errorf("expected pnl 11, got %v", merged.PnL)
	}
}

func TestConsolidateFallbackWhenNoGroupForms(t *testing.T) {
	conf := testConfig()
	conf.MinimumSize = 100
	b := NewBuilder(nil, conf)

	original := rungsWithQuantities(1, 2, 3)
	out := b.consolidate(original)
	if len(out) != len(original) {
		t.Fatalf("expected unmodified ladder of %d rungs, got %d", len(original), len(out))
	}
	for i := range out {
		if out[i] != original[i] {
			t.Fatalf("rung %d changed: %+v", i, out[i])
		}
	}
}

func TestBuildConsolidatesExampleLadder(t *testing.T) {
	params := Params{Entry: 67800, Stop: 67600, RiskPerTrade: 100, RungCount: 5, Kind: trade.Long}
	plain, err := NewBuilder(nil, testConfig()).Build(params)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	conf := testConfig()
	conf.MinimumSize = 5
	merged, err := NewBuilder(nil, conf).Build(params)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(merged) != 2 {
		t.Fatalf("expected 2 consolidated rungs, got %d", len(merged))
	}
	if math.Abs(TotalQuantity(merged)-TotalQuantity(plain)) > 1e-9 {
		t.Fatalf("quantity not conserved: %v vs %v", TotalQuantity(merged), TotalQuantity(plain))
	}
	for i, r := range merged {
		if r.Index != i {
			t.Errorf("expected index %d, got %d", i, r.Index)
		}
		if r.Quantity < conf.MinimumSize {
			t.Errorf("rung %d below minimum size: %v", i, r.Quantity)
		}
	}
	if merged[0].Entry <= merged[1].Entry {
		t.Errorf("expected decreasing entries after consolidation, got %v then %v", merged[0].Entry, merged[1].Entry)
	}
	if merged[0].Constituents+merged[1].Constituents != 5 {
		t.Errorf("expected 5 constituents in total, got %d", merged[0].Constituents+merged[1].Constituents)
	}
}
