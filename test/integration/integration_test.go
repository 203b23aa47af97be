package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/iwvelando/risk-ladder/internal/config"
	"github.com/iwvelando/risk-ladder/internal/planner"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/output"
	"go.uber.org/zap"
)

const testConfigPath = "../test_config.yaml"

func loadTestConfig(t testing.TB) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return conf
}

// TestMainIntegrationBaseline runs the optimize mode exactly as main() does
// and checks the selected ladder against known values.
func TestMainIntegrationBaseline(t *testing.T) {
	conf := loadTestConfig(t)

	report, err := planner.Plan(context.Background(), zap.NewNop(), *conf, constants.RunModeOptimize, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if report.Summary == nil {
		t.Fatal("expected a search summary")
	}
	if report.Summary.RiskRewardValue != 30 {
		t.Errorf("expected risk-reward value 30, got %d", report.Summary.RiskRewardValue)
	}
	if s := report.Summary; s.MaxRungIndex != s.DeepestIndex {
		t.Errorf("quantity strategy must put the largest rung deepest, got max %d deepest %d", s.MaxRungIndex, s.DeepestIndex)
	}
	if math.Abs(report.TotalQuantity-38.37) > 1e-9 {
		t.Errorf("expected total quantity 38.37, got %v", report.TotalQuantity)
	}
	if report.Summary.AvgEntry != 107.41 || report.Summary.NetDiff <= 0 {
		t.Errorf("expected blended entry 107.41 with a positive net diff, got %+v", report.Summary)
	}
	if report.Margin == nil {
		t.Error("expected a margin estimate")
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", report.Warnings)
	}

	if first := report.Ladder[0]; first.Entry != 100 {
		t.Errorf("short ladder should start at support, got %v", first.Entry)
	}
}

func TestBoundIntegration(t *testing.T) {
	conf := loadTestConfig(t)

	report, err := planner.Plan(context.Background(), zap.NewNop(), *conf, constants.RunModeBound, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if report.Summary == nil || report.Summary.RiskPerTrade != 130 {
		t.Fatalf("expected risk per trade 130, got %+v", report.Summary)
	}
	if report.TotalQuantity > conf.Bound.MaxSize {
		t.Errorf("total quantity %v exceeds max size %v", report.TotalQuantity, conf.Bound.MaxSize)
	}
}

func TestStopScanIntegration(t *testing.T) {
	conf := loadTestConfig(t)

	report, err := planner.Plan(context.Background(), zap.NewNop(), *conf, constants.RunModeStop, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if report.Summary == nil || report.Summary.Stop != 109 {
		t.Fatalf("expected stop 109, got %+v", report.Summary)
	}
	if report.Summary.AvgEntry < conf.StopScan.Target {
		t.Errorf("short blended entry %v fell below target %v", report.Summary.AvgEntry, conf.StopScan.Target)
	}
}

// TestDispatchModesAgree checks that every dispatch mode selects the same ladder.
func TestDispatchModesAgree(t *testing.T) {
	var baseline *output.Report
	for _, mode := range []string{constants.ModeSequential, constants.ModePool, constants.ModeChunked} {
		conf := loadTestConfig(t)
		conf.Search.Mode = mode

		report, err := planner.Plan(context.Background(), zap.NewNop(), *conf, constants.RunModeOptimize, nil)
		if err != nil {
			t.Fatalf("Plan(%s) error = %v", mode, err)
		}
		if baseline == nil {
			baseline = report
			continue
		}
		if !reflect.DeepEqual(baseline.Ladder, report.Ladder) {
			t.Errorf("mode %s selected a different ladder", mode)
		}
		if !reflect.DeepEqual(baseline.Summary, report.Summary) {
			t.Errorf("mode %s produced a different summary: %+v vs %+v", mode, report.Summary, baseline.Summary)
		}
	}
}

func TestOutputFormats(t *testing.T) {
	conf := loadTestConfig(t)
	report, err := planner.Plan(context.Background(), zap.NewNop(), *conf, constants.RunModeOptimize, nil)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := output.Write(&buf, constants.OutputFormatCSV, *report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV output: %v", err)
		}
		if len(records) != len(report.Ladder)+1 {
			t.Fatalf("expected %d CSV records, got %d", len(report.Ladder)+1, len(records))
		}
		if records[0][0] != "index" {
			t.Errorf("unexpected CSV header %v", records[0])
		}
	})

	t.Run("pretty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := output.Write(&buf, constants.OutputFormatPretty, *report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"--- short ladder (optimize) ---", "R:R 30", "Total quantity: 38.37", "Liquidation price:"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in pretty output:\n%s", want, out)
			}
		}
	})
}

func TestConfigurationVariations(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*config.Configuration)
		mode      string
		expectErr bool
	}{
		{name: "entry strategy", modify: func(c *config.Configuration) { c.Search.Strategy = constants.StrategyEntry }, mode: constants.RunModeOptimize},
		{name: "loss target", modify: func(c *config.Configuration) { c.Search.Loss = 99.1 }, mode: constants.RunModeOptimize},
		{name: "ladder from zone edges", modify: func(c *config.Configuration) { c.Risk.RiskRewardCount = 5 }, mode: constants.RunModeLadder},
		{name: "long quantity", modify: func(c *config.Configuration) { c.Risk.Kind = "long" }, mode: constants.RunModeOptimize},
		{name: "loss target out of reach", modify: func(c *config.Configuration) { c.Search.Loss = 99.5 }, mode: constants.RunModeOptimize, expectErr: true},
		{name: "stop target out of reach", modify: func(c *config.Configuration) { c.StopScan.Target = 107 }, mode: constants.RunModeStop, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := loadTestConfig(t)
			tt.modify(conf)

			report, err := planner.Plan(context.Background(), zap.NewNop(), *conf, tt.mode, nil)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if len(report.Ladder) == 0 {
				t.Fatal("expected a non-empty ladder")
			}
		})
	}
}
