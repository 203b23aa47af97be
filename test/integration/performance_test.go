package integration

import (
	"context"
	"testing"
	"time"

	"github.com/iwvelando/risk-ladder/internal/planner"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"go.uber.org/zap"
)

// TestPerformance checks that a full optimize and bound run stay well within
// interactive latency.
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()
	conf := loadTestConfig(t)

	start := time.Now()
	if _, err := planner.Plan(context.Background(), logger, *conf, constants.RunModeOptimize, nil); err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	optimizeTime := time.Since(start)

	start = time.Now()
	if _, err := planner.Plan(context.Background(), logger, *conf, constants.RunModeBound, nil); err != nil {
		t.Fatalf("bound failed: %v", err)
	}
	boundTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Optimize: %v", optimizeTime)
	t.Logf("  Bound: %v", boundTime)

	if total := optimizeTime + boundTime; total > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", total)
	}
}

func BenchmarkOptimize(b *testing.B) {
	for _, mode := range []string{constants.ModeSequential, constants.ModePool, constants.ModeChunked} {
		b.Run(mode, func(b *testing.B) {
			conf := loadTestConfig(b)
			conf.Search.Mode = mode
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := planner.Plan(context.Background(), zap.NewNop(), *conf, constants.RunModeOptimize, nil); err != nil {
					b.Fatalf("Plan() error = %v", err)
				}
			}
		})
	}
}
