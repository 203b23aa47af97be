package optimizer

import (
	"errors"
	"fmt"

	"github.com/iwvelando/risk-ladder/internal/zone"
)

// ErrNoOptimumFound is matched by every NoOptimumFoundError.
var ErrNoOptimumFound = errors.New("no optimum risk-reward value found")

// NoOptimumFoundError reports a search in which no candidate survived the
// strategy filter and the net-diff selection.
type NoOptimumFoundError struct {
	RiskPerTrade float64
	Lower        int
	Upper        int
	Zone         zone.PriceZone
	Strategy     string
	Evaluated    int
	Valid        int
}

func (e *NoOptimumFoundError) Error() string {
	return fmt.Sprintf("%s: strategy %s, risk %.8g, range [%d, %d), zone [%.8g, %.8g], %d of %d candidates valid",
		ErrNoOptimumFound, e.Strategy, e.RiskPerTrade, e.Lower, e.Upper,
		e.Zone.Support, e.Zone.Resistance, e.Valid, e.Evaluated)
}

// Is makes errors.Is(err, ErrNoOptimumFound) hold.
func (e *NoOptimumFoundError) Is(target error) bool {
	return target == ErrNoOptimumFound
}
