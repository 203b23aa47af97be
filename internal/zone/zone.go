// Package zone discretizes support/resistance price zones into brackets and
// evenly spaced price steps.
package zone

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

var (
	// ErrInvalidZone is returned for zones that violate support < resistance
	// or percentChange > 0.
	ErrInvalidZone = errors.New("invalid price zone")

	// ErrNoBracket is returned when no bracket contains the current price.
	ErrNoBracket = errors.New("no bracket contains the current price")
)

// PriceZone is a support/resistance bracket anchored at a focus price.
type PriceZone struct {
	Focus         float64 `json:"focus" yaml:"focus" mapstructure:"focus"`
	Support       float64 `json:"support" yaml:"support" mapstructure:"support"`
	Resistance    float64 `json:"resistance" yaml:"resistance" mapstructure:"resistance"`
	PercentChange float64 `json:"percentChange" yaml:"percentChange" mapstructure:"percentChange"`
}

// Validate checks the zone invariants.
func (z PriceZone) Validate() error {
	if z.Support <= 0 || z.Resistance <= 0 {
		return fmt.Errorf("%w: support and resistance must be positive", ErrInvalidZone)
	}
	if z.Support >= z.Resistance {
		return fmt.Errorf("%w: support %.8g must be below resistance %.8g", ErrInvalidZone, z.Support, z.Resistance)
	}
	if z.PercentChange <= 0 {
		return fmt.Errorf("%w: percentChange must be positive", ErrInvalidZone)
	}
	return nil
}

// Edges returns the entry and stop edges of the zone for kind. Longs enter at
// resistance and stop at support; shorts the reverse.
func (z PriceZone) Edges(kind trade.Kind) (entry, stop float64) {
	if kind == trade.Short {
		return z.Support, z.Resistance
	}
	return z.Resistance, z.Support
}

// Range is a (low, high) price bracket.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether price lies within the bracket, inclusive.
func (r Range) Contains(price float64) bool {
	return r.Low <= price && price <= r.High
}

// NarrowRange walks geometrically from focus by (1+percentChange) until it
// reaches the bracket [low, low*(1+percentChange)] around currentPrice.
func NarrowRange(currentPrice, focus, percentChange float64, places int) (Range, bool) {
	if currentPrice <= 0 || focus <= 0 || percentChange <= 0 {
		return Range{}, false
	}

	factor := 1 + percentChange
	target := currentPrice - mathutil.Tick(places)
	low := focus

	if focus*factor > target {
		for steps := 0; low > target && steps < constants.MaxNarrowSteps; steps++ {
			next := low / factor
			if next < constants.MinimumWalkPrice || next == low {
				break
			}
			low = next
		}
	} else {
		for steps := 0; steps < constants.MaxNarrowSteps; steps++ {
			next := low * factor
			if next > target || next == low {
				break
			}
			low = next
		}
	}

	bracket := Range{
		Low:  mathutil.ToFixed(low, places),
		High: mathutil.ToFixed(low*factor, places),
	}
	if !bracket.Contains(currentPrice) {
		return Range{}, false
	}
	return bracket, true
}

// Subdivide splits r into steps equal linear increments. The result always
// ends with r.High exactly.
func Subdivide(r Range, steps, places int) []float64 {
	if steps <= 0 {
		return []float64{r.High}
	}
	factor := mathutil.ToFixed((r.High-r.Low)/float64(steps), places)
	out := make([]float64, 0, steps+1)
	for i := 0; i < steps; i++ {
		out = append(out, mathutil.ToFixed(r.Low+factor*float64(i), places))
	}
	return append(out, r.High)
}

// GeometricSteps returns steps+1 prices moving from `from` to `to` with a
// constant ratio. Both endpoints are exact.
func GeometricSteps(from, to float64, steps, places int) []float64 {
	if steps <= 0 || from <= 0 || to <= 0 {
		return nil
	}
	ratio := to / from
	out := make([]float64, steps+1)
	out[0] = from
	for i := 1; i < steps; i++ {
		out[i] = mathutil.ToFixed(from*math.Pow(ratio, float64(i)/float64(steps)), places)
	}
	out[steps] = to
	return out
}

// TradeZone subdivides r into divisions and returns the first sub-bracket
// whose upper edge is above currentPrice.
func TradeZone(currentPrice float64, r Range, divisions, places int) (Range, bool) {
	points := Subdivide(r, divisions, places)
	for i := 1; i < len(points); i++ {
		if points[i] > currentPrice {
			return Range{Low: points[i-1], High: points[i]}, true
		}
	}
	return Range{}, false
}

// Derive narrows z around currentPrice and returns the future trade zone as a
// new PriceZone. The input zone is not modified.
func Derive(z PriceZone, currentPrice float64, divisions, places int) (PriceZone, error) {
	if z.PercentChange <= 0 {
		return PriceZone{}, fmt.Errorf("%w: percentChange must be positive", ErrInvalidZone)
	}
	focus := z.Focus
	if focus <= 0 {
		focus = z.Resistance
	}

	margin, ok := NarrowRange(currentPrice, focus, z.PercentChange, places)
	if !ok {
		return PriceZone{}, fmt.Errorf("%w: price %.8g from focus %.8g", ErrNoBracket, currentPrice, focus)
	}

	future, ok := TradeZone(currentPrice, margin, divisions, places)
	if !ok {
		return PriceZone{}, fmt.Errorf("%w: price %.8g within [%.8g, %.8g]", ErrNoBracket, currentPrice, margin.Low, margin.High)
	}

	return PriceZone{
		Focus:         focus,
		Support:       future.Low,
		Resistance:    future.High,
		PercentChange: z.PercentChange,
	}, nil
}

// MarginZones lists the brackets a kind position crosses from currentPrice
// toward its stop edge. Longs walk down while above support and shorts walk up
// while below resistance, one tick past the previous bracket each time. The
// walk stops after constants.MaxMarginZones brackets. A price already beyond
// the stop edge yields only the bracket around it.
func MarginZones(z PriceZone, currentPrice float64, kind trade.Kind, places int) ([]Range, error) {
	focus := z.Focus
	if focus <= 0 {
		focus = z.Resistance
	}

	beyond := func(price float64) bool {
		if kind == trade.Short {
			return price < z.Resistance
		}
		return price > z.Support
	}

	var out []Range
	start := currentPrice
	for beyond(start) && len(out) < constants.MaxMarginZones {
		bracket, ok := NarrowRange(start, focus, z.PercentChange, places)
		if !ok {
			break
		}
		out = append(out, bracket)
		if kind == trade.Short {
			start = bracket.High + mathutil.Tick(places)
		} else {
			start = bracket.Low - mathutil.Tick(places)
		}
	}

	if len(out) == 0 {
		bracket, ok := NarrowRange(currentPrice, focus, z.PercentChange, places)
		if !ok {
			return nil, fmt.Errorf("%w: price %.8g from focus %.8g", ErrNoBracket, currentPrice, focus)
		}
		out = append(out, bracket)
	}
	return out, nil
}
