// Package parallel provides order-preserving parallel map helpers.
//
// A Dispatcher runs fn for every index in [0, n). Callers write results into
// index-addressed slots, so every dispatcher yields the same output order as a
// sequential loop.
package parallel

import (
	"context"
	"fmt"
	"runtime"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"golang.org/x/sync/errgroup"
)

// Dispatcher schedules n independent units of work.
type Dispatcher interface {
	Do(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// Sequential runs every unit on the calling goroutine.
type Sequential struct{}

// Do implements Dispatcher.
func (Sequential) Do(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Pool fans every unit out to a bounded set of goroutines.
type Pool struct {
	Workers int
}

// Do implements Dispatcher.
func (p Pool) Do(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(p.Workers))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

// Chunked splits the units into contiguous chunks, one goroutine per chunk,
// each processing its chunk in order.
type Chunked struct {
	Workers int
}

// Do implements Dispatcher.
func (c Chunked) Do(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	w := workers(c.Workers)
	size := (n + w - 1) / w

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += size {
		start := start
		end := start + size
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(gctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Map applies fn to every item with d and returns the results in input order.
func Map[T, R any](ctx context.Context, d Dispatcher, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	err := d.Do(ctx, len(items), func(ctx context.Context, i int) error {
		r, err := fn(ctx, items[i])
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FromMode returns the dispatcher for a configured mode name.
func FromMode(mode string, workers int) (Dispatcher, error) {
	switch mode {
	case "", constants.ModePool:
		return Pool{Workers: workers}, nil
	case constants.ModeChunked:
		return Chunked{Workers: workers}, nil
	case constants.ModeSequential:
		return Sequential{}, nil
	default:
		return nil, fmt.Errorf("invalid dispatch mode %q: must be %q, %q or %q",
			mode, constants.ModeSequential, constants.ModePool, constants.ModeChunked)
	}
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
