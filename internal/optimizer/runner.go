// Package optimizer searches the rung count (risk-reward value) that yields
// the best ladder for a price zone, and bounds the risk budget by a maximum
// position size.
package optimizer

import (
	"fmt"
	"time"

	"github.com/iwvelando/risk-ladder/internal/config"
	"github.com/iwvelando/risk-ladder/pkg/parallel"
	"go.uber.org/zap"
)

// Observer receives search statistics. Implementations must be safe for
// concurrent use since bound trials report in parallel.
type Observer interface {
	CandidatesEvaluated(strategy string, valid, invalid int)
	SearchFinished(strategy string, elapsed time.Duration, found bool)
	BatchTried(trials int, withinCap bool)
}

type nopObserver struct{}

func (nopObserver) CandidatesEvaluated(string, int, int) {}
func (nopObserver) SearchFinished(string, time.Duration, bool) {}
func (nopObserver) BatchTried(int, bool) {}

// Runner evaluates candidate ladders with a fixed search configuration.
type Runner struct {
	logger     *zap.Logger
	conf       config.SearchConfig
	dispatcher parallel.Dispatcher
	observer   Observer
}

// Option customizes a Runner.
type Option func(*Runner)

// WithDispatcher overrides the dispatcher selected by the configured mode.
func WithDispatcher(d parallel.Dispatcher) Option {
	return func(r *Runner) {
		if d != nil {
			r.dispatcher = d
		}
	}
}

// WithObserver registers an Observer for search statistics.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewRunner constructs a Runner for the provided search configuration.
func NewRunner(logger *zap.Logger, conf config.SearchConfig, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search configuration: %w", err)
	}

	dispatcher, err := parallel.FromMode(conf.Mode, conf.Workers)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		logger:     logger,
		conf:       conf,
		dispatcher: dispatcher,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the normalized search configuration.
func (r *Runner) Config() config.SearchConfig {
	return r.conf
}
