// Package metrics exposes Prometheus collectors for the risk-reward search.
//
// Exposed series:
//   - risk_ladder_candidates_total{strategy,result}: ladders built per search (valid|invalid)
//   - risk_ladder_searches_total{strategy,outcome}: finished searches (found|not_found)
//   - risk_ladder_search_duration_seconds{strategy}: search wall time
//   - risk_ladder_bound_batches_total{within_cap}: bound-search batches tried
//   - risk_ladder_bound_trials_total: bound-search trials dispatched
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records search statistics. It satisfies optimizer.Observer.
type Collector struct {
	registry   *prometheus.Registry
	candidates *prometheus.CounterVec
	searches   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	batches    *prometheus.CounterVec
	trials     prometheus.Counter
}

// NewCollector registers the search collectors on a private registry, along
// with the Go runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_ladder_candidates_total",
				Help: "Candidate ladders built, split by validity",
			},
			[]string{"strategy", "result"},
		),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_ladder_searches_total",
				Help: "Risk-reward searches finished, split by outcome",
			},
			[]string{"strategy", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "risk_ladder_search_duration_seconds",
				Help:    "Wall time of a risk-reward search",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"strategy"},
		),
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_ladder_bound_batches_total",
				Help: "Bound-search batches tried, split by whether every result stayed under the cap",
			},
			[]string{"within_cap"},
		),
		trials: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "risk_ladder_bound_trials_total",
				Help: "Bound-search risk trials dispatched",
			},
		),
	}

	c.registry.MustRegister(
		c.candidates,
		c.searches,
		c.duration,
		c.batches,
		c.trials,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// CandidatesEvaluated counts the ladders built for one search.
func (c *Collector) CandidatesEvaluated(strategy string, valid, invalid int) {
	c.candidates.WithLabelValues(strategy, "valid").Add(float64(valid))
	c.candidates.WithLabelValues(strategy, "invalid").Add(float64(invalid))
}

// SearchFinished records the outcome and duration of a search.
func (c *Collector) SearchFinished(strategy string, elapsed time.Duration, found bool) {
	outcome := "not_found"
	if found {
		outcome = "found"
	}
	c.searches.WithLabelValues(strategy, outcome).Inc()
	c.duration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// BatchTried records one bound-search batch.
func (c *Collector) BatchTried(trials int, withinCap bool) {
	c.batches.WithLabelValues(strconv.FormatBool(withinCap)).Inc()
	c.trials.Add(float64(trials))
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
