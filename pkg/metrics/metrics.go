package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records roster generation metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	solveDuration    prometheus.Histogram
	unassignedDays   prometheus.Histogram
	attemptsPerSolve prometheus.Histogram
}

// NewCollector creates a collector with Go runtime metrics included
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_requests_total",
				Help: "Roster API requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		solveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roster_solve_duration_seconds",
				Help:    "Time spent generating a roster, all attempts included",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),
		unassignedDays: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roster_unassigned_days",
				Help:    "Days left unassigned in a generated roster",
				Buckets: prometheus.LinearBuckets(0, 2, 16),
			},
		),
		attemptsPerSolve: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roster_attempts_per_solve",
				Help:    "Shuffled attempts made per roster generation",
				Buckets: prometheus.ExponentialBuckets(1, 2, 7),
			},
		),
	}
}

// ObserveRequest counts one request for operation with the given outcome
func (c *Collector) ObserveRequest(operation, outcome string) {
	c.requestsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveSolve records one completed generation
func (c *Collector) ObserveSolve(elapsed time.Duration, unassigned, attempts int) {
	c.solveDuration.Observe(elapsed.Seconds())
	c.unassignedDays.Observe(float64(unassigned))
	c.attemptsPerSolve.Observe(float64(attempts))
}

// Handler exposes the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
