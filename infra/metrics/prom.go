package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/emberops/wildfire/core/metrics"
)

// PromSink records allocation outcomes in Prometheus metrics.
type PromSink struct {
	incidents *prometheus.CounterVec
	costs     *prometheus.CounterVec
	solve     *prometheus.HistogramVec
}

// NewPromSink registers allocation metrics on the default Prometheus
// registerer. The /metrics server is started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	incidents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wildfire_incidents_total",
		Help: "Total number of processed incidents by severity and outcome",
	}, []string{"severity", "outcome", "strategy"})
	costs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wildfire_cost_total",
		Help: "Accumulated operational and damage costs",
	}, []string{"kind", "strategy"})
	solve := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wildfire_solve_duration_seconds",
		Help:    "Time spent allocating one day's incident batch",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	if err := reg.Register(incidents); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			incidents = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(costs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			costs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(solve); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solve = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{incidents: incidents, costs: costs, solve: solve}, nil
}

// RecordAllocations increments the incident and cost counters.
func (s *PromSink) RecordAllocations(records []coremetrics.AllocationRecord) error {
	for _, r := range records {
		outcome := "missed"
		if r.Addressed {
			outcome = "addressed"
		}
		s.incidents.WithLabelValues(r.Severity.String(), outcome, r.Strategy).Inc()
		if r.Addressed {
			s.costs.WithLabelValues("operational", r.Strategy).Add(r.Cost)
		} else {
			s.costs.WithLabelValues("damage", r.Strategy).Add(r.DamageCost)
		}
	}
	return nil
}

// RecordSolve observes the per-day allocation duration.
func (s *PromSink) RecordSolve(stat coremetrics.SolveStat) error {
	s.solve.WithLabelValues(stat.Strategy).Observe(stat.Duration.Seconds())
	return nil
}
