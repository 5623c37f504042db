package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/breaker"
	"mercator-hq/saturn/pkg/config"
)

// BreakerCollector exports circuit breaker state on scrape rather than on
// event, so breaker internals stay free of metrics plumbing.
type BreakerCollector struct {
	registry *breaker.Registry

	stateDesc    *prometheus.Desc
	callsDesc    *prometheus.Desc
	rejectedDesc *prometheus.Desc
	failuresDesc *prometheus.Desc
}

var stateValues = map[breaker.State]float64{
	breaker.Closed:   0,
	breaker.Open:     1,
	breaker.HalfOpen: 2,
}

// NewBreakerCollector creates and registers a collector over reg's
// breakers.
func NewBreakerCollector(cfg *config.MetricsConfig, promReg *prometheus.Registry, reg *breaker.Registry) *BreakerCollector {
	fqname := func(name string) string {
		return prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, name)
	}
	c := &BreakerCollector{
		registry: reg,
		stateDesc: prometheus.NewDesc(fqname("breaker_state"),
			"Circuit state (0 closed, 1 open, 2 half-open)", []string{"circuit"}, nil),
		callsDesc: prometheus.NewDesc(fqname("breaker_calls_total"),
			"Total calls attempted through the breaker", []string{"circuit"}, nil),
		rejectedDesc: prometheus.NewDesc(fqname("breaker_rejected_total"),
			"Calls rejected while the circuit was open", []string{"circuit"}, nil),
		failuresDesc: prometheus.NewDesc(fqname("breaker_failures_total"),
			"Failed calls recorded by the breaker", []string{"circuit"}, nil),
	}
	promReg.MustRegister(c)
	return c
}

func (c *BreakerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.stateDesc
	ch <- c.callsDesc
	ch <- c.rejectedDesc
	ch <- c.failuresDesc
}

func (c *BreakerCollector) Collect(ch chan<- prometheus.Metric) {
	for name, status := range c.registry.ListAll() {
		ch <- prometheus.MustNewConstMetric(c.stateDesc, prometheus.GaugeValue,
			stateValues[status.State], name)
		ch <- prometheus.MustNewConstMetric(c.callsDesc, prometheus.CounterValue,
			float64(status.Stats.TotalCalls), name)
		ch <- prometheus.MustNewConstMetric(c.rejectedDesc, prometheus.CounterValue,
			float64(status.Stats.RejectedCalls), name)
		ch <- prometheus.MustNewConstMetric(c.failuresDesc, prometheus.CounterValue,
			float64(status.Stats.FailedCalls), name)
	}
}
