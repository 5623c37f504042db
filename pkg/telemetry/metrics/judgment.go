// Package metrics exposes Prometheus metrics for the judgment engine and
// its circuit breakers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/config"
)

// JudgmentMetrics tracks judgment throughput, latency and cache
// effectiveness.
//
// Metrics:
//   - saturn_judge_judgments_total: judgments by policy, source and decision
//   - saturn_judge_judgment_duration_seconds: end-to-end judgment duration
//   - saturn_judge_cache_hits_total / cache_misses_total / cache_writes_total
type JudgmentMetrics struct {
	judgmentsTotal   *prometheus.CounterVec
	judgmentDuration *prometheus.HistogramVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheWrites prometheus.Counter
}

// NewJudgmentMetrics creates and registers judgment metrics with the
// provided registry.
func NewJudgmentMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JudgmentMetrics {
	m := &JudgmentMetrics{
		judgmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "judgments_total",
				Help:      "Total number of judgments by policy, source and decision",
			},
			[]string{"policy", "source", "decision"},
		),

		judgmentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "judgment_duration_seconds",
				Help:      "End-to-end judgment duration in seconds",
				// Rule-only judgments finish in microseconds; inference
				// judgments can take tens of seconds.
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"policy"},
		),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of judgment cache hits",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of judgment cache misses",
		}),

		cacheWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_writes_total",
			Help:      "Total number of judgment results written to the cache",
		}),
	}

	registry.MustRegister(
		m.judgmentsTotal,
		m.judgmentDuration,
		m.cacheHits,
		m.cacheMisses,
		m.cacheWrites,
	)

	return m
}

// RecordJudgment records one completed judgment. Nil receivers are no-ops
// so callers can run without metrics wired.
func (m *JudgmentMetrics) RecordJudgment(policy, source, decision string, duration time.Duration) {
	if m == nil {
		return
	}
	m.judgmentsTotal.WithLabelValues(policy, source, decision).Inc()
	m.judgmentDuration.WithLabelValues(policy).Observe(duration.Seconds())
}

// RecordCacheHit records a judgment served from the cache.
func (m *JudgmentMetrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// RecordCacheMiss records a judgment that had to be evaluated.
func (m *JudgmentMetrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// RecordCacheWrite records a result written to the cache.
func (m *JudgmentMetrics) RecordCacheWrite() {
	if m == nil {
		return
	}
	m.cacheWrites.Inc()
}
