package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "catalog"

// Metrics instruments the unit of work. A nil *Metrics records nothing.
type Metrics struct {
	LockWait      prometheus.Histogram
	LockTimeouts  prometheus.Counter
	StaleReclaims prometheus.Counter
	Commits       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for the catalog file lock",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		LockTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lock_timeouts_total",
			Help:      "Lock acquisitions that gave up after the timeout",
		}),
		StaleReclaims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lock_stale_reclaims_total",
			Help:      "Stale lock files removed by a waiter",
		}),
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commits_total",
			Help:      "Catalog file commits by result",
		}, []string{"result"}),
	}

	reg.MustRegister(m.LockWait, m.LockTimeouts, m.StaleReclaims, m.Commits)
	return m
}

func (m *Metrics) observeLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.LockWait.Observe(d.Seconds())
}

func (m *Metrics) lockTimeout() {
	if m == nil {
		return
	}
	m.LockTimeouts.Inc()
}

func (m *Metrics) staleReclaim() {
	if m == nil {
		return
	}
	m.StaleReclaims.Inc()
}

func (m *Metrics) commit(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Commits.WithLabelValues(result).Inc()
}
