package daemon

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics owns a private registry so tests can build many services.
type metrics struct {
	registry *prometheus.Registry

	polls       prometheus.Counter
	pollErrors  prometheus.Counter
	pollSeconds prometheus.Histogram
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	throttled   prometheus.Counter

	entries        prometheus.Gauge
	assumptions    prometheus.Gauge
	currentBalance prometheus.Gauge
	endingBalance  prometheus.Gauge
	runwayMonths   prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cflow_polls_total",
			Help: "Ledger polls attempted.",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cflow_poll_errors_total",
			Help: "Ledger polls that failed to load data.",
		}),
		pollSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cflow_poll_duration_seconds",
			Help:    "Time spent loading the ledger and running the projection.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cflow_projection_cache_hits_total",
			Help: "Projection requests served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cflow_projection_cache_misses_total",
			Help: "Projection requests that ran the simulator.",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cflow_http_throttled_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cflow_ledger_entries",
			Help: "Ledger entries loaded on the last poll.",
		}),
		assumptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cflow_assumptions",
			Help: "Assumptions loaded on the last poll.",
		}),
		currentBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cflow_current_balance_usd",
			Help: "Running balance at the actuals cutoff.",
		}),
		endingBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cflow_ending_balance_usd",
			Help: "Projected balance at the end of the horizon.",
		}),
		runwayMonths: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cflow_runway_months",
			Help: "Months of runway at the trailing burn rate; +Inf when not burning.",
		}),
	}
	m.registry.MustRegister(
		m.polls, m.pollErrors, m.pollSeconds,
		m.cacheHits, m.cacheMisses, m.throttled,
		m.entries, m.assumptions,
		m.currentBalance, m.endingBalance, m.runwayMonths,
	)
	return m
}

func (m *metrics) observe(snap Snapshot, took time.Duration) {
	m.pollSeconds.Observe(took.Seconds())
	m.entries.Set(float64(snap.Entries))
	m.assumptions.Set(float64(snap.Assumptions))
	m.currentBalance.Set(snap.CurrentBalance)
	m.endingBalance.Set(snap.EndingBalance)
	if snap.RunwayInfinite {
		m.runwayMonths.Set(math.Inf(1))
	} else {
		m.runwayMonths.Set(snap.RunwayMonths)
	}
}
