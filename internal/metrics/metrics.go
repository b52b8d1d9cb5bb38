package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the signal engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SourceRequests *prometheus.CounterVec // labels: source, result
	Fallbacks      prometheus.Counter
	CacheLookups   *prometheus.CounterVec // labels: stage, result
	Decisions      *prometheus.CounterVec // labels: strategy, decision
	AssetsSkipped  prometheus.Counter
	BarsRejected   prometheus.Counter
	BatchDuration  prometheus.Histogram
}

// New creates the collectors and registers them with reg (skipped when reg is nil).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_source_requests_total",
			Help: "Market data source requests by source and result",
		}, []string{"source", "result"}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_source_fallbacks_total",
			Help: "Requests served by a source other than the primary",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_cache_lookups_total",
			Help: "Series cache lookups by stage and result",
		}, []string{"stage", "result"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_decisions_total",
			Help: "Decisions produced by strategy and label",
		}, []string{"strategy", "decision"}),
		AssetsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_assets_skipped_total",
			Help: "Assets left out of a batch for lack of data",
		}),
		BarsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signals_bars_rejected_total",
			Help: "Malformed bars dropped before indicator computation",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signals_batch_duration_seconds",
			Help:    "Wall time of one summary batch",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SourceRequests, m.Fallbacks, m.CacheLookups, m.Decisions,
			m.AssetsSkipped, m.BarsRejected, m.BatchDuration,
		)
	}
	return m
}

func (m *Metrics) SourceRequest(source, result string) {
	if m == nil {
		return
	}
	m.SourceRequests.WithLabelValues(source, result).Inc()
}

func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.Fallbacks.Inc()
}

func (m *Metrics) CacheLookup(stage string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) Decision(strategy, decision string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(strategy, decision).Inc()
}

func (m *Metrics) AssetSkipped() {
	if m == nil {
		return
	}
	m.AssetsSkipped.Inc()
}

func (m *Metrics) BarRejected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BarsRejected.Add(float64(n))
}

// ObserveBatch records the time elapsed since start.
func (m *Metrics) ObserveBatch(start time.Time) {
	if m == nil {
		return
	}
	m.BatchDuration.Observe(time.Since(start).Seconds())
}
