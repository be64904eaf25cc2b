package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the daemon's Prometheus instruments. All instruments are
// registered on a private registry so tests can run several daemons in one
// process.
type Metrics struct {
	Registry *prometheus.Registry

	QueriesTotal     prometheus.Counter
	MatchesTotal     prometheus.Counter
	RequestsTotal    prometheus.Counter
	BadRequestsTotal prometheus.Counter
	RebuildsTotal    prometheus.Counter
	ScanDuration     prometheus.Histogram
	PatternsLoaded   prometheus.Gauge
	TrieBlocks       prometheus.Gauge
}

// NewMetrics creates and registers the daemon's instruments.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		QueriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "patmatch_queries_total",
			Help: "Query strings matched against the index.",
		}),
		MatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "patmatch_matches_total",
			Help: "Match results emitted.",
		}),
		RequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "patmatch_requests_total",
			Help: "Wire requests handled.",
		}),
		BadRequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "patmatch_bad_requests_total",
			Help: "Malformed requests rejected with status 400.",
		}),
		RebuildsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "patmatch_rebuilds_total",
			Help: "Pattern-file hot reloads.",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "patmatch_scan_duration_seconds",
			Help:    "Wall time of one input scan.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		PatternsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "patmatch_patterns_loaded",
			Help: "Patterns in the current index.",
		}),
		TrieBlocks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "patmatch_trie_blocks",
			Help: "Allocated trie blocks in the current index.",
		}),
	}
}
