// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Price resolver metrics
	PriceLookupsTotal *prometheus.CounterVec
	PriceCacheHits    prometheus.Counter
	PriceCacheMisses  prometheus.Counter

	// Upstream metrics
	UpstreamCallDuration *prometheus.HistogramVec
	UpstreamCallErrors   *prometheus.CounterVec

	// Engine metrics
	TransactionsClassified *prometheus.CounterVec
	TransactionsDropped    prometheus.Counter
	TimelinePoints         prometheus.Histogram

	// Watcher metrics
	WalletRefreshesTotal *prometheus.CounterVec
	WatchedWallets       prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_pnl"
	}

	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status class",
		}, []string{"route", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"route"}),

		PriceLookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "lookups_total",
			Help:      "Price resolutions by serving tier (unknown = every tier exhausted)",
		}, []string{"tier"}),
		PriceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "cache_hits_total",
			Help:      "Price cache hits, including cached confirmed-unknown entries",
		}),
		PriceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "cache_misses_total",
			Help:      "Price cache misses",
		}),

		UpstreamCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "External call latency by upstream",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 8},
		}, []string{"upstream"}),
		UpstreamCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_errors_total",
			Help:      "External call failures by upstream",
		}, []string{"upstream"}),

		TransactionsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "transactions_classified_total",
			Help:      "Classified transactions by type",
		}, []string{"type"}),
		TransactionsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "transactions_dropped_total",
			Help:      "Raw transactions dropped as neither token nor native movement",
		}),
		TimelinePoints: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "timeline_points",
			Help:      "Timeline length per analysis",
			Buckets:   []float64{0, 1, 7, 30, 90, 180, 365},
		}),

		WalletRefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "wallet_refreshes_total",
			Help:      "Background wallet history refreshes by outcome",
		}, []string{"outcome"}),
		WatchedWallets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "watched_wallets",
			Help:      "Wallets currently subscribed for activity notifications",
		}),
	}
}

// DefaultMetrics is the process-wide metrics instance.
var DefaultMetrics = NewMetrics("")

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one HTTP request.
func RecordRequest(route, status string, seconds float64) {
	DefaultMetrics.RequestsTotal.WithLabelValues(route, status).Inc()
	DefaultMetrics.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordPriceLookup records which tier served a price resolution.
func RecordPriceLookup(tier string) {
	DefaultMetrics.PriceLookupsTotal.WithLabelValues(tier).Inc()
}

// RecordPriceCache records a cache probe.
func RecordPriceCache(hit bool) {
	if hit {
		DefaultMetrics.PriceCacheHits.Inc()
	} else {
		DefaultMetrics.PriceCacheMisses.Inc()
	}
}

// RecordUpstreamCall records an external call's latency and outcome.
func RecordUpstreamCall(upstream string, seconds float64, err error) {
	DefaultMetrics.UpstreamCallDuration.WithLabelValues(upstream).Observe(seconds)
	if err != nil {
		DefaultMetrics.UpstreamCallErrors.WithLabelValues(upstream).Inc()
	}
}

// RecordClassified records one classified transaction.
func RecordClassified(txType string) {
	DefaultMetrics.TransactionsClassified.WithLabelValues(txType).Inc()
}

// RecordDropped records a raw transaction dropped by the classifier.
func RecordDropped() {
	DefaultMetrics.TransactionsDropped.Inc()
}

// RecordTimeline records the timeline length of one analysis.
func RecordTimeline(points int) {
	DefaultMetrics.TimelinePoints.Observe(float64(points))
}

// RecordWalletRefresh records a background refresh outcome.
func RecordWalletRefresh(outcome string) {
	DefaultMetrics.WalletRefreshesTotal.WithLabelValues(outcome).Inc()
}

// SetWatchedWallets updates the watched wallet gauge.
func SetWatchedWallets(n int) {
	DefaultMetrics.WatchedWallets.Set(float64(n))
}
