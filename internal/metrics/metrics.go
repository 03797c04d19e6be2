// Package metrics exposes Prometheus collectors for the tickerscout service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal         *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	inflightFetches      prometheus.Gauge
	nodesTotal           *prometheus.CounterVec
	mentionsTotal        prometheus.Counter
	persistFailuresTotal prometheus.Counter
	cooldownsTotal       prometheus.Counter
	registrySymbols      *prometheus.GaugeVec
	httpRequestsTotal    *prometheus.CounterVec
	httpDurationSeconds  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call more than
// once; only the first call registers anything.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickerscout_fetches_total",
				Help: "Total tier fetches issued, labeled by tier and outcome.",
			},
			[]string{"tier", "outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tickerscout_fetch_duration_seconds",
				Help:    "Histogram of tier fetch latencies, labeled by tier.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"tier"},
		)

		inflightFetches = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tickerscout_inflight_fetches",
				Help: "Number of fetches currently holding a concurrency permit.",
			},
		)

		nodesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickerscout_nodes_total",
				Help: "Total traversal nodes processed, labeled by tier and outcome.",
			},
			[]string{"tier", "outcome"},
		)

		mentionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tickerscout_mentions_persisted_total",
				Help: "Total validated mentions written to the store.",
			},
		)

		persistFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tickerscout_persist_failures_total",
				Help: "Total mention batches rejected by the store.",
			},
		)

		cooldownsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tickerscout_rate_limit_cooldowns_total",
				Help: "Total rate-limit cooldowns observed by the fetch client.",
			},
		)

		registrySymbols = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tickerscout_registry_symbols",
				Help: "Size of the loaded ticker registry, labeled by source.",
			},
			[]string{"source"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickerscout_http_requests_total",
				Help: "Total ops endpoint requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tickerscout_http_request_duration_seconds",
				Help:    "Histogram of ops endpoint latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one tier fetch and its duration.
func ObserveFetch(tier, outcome string, duration time.Duration) {
	fetchesTotal.WithLabelValues(tier, outcome).Inc()
	fetchDurationSeconds.WithLabelValues(tier).Observe(duration.Seconds())
}

// IncInflightFetches increments the in-flight fetch gauge.
func IncInflightFetches() {
	inflightFetches.Inc()
}

// DecInflightFetches decrements the in-flight fetch gauge.
func DecInflightFetches() {
	inflightFetches.Dec()
}

// ObserveNode records one processed traversal node.
func ObserveNode(tier, outcome string) {
	nodesTotal.WithLabelValues(tier, outcome).Inc()
}

// AddMentionsPersisted adds n to the persisted-mention counter.
func AddMentionsPersisted(n int) {
	if n > 0 {
		mentionsTotal.Add(float64(n))
	}
}

// IncPersistFailures increments the rejected-batch counter.
func IncPersistFailures() {
	persistFailuresTotal.Inc()
}

// IncCooldowns increments the rate-limit cooldown counter.
func IncCooldowns() {
	cooldownsTotal.Inc()
}

// SetRegistrySymbols records the size of the loaded registry snapshot.
func SetRegistrySymbols(source string, n int) {
	registrySymbols.WithLabelValues(source).Set(float64(n))
}

// ObserveHTTPRequest records one ops endpoint request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
