package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import metrics
var (
	// ImportsTotal counts import runs by result ("success" or "failure")
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_catalog_imports_total",
		Help: "Total number of playlist imports",
	}, []string{"result"})

	// ImportDuration tracks how long an import takes end to end
	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "iptv_catalog_import_duration_seconds",
		Help:    "Playlist import duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// EntriesClassified counts playlist entries by the route they took
	EntriesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_catalog_entries_classified_total",
		Help: "Total number of playlist entries by classification",
	}, []string{"kind"})

	// SourceFetchErrors counts failed playlist downloads
	SourceFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_catalog_source_fetch_errors_total",
		Help: "Total number of failed playlist downloads",
	})

	// CacheFallbacks counts downloads answered from the playlist cache
	CacheFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_catalog_cache_fallbacks_total",
		Help: "Total number of playlist downloads served from cache after a failure",
	})

	// CatalogSize tracks the number of stored items by kind
	CatalogSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_catalog_items",
		Help: "Number of items in the catalog",
	}, []string{"kind"})

	// HealthCheckFailures tracks health check failures
	HealthCheckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_catalog_health_check_failures_total",
		Help: "Total number of health check failures",
	})
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_catalog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iptv_catalog_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_catalog_http_requests_in_flight",
		Help: "Number of HTTP requests currently being processed",
	})
)

// RecordImport records the outcome and duration of an import run
func RecordImport(success bool, seconds float64) {
	result := "success"
	if !success {
		result = "failure"
	}
	ImportsTotal.WithLabelValues(result).Inc()
	ImportDuration.Observe(seconds)
}

// RecordEntries adds classification counts for one import
func RecordEntries(channels, movies, episodes, duplicates, discarded int) {
	EntriesClassified.WithLabelValues("channel").Add(float64(channels))
	EntriesClassified.WithLabelValues("movie").Add(float64(movies))
	EntriesClassified.WithLabelValues("episode").Add(float64(episodes))
	EntriesClassified.WithLabelValues("duplicate").Add(float64(duplicates))
	EntriesClassified.WithLabelValues("discarded").Add(float64(discarded))
}

// RecordSourceFetchError increments the failed download counter
func RecordSourceFetchError() {
	SourceFetchErrors.Inc()
}

// RecordCacheFallback increments the cache fallback counter
func RecordCacheFallback() {
	CacheFallbacks.Inc()
}

// SetCatalogSize sets the number of stored movies and series
func SetCatalogSize(movies, series int) {
	CatalogSize.WithLabelValues("movie").Set(float64(movies))
	CatalogSize.WithLabelValues("series").Set(float64(series))
}

// RecordHealthCheckFailure increments the health check failure counter
func RecordHealthCheckFailure() {
	HealthCheckFailures.Inc()
}
