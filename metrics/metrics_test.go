package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(promhttp.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}

func TestMetricsEndpoint(t *testing.T) {
	RecordImport(true, 0.2)
	RecordEntries(0, 0, 0, 0, 0)
	RecordSourceFetchError()
	RecordCacheFallback()
	SetCatalogSize(0, 0)
	RecordHealthCheckFailure()
	HTTPRequestsTotal.WithLabelValues("GET", "/api/movies", "200").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/api/movies").Observe(0.01)

	output := scrape(t)

	expectedMetrics := []string{
		"iptv_catalog_imports_total",
		"iptv_catalog_import_duration_seconds",
		"iptv_catalog_entries_classified_total",
		"iptv_catalog_source_fetch_errors_total",
		"iptv_catalog_cache_fallbacks_total",
		"iptv_catalog_items",
		"iptv_catalog_health_check_failures_total",
		"iptv_catalog_http_requests_total",
		"iptv_catalog_http_request_duration_seconds",
		"iptv_catalog_http_requests_in_flight",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(output, metric) {
			t.Errorf("Expected metric %s not found in output", metric)
		}
	}
}

func TestRecordImport(t *testing.T) {
	success := testutil.ToFloat64(ImportsTotal.WithLabelValues("success"))
	failure := testutil.ToFloat64(ImportsTotal.WithLabelValues("failure"))

	RecordImport(true, 1)
	RecordImport(false, 1)
	RecordImport(false, 1)

	if got := testutil.ToFloat64(ImportsTotal.WithLabelValues("success")) - success; got != 1 {
		t.Errorf("expected 1 successful import, got %v", got)
	}
	if got := testutil.ToFloat64(ImportsTotal.WithLabelValues("failure")) - failure; got != 2 {
		t.Errorf("expected 2 failed imports, got %v", got)
	}
}

func TestRecordEntries(t *testing.T) {
	before := map[string]float64{}
	kinds := []string{"channel", "movie", "episode", "duplicate", "discarded"}
	for _, kind := range kinds {
		before[kind] = testutil.ToFloat64(EntriesClassified.WithLabelValues(kind))
	}

	RecordEntries(1, 2, 3, 4, 5)

	for i, kind := range kinds {
		got := testutil.ToFloat64(EntriesClassified.WithLabelValues(kind)) - before[kind]
		if got != float64(i+1) {
			t.Errorf("kind %s: expected %d, got %v", kind, i+1, got)
		}
	}
}

func TestSetCatalogSize(t *testing.T) {
	SetCatalogSize(7, 3)

	output := scrape(t)
	for _, line := range []string{
		`iptv_catalog_items{kind="movie"} 7`,
		`iptv_catalog_items{kind="series"} 3`,
	} {
		if !strings.Contains(output, line) {
			t.Errorf("Expected to find %s in output", line)
		}
	}
}
