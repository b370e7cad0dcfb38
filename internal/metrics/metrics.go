// Package metrics defines the Prometheus instrumentation for Groupify.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ParsesTotal counts receipt parses, labeled by whether the fallback
	// extraction pass had to run.
	ParsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupify_parses_total",
		Help: "Number of receipt parses.",
	}, []string{"fallback"})

	// ItemsExtracted counts parsed line items after duplicate merging.
	ItemsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupify_items_extracted_total",
		Help: "Number of unique items extracted from receipts.",
	})

	// DuplicatesMerged counts raw items absorbed into another during
	// duplicate merging.
	DuplicatesMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupify_duplicates_merged_total",
		Help: "Number of near-duplicate items merged away.",
	})

	// SettlementsComputed counts emitted settlements.
	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupify_settlements_computed_total",
		Help: "Number of settlement transactions produced.",
	})

	// RequestDuration tracks HTTP handler latency, labeled by method and
	// matched route pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "groupify_http_request_duration_seconds",
		Help:    "HTTP request duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
