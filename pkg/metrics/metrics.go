package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Provider metrics
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Upstream provider call duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "capability", "status"},
	)
	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Upstream provider failures (timeout, non-2xx, bad payload)",
		},
		[]string{"provider", "capability"},
	)
	ProviderUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_unavailable_total",
			Help: "Provider calls skipped because no credential is configured",
		},
		[]string{"provider", "capability"},
	)

	// Aggregation metrics
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "End-to-end symbol analysis duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"asset_type", "status"},
	)
	ArticlesMerged = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_articles_merged",
			Help:    "Articles collected across news providers before dedup",
			Buckets: []float64{0, 5, 10, 25, 50, 100},
		})
	ArticlesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "news_articles_dropped_total",
			Help: "Duplicate articles dropped during reconciliation",
		})
	EarningsFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "earnings_estimated_fallback_total",
			Help: "Requests served with a synthesized earnings record",
		})

	// Cache metrics
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_cache_hits_total",
			Help: "Analysis responses served from the short-TTL cache",
		})
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_cache_misses_total",
			Help: "Analysis cache lookups that missed",
		})
	CacheErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_cache_errors_total",
			Help: "Cache read/write errors",
		})

	// API metrics
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
	APIRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "api_rate_limited_total",
			Help: "Requests rejected by the per-IP limiter",
		})
)

func init() {
	// MustRegister panics if registration fails (e.g. duplicate)
	prometheus.MustRegister(
		ProviderRequestDuration, ProviderErrors, ProviderUnavailable,
		AnalysisDuration, ArticlesMerged, ArticlesDropped, EarningsFallbacks,
		CacheHits, CacheMisses, CacheErrors,
		APIRequestDuration, APIRequestTotal, RateLimited,
	)
}

// Handler exposes the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
