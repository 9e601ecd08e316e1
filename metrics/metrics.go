package metrics

import (
	"github.com/katalog-cli/katalog/constant"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.Katalog,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: constant.Katalog,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "route"})

	SourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.Katalog,
		Name:      "source_requests_total",
		Help:      "Total searches sent to sources by source name and result status.",
	}, []string{"source", "status"})

	SourceRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: constant.Katalog,
		Name:      "source_request_duration_seconds",
		Help:      "Source search duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"source"})

	SourceAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: constant.Katalog,
		Name:      "source_available",
		Help:      "Whether a source is available (1) or blocked after repeated failures (0).",
	}, []string{"source"})

	SourceResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: constant.Katalog,
		Name:      "source_results",
		Help:      "Raw results returned per source search.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	}, []string{"source"})

	MergedItems = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: constant.Katalog,
		Name:      "merged_items",
		Help:      "Catalog items produced by one aggregation.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: constant.Katalog,
		Name:      "cache_hits_total",
		Help:      "Total number of catalog cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: constant.Katalog,
		Name:      "cache_misses_total",
		Help:      "Total number of catalog cache misses.",
	})

	CacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: constant.Katalog,
		Name:      "cache_entries",
		Help:      "Cached query results currently held.",
	})

	WarmerRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.Katalog,
		Name:      "warmer_runs_total",
		Help:      "Cache warmer runs by result status.",
	}, []string{"status"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		SourceRequestsTotal,
		SourceRequestDuration,
		SourceAvailable,
		SourceResults,
		MergedItems,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEntries,
		WarmerRunsTotal,
	)
}
