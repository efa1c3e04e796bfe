package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricebot_queries_total",
			Help: "Total number of routed queries by kind",
		},
		[]string{"kind"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricebot_cache_hits_total",
			Help: "Total number of response cache hits by kind",
		},
		[]string{"kind"},
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricebot_source_failures_total",
			Help: "Total number of source lookups that failed and degraded to not-found",
		},
		[]string{"source"},
	)

	SourceTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricebot_source_timeouts_total",
			Help: "Total number of source lookups that exceeded the per-source deadline",
		},
		[]string{"source"},
	)

	MergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pricebot_broadcast_merge_seconds",
			Help: "Time from broadcast dispatch until the merge fired",
		},
	)
)
