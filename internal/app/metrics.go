package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes
const (
	OutcomeMatched       = "matched"
	OutcomeUnmatched     = "unmatched"
	OutcomeInvalidRoutes = "invalid_routes"
)

var (
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tomme_lookups_total",
			Help: "Address lookups by outcome",
		},
		[]string{"outcome"},
	)

	RouteDecodeWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tomme_route_decode_warnings_total",
			Help: "Route codes of matched properties that failed to decode",
		},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tomme_render_duration_seconds",
			Help:    "Time spent laying out a calendar year",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		},
	)

	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tomme_dataset_records",
			Help: "Records in the currently loaded dataset",
		},
	)

	RenderCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tomme_render_cache_total",
			Help: "PNG render cache lookups by result",
		},
		[]string{"result"},
	)
)
