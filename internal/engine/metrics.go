package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the engine's operational counters. Constructed once per
// process; tests pass their own registry to avoid duplicate registration.
type Metrics struct {
	FitTotal    prometheus.Counter
	FitDuration prometheus.Histogram
	FitItems    prometheus.Gauge
	Queries     *prometheus.CounterVec
	CacheHits   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FitTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommender_fit_total",
			Help: "Number of completed model fits.",
		}),
		FitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommender_fit_duration_seconds",
			Help:    "Wall time spent rebuilding the vector space.",
			Buckets: prometheus.DefBuckets,
		}),
		FitItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "recommender_fit_items",
			Help: "Catalog items in the current fit.",
		}),
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recommender_queries_total",
			Help: "Engine queries served, by operation.",
		}, []string{"operation"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommender_cache_hits_total",
			Help: "Warm cache hits for similar-item queries.",
		}),
	}
}
