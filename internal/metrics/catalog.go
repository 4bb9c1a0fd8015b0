package metrics

import "github.com/prometheus/client_golang/prometheus"

// Field catalog Prometheus metrics.
var (
	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dataextract",
			Name:      "catalog_cache_total",
			Help:      "Field catalog cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CatalogBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dataextract",
			Name:      "catalog_build_duration_seconds",
			Help:      "Time to assemble the field catalog",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"source"}, // "cache" / "scan"
	)

	CatalogFields = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dataextract",
			Name:      "catalog_fields",
			Help:      "Number of field records in the last built catalog",
		},
		[]string{"partition"}, // "persisted" / "ephemeral"
	)

	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dataextract",
			Name:      "extractions_total",
			Help:      "Objects run through the data collector",
		},
		[]string{"mode", "status"}, // mode: "push" / "single"
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers the catalog and extraction metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogCacheTotal)
	prometheus.MustRegister(CatalogBuildDuration)
	prometheus.MustRegister(CatalogFields)
	prometheus.MustRegister(ExtractionsTotal)
	catalogMetricsRegistered = true
}
