package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(buildInfo, dbPoolConns, dbPoolEmptyAcquires, productCacheRequests) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_build_info",
			Help: "Always 1; labels carry the running version and commit.",
		},
		[]string{"version", "commit"},
	)

	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_db_pool_connections",
			Help: "Postgres pool connections by state.",
		},
		[]string{"state"}, // total|idle|in_use
	)

	// pgxpool reports a cumulative count, so this is a gauge mirroring it.
	dbPoolEmptyAcquires = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_db_pool_empty_acquires",
			Help: "Acquires that had to wait for a connection since start.",
		},
	)

	productCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_product_cache_requests_total",
			Help: "Product catalog cache lookups by key kind and result.",
		},
		[]string{"cache", "result"}, // cache=product|product_list, result=hit|miss
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}

func SetDBPoolStats(total, idle, inUse int32, emptyAcquires int64) {
	dbPoolConns.WithLabelValues("total").Set(float64(total))
	dbPoolConns.WithLabelValues("idle").Set(float64(idle))
	dbPoolConns.WithLabelValues("in_use").Set(float64(inUse))
	dbPoolEmptyAcquires.Set(float64(emptyAcquires))
}

func IncCacheRequest(cache, result string) {
	productCacheRequests.WithLabelValues(norm(cache), norm(result)).Inc()
}
