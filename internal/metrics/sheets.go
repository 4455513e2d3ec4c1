package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(sheetFetchTotal, sheetFetchDuration, cacheRequestsTotal)
}

var (
	sheetFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_fetch_total",
			Help: "Table fetches from the spreadsheet, by table and result.",
		},
		[]string{"table", "result"}, // result: ok, unavailable, decode
	)

	sheetFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheet_fetch_duration_seconds",
			Help:    "Latency of table fetches from the spreadsheet.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"table"},
	)

	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Tracks cache hits and misses for various caches.",
		},
		[]string{"cache", "result"},
	)
)

func ObserveSheetFetch(table, result string, elapsed time.Duration) {
	sheetFetchTotal.WithLabelValues(norm(table), norm(result)).Inc()
	sheetFetchDuration.WithLabelValues(norm(table)).Observe(elapsed.Seconds())
}

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}
