package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch and RPC counters, partitioned by network.

var (
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predictionscope",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total chain RPC calls by method and status",
	}, []string{"network", "method", "status"})

	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predictionscope",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Total RPC calls delayed by the rate limiter",
	}, []string{"network"})

	ReaderEventErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predictionscope",
		Subsystem: "reader",
		Name:      "event_errors_total",
		Help:      "Event signature scans that failed after retry exhaustion",
	}, []string{"network", "event"})

	ReaderLogsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predictionscope",
		Subsystem: "reader",
		Name:      "logs_fetched_total",
		Help:      "Total logs returned by chain log readers",
	}, []string{"network"})

	StoreFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "predictionscope",
		Subsystem: "store",
		Name:      "fetches_total",
		Help:      "Event store fetches by result (ok, partial, failed, coalesced)",
	}, []string{"result"})

	StoreFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "predictionscope",
		Subsystem: "store",
		Name:      "fetch_duration_seconds",
		Help:      "Event store fetch duration",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	StoreLogs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "predictionscope",
		Subsystem: "store",
		Name:      "logs",
		Help:      "Logs held by the event store per network",
	}, []string{"network"})

	StoreLastFetched = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "predictionscope",
		Subsystem: "store",
		Name:      "last_fetched_timestamp_seconds",
		Help:      "Unix time of the last committed fetch",
	})
)
