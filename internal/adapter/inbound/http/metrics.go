package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the wisp gateway.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LoginThrottled  prometheus.Counter
	ActiveSessions  prometheus.GaugeFunc
	RPCInFlight     prometheus.GaugeFunc
}

// NewMetrics creates and registers all metrics with the given registry.
// sessionCount and rpcPending are sampled at scrape time.
func NewMetrics(reg prometheus.Registerer, sessionCount, rpcPending func() float64) *Metrics {
	if sessionCount == nil {
		sessionCount = func() float64 { return 0 }
	}
	if rpcPending == nil {
		rpcPending = func() float64 { return 0 }
	}
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wispgate",
				Name:      "requests_total",
				Help:      "Total number of gateway requests processed",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wispgate",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets, // 5ms to 10s
			},
			[]string{"method"},
		),
		LoginThrottled: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "wispgate",
				Name:      "login_throttled_total",
				Help:      "Login attempts rejected by the rate limiter",
			},
		),
		ActiveSessions: promauto.With(reg).NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "wispgate",
				Name:      "active_sessions",
				Help:      "Number of live sessions in the session store",
			},
			sessionCount,
		),
		RPCInFlight: promauto.With(reg).NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "wispgate",
				Name:      "rpc_in_flight",
				Help:      "Dispatcher calls currently awaiting a correlated reply",
			},
			rpcPending,
		),
	}
}
