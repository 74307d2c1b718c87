package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. Construct once in main and inject.
type Metrics struct {
	MirrorSyncs        *prometheus.CounterVec
	MirrorSyncDuration *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers collectors on reg. Tests pass prometheus.NewRegistry().
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		MirrorSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aahaara",
			Subsystem: "mirror",
			Name:      "syncs_total",
			Help:      "Mirror sync attempts by table, operation and result.",
		}, []string{"table", "op", "result"}),
		MirrorSyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aahaara",
			Subsystem: "mirror",
			Name:      "sync_duration_seconds",
			Help:      "Wall time of one mirror sync including the existence check.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 3, 5},
		}, []string{"table"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aahaara",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aahaara",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		gatherer: reg,
	}
	reg.MustRegister(m.MirrorSyncs, m.MirrorSyncDuration, m.HTTPRequests, m.HTTPDuration)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
