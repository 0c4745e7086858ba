package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pgfinder/internal/app/middleware"
)

// Metrics holds the Prometheus collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	BusRequests  *prometheus.CounterVec
	BusDuration  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pgfinder_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pgfinder_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BusRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pgfinder_bus_requests_total",
			Help: "Commands and queries dispatched, by outcome",
		}, []string{"kind", "key", "outcome"}),
		BusDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pgfinder_bus_duration_seconds",
			Help:    "Command and query handling latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "key"}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// Observe implements middleware.Observer.
func (m *Metrics) Observe(kind, key string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.BusRequests.WithLabelValues(kind, key, outcome).Inc()
	m.BusDuration.WithLabelValues(kind, key).Observe(took.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

var _ middleware.Observer = (*Metrics)(nil)
