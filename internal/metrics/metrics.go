package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the POS collectors. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry setup.
type Metrics struct {
	registry       *prometheus.Registry
	checkouts      *prometheus.CounterVec
	salesAmount    prometheus.Counter
	remoteFailures *prometheus.CounterVec
	imageFailures  prometheus.Counter
	changeEvents   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warungpos_checkouts_total",
			Help: "Checkouts by result.",
		}, []string{"result"}),
		salesAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warungpos_sales_amount_total",
			Help: "Sum of committed order totals, tax included.",
		}),
		remoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warungpos_remote_failures_total",
			Help: "Remote store operations that degraded to local-only.",
		}, []string{"op", "collection"}),
		imageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warungpos_image_compress_failures_total",
			Help: "Images stored uncompressed because processing failed.",
		}),
		changeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warungpos_change_events_total",
			Help: "Remote change notifications received.",
		}, []string{"collection"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.checkouts, m.salesAmount, m.remoteFailures, m.imageFailures, m.changeEvents,
		m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Checkout(result string, total float64) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
	if total > 0 {
		m.salesAmount.Add(total)
	}
}

func (m *Metrics) RemoteFailure(op string, collection string) {
	if m == nil {
		return
	}
	m.remoteFailures.WithLabelValues(op, collection).Inc()
}

func (m *Metrics) ImageFailure() {
	if m == nil {
		return
	}
	m.imageFailures.Inc()
}

func (m *Metrics) ChangeEvent(collection string) {
	if m == nil {
		return
	}
	m.changeEvents.WithLabelValues(collection).Inc()
}

func (m *Metrics) ObserveHTTP(method string, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	if path == "" {
		path = "undefined"
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path).Observe(took.Seconds())
}

// RemoteFailures exposes the collector for assertions in other packages.
func (m *Metrics) RemoteFailures() *prometheus.CounterVec {
	return m.remoteFailures
}

func (m *Metrics) ImageFailures() prometheus.Counter {
	return m.imageFailures
}

func (m *Metrics) Checkouts() *prometheus.CounterVec {
	return m.checkouts
}
