package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP API
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	chatTotal       prometheus.Counter
	retrievedDocs   prometheus.Histogram
}

// NewMetrics creates and registers the API metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "udcito_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "udcito_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		chatTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "udcito_chat_requests_total",
			Help: "Total number of chat questions answered.",
		}),
		retrievedDocs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "udcito_retrieved_documents",
			Help:    "Number of documents retrieved per question after deduplication.",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20},
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	m.requestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(seconds)
}

// ObserveChat records one answered question and its retrieval size
func (m *Metrics) ObserveChat(docCount int) {
	m.chatTotal.Inc()
	m.retrievedDocs.Observe(float64(docCount))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
