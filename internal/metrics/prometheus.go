// Package metrics provides Prometheus metrics for the directory and stock ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	StockReports   *prometheus.CounterVec
	NearbyDuration prometheus.Histogram
	NearbyResults  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them with reg.
// A nil reg uses a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StockReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_reports_total",
			Help: "Stock reports accepted, by resulting status",
		}, []string{"status"}),
		NearbyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nearby_query_duration_seconds",
			Help:    "Nearby hospital query duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		NearbyResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nearby_results",
			Help:    "Hospitals returned per nearby query",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20},
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.StockReports,
		m.NearbyDuration,
		m.NearbyResults,
	)

	return m
}

// StockReported counts an accepted stock report
func (m *Metrics) StockReported(status models.StockStatus) {
	m.StockReports.WithLabelValues(string(status)).Inc()
}

// NearbyQuery records one radius search
func (m *Metrics) NearbyQuery(elapsed time.Duration, results int) {
	m.NearbyDuration.Observe(elapsed.Seconds())
	m.NearbyResults.Observe(float64(results))
}

// ObserveHTTP records one served request. route is the matched route template, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns the Prometheus HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
