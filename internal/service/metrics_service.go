package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "dorm"

// MetricsService owns the process Prometheus registry. Every method is safe on a nil receiver.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration  *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	dbDuration    *prometheus.HistogramVec
	cacheDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	listWarnings  *prometheus.CounterVec
	exportRows    *prometheus.HistogramVec
	exportsCapped *prometheus.CounterVec
	codeRetries   *prometheus.CounterVec
}

// NewMetricsService builds a private registry with HTTP, database, cache, listing and export collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route template and status.",
		}, []string{"method", "path", "status"}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Latency of list and aggregate queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		cacheDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_duration_seconds",
			Help:      "Redis cache latency by operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		listWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "listing",
			Name:      "query_warnings_total",
			Help:      "Query parameters ignored by list endpoints.",
		}, []string{"resource", "field"}),
		exportRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "export",
			Name:      "rows",
			Help:      "Rows written per export file.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
		}, []string{"resource", "format"}),
		exportsCapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "export",
			Name:      "truncated_total",
			Help:      "Exports cut off at the row limit.",
		}, []string{"resource"}),
		codeRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "code_collisions_total",
			Help:      "Generated invoice numbers or parking cards that collided and were regenerated.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.httpDuration, m.httpRequests, m.dbDuration,
		m.cacheDuration, m.cacheLookups, m.listWarnings,
		m.exportRows, m.exportsCapped, m.codeRetries,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpRequests.WithLabelValues(method, path, code).Inc()
}

// RecordCacheOperation records a cache read and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheDuration.WithLabelValues("get").Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheDuration.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records query latency under label, e.g. "rooms.list".
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordQueryWarning counts a list query parameter that was dropped.
func (m *MetricsService) RecordQueryWarning(resource, field string) {
	if m == nil {
		return
	}
	m.listWarnings.WithLabelValues(resource, field).Inc()
}

// RecordExport records the size of a generated file.
func (m *MetricsService) RecordExport(resource, format string, rows int, truncated bool) {
	if m == nil {
		return
	}
	m.exportRows.WithLabelValues(resource, format).Observe(float64(rows))
	if truncated {
		m.exportsCapped.WithLabelValues(resource).Inc()
	}
}

// RecordCodeCollision counts a regenerated identifier of the given kind.
func (m *MetricsService) RecordCodeCollision(kind string) {
	if m == nil {
		return
	}
	m.codeRetries.WithLabelValues(kind).Inc()
}
