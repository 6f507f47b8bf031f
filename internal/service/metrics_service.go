package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	staleDiscards   prometheus.Counter
}

// NewMetricsService registers the engine's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendance_query_duration_seconds",
		Help:    "Duration of attendance store queries by mode",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_hits_total",
		Help: "Roster cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_misses_total",
		Help: "Roster cache misses",
	})
	staleDiscards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stale_responses_discarded_total",
		Help: "Query responses discarded because their filter context changed",
	})

	registry.MustRegister(requestDuration, requestTotal, queryDuration, cacheHits, cacheMisses, staleDiscards)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		queryDuration:   queryDuration,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		staleDiscards:   staleDiscards,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveQuery records an attendance store query duration.
func (s *MetricsService) ObserveQuery(mode string, duration time.Duration) {
	s.queryDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RosterCacheHit increments the roster cache hit counter.
func (s *MetricsService) RosterCacheHit() { s.cacheHits.Inc() }

// RosterCacheMiss increments the roster cache miss counter.
func (s *MetricsService) RosterCacheMiss() { s.cacheMisses.Inc() }

// StaleDiscard increments the discarded stale response counter.
func (s *MetricsService) StaleDiscard() { s.staleDiscards.Inc() }
