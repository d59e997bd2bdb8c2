// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the prometheus collectors shared by the corpus
// loader, the insight adapter and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pubscope"

// DefaultHTTPDurationBuckets are the request latency buckets in seconds.
var DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OracleRequests      *prometheus.CounterVec
	OracleFallbacks     *prometheus.CounterVec
	CorpusReloads       *prometheus.CounterVec
	CorpusPublications  prometheus.Gauge
	CorpusDuplicates    prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Oracle calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		OracleFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_fallbacks_total",
			Help:      "Operations answered by the local heuristic after an oracle failure.",
		}, []string{"operation"}),
		CorpusReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_reloads_total",
			Help:      "Corpus load attempts by outcome.",
		}, []string{"outcome"}),
		CorpusPublications: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_publications",
			Help:      "Publications in the current corpus snapshot.",
		}),
		CorpusDuplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_duplicates_dropped",
			Help:      "Duplicate rows dropped by the last successful load.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(
		m.OracleRequests,
		m.OracleFallbacks,
		m.CorpusReloads,
		m.CorpusPublications,
		m.CorpusDuplicates,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OracleCall records one oracle call. outcome is "ok" or "error".
func (m *Metrics) OracleCall(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OracleRequests.WithLabelValues(operation, outcome).Inc()
}

// Fallback records that operation degraded to its local heuristic.
func (m *Metrics) Fallback(operation string) {
	if m == nil {
		return
	}
	m.OracleFallbacks.WithLabelValues(operation).Inc()
}

// Reload records a corpus load. On success the corpus gauges are updated.
func (m *Metrics) Reload(publications, duplicates int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CorpusReloads.WithLabelValues("error").Inc()
		return
	}
	m.CorpusReloads.WithLabelValues("ok").Inc()
	m.CorpusPublications.Set(float64(publications))
	m.CorpusDuplicates.Set(float64(duplicates))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
