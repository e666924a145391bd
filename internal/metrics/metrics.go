// Package metrics exposes Prometheus counters for data loads, refreshes and
// derived views.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DataLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_data_loads_total",
		Help: "Data store loads by origin (feed or fallback)",
	}, []string{"origin"})
	DataLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecobalance_data_load_duration_seconds",
		Help:    "Duration of data store loads",
		Buckets: prometheus.DefBuckets,
	})
	CitiesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ecobalance_cities_loaded",
		Help: "Number of cities in the current snapshot",
	})
	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_refresh_total",
		Help: "Refresh runs by result",
	}, []string{"result"})
	ModuleFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_module_failures_total",
		Help: "Module initialize/update failures",
	}, []string{"module", "phase"})
	ComparisonsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_comparisons_total",
		Help: "Comparison requests by outcome",
	}, []string{"state"})
	ChartRendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_chart_renders_total",
		Help: "SVG chart renders by chart and result",
	}, []string{"chart", "result"})
	EventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_events_published_total",
		Help: "Events published by topic",
	}, []string{"topic"})
	WorkerJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_worker_jobs_total",
		Help: "Pub/Sub jobs handled by type and result",
	}, []string{"job_type", "result"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobalance_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecobalance_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(DataLoadsTotal)
	prometheus.MustRegister(DataLoadDuration)
	prometheus.MustRegister(CitiesLoaded)
	prometheus.MustRegister(RefreshTotal)
	prometheus.MustRegister(ModuleFailuresTotal)
	prometheus.MustRegister(ComparisonsTotal)
	prometheus.MustRegister(ChartRendersTotal)
	prometheus.MustRegister(EventsPublishedTotal)
	prometheus.MustRegister(WorkerJobsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
