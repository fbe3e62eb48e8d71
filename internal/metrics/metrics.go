package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Upstream Metrics (one label value per pipeline stage: ip, coords, flyover)
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Geolocation backend Metrics (csv, mysql, redis, mmdb)
	DatastoreQueriesTotal  *prometheus.CounterVec
	DatastoreQueryDuration *prometheus.HistogramVec

	// Pipeline Metrics
	PipelineRunsTotal     *prometheus.CounterVec
	PipelineStageFailures *prometheus.CounterVec
	PassesReturned        prometheus.Histogram
}

// New creates all metrics and registers them with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them with reg
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration panics
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		// Upstream Metrics
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Total number of upstream API requests by stage and result",
			},
			[]string{"stage", "result"},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Upstream API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		// Geolocation backend Metrics
		DatastoreQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_queries_total",
				Help: "Total number of geolocation datastore queries",
			},
			[]string{"datastore", "status"},
		),

		DatastoreQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datastore_query_duration_seconds",
				Help:    "Geolocation datastore latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"datastore"},
		),

		// Pipeline Metrics
		PipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iss_pipeline_runs_total",
				Help: "Total number of next-pass pipeline runs by result",
			},
			[]string{"result"},
		),

		PipelineStageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iss_pipeline_stage_failures_total",
				Help: "Pipeline runs that stopped at a given stage",
			},
			[]string{"stage"},
		),

		PassesReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "iss_passes_returned",
				Help:    "Number of flyover passes returned per successful lookup",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),
	}
}
