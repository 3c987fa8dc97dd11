package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicom_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vicom_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vicom_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Encode pipeline metrics
var (
	EncodeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicom_encode_jobs_total",
			Help: "Total number of per-file encode jobs by output format and outcome",
		},
		[]string{"format", "status"},
	)

	EncodeJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vicom_encode_job_duration_seconds",
			Help:    "Per-file encode job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	EncodeJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vicom_encode_jobs_in_progress",
			Help: "Number of encode jobs currently in progress",
		},
	)
)

// Delivery metrics
var (
	DeliveryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicom_delivery_requests_total",
			Help: "Total number of artifact delivery requests by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	DeliveryBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vicom_delivery_bytes_total",
			Help: "Total artifact bytes written to clients",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vicom_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
