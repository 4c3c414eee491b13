package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobboard_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	submissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobboard_submission_duration_seconds",
		Help:    "Duration of application submissions by result",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_status_transitions_total",
		Help: "Count of application status transition attempts by result",
	}, []string{"result"})

	sweepOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_blob_sweep_operations_total",
		Help: "Count of blob sweep operations by result",
	}, []string{"result"})

	orphanedBlobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jobboard_orphaned_blobs",
		Help: "Number of stored blobs not referenced by any application at last sweep",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSubmission records the duration of a submission attempt with a result label.
func ObserveSubmission(result string, duration time.Duration) {
	submissionDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveStatusTransition increments the transition counter for the given result.
func ObserveStatusTransition(result string) {
	statusTransitions.WithLabelValues(result).Inc()
}

// ObserveSweep increments the sweep counter for the given result.
func ObserveSweep(result string) {
	sweepOperations.WithLabelValues(result).Inc()
}

// SetOrphanedBlobs sets the orphaned blob gauge.
func SetOrphanedBlobs(count int) {
	if count < 0 {
		count = 0
	}
	orphanedBlobs.Set(float64(count))
}
