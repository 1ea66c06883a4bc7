// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubjectsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subjects_processed_total",
			Help: "Total number of subjects run through grade derivation",
		},
		[]string{"status", "letter_grade"},
	)

	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_imports_total",
			Help: "Total number of AI transcript import attempts",
		},
		[]string{"outcome"},
	)

	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Total number of feedback submissions",
		},
		[]string{"type"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
