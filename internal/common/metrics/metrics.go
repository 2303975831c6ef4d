// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caab_jobs_completed_total",
			Help: "Jobs completed per task type",
		},
		[]string{"task_type"},
	)

	JobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caab_jobs_failed_total",
			Help: "Jobs failed per task type and error code",
		},
		[]string{"task_type", "error_code"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "caab_job_duration_seconds",
			Help:    "Job processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	JobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "caab_jobs_active",
			Help: "Jobs currently being processed per task type",
		},
		[]string{"task_type"},
	)

	// DataQualityIssues counts recovered mapping problems (fallback display values, defaulted variants).
	DataQualityIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caab_data_quality_issues_total",
			Help: "Recovered mapping issues per source system and kind",
		},
		[]string{"source", "kind"},
	)

	LookupCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caab_lookup_cache_total",
			Help: "Reference-data cache lookups by result",
		},
		[]string{"result"},
	)
)
