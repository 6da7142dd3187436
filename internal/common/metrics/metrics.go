// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_candidates_scored",
			Help:    "Number of walkers scored per match run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	MatchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_results_returned",
			Help:    "Number of matches returned per match run after filtering",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	MatchRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_run_duration_seconds",
			Help:    "Time spent scoring and ranking one match run",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	WalkerPoolCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walker_pool_cache_requests_total",
			Help: "Walker pool cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	WalkerSearchFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walker_search_fallbacks_total",
			Help: "Match runs that used the full pool because walker search failed",
		},
	)

	InvalidWalkersSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_invalid_walkers_skipped_total",
			Help: "Pool walkers left out of a match run because their profile failed validation",
		},
	)
)
