// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_questions_total",
			Help: "Questions answered, by intent, outcome and channel",
		},
		[]string{"intent", "outcome", "channel"},
	)

	CompileFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_compile_failures_total",
			Help: "Query compilation failures by intent and error code",
		},
		[]string{"intent", "error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_query_duration_seconds",
			Help:    "Database query duration by result kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	QueryRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_query_rows",
			Help:    "Rows returned per query",
			Buckets: []float64{0, 1, 2, 5, 10},
		},
		[]string{"kind"},
	)

	NLURequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_nlu_requests_total",
			Help: "NLU parse requests by result (ok, cached, timeout, error)",
		},
		[]string{"result"},
	)

	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_chat_messages_total",
			Help: "Chat messages handled by channel and direction",
		},
		[]string{"channel", "direction"},
	)

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
)
