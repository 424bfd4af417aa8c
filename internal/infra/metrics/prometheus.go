package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moivetext_jobs_processed_total",
		Help: "Total number of narration jobs processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moivetext_stage_duration_seconds",
		Help:    "Duration of each narration pipeline stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"stage"})

	ScenesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moivetext_scenes_detected_total",
		Help: "Total scenes produced by boundary detection across all jobs",
	})

	ScenesKeptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moivetext_scenes_kept_total",
		Help: "Total scenes that survived the minimum-duration filter",
	})

	UtterancesSynthesizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moivetext_utterances_synthesized_total",
		Help: "Total utterances rendered by speech synthesis",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moivetext_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moivetext_retry_total",
		Help: "Total number of job retries",
	}, []string{"attempt"})
)
