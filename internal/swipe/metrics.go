package swipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_queue_requests_total",
			Help: "Discovery queue requests by cache result",
		},
		[]string{"cache"},
	)

	queueBuildSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swipe_queue_build_seconds",
			Help:    "Time spent building a discovery queue on cache miss",
			Buckets: prometheus.DefBuckets,
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swipe_compatibility_scores",
			Help:    "Distribution of compatibility scores of scored candidates",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	likesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_likes_total",
			Help: "Recorded likes by kind",
		},
		[]string{"kind"},
	)

	passesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swipe_passes_total",
			Help: "Recorded passes",
		},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swipe_matches_total",
			Help: "Total number of matches created",
		},
	)

	throttleRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_throttle_rejections_total",
			Help: "Likes refused because a daily limit was reached",
		},
		[]string{"type"},
	)

	detachedFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_detached_task_failures_total",
			Help: "Best effort side effects that failed",
		},
		[]string{"task"},
	)
)
