package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	jobsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "extraction",
		Name:      "jobs_started_total",
		Help:      "Total extraction jobs started.",
	})
	jobsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "extraction",
		Name:      "jobs_completed_total",
		Help:      "Total extraction jobs completed.",
	})
	jobsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "extraction",
		Name:      "jobs_failed_total",
		Help:      "Total extraction jobs failed.",
	})
	jobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "compliance",
		Subsystem: "extraction",
		Name:      "job_duration_seconds",
		Help:      "End-to-end extraction job duration in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	verdicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "classifier",
		Name:      "verdicts_total",
		Help:      "Classifier verdicts by outcome.",
	}, []string{"outcome"})
	notificationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "notifications",
		Name:      "created_total",
		Help:      "Total expiration notifications created.",
	})
)

func init() {
	registry.MustRegister(
		jobsStarted,
		jobsCompleted,
		jobsFailed,
		jobDuration,
		verdicts,
		notificationsCreated,
	)
}

// IncJobStarted increments the started counter.
func IncJobStarted() { jobsStarted.Inc() }

// IncJobCompleted increments the completed counter.
func IncJobCompleted() { jobsCompleted.Inc() }

// IncJobFailed increments the failed counter.
func IncJobFailed() { jobsFailed.Inc() }

// ObserveJobDurationSeconds records an extraction job duration.
func ObserveJobDurationSeconds(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	jobDuration.Observe(seconds)
}

// IncVerdict counts a classifier outcome: duplicate, renewal, historical, none.
func IncVerdict(outcome string) { verdicts.WithLabelValues(outcome).Inc() }

// IncNotificationCreated increments the notification counter.
func IncNotificationCreated() { notificationsCreated.Inc() }

// Handler exposes the registry in Prometheus exposition format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
