package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	RunsTotal          = prometheus.NewCounter(prometheus.CounterOpts{Name: "publish_runs_total", Help: "Engine invocations"})
	SchedulesPublished = prometheus.NewCounter(prometheus.CounterOpts{Name: "publish_schedules_published_total", Help: "Schedules fully published"})
	SchedulesFailed    = prometheus.NewCounter(prometheus.CounterOpts{Name: "publish_schedules_failed_total", Help: "Schedules with at least one failed platform"})
	SchedulesSkipped   = prometheus.NewCounter(prometheus.CounterOpts{Name: "publish_schedules_skipped_total", Help: "Schedules skipped for having no targets"})
	AlertsEnqueued     = prometheus.NewCounter(prometheus.CounterOpts{Name: "publish_failure_alerts_total", Help: "Failure alerts enqueued for operators"})
	RunDuration        = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "publish_run_duration_seconds", Help: "Engine run duration", Buckets: prometheus.DefBuckets})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			RunsTotal,
			SchedulesPublished,
			SchedulesFailed,
			SchedulesSkipped,
			AlertsEnqueued,
			RunDuration,
		)
	})
	return promhttp.Handler()
}
