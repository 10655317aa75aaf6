package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pigfarm_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pigfarm_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ForecastEventsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pigfarm_forecast_events_generated_total",
			Help: "Total number of forecast vaccination events computed",
		},
	)

	SchedulesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pigfarm_vaccination_schedules_completed_total",
			Help: "Total number of vaccination schedules marked completed",
		},
	)

	SchedulesReverted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pigfarm_vaccination_schedules_reverted_total",
			Help: "Total number of completed vaccination schedules reverted",
		},
	)
)
