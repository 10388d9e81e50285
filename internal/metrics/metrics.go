package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session lifecycle metrics
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "breaktime_sessions_started_total",
			Help: "Total sessions started",
		},
	)

	SessionsStopped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "breaktime_sessions_stopped_total",
			Help: "Total sessions cancelled by an explicit stop",
		},
	)

	SessionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "breaktime_sessions_expired_total",
			Help: "Total sessions that ran to completion",
		},
	)

	SessionsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "breaktime_sessions_rejected_total",
			Help: "Start requests rejected for invalid config",
		},
	)

	SessionActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "breaktime_session_active",
			Help: "1 while a session is running",
		},
	)

	// Overlay metrics
	OverlaysShown = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaktime_overlays_shown_total",
			Help: "Overlays presented",
		},
		[]string{"trigger"},
	)

	OverlaysClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaktime_overlays_closed_total",
			Help: "Overlays closed",
		},
		[]string{"reason"},
	)

	// Observer metrics
	PollFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "breaktime_poll_failures_total",
			Help: "Status polls that failed to reach the session authority",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SessionsStarted,
		SessionsStopped,
		SessionsExpired,
		SessionsRejected,
		SessionActive,
		OverlaysShown,
		OverlaysClosed,
		PollFailures,
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
