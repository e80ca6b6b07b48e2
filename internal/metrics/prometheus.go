// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the absence bot.
var (
	// Counters.
	AbsenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_requests_total",
			Help: "Total number of absence requests reaching a fully specified state",
		},
		[]string{"reason"},
	)

	SlackActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slack_actions_total",
			Help: "Total number of interactive-action callbacks by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	CollaboratorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_errors_total",
			Help: "Total number of failed calls to external collaborators",
		},
		[]string{"collaborator"},
	)

	// Histograms.
	WebhookDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_duration_seconds",
			Help:    "Time spent handling inbound webhooks",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"endpoint"},
	)
)
