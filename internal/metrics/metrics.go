package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parallel_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parallel_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parallel_chat_requests_total",
			Help: "Total chat turns by routing mode",
		},
		[]string{"mode"}, // "self", "teammate" or "team"
	)

	ModelErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parallel_model_errors_total",
			Help: "Total degraded turns caused by model call failures",
		},
	)

	SummaryUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parallel_summary_updates_total",
			Help: "Total coordinator-applied summary updates",
		},
	)

	OutreachDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parallel_outreach_deliveries_total",
			Help: "Total confirmed outreach notifications delivered",
		},
	)

	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parallel_users_registered_total",
			Help: "Total users registered",
		},
	)

	TranscriptsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parallel_transcripts_ingested_total",
			Help: "Total voice transcripts ingested",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parallel_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parallel_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)
)
