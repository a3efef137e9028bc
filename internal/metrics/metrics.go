package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plinko_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plinko_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)
)

// Simulation Metrics
var (
	BallsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plinko_balls_dropped_total",
			Help: "Balls dropped, by source (manual or auto)",
		},
		[]string{LabelSource},
	)

	BallsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plinko_balls_settled_total",
			Help: "Balls that crossed the scoring line",
		},
		[]string{LabelMatched},
	)

	PayoutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plinko_payout_total",
			Help: "Currency credited by settlements",
		},
	)

	Collisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plinko_collisions_total",
			Help: "Resolved contacts by type",
		},
		[]string{LabelType},
	)

	ActiveBalls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plinko_active_balls",
			Help: "Balls currently in flight across all sessions",
		},
	)

	StepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plinko_step_duration_seconds",
			Help:    "Time spent in one simulation step",
			Buckets: StepLatencyBuckets,
		},
	)
)

// Session Metrics
var (
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plinko_active_sessions",
			Help: "Open play sessions",
		},
	)

	UpgradesPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plinko_upgrades_purchased_total",
			Help: "Upgrade purchases by kind",
		},
		[]string{LabelKind},
	)

	InfraErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plinko_infra_errors_total",
			Help: "Failed Redis or DB side effects",
		},
		[]string{LabelBackend},
	)
)
