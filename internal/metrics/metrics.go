package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Match engine metrics
var (
	ActionsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActionsCommitted,
			Help: HelpTextActionsCommitted,
		},
		[]string{LabelAction},
	)

	ActionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActionRejections,
			Help: HelpTextActionRejections,
		},
		[]string{LabelReason},
	)

	VersionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameVersionConflicts,
			Help: HelpTextVersionConflicts,
		},
	)

	LettersAssigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLettersAssigned,
			Help: HelpTextLettersAssigned,
		},
	)

	MatchesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMatchesCompleted,
			Help: HelpTextMatchesCompleted,
		},
		[]string{LabelOutcome},
	)
)

// Dispute metrics
var (
	DisputesFiled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDisputesFiled,
			Help: HelpTextDisputesFiled,
		},
	)

	DisputesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDisputesResolved,
			Help: HelpTextDisputesResolved,
		},
		[]string{LabelVerdict},
	)
)

// Reconciler metrics
var (
	ReconcilerScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameReconcilerScans,
			Help: HelpTextReconcilerScans,
		},
		[]string{LabelScan},
	)

	ReconcilerForfeits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameReconcilerForfeits,
			Help: HelpTextReconcilerForfeits,
		},
		[]string{LabelCause},
	)

	DeadlineWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDeadlineWarnings,
			Help: HelpTextDeadlineWarnings,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameNotificationFailures,
			Help: HelpTextNotificationFailures,
		},
	)
)
