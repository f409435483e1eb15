package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameActionsCommitted = "match_actions_committed_total"
	MetricNameActionRejections = "match_action_rejections_total"
	MetricNameVersionConflicts = "match_version_conflicts_total"
	MetricNameLettersAssigned  = "match_letters_assigned_total"
	MetricNameMatchesCompleted = "matches_completed_total"

	MetricNameDisputesFiled    = "disputes_filed_total"
	MetricNameDisputesResolved = "disputes_resolved_total"

	MetricNameReconcilerScans    = "reconciler_scans_total"
	MetricNameReconcilerForfeits = "reconciler_forfeits_total"
	MetricNameDeadlineWarnings   = "deadline_warnings_sent_total"

	MetricNameEventsPublished      = "events_published_total"
	MetricNameNotificationFailures = "notification_failures_total"
)

// Help texts
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"

	HelpTextActionsCommitted = "Match actions committed, by action type"
	HelpTextActionRejections = "Match actions rejected by the validator, by reason"
	HelpTextVersionConflicts = "Optimistic-lock conflicts surfaced to callers"
	HelpTextLettersAssigned  = "Penalty letters assigned to defenders"
	HelpTextMatchesCompleted = "Matches reaching a terminal state, by outcome"

	HelpTextDisputesFiled    = "Disputes filed"
	HelpTextDisputesResolved = "Disputes resolved, by verdict"

	HelpTextReconcilerScans    = "Reconciler scan executions, by scan"
	HelpTextReconcilerForfeits = "Matches forfeited by the reconciler, by cause"
	HelpTextDeadlineWarnings   = "Deadline warnings delivered to the expected actor"

	HelpTextEventsPublished      = "Events published to the bus, by type"
	HelpTextNotificationFailures = "Notification deliveries that failed and were swallowed"
)

// Label names
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelAction  = "action"
	LabelReason  = "reason"
	LabelOutcome = "outcome"
	LabelVerdict = "verdict"
	LabelScan    = "scan"
	LabelCause   = "cause"
	LabelType    = "type"
)

// HTTPLatencyBuckets are the histogram buckets for request latency.
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
