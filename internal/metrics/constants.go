package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameRequirementsPlanned   = "requirements_planned_total"
	MetricNameRequirementsMerged    = "requirements_merged_total"
	MetricNameAggregatesCancelled   = "aggregates_cancelled_total"
	MetricNameSeedDeductions        = "seed_deductions_total"
	MetricNameSeedGramsDeducted     = "seed_grams_deducted_total"
	MetricNameBatchesPlanted        = "batches_planted_total"
	MetricNameTransitionsScheduled  = "transitions_scheduled_total"
	MetricNameTransitionsExecuted   = "transitions_executed_total"
	MetricNameDepletionAlerts       = "depletion_alerts_total"
	MetricNamePlanIssues            = "plan_issues_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextRequirementsPlanned  = "Total number of requirement records created by planning"
	HelpTextRequirementsMerged   = "Total number of requirement records merged into aggregates"
	HelpTextAggregatesCancelled  = "Total number of batch aggregates cancelled"
	HelpTextSeedDeductions       = "Total number of seed lot deductions"
	HelpTextSeedGramsDeducted    = "Total grams of seed deducted from inventory"
	HelpTextBatchesPlanted       = "Total number of growth batches planted"
	HelpTextTransitionsScheduled = "Total number of stage transitions scheduled"
	HelpTextTransitionsExecuted  = "Total number of stage transitions executed"
	HelpTextDepletionAlerts      = "Total number of stock health alerts raised"
	HelpTextPlanIssues           = "Total number of non-fatal planning issues reported"
)

// ============================================================================
// Metric Labels
// ============================================================================

const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelStage   = "stage"
	LabelLevel   = "level"
	LabelVariety = "variety"
	LabelOutcome = "outcome"
)

// Outcome label values
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient"
	OutcomeAdvanced     = "advanced"
	OutcomeCorrected    = "corrected"
	OutcomeSkipped      = "skipped"
	OutcomeFailed       = "failed"
)

// HTTPLatencyBuckets are the histogram buckets for request latency
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
