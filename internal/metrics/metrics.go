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

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	RequirementsPlanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRequirementsPlanned,
			Help: HelpTextRequirementsPlanned,
		},
		[]string{LabelVariety},
	)

	RequirementsMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRequirementsMerged,
			Help: HelpTextRequirementsMerged,
		},
	)

	AggregatesCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAggregatesCancelled,
			Help: HelpTextAggregatesCancelled,
		},
	)

	SeedDeductions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSeedDeductions,
			Help: HelpTextSeedDeductions,
		},
		[]string{LabelOutcome},
	)

	SeedGramsDeducted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSeedGramsDeducted,
			Help: HelpTextSeedGramsDeducted,
		},
	)

	BatchesPlanted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBatchesPlanted,
			Help: HelpTextBatchesPlanted,
		},
	)

	TransitionsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTransitionsScheduled,
			Help: HelpTextTransitionsScheduled,
		},
		[]string{LabelStage},
	)

	TransitionsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTransitionsExecuted,
			Help: HelpTextTransitionsExecuted,
		},
		[]string{LabelStage, LabelOutcome},
	)

	DepletionAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDepletionAlerts,
			Help: HelpTextDepletionAlerts,
		},
		[]string{LabelLevel},
	)

	PlanIssues = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePlanIssues,
			Help: HelpTextPlanIssues,
		},
	)
)
