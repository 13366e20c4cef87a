package observability

// Metric name prefixes
const (
	MetricPrefix = "gatewaymonitor"
)

// Metric names
const (
	// Monitor metrics
	RunsTotal        = MetricPrefix + ".runs_total"
	RunDuration      = MetricPrefix + ".run_duration"
	PendingCount     = MetricPrefix + ".pending_count"
	FailuresDetected = MetricPrefix + ".failures_detected_total"

	// Deactivation metrics
	DeactivationsTotal = MetricPrefix + ".deactivations_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelGateway = "gateway"
	LabelStatus  = "status"
	LabelOutcome = "outcome"
	LabelDriver  = "driver"
	LabelResult  = "result"
)

// Query results
const (
	QueryResultOK    = "ok"
	QueryResultError = "error"
)
