package breaker

const (
	MetricRequestsTotal = "breaker_requests_total"
	MetricStateChanges  = "breaker_state_changes_total"

	LabelKey    = "key"
	LabelResult = "result" // success / failure / rejected
	LabelFrom   = "from_state"
	LabelTo     = "to_state"
)
