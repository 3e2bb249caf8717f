package driven

import "time"

// Ask outcomes reported to Metrics.
const (
	OutcomeAnswered = "answered"
	OutcomeDegraded = "degraded"
)

// Metrics records pipeline activity.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveAsk records a finished ask and how long it took.
	ObserveAsk(outcome string, elapsed time.Duration)

	// ObserveRetrieved records the size of a retrieved set.
	ObserveRetrieved(n int)

	// ObserveProviderError records a failed provider call by kind.
	ObserveProviderError(kind string)
}
