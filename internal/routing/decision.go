package routing

import (
	"time"
)

// RoutingDecision is the immutable outcome of one routing attempt. Amend by
// rebuilding, never by mutating a shared value.
type RoutingDecision struct {
	BrokerID           string            `json:"broker_id"`
	VenueID            string            `json:"venue_id"`
	Strategy           ExecutionStrategy `json:"strategy"`
	ImmediateExecution bool              `json:"immediate_execution"`
	EstimatedExecution time.Time         `json:"estimated_execution"`
	Confidence         float64           `json:"confidence"`
	Reason             string            `json:"reason"`
	RouterName         string            `json:"router_name"`
	ProcessingTime     time.Duration     `json:"processing_time"`
}

// NewImmediateDecision builds a decision that executes now. Confidence is
// 1.0 by construction.
func NewImmediateDecision(brokerID, venueID, reason, routerName string) *RoutingDecision {
	return &RoutingDecision{
		BrokerID:           brokerID,
		VenueID:            venueID,
		Strategy:           StrategyImmediate,
		ImmediateExecution: true,
		EstimatedExecution: time.Now().UTC(),
		Confidence:         1.0,
		Reason:             reason,
		RouterName:         routerName,
	}
}

// NewDelayedDecision builds a decision executed at executionTime with the
// given strategy. Confidence is clamped to [0, 1].
func NewDelayedDecision(brokerID, venueID string, strategy ExecutionStrategy, executionTime time.Time, confidence float64, reason, routerName string) *RoutingDecision {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return &RoutingDecision{
		BrokerID:           brokerID,
		VenueID:            venueID,
		Strategy:           strategy,
		ImmediateExecution: false,
		EstimatedExecution: executionTime,
		Confidence:         confidence,
		Reason:             reason,
		RouterName:         routerName,
	}
}

// NewRejectDecision builds a terminal rejection. Confidence is 0.0 and the
// order never executes, for every reason/router input.
func NewRejectDecision(reason, routerName string) *RoutingDecision {
	return &RoutingDecision{
		Strategy:           StrategyReject,
		ImmediateExecution: false,
		Confidence:         0,
		Reason:             reason,
		RouterName:         routerName,
	}
}

// IsReject reports whether the decision rejects the order.
func (d *RoutingDecision) IsReject() bool {
	return d.Strategy == StrategyReject
}

// withProcessingTime returns a copy of the decision stamped with the time the
// routing attempt took. The receiver is left untouched.
func (d *RoutingDecision) withProcessingTime(elapsed time.Duration) *RoutingDecision {
	out := *d
	out.ProcessingTime = elapsed
	return &out
}
