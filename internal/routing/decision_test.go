package routing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantgate/quantgate/internal/routing"
)

func TestRejectDecisionInvariants(t *testing.T) {
	reasons := []string{"no liquidity", "unsupported order type", "", "risk limit"}
	routers := []string{"default", "dark-pool", "nse-router"}
	for _, reason := range reasons {
		for _, router := range routers {
			d := routing.NewRejectDecision(reason, router)
			assert.Equal(t, routing.StrategyReject, d.Strategy)
			assert.Zero(t, d.Confidence)
			assert.False(t, d.ImmediateExecution)
			assert.True(t, d.IsReject())
			assert.Equal(t, reason, d.Reason)
			assert.Equal(t, router, d.RouterName)
		}
	}
}

func TestImmediateDecisionInvariants(t *testing.T) {
	d := routing.NewImmediateDecision("ZERODHA", "NSE", "market order", "nse-router")
	assert.Equal(t, routing.StrategyImmediate, d.Strategy)
	assert.True(t, d.ImmediateExecution)
	assert.Equal(t, 1.0, d.Confidence)
	assert.False(t, d.IsReject())
	assert.Equal(t, "ZERODHA", d.BrokerID)
	assert.Equal(t, "NSE", d.VenueID)
	assert.WithinDuration(t, time.Now().UTC(), d.EstimatedExecution, time.Second)
}

func TestDelayedDecisionClampsConfidence(t *testing.T) {
	at := time.Now().UTC().Add(5 * time.Minute)

	d := routing.NewDelayedDecision("B", "V", routing.StrategyVWAP, at, 1.7, "r", "large-order")
	assert.Equal(t, 1.0, d.Confidence)

	d = routing.NewDelayedDecision("B", "V", routing.StrategyVWAP, at, -0.2, "r", "large-order")
	assert.Zero(t, d.Confidence)

	d = routing.NewDelayedDecision("B", "V", routing.StrategyTWAP, at, 0.8, "r", "large-order")
	assert.Equal(t, 0.8, d.Confidence)
	assert.False(t, d.ImmediateExecution)
	assert.Equal(t, at, d.EstimatedExecution)
}
