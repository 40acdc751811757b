package routing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quantgate/quantgate/internal/routing"
)

// stubRouter records predicate and routing invocations for assertions.
type stubRouter struct {
	name      string
	priority  int
	canHandle func(*routing.Order) bool
	decision  *routing.RoutingDecision
	err       error

	calls *[]string
}

func (r *stubRouter) Name() string  { return r.name }
func (r *stubRouter) Priority() int { return r.priority }

func (r *stubRouter) CanHandle(order *routing.Order) bool {
	if r.calls != nil {
		*r.calls = append(*r.calls, "canHandle:"+r.name)
	}
	return r.canHandle(order)
}

func (r *stubRouter) RouteOrder(ctx context.Context, order *routing.Order) (*routing.RoutingDecision, error) {
	if r.calls != nil {
		*r.calls = append(*r.calls, "route:"+r.name)
	}
	return r.decision, r.err
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestRouteTriesRoutersInAscendingPriority(t *testing.T) {
	var calls []string
	never := func(*routing.Order) bool { return false }
	selector := routing.NewSelector(zap.NewNop(),
		&stubRouter{name: "c", priority: 30, canHandle: never, calls: &calls},
		&stubRouter{name: "a", priority: 10, canHandle: never, calls: &calls},
		&stubRouter{name: "b", priority: 20, canHandle: never, calls: &calls},
	)

	_, err := selector.Route(context.Background(), routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeMarket, qty(100)))
	require.Error(t, err)
	assert.Equal(t, []string{"canHandle:a", "canHandle:b", "canHandle:c"}, calls)
}

func TestRouteFirstCapableRouterWins(t *testing.T) {
	var calls []string
	nse := &stubRouter{
		name: "NSE-R", priority: 10,
		canHandle: func(o *routing.Order) bool { return o.Exchange == "NSE" },
		decision:  routing.NewImmediateDecision("Z", "NSE", "ok", "NSE-R"),
		calls:     &calls,
	}
	def := &stubRouter{
		name: "Default-R", priority: 20,
		canHandle: func(*routing.Order) bool { return true },
		decision:  routing.NewImmediateDecision("P", "SMART", "ok", "Default-R"),
		calls:     &calls,
	}
	selector := routing.NewSelector(zap.NewNop(), nse, def)

	d, err := selector.Route(context.Background(), routing.NewOrder("RELIANCE", "NSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(100)))
	require.NoError(t, err)
	assert.Equal(t, "NSE-R", d.RouterName)

	d, err = selector.Route(context.Background(), routing.NewOrder("TCS", "BSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(100)))
	require.NoError(t, err)
	assert.Equal(t, "Default-R", d.RouterName)
	assert.NotContains(t, calls, "route:NSE-R-on-BSE")
}

func TestRouteNoCapableRouter(t *testing.T) {
	var calls []string
	never := func(*routing.Order) bool { return false }
	selector := routing.NewSelector(zap.NewNop(),
		&stubRouter{name: "NSE-R", priority: 10, canHandle: never, calls: &calls},
		&stubRouter{name: "Default-R", priority: 20, canHandle: never, calls: &calls},
	)

	_, err := selector.Route(context.Background(), routing.NewOrder("X", "", routing.OrderSideBuy, routing.OrderTypeMarket, qty(100)))
	var unsupported *routing.UnsupportedExchangeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "", unsupported.Exchange)

	// canHandle ran for everyone, routeOrder for no one.
	for _, call := range calls {
		assert.NotContains(t, call, "route:")
	}
}

func TestRouteRejectIsNotEscalated(t *testing.T) {
	var calls []string
	rejecting := &stubRouter{
		name: "first", priority: 1,
		canHandle: func(*routing.Order) bool { return true },
		decision:  routing.NewRejectDecision("no liquidity", "first"),
		calls:     &calls,
	}
	fallback := &stubRouter{
		name: "second", priority: 2,
		canHandle: func(*routing.Order) bool { return true },
		decision:  routing.NewImmediateDecision("B", "V", "ok", "second"),
		calls:     &calls,
	}
	selector := routing.NewSelector(zap.NewNop(), rejecting, fallback)

	d, err := selector.Route(context.Background(), routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideSell, routing.OrderTypeMarket, qty(10)))
	require.NoError(t, err)
	assert.True(t, d.IsReject())
	assert.Equal(t, "first", d.RouterName)
	assert.NotContains(t, calls, "route:second")
}

func TestRoutePriorityTiesKeepRegistrationOrder(t *testing.T) {
	always := func(*routing.Order) bool { return true }
	first := &stubRouter{name: "first", priority: 10, canHandle: always,
		decision: routing.NewImmediateDecision("B", "V", "ok", "first")}
	second := &stubRouter{name: "second", priority: 10, canHandle: always,
		decision: routing.NewImmediateDecision("B", "V", "ok", "second")}
	selector := routing.NewSelector(zap.NewNop(), first, second)

	for i := 0; i < 10; i++ {
		d, err := selector.Route(context.Background(), routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1)))
		require.NoError(t, err)
		assert.Equal(t, "first", d.RouterName)
	}
}

func TestRoutePropagatesRouterErrors(t *testing.T) {
	always := func(*routing.Order) bool { return true }
	cases := []struct {
		name string
		err  error
	}{
		{"too large", &routing.OrderTooLargeError{Quantity: qty(5000), MaxQuantity: qty(1000)}},
		{"connectivity", &routing.BrokerConnectivityError{Broker: "Z"}},
		{"misconfigured", &routing.ConfigurationError{ConfigKey: "venue"}},
		{"no broker", &routing.NoBrokerAvailableError{Exchange: "NSE", Reason: "offline"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			selector := routing.NewSelector(zap.NewNop(),
				&stubRouter{name: "r", priority: 1, canHandle: always, err: tc.err})
			_, err := selector.Route(context.Background(), routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1)))
			require.Error(t, err)
			var rerr routing.RoutingError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tc.err, err)
		})
	}
}

func TestRouteNilOrder(t *testing.T) {
	selector := routing.NewSelector(zap.NewNop())
	_, err := selector.Route(context.Background(), nil)
	var unsupported *routing.UnsupportedExchangeError
	require.True(t, errors.As(err, &unsupported))
}

func TestRouteStampsProcessingTime(t *testing.T) {
	selector := routing.NewSelector(zap.NewNop(), &stubRouter{
		name: "r", priority: 1,
		canHandle: func(*routing.Order) bool { return true },
		decision:  routing.NewImmediateDecision("B", "V", "ok", "r"),
	})
	d, err := selector.Route(context.Background(), routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1)))
	require.NoError(t, err)
	assert.Greater(t, d.ProcessingTime, time.Duration(0))
}
