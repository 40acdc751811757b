package routing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantgate/quantgate/internal/config"
	"github.com/quantgate/quantgate/internal/routing"
)

var down = routing.BrokerProbeFunc(func(string) bool { return false })

func TestExchangeRouterHandlesConfiguredExchangesOnly(t *testing.T) {
	r := routing.NewExchangeRouter("nse", 10, []string{"NSE", "BSE"}, "ZERODHA", "NSE", decimal.Zero, nil)
	assert.True(t, r.CanHandle(routing.NewOrder("TCS", "NSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(10))))
	assert.True(t, r.CanHandle(routing.NewOrder("TCS", "BSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(10))))
	assert.False(t, r.CanHandle(routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeMarket, qty(10))))
	assert.False(t, r.CanHandle(nil))
}

func TestExchangeRouterDecisions(t *testing.T) {
	r := routing.NewExchangeRouter("nse", 10, []string{"NSE"}, "ZERODHA", "NSE", decimal.Zero, nil)

	d, err := r.RouteOrder(context.Background(), routing.NewOrder("TCS", "NSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(10)))
	require.NoError(t, err)
	assert.Equal(t, routing.StrategyImmediate, d.Strategy)
	assert.True(t, d.ImmediateExecution)
	assert.Equal(t, "ZERODHA", d.BrokerID)

	d, err = r.RouteOrder(context.Background(), routing.NewOrder("TCS", "NSE", routing.OrderSideBuy, routing.OrderTypeLimit, qty(10)))
	require.NoError(t, err)
	assert.Equal(t, routing.StrategyScheduled, d.Strategy)
	assert.False(t, d.ImmediateExecution)
}

func TestExchangeRouterEnforcesMaxQuantity(t *testing.T) {
	r := routing.NewExchangeRouter("nse", 10, []string{"NSE"}, "ZERODHA", "NSE", qty(1000), nil)

	_, err := r.RouteOrder(context.Background(), routing.NewOrder("TCS", "NSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1001)))
	var tooLarge *routing.OrderTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.True(t, tooLarge.MaxQuantity.Equal(qty(1000)))

	_, err = r.RouteOrder(context.Background(), routing.NewOrder("TCS", "NSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1000)))
	assert.NoError(t, err)
}

func TestExchangeRouterBrokerDown(t *testing.T) {
	r := routing.NewExchangeRouter("nse", 10, []string{"NSE"}, "ZERODHA", "NSE", decimal.Zero, down)
	_, err := r.RouteOrder(context.Background(), routing.NewOrder("TCS", "NSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(10)))
	var conn *routing.BrokerConnectivityError
	require.True(t, errors.As(err, &conn))
	assert.Equal(t, "ZERODHA", conn.Broker)
}

func TestExchangeRouterMisconfigured(t *testing.T) {
	r := routing.NewExchangeRouter("nse", 10, []string{"NSE"}, "", "NSE", decimal.Zero, nil)
	_, err := r.RouteOrder(context.Background(), routing.NewOrder("TCS", "NSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(10)))
	var cfg *routing.ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, "broker", cfg.ConfigKey)
}

func TestLargeOrderRouterStrategyBands(t *testing.T) {
	r := routing.NewLargeOrderRouter("large", 5, qty(10000), "PRIME", "SMART", nil)

	assert.False(t, r.CanHandle(routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeLimit, qty(9999))))

	cases := []struct {
		quantity int64
		strategy routing.ExecutionStrategy
	}{
		{10000, routing.StrategyVWAP},
		{49999, routing.StrategyVWAP},
		{50000, routing.StrategyTWAP},
		{199999, routing.StrategyTWAP},
		{200000, routing.StrategySliced},
	}
	for _, tc := range cases {
		order := routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeLimit, qty(tc.quantity))
		require.True(t, r.CanHandle(order))
		d, err := r.RouteOrder(context.Background(), order)
		require.NoError(t, err)
		assert.Equal(t, tc.strategy, d.Strategy, "quantity %d", tc.quantity)
		assert.True(t, d.Strategy.IsSuitableForLargeOrders())
		assert.False(t, d.ImmediateExecution)
	}
}

func TestDarkPoolRouter(t *testing.T) {
	r := routing.NewDarkPoolRouter("dark", 3, qty(10000), "PRIME", "SIGMA-X", nil)

	assert.False(t, r.CanHandle(routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeMarket, qty(50000))), "market orders stay lit")
	assert.False(t, r.CanHandle(routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeLimit, qty(100))))

	order := routing.NewOrder("AAPL", "NASDAQ", routing.OrderSideBuy, routing.OrderTypeLimit, qty(50000))
	require.True(t, r.CanHandle(order))
	d, err := r.RouteOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, routing.StrategyDarkPool, d.Strategy)
	assert.Equal(t, "SIGMA-X", d.VenueID)

	disabled := routing.NewDarkPoolRouter("dark", 3, qty(10000), "PRIME", "", nil)
	assert.False(t, disabled.CanHandle(order))
}

func TestDefaultRouter(t *testing.T) {
	r := routing.NewDefaultRouter("default", 100, "PRIME", "SMART", nil)
	assert.True(t, r.CanHandle(routing.NewOrder("X", "ANY", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1))))

	d, err := r.RouteOrder(context.Background(), routing.NewOrder("X", "ANY", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1)))
	require.NoError(t, err)
	assert.Equal(t, routing.StrategyImmediate, d.Strategy)

	d, err = r.RouteOrder(context.Background(), routing.NewOrder("X", "ANY", routing.OrderSideBuy, routing.OrderTypeLimit, qty(1)))
	require.NoError(t, err)
	assert.Equal(t, routing.StrategySmart, d.Strategy)

	d, err = r.RouteOrder(context.Background(), routing.NewOrder("X", "ANY", routing.OrderSideBuy, "EXOTIC", qty(1)))
	require.NoError(t, err)
	assert.True(t, d.IsReject())
}

func TestDefaultRouterBrokerOffline(t *testing.T) {
	r := routing.NewDefaultRouter("default", 100, "PRIME", "SMART", down)
	_, err := r.RouteOrder(context.Background(), routing.NewOrder("X", "NYSE", routing.OrderSideBuy, routing.OrderTypeMarket, qty(1)))
	var noBroker *routing.NoBrokerAvailableError
	require.True(t, errors.As(err, &noBroker))
	assert.Equal(t, "NYSE", noBroker.Exchange)
}

func TestBuildRouters(t *testing.T) {
	cfg := config.RoutingConfig{
		DefaultBroker:       "PRIME",
		DefaultVenue:        "SMART",
		DarkPoolVenue:       "SIGMA-X",
		LargeOrderThreshold: 10000,
		Exchanges: []config.ExchangeRouteConfig{
			{Name: "nse", Priority: 10, Exchanges: []string{"NSE"}, Broker: "ZERODHA", Venue: "NSE", MaxQuantity: 100000},
		},
	}
	routers := routing.BuildRouters(cfg, nil)
	require.Len(t, routers, 4)

	names := make(map[string]int, len(routers))
	for _, r := range routers {
		names[r.Name()] = r.Priority()
	}
	assert.Contains(t, names, "dark-pool")
	assert.Contains(t, names, "large-order")
	assert.Contains(t, names, "nse")
	assert.Contains(t, names, "default")
	assert.Less(t, names["dark-pool"], names["large-order"], "dark pool is consulted before the large-order tier")
	assert.Equal(t, routing.PriorityDefault, names["default"])

	noDark := cfg
	noDark.DarkPoolVenue = ""
	routers = routing.BuildRouters(noDark, nil)
	require.Len(t, routers, 3)
}
