package marketdata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marketdata_active_sessions",
		Help: "Currently registered sessions",
	})

	activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marketdata_active_subscriptions",
		Help: "Symbol subscriptions across all sessions",
	})

	eventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketdata_events_delivered_total",
		Help: "Events successfully handed to a session's transport",
	})

	deliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketdata_delivery_failures_total",
		Help: "Per-session send failures during fan-out",
	})

	sessionsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketdata_sessions_cleaned_total",
		Help: "Sessions removed by the cleanup path",
	})
)
