package routing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_decisions_total",
		Help: "Routing decisions by router and strategy",
	}, []string{"router", "strategy"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_errors_total",
		Help: "Routing failures by stable error code",
	}, []string{"code"})

	routingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "routing_duration_seconds",
		Help:    "Time spent per routing attempt",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)
