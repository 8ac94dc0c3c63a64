package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loyalty_http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loyalty_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PointsCreditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_credited_total",
		Help: "Points credited to agency ledgers",
	})

	PointsDebitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_debited_total",
		Help: "Points debited from agency ledgers",
	})

	OrdersConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_orders_confirmed_total",
		Help: "Orders confirmed at checkout",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loyalty_orders_rejected_total",
		Help: "Checkout rejections by reason",
	}, []string{"reason"})

	AllocationInfeasibleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_allocation_infeasible_total",
		Help: "Allocation requests that could not be fully satisfied",
	})
)
