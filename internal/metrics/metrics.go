// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "herbal"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	PartnerOrdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partner_orders_total",
		Help:      "Partner orders created.",
	})

	PartnerProfitTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partner_profit_minor_units_total",
		Help:      "Partner profit booked on created orders, in minor currency units.",
	})

	OrderRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partner_order_rejections_total",
		Help:      "Partner orders rejected before persistence, by reason.",
	}, []string{"reason"})

	PublicOrdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "public_orders_total",
		Help:      "Public checkout orders created.",
	})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Rejected credentials by kind.",
	}, []string{"kind"})

	AuthThrottledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_throttled_total",
		Help:      "Requests refused because the client exceeded the failed-auth limit, by surface.",
	}, []string{"surface"})

	KeyUsageDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_key_usage_dropped_total",
		Help:      "API key usage stamps dropped because the buffer was full.",
	})
)

// ObservePartnerOrder records a created partner order.
func ObservePartnerOrder(profit int64) {
	PartnerOrdersTotal.Inc()
	if profit > 0 {
		PartnerProfitTotal.Add(float64(profit))
	}
}

// ObserveOrderRejection records a rejected partner order.
func ObserveOrderRejection(reason string) {
	OrderRejectionsTotal.WithLabelValues(reason).Inc()
}
