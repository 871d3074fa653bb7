// Package monitor exposes Prometheus collectors for relay traffic.
package monitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cotproxy",
			Name:      "relay_requests_total",
			Help:      "Relayed requests by method, response status and stream mode.",
		},
		[]string{"method", "status", "stream"},
	)

	relayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cotproxy",
			Name:      "relay_request_duration_seconds",
			Help:      "End-to-end relay latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	upstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cotproxy",
			Name:      "upstream_failures_total",
			Help:      "Failed upstream round trips by cause (timeout, tls, connect).",
		},
		[]string{"cause"},
	)
)

// RecordRelayRequest records one completed relay request.
func RecordRelayRequest(method string, statusCode int, isStream bool, seconds float64) {
	relayRequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode), strconv.FormatBool(isStream)).Inc()
	relayRequestDuration.WithLabelValues(method).Observe(seconds)
}

// RecordUpstreamFailure records one failed upstream round trip.
func RecordUpstreamFailure(cause string) {
	upstreamFailuresTotal.WithLabelValues(cause).Inc()
}
