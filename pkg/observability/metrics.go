package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goemerchant_requests_total",
			Help: "Total number of gateway requests",
		},
		[]string{"operation", "outcome"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goemerchant_request_duration_seconds",
			Help:    "Duration of gateway requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Outcome labels for ObserveGatewayRequest
const (
	OutcomeSuccess   = "success"
	OutcomeDeclined  = "declined"
	OutcomeFault     = "fault"
	OutcomeTransport = "transport_error"
	OutcomeMalformed = "malformed_response"
)

// ObserveGatewayRequest records one completed gateway round trip
func ObserveGatewayRequest(operation, outcome string, elapsed time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
