package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts executed provider requests by classified outcome.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contaazul_provider_requests_total",
			Help: "The total number of provider API requests, by outcome.",
		},
		[]string{"outcome"},
	)

	// TokenRefreshes counts token-exchange attempts by result.
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contaazul_token_refreshes_total",
			Help: "The total number of token refresh attempts, by result.",
		},
		[]string{"result"},
	)

	// CallDuration is a histogram of whole logical calls, including any
	// refresh-and-retry step.
	CallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contaazul_call_duration_seconds",
			Help:    "A histogram of logical provider call durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
