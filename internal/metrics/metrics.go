package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts invocations by endpoint and response status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genai_requests_total",
		Help: "Total generation requests handled.",
	}, []string{"endpoint", "status"})

	// UpstreamDuration tracks the latency of the single outbound call per provider.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "genai_upstream_duration_seconds",
		Help:    "Time spent waiting on the upstream AI provider.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	// FallbackTotal counts successful upstream replies that carried no text.
	FallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genai_fallback_total",
		Help: "Responses answered with the endpoint fallback text.",
	}, []string{"endpoint"})
)
