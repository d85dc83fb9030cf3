// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_api_completion_duration_seconds",
			Help:    "Time taken to serve a completion, including the vendor call",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "model"},
	)

	PromptTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_api_prompt_tokens_total",
			Help: "Total number of prompt tokens used",
		},
		[]string{"provider", "model"},
	)

	CompletionTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_api_completion_tokens_total",
			Help: "Total number of completion tokens used",
		},
		[]string{"provider", "model"},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_api_request_count_total",
			Help: "Total number of requests processed",
		},
		[]string{"action", "status"},
	)

	ProviderListingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_api_provider_listing_failures_total",
			Help: "Model listing calls that failed per provider",
		},
		[]string{"provider"},
	)
)
