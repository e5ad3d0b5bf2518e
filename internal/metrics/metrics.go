package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gumroad_webhook_events_total",
			Help: "Total number of Gumroad webhook events processed, by alert type and outcome",
		},
		[]string{"alert_type", "outcome"},
	)

	Claims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_claims_total",
			Help: "Total number of pending subscription claims, by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	AssistantCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_completions_total",
			Help: "Total number of AI assistant completions, by kind and result",
		},
		[]string{"kind", "result"},
	)
)
